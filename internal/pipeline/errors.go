package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrPurgeFailed wraps any failure while emptying the store; nothing else runs
	ErrPurgeFailed = errors.New("purge failed")
	// ErrRunInProgress is returned when Run is called while another run is active
	ErrRunInProgress = errors.New("a pipeline run is already in progress")
)

// SkipError marks a row-level failure that skips the row instead of failing the stage
type SkipError struct {
	Reason SkipReason
	Detail string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

func skipf(reason SkipReason, format string, args ...interface{}) error {
	return &SkipError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// skipReason reports whether err may skip a row, and why. Integrity
// violations raised by the store count as constraint violations and values
// postgres refuses to store (class 22, data exception) as parse errors; any
// other error is unexpected and must fail the stage.
func skipReason(err error) (SkipReason, string, bool) {
	var se *SkipError
	if errors.As(err, &se) {
		return se.Reason, se.Detail, true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) ||
		errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return ReasonConstraintViolation, err.Error(), true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "22"):
			return ReasonParseError, err.Error(), true
		case strings.HasPrefix(pgErr.Code, "23"): // integrity_constraint_violation
			return ReasonConstraintViolation, err.Error(), true
		}
	}
	return "", "", false
}
