package pipeline

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
	"unicode/utf8"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/repository"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/source"
	"go.uber.org/zap"
)

// progressEvery is how often (in rows) a stage logs its progress
const progressEvery = 100

// ProgressFunc is called after every row a stage processes
type ProgressFunc func(stage Stage, processed, total int)

// StageDeps carries what every stage needs. Metrics and Progress are optional.
type StageDeps struct {
	Store    *repository.Store
	Logger   *zap.Logger
	Metrics  *Metrics
	Progress ProgressFunc
}

// rowOutcome is what a committed row transaction reports back
type rowOutcome struct {
	status  RowStatus
	detail  string
	created []string
}

// stageRun tracks one execution of a stage
type stageRun struct {
	deps    StageDeps
	report  *StageReport
	total   int
	logger  *zap.Logger
	started time.Time
}

func newStageRun(deps StageDeps, stage Stage, total int) *stageRun {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	logger := deps.Logger.With(zap.String("stage", string(stage)))
	logger.Info("Stage started", zap.Int("rows", total))
	return &stageRun{
		deps:    deps,
		report:  newStageReport(stage),
		total:   total,
		logger:  logger,
		started: time.Now(),
	}
}

// runRow executes fn in its own transaction. Skippable failures roll the row
// back and are recorded; any other error is returned and fails the stage.
func (s *stageRun) runRow(ctx context.Context, row source.Row, fn func(tx *repository.Store) (rowOutcome, error)) error {
	var outcome rowOutcome
	err := s.deps.Store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		outcome, err = fn(tx)
		return err
	})
	if err != nil {
		reason, detail, ok := skipReason(err)
		if !ok {
			return fmt.Errorf("%s row %d: %w", s.report.Stage, row.Line, err)
		}
		s.record(row, RowResult{Line: row.Line, Status: StatusSkipped, Reason: reason, Detail: detail}, nil)
		return nil
	}
	s.record(row, RowResult{Line: row.Line, Status: outcome.status, Detail: outcome.detail}, outcome.created)
	return nil
}

// skip records a row rejected before touching the store
func (s *stageRun) skip(row source.Row, reason SkipReason, detail string) {
	s.record(row, RowResult{Line: row.Line, Status: StatusSkipped, Reason: reason, Detail: detail}, nil)
}

func (s *stageRun) record(row source.Row, result RowResult, created []string) {
	s.report.add(result, created)
	s.deps.Metrics.rowProcessed(s.report.Stage, result.Status)

	switch result.Status {
	case StatusSkipped:
		fields := []zap.Field{
			zap.Int("line", result.Line),
			zap.String("reason", string(result.Reason)),
			zap.String("detail", result.Detail),
		}
		if values := row.Values(); values != nil {
			fields = append(fields, zap.Any("row", values))
		}
		s.logger.Warn("Skipping row", fields...)
	case StatusDuplicate:
		s.logger.Info("Skipping duplicate",
			zap.Int("line", result.Line),
			zap.String("detail", result.Detail),
		)
	}

	if s.deps.Progress != nil {
		s.deps.Progress(s.report.Stage, s.report.Processed, s.total)
	}
	if s.report.Processed%progressEvery == 0 {
		s.logger.Info("Stage progress",
			zap.Int("processed", s.report.Processed),
			zap.Int("total", s.total),
		)
	}
}

// fieldLimit pairs a value with the width of the column it is written to
type fieldLimit struct {
	field string
	value string
	max   int
}

// checkLimits reports the first value wider than its column
func checkLimits(limits ...fieldLimit) error {
	for _, l := range limits {
		if n := utf8.RuneCountInString(l.value); n > l.max {
			return fmt.Errorf("%s is %d characters long, column allows %d", l.field, n, l.max)
		}
	}
	return nil
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func (s *stageRun) finish() *StageReport {
	s.report.DurationMs = time.Since(s.started).Milliseconds()
	s.logger.Info("Stage completed",
		zap.Int("processed", s.report.Processed),
		zap.Int("imported", s.report.Imported),
		zap.Int("duplicates", s.report.Duplicates),
		zap.Int("skipped", s.report.Skipped),
		zap.Any("created", s.report.Created),
	)
	return s.report
}

// drawClipped samples Normal(mean, std), rounds to an integer and clips it to [lo, hi]
func drawClipped(rng *rand.Rand, mean, std float64, lo, hi int) int {
	v := int(math.Round(rng.NormFloat64()*std + mean))
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
