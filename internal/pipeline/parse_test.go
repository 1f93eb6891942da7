package pipeline

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func TestParseAge(t *testing.T) {
	tests := []struct {
		in   *string
		want *int
	}{
		{nil, nil},
		{strPtr("34"), intPtr(34)},
		{strPtr("34.0"), intPtr(34)},
		{strPtr("34,9"), intPtr(34)},
		{strPtr("trinta"), nil},
		{strPtr("-3"), nil},
		{strPtr("150"), intPtr(150)},
		{strPtr("151"), nil},
		{strPtr("3000000000"), nil},
		{strPtr("1e30"), nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseAge(tt.in))
	}
}

func intPtr(i int) *int { return &i }

func TestParsePrice(t *testing.T) {
	p, err := parsePrice(strPtr("R$ 15.990,50"))
	require.NoError(t, err)
	assert.Equal(t, "15990.5", p.String())

	p, err = parsePrice(strPtr("12990.499"))
	require.NoError(t, err)
	assert.Equal(t, "12990.5", p.String())

	p, err = parsePrice(nil)
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = parsePrice(strPtr("caro"))
	assert.Error(t, err)
	_, err = parsePrice(strPtr("-10"))
	assert.Error(t, err)

	p, err = parsePrice(strPtr("R$ 99.999.999,99"))
	require.NoError(t, err)
	assert.Equal(t, "99999999.99", p.String())

	_, err = parsePrice(strPtr("100000000"))
	assert.Error(t, err, "does not fit NUMERIC(10,2)")
	_, err = parsePrice(strPtr("99999999.999"))
	assert.Error(t, err, "rounds up past the column range")
}

func TestParseYear(t *testing.T) {
	y, err := parseYear(strPtr("2021.0"))
	require.NoError(t, err)
	assert.Equal(t, 2021, *y)

	for _, bad := range []string{"2021.5", "1850", "vinte"} {
		_, err := parseYear(strPtr(bad))
		assert.Error(t, err, bad)
	}
}

func TestParseSaleDate(t *testing.T) {
	fallback := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), parseSaleDate("2024-03-05", fallback))
	assert.Equal(t, time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC), parseSaleDate("05/04/2024", fallback))
	assert.Equal(t, time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC), parseSaleDate("2024-03-05 14:30:00", fallback))
	assert.True(t, parseSaleDate("2024-03-05T10:00:00-03:00", fallback).Equal(time.Date(2024, 3, 5, 13, 0, 0, 0, time.UTC)))
	assert.Equal(t, fallback, parseSaleDate("", fallback))
	assert.Equal(t, fallback, parseSaleDate("nan", fallback))
	assert.Equal(t, fallback, parseSaleDate("ontem", fallback))
}

func TestParsePaymentMethod(t *testing.T) {
	assert.Equal(t, domain.PaymentFinancing, parsePaymentMethod(strPtr("Financiamento")))
	assert.Equal(t, domain.PaymentCash, parsePaymentMethod(strPtr("À vista")))
	assert.Equal(t, domain.PaymentCash, parsePaymentMethod(strPtr("a vista")))
	assert.Equal(t, domain.PaymentConsortium, parsePaymentMethod(strPtr("CONSÓRCIO")))
	assert.Equal(t, domain.PaymentMethod("Permuta"), parsePaymentMethod(strPtr("Permuta")))
	assert.Equal(t, domain.PaymentMethod(""), parsePaymentMethod(nil))

	long := parsePaymentMethod(strPtr(fmt.Sprintf("%060d", 0)))
	assert.Len(t, string(long), maxPaymentMethodLen)
}

func TestClosestMatch(t *testing.T) {
	known := []string{"Ana Silva", "Carla Souza", "Diego Lima"}

	assert.Equal(t, "Ana Silva", closestMatch("ana silv", known))
	assert.Equal(t, "Carla Souza", closestMatch("Karla Souza", known))
	assert.Equal(t, "", closestMatch("Ana", nil))
}

func TestDrawClippedStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		v := drawClipped(rng, 3.5, 10, 1, 10)
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 10)
	}
}

func TestProfileCohort(t *testing.T) {
	persons := []domain.Person{
		{Age: intPtr(30), Address: strPtr("Sorocaba")},
		{Age: intPtr(50), Address: strPtr(" Campinas ")},
		{Address: strPtr("Campinas")},
		{Address: strPtr("  ")},
	}
	p := profileCohort(persons)

	assert.Equal(t, 4, p.size)
	assert.InDelta(t, 40.0, p.ageMean, 1e-9)
	assert.InDelta(t, 14.142, p.ageStd, 1e-3)
	assert.Equal(t, []string{"Campinas", "Sorocaba"}, p.municipalities)

	empty := profileCohort([]domain.Person{{}})
	assert.Equal(t, fallbackAgeMean, empty.ageMean)
	assert.Equal(t, fallbackAgeStd, empty.ageStd)
	assert.Empty(t, empty.municipalities)
}

func TestSkipReason(t *testing.T) {
	reason, _, ok := skipReason(fmt.Errorf("row: %w", skipf(ReasonParseError, "bad %s", "year")))
	assert.True(t, ok)
	assert.Equal(t, ReasonParseError, reason)

	reason, _, ok = skipReason(fmt.Errorf("person: %w", gorm.ErrDuplicatedKey))
	assert.True(t, ok)
	assert.Equal(t, ReasonConstraintViolation, reason)

	reason, _, ok = skipReason(fmt.Errorf("person: %w", gorm.ErrCheckConstraintViolated))
	assert.True(t, ok)
	assert.Equal(t, ReasonConstraintViolation, reason)

	_, _, ok = skipReason(errors.New("connection reset"))
	assert.False(t, ok)
}

func TestSkipReason_PostgresErrors(t *testing.T) {
	tests := []struct {
		code   string
		reason SkipReason
		ok     bool
	}{
		{"22001", ReasonParseError, true},          // string_data_right_truncation
		{"22003", ReasonParseError, true},          // numeric_value_out_of_range
		{"22P02", ReasonParseError, true},          // invalid_text_representation
		{"23502", ReasonConstraintViolation, true}, // not_null_violation
		{"23514", ReasonConstraintViolation, true}, // check_violation
		{"08006", "", false},                       // connection_failure
		{"57014", "", false},                       // query_canceled
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := fmt.Errorf("person 22233344455: %w", &pgconn.PgError{
				Code:    tt.code,
				Message: "value too long for type character varying(20)",
			})
			reason, detail, ok := skipReason(err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reason, reason)
			if ok {
				assert.Contains(t, detail, "22233344455")
			}
		})
	}
}

func TestCheckLimits(t *testing.T) {
	assert.NoError(t, checkLimits(
		fieldLimit{"phone", "(11) 99999-9999", domain.MaxPhoneLen},
		fieldLimit{"email", "", domain.MaxEmailLen},
	))
	assert.NoError(t, checkLimits(fieldLimit{"municipality", strings.Repeat("ç", 20), 20}), "counts characters, not bytes")

	err := checkLimits(
		fieldLimit{"name", "Ana", domain.MaxPersonNameLen},
		fieldLimit{"phone", "(11) 99999-9999 ramal 1234", domain.MaxPhoneLen},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "phone is 26 characters long, column allows 20")

	assert.Equal(t, "", deref(nil))
	assert.Equal(t, "x", deref(strPtr("x")))
}
