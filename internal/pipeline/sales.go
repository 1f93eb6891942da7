package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/repository"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/source"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/taxid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// The sentinel actor is credited with sales whose salesperson is unknown
const (
	SentinelName       = "Sistema / CNH"
	SentinelCredential = "sistema"
)

// saleDateLayouts are tried in order against the Data column
var saleDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// maxPaymentMethodLen matches the sales.payment_method column
const maxPaymentMethodLen = 50

// SalesLinker turns sales rows into Sale records linked to imported entities
type SalesLinker struct {
	deps       StageDeps
	systemHash string
	runStart   time.Time
}

// NewSalesLinker builds the linker. systemHash is the stored credential of the
// sentinel actor; runStart dates rows with no usable date.
func NewSalesLinker(deps StageDeps, systemHash string, runStart time.Time) *SalesLinker {
	return &SalesLinker{deps: deps, systemHash: systemHash, runStart: runStart}
}

// EnsureSentinel get-or-creates the system person and its staff role
func EnsureSentinel(ctx context.Context, store *repository.Store, passwordHash string) (*domain.StaffUser, error) {
	var sentinel domain.StaffUser
	err := store.Transaction(ctx, func(tx *repository.Store) error {
		person := &domain.Person{
			TaxID:           taxid.SentinelSystem,
			Name:            SentinelName,
			EngagementScore: domain.DefaultEngagementScore,
		}
		if _, err := tx.Persons.FirstOrCreateByTaxID(ctx, person); err != nil {
			return err
		}
		sentinel = domain.StaffUser{
			PersonID:     person.ID,
			PasswordHash: passwordHash,
			Profile:      domain.StaffProfileSystem,
		}
		_, err := tx.StaffUsers.FirstOrCreate(ctx, &sentinel)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure sentinel actor: %w", err)
	}
	return &sentinel, nil
}

// Import links every sales row. Rows naming an unknown customer or vehicle are
// skipped; an unknown salesperson is replaced by the sentinel actor.
func (l *SalesLinker) Import(ctx context.Context, table *source.Table) (*StageReport, error) {
	sentinel, err := EnsureSentinel(ctx, l.deps.Store, l.systemHash)
	if err != nil {
		return nil, err
	}

	// only used to hint at typos in skipped rows
	customerNames, err := l.deps.Store.Customers.ListNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer names: %w", err)
	}
	vehicleModels, err := l.deps.Store.Vehicles.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load vehicle models: %w", err)
	}

	run := newStageRun(l.deps, StageSales, table.Len())
	for _, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			return run.report, err
		}

		customerName := row.Get(source.ColCustomer)
		model := row.Get(source.ColVehicle)
		if source.IsMissing(customerName) || source.IsMissing(model) {
			run.skip(row, ReasonMissingField, "customer or vehicle is blank")
			continue
		}

		salespersonName := ""
		if v := row.Optional(source.ColSalesperson); v != nil {
			salespersonName = *v
		}
		soldAt := parseSaleDate(row.Get(source.ColDate), l.runStart)
		payment := parsePaymentMethod(row.Optional(source.ColPaymentMethod))

		err := run.runRow(ctx, row, func(tx *repository.Store) (rowOutcome, error) {
			var out rowOutcome

			customer, err := tx.Customers.FindByPersonName(ctx, customerName)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return out, unresolved("customer", customerName, customerNames)
			}
			if err != nil {
				return out, fmt.Errorf("customer %q: %w", customerName, err)
			}

			vehicle, err := tx.Vehicles.FindByModel(ctx, model)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return out, unresolved("vehicle", model, vehicleModels)
			}
			if err != nil {
				return out, fmt.Errorf("vehicle %q: %w", model, err)
			}

			salespersonID := sentinel.PersonID
			if salespersonName != "" {
				staff, err := tx.StaffUsers.FindByPersonName(ctx, salespersonName)
				switch {
				case err == nil:
					salespersonID = staff.PersonID
				case errors.Is(err, gorm.ErrRecordNotFound):
					out.detail = fmt.Sprintf("salesperson %q not found, credited to %s", salespersonName, SentinelName)
				default:
					return out, fmt.Errorf("salesperson %q: %w", salespersonName, err)
				}
			}

			sale := &domain.Sale{
				CustomerID:    customer.PersonID,
				VehicleID:     vehicle.ID,
				SalespersonID: salespersonID,
				SoldAt:        soldAt,
				Amount:        decimal.Zero,
				PaymentMethod: payment,
			}
			if err := tx.Sales.Create(ctx, sale); err != nil {
				return out, fmt.Errorf("sale: %w", err)
			}
			out.status = StatusImported
			out.created = []string{"sales"}
			return out, nil
		})
		if err != nil {
			return run.report, err
		}
	}

	report := run.finish()
	if n := report.SkippedFor(ReasonUnresolvedReference); n > 0 {
		run.logger.Warn("Sales rows with unresolved references", zap.Int("count", n))
	}
	return report, nil
}

func unresolved(kind, name string, known []string) error {
	if hint := closestMatch(name, known); hint != "" {
		return skipf(ReasonUnresolvedReference, "%s %q not found (closest known: %q)", kind, name, hint)
	}
	return skipf(ReasonUnresolvedReference, "%s %q not found", kind, name)
}

// closestMatch returns the known name most similar to name, or "" when there
// is nothing to compare against.
func closestMatch(name string, known []string) string {
	if len(known) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindNormalizedFold(name, known)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDistance := "", -1
	lower := strings.ToLower(name)
	for _, candidate := range known {
		d := fuzzy.LevenshteinDistance(lower, strings.ToLower(candidate))
		if bestDistance < 0 || d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	return best
}

func parseSaleDate(v string, fallback time.Time) time.Time {
	if source.IsMissing(v) {
		return fallback
	}
	for _, layout := range saleDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return fallback
}

// parsePaymentMethod maps the source's wording to a payment tag. Unknown
// wording is kept verbatim.
func parsePaymentMethod(v *string) domain.PaymentMethod {
	if v == nil {
		return ""
	}
	switch strings.ToLower(*v) {
	case "financiamento", "financiado", "fin":
		return domain.PaymentFinancing
	case "à vista", "a vista", "avista", "av":
		return domain.PaymentCash
	case "consórcio", "consorcio", "cons":
		return domain.PaymentConsortium
	}
	raw := *v
	for utf8.RuneCountInString(raw) > maxPaymentMethodLen {
		_, size := utf8.DecodeLastRuneInString(raw)
		raw = raw[:len(raw)-size]
	}
	return domain.PaymentMethod(raw)
}
