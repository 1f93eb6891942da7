package pipeline

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/repository"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/source"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/taxid"
	"go.uber.org/zap"
)

// DefaultStaffCredential is the placeholder password hashed for imported staff
const DefaultStaffCredential = "senha_padrao_123"

// Real customers' engagement scores are drawn from this distribution
const (
	customerScoreMean = 7.5
	customerScoreStd  = 1.5
)

type roleKind int

const (
	roleNone roleKind = iota
	roleCustomer
	roleStaff
)

func parseRole(v string) roleKind {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "cliente", "customer":
		return roleCustomer
	case "usuario", "usuário", "staff", "vendedor":
		return roleStaff
	}
	return roleNone
}

// EntityImporter loads persons from the roster and attaches customer or
// staff roles to them.
type EntityImporter struct {
	deps         StageDeps
	rng          *rand.Rand
	passwordHash string
}

// NewEntityImporter builds the importer. rng drives the customer engagement
// scores; passwordHash is stored on every staff role it creates.
func NewEntityImporter(deps StageDeps, rng *rand.Rand, passwordHash string) *EntityImporter {
	return &EntityImporter{deps: deps, rng: rng, passwordHash: passwordHash}
}

// Import processes the roster row by row, each row in its own transaction
func (e *EntityImporter) Import(ctx context.Context, table *source.Table) (*StageReport, error) {
	run := newStageRun(e.deps, StageEntities, table.Len())

	for _, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			return run.report, err
		}

		name := row.Get(source.ColName)
		rawID := row.Get(source.ColTaxID)
		if source.IsMissing(name) || source.IsMissing(rawID) {
			run.skip(row, ReasonMissingField, "name or tax id is blank")
			continue
		}
		id := taxid.Normalize(rawID)
		if id == "" {
			run.skip(row, ReasonInvalidIdentifier, fmt.Sprintf("tax id %q has no digits", rawID))
			continue
		}

		roleText := row.Get(source.ColRole)
		role := parseRole(roleText)
		if role == roleNone {
			run.logger.Debug("Unknown role, importing person only",
				zap.Int("line", row.Line),
				zap.String("role", roleText),
			)
		}

		score := domain.DefaultEngagementScore
		if role == roleCustomer {
			score = drawClipped(e.rng, customerScoreMean, customerScoreStd,
				domain.MinEngagementScore, domain.MaxEngagementScore)
		}

		person := &domain.Person{
			TaxID:           id,
			Name:            name,
			Email:           row.Optional(source.ColEmail),
			Phone:           row.Optional(source.ColPhone),
			Address:         row.Optional(source.ColMunicipality),
			Age:             parseAge(row.Optional(source.ColAge)),
			EngagementScore: score,
		}
		if err := checkLimits(
			fieldLimit{"name", person.Name, domain.MaxPersonNameLen},
			fieldLimit{"tax id", person.TaxID, domain.MaxTaxIDLen},
			fieldLimit{"email", deref(person.Email), domain.MaxEmailLen},
			fieldLimit{"phone", deref(person.Phone), domain.MaxPhoneLen},
			fieldLimit{"municipality", deref(person.Address), domain.MaxAddressLen},
		); err != nil {
			run.skip(row, ReasonParseError, err.Error())
			continue
		}

		err := run.runRow(ctx, row, func(tx *repository.Store) (rowOutcome, error) {
			return e.importPerson(ctx, tx, person, role)
		})
		if err != nil {
			return run.report, err
		}
	}

	return run.finish(), nil
}

func (e *EntityImporter) importPerson(ctx context.Context, tx *repository.Store, template *domain.Person, role roleKind) (rowOutcome, error) {
	var out rowOutcome
	person := *template

	created, err := tx.Persons.FirstOrCreateByTaxID(ctx, &person)
	if err != nil {
		return out, fmt.Errorf("person %s: %w", template.TaxID, err)
	}
	if created {
		out.status = StatusImported
		out.created = append(out.created, "persons")
	} else {
		out.status = StatusDuplicate
		out.detail = fmt.Sprintf("person %s already exists", person.TaxID)
	}

	switch role {
	case roleCustomer:
		_, roleCreated, err := tx.Customers.FirstOrCreate(ctx, person.ID)
		if err != nil {
			return out, fmt.Errorf("customer role for %s: %w", person.TaxID, err)
		}
		if roleCreated {
			out.created = append(out.created, "customers")
		}
	case roleStaff:
		staff := &domain.StaffUser{
			PersonID:     person.ID,
			PasswordHash: e.passwordHash,
			Profile:      domain.StaffProfileSalesperson,
		}
		roleCreated, err := tx.StaffUsers.FirstOrCreate(ctx, staff)
		if err != nil {
			return out, fmt.Errorf("staff role for %s: %w", person.TaxID, err)
		}
		if roleCreated {
			out.created = append(out.created, "staff_users")
		}
	}

	return out, nil
}

// parseAge truncates numeric text ("34", "34.0", "34,0") to whole years.
// Anything unparseable or outside [0, MaxAge] yields no age.
func parseAge(v *string) *int {
	if v == nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(*v, ",", "."), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > domain.MaxAge {
		return nil
	}
	age := int(f)
	return &age
}
