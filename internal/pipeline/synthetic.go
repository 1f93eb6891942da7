package pipeline

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/repository"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/source"
	"github.com/oklog/ulid/v2"
)

// LeadTaxIDPrefix marks generated identifiers. The letters keep them apart
// from every canonical (digit-only) identifier.
const LeadTaxIDPrefix = "LEAD-"

const (
	leadScoreMean = 3.5
	leadScoreStd  = 1.5

	minLeadAge = 18
	maxLeadAge = 80

	fallbackAgeMean = 45.0
	fallbackAgeStd  = 15.0
)

// SyntheticAugmentor generates one non-customer lead per real customer, with
// attributes fitted to the real cohort and a lower engagement score.
type SyntheticAugmentor struct {
	deps    StageDeps
	rng     *rand.Rand
	entropy io.Reader
	now     func() time.Time
}

// NewSyntheticAugmentor builds the augmentor. rng drives attribute draws and
// entropy feeds the lead identifiers.
func NewSyntheticAugmentor(deps StageDeps, rng *rand.Rand, entropy io.Reader, now func() time.Time) *SyntheticAugmentor {
	if now == nil {
		now = time.Now
	}
	return &SyntheticAugmentor{
		deps:    deps,
		rng:     rng,
		entropy: ulid.Monotonic(entropy, 0),
		now:     now,
	}
}

// cohortProfile is the fitted description of the real customers
type cohortProfile struct {
	size           int
	ageMean        float64
	ageStd         float64
	municipalities []string
}

func profileCohort(persons []domain.Person) cohortProfile {
	p := cohortProfile{size: len(persons), ageMean: fallbackAgeMean, ageStd: fallbackAgeStd}

	var ages []float64
	seen := map[string]struct{}{}
	for _, person := range persons {
		if person.Age != nil {
			ages = append(ages, float64(*person.Age))
		}
		if person.Address != nil {
			m := strings.TrimSpace(*person.Address)
			if _, dup := seen[m]; m != "" && !dup {
				seen[m] = struct{}{}
				p.municipalities = append(p.municipalities, m)
			}
		}
	}
	sort.Strings(p.municipalities)

	if len(ages) > 0 {
		var sum float64
		for _, a := range ages {
			sum += a
		}
		p.ageMean = sum / float64(len(ages))
	}
	// sample standard deviation needs two observations
	if len(ages) > 1 {
		var sq float64
		for _, a := range ages {
			sq += (a - p.ageMean) * (a - p.ageMean)
		}
		p.ageStd = math.Sqrt(sq / float64(len(ages)-1))
	}
	return p
}

// Generate inserts the synthetic cohort. With no real customers it does nothing.
func (s *SyntheticAugmentor) Generate(ctx context.Context) (*StageReport, error) {
	cohort, err := s.deps.Store.Persons.ListWithCustomerRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load real customers: %w", err)
	}

	run := newStageRun(s.deps, StageSynthetic, len(cohort))
	if len(cohort) == 0 {
		run.logger.Warn("No real customers, skipping synthetic lead generation")
		run.report.Note = "no real customers to sample from"
		return run.finish(), nil
	}

	profile := profileCohort(cohort)
	for i := 0; i < profile.size; i++ {
		if err := ctx.Err(); err != nil {
			return run.report, err
		}

		lead := s.newLead(i+1, profile)
		err := run.runRow(ctx, source.Row{Line: i + 1}, func(tx *repository.Store) (rowOutcome, error) {
			if err := tx.Persons.Create(ctx, lead); err != nil {
				return rowOutcome{}, fmt.Errorf("lead %s: %w", lead.TaxID, err)
			}
			return rowOutcome{status: StatusImported, created: []string{"persons"}}, nil
		})
		if err != nil {
			return run.report, err
		}
	}

	return run.finish(), nil
}

func (s *SyntheticAugmentor) newLead(n int, profile cohortProfile) *domain.Person {
	age := drawClipped(s.rng, profile.ageMean, profile.ageStd, minLeadAge, maxLeadAge)
	score := drawClipped(s.rng, leadScoreMean, leadScoreStd, domain.MinEngagementScore, domain.MaxEngagementScore)

	var municipality *string
	if len(profile.municipalities) > 0 {
		m := profile.municipalities[s.rng.IntN(len(profile.municipalities))]
		municipality = &m
	}

	id := ulid.MustNew(ulid.Timestamp(s.now()), s.entropy)
	return &domain.Person{
		TaxID:           LeadTaxIDPrefix + id.String(),
		Name:            fmt.Sprintf("Lead Sintético %04d", n),
		Address:         municipality,
		Age:             &age,
		EngagementScore: score,
		Synthetic:       true,
	}
}
