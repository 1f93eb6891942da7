package pipeline

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/repository"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/source"
	"github.com/shopspring/decimal"
)

// CatalogImporter loads segments and vehicles from the catalog file
type CatalogImporter struct {
	deps StageDeps
}

func NewCatalogImporter(deps StageDeps) *CatalogImporter {
	return &CatalogImporter{deps: deps}
}

// Import get-or-creates a segment and a vehicle for every row. A vehicle
// keeps the segment and attributes of the first row that named its model.
func (c *CatalogImporter) Import(ctx context.Context, table *source.Table) (*StageReport, error) {
	run := newStageRun(c.deps, StageCatalog, table.Len())

	for _, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			return run.report, err
		}

		segmentName := row.Get(source.ColSegment)
		model := row.Get(source.ColModel)
		if source.IsMissing(segmentName) || source.IsMissing(model) {
			run.skip(row, ReasonMissingField, "segment or model is blank")
			continue
		}

		year, err := parseYear(row.Optional(source.ColYear))
		if err != nil {
			run.skip(row, ReasonParseError, err.Error())
			continue
		}
		price, err := parsePrice(row.Optional(source.ColPrice))
		if err != nil {
			run.skip(row, ReasonParseError, err.Error())
			continue
		}
		chassis := row.Optional(source.ColChassis)
		if err := checkLimits(
			fieldLimit{"segment", segmentName, domain.MaxSegmentNameLen},
			fieldLimit{"model", model, domain.MaxVehicleModelLen},
			fieldLimit{"chassis", deref(chassis), domain.MaxChassisLen},
		); err != nil {
			run.skip(row, ReasonParseError, err.Error())
			continue
		}

		err = run.runRow(ctx, row, func(tx *repository.Store) (rowOutcome, error) {
			var out rowOutcome

			segment, segmentCreated, err := tx.Segments.FirstOrCreateByName(ctx, segmentName)
			if err != nil {
				return out, fmt.Errorf("segment %q: %w", segmentName, err)
			}
			if segmentCreated {
				out.created = append(out.created, "segments")
			}

			vehicle := &domain.Vehicle{
				Brand:     domain.DefaultVehicleBrand,
				Model:     model,
				Year:      year,
				Price:     price,
				Chassis:   chassis,
				SegmentID: &segment.ID,
			}
			vehicleCreated, err := tx.Vehicles.FirstOrCreateByModel(ctx, vehicle)
			if err != nil {
				return out, fmt.Errorf("vehicle %q: %w", model, err)
			}
			if !vehicleCreated {
				out.status = StatusDuplicate
				out.detail = fmt.Sprintf("vehicle %q already exists", model)
				return out, nil
			}
			out.status = StatusImported
			out.created = append(out.created, "vehicles")
			return out, nil
		})
		if err != nil {
			return run.report, err
		}
	}

	return run.finish(), nil
}

func parseYear(v *string) (*int, error) {
	if v == nil {
		return nil, nil
	}
	f, err := strconv.ParseFloat(*v, 64)
	if err != nil || f != math.Trunc(f) || f < 1900 || f > 2100 {
		return nil, fmt.Errorf("invalid year %q", *v)
	}
	year := int(f)
	return &year, nil
}

// maxPrice is the first value the vehicles.price NUMERIC(10,2) column cannot hold
var maxPrice = decimal.New(1, 8)

// parsePrice accepts "12345.67" and the Brazilian "R$ 12.345,67"
func parsePrice(v *string) (*decimal.Decimal, error) {
	if v == nil {
		return nil, nil
	}
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(*v), "R$"))
	s = strings.ReplaceAll(s, " ", "")
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	price, err := decimal.NewFromString(s)
	if err != nil || price.IsNegative() {
		return nil, fmt.Errorf("invalid price %q", *v)
	}
	price = price.Round(2)
	if price.GreaterThanOrEqual(maxPrice) {
		return nil, fmt.Errorf("price %q is out of range", *v)
	}
	return &price, nil
}
