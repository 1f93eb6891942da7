package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VehicleFilters narrows vehicle listings
type VehicleFilters struct {
	SegmentID *uint
	// Search matches model or brand, case-insensitive substring
	Search string
}

type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// FirstOrCreateByModel loads the oldest vehicle with vehicle.Model into
// vehicle, or inserts vehicle when the model is unknown. Existing vehicles are
// never updated. The boolean reports whether it was created.
func (r *VehicleRepository) FirstOrCreateByModel(ctx context.Context, vehicle *domain.Vehicle) (bool, error) {
	existing, err := r.FindByModel(ctx, vehicle.Model)
	if err == nil {
		*vehicle = *existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if vehicle.Brand == "" {
		vehicle.Brand = domain.DefaultVehicleBrand
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(vehicle).Error; err != nil {
		return false, err
	}
	return true, nil
}

// FindByModel returns the oldest vehicle with the exact model name
func (r *VehicleRepository) FindByModel(ctx context.Context, model string) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	if err := r.db.WithContext(ctx).Where("model = ?", model).Order("id ASC").First(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *VehicleRepository) GetByID(ctx context.Context, id uint) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	if err := r.db.WithContext(ctx).Preload("Segment").First(&vehicle, id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// ListModels returns every model name, used for diagnostics
func (r *VehicleRepository) ListModels(ctx context.Context) ([]string, error) {
	var models []string
	err := r.db.WithContext(ctx).Model(&domain.Vehicle{}).Order("id ASC").Pluck("model", &models).Error
	return models, err
}

func (r *VehicleRepository) List(ctx context.Context, page, pageSize int, filters *VehicleFilters) ([]domain.Vehicle, int64, error) {
	var vehicles []domain.Vehicle
	var total int64

	_, pageSize, offset := normalizePage(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Vehicle{})
	if filters != nil {
		if filters.SegmentID != nil {
			query = query.Where("segment_id = ?", *filters.SegmentID)
		}
		if filters.Search != "" {
			searchPattern := "%" + strings.ToLower(filters.Search) + "%"
			query = query.Where("LOWER(model) LIKE ? OR LOWER(brand) LIKE ?", searchPattern, searchPattern)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Segment").
		Order("model ASC").Order("id ASC").
		Offset(offset).Limit(pageSize).
		Find(&vehicles).Error
	return vehicles, total, err
}

func (r *VehicleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Vehicle{}).Count(&count).Error
	return count, err
}
