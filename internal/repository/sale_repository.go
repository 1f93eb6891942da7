package repository

import (
	"context"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaleFilters narrows sale listings by the referenced rows
type SaleFilters struct {
	CustomerID    *uint
	VehicleID     *uint
	SalespersonID *uint
}

type SaleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

func (r *SaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(sale).Error
}

// List returns sales with customer, vehicle and salesperson loaded, most recent first
func (r *SaleRepository) List(ctx context.Context, page, pageSize int, filters *SaleFilters) ([]domain.Sale, int64, error) {
	var sales []domain.Sale
	var total int64

	_, pageSize, offset := normalizePage(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Sale{})
	if filters != nil {
		if filters.CustomerID != nil {
			query = query.Where("customer_id = ?", *filters.CustomerID)
		}
		if filters.VehicleID != nil {
			query = query.Where("vehicle_id = ?", *filters.VehicleID)
		}
		if filters.SalespersonID != nil {
			query = query.Where("salesperson_id = ?", *filters.SalespersonID)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Customer.Person").
		Preload("Vehicle.Segment").
		Preload("Salesperson.Person").
		Order("sold_at DESC").Order("id DESC").
		Offset(offset).Limit(pageSize).
		Find(&sales).Error
	return sales, total, err
}

func (r *SaleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Sale{}).Count(&count).Error
	return count, err
}
