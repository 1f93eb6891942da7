package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CustomerFilters narrows customer listings
type CustomerFilters struct {
	// TaxID matches the canonical identifier exactly
	TaxID string
	// Search matches name or tax id, case-insensitive substring
	Search string
}

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// FirstOrCreate gives the person a customer role if it has none yet
func (r *CustomerRepository) FirstOrCreate(ctx context.Context, personID uint) (*domain.Customer, bool, error) {
	var customer domain.Customer
	err := r.db.WithContext(ctx).Where("person_id = ?", personID).First(&customer).Error
	if err == nil {
		return &customer, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	customer = domain.Customer{
		PersonID:       personID,
		Classification: domain.ClassificationUnclassified,
		Status:         domain.CustomerStatusNewContact,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&customer).Error; err != nil {
		return nil, false, err
	}
	return &customer, true, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, personID uint) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.WithContext(ctx).Preload("Person").Where("person_id = ?", personID).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByPersonName returns the customer whose person name equals name exactly.
// Homonyms resolve to the lowest person id.
func (r *CustomerRepository) FindByPersonName(ctx context.Context, name string) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.WithContext(ctx).
		Joins("JOIN persons ON persons.id = customers.person_id").
		Where("persons.name = ?", name).
		Order("customers.person_id ASC").
		Preload("Person").
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// ListNames returns every customer name, used for diagnostics
func (r *CustomerRepository) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&domain.Customer{}).
		Joins("JOIN persons ON persons.id = customers.person_id").
		Order("customers.person_id ASC").
		Pluck("persons.name", &names).Error
	return names, err
}

func (r *CustomerRepository) List(ctx context.Context, page, pageSize int, filters *CustomerFilters) ([]domain.Customer, int64, error) {
	var customers []domain.Customer
	var total int64

	_, pageSize, offset := normalizePage(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Customer{}).
		Joins("JOIN persons ON persons.id = customers.person_id")

	if filters != nil {
		if filters.TaxID != "" {
			query = query.Where("persons.tax_id = ?", filters.TaxID)
		}
		if filters.Search != "" {
			searchPattern := "%" + strings.ToLower(filters.Search) + "%"
			query = query.Where("LOWER(persons.name) LIKE ? OR persons.tax_id LIKE ?", searchPattern, searchPattern)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Person").
		Order("persons.name ASC").Order("customers.person_id ASC").
		Offset(offset).Limit(pageSize).
		Find(&customers).Error
	return customers, total, err
}

// UpdateStatus sets the lifecycle status; gorm.ErrRecordNotFound when no such customer
func (r *CustomerRepository) UpdateStatus(ctx context.Context, personID uint, status domain.CustomerStatus) error {
	return r.updateColumn(ctx, personID, "status", status)
}

// UpdateClassification records the scorer's verdict; gorm.ErrRecordNotFound when no such customer
func (r *CustomerRepository) UpdateClassification(ctx context.Context, personID uint, classification domain.CustomerClassification) error {
	return r.updateColumn(ctx, personID, "classification", classification)
}

func (r *CustomerRepository) updateColumn(ctx context.Context, personID uint, column string, value interface{}) error {
	result := r.db.WithContext(ctx).Model(&domain.Customer{}).
		Where("person_id = ?", personID).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Customer{}).Count(&count).Error
	return count, err
}

// CountByStatus groups customers by lifecycle status, largest group first
func (r *CustomerRepository) CountByStatus(ctx context.Context) ([]domain.CountByValue, error) {
	return r.countBy(ctx, "status")
}

// CountByClassification groups customers by classification, largest group first
func (r *CustomerRepository) CountByClassification(ctx context.Context) ([]domain.CountByValue, error) {
	return r.countBy(ctx, "classification")
}

func (r *CustomerRepository) countBy(ctx context.Context, column string) ([]domain.CountByValue, error) {
	var results []domain.CountByValue
	err := r.db.WithContext(ctx).Model(&domain.Customer{}).
		Select(column + " AS value, COUNT(*) AS count").
		Group(column).
		Order("count DESC").Order(column + " ASC").
		Scan(&results).Error
	return results, err
}
