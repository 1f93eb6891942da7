package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PersonRepository struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

func (r *PersonRepository) Create(ctx context.Context, person *domain.Person) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(person).Error
}

func (r *PersonRepository) GetByID(ctx context.Context, id uint) (*domain.Person, error) {
	var person domain.Person
	if err := r.db.WithContext(ctx).First(&person, id).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *PersonRepository) GetByTaxID(ctx context.Context, taxID string) (*domain.Person, error) {
	var person domain.Person
	if err := r.db.WithContext(ctx).Where("tax_id = ?", taxID).First(&person).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

// FirstOrCreateByTaxID loads the person holding person.TaxID into person, or
// inserts person when none exists. The boolean reports whether it was created.
func (r *PersonRepository) FirstOrCreateByTaxID(ctx context.Context, person *domain.Person) (bool, error) {
	existing, err := r.GetByTaxID(ctx, person.TaxID)
	if err == nil {
		*person = *existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to look up person: %w", err)
	}

	if err := r.Create(ctx, person); err != nil {
		return false, err
	}
	return true, nil
}

// ListWithCustomerRole returns the persons that hold a customer role, oldest first
func (r *PersonRepository) ListWithCustomerRole(ctx context.Context) ([]domain.Person, error) {
	var persons []domain.Person
	err := r.db.WithContext(ctx).
		Joins("JOIN customers ON customers.person_id = persons.id").
		Order("persons.id ASC").
		Find(&persons).Error
	return persons, err
}

// CountWithoutCustomerRole counts persons that are not customers (leads)
func (r *PersonRepository) CountWithoutCustomerRole(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Person{}).
		Joins("LEFT JOIN customers ON customers.person_id = persons.id").
		Where("customers.person_id IS NULL").
		Count(&count).Error
	return count, err
}

// CountSynthetic counts generated leads
func (r *PersonRepository) CountSynthetic(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Person{}).Where("synthetic = ?", true).Count(&count).Error
	return count, err
}
