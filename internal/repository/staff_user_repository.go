package repository

import (
	"context"
	"errors"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StaffUserRepository struct {
	db *gorm.DB
}

func NewStaffUserRepository(db *gorm.DB) *StaffUserRepository {
	return &StaffUserRepository{db: db}
}

// FirstOrCreate loads the staff role of staff.PersonID into staff, or inserts
// staff when the person has none. The boolean reports whether it was created.
func (r *StaffUserRepository) FirstOrCreate(ctx context.Context, staff *domain.StaffUser) (bool, error) {
	var existing domain.StaffUser
	err := r.db.WithContext(ctx).Where("person_id = ?", staff.PersonID).First(&existing).Error
	if err == nil {
		*staff = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(staff).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *StaffUserRepository) GetByID(ctx context.Context, personID uint) (*domain.StaffUser, error) {
	var staff domain.StaffUser
	err := r.db.WithContext(ctx).Preload("Person").Where("person_id = ?", personID).First(&staff).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

// FindByPersonName returns the staff user whose person name equals name exactly,
// lowest person id first.
func (r *StaffUserRepository) FindByPersonName(ctx context.Context, name string) (*domain.StaffUser, error) {
	var staff domain.StaffUser
	err := r.db.WithContext(ctx).
		Joins("JOIN persons ON persons.id = staff_users.person_id").
		Where("persons.name = ?", name).
		Order("staff_users.person_id ASC").
		First(&staff).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *StaffUserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.StaffUser{}).Count(&count).Error
	return count, err
}
