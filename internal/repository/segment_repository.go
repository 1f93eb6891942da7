package repository

import (
	"context"
	"errors"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"gorm.io/gorm"
)

type SegmentRepository struct {
	db *gorm.DB
}

func NewSegmentRepository(db *gorm.DB) *SegmentRepository {
	return &SegmentRepository{db: db}
}

// FirstOrCreateByName returns the segment with the exact name, creating it when missing
func (r *SegmentRepository) FirstOrCreateByName(ctx context.Context, name string) (*domain.Segment, bool, error) {
	var segment domain.Segment
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&segment).Error
	if err == nil {
		return &segment, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	segment = domain.Segment{Name: name}
	if err := r.db.WithContext(ctx).Create(&segment).Error; err != nil {
		return nil, false, err
	}
	return &segment, true, nil
}

func (r *SegmentRepository) List(ctx context.Context) ([]domain.Segment, error) {
	var segments []domain.Segment
	err := r.db.WithContext(ctx).Order("name ASC").Find(&segments).Error
	return segments, err
}

func (r *SegmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Segment{}).Count(&count).Error
	return count, err
}
