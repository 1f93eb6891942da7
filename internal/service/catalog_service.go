package service

import (
	"context"
	"fmt"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/mapper"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/repository"
	"go.uber.org/zap"
)

// CatalogService serves segments and vehicles
type CatalogService struct {
	segmentRepo *repository.SegmentRepository
	vehicleRepo *repository.VehicleRepository
	logger      *zap.Logger
}

func NewCatalogService(
	segmentRepo *repository.SegmentRepository,
	vehicleRepo *repository.VehicleRepository,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		segmentRepo: segmentRepo,
		vehicleRepo: vehicleRepo,
		logger:      logger,
	}
}

func (s *CatalogService) ListSegments(ctx context.Context) ([]domain.SegmentDTO, error) {
	segments, err := s.segmentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list segments: %w", err)
	}
	dtos := make([]domain.SegmentDTO, len(segments))
	for i := range segments {
		dtos[i] = mapper.ToSegmentDTO(&segments[i])
	}
	return dtos, nil
}

// ListVehicles returns vehicles ordered by model
func (s *CatalogService) ListVehicles(ctx context.Context, page, pageSize int, filters *repository.VehicleFilters) (*domain.PaginatedResponse, error) {
	vehicles, total, err := s.vehicleRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	dtos := make([]domain.VehicleDTO, len(vehicles))
	for i := range vehicles {
		dtos[i] = mapper.ToVehicleDTO(&vehicles[i])
	}
	return paginate(dtos, total, page, pageSize), nil
}
