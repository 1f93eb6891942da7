package service

import (
	"context"
	"fmt"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/mapper"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/repository"
	"go.uber.org/zap"
)

type SaleService struct {
	saleRepo *repository.SaleRepository
	logger   *zap.Logger
}

func NewSaleService(saleRepo *repository.SaleRepository, logger *zap.Logger) *SaleService {
	return &SaleService{saleRepo: saleRepo, logger: logger}
}

// List returns sales most recent first, with their customer, vehicle and salesperson
func (s *SaleService) List(ctx context.Context, page, pageSize int, filters *repository.SaleFilters) (*domain.PaginatedResponse, error) {
	sales, total, err := s.saleRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	dtos := make([]domain.SaleDTO, len(sales))
	for i := range sales {
		dtos[i] = mapper.ToSaleDTO(&sales[i])
	}
	return paginate(dtos, total, page, pageSize), nil
}
