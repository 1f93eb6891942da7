package service

import (
	"context"
	"fmt"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/repository"
	"go.uber.org/zap"
)

type DashboardService struct {
	personRepo   *repository.PersonRepository
	customerRepo *repository.CustomerRepository
	logger       *zap.Logger
}

func NewDashboardService(
	personRepo *repository.PersonRepository,
	customerRepo *repository.CustomerRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		personRepo:   personRepo,
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// GetStats aggregates customer and lead counts for the dashboard
func (s *DashboardService) GetStats(ctx context.Context) (*domain.DashboardStats, error) {
	totalCustomers, err := s.customerRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	totalLeads, err := s.personRepo.CountWithoutCustomerRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	byStatus, err := s.customerRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count customers by status: %w", err)
	}

	byClassification, err := s.customerRepo.CountByClassification(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count customers by classification: %w", err)
	}

	return &domain.DashboardStats{
		TotalCustomers:   totalCustomers,
		TotalLeads:       totalLeads,
		ByStatus:         nonNil(byStatus),
		ByClassification: nonNil(byClassification),
	}, nil
}

func nonNil(counts []domain.CountByValue) []domain.CountByValue {
	if counts == nil {
		return []domain.CountByValue{}
	}
	return counts
}
