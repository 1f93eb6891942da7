package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/mapper"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/repository"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/taxid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CustomerService struct {
	customerRepo *repository.CustomerRepository
	classifier   Classifier
	logger       *zap.Logger
}

func NewCustomerService(
	customerRepo *repository.CustomerRepository,
	classifier Classifier,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		classifier:   classifier,
		logger:       logger,
	}
}

// List returns customers ordered by name. A taxID filter is normalized first,
// so "123.456.789-00" finds 12345678900.
func (s *CustomerService) List(ctx context.Context, page, pageSize int, filters *repository.CustomerFilters) (*domain.PaginatedResponse, error) {
	if filters != nil && filters.TaxID != "" {
		filters.TaxID = taxid.Normalize(filters.TaxID)
	}

	customers, total, err := s.customerRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	dtos := make([]domain.CustomerDTO, len(customers))
	for i := range customers {
		dtos[i] = mapper.ToCustomerDTO(&customers[i])
	}
	return paginate(dtos, total, page, pageSize), nil
}

func (s *CustomerService) GetByID(ctx context.Context, id uint) (*domain.CustomerDTO, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

// UpdateStatus moves a customer to another lifecycle status
func (s *CustomerService) UpdateStatus(ctx context.Context, id uint, status domain.CustomerStatus) (*domain.CustomerDTO, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	if err := s.customerRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update customer status: %w", err)
	}

	s.logger.Info("Customer status updated",
		zap.Uint("customer_id", id),
		zap.String("status", string(status)),
	)
	return s.GetByID(ctx, id)
}

// Classify scores a customer with the configured classifier and stores the result
func (s *CustomerService) Classify(ctx context.Context, id uint) (*domain.ClassificationResultDTO, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if customer.Person == nil {
		return nil, fmt.Errorf("customer %d has no person loaded", id)
	}

	prediction, err := s.classifier.Predict(ctx, FeaturesOf(customer.Person))
	if err != nil {
		return nil, err
	}

	classification := domain.ClassificationStandardPotential
	if prediction == 1 {
		classification = domain.ClassificationHighPotential
	}
	if err := s.customerRepo.UpdateClassification(ctx, id, classification); err != nil {
		return nil, fmt.Errorf("failed to store classification: %w", err)
	}

	s.logger.Info("Customer classified",
		zap.Uint("customer_id", id),
		zap.String("classification", string(classification)),
	)
	return &domain.ClassificationResultDTO{PersonID: id, Classification: classification}, nil
}

func paginate(data interface{}, total int64, page, pageSize int) *domain.PaginatedResponse {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = repository.DefaultPageSize
	}
	if pageSize > repository.MaxPageSize {
		pageSize = repository.MaxPageSize
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
