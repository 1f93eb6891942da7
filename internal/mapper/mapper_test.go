package mapper_test

import (
	"testing"
	"time"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/mapper"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSaleDTO(t *testing.T) {
	soldAt := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	segment := &domain.Segment{BaseModel: domain.BaseModel{ID: 3}, Name: "Motos"}
	sale := &domain.Sale{
		BaseModel:     domain.BaseModel{ID: 9},
		SoldAt:        soldAt,
		Amount:        decimal.Zero,
		PaymentMethod: domain.PaymentFinancing,
		Customer: &domain.Customer{
			PersonID: 1,
			Person:   &domain.Person{BaseModel: domain.BaseModel{ID: 1}, Name: "Ana Silva", TaxID: "12345678900"},
			Status:   domain.CustomerStatusSold,
		},
		Vehicle: &domain.Vehicle{BaseModel: domain.BaseModel{ID: 4}, Brand: "Honda", Model: "CG 160", Segment: segment},
		Salesperson: &domain.StaffUser{
			PersonID:     2,
			Person:       &domain.Person{BaseModel: domain.BaseModel{ID: 2}, Name: "Bruno Costa"},
			PasswordHash: "secret",
			Profile:      domain.StaffProfileSalesperson,
		},
	}

	dto := mapper.ToSaleDTO(sale)

	assert.Equal(t, uint(9), dto.ID)
	assert.Equal(t, soldAt, dto.SoldAt)
	assert.Equal(t, "Ana Silva", dto.Customer.Person.Name)
	assert.Equal(t, domain.CustomerStatusSold, dto.Customer.Status)
	require.NotNil(t, dto.Vehicle.Segment)
	assert.Equal(t, "Motos", dto.Vehicle.Segment.Name)
	assert.Equal(t, "Bruno Costa", dto.Salesperson.Person.Name)
}

func TestToVehicleDTO_WithoutSegment(t *testing.T) {
	dto := mapper.ToVehicleDTO(&domain.Vehicle{Model: "Civic"})
	assert.Nil(t, dto.Segment)
	assert.Equal(t, "Civic", dto.Model)
}

func TestToPersonDTO_Nil(t *testing.T) {
	assert.Equal(t, domain.PersonDTO{}, mapper.ToPersonDTO(nil))
}
