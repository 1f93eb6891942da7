package mapper

import (
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
)

// ToPersonDTO converts Person to PersonDTO
func ToPersonDTO(person *domain.Person) domain.PersonDTO {
	if person == nil {
		return domain.PersonDTO{}
	}
	return domain.PersonDTO{
		ID:              person.ID,
		Name:            person.Name,
		TaxID:           person.TaxID,
		Email:           person.Email,
		Phone:           person.Phone,
		Address:         person.Address,
		Age:             person.Age,
		EngagementScore: person.EngagementScore,
	}
}

// ToCustomerDTO converts Customer (with its Person loaded) to CustomerDTO
func ToCustomerDTO(customer *domain.Customer) domain.CustomerDTO {
	return domain.CustomerDTO{
		PersonID:       customer.PersonID,
		Person:         ToPersonDTO(customer.Person),
		Classification: customer.Classification,
		Status:         customer.Status,
	}
}

// ToStaffUserDTO converts StaffUser to StaffUserDTO. The password hash never leaves the store.
func ToStaffUserDTO(staff *domain.StaffUser) domain.StaffUserDTO {
	return domain.StaffUserDTO{
		PersonID: staff.PersonID,
		Profile:  staff.Profile,
		Person:   ToPersonDTO(staff.Person),
	}
}

// ToSegmentDTO converts Segment to SegmentDTO
func ToSegmentDTO(segment *domain.Segment) domain.SegmentDTO {
	return domain.SegmentDTO{
		ID:   segment.ID,
		Name: segment.Name,
	}
}

// ToVehicleDTO converts Vehicle to VehicleDTO
func ToVehicleDTO(vehicle *domain.Vehicle) domain.VehicleDTO {
	dto := domain.VehicleDTO{
		ID:      vehicle.ID,
		Brand:   vehicle.Brand,
		Model:   vehicle.Model,
		Year:    vehicle.Year,
		Price:   vehicle.Price,
		Chassis: vehicle.Chassis,
	}
	if vehicle.Segment != nil {
		segment := ToSegmentDTO(vehicle.Segment)
		dto.Segment = &segment
	}
	return dto
}

// ToSaleDTO converts Sale with its associations loaded to SaleDTO
func ToSaleDTO(sale *domain.Sale) domain.SaleDTO {
	dto := domain.SaleDTO{
		ID:            sale.ID,
		SoldAt:        sale.SoldAt,
		Amount:        sale.Amount,
		PaymentMethod: sale.PaymentMethod,
	}
	if sale.Customer != nil {
		dto.Customer = ToCustomerDTO(sale.Customer)
	}
	if sale.Vehicle != nil {
		dto.Vehicle = ToVehicleDTO(sale.Vehicle)
	}
	if sale.Salesperson != nil {
		dto.Salesperson = ToStaffUserDTO(sale.Salesperson)
	}
	return dto
}
