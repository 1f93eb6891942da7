package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaginatedResponse wraps a page of list results
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

type PersonDTO struct {
	ID              uint    `json:"id"`
	Name            string  `json:"name"`
	TaxID           string  `json:"taxId"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Address         *string `json:"address,omitempty"`
	Age             *int    `json:"age,omitempty"`
	EngagementScore int     `json:"engagementScore"`
}

type CustomerDTO struct {
	PersonID       uint                   `json:"personId"`
	Person         PersonDTO              `json:"person"`
	Classification CustomerClassification `json:"classification"`
	Status         CustomerStatus         `json:"status"`
}

type StaffUserDTO struct {
	PersonID uint         `json:"personId"`
	Profile  StaffProfile `json:"profile"`
	Person   PersonDTO    `json:"person"`
}

type SegmentDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type VehicleDTO struct {
	ID      uint             `json:"id"`
	Brand   string           `json:"brand"`
	Model   string           `json:"model"`
	Year    *int             `json:"year,omitempty"`
	Price   *decimal.Decimal `json:"price,omitempty"`
	Chassis *string          `json:"chassis,omitempty"`
	Segment *SegmentDTO      `json:"segment,omitempty"`
}

type SaleDTO struct {
	ID            uint            `json:"id"`
	SoldAt        time.Time       `json:"soldAt"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Customer      CustomerDTO     `json:"customer"`
	Vehicle       VehicleDTO      `json:"vehicle"`
	Salesperson   StaffUserDTO    `json:"salesperson"`
}

// UpdateCustomerStatusRequest is the body of PATCH /customers/{id}/status
type UpdateCustomerStatusRequest struct {
	Status CustomerStatus `json:"status" validate:"required,oneof=new_contact negotiating sold lost"`
}

// ClassificationResultDTO is returned after a customer has been scored
type ClassificationResultDTO struct {
	PersonID       uint                   `json:"personId"`
	Classification CustomerClassification `json:"classification"`
}

// CountByValue is one bucket of a grouped count
type CountByValue struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// DashboardStats is the aggregate read by the dashboard
type DashboardStats struct {
	TotalCustomers   int64          `json:"totalCustomers"`
	TotalLeads       int64          `json:"totalLeads"`
	ByStatus         []CountByValue `json:"byStatus"`
	ByClassification []CountByValue `json:"byClassification"`
}

// LoginRequest authenticates a staff user by tax identifier and password
type LoginRequest struct {
	TaxID    string `json:"taxId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued bearer token
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      StaffUserDTO `json:"user"`
}
