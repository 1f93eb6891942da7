package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BaseModel carries the auto-increment key and timestamps shared by every table.
// Insertion order of the key is what "first match" means when names collide.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// DefaultEngagementScore is used for persons with no drawn score
const DefaultEngagementScore = 5

// Engagement scores are conventionally bounded to this range
const (
	MinEngagementScore = 1
	MaxEngagementScore = 10
)

// Column limits shared by the gorm tags below and the SQL migrations.
// Lengths count characters, as VARCHAR(n) does.
const (
	MaxTaxIDLen        = 32
	MaxPersonNameLen   = 150
	MaxEmailLen        = 100
	MaxPhoneLen        = 20
	MaxAddressLen      = 255
	MaxSegmentNameLen  = 100
	MaxVehicleModelLen = 100
	MaxChassisLen      = 50
)

// MaxAge bounds plausible ages; anything above is treated as unknown
const MaxAge = 150

// Person is the identity anchor. TaxID holds the canonical digit-only
// identifier for real persons and a LEAD- prefixed placeholder for synthetic leads.
type Person struct {
	BaseModel
	TaxID           string  `gorm:"type:varchar(32);not null;uniqueIndex"`
	Name            string  `gorm:"type:varchar(150);not null;index"`
	Email           *string `gorm:"type:varchar(100);uniqueIndex"`
	Phone           *string `gorm:"type:varchar(20)"`
	Address         *string `gorm:"type:varchar(255)"`
	Age             *int
	EngagementScore int  `gorm:"not null;default:5"`
	Synthetic       bool `gorm:"not null;default:false;index"`
}

// TableName keeps the table name stable instead of gorm's "people"
func (Person) TableName() string {
	return "persons"
}

// CustomerClassification is written back by the external classifier
type CustomerClassification string

const (
	ClassificationUnclassified      CustomerClassification = "unclassified"
	ClassificationStandardPotential CustomerClassification = "standard_potential"
	ClassificationHighPotential     CustomerClassification = "high_potential"
)

// IsValid reports whether c is a known classification
func (c CustomerClassification) IsValid() bool {
	switch c {
	case ClassificationUnclassified, ClassificationStandardPotential, ClassificationHighPotential:
		return true
	}
	return false
}

// CustomerStatus is the sales lifecycle of a customer
type CustomerStatus string

const (
	CustomerStatusNewContact  CustomerStatus = "new_contact"
	CustomerStatusNegotiating CustomerStatus = "negotiating"
	CustomerStatusSold        CustomerStatus = "sold"
	CustomerStatusLost        CustomerStatus = "lost"
)

// IsValid reports whether s is a known status
func (s CustomerStatus) IsValid() bool {
	switch s {
	case CustomerStatusNewContact, CustomerStatusNegotiating, CustomerStatusSold, CustomerStatusLost:
		return true
	}
	return false
}

// CustomerStatuses lists every lifecycle status in display order
func CustomerStatuses() []CustomerStatus {
	return []CustomerStatus{
		CustomerStatusNewContact,
		CustomerStatusNegotiating,
		CustomerStatusSold,
		CustomerStatusLost,
	}
}

// Customer marks a Person as a buyer. Its key is the owning person's key.
type Customer struct {
	PersonID       uint                   `gorm:"primaryKey;autoIncrement:false"`
	Person         *Person                `gorm:"foreignKey:PersonID;constraint:OnDelete:CASCADE"`
	Classification CustomerClassification `gorm:"type:varchar(30);not null;default:'unclassified';index"`
	Status         CustomerStatus         `gorm:"type:varchar(30);not null;default:'new_contact';index"`
	CreatedAt      time.Time              `gorm:"not null"`
	UpdatedAt      time.Time              `gorm:"not null"`
}

// StaffProfile is the internal role of a staff user
type StaffProfile string

const (
	StaffProfileAdmin       StaffProfile = "admin"
	StaffProfileAnalyst     StaffProfile = "analyst"
	StaffProfileSalesperson StaffProfile = "salesperson"
	StaffProfileSystem      StaffProfile = "system"
)

// StaffUser marks a Person as an internal actor. Its key is the owning person's key.
type StaffUser struct {
	PersonID     uint         `gorm:"primaryKey;autoIncrement:false"`
	Person       *Person      `gorm:"foreignKey:PersonID;constraint:OnDelete:CASCADE"`
	PasswordHash string       `gorm:"type:varchar(255);not null"`
	Profile      StaffProfile `gorm:"type:varchar(50);not null;index"`
	CreatedAt    time.Time    `gorm:"not null"`
	UpdatedAt    time.Time    `gorm:"not null"`
}

// Segment is a named vehicle category
type Segment struct {
	BaseModel
	Name string `gorm:"type:varchar(100);not null;uniqueIndex"`
}

// DefaultVehicleBrand is attached to catalog vehicles on first creation
const DefaultVehicleBrand = "Honda"

// Vehicle is a model reference belonging to a segment
type Vehicle struct {
	BaseModel
	Brand     string           `gorm:"type:varchar(100);not null;default:'Honda'"`
	Model     string           `gorm:"type:varchar(100);not null;index"`
	Year      *int
	Price     *decimal.Decimal `gorm:"type:numeric(10,2)"`
	Chassis   *string          `gorm:"type:varchar(50);uniqueIndex"`
	SegmentID *uint            `gorm:"index"`
	Segment   *Segment         `gorm:"constraint:OnDelete:SET NULL"`
}

// PaymentMethod tags how a sale was paid
type PaymentMethod string

const (
	PaymentFinancing  PaymentMethod = "FIN"
	PaymentCash       PaymentMethod = "AV"
	PaymentConsortium PaymentMethod = "CONS"
)

// Sale links a customer, a vehicle and the salesperson who closed it.
// Referenced rows cannot be deleted while a sale points at them.
type Sale struct {
	BaseModel
	CustomerID    uint            `gorm:"not null;index"`
	Customer      *Customer       `gorm:"foreignKey:CustomerID;references:PersonID;constraint:OnDelete:RESTRICT"`
	VehicleID     uint            `gorm:"not null;index"`
	Vehicle       *Vehicle        `gorm:"constraint:OnDelete:RESTRICT"`
	SalespersonID uint            `gorm:"not null;index"`
	Salesperson   *StaffUser      `gorm:"foreignKey:SalespersonID;references:PersonID;constraint:OnDelete:RESTRICT"`
	SoldAt        time.Time       `gorm:"not null;index"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(50)"`
}
