// Package testutil provides in-memory databases and fixtures for tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/database"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory SQLite database with the full schema.
// The pool is limited to one connection, so code under test must run every
// statement of a transaction on the transaction handle.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "failed to open sqlite test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CreateTestPerson inserts a bare person (a lead)
func CreateTestPerson(t *testing.T, db *gorm.DB, name, taxID string) *domain.Person {
	t.Helper()
	person := &domain.Person{
		Name:            name,
		TaxID:           taxID,
		EngagementScore: domain.DefaultEngagementScore,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(person).Error)
	return person
}

// CreateTestCustomer inserts a person with a customer role
func CreateTestCustomer(t *testing.T, db *gorm.DB, name, taxID string) *domain.Customer {
	t.Helper()
	person := CreateTestPerson(t, db, name, taxID)
	customer := &domain.Customer{
		PersonID:       person.ID,
		Classification: domain.ClassificationUnclassified,
		Status:         domain.CustomerStatusNewContact,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(customer).Error)
	customer.Person = person
	return customer
}

// CreateTestStaffUser inserts a person with a staff role
func CreateTestStaffUser(t *testing.T, db *gorm.DB, name, taxID string, profile domain.StaffProfile) *domain.StaffUser {
	t.Helper()
	person := CreateTestPerson(t, db, name, taxID)
	staff := &domain.StaffUser{
		PersonID:     person.ID,
		PasswordHash: "test-hash",
		Profile:      profile,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(staff).Error)
	staff.Person = person
	return staff
}

// CreateTestVehicle inserts a vehicle, creating its segment when named
func CreateTestVehicle(t *testing.T, db *gorm.DB, model, segmentName string) *domain.Vehicle {
	t.Helper()
	vehicle := &domain.Vehicle{Brand: domain.DefaultVehicleBrand, Model: model}
	if segmentName != "" {
		segment := domain.Segment{Name: segmentName}
		require.NoError(t, db.Where(domain.Segment{Name: segmentName}).FirstOrCreate(&segment).Error)
		vehicle.SegmentID = &segment.ID
		vehicle.Segment = &segment
	}
	require.NoError(t, db.Omit(clause.Associations).Create(vehicle).Error)
	return vehicle
}
