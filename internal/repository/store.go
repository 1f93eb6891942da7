package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// MaxPageSize caps list endpoints
const MaxPageSize = 200

// DefaultPageSize is used when the caller passes none
const DefaultPageSize = 20

// purgeOrder lists tables child-first so no delete trips a foreign key
var purgeOrder = []string{"sales", "customers", "staff_users", "persons", "vehicles", "segments"}

// Store bundles the repositories over one database handle. A Store built
// inside Transaction routes every repository through the transaction.
type Store struct {
	db         *gorm.DB
	Persons    *PersonRepository
	Customers  *CustomerRepository
	StaffUsers *StaffUserRepository
	Segments   *SegmentRepository
	Vehicles   *VehicleRepository
	Sales      *SaleRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Persons:    NewPersonRepository(db),
		Customers:  NewCustomerRepository(db),
		StaffUsers: NewStaffUserRepository(db),
		Segments:   NewSegmentRepository(db),
		Vehicles:   NewVehicleRepository(db),
		Sales:      NewSaleRepository(db),
	}
}

// DB returns the underlying handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn with a Store bound to a new transaction. Returning an
// error from fn rolls back everything it wrote.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Purge deletes every populated row in one transaction: either all tables
// are emptied or none is touched.
func (s *Store) Purge(ctx context.Context) (map[string]int64, error) {
	deleted := make(map[string]int64, len(purgeOrder))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range purgeOrder {
			result := tx.Exec("DELETE FROM " + table)
			if result.Error != nil {
				return fmt.Errorf("failed to purge %s: %w", table, result.Error)
			}
			deleted[table] = result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// normalizePage clamps pagination input and returns the row offset
func normalizePage(page, pageSize int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize, (page - 1) * pageSize
}
