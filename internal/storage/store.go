// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitt/internal/models"
)

// ErrNotFound is returned when a bill does not exist.
var ErrNotFound = errors.New("bill not found")

// Store defines the interface for bill storage operations.
// This abstraction allows swapping storage backends (SQLite for the server,
// JSON files for the command line) without changing the callers.
//
// Every write stores a complete bill: a reader never sees a half written one.
type Store interface {
	// CreateBill persists a new bill.
	// The bill.ID and CreatedAt fields are populated by the store when empty.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a bill by its ID.
	// Returns an error wrapping ErrNotFound if the bill does not exist.
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// UpdateBill replaces an existing bill.
	// Returns an error wrapping ErrNotFound if the bill does not exist.
	UpdateBill(ctx context.Context, bill *models.Bill) error

	// DeleteBill removes a bill.
	// Returns an error wrapping ErrNotFound if the bill does not exist.
	DeleteBill(ctx context.Context, billID string) error

	// ListBills returns all bills, most recently updated first.
	ListBills(ctx context.Context) ([]*models.Bill, error)

	// Close releases any resources held by the store.
	Close() error
}
