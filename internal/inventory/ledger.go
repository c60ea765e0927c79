package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_shop/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// InsufficientStockError names the product whose stock could not cover a
// requested quantity.
type InsufficientStockError struct {
	ProductID string
	Name      string
}

func (e *InsufficientStockError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("insufficient stock for product %q", e.Name)
	}
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}

// IsInsufficientStock reports whether err is a stock shortage.
func IsInsufficientStock(err error) bool {
	var ise *InsufficientStockError
	return errors.As(err, &ise)
}

// Ledger owns product stock counters. Reserve must be a single atomic store
// operation so that concurrent reservations against the same product never
// drive stock negative. Release is an unconditional increment; callers must
// not release the same reservation twice.
type Ledger interface {
	// Read returns the current product document (stock, price, name).
	Read(ctx context.Context, productID string) (*domain.Product, error)

	// Reserve atomically decrements stock by quantity if stock >= quantity.
	// Returns *InsufficientStockError when stock is short, ErrProductNotFound
	// when the product does not exist.
	Reserve(ctx context.Context, productID string, quantity int) error

	// Release atomically increments stock by quantity.
	Release(ctx context.Context, productID string, quantity int) error
}
