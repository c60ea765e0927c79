package inventory

import (
	"context"
	"sync"

	"github.com/fjod/go_shop/internal/domain"
)

// MemoryLedger implements Ledger with in-memory storage. It mirrors the
// conditional-decrement semantics of the Mongo ledger and is used in tests.
type MemoryLedger struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		products: make(map[string]*domain.Product),
	}
}

// SetProduct seeds or replaces a product.
func (m *MemoryLedger) SetProduct(p domain.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := p
	m.products[p.ID] = &cp
}

func (m *MemoryLedger) Read(_ context.Context, productID string) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	product, exists := m.products[productID]
	if !exists {
		return nil, ErrProductNotFound
	}

	cp := *product
	return &cp, nil
}

func (m *MemoryLedger) Reserve(_ context.Context, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	product, exists := m.products[productID]
	if !exists {
		return ErrProductNotFound
	}
	if product.Stock < quantity {
		return &InsufficientStockError{ProductID: productID, Name: product.Name}
	}

	product.Stock -= quantity
	return nil
}

func (m *MemoryLedger) Release(_ context.Context, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	product, exists := m.products[productID]
	if !exists {
		return ErrProductNotFound
	}

	product.Stock += quantity
	return nil
}
