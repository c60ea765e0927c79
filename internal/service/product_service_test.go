package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/repository"
)

func validProduct() *domain.Product {
	return &domain.Product{
		Name:        "Mechanical Keyboard",
		Description: "A sturdy keyboard with tactile switches.",
		Price:       89.99,
		Category:    "electronics",
		Stock:       25,
		Image:       "https://img.example.com/keyboard.png",
	}
}

func TestCreateProduct_Valid(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewProductService(repo)

	p := validProduct()
	require.NoError(t, svc.CreateProduct(context.Background(), p))

	stored, err := repo.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mechanical Keyboard", stored.Name)
}

func TestCreateProduct_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Product)
	}{
		{"short name", func(p *domain.Product) { p.Name = "ab" }},
		{"long name", func(p *domain.Product) { p.Name = strings.Repeat("x", 101) }},
		{"short description", func(p *domain.Product) { p.Description = "too short" }},
		{"negative price", func(p *domain.Product) { p.Price = -1 }},
		{"price too high", func(p *domain.Product) { p.Price = 1_000_001 }},
		{"unknown category", func(p *domain.Product) { p.Category = "garden" }},
		{"negative stock", func(p *domain.Product) { p.Stock = -1 }},
		{"bad image url", func(p *domain.Product) { p.Image = "ftp://example.com/a.bmp" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewProductService(newMockProductRepo())
			p := validProduct()
			tt.mutate(p)

			err := svc.CreateProduct(context.Background(), p)

			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestCreateProduct_EmptyImageAllowed(t *testing.T) {
	svc := NewProductService(newMockProductRepo())
	p := validProduct()
	p.Image = ""

	assert.NoError(t, svc.CreateProduct(context.Background(), p))
}

func TestUpdateProduct_UnknownProduct(t *testing.T) {
	svc := NewProductService(newMockProductRepo())
	p := validProduct()
	p.ID = "missing"

	err := svc.UpdateProduct(context.Background(), p)

	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestListProducts_ClampsPagination(t *testing.T) {
	repo := newMockProductRepo(validProduct())
	svc := NewProductService(repo)

	_, total, err := svc.ListProducts(context.Background(), repository.ProductFilter{Page: -3, Limit: 5000})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestGetProduct_NotFound(t *testing.T) {
	svc := NewProductService(newMockProductRepo())

	_, err := svc.GetProduct(context.Background(), "missing")

	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}
