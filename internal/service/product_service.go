package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/repository"
)

var imageURLPattern = regexp.MustCompile(`(?i)^https?://.+\.(jpg|jpeg|png|gif|webp)$`)

type ProductService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, int64, error) {
	if filter.Limit > 100 || filter.Limit < 1 {
		filter.Limit = 100
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	return s.repo.ListProducts(ctx, filter)
}

func (s *ProductService) CreateProduct(ctx context.Context, p *domain.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	return s.repo.CreateProduct(ctx, p)
}

func (s *ProductService) UpdateProduct(ctx context.Context, p *domain.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	return s.repo.UpdateProduct(ctx, p)
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.DeleteProduct(ctx, id)
}

func validateProduct(p *domain.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)

	if len(p.Name) < 3 || len(p.Name) > 100 {
		return validationErrorf("product name must be between 3 and 100 characters")
	}
	if len(p.Description) < 10 || len(p.Description) > 2000 {
		return validationErrorf("product description must be between 10 and 2000 characters")
	}
	if p.Price < 0 || p.Price > 1_000_000 {
		return validationErrorf("product price must be between 0 and 1,000,000")
	}
	if !domain.ValidCategory(p.Category) {
		return validationErrorf("unknown product category")
	}
	if p.Stock < 0 {
		return validationErrorf("product stock cannot be negative")
	}
	if p.Image != "" && !imageURLPattern.MatchString(p.Image) {
		return validationErrorf("image must be a valid image URL")
	}
	return nil
}
