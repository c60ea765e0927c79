package service

import (
	"context"
	"errors"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/repository"
)

type FavoriteService struct {
	favorites repository.FavoriteRepository
	products  repository.ProductRepository
}

func NewFavoriteService(favorites repository.FavoriteRepository, products repository.ProductRepository) *FavoriteService {
	return &FavoriteService{
		favorites: favorites,
		products:  products,
	}
}

// ListFavorites resolves the user's favorites to products, newest first.
// Favorites pointing at since-deleted products are skipped.
func (s *FavoriteService) ListFavorites(ctx context.Context, userID string) ([]*domain.Product, error) {
	favorites, err := s.favorites.ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}

	products := make([]*domain.Product, 0, len(favorites))
	for _, fav := range favorites {
		product, err := s.products.GetProduct(ctx, fav.ProductID)
		if errors.Is(err, repository.ErrProductNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, nil
}

func (s *FavoriteService) AddFavorite(ctx context.Context, userID, productID string) error {
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return err
	}

	return s.favorites.AddFavorite(ctx, &domain.Favorite{
		UserID:    userID,
		ProductID: productID,
	})
}

func (s *FavoriteService) RemoveFavorite(ctx context.Context, userID, productID string) error {
	return s.favorites.RemoveFavorite(ctx, userID, productID)
}

func (s *FavoriteService) IsFavorite(ctx context.Context, userID, productID string) (bool, error) {
	return s.favorites.IsFavorite(ctx, userID, productID)
}
