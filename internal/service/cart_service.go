package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fjod/go_shop/internal/cache"
	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/inventory"
	"github.com/fjod/go_shop/internal/repository"
	"golang.org/x/sync/singleflight"
)

type CartService struct {
	repo   repository.CartRepository
	ledger inventory.Ledger
	cache  cache.CartCache
	log    *slog.Logger
	sfg    singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, ledger inventory.Ledger, cartCache cache.CartCache, log *slog.Logger) *CartService {
	return &CartService{
		repo:   repo,
		ledger: ledger,
		cache:  cartCache,
		log:    log,
	}
}

// GetCart returns the user's cart, lazily treating an absent cart as empty.
// Carts are never deleted, only emptied, so a miss here just means the user
// has not touched their cart yet.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("cart cache get failed", slog.Any("err", err))
		}

		cart, errGet := s.repo.GetCart(ctx, userID)
		if errors.Is(errGet, repository.ErrCartNotFound) {
			now := time.Now()
			return &domain.Cart{
				UserID:    userID,
				Items:     []domain.CartItem{},
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), userID, cart); errSet != nil {
				s.log.Warn("cart cache set failed", slog.Any("err", errSet))
			}
		}()

		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem validates the product against live stock (a read-only check, not a
// reservation) and either increments the existing line or appends a new one
// with a denormalized snapshot of the product.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, validationErrorf("quantity must be at least 1")
	}

	product, err := s.ledger.Read(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, &inventory.InsufficientStockError{ProductID: productID, Name: product.Name}
	}

	cart, err := s.loadOrEmpty(ctx, userID)
	if err != nil {
		return nil, err
	}

	if idx := cart.FindItem(productID); idx >= 0 {
		cart.Items[idx].Quantity += quantity
	} else {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID: productID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.Image,
			Quantity:  quantity,
			AddedAt:   time.Now(),
		})
	}

	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		return nil, err
	}

	s.invalidateCache(userID)
	return cart, nil
}

// SetItemQuantity replaces the stored quantity. A quantity of zero or less
// removes the item. Updating an item that is not in the cart fails; use
// AddItem to insert.
func (s *CartService) SetItemQuantity(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		if err := s.RemoveItem(ctx, userID, productID); err != nil {
			return nil, err
		}
		return s.GetCart(ctx, userID)
	}

	product, err := s.ledger.Read(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, &inventory.InsufficientStockError{ProductID: productID, Name: product.Name}
	}

	cart, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, repository.ErrItemNotFound
		}
		return nil, err
	}

	idx := cart.FindItem(productID)
	if idx < 0 {
		return nil, repository.ErrItemNotFound
	}
	cart.Items[idx].Quantity = quantity

	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		return nil, err
	}

	s.invalidateCache(userID)
	return cart, nil
}

// RemoveItem removes the product's line if present. Removing an absent item
// or operating on an absent cart succeeds as a no-op.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) error {
	err := s.repo.RemoveItem(ctx, userID, productID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		return err
	}

	s.invalidateCache(userID)
	return nil
}

// ClearCart empties the cart's items. Clearing an absent cart succeeds.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	err := s.repo.ClearCart(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		return err
	}

	s.invalidateCache(userID)
	return nil
}

// Count returns the total quantity across items; zero for an absent cart.
func (s *CartService) Count(ctx context.Context, userID string) (int, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return 0, err
	}
	return cart.ItemCount(), nil
}

func (s *CartService) loadOrEmpty(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		now := time.Now()
		return &domain.Cart{
			UserID:    userID,
			Items:     []domain.CartItem{},
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	}
	return cart, err
}

func (s *CartService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.log.Warn("cart cache invalidate failed", slog.Any("err", err))
	}
}
