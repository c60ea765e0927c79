package repository

import (
	"context"
	"errors"

	"github.com/fjod/go_shop/internal/domain"
)

var (
	ErrCartNotFound      = errors.New("cart not found")
	ErrItemNotFound      = errors.New("item not found in cart")
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateFavorite = errors.New("product already in favorites")
)

// CartRepository defines cart storage operations.
// Consumers define this interface, not the MongoDB implementation.
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	RemoveItem(ctx context.Context, userID, productID string) error
	ClearCart(ctx context.Context, userID string) error
}

// ProductFilter narrows and orders catalogue listings.
type ProductFilter struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
	Search   string
	Sort     string
	Page     int
	Limit    int
}

type ProductRepository interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]*domain.Product, int64, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// OrderFilter narrows the admin order listing.
type OrderFilter struct {
	Status domain.OrderStatus
	Page   int
	Limit  int
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id string) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]*domain.Order, int64, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

type FavoriteRepository interface {
	ListFavorites(ctx context.Context, userID string) ([]*domain.Favorite, error)
	AddFavorite(ctx context.Context, fav *domain.Favorite) error
	RemoveFavorite(ctx context.Context, userID, productID string) error
	IsFavorite(ctx context.Context, userID, productID string) (bool, error)
}
