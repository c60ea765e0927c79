package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/go_shop/internal/cache"
	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/events"
	"github.com/fjod/go_shop/internal/inventory"
	"github.com/fjod/go_shop/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockCartSource implements CartSource for checkout tests.
type mockCartSource struct {
	cart     *domain.Cart
	getErr   error
	clearErr error
	cleared  bool
}

func (m *mockCartSource) GetCart(_ context.Context, _ string) (*domain.Cart, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.cart, nil
}

func (m *mockCartSource) ClearCart(_ context.Context, _ string) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.cleared = true
	m.cart.Items = []domain.CartItem{}
	return nil
}

// mockOrderWriter implements OrderWriter and captures the persisted order.
type mockOrderWriter struct {
	created *domain.Order
	err     error
}

func (m *mockOrderWriter) CreateOrder(_ context.Context, order *domain.Order) error {
	if m.err != nil {
		return m.err
	}
	now := time.Now()
	order.ID = "order-1"
	order.CreatedAt = now
	order.UpdatedAt = now
	m.created = order
	return nil
}

// mockPublisher implements events.Publisher and records published events.
type mockPublisher struct {
	published []events.OrderEvent
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, event events.OrderEvent) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, event)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

// raceLedger delegates to a MemoryLedger but fails Reserve for selected
// products, simulating a concurrent debit racing ahead of the pre-flight check.
type raceLedger struct {
	*inventory.MemoryLedger
	reserveErr map[string]error
}

func (l *raceLedger) Reserve(ctx context.Context, productID string, quantity int) error {
	if err, ok := l.reserveErr[productID]; ok {
		return err
	}
	return l.MemoryLedger.Reserve(ctx, productID, quantity)
}

// mockOrderRepo implements repository.OrderRepository over a map.
type mockOrderRepo struct {
	orders    map[string]*domain.Order
	createErr error
	updateErr error
}

func newMockOrderRepo(orders ...*domain.Order) *mockOrderRepo {
	m := &mockOrderRepo{orders: make(map[string]*domain.Order)}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *mockOrderRepo) CreateOrder(_ context.Context, order *domain.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepo) GetOrderByID(_ context.Context, id string) (*domain.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (m *mockOrderRepo) ListOrdersByUserID(_ context.Context, userID string) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) ListOrders(_ context.Context, filter repository.OrderFilter) ([]*domain.Order, int64, error) {
	var out []*domain.Order
	for _, o := range m.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (m *mockOrderRepo) UpdateOrderStatus(_ context.Context, id string, status domain.OrderStatus) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	order, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	return nil
}

// mockCartRepo implements repository.CartRepository over a map.
type mockCartRepo struct {
	carts     map[string]*domain.Cart
	upsertErr error
}

func newMockCartRepo(carts ...*domain.Cart) *mockCartRepo {
	m := &mockCartRepo{carts: make(map[string]*domain.Cart)}
	for _, c := range carts {
		m.carts[c.UserID] = c
	}
	return m
}

func (m *mockCartRepo) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	cart, ok := m.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	cp := *cart
	cp.Items = append([]domain.CartItem(nil), cart.Items...)
	return &cp, nil
}

func (m *mockCartRepo) UpsertCart(_ context.Context, cart *domain.Cart) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.carts[cart.UserID] = cart
	return nil
}

func (m *mockCartRepo) RemoveItem(_ context.Context, userID, productID string) error {
	cart, ok := m.carts[userID]
	if !ok {
		return repository.ErrCartNotFound
	}
	if idx := cart.FindItem(productID); idx >= 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	}
	return nil
}

func (m *mockCartRepo) ClearCart(_ context.Context, userID string) error {
	cart, ok := m.carts[userID]
	if !ok {
		return repository.ErrCartNotFound
	}
	cart.Items = []domain.CartItem{}
	return nil
}

// mockProductRepo implements repository.ProductRepository over a map.
type mockProductRepo struct {
	products  map[string]*domain.Product
	createErr error
}

func newMockProductRepo(products ...*domain.Product) *mockProductRepo {
	m := &mockProductRepo{products: make(map[string]*domain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockProductRepo) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepo) ListProducts(_ context.Context, filter repository.ProductFilter) ([]*domain.Product, int64, error) {
	var out []*domain.Product
	for _, p := range m.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (m *mockProductRepo) CreateProduct(_ context.Context, p *domain.Product) error {
	if m.createErr != nil {
		return m.createErr
	}
	if p.ID == "" {
		p.ID = "prod-new"
	}
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepo) UpdateProduct(_ context.Context, p *domain.Product) error {
	if _, ok := m.products[p.ID]; !ok {
		return repository.ErrProductNotFound
	}
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepo) DeleteProduct(_ context.Context, id string) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

// mockUserRepo implements repository.UserRepository over a map keyed by email.
type mockUserRepo struct {
	users map[string]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*domain.User)}
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *domain.User) error {
	if _, ok := m.users[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	user.CreatedAt = time.Now()
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

// mockFavoriteRepo implements repository.FavoriteRepository.
type mockFavoriteRepo struct {
	favorites []*domain.Favorite
}

func (m *mockFavoriteRepo) ListFavorites(_ context.Context, userID string) ([]*domain.Favorite, error) {
	var out []*domain.Favorite
	for _, f := range m.favorites {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockFavoriteRepo) AddFavorite(_ context.Context, fav *domain.Favorite) error {
	for _, f := range m.favorites {
		if f.UserID == fav.UserID && f.ProductID == fav.ProductID {
			return repository.ErrDuplicateFavorite
		}
	}
	fav.CreatedAt = time.Now()
	m.favorites = append(m.favorites, fav)
	return nil
}

func (m *mockFavoriteRepo) RemoveFavorite(_ context.Context, userID, productID string) error {
	for i, f := range m.favorites {
		if f.UserID == userID && f.ProductID == productID {
			m.favorites = append(m.favorites[:i], m.favorites[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockFavoriteRepo) IsFavorite(_ context.Context, userID, productID string) (bool, error) {
	for _, f := range m.favorites {
		if f.UserID == userID && f.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

// mockCartCache records deletions so tests can assert invalidation. Writes can
// be disabled for tests where the async fill after a read would race the next
// invalidation.
type mockCartCache struct {
	mu         sync.Mutex
	store      map[string]*domain.Cart
	deleted    []string
	disableSet bool
}

func newMockCartCache() *mockCartCache {
	return &mockCartCache{store: make(map[string]*domain.Cart)}
}

func (m *mockCartCache) Get(_ context.Context, userID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.store[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cart, nil
}

func (m *mockCartCache) Set(_ context.Context, userID string, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disableSet {
		return nil
	}
	m.store[userID] = cart
	return nil
}

func (m *mockCartCache) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, userID)
	delete(m.store, userID)
	return nil
}
