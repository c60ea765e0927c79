package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/events"
	"github.com/fjod/go_shop/internal/inventory"
	"github.com/fjod/go_shop/internal/metrics"
)

// CartSource is the slice of the cart store checkout needs.
type CartSource interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, userID string) error
}

// OrderWriter persists new orders.
type OrderWriter interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
}

type CreateOrderInput struct {
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
	CustomerInfo    domain.CustomerInfo
	Notes           string
}

// CheckoutService converts a cart into an order while keeping the inventory
// ledger consistent. The store offers no cross-document transactions, so the
// sequence relies on per-product atomic reservations plus compensating
// releases to stay all-or-nothing from the caller's point of view.
type CheckoutService struct {
	carts   CartSource
	ledger  inventory.Ledger
	orders  OrderWriter
	events  events.Publisher
	metrics *metrics.Registry
	log     *slog.Logger
}

func NewCheckoutService(
	carts CartSource,
	ledger inventory.Ledger,
	orders OrderWriter,
	publisher events.Publisher,
	reg *metrics.Registry,
	log *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:   carts,
		ledger:  ledger,
		orders:  orders,
		events:  publisher,
		metrics: reg,
		log:     log,
	}
}

// reservation records one successful stock debit so it can be compensated.
type reservation struct {
	productID string
	quantity  int
}

// CreateOrder runs the checkout sequence:
//
//  1. load the cart, reject if empty
//  2. re-read live stock for every item, reject on the first shortage
//  3. reserve item by item, compensating already-made reservations on failure
//  4. build order items from live prices (never the cart's stale snapshot)
//  5. persist the order; roll back all reservations if persisting fails
//  6. clear the cart
func (s *CheckoutService) CreateOrder(ctx context.Context, userID string, input CreateOrderInput) (*domain.Order, error) {
	start := time.Now()

	order, err := s.createOrder(ctx, userID, input)
	if err != nil {
		s.metrics.CheckoutFailures.Inc()
		return nil, err
	}

	s.metrics.OrdersCreated.Inc()
	s.metrics.CheckoutDuration.Observe(time.Since(start).Seconds())
	return order, nil
}

func (s *CheckoutService) createOrder(ctx context.Context, userID string, input CreateOrderInput) (*domain.Order, error) {
	if input.PaymentMethod == "" {
		input.PaymentMethod = "cash"
	}
	if !domain.ValidPaymentMethod(input.PaymentMethod) {
		return nil, validationErrorf("unsupported payment method")
	}
	if input.CustomerInfo.Name == "" || input.CustomerInfo.Email == "" {
		return nil, validationErrorf("customer name and email are required")
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	// Pre-flight check against live stock. The cart's denormalized snapshot is
	// not consulted; prices and availability may have moved since add-to-cart.
	products := make([]*domain.Product, len(cart.Items))
	for i, item := range cart.Items {
		product, err := s.ledger.Read(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product.Stock < item.Quantity {
			return nil, &inventory.InsufficientStockError{ProductID: product.ID, Name: product.Name}
		}
		products[i] = product
	}

	// Reserve in cart order. A concurrent debit can still race ahead of the
	// pre-flight check, so any mid-sequence failure releases everything this
	// call reserved before surfacing the error.
	reserved := make([]reservation, 0, len(cart.Items))
	for _, item := range cart.Items {
		if err := s.ledger.Reserve(ctx, item.ProductID, item.Quantity); err != nil {
			if inventory.IsInsufficientStock(err) {
				s.metrics.StockConflicts.Inc()
			}
			s.rollback(ctx, reserved)
			return nil, err
		}
		reserved = append(reserved, reservation{productID: item.ProductID, quantity: item.Quantity})
	}

	items := make([]domain.OrderItem, len(cart.Items))
	var totalAmount float64
	for i, item := range cart.Items {
		items[i] = domain.OrderItem{
			ProductID: item.ProductID,
			Name:      products[i].Name,
			Price:     products[i].Price,
			Quantity:  item.Quantity,
		}
		totalAmount += products[i].Price * float64(item.Quantity)
	}

	order := &domain.Order{
		UserID:          userID,
		Items:           items,
		TotalAmount:     totalAmount,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		PaymentStatus:   domain.PaymentStatusPending,
		Status:          domain.OrderStatusPending,
		CustomerInfo:    input.CustomerInfo,
		Notes:           input.Notes,
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		// Stock must never stay debited for an order that does not exist.
		s.rollback(ctx, reserved)
		return nil, err
	}

	if err := s.carts.ClearCart(ctx, userID); err != nil {
		// The order exists and stock is consistent; a stale cart is the least
		// bad outcome here.
		s.log.Error("failed to clear cart after checkout",
			slog.String("user_id", userID),
			slog.String("order_id", order.ID),
			slog.Any("err", err))
	}

	if err := s.events.Publish(ctx, events.NewOrderEvent(events.TypeOrderCreated, order)); err != nil {
		s.log.Warn("failed to publish order created event",
			slog.String("order_id", order.ID),
			slog.Any("err", err))
	}

	return order, nil
}

// rollback releases reservations in reverse order. Failures are logged, not
// surfaced; the primary error already explains the user-visible failure.
func (s *CheckoutService) rollback(ctx context.Context, reserved []reservation) {
	for i := len(reserved) - 1; i >= 0; i-- {
		r := reserved[i]
		if err := s.ledger.Release(ctx, r.productID, r.quantity); err != nil {
			s.metrics.CompensationFails.Inc()
			s.log.Error("failed to release reserved stock during rollback",
				slog.String("product_id", r.productID),
				slog.Int("quantity", r.quantity),
				slog.Any("err", err))
		}
	}
}
