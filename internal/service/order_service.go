package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/events"
	"github.com/fjod/go_shop/internal/inventory"
	"github.com/fjod/go_shop/internal/metrics"
	"github.com/fjod/go_shop/internal/repository"
)

type OrderService struct {
	orders  repository.OrderRepository
	ledger  inventory.Ledger
	events  events.Publisher
	metrics *metrics.Registry
	log     *slog.Logger
}

func NewOrderService(
	orders repository.OrderRepository,
	ledger inventory.Ledger,
	publisher events.Publisher,
	reg *metrics.Registry,
	log *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:  orders,
		ledger:  ledger,
		events:  publisher,
		metrics: reg,
		log:     log,
	}
}

// GetOrder returns the order if the requester owns it or is an admin.
func (s *OrderService) GetOrder(ctx context.Context, orderID, userID, role string) (*domain.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID && role != domain.RoleAdmin {
		return nil, ErrForbidden
	}

	return order, nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.orders.ListOrdersByUserID(ctx, userID)
}

func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, int64, error) {
	if filter.Status != "" && !domain.ValidOrderStatus(filter.Status) {
		return nil, 0, validationErrorf("unknown order status")
	}
	return s.orders.ListOrders(ctx, filter)
}

// CancelOrder cancels a pending or processing order and credits each item's
// quantity back to the ledger. Releases are best-effort per item: one failed
// release is logged and must not block the others or the status change, since
// a cancellation must not be silently lost.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, userID, role string) (*domain.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID && role != domain.RoleAdmin {
		return nil, ErrForbidden
	}

	if order.Status != domain.OrderStatusPending && order.Status != domain.OrderStatusProcessing {
		return nil, ErrInvalidTransition
	}

	s.releaseItems(ctx, order)

	if err := s.orders.UpdateOrderStatus(ctx, orderID, domain.OrderStatusCancelled); err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatusCancelled
	order.UpdatedAt = time.Now()

	s.metrics.OrdersCancelled.Inc()
	if err := s.events.Publish(ctx, events.NewOrderEvent(events.TypeOrderCancelled, order)); err != nil {
		s.log.Warn("failed to publish order cancelled event",
			slog.String("order_id", order.ID),
			slog.Any("err", err))
	}

	return order, nil
}

// UpdateStatus moves an order to newStatus. Every status change, including
// admin ones, goes through the same transition table; terminal orders are
// immutable. A transition to cancelled releases stock exactly like a
// user-initiated cancellation.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, newStatus domain.OrderStatus) (*domain.Order, error) {
	if !domain.ValidOrderStatus(newStatus) {
		return nil, validationErrorf("unknown order status")
	}

	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(newStatus) {
		return nil, ErrInvalidTransition
	}

	if newStatus == domain.OrderStatusCancelled {
		s.releaseItems(ctx, order)
		s.metrics.OrdersCancelled.Inc()
	}

	if err := s.orders.UpdateOrderStatus(ctx, orderID, newStatus); err != nil {
		return nil, err
	}

	order.Status = newStatus
	order.UpdatedAt = time.Now()

	if err := s.events.Publish(ctx, events.NewOrderEvent(events.TypeOrderStatusChanged, order)); err != nil {
		s.log.Warn("failed to publish order status event",
			slog.String("order_id", order.ID),
			slog.Any("err", err))
	}

	return order, nil
}

func (s *OrderService) releaseItems(ctx context.Context, order *domain.Order) {
	for _, item := range order.Items {
		if err := s.ledger.Release(ctx, item.ProductID, item.Quantity); err != nil {
			s.metrics.CompensationFails.Inc()
			s.log.Error("failed to release stock for cancelled order item",
				slog.String("order_id", order.ID),
				slog.String("product_id", item.ProductID),
				slog.Int("quantity", item.Quantity),
				slog.Any("err", err))
		}
	}
}
