package events

import (
	"context"
	"time"

	"github.com/fjod/go_shop/internal/domain"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderCancelled     = "order.cancelled"
	TypeOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the lifecycle event published for every order transition.
type OrderEvent struct {
	Type        string             `json:"type"`
	OrderID     string             `json:"order_id"`
	UserID      string             `json:"user_id"`
	Status      domain.OrderStatus `json:"status"`
	TotalAmount float64            `json:"total_amount"`
	Items       []domain.OrderItem `json:"items,omitempty"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

// Publisher delivers order lifecycle events to downstream consumers.
// Publishing is best-effort from the orchestrator's point of view; a publish
// failure never fails the order operation that produced the event.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// NopPublisher discards events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }
func (NopPublisher) Close() error                              { return nil }

// NewOrderEvent builds an event from an order snapshot.
func NewOrderEvent(eventType string, order *domain.Order) OrderEvent {
	return OrderEvent{
		Type:        eventType,
		OrderID:     order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Items:       order.Items,
		OccurredAt:  time.Now(),
	}
}
