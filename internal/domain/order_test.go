package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusPending, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.False(t, OrderStatusProcessing.IsTerminal())
	assert.False(t, OrderStatusShipped.IsTerminal())
}

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled,
	} {
		assert.True(t, ValidOrderStatus(s))
	}
	assert.False(t, ValidOrderStatus("archived"))
	assert.False(t, ValidOrderStatus(""))
}

func TestValidPaymentMethod(t *testing.T) {
	assert.True(t, ValidPaymentMethod("cash"))
	assert.True(t, ValidPaymentMethod("card"))
	assert.True(t, ValidPaymentMethod("online"))
	assert.False(t, ValidPaymentMethod("barter"))
}

func TestOrderTotal(t *testing.T) {
	order := &Order{Items: []OrderItem{
		{ProductID: "a", Price: 100, Quantity: 2},
		{ProductID: "b", Price: 50, Quantity: 1},
	}}
	assert.Equal(t, 250.0, order.Total())
}
