package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/repository"
	"github.com/fjod/go_shop/internal/service"
	"github.com/go-chi/chi/v5"
)

// CheckoutAPI converts the caller's cart into an order.
type CheckoutAPI interface {
	CreateOrder(ctx context.Context, userID string, input service.CreateOrderInput) (*domain.Order, error)
}

// OrderAPI covers order reads and status transitions.
type OrderAPI interface {
	GetOrder(ctx context.Context, orderID, userID, role string) (*domain.Order, error)
	ListUserOrders(ctx context.Context, userID string) ([]*domain.Order, error)
	ListOrders(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, int64, error)
	CancelOrder(ctx context.Context, orderID, userID, role string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error)
}

type OrderHandler struct {
	checkout CheckoutAPI
	orders   OrderAPI
}

func NewOrderHandler(checkout CheckoutAPI, orders OrderAPI) *OrderHandler {
	return &OrderHandler{
		checkout: checkout,
		orders:   orders,
	}
}

type CreateOrderRequestDTO struct {
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	CustomerInfo    domain.CustomerInfo    `json:"customerInfo"`
	Notes           string                 `json:"notes"`
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status"`
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())

	var req CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.checkout.CreateOrder(r.Context(), userID, service.CreateOrderInput{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		CustomerInfo:    req.CustomerInfo,
		Notes:           req.Notes,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"order":   order,
	})
}

func (h *OrderHandler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())

	orders, err := h.orders.ListUserOrders(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(orders),
		"orders":  orders,
	})
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	order, err := h.orders.GetOrder(r.Context(), orderID, getUserID(r.Context()), getRole(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"order":   order,
	})
}

func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	order, err := h.orders.CancelOrder(r.Context(), orderID, getUserID(r.Context()), getRole(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "order cancelled",
		"order":   order,
	})
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repository.OrderFilter{
		Status: domain.OrderStatus(q.Get("status")),
		Page:   parseIntDefault(q.Get("page"), 1),
		Limit:  parseIntDefault(q.Get("limit"), 20),
	}

	orders, total, err := h.orders.ListOrders(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(orders),
		"total":   total,
		"page":    filter.Page,
		"pages":   pageCount(total, filter.Limit),
		"orders":  orders,
	})
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var req UpdateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), orderID, domain.OrderStatus(req.Status))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "order status updated",
		"order":   order,
	})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func pageCount(total int64, limit int) int64 {
	if limit < 1 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
