package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/go-chi/chi/v5"
)

// CartAPI is the slice of the cart service the handler consumes.
type CartAPI interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	Count(ctx context.Context, userID string) (int, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error)
	SetItemQuantity(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) error
	ClearCart(ctx context.Context, userID string) error
}

type CartHandler struct {
	svc CartAPI
}

func NewCartHandler(svc CartAPI) *CartHandler {
	return &CartHandler{svc: svc}
}

type AddItemRequestDTO struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())

	cart, err := h.svc.GetCart(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"cart":    cart,
	})
}

func (h *CartHandler) GetCount(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())

	count, err := h.svc.Count(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   count,
	})
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "productId is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := h.svc.AddItem(r.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"cart":    cart,
	})
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	productID := chi.URLParam(r, "productId")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	cart, err := h.svc.SetItemQuantity(r.Context(), userID, productID, req.Quantity)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"cart":    cart,
	})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	productID := chi.URLParam(r, "productId")

	if err := h.svc.RemoveItem(r.Context(), userID, productID); err != nil {
		handleServiceError(w, err)
		return
	}

	cart, err := h.svc.GetCart(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "item removed from cart",
		"cart":    cart,
	})
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())

	if err := h.svc.ClearCart(r.Context(), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "cart cleared",
	})
}
