package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/go-chi/chi/v5"
)

type FavoriteAPI interface {
	ListFavorites(ctx context.Context, userID string) ([]*domain.Product, error)
	AddFavorite(ctx context.Context, userID, productID string) error
	RemoveFavorite(ctx context.Context, userID, productID string) error
	IsFavorite(ctx context.Context, userID, productID string) (bool, error)
}

type FavoriteHandler struct {
	svc FavoriteAPI
}

func NewFavoriteHandler(svc FavoriteAPI) *FavoriteHandler {
	return &FavoriteHandler{svc: svc}
}

type AddFavoriteRequestDTO struct {
	ProductID string `json:"productId"`
}

func (h *FavoriteHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.ListFavorites(r.Context(), getUserID(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"count":    len(products),
		"products": products,
	})
}

func (h *FavoriteHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var req AddFavoriteRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "productId is required")
		return
	}

	if err := h.svc.AddFavorite(r.Context(), getUserID(r.Context()), req.ProductID); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "added to favorites",
	})
}

func (h *FavoriteHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	if err := h.svc.RemoveFavorite(r.Context(), getUserID(r.Context()), productID); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "removed from favorites",
	})
}

func (h *FavoriteHandler) CheckFavorite(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	isFavorite, err := h.svc.IsFavorite(r.Context(), getUserID(r.Context()), productID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"isFavorite": isFavorite,
	})
}
