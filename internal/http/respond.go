package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fjod/go_shop/internal/inventory"
	"github.com/fjod/go_shop/internal/repository"
	"github.com/fjod/go_shop/internal/service"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", slog.Any("err", err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps domain errors to stable HTTP codes and kinds.
// Unexpected errors become a generic internal error without leaking internals.
func handleServiceError(w http.ResponseWriter, err error) {
	var validationErr *service.ValidationError
	var stockErr *inventory.InsufficientStockError

	switch {
	case errors.As(err, &stockErr):
		respondError(w, http.StatusBadRequest, "insufficient_stock", stockErr.Error())
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
	case errors.Is(err, service.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty")
	case errors.Is(err, service.ErrInvalidTransition):
		respondError(w, http.StatusBadRequest, "invalid_transition", "order cannot be moved to this status")
	case errors.Is(err, service.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden", "access denied")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, inventory.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "not_found", "product not found")
	case errors.Is(err, repository.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", "order not found")
	case errors.Is(err, repository.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "not_found", "item not found in cart")
	case errors.Is(err, repository.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "not_found", "user not found")
	case errors.Is(err, repository.ErrDuplicateEmail):
		respondError(w, http.StatusConflict, "already_exists", "email already registered")
	case errors.Is(err, repository.ErrDuplicateFavorite):
		respondError(w, http.StatusBadRequest, "already_exists", "product already in favorites")
	default:
		slog.Error("unexpected error", slog.Any("err", err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
