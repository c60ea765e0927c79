package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/inventory"
	"github.com/fjod/go_shop/internal/repository"
)

type cartAPIMock struct {
	cart *domain.Cart
	err  error
}

func (m cartAPIMock) GetCart(_ context.Context, _ string) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m cartAPIMock) Count(_ context.Context, _ string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.cart.ItemCount(), nil
}

func (m cartAPIMock) AddItem(_ context.Context, _, _ string, _ int) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m cartAPIMock) SetItemQuantity(_ context.Context, _, _ string, _ int) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m cartAPIMock) RemoveItem(_ context.Context, _, _ string) error {
	return m.err
}

func (m cartAPIMock) ClearCart(_ context.Context, _ string) error {
	return m.err
}

func authedRequest(method, target string, body []byte) *http.Request {
	var request *http.Request
	if body != nil {
		request = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		request = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(request.Context(), userIDKey, "user-1")
	ctx = context.WithValue(ctx, roleKey, domain.RoleUser)
	return request.WithContext(ctx)
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
	return body
}

func TestCartHandler_GetCart(t *testing.T) {
	mock := cartAPIMock{cart: &domain.Cart{
		UserID: "user-1",
		Items:  []domain.CartItem{{ProductID: "prod-1", Quantity: 2}},
	}}
	handler := NewCartHandler(mock)

	recorder := httptest.NewRecorder()
	handler.GetCart(recorder, authedRequest("GET", "/api/cart", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, true, body["success"])
	cart := body["cart"].(map[string]interface{})
	assert.Equal(t, "user-1", cart["userId"])
}

func TestCartHandler_AddItem_DefaultsQuantity(t *testing.T) {
	mock := cartAPIMock{cart: &domain.Cart{UserID: "user-1"}}
	handler := NewCartHandler(mock)

	payload, _ := json.Marshal(map[string]interface{}{"productId": "prod-1"})
	recorder := httptest.NewRecorder()
	handler.AddItem(recorder, authedRequest("POST", "/api/cart", payload))

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestCartHandler_AddItem_MissingProductID(t *testing.T) {
	handler := NewCartHandler(cartAPIMock{})

	payload, _ := json.Marshal(map[string]interface{}{"quantity": 2})
	recorder := httptest.NewRecorder()
	handler.AddItem(recorder, authedRequest("POST", "/api/cart", payload))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, "validation_error", body["code"])
}

func TestCartHandler_AddItem_InsufficientStock(t *testing.T) {
	mock := cartAPIMock{err: &inventory.InsufficientStockError{ProductID: "prod-1", Name: "Widget"}}
	handler := NewCartHandler(mock)

	payload, _ := json.Marshal(map[string]interface{}{"productId": "prod-1", "quantity": 5})
	recorder := httptest.NewRecorder()
	handler.AddItem(recorder, authedRequest("POST", "/api/cart", payload))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, "insufficient_stock", body["code"])
}

func TestCartHandler_AddItem_UnknownProduct(t *testing.T) {
	mock := cartAPIMock{err: inventory.ErrProductNotFound}
	handler := NewCartHandler(mock)

	payload, _ := json.Marshal(map[string]interface{}{"productId": "prod-x"})
	recorder := httptest.NewRecorder()
	handler.AddItem(recorder, authedRequest("POST", "/api/cart", payload))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestCartHandler_AddItem_InvalidJSON(t *testing.T) {
	handler := NewCartHandler(cartAPIMock{})

	recorder := httptest.NewRecorder()
	handler.AddItem(recorder, authedRequest("POST", "/api/cart", []byte("{not json")))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCartHandler_UpdateItem_NotInCart(t *testing.T) {
	mock := cartAPIMock{err: repository.ErrItemNotFound}
	handler := NewCartHandler(mock)

	router := chi.NewRouter()
	router.Put("/api/cart/{productId}", handler.UpdateItem)

	payload, _ := json.Marshal(map[string]interface{}{"quantity": 3})
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, authedRequest("PUT", "/api/cart/prod-9", payload))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestCartHandler_ClearCart(t *testing.T) {
	handler := NewCartHandler(cartAPIMock{cart: &domain.Cart{UserID: "user-1"}})

	recorder := httptest.NewRecorder()
	handler.ClearCart(recorder, authedRequest("DELETE", "/api/cart", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, "cart cleared", body["message"])
}
