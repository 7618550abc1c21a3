// internal/storefront/client_test.go
package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vascomart-client/internal/common/config"
	"vascomart-client/internal/common/errors"
	commonhttp "vascomart-client/internal/common/http"
	"vascomart-client/internal/common/logger"
	"vascomart-client/internal/models"
)

// ==========================
// Helpers
// ==========================

func newTestClients(t *testing.T, handler http.Handler, token string) *Clients {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.ServicesConfig{
		AuthURL:     server.URL,
		UsersURL:    server.URL,
		ProductsURL: server.URL,
		OrdersURL:   server.URL,
	}
	tokenFn := func() string { return token }
	return NewClients(cfg, commonhttp.NewClient(5*time.Second), tokenFn, logger.NewTestLogger(t))
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func asStandardError(t *testing.T, err error) *errors.StandardError {
	t.Helper()
	require.Error(t, err)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok, "expected *errors.StandardError, got %T", err)
	return stdErr
}

// ==========================
// Auth Client Tests
// ==========================

func TestAuthClient_Login(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var creds models.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "ana", creds.Username)
		assert.Equal(t, "s3cret", creds.Password)

		writeJSON(t, w, http.StatusOK, models.LoginResult{Token: "jwt-token", UserID: "7"})
	})
	clients := newTestClients(t, handler, "")

	result, err := clients.Auth.Login(context.Background(), models.Credentials{
		Username: "ana",
		Password: "s3cret",
	})
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", result.Token)
	assert.Equal(t, "7", result.UserID)
}

func TestAuthClient_Login_BadCredentials(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"message": "bad credentials"})
	})
	clients := newTestClients(t, handler, "")

	result, err := clients.Auth.Login(context.Background(), models.Credentials{Username: "ana", Password: "wrong"})
	assert.Nil(t, result)
	stdErr := asStandardError(t, err)
	assert.Equal(t, errors.ErrCodeUnauthorized, stdErr.Code)
}

func TestAuthClient_Register(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/register", r.URL.Path)
		writeJSON(t, w, http.StatusCreated, models.User{ID: "9", Username: "ana"})
	})
	clients := newTestClients(t, handler, "")

	user, err := clients.Auth.Register(context.Background(), models.Credentials{
		Username: "ana",
		Password: "s3cret",
		Email:    "ana@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "9", user.ID)
	assert.Equal(t, "ana", user.Username)
}

// ==========================
// User Client Tests
// ==========================

func TestUserClient_Me(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/me", r.URL.Path)
		assert.Equal(t, "Bearer jwt-token", r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, models.User{ID: "7", Username: "ana", Email: "ana@example.com"})
	})
	clients := newTestClients(t, handler, "jwt-token")

	user, err := clients.Users.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Username)
}

// ==========================
// Product Client Tests
// ==========================

func TestProductClient_List(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/products", r.URL.Path)
		writeJSON(t, w, http.StatusOK, []models.Product{
			{ID: 1, Name: "Mug", Price: 5, Quantity: 10},
			{ID: 2, Name: "Shirt", Price: 20, Quantity: 3},
		})
	})
	clients := newTestClients(t, handler, "jwt-token")

	products, err := clients.Products.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Mug", products[0].Name)
}

func TestProductClient_Get(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/products/2", r.URL.Path)
		writeJSON(t, w, http.StatusOK, models.Product{ID: 2, Name: "Shirt", Price: 20})
	})
	clients := newTestClients(t, handler, "jwt-token")

	product, err := clients.Products.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Shirt", product.Name)
}

func TestProductClient_Create(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/products/add", r.URL.Path)
		writeJSON(t, w, http.StatusCreated, models.Product{ID: 3, Name: "Hat", Price: 12.5, Quantity: 4})
	})
	clients := newTestClients(t, handler, "jwt-token")

	created, err := clients.Products.Create(context.Background(), models.ProductCreate{
		Name:     "Hat",
		Price:    12.5,
		Quantity: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)
}

func TestProductClient_Create_ValidationRejectsBeforeSend(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid payload must not reach the service")
	})
	clients := newTestClients(t, handler, "jwt-token")

	// negative price fails the schema check client-side
	created, err := clients.Products.Create(context.Background(), models.ProductCreate{
		Name:     "Hat",
		Price:    -1,
		Quantity: 4,
	})
	assert.Nil(t, created)
	stdErr := asStandardError(t, err)
	assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
}

// ==========================
// Order Client Tests
// ==========================

func TestOrderClient_Place(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/orders/users/me", r.URL.Path)
		assert.Equal(t, "Bearer jwt-token", r.Header.Get("Authorization"))

		var req models.OrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Products, 2)
		assert.Equal(t, 3, req.Products[0].ProductID)
		assert.Equal(t, 2, req.Products[0].Quantity)

		writeJSON(t, w, http.StatusCreated, models.Order{ID: 42, UserID: 7, Products: req.Products})
	})
	clients := newTestClients(t, handler, "jwt-token")

	order, err := clients.Orders.Place(context.Background(), models.OrderRequest{
		Products: []models.OrderItem{
			{ProductID: 3, Quantity: 2},
			{ProductID: 7, Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), order.ID)
}

func TestOrderClient_Place_EmptyOrderRejected(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid payload must not reach the service")
	})
	clients := newTestClients(t, handler, "jwt-token")

	order, err := clients.Orders.Place(context.Background(), models.OrderRequest{})
	assert.Nil(t, order)
	stdErr := asStandardError(t, err)
	assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
}

func TestOrderClient_ListMine(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		writeJSON(t, w, http.StatusOK, []models.Order{{ID: 42, UserID: 7}})
	})
	clients := newTestClients(t, handler, "jwt-token")

	orders, err := clients.Orders.ListMine(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(42), orders[0].ID)
}

// ==========================
// Error Mapping Tests
// ==========================

func TestBaseClient_ErrorEnvelopeDecoded(t *testing.T) {
	tests := []struct {
		name     string
		body     interface{}
		expected string
	}{
		{
			name:     "message field wins",
			body:     map[string]string{"message": "out of stock", "error": "conflict"},
			expected: "out of stock",
		},
		{
			name:     "detail field",
			body:     map[string]string{"detail": "product 3 not found"},
			expected: "product 3 not found",
		},
		{
			name:     "error field",
			body:     map[string]string{"error": "internal error"},
			expected: "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, http.StatusConflict, tt.body)
			})
			clients := newTestClients(t, handler, "jwt-token")

			_, err := clients.Products.List(context.Background())
			stdErr := asStandardError(t, err)
			assert.Equal(t, errors.ErrCodeRequestFailed, stdErr.Code)
			assert.Contains(t, stdErr.Details, tt.expected)
		})
	}
}

func TestBaseClient_NonJSONErrorBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream timed out"))
	})
	clients := newTestClients(t, handler, "jwt-token")

	_, err := clients.Products.List(context.Background())
	stdErr := asStandardError(t, err)
	assert.Equal(t, errors.ErrCodeRequestFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "upstream timed out")
}

func TestBaseClient_ForbiddenMapsToUnauthorized(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	clients := newTestClients(t, handler, "jwt-token")

	_, err := clients.Users.Me(context.Background())
	stdErr := asStandardError(t, err)
	assert.Equal(t, errors.ErrCodeUnauthorized, stdErr.Code)
}

func TestBaseClient_ConnectionRefused(t *testing.T) {
	cfg := config.ServicesConfig{
		AuthURL:     "http://127.0.0.1:1",
		UsersURL:    "http://127.0.0.1:1",
		ProductsURL: "http://127.0.0.1:1",
		OrdersURL:   "http://127.0.0.1:1",
	}
	clients := NewClients(cfg, commonhttp.NewClient(time.Second), func() string { return "" }, logger.NewTestLogger(t))

	_, err := clients.Products.List(context.Background())
	stdErr := asStandardError(t, err)
	assert.Equal(t, errors.ErrCodeRequestFailed, stdErr.Code)
}
