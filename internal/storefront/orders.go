package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	commonhttp "vascomart-client/internal/common/http"
	"vascomart-client/internal/common/logger"
	"vascomart-client/internal/common/validation"
	"vascomart-client/internal/models"
)

// OrderClient talks to the order service on behalf of the
// authenticated user.
type OrderClient struct {
	base *baseClient
}

func NewOrderClient(baseURL string, httpClient *commonhttp.Client, tokenFn func() string, log logger.Logger) *OrderClient {
	return &OrderClient{
		base: newBaseClient("orders", baseURL, httpClient, tokenFn, log),
	}
}

// Place submits an order for the current user. Placing the order is
// what ultimately produces a broker event on the orders topic.
func (c *OrderClient) Place(ctx context.Context, order models.OrderRequest) (*models.Order, error) {
	payload, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order: %w", err)
	}
	if err := validation.ValidateOrderRequest(payload); err != nil {
		return nil, err
	}

	var placed models.Order
	if err := c.base.doJSON(ctx, http.MethodPost, "/api/v1/orders/users/me", order, &placed); err != nil {
		return nil, err
	}
	return &placed, nil
}

// ListMine returns the current user's order history.
func (c *OrderClient) ListMine(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.base.doJSON(ctx, http.MethodGet, "/api/v1/orders/users/me", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
