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

// ProductClient talks to the product service.
type ProductClient struct {
	base *baseClient
}

func NewProductClient(baseURL string, httpClient *commonhttp.Client, tokenFn func() string, log logger.Logger) *ProductClient {
	return &ProductClient{
		base: newBaseClient("products", baseURL, httpClient, tokenFn, log),
	}
}

// List returns the current catalog.
func (c *ProductClient) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.base.doJSON(ctx, http.MethodGet, "/api/v1/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Get returns one product by id.
func (c *ProductClient) Get(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	path := fmt.Sprintf("/api/v1/products/%d", id)
	if err := c.base.doJSON(ctx, http.MethodGet, path, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Create adds a product to the catalog. The payload is schema-checked
// before it leaves the client.
func (c *ProductClient) Create(ctx context.Context, product models.ProductCreate) (*models.Product, error) {
	payload, err := json.Marshal(product)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal product: %w", err)
	}
	if err := validation.ValidateProductCreate(payload); err != nil {
		return nil, err
	}

	var created models.Product
	if err := c.base.doJSON(ctx, http.MethodPost, "/api/v1/products/add", product, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
