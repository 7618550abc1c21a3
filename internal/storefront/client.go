// Package storefront holds the REST clients for the storefront's
// backing services: auth, users, products and orders. Every client
// shares one base that handles JSON encoding, bearer auth and the
// services' error envelope.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"vascomart-client/internal/common/config"
	"vascomart-client/internal/common/errors"
	commonhttp "vascomart-client/internal/common/http"
	"vascomart-client/internal/common/logger"
)

// errorEnvelope covers the response shapes the services use for
// failures. Whichever field is populated wins, in this order.
type errorEnvelope struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Error   string `json:"error"`
}

func (e errorEnvelope) text() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Detail != "":
		return e.Detail
	default:
		return e.Error
	}
}

type baseClient struct {
	name       string
	baseURL    string
	httpClient *commonhttp.Client
	log        logger.Logger

	// tokenFn supplies the current bearer token; empty means
	// unauthenticated.
	tokenFn func() string
}

func newBaseClient(name, baseURL string, httpClient *commonhttp.Client, tokenFn func() string, log logger.Logger) *baseClient {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &baseClient{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
		tokenFn:    tokenFn,
	}
}

// doJSON issues one request and decodes the response into out (skipped
// when out is nil). Non-2xx responses are mapped onto the error
// taxonomy: 401/403 become unauthorized, everything else carries the
// decoded envelope text.
func (c *baseClient) doJSON(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.tokenFn != nil {
		if token := c.tokenFn(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewRequestFailedError(c.name, 0, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return errors.NewUnauthorizedError(c.name)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope errorEnvelope
		_ = json.Unmarshal(respBody, &envelope)
		text := envelope.text()
		if text == "" {
			text = strings.TrimSpace(string(respBody))
		}
		c.log.Warn("request failed", map[string]interface{}{
			"service": c.name,
			"path":    path,
			"status":  resp.StatusCode,
		})
		return errors.NewRequestFailedError(c.name, resp.StatusCode, text)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// Clients bundles all service clients behind a shared HTTP client and
// token source.
type Clients struct {
	Auth     *AuthClient
	Users    *UserClient
	Products *ProductClient
	Orders   *OrderClient
}

// NewClients builds the full client set from service configuration.
func NewClients(cfg config.ServicesConfig, httpClient *commonhttp.Client, tokenFn func() string, log logger.Logger) *Clients {
	return &Clients{
		Auth:     NewAuthClient(cfg.AuthURL, httpClient, log),
		Users:    NewUserClient(cfg.UsersURL, httpClient, tokenFn, log),
		Products: NewProductClient(cfg.ProductsURL, httpClient, tokenFn, log),
		Orders:   NewOrderClient(cfg.OrdersURL, httpClient, tokenFn, log),
	}
}
