package storefront

import (
	"context"
	"net/http"

	commonhttp "vascomart-client/internal/common/http"
	"vascomart-client/internal/common/logger"
	"vascomart-client/internal/models"
)

// AuthClient talks to the auth service. Login and register are
// unauthenticated, so it carries no token source.
type AuthClient struct {
	base *baseClient
}

func NewAuthClient(baseURL string, httpClient *commonhttp.Client, log logger.Logger) *AuthClient {
	return &AuthClient{
		base: newBaseClient("auth", baseURL, httpClient, nil, log),
	}
}

// Login exchanges credentials for a bearer token.
func (c *AuthClient) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	var result models.LoginResult
	if err := c.base.doJSON(ctx, http.MethodPost, "/api/v1/auth/login", creds, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates a new account.
func (c *AuthClient) Register(ctx context.Context, creds models.Credentials) (*models.User, error) {
	var user models.User
	if err := c.base.doJSON(ctx, http.MethodPost, "/api/v1/auth/register", creds, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
