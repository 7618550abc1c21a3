package storefront

import (
	"context"
	"net/http"

	commonhttp "vascomart-client/internal/common/http"
	"vascomart-client/internal/common/logger"
	"vascomart-client/internal/models"
)

// UserClient talks to the user service.
type UserClient struct {
	base *baseClient
}

func NewUserClient(baseURL string, httpClient *commonhttp.Client, tokenFn func() string, log logger.Logger) *UserClient {
	return &UserClient{
		base: newBaseClient("users", baseURL, httpClient, tokenFn, log),
	}
}

// Me returns the authenticated user's identity record.
func (c *UserClient) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.base.doJSON(ctx, http.MethodGet, "/api/v1/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
