// Package authctx tracks who is logged in. The bearer token and
// username live in the credential store; the in-memory view is loaded
// once and mutated only through Login and Logout.
package authctx

import (
	"sync"

	"vascomart-client/internal/common/logger"
)

// SessionContext is the process-wide authentication state.
type SessionContext struct {
	store CredentialStore
	log   logger.Logger

	mu       sync.RWMutex
	token    string
	username string
}

// NewSessionContext loads any persisted credentials and returns the
// context. A missing credential is not an error, it just means nobody
// is logged in.
func NewSessionContext(store CredentialStore, log logger.Logger) *SessionContext {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	ctx := &SessionContext{store: store, log: log}

	if token, err := store.Get(tokenKey); err == nil {
		ctx.token = token
	}
	if username, err := store.Get(usernameKey); err == nil {
		ctx.username = username
	}
	return ctx
}

// Login records a successful authentication and persists it.
func (c *SessionContext) Login(username, token string) error {
	c.mu.Lock()
	c.token = token
	c.username = username
	c.mu.Unlock()

	if err := c.store.Set(tokenKey, token); err != nil {
		return err
	}
	return c.store.Set(usernameKey, username)
}

// Logout clears the in-memory state and the persisted credentials.
func (c *SessionContext) Logout() {
	c.mu.Lock()
	c.token = ""
	c.username = ""
	c.mu.Unlock()

	if err := c.store.Delete(tokenKey); err != nil {
		c.log.Debug("token delete failed", map[string]interface{}{"error": err.Error()})
	}
	if err := c.store.Delete(usernameKey); err != nil {
		c.log.Debug("username delete failed", map[string]interface{}{"error": err.Error()})
	}
}

// Token returns the current bearer token, empty when logged out.
func (c *SessionContext) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Username returns the logged-in username, empty when logged out.
func (c *SessionContext) Username() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.username
}

// LoggedIn reports whether a token is present.
func (c *SessionContext) LoggedIn() bool {
	return c.Token() != ""
}
