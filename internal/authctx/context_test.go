// internal/authctx/context_test.go
package authctx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vascomart-client/internal/common/logger"
)

// memoryStore is an in-memory CredentialStore for tests.
type memoryStore struct {
	values map[string]string
	setErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: make(map[string]string)}
}

func (s *memoryStore) Get(key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func (s *memoryStore) Set(key, value string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	return nil
}

func (s *memoryStore) Delete(key string) error {
	delete(s.values, key)
	return nil
}

func TestSessionContext_FreshStart(t *testing.T) {
	ctx := NewSessionContext(newMemoryStore(), logger.NewTestLogger(t))

	assert.False(t, ctx.LoggedIn())
	assert.Empty(t, ctx.Token())
	assert.Empty(t, ctx.Username())
}

func TestSessionContext_LoginPersists(t *testing.T) {
	store := newMemoryStore()
	ctx := NewSessionContext(store, logger.NewTestLogger(t))

	require.NoError(t, ctx.Login("ana", "jwt-token"))

	assert.True(t, ctx.LoggedIn())
	assert.Equal(t, "jwt-token", ctx.Token())
	assert.Equal(t, "ana", ctx.Username())
	assert.Equal(t, "jwt-token", store.values[tokenKey])
	assert.Equal(t, "ana", store.values[usernameKey])
}

func TestSessionContext_RestoresPersistedCredentials(t *testing.T) {
	store := newMemoryStore()
	store.values[tokenKey] = "saved-token"
	store.values[usernameKey] = "ana"

	ctx := NewSessionContext(store, logger.NewTestLogger(t))

	assert.True(t, ctx.LoggedIn())
	assert.Equal(t, "saved-token", ctx.Token())
	assert.Equal(t, "ana", ctx.Username())
}

func TestSessionContext_Logout(t *testing.T) {
	store := newMemoryStore()
	ctx := NewSessionContext(store, logger.NewTestLogger(t))
	require.NoError(t, ctx.Login("ana", "jwt-token"))

	ctx.Logout()

	assert.False(t, ctx.LoggedIn())
	assert.Empty(t, ctx.Token())
	assert.Empty(t, ctx.Username())
	assert.NotContains(t, store.values, tokenKey)
	assert.NotContains(t, store.values, usernameKey)
}

func TestSessionContext_LoginPersistFailure(t *testing.T) {
	store := newMemoryStore()
	store.setErr = errors.New("keyring locked")
	ctx := NewSessionContext(store, logger.NewTestLogger(t))

	err := ctx.Login("ana", "jwt-token")
	assert.Error(t, err)

	// the in-memory state still reflects the login for this process
	assert.True(t, ctx.LoggedIn())
}
