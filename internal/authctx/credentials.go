package authctx

import (
	"fmt"
	"path/filepath"

	"github.com/99designs/keyring"
)

const (
	tokenKey    = "api-token"
	usernameKey = "username"
)

// CredentialStore persists the bearer token and the username it
// belongs to. The default implementation sits on the OS keyring with a
// file backend fallback for headless machines.
type CredentialStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

type keyringStore struct {
	service string
	dir     string
}

// NewKeyringStore returns a CredentialStore backed by the system
// keyring under the given service name. dir is used by the file
// backend when no native keyring is available.
func NewKeyringStore(service, dir string) CredentialStore {
	return &keyringStore{service: service, dir: dir}
}

func (s *keyringStore) open() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: s.service,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(s.dir, "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt(s.service + "-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

func (s *keyringStore) Get(key string) (string, error) {
	ring, err := s.open()
	if err != nil {
		return "", err
	}
	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

func (s *keyringStore) Set(key, value string) error {
	ring, err := s.open()
	if err != nil {
		return err
	}
	if err := ring.Set(keyring.Item{Key: key, Data: []byte(value)}); err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

func (s *keyringStore) Delete(key string) error {
	ring, err := s.open()
	if err != nil {
		return err
	}
	if err := ring.Remove(key); err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}
