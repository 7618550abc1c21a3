// Package localstate persists small per-user state on disk. Profiles
// live in a SQLite database under the application data directory so
// edits survive restarts and work offline.
package localstate

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"vascomart-client/internal/common/errors"
	"vascomart-client/internal/models"
)

const profileSchema = `
CREATE TABLE IF NOT EXISTS profiles (
	username   TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// ProfileStore stores one profile blob per username.
type ProfileStore struct {
	db *sqlx.DB
}

// NewProfileStore opens (or creates) the profile database at dbPath.
func NewProfileStore(dbPath string) (*ProfileStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec(profileSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating profiles table: %w", err)
	}

	return &ProfileStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *ProfileStore) Close() error {
	return s.db.Close()
}

// Save inserts or replaces the profile for username.
func (s *ProfileStore) Save(ctx context.Context, username string, profile models.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return errors.NewLocalStateError("save profile", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO profiles (username, data, updated_at)
		VALUES (?, ?, ?)`,
		username, string(data), time.Now().UTC(),
	)
	if err != nil {
		return errors.NewLocalStateError("save profile", err)
	}
	return nil
}

// Load returns the stored profile for username, or a zero profile when
// none has been saved yet.
func (s *ProfileStore) Load(ctx context.Context, username string) (models.Profile, error) {
	var data string
	err := s.db.GetContext(ctx, &data,
		"SELECT data FROM profiles WHERE username = ?", username)
	if err == sql.ErrNoRows {
		return models.Profile{}, nil
	}
	if err != nil {
		return models.Profile{}, errors.NewLocalStateError("load profile", err)
	}

	var profile models.Profile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		return models.Profile{}, errors.NewLocalStateError("load profile", err)
	}
	return profile, nil
}

// Delete removes the profile for username.
func (s *ProfileStore) Delete(ctx context.Context, username string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM profiles WHERE username = ?", username); err != nil {
		return errors.NewLocalStateError("delete profile", err)
	}
	return nil
}
