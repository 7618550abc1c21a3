// internal/localstate/profile_test.go
package localstate

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vascomart-client/internal/models"
)

func newTestStore(t *testing.T) *ProfileStore {
	t.Helper()
	store, err := NewProfileStore(filepath.Join(t.TempDir(), "state", "profiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestProfileStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	profile := models.Profile{
		Bio:         "Coffee enthusiast",
		Nationality: "PT",
		Interests:   []string{"espresso", "cycling"},
	}
	require.NoError(t, store.Save(ctx, "ana", profile))

	loaded, err := store.Load(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, profile, loaded)
}

func TestProfileStore_LoadMissingUser(t *testing.T) {
	store := newTestStore(t)

	loaded, err := store.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, models.Profile{}, loaded)
}

func TestProfileStore_SaveReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "ana", models.Profile{Bio: "first"}))
	require.NoError(t, store.Save(ctx, "ana", models.Profile{Bio: "second"}))

	loaded, err := store.Load(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "second", loaded.Bio)
}

func TestProfileStore_ProfilesAreIndependent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "ana", models.Profile{Bio: "ana's bio"}))
	require.NoError(t, store.Save(ctx, "ben", models.Profile{Bio: "ben's bio"}))

	loaded, err := store.Load(ctx, "ben")
	require.NoError(t, err)
	assert.Equal(t, "ben's bio", loaded.Bio)
}

func TestProfileStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "ana", models.Profile{Bio: "bye"}))
	require.NoError(t, store.Delete(ctx, "ana"))

	loaded, err := store.Load(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, models.Profile{}, loaded)

	// deleting an absent row is not an error
	assert.NoError(t, store.Delete(ctx, "ana"))
}

func TestProfileStore_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "profiles.db")
	ctx := context.Background()

	store, err := NewProfileStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "ana", models.Profile{Bio: "persisted"}))
	require.NoError(t, store.Close())

	reopened, err := NewProfileStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "persisted", loaded.Bio)
}
