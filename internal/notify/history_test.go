// internal/notify/history_test.go
package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistory(t *testing.T, capacity int) (*RedisHistory, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisHistory(client, "notifications:history", capacity), mr
}

func TestRedisHistory_AppendAndRecent(t *testing.T) {
	history, _ := newTestHistory(t, 50)
	ctx := context.Background()

	require.NoError(t, history.Append(ctx, makeNotification("a", "first")))
	require.NoError(t, history.Append(ctx, makeNotification("b", "second")))

	recent, err := history.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].ID)
	assert.Equal(t, "a", recent[1].ID)
}

func TestRedisHistory_TrimsToCapacity(t *testing.T) {
	history, _ := newTestHistory(t, 5)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		require.NoError(t, history.Append(ctx, makeNotification(fmt.Sprintf("n-%d", i), "x")))
	}

	recent, err := history.Recent(ctx, 50)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	assert.Equal(t, "n-7", recent[0].ID)
	assert.Equal(t, "n-3", recent[4].ID)
}

func TestRedisHistory_RecentSkipsCorruptEntries(t *testing.T) {
	history, mr := newTestHistory(t, 50)
	ctx := context.Background()

	require.NoError(t, history.Append(ctx, makeNotification("good", "x")))
	_, err := mr.Lpush("notifications:history", "{broken")
	require.NoError(t, err)

	recent, err := history.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "good", recent[0].ID)
}

func TestRedisHistory_Clear(t *testing.T) {
	history, _ := newTestHistory(t, 50)
	ctx := context.Background()

	require.NoError(t, history.Append(ctx, makeNotification("a", "x")))
	require.NoError(t, history.Clear(ctx))

	recent, err := history.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestRedisHistory_AppendFailsWhenDown(t *testing.T) {
	history, mr := newTestHistory(t, 50)
	mr.Close()

	err := history.Append(context.Background(), makeNotification("a", "x"))
	assert.Error(t, err)
}
