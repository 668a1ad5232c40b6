package activecache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/parking-meter/internal/activecache"
)

// newTestStore connects to the Redis named by TEST_REDIS_ADDR.
// The test is skipped when the variable is not set.
func newTestStore(t *testing.T) *activecache.Store {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set; skipping integration test")
	}

	client, err := activecache.NewClient(context.Background(), addr, os.Getenv("TEST_REDIS_PASSWORD"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return activecache.NewStore(client, time.Minute)
}

func TestStore_PutLookupRemove(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	vehicleID, sessionID := uuid.New(), uuid.New()

	require.NoError(t, store.Put(ctx, vehicleID, sessionID))

	got, found, err := store.Lookup(ctx, vehicleID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, sessionID, got)

	require.NoError(t, store.Remove(ctx, vehicleID))

	_, found, err = store.Lookup(ctx, vehicleID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_RemoveMissing(t *testing.T) {
	store := newTestStore(t)

	assert.NoError(t, store.Remove(context.Background(), uuid.New()))
}

func TestNewClient_EmptyAddr(t *testing.T) {
	_, err := activecache.NewClient(context.Background(), "  ", "")

	assert.ErrorContains(t, err, "addr is empty")
}
