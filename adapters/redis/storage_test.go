package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizboard/core"
)

// newTestStore spins up a miniredis server and returns a store plus the raw
// client for direct inspection.
func newTestStore(t *testing.T) (*Store, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewWithClient(client, "test:leaderboard"), client
}

func entry(id, score int64, name string) core.Entry {
	return core.Entry{
		ID:    id,
		Name:  name,
		Score: score,
		Level: core.LevelForScore(score),
		Date:  time.Now().UTC().Truncate(time.Second),
	}
}

func TestStore_InsertAndRange(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, entry(1, 59, "Bo")))
	require.NoError(t, store.Insert(ctx, entry(2, 95, "Ana")))
	require.NoError(t, store.Insert(ctx, entry(3, 72, "Cy")))

	entries, err := store.RangeDescending(ctx, 0, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Ana", entries[0].Name)
	assert.Equal(t, "Cy", entries[1].Name)
	assert.Equal(t, core.LevelGold, entries[0].Level)

	entries, err = store.RangeDescending(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "Bo", entries[2].Name)
}

func TestStore_TieOrder(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// equal scores within a page are re-ranked earlier id first
	require.NoError(t, store.Insert(ctx, entry(1700000000002, 80, "later")))
	require.NoError(t, store.Insert(ctx, entry(1700000000001, 80, "earlier")))

	entries, err := store.RangeDescending(ctx, 0, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "earlier", entries[0].Name)
	assert.Equal(t, "later", entries[1].Name)
}

func TestStore_Cardinality(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	n, err := store.Cardinality(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	require.NoError(t, store.Insert(ctx, entry(1, 10, "a")))
	require.NoError(t, store.Insert(ctx, entry(2, 20, "b")))

	n, err = store.Cardinality(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestStore_EvictLowest(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, store.Insert(ctx, entry(i, i*10, "p")))
	}

	removed, err := store.EvictLowest(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	entries, err := store.RangeDescending(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(30), entries[2].Score)

	removed, err = store.EvictLowest(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}

func TestStore_CorruptMemberBecomesPlaceholder(t *testing.T) {
	store, client := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, entry(1, 90, "good-high")))
	require.NoError(t, store.Insert(ctx, entry(2, 40, "good-low")))
	// inject a corrupt member between them, straight through the client
	require.NoError(t, client.ZAdd(ctx, "test:leaderboard", redis.Z{Score: 60, Member: "{not json"}).Err())

	entries, err := store.RangeDescending(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "good-high", entries[0].Name)
	assert.Equal(t, core.Placeholder(), entries[1])
	assert.Equal(t, "good-low", entries[2].Name)
}

func TestStore_UnavailableMapsToSentinel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewWithClient(client, "")
	mr.Close()

	err := store.Insert(context.Background(), entry(1, 10, "a"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrStoreUnavailable))

	_, err = store.RangeDescending(context.Background(), 0, 9)
	assert.True(t, errors.Is(err, core.ErrStoreUnavailable))

	_, err = store.Cardinality(context.Background())
	assert.True(t, errors.Is(err, core.ErrStoreUnavailable))

	_, err = store.EvictLowest(context.Background(), 1)
	assert.True(t, errors.Is(err, core.ErrStoreUnavailable))
}

func TestConfig_DefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "", config.Addr)
	assert.Equal(t, 10, config.PoolSize)
	assert.Equal(t, 2, config.MinIdleConns)
	assert.Equal(t, 5*time.Second, config.DialTimeout)
	assert.Equal(t, 3*time.Second, config.ReadTimeout)
	assert.Equal(t, 3*time.Second, config.WriteTimeout)
	assert.Equal(t, "quizboard:leaderboard", config.Key)
}
