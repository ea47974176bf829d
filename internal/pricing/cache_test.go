package pricing

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestStructureCacheRoundTrip(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := NewStructureCache(client, time.Minute)
	columns := map[int]StructureColumn{
		0: {Kind: KindDiscount, ValueKind: ValueCumulativePercent, Basis: BasisPerUnit, Label: "promo"},
		4: {Kind: KindFee, ValueKind: ValueFixedAmount, Basis: BasisPerLine, Label: "freight"},
	}

	require.NoError(t, cache.Set(context.Background(), "STD", columns))

	got, found, err := cache.Get(context.Background(), "STD")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, columns, got)
}

func TestStructureCacheMiss(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := NewStructureCache(client, time.Minute)
	_, found, err := cache.Get(context.Background(), "MISSING")
	require.NoError(t, err)
	require.False(t, found)
}

func TestStructureCacheDelete(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := NewStructureCache(client, time.Minute)
	require.NoError(t, cache.Set(context.Background(), "STD", map[int]StructureColumn{}))
	require.NoError(t, cache.Delete(context.Background(), "STD"))

	_, found, err := cache.Get(context.Background(), "STD")
	require.NoError(t, err)
	require.False(t, found)
}

func TestStructureCacheNilSafe(t *testing.T) {
	t.Parallel()

	var cache *StructureCache
	_, found, err := cache.Get(context.Background(), "STD")
	require.NoError(t, err)
	require.False(t, found)
	require.NoError(t, cache.Set(context.Background(), "STD", nil))
	require.NoError(t, cache.Delete(context.Background(), "STD"))

	// Constructed without a client it behaves the same way.
	cache = NewStructureCache(nil, time.Minute)
	_, found, err = cache.Get(context.Background(), "STD")
	require.NoError(t, err)
	require.False(t, found)
}
