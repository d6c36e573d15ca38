package cache

import (
	"context"
	"eld-hos-service/internal/domain"
	"eld-hos-service/internal/ports"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRouteCacheKeysByProfile(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryRouteCache()

	_, ok, err := c.Get(ctx, "driving-hgv", "A", "B")
	require.NoError(t, err)
	assert.False(t, ok)

	want := ports.DistanceResult{DistanceMeters: 1000, DurationSeconds: 60}
	require.NoError(t, c.Put(ctx, "driving-hgv", "A", "B", want))

	got, ok, err := c.Get(ctx, "driving-hgv", "A", "B")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	_, ok, _ = c.Get(ctx, "driving-car", "A", "B")
	assert.False(t, ok, "other profiles do not share entries")
	_, ok, _ = c.Get(ctx, "driving-hgv", "B", "A")
	assert.False(t, ok, "routes are directional")
}

func TestMemoryGeocodeCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryGeocodeCache()

	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{
		"Joliet, IL": {Lon: -88.08, Lat: 41.52},
	}))

	got, err := c.GetMany(ctx, []string{" Joliet, IL ", "Joliet, IL", "", "Lincoln, NE"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.InDelta(t, 41.52, got["Joliet, IL"].Lat, 1e-9)
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, dedupe([]string{" a", "b", "a ", "  ", "b"}))
}
