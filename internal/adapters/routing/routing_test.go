package routing

import (
	"context"
	"eld-hos-service/internal/adapters/cache"
	"eld-hos-service/internal/ports"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeORS struct {
	geocodes   atomic.Int32
	directions atomic.Int32
	failFirst  atomic.Bool
}

func (f *fakeORS) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/geocode/search", func(w http.ResponseWriter, r *http.Request) {
		f.geocodes.Add(1)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		lon := -96.8
		if r.URL.Query().Get("text") == "Houston, TX" {
			lon = -95.4
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"features": []any{map[string]any{"geometry": map[string]any{"coordinates": []float64{lon, 32.8}}}},
		})
	})
	mux.HandleFunc("/v2/directions/driving-hgv", func(w http.ResponseWriter, r *http.Request) {
		f.directions.Add(1)
		if f.failFirst.CompareAndSwap(true, false) {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}

		var req directionsRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Coordinates, 2)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"routes": []any{map[string]any{"summary": map[string]any{"distance": 384623.4, "duration": 13499.6}}},
		})
	})
	return mux
}

func TestORSRouteProviderCachesRoutes(t *testing.T) {
	fake := &fakeORS{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	p, err := NewORSRouteProvider("test-key", cache.NewMemoryRouteCache(), cache.NewMemoryGeocodeCache(), WithBaseURL(srv.URL))
	require.NoError(t, err)

	r, err := p.GetDistance(context.Background(), "Dallas,  TX", "Houston, TX")
	require.NoError(t, err)
	assert.Equal(t, 384623, r.DistanceMeters)
	assert.Equal(t, 13500, r.DurationSeconds)

	_, err = p.GetDistance(context.Background(), "Dallas, TX", "Houston, TX")
	require.NoError(t, err)

	assert.EqualValues(t, 2, fake.geocodes.Load())
	assert.EqualValues(t, 1, fake.directions.Load(), "second lookup is served from the route cache")
}

func TestORSRouteProviderRetriesTransientFailures(t *testing.T) {
	fake := &fakeORS{}
	fake.failFirst.Store(true)
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	p, err := NewORSRouteProvider("test-key", nil, nil, WithBaseURL(srv.URL))
	require.NoError(t, err)

	r, err := p.GetDistance(context.Background(), "Dallas, TX", "Houston, TX")
	require.NoError(t, err)
	assert.Equal(t, 384623, r.DistanceMeters)
	assert.EqualValues(t, 2, fake.directions.Load())
}

func TestORSRouteProviderRequiresKey(t *testing.T) {
	_, err := NewORSRouteProvider("", nil, nil)
	assert.Error(t, err)
}

func TestStaticRoutesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	doc := "- from: Dallas, TX\n  to: Houston, TX\n  miles: 250\n  hours: 5\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	p, err := LoadStaticRoutes(path)
	require.NoError(t, err)

	r, err := p.GetDistance(context.Background(), "Houston,  TX", "Dallas, TX")
	require.NoError(t, err)
	assert.Equal(t, 402336, r.DistanceMeters)
	assert.Equal(t, 18000, r.DurationSeconds)

	_, err = p.GetDistance(context.Background(), "Dallas, TX", "Austin, TX")
	assert.ErrorIs(t, err, ports.ErrRouteNotFound)
}
