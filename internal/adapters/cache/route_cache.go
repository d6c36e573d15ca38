package cache

import (
	"context"
	"database/sql"
	"eld-hos-service/internal/platform/obs"
	"eld-hos-service/internal/ports"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// SQLRouteCache is a Postgres-backed cache of routed leg results, keyed by
// routing profile so truck and car routes never mix.
type SQLRouteCache struct {
	DB *sql.DB
}

func NewSQLRouteCache(db *sql.DB) *SQLRouteCache {
	return &SQLRouteCache{DB: db}
}

func (s *SQLRouteCache) Get(
	ctx context.Context,
	profile string,
	origin string,
	destination string,
) (_ ports.DistanceResult, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	if s.DB == nil {
		return ports.DistanceResult{}, false, errors.New("route cache: db is nil")
	}

	q := `
	SELECT distance_meters, duration_seconds
	FROM route_cache
	WHERE profile = $1
		AND origin = $2
		AND destination = $3;
	`

	var r ports.DistanceResult
	err = s.DB.QueryRowContext(ctx, q, profile, origin, destination).Scan(&r.DistanceMeters, &r.DurationSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.DistanceResult{}, false, nil
	}
	if err != nil {
		return ports.DistanceResult{}, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	return r, true, nil
}

func (s *SQLRouteCache) Put(
	ctx context.Context,
	profile string,
	origin string,
	destination string,
	r ports.DistanceResult,
) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}

	if strings.TrimSpace(origin) == "" || strings.TrimSpace(destination) == "" {
		return errors.New("insert route cache: origin and destination must not be empty")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO route_cache (profile, origin, destination, distance_meters, duration_seconds)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (profile, origin, destination) DO UPDATE
	SET distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds,
		cached_at = NOW();
	`, profile, origin, destination, r.DistanceMeters, r.DurationSeconds)
	if err != nil {
		return fmt.Errorf("insert route cache %q -> %q: %w", origin, destination, err)
	}

	return nil
}

// MemoryRouteCache is the in-process route cache used when no database is configured.
type MemoryRouteCache struct {
	mu sync.RWMutex
	m  map[string]ports.DistanceResult
}

func NewMemoryRouteCache() *MemoryRouteCache {
	return &MemoryRouteCache{m: make(map[string]ports.DistanceResult)}
}

func routeKey(profile, origin, destination string) string {
	return profile + "|" + origin + "|" + destination
}

func (c *MemoryRouteCache) Get(ctx context.Context, profile, origin, destination string) (ports.DistanceResult, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.m[routeKey(profile, origin, destination)]
	return r, ok, nil
}

func (c *MemoryRouteCache) Put(ctx context.Context, profile, origin, destination string, r ports.DistanceResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[routeKey(profile, origin, destination)] = r
	return nil
}
