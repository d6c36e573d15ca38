package routing

import (
	"context"
	"eld-hos-service/internal/domain"
	"eld-hos-service/internal/platform/obs"
	"eld-hos-service/internal/ports"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/zoobzio/clockz"
)

// HGVProfile routes as a heavy goods vehicle, which is what the HOS rules govern.
const HGVProfile = "driving-hgv"

type RouteCache interface {
	Get(ctx context.Context, profile, origin, destination string) (ports.DistanceResult, bool, error)
	Put(ctx context.Context, profile, origin, destination string, r ports.DistanceResult) error
}

type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}

// ORSRouteProvider implements DistanceProvider using OpenRouteService.
//
// It coordinates:
//   - Address normalization
//   - Persistent geocode and route caching
//   - Directions calls with retry/backoff
//
// The provider is safe for concurrent use.
type ORSRouteProvider struct {
	session  *http.Client
	apiKey   string
	baseURL  string
	profile  string
	routes   RouteCache
	geocodes GeocodeCache
	clock    clockz.Clock
}

type ORSOption func(*ORSRouteProvider)

func WithBaseURL(u string) ORSOption {
	return func(o *ORSRouteProvider) { o.baseURL = strings.TrimRight(u, "/") }
}

func WithProfile(p string) ORSOption {
	return func(o *ORSRouteProvider) { o.profile = p }
}

func WithClock(c clockz.Clock) ORSOption {
	return func(o *ORSRouteProvider) { o.clock = c }
}

func WithHTTPClient(c *http.Client) ORSOption {
	return func(o *ORSRouteProvider) { o.session = c }
}

func NewORSRouteProvider(
	apiKey string,
	routes RouteCache,
	geocodes GeocodeCache,
	opts ...ORSOption,
) (*ORSRouteProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	provider := &ORSRouteProvider{
		session:  &http.Client{Timeout: 10 * time.Second},
		apiKey:   apiKey,
		baseURL:  "https://api.openrouteservice.org",
		profile:  HGVProfile,
		routes:   routes,
		geocodes: geocodes,
		clock:    clockz.RealClock,
	}
	for _, opt := range opts {
		opt(provider)
	}

	return provider, nil
}

// normalize ensures consistent cache keys by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (o *ORSRouteProvider) GetDistance(
	ctx context.Context,
	origin string,
	destination string,
) (_ ports.DistanceResult, err error) {
	defer obs.Time(ctx, "ors.GetDistance")(&err)

	normOrigin := normalize(origin)
	if normOrigin == "" {
		return ports.DistanceResult{}, errors.New("origin must be non-empty")
	}
	normDestination := normalize(destination)
	if normDestination == "" {
		return ports.DistanceResult{}, errors.New("destination must be non-empty")
	}
	if normOrigin == normDestination {
		return ports.DistanceResult{}, nil
	}

	// Check persistent route cache before issuing external API calls.
	if o.routes != nil {
		hit, ok, err := o.routes.Get(ctx, o.profile, normOrigin, normDestination)
		if err != nil {
			log.Printf("route cache read failed: %v", err)
		} else if ok {
			return hit, nil
		}
	}

	coords, err := o.resolve(ctx, normOrigin, normDestination)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("retrieving coordinates: %w", err)
	}

	result, err := o.fetchDirections(ctx, coords[normOrigin], coords[normDestination])
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("fetching directions %q -> %q: %w", normOrigin, normDestination, err)
	}

	if o.routes != nil {
		if err := o.routes.Put(ctx, o.profile, normOrigin, normDestination, result); err != nil {
			log.Printf("route cache write failed: %v", err)
		}
	}

	return result, nil
}

// resolve returns coordinates for every address, geocoding cache misses.
func (o *ORSRouteProvider) resolve(ctx context.Context, addresses ...string) (map[string]domain.Coordinates, error) {
	coords := make(map[string]domain.Coordinates, len(addresses))

	// Resolve coordinates via cache before calling ORS geocoding.
	if o.geocodes != nil {
		hits, err := o.geocodes.GetMany(ctx, addresses)
		if err != nil {
			log.Printf("geocode cache read failed: %v", err)
		}
		for k, v := range hits {
			coords[k] = v
		}
	}

	misses := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if _, ok := coords[a]; !ok {
			misses = append(misses, a)
		}
	}
	if len(misses) == 0 {
		return coords, nil
	}

	fresh, err := o.geocodeMany(ctx, misses)
	if err != nil {
		return nil, err
	}

	if o.geocodes != nil && len(fresh) > 0 {
		if err := o.geocodes.PutMany(ctx, fresh); err != nil {
			log.Printf("geocode cache write failed: %v", err)
		}
	}

	for k, v := range fresh {
		coords[k] = v
	}
	for _, a := range addresses {
		if _, ok := coords[a]; !ok {
			return nil, fmt.Errorf("missing coordinate for %q", a)
		}
	}

	return coords, nil
}
