package routing

import (
	"context"
	"eld-hos-service/internal/ports"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const metersPerMile = 1609.344

// RoutePair is one known leg. Lookups fall back to the reverse direction.
type RoutePair struct {
	From    string  `yaml:"from"`
	To      string  `yaml:"to"`
	Miles   float64 `yaml:"miles"`
	Hours   float64 `yaml:"hours"`
	Meters  int     `yaml:"-"`
	Seconds int     `yaml:"-"`
}

// StaticRouteProvider serves leg distances from a fixed table. It backs tests
// and deployments without an ORS key.
type StaticRouteProvider struct {
	m map[string]ports.DistanceResult
}

func NewStaticRouteProvider(pairs []RoutePair) *StaticRouteProvider {
	m := make(map[string]ports.DistanceResult, len(pairs))
	for _, p := range pairs {
		r := ports.DistanceResult{DistanceMeters: p.Meters, DurationSeconds: p.Seconds}
		if r.DistanceMeters == 0 && p.Miles > 0 {
			r.DistanceMeters = int(math.Round(p.Miles * metersPerMile))
		}
		if r.DurationSeconds == 0 && p.Hours > 0 {
			r.DurationSeconds = int(math.Round(p.Hours * 3600))
		}
		m[normalize(p.From)+"|"+normalize(p.To)] = r
	}
	return &StaticRouteProvider{m: m}
}

// LoadStaticRoutes reads a YAML list of legs:
//
//	- from: Dallas, TX
//	  to: Houston, TX
//	  miles: 239
//	  hours: 3.75
func LoadStaticRoutes(path string) (*StaticRouteProvider, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load static routes: read %q: %w", path, err)
	}

	var pairs []RoutePair
	if err := yaml.Unmarshal(b, &pairs); err != nil {
		return nil, fmt.Errorf("load static routes: parse yaml: %w", err)
	}

	for i, p := range pairs {
		if normalize(p.From) == "" || normalize(p.To) == "" {
			return nil, fmt.Errorf("load static routes: leg #%d: from and to are required", i+1)
		}
		if p.Miles < 0 || p.Hours < 0 {
			return nil, fmt.Errorf("load static routes: leg #%d: negative miles or hours", i+1)
		}
	}

	return NewStaticRouteProvider(pairs), nil
}

func (p *StaticRouteProvider) GetDistance(ctx context.Context, origin, destination string) (ports.DistanceResult, error) {
	o, d := normalize(origin), normalize(destination)
	if r, ok := p.m[o+"|"+d]; ok {
		return r, nil
	}
	if r, ok := p.m[d+"|"+o]; ok {
		return r, nil
	}
	return ports.DistanceResult{}, fmt.Errorf("static routes: %q -> %q: %w", origin, destination, ports.ErrRouteNotFound)
}
