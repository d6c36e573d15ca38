package ports

import (
	"context"
	"errors"
)

// ErrRouteNotFound means a location could not be resolved or no road route joins the two.
var ErrRouteNotFound = errors.New("no route between locations")

// Road distance and drive duration between two locations.
type DistanceResult struct {
	DistanceMeters  int
	DurationSeconds int
}

// Contract for estimating a truck's drive between two addresses.
type DistanceProvider interface {
	GetDistance(ctx context.Context, origin string, destination string) (DistanceResult, error)
}
