package routing

import (
	"bytes"
	"context"
	"eld-hos-service/internal/domain"
	"eld-hos-service/internal/platform/obs"
	"eld-hos-service/internal/ports"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
)

type directionsRequest struct {
	Coordinates  [][]float64 `json:"coordinates"`
	Units        string      `json:"units"`
	Instructions bool        `json:"instructions"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
	} `json:"routes"`
}

// fetchDirections asks the ORS directions endpoint for one truck route and keeps its summary.
func (o *ORSRouteProvider) fetchDirections(
	ctx context.Context,
	from domain.Coordinates,
	to domain.Coordinates,
) (_ ports.DistanceResult, err error) {
	defer obs.Time(ctx, "ors.fetchDirections")(&err)

	endpoint := fmt.Sprintf("%s/v2/directions/%s", o.baseURL, o.profile)

	payload, err := json.Marshal(directionsRequest{
		Coordinates: [][]float64{from.LonLat(), to.LonLat()},
		Units:       "m",
	})
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return ports.DistanceResult{}, fmt.Errorf("decode directions response: %w", err)
	}

	if len(dr.Routes) == 0 {
		return ports.DistanceResult{}, fmt.Errorf("directions returned no route: %w", ports.ErrRouteNotFound)
	}

	s := dr.Routes[0].Summary
	if s.Distance < 0 || s.Duration < 0 {
		return ports.DistanceResult{}, fmt.Errorf("directions returned negative summary")
	}

	// ORS returns float metrics; round to nearest integer for domain consistency.
	return ports.DistanceResult{
		DistanceMeters:  int(math.Round(s.Distance)),
		DurationSeconds: int(math.Round(s.Duration)),
	}, nil
}
