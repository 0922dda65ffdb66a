// README: Google Maps directions; estimates the airport-to-hotel transfer for itineraries.
package maps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"googlemaps.github.io/maps"
)

// ErrNoRoute is returned when directions come back without a usable leg.
var ErrNoRoute = errors.New("no route found")

type directionsAPI interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// RouteService answers "how long from the arrival airport to the hotel".
type RouteService struct {
	client directionsAPI
	mode   maps.Mode
}

func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("maps client: %w", err)
	}
	return &RouteService{client: client, mode: maps.TravelModeDriving}, nil
}

// GetTravelEstimate returns the first leg's duration and its human-readable distance.
// origin and destination are free-form place names (an airport, a hotel name).
func (s *RouteService) GetTravelEstimate(ctx context.Context, origin, destination string) (time.Duration, string, error) {
	routes, _, err := s.client.Directions(ctx, &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        s.mode,
		Language:    "en",
	})
	if err != nil {
		return 0, "", fmt.Errorf("directions %q -> %q: %w", origin, destination, err)
	}
	for _, route := range routes {
		if len(route.Legs) > 0 {
			leg := route.Legs[0]
			return leg.Duration, leg.Distance.HumanReadable, nil
		}
	}
	return 0, "", ErrNoRoute
}
