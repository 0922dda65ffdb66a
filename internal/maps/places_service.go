package maps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"
)

const (
	minRating    = 4.0
	defaultLimit = 3
)

// Place represents a simplified location result.
type Place struct {
	Name             string  `json:"name"`
	Address          string  `json:"address"`
	Rating           float32 `json:"rating"`
	PlaceID          string  `json:"placeId"`
	UserRatingsTotal int     `json:"userRatingsTotal"`
}

// SearchOptions refines a text search.
type SearchOptions struct {
	// Type restricts results to one Places type (e.g. "lodging").
	Type maps.PlaceType
	// ExcludeKeywords drop any result whose name contains one of them.
	ExcludeKeywords []string
	// Limit caps the number of results; zero means 3.
	Limit int
}

type textSearchAPI interface {
	TextSearch(ctx context.Context, r *maps.TextSearchRequest) (maps.PlacesSearchResponse, error)
}

// PlacesService handles interactions with Google Places API.
type PlacesService struct {
	client textSearchAPI
}

// NewPlacesService creates a new PlacesService with the given API Key.
func NewPlacesService(apiKey string) (*PlacesService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client}, nil
}

// SearchNearby returns well-rated places matching query in location.
// opts can be nil for a basic search.
func (s *PlacesService) SearchNearby(ctx context.Context, location, query string, opts *SearchOptions) ([]Place, error) {
	fullQuery := query
	if location != "" {
		fullQuery = fmt.Sprintf("%s in %s", query, location)
	}

	r := &maps.TextSearchRequest{
		Query:    fullQuery,
		Language: "en",
	}
	limit := defaultLimit
	var excluded []string
	if opts != nil {
		r.Type = opts.Type
		excluded = opts.ExcludeKeywords
		if opts.Limit > 0 {
			limit = opts.Limit
		}
	}

	resp, err := s.client.TextSearch(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	var results []Place
	for _, result := range resp.Results {
		if result.Rating < minRating {
			continue
		}
		if containsAny(result.Name, excluded) {
			continue
		}
		results = append(results, Place{
			Name:             result.Name,
			Address:          result.FormattedAddress,
			Rating:           result.Rating,
			PlaceID:          result.PlaceID,
			UserRatingsTotal: result.UserRatingsTotal,
		})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// HotelsAndRestaurants looks up top lodging and restaurants in a city.
// A failure on one search still returns the other's results.
func (s *PlacesService) HotelsAndRestaurants(ctx context.Context, city string) (hotels, restaurants []Place, err error) {
	hotels, hErr := s.SearchNearby(ctx, city, "hotels", &SearchOptions{Type: maps.PlaceTypeLodging, ExcludeKeywords: []string{"Hostel", "Dormitory"}})
	restaurants, rErr := s.SearchNearby(ctx, city, "restaurants", &SearchOptions{Type: maps.PlaceTypeRestaurant})
	if hErr != nil && rErr != nil {
		return nil, nil, hErr
	}
	return hotels, restaurants, nil
}

func containsAny(name string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && containsIgnoreCase(name, kw) {
			return true
		}
	}
	return false
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
