package maps

import (
	"context"
	"errors"
	"testing"
	"time"

	"googlemaps.github.io/maps"
)

type fakeDirections struct {
	routes []maps.Route
	err    error
	req    *maps.DirectionsRequest
}

func (f *fakeDirections) Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error) {
	f.req = r
	return f.routes, nil, f.err
}

func TestGetTravelEstimate(t *testing.T) {
	fd := &fakeDirections{routes: []maps.Route{{Legs: []*maps.Leg{{
		Duration: 34*time.Minute + 40*time.Second,
		Distance: maps.Distance{HumanReadable: "21.3 km", Meters: 21300},
	}}}}}
	s := &RouteService{client: fd, mode: maps.TravelModeDriving}

	d, dist, err := s.GetTravelEstimate(context.Background(), "DXB", "Dubai Marina")
	if err != nil {
		t.Fatalf("GetTravelEstimate: %v", err)
	}
	if d != 34*time.Minute+40*time.Second || dist != "21.3 km" {
		t.Errorf("got %v %q", d, dist)
	}
	if fd.req.Mode != maps.TravelModeDriving || fd.req.Language != "en" || fd.req.Region != "" {
		t.Errorf("request = %+v", fd.req)
	}
}

func TestGetTravelEstimate_Errors(t *testing.T) {
	s := &RouteService{client: &fakeDirections{}}
	if _, _, err := s.GetTravelEstimate(context.Background(), "a", "b"); !errors.Is(err, ErrNoRoute) {
		t.Errorf("empty routes err = %v", err)
	}
	s = &RouteService{client: &fakeDirections{err: errors.New("OVER_QUERY_LIMIT")}}
	if _, _, err := s.GetTravelEstimate(context.Background(), "a", "b"); err == nil {
		t.Error("expected error")
	}
}

type fakeTextSearch struct {
	byType map[maps.PlaceType][]maps.PlacesSearchResult
	err    map[maps.PlaceType]error
	reqs   []*maps.TextSearchRequest
}

func (f *fakeTextSearch) TextSearch(ctx context.Context, r *maps.TextSearchRequest) (maps.PlacesSearchResponse, error) {
	f.reqs = append(f.reqs, r)
	if err := f.err[r.Type]; err != nil {
		return maps.PlacesSearchResponse{}, err
	}
	return maps.PlacesSearchResponse{Results: f.byType[r.Type]}, nil
}

func TestSearchNearby_FiltersAndLimits(t *testing.T) {
	fs := &fakeTextSearch{byType: map[maps.PlaceType][]maps.PlacesSearchResult{
		"": {
			{Name: "Low Rated Inn", Rating: 3.2, PlaceID: "1"},
			{Name: "Backpacker HOSTEL", Rating: 4.6, PlaceID: "2"},
			{Name: "Atlantis", Rating: 4.7, PlaceID: "3", FormattedAddress: "Palm Jumeirah"},
			{Name: "Jumeirah Beach", Rating: 4.5, PlaceID: "4"},
			{Name: "Address Downtown", Rating: 4.4, PlaceID: "5"},
		},
	}}
	s := &PlacesService{client: fs}

	got, err := s.SearchNearby(context.Background(), "Dubai", "hotels", &SearchOptions{ExcludeKeywords: []string{"hostel"}, Limit: 2})
	if err != nil {
		t.Fatalf("SearchNearby: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Atlantis" || got[1].Name != "Jumeirah Beach" {
		t.Fatalf("got %+v", got)
	}
	if got[0].Address != "Palm Jumeirah" {
		t.Errorf("Address = %q", got[0].Address)
	}
	if fs.reqs[0].Query != "hotels in Dubai" || fs.reqs[0].Language != "en" {
		t.Errorf("request = %+v", fs.reqs[0])
	}
}

func TestHotelsAndRestaurants(t *testing.T) {
	fs := &fakeTextSearch{
		byType: map[maps.PlaceType][]maps.PlacesSearchResult{
			maps.PlaceTypeLodging: {{Name: "Taj", Rating: 4.8}},
		},
		err: map[maps.PlaceType]error{maps.PlaceTypeRestaurant: errors.New("denied")},
	}
	s := &PlacesService{client: fs}

	hotels, restaurants, err := s.HotelsAndRestaurants(context.Background(), "Mumbai")
	if err != nil {
		t.Fatalf("HotelsAndRestaurants: %v", err)
	}
	if len(hotels) != 1 || len(restaurants) != 0 {
		t.Errorf("hotels = %v restaurants = %v", hotels, restaurants)
	}

	fs.err[maps.PlaceTypeLodging] = errors.New("denied")
	if _, _, err := s.HotelsAndRestaurants(context.Background(), "Mumbai"); err == nil {
		t.Error("expected error when both searches fail")
	}
}
