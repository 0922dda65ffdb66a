package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"roamgenie/internal/ai"
	"roamgenie/internal/maps"
	"roamgenie/internal/modules/flights"
)

func intPtr(v int) *int { return &v }

type fakeSearcher struct {
	options []flights.Option
	err     error
	got     flights.Query
}

func (f *fakeSearcher) Search(ctx context.Context, q flights.Query) ([]flights.Option, error) {
	f.got = q
	return f.options, f.err
}

type fakePlaces struct {
	hotels []maps.Place
	err    error
	city   string
}

func (f *fakePlaces) HotelsAndRestaurants(ctx context.Context, city string) ([]maps.Place, []maps.Place, error) {
	f.city = city
	return f.hotels, nil, f.err
}

type fakeVisas map[string]bool

func (f fakeVisas) VisaStatus(ctx context.Context, passport, destination string) bool {
	return f[passport+">"+destination]
}

// agentGenerator answers each agent by its system instruction and records prompts.
func agentGenerator(t *testing.T, fail string) (*ai.MockGenerator, map[string]string) {
	t.Helper()
	var mu sync.Mutex
	prompts := map[string]string{}
	g := ai.NewMockGenerator()
	g.GenerateFn = func(ctx context.Context, sys, user string) (string, error) {
		var agent string
		switch {
		case strings.Contains(sys, "travel researcher"):
			agent = "research"
		case strings.Contains(sys, "hotel and restaurant expert"):
			agent = "hotels"
		case strings.Contains(sys, "travel planner"):
			agent = "planner"
		default:
			t.Errorf("unexpected system instruction %q", sys)
		}
		if !strings.Contains(sys, "Current date and time: 2026-10-18T09:00:00Z") {
			t.Errorf("%s instruction missing timestamp: %q", agent, sys)
		}
		mu.Lock()
		prompts[agent] = user
		mu.Unlock()
		if agent == fail {
			return "", &ai.UpstreamError{Provider: "mock", Err: errors.New("boom")}
		}
		return agent + " output", nil
	}
	return g, prompts
}

func newTestPlanner(g ai.Generator, s flights.Searcher, p PlacesFinder, v VisaChecker) *TripPlanner {
	tp := NewTripPlanner(g, s, p, v)
	tp.now = func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }
	return tp
}

func validRequest() PlanRequest {
	return PlanRequest{
		Source:          "bom",
		Destination:     "dxb",
		DepartureDate:   "2026-11-02",
		ReturnDate:      "2026-11-09",
		PassportCountry: "India",
	}
}

func TestPlanTrip_EndToEnd(t *testing.T) {
	g, prompts := agentGenerator(t, "")
	search := &fakeSearcher{options: []flights.Option{
		{Airline: "Pricey", Price: intPtr(52000)},
		{Airline: "Cheap", Price: intPtr(18900)},
		{Airline: "Mid", Price: intPtr(31500)},
		{Airline: "NoPrice"},
	}}
	places := &fakePlaces{hotels: []maps.Place{{Name: "Atlantis", Rating: 4.7, Address: "Palm Jumeirah"}}}
	tp := newTestPlanner(g, search, places, fakeVisas{"India>UAE": true})

	plan, err := tp.PlanTrip(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("PlanTrip: %v", err)
	}

	if plan.VisaStatus != VisaFree || plan.DestinationCountry != "UAE" {
		t.Errorf("visa = %q country = %q", plan.VisaStatus, plan.DestinationCountry)
	}
	if search.got.From != "BOM" || search.got.To != "DXB" || search.got.Return != "2026-11-09" {
		t.Errorf("search query = %+v", search.got)
	}
	if len(plan.Flights) != 3 || plan.Flights[0].Airline != "Cheap" || plan.Flights[2].Airline != "Pricey" {
		t.Errorf("flights = %+v", plan.Flights)
	}
	if plan.ResearchResults != "research output" || plan.HotelRestaurantResults != "hotels output" || plan.Itinerary != "planner output" {
		t.Errorf("plan = %+v", plan)
	}
	if g.Calls() != 3 {
		t.Errorf("model calls = %d, want 3", g.Calls())
	}

	if !strings.Contains(prompts["research"], "5-day couple getaway trip") {
		t.Errorf("research prompt = %q", prompts["research"])
	}
	if places.city != "DXB, UAE" || !strings.Contains(prompts["hotels"], "Hotel: Atlantis (4.7★, Palm Jumeirah)") {
		t.Errorf("hotel prompt = %q (city %q)", prompts["hotels"], places.city)
	}
	for _, want := range []string{"Research: research output.", "Hotels & Restaurants: hotels output.", `"airline":"Cheap"`} {
		if !strings.Contains(prompts["planner"], want) {
			t.Errorf("planner prompt missing %q: %q", want, prompts["planner"])
		}
	}
}

func TestPlanTrip_FlightSearchFailureIsNotFatal(t *testing.T) {
	g, prompts := agentGenerator(t, "")
	tp := newTestPlanner(g, &fakeSearcher{err: flights.ErrNotConfigured}, nil, nil)

	plan, err := tp.PlanTrip(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("PlanTrip: %v", err)
	}
	if plan.Flights == nil || len(plan.Flights) != 0 {
		t.Errorf("Flights = %#v, want empty", plan.Flights)
	}
	if !strings.Contains(prompts["planner"], "Flights: [].") {
		t.Errorf("planner prompt = %q", prompts["planner"])
	}
	if strings.Contains(prompts["hotels"], "Google Maps") {
		t.Error("hotel prompt should not carry places without a finder")
	}
}

func TestFlightsForPrompt(t *testing.T) {
	if got := flightsForPrompt(nil); got != "[]" {
		t.Errorf("flightsForPrompt(nil) = %q, want []", got)
	}
	got := flightsForPrompt([]flights.Option{{Airline: "Emirates", Price: intPtr(420)}})
	if !strings.HasPrefix(got, "[{") || !strings.Contains(got, `"airline":"Emirates"`) || !strings.Contains(got, `"price":420`) {
		t.Errorf("flightsForPrompt = %q", got)
	}
}

func TestPlanTrip_AgentFailure(t *testing.T) {
	for _, agent := range []string{"research", "hotels", "planner"} {
		t.Run(agent, func(t *testing.T) {
			g, _ := agentGenerator(t, agent)
			tp := newTestPlanner(g, &fakeSearcher{}, nil, nil)
			_, err := tp.PlanTrip(context.Background(), validRequest())
			if !errors.Is(err, ai.ErrUpstreamGeneration) {
				t.Fatalf("err = %v", err)
			}
		})
	}
}

func TestPlanTrip_PlacesFailureKeepsPlainPrompt(t *testing.T) {
	g, prompts := agentGenerator(t, "")
	tp := newTestPlanner(g, &fakeSearcher{}, &fakePlaces{err: errors.New("denied")}, nil)
	if _, err := tp.PlanTrip(context.Background(), validRequest()); err != nil {
		t.Fatalf("PlanTrip: %v", err)
	}
	if strings.Contains(prompts["hotels"], "Google Maps") {
		t.Errorf("hotel prompt = %q", prompts["hotels"])
	}
}

func TestPlanTrip_InputRejected(t *testing.T) {
	cases := map[string]func(r *PlanRequest){
		"missing source": func(r *PlanRequest) { r.Source = " " },
		"missing return": func(r *PlanRequest) { r.ReturnDate = "" },
		"bad date":       func(r *PlanRequest) { r.DepartureDate = "02/11/2026" },
		"return before":  func(r *PlanRequest) { r.ReturnDate = "2026-11-01" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			g := ai.NewMockGenerator("x")
			req := validRequest()
			mutate(&req)
			_, err := newTestPlanner(g, &fakeSearcher{}, nil, nil).PlanTrip(context.Background(), req)
			if !errors.Is(err, ErrInputRejected) {
				t.Fatalf("err = %v", err)
			}
			if g.Calls() != 0 {
				t.Errorf("model called %d times", g.Calls())
			}
		})
	}
}

func TestVisaStatus(t *testing.T) {
	tp := newTestPlanner(nil, nil, nil, fakeVisas{"India>Thailand": true})
	ctx := context.Background()
	cases := []struct {
		name    string
		req     PlanRequest
		country string
		want    string
	}{
		{"no passport", PlanRequest{}, "Thailand", VisaUnknown},
		{"listed by caller", PlanRequest{PassportCountry: "India", VisaFreeCountries: []string{"thailand"}}, "Thailand", VisaFree},
		{"not listed by caller", PlanRequest{PassportCountry: "India", VisaFreeCountries: []string{"Nepal"}}, "Japan", VisaRequired},
		{"caller list unknown airport", PlanRequest{PassportCountry: "India", VisaFreeCountries: []string{"Nepal"}}, flights.UnknownCountry, VisaCheck},
		{"dataset free", PlanRequest{PassportCountry: "India"}, "Thailand", VisaFree},
		{"dataset required", PlanRequest{PassportCountry: "India"}, "France", VisaRequired},
		{"dataset unknown airport", PlanRequest{PassportCountry: "India"}, flights.UnknownCountry, VisaCheck},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tp.visaStatus(ctx, tc.req, tc.country); got != tc.want {
				t.Errorf("visaStatus = %q, want %q", got, tc.want)
			}
		})
	}

	noData := newTestPlanner(nil, nil, nil, nil)
	if got := noData.visaStatus(ctx, PlanRequest{PassportCountry: "India"}, "Thailand"); got != VisaUnknown {
		t.Errorf("no dataset = %q, want Unknown", got)
	}
}
