package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"roamgenie/internal/ai"
	"roamgenie/internal/maps"
	"roamgenie/internal/metrics"
	"roamgenie/internal/modules/flights"
)

var logger = log.New(log.Writer(), "[planner] ", log.LstdFlags)

// ErrInputRejected marks a plan request missing its route or dates.
var ErrInputRejected = errors.New("input rejected")

const dateLayout = "2006-01-02"

// Visa status values reported on a plan.
const (
	VisaFree     = "Visa-Free"
	VisaRequired = "Visa Required"
	VisaCheck    = "Check visa requirements"
	VisaUnknown  = "Unknown"
)

// VisaChecker answers whether a passport enters a destination country visa-free.
type VisaChecker interface {
	VisaStatus(ctx context.Context, passport, destination string) bool
}

// PlacesFinder looks up real hotels and restaurants to ground the hotel agent.
type PlacesFinder interface {
	HotelsAndRestaurants(ctx context.Context, city string) (hotels, restaurants []maps.Place, err error)
}

// PlanRequest is the input to PlanTrip. Source and Destination are IATA codes.
type PlanRequest struct {
	Source              string   `json:"source"`
	Destination         string   `json:"destination"`
	DepartureDate       string   `json:"departureDate"`
	ReturnDate          string   `json:"returnDate"`
	NumDays             int      `json:"numDays"`
	TravelTheme         string   `json:"travelTheme"`
	ActivityPreferences string   `json:"activityPreferences"`
	Budget              string   `json:"budget"`
	FlightClass         string   `json:"flightClass"`
	HotelRating         string   `json:"hotelRating"`
	PassportCountry     string   `json:"passportCountry"`
	VisaFreeCountries   []string `json:"visaFreeCountries"`
}

// Plan is the assembled trip plan.
type Plan struct {
	VisaStatus             string         `json:"visaStatus"`
	DestinationCountry     string         `json:"destinationCountry"`
	Flights                []flights.Card `json:"flights"`
	ResearchResults        string         `json:"researchResults"`
	HotelRestaurantResults string         `json:"hotelRestaurantResults"`
	Itinerary              string         `json:"itinerary"`
}

// TripPlanner runs the researcher, hotel and planner agents around a flight search.
type TripPlanner struct {
	gen     ai.Generator
	flights flights.Searcher
	places  PlacesFinder
	visas   VisaChecker
	now     func() time.Time
}

// NewTripPlanner creates a TripPlanner. places and visas may be nil.
func NewTripPlanner(gen ai.Generator, search flights.Searcher, places PlacesFinder, visas VisaChecker) *TripPlanner {
	return &TripPlanner{
		gen:     gen,
		flights: search,
		places:  places,
		visas:   visas,
		now:     time.Now,
	}
}

func (r *PlanRequest) applyDefaults() {
	if r.NumDays <= 0 {
		r.NumDays = 5
	}
	setDefault(&r.TravelTheme, "Couple Getaway")
	setDefault(&r.ActivityPreferences, "Sightseeing")
	setDefault(&r.Budget, "Standard")
	setDefault(&r.FlightClass, "Economy")
	setDefault(&r.HotelRating, "Any")
}

func setDefault(s *string, v string) {
	*s = strings.TrimSpace(*s)
	if *s == "" {
		*s = v
	}
}

func (r *PlanRequest) validate() error {
	r.Source = strings.ToUpper(strings.TrimSpace(r.Source))
	r.Destination = strings.ToUpper(strings.TrimSpace(r.Destination))
	if r.Source == "" || r.Destination == "" || r.DepartureDate == "" || r.ReturnDate == "" {
		return fmt.Errorf("%w: source, destination, departureDate, and returnDate are required", ErrInputRejected)
	}
	dep, err := time.Parse(dateLayout, r.DepartureDate)
	if err != nil {
		return fmt.Errorf("%w: departureDate must be YYYY-MM-DD", ErrInputRejected)
	}
	ret, err := time.Parse(dateLayout, r.ReturnDate)
	if err != nil {
		return fmt.Errorf("%w: returnDate must be YYYY-MM-DD", ErrInputRejected)
	}
	if ret.Before(dep) {
		return fmt.Errorf("%w: returnDate is before departureDate", ErrInputRejected)
	}
	return nil
}

// visaStatus prefers the caller's own visa-free list and falls back to the dataset.
func (p *TripPlanner) visaStatus(ctx context.Context, req PlanRequest, country string) string {
	passport := strings.TrimSpace(req.PassportCountry)
	if passport == "" {
		return VisaUnknown
	}
	switch {
	case len(req.VisaFreeCountries) > 0:
		for _, c := range req.VisaFreeCountries {
			if strings.EqualFold(c, country) {
				return VisaFree
			}
		}
	case p.visas != nil:
		if country != flights.UnknownCountry && p.visas.VisaStatus(ctx, passport, country) {
			return VisaFree
		}
	default:
		return VisaUnknown
	}
	if country == flights.UnknownCountry {
		return VisaCheck
	}
	return VisaRequired
}

// PlanTrip searches flights and runs the research and hotel agents in parallel,
// then feeds their output to the planner agent. A failed flight search leaves
// the flight list empty; agent failures abort the plan.
func (p *TripPlanner) PlanTrip(ctx context.Context, req PlanRequest) (Plan, error) {
	if err := req.validate(); err != nil {
		return Plan{}, err
	}
	req.applyDefaults()

	country := flights.CountryFor(req.Destination)
	plan := Plan{
		VisaStatus:         p.visaStatus(ctx, req, country),
		DestinationCountry: country,
		Flights:            []flights.Card{},
	}
	logger.Printf("planning trip %s -> %s", req.Source, req.Destination)

	theme := strings.ToLower(req.TravelTheme)
	researchPrompt := fmt.Sprintf("Research top attractions in %s for a %d-day %s trip. Interests: %s. Budget: %s. Flight class: %s. Hotel rating: %s.",
		req.Destination, req.NumDays, theme, req.ActivityPreferences, req.Budget, req.FlightClass, req.HotelRating)

	var options []flights.Option
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		opts, err := p.flights.Search(gctx, flights.Query{
			From:     req.Source,
			To:       req.Destination,
			Outbound: req.DepartureDate,
			Return:   req.ReturnDate,
		})
		if err != nil {
			logger.Printf("WARNING: flight search failed: %v", err)
			return nil
		}
		options = opts
		return nil
	})
	g.Go(func() error {
		out, err := p.gen.Generate(gctx, p.researcherInstruction(), researchPrompt)
		if err != nil {
			return fmt.Errorf("researcher agent: %w", err)
		}
		plan.ResearchResults = out
		return nil
	})
	g.Go(func() error {
		out, err := p.gen.Generate(gctx, p.hotelInstruction(), p.hotelPrompt(gctx, req, theme, country))
		if err != nil {
			return fmt.Errorf("hotel agent: %w", err)
		}
		plan.HotelRestaurantResults = out
		return nil
	})
	if err := g.Wait(); err != nil {
		metrics.PipelineRuns.WithLabelValues("travel_plan", "error").Inc()
		return Plan{}, err
	}

	cheapest := flights.Cheapest(options, flights.CheapestCount)
	flightsJSON := flightsForPrompt(cheapest)
	planningPrompt := fmt.Sprintf("Create a %d-day travel itinerary to %s for a %s trip. Preferences: %s. Budget: %s. Flight class: %s. Hotel rating: %s. Research: %s. Flights: %s. Hotels & Restaurants: %s.",
		req.NumDays, req.Destination, theme, req.ActivityPreferences, req.Budget, req.FlightClass, req.HotelRating,
		plan.ResearchResults, flightsJSON, plan.HotelRestaurantResults)

	itinerary, err := p.gen.Generate(ctx, p.plannerInstruction(), planningPrompt)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("travel_plan", "error").Inc()
		return Plan{}, fmt.Errorf("planner agent: %w", err)
	}
	plan.Itinerary = itinerary

	for _, o := range cheapest {
		plan.Flights = append(plan.Flights, flights.ToCard(o, req.Source, req.Destination))
	}
	metrics.PipelineRuns.WithLabelValues("travel_plan", "ok").Inc()
	return plan, nil
}

// flightsForPrompt renders options as the JSON array the planner agent reads.
// An encoding failure degrades to an empty array so the plan still goes ahead.
func flightsForPrompt(options []flights.Option) string {
	if len(options) == 0 {
		return "[]"
	}
	b, err := json.Marshal(options)
	if err != nil {
		logger.Printf("WARNING: encode flight options for planner: %v", err)
		return "[]"
	}
	return string(b)
}

func (p *TripPlanner) hotelPrompt(ctx context.Context, req PlanRequest, theme, country string) string {
	prompt := fmt.Sprintf("Recommend hotels and restaurants in %s for a %s trip. Preferences: %s. Budget: %s. Hotel Rating: %s.",
		req.Destination, theme, req.ActivityPreferences, req.Budget, req.HotelRating)
	if p.places == nil {
		return prompt
	}

	city := req.Destination
	if country != flights.UnknownCountry {
		city = req.Destination + ", " + country
	}
	hotels, restaurants, err := p.places.HotelsAndRestaurants(ctx, city)
	if err != nil {
		logger.Printf("WARNING: places lookup for %s failed: %v", city, err)
		return prompt
	}
	if len(hotels) == 0 && len(restaurants) == 0 {
		return prompt
	}

	var sb strings.Builder
	sb.WriteString(prompt)
	sb.WriteString("\nWell-rated places found on Google Maps:")
	for _, pl := range hotels {
		fmt.Fprintf(&sb, "\n- Hotel: %s (%.1f★, %s)", pl.Name, pl.Rating, pl.Address)
	}
	for _, pl := range restaurants {
		fmt.Fprintf(&sb, "\n- Restaurant: %s (%.1f★, %s)", pl.Name, pl.Rating, pl.Address)
	}
	return sb.String()
}

func (p *TripPlanner) stamp() string {
	return "Current date and time: " + p.now().UTC().Format(time.RFC3339)
}

func (p *TripPlanner) researcherInstruction() string {
	return strings.Join([]string{
		"You are an expert travel researcher.",
		"Identify the destination and research its climate, safety level, top attractions, and best activities.",
		"Use reliable travel knowledge and always summarize results clearly and concisely.",
		p.stamp(),
	}, "\n")
}

func (p *TripPlanner) plannerInstruction() string {
	return strings.Join([]string{
		"You are an expert travel planner.",
		"Create a detailed daily itinerary with time estimates and budget alignment.",
		"Format each day clearly with morning, afternoon, and evening sections.",
		p.stamp(),
	}, "\n")
}

func (p *TripPlanner) hotelInstruction() string {
	return strings.Join([]string{
		"You are a hotel and restaurant expert.",
		"Find and recommend top-rated hotels and restaurants near main tourist attractions.",
		"Include price range, highlights, and booking links where possible.",
		p.stamp(),
	}, "\n")
}
