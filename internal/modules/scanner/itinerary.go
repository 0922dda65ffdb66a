package scanner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"roamgenie/internal/ai"
)

// ItineraryUnavailable is returned instead of an itinerary for degraded bookings.
const ItineraryUnavailable = "Could not generate itinerary — booking details could not be fully parsed."

// transferTimeout caps the optional maps lookup so it never stalls the itinerary.
const transferTimeout = 5 * time.Second

// TransferEstimator estimates road travel between two places.
type TransferEstimator interface {
	GetTravelEstimate(ctx context.Context, origin, destination string) (time.Duration, string, error)
}

// Synthesizer turns a Booking into a Markdown day-by-day itinerary.
type Synthesizer struct {
	gen      ai.Generator
	transfer TransferEstimator
	now      func() time.Time
}

// NewSynthesizer creates a Synthesizer. transfer may be nil.
func NewSynthesizer(gen ai.Generator, transfer TransferEstimator) *Synthesizer {
	return &Synthesizer{gen: gen, transfer: transfer, now: time.Now}
}

// Synthesize generates the itinerary text. Degraded bookings short-circuit to
// ItineraryUnavailable without a model call; upstream failures are returned.
func (s *Synthesizer) Synthesize(ctx context.Context, b Booking, passportCountry string) (string, error) {
	if b.ParseError {
		return ItineraryUnavailable, nil
	}

	lines := bookingContext(b, passportCountry)
	if hint := s.transferHint(ctx, b); hint != "" {
		lines = append(lines, hint)
	}

	itinerary, err := s.gen.Generate(ctx, itinerarySystemPrompt(s.now()), itineraryUserPrompt(lines))
	if err != nil {
		return "", fmt.Errorf("synthesize itinerary: %w", err)
	}
	return strings.TrimSpace(itinerary), nil
}

func itinerarySystemPrompt(now time.Time) string {
	return strings.Join([]string{
		"You are RoamGenie, an expert AI travel planner.",
		"Given extracted booking details, generate a complete, helpful, day-by-day travel itinerary.",
		"The itinerary should include:",
		"  - Arrival logistics (airport to hotel, terminal info, check-in tips)",
		"  - Day-by-day activities at the destination (morning, afternoon, evening)",
		"  - Departure logistics on the last day",
		"  - Practical tips: local transport, food, must-see spots, safety",
		"  - If layovers exist, include layover tips",
		"Format the output in clean Markdown with ## Day 1, ## Day 2, etc.",
		"Be specific and detailed; this is meant to be printed and used on the trip.",
		"If some details are missing, plan around what is known and say what the traveller should confirm.",
		"Current date: " + now.Format("2006-01-02"),
	}, "\n")
}

func itineraryUserPrompt(lines []string) string {
	var sb strings.Builder
	sb.WriteString("Here are the confirmed booking details extracted from a travel document:\n\n")
	for _, l := range lines {
		sb.WriteString("• ")
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	sb.WriteString("\nPlease generate a complete, day-by-day travel itinerary based on these bookings.\n")
	sb.WriteString("Include practical travel advice, local tips, and logistics at each stage of the journey.")
	return sb.String()
}

// bookingContext selects the populated fields relevant to the booking type.
func bookingContext(b Booking, passportCountry string) []string {
	var parts []string

	if f, ok := b.Flight(); ok {
		parts = append(parts, strings.TrimSpace(fmt.Sprintf("Flight: %s %s", deref(f.Airline), deref(f.FlightNumber))))
		if dep, arr := deref(f.Departure.City), deref(f.Arrival.City); dep != "" && arr != "" {
			parts = append(parts, fmt.Sprintf("Route: %s (%s) → %s (%s)", dep, orDash(f.Departure.IATA), arr, orDash(f.Arrival.IATA)))
		}
		if d := deref(f.Departure.Date); d != "" {
			parts = append(parts, fmt.Sprintf("Departure: %s at %s", d, orDefault(f.Departure.Time, "TBD")))
		}
		if d := deref(f.Arrival.Date); d != "" {
			parts = append(parts, fmt.Sprintf("Arrival: %s at %s", d, orDefault(f.Arrival.Time, "TBD")))
		}
		if seat := deref(f.Seat); seat != "" {
			parts = append(parts, fmt.Sprintf("Seat: %s (%s)", seat, orDefault(f.Class, "Economy")))
		}
		if bag := deref(f.BaggageAllowance); bag != "" {
			parts = append(parts, "Baggage: "+bag)
		}
		if len(f.Layovers) > 0 {
			stops := make([]string, 0, len(f.Layovers))
			for _, l := range f.Layovers {
				stops = append(stops, fmt.Sprintf("%s (%s)", orDefault(nonEmpty(l.City, l.IATA), "Unknown"), orDefault(l.Duration, "duration unknown")))
			}
			parts = append(parts, "Layovers: "+strings.Join(stops, ", "))
		}
		if passportCountry != "" {
			parts = append(parts, "Traveller's passport: "+passportCountry)
		}
	}

	if h, ok := b.Hotel(); ok {
		parts = append(parts, "Hotel: "+orDefault(h.Name, "Unknown"))
		parts = appendIf(parts, "Check-in: ", h.CheckIn)
		parts = appendIf(parts, "Check-out: ", h.CheckOut)
		parts = appendIf(parts, "Room: ", h.RoomType)
		parts = appendIf(parts, "Location: ", h.Address)
	}

	if c, ok := b.CarRental(); ok {
		parts = append(parts, "Car Rental: "+orDefault(c.Company, "Unknown"))
		if d := deref(c.PickupDate); d != "" {
			parts = append(parts, fmt.Sprintf("Pick-up: %s at %s", d, orDefault(c.PickupLocation, "TBD")))
		}
		parts = appendIf(parts, "Return: ", c.ReturnDate)
	}

	if t, ok := b.Tour(); ok {
		parts = append(parts, "Tour: "+orDefault(t.Name, "Unknown"))
		parts = appendIf(parts, "Starts: ", t.StartDate)
		parts = appendIf(parts, "Ends: ", t.EndDate)
		if len(t.Inclusions) > 0 {
			parts = append(parts, "Inclusions: "+strings.Join(t.Inclusions, ", "))
		}
	}

	ref := b.Reference()
	if ref == "" {
		ref = "N/A"
	}
	parts = append(parts, "Booking reference: "+ref)
	parts = appendIf(parts, "Passenger: ", b.PassengerName)
	if b.Summary != "" {
		parts = append(parts, "Booking summary: "+b.Summary)
	}
	return parts
}

// transferHint asks the maps backend how long the ride from the arrival airport
// into the arrival city takes. Any failure just drops the hint.
func (s *Synthesizer) transferHint(ctx context.Context, b Booking) string {
	if s.transfer == nil {
		return ""
	}
	f, ok := b.Flight()
	if !ok {
		return ""
	}
	city := deref(f.Arrival.City)
	airport := firstOf(f.Arrival.Airport, f.Arrival.IATA)
	if city == "" || airport == "" {
		return ""
	}
	if iata := deref(f.Arrival.IATA); iata != "" && airport != iata {
		airport = fmt.Sprintf("%s (%s)", airport, iata)
	}

	ctx, cancel := context.WithTimeout(ctx, transferTimeout)
	defer cancel()
	d, dist, err := s.transfer.GetTravelEstimate(ctx, airport, city+" city centre")
	if err != nil {
		logger.Printf("transfer estimate %s -> %s skipped: %v", airport, city, err)
		return ""
	}
	return fmt.Sprintf("Airport transfer estimate: about %d min by road (%s) from %s to central %s",
		int(d.Round(time.Minute).Minutes()), dist, airport, city)
}

func appendIf(parts []string, label string, v *string) []string {
	if s := deref(v); s != "" {
		return append(parts, label+s)
	}
	return parts
}

func orDefault(v *string, def string) string {
	if s := deref(v); s != "" {
		return s
	}
	return def
}

func orDash(v *string) string { return orDefault(v, "—") }

func nonEmpty(vals ...*string) *string {
	for _, v := range vals {
		if deref(v) != "" {
			return v
		}
	}
	return nil
}
