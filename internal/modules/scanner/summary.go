package scanner

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// SnippetLimit is the number of itinerary characters kept in a summary.
	SnippetLimit = 900
	// TruncationNotice follows a cut itinerary snippet.
	TruncationNotice = "…\n\n_(Full itinerary available in the app)_"

	summaryHeader   = "✈️ *RoamGenie — Trip DNA Scanner*"
	summaryFooter   = "_Powered by RoamGenie AI 🌍_"
	summaryDivider  = "━━━━━━━━━━━━━━━━━━━━━"
	degradedNotice  = "⚠️ Could not fully parse your booking. Raw extract saved to itinerary."
	transitCaution  = "⚠️ *Transit Visa:* Please verify transit visa requirements for your layover airports."
	transitReassure = "✅ *Transit Visa:* You likely do not need a transit visa (verify before travel)."
)

// transitExempt lists passports treated as likely visa-exempt for airside transit.
// It is a hint only; the message always tells the traveller to verify.
var transitExempt = []string{
	"India", "Singapore", "Japan", "United Kingdom", "United States",
	"Germany", "Australia", "Canada", "France",
}

var headingMarker = regexp.MustCompile(`#{1,3} `)

// LikelyTransitExempt reports whether passportCountry is on the transit allow-list.
func LikelyTransitExempt(passportCountry string) bool {
	c := strings.TrimSpace(passportCountry)
	for _, v := range transitExempt {
		if strings.EqualFold(v, c) {
			return true
		}
	}
	return false
}

// BuildSummary renders a booking and its itinerary as a WhatsApp-friendly message.
// It is deterministic and never calls the model.
func BuildSummary(b Booking, itinerary, passportCountry string) string {
	lines := []string{summaryHeader, ""}

	if b.ParseError {
		lines = append(lines, degradedNotice)
		return strings.Join(lines, "\n")
	}

	typ := b.Type
	if typ == "" {
		typ = TypeUnknown
	}
	lines = append(lines, "📋 *Booking Type:* "+strings.ToUpper(string(typ)))
	if ref := b.Reference(); ref != "" {
		lines = append(lines, "🔖 *Reference:* "+ref)
	}

	if f, ok := b.Flight(); ok {
		lines = append(lines, flightLines(f, passportCountry)...)
	}

	if h, ok := b.Hotel(); ok && deref(h.Name) != "" {
		lines = append(lines, "🏨 *Hotel:* "+*h.Name)
		lines = appendIf(lines, "📅 *Check-in:* ", h.CheckIn)
		lines = appendIf(lines, "📅 *Check-out:* ", h.CheckOut)
		lines = appendIf(lines, "🛏 *Room:* ", h.RoomType)
	}

	if c, ok := b.CarRental(); ok {
		lines = append(lines, "🚗 *Car Rental:* "+orDefault(c.Company, "N/A"))
		lines = appendIf(lines, "📅 *Pick-up:* ", c.PickupDate)
		lines = appendIf(lines, "📅 *Return:* ", c.ReturnDate)
	}

	if t, ok := b.Tour(); ok && deref(t.Name) != "" {
		lines = append(lines, "🗺️ *Tour:* "+*t.Name)
		lines = appendIf(lines, "📅 *Starts:* ", t.StartDate)
		lines = appendIf(lines, "📅 *Ends:* ", t.EndDate)
	}

	if price := deref(b.TotalPrice); price != "" {
		lines = append(lines, "", strings.TrimSpace(fmt.Sprintf("💰 *Total:* %s %s", deref(b.Currency), price)))
	}

	if snippet := itinerarySnippet(itinerary); snippet != "" {
		lines = append(lines, "", summaryDivider, "🗓️ *Your AI-Generated Itinerary*", summaryDivider, "", snippet)
	}

	lines = append(lines, "", summaryFooter)
	return strings.Join(lines, "\n")
}

func flightLines(f *FlightDetails, passportCountry string) []string {
	var lines []string
	if f.Airline != nil || f.FlightNumber != nil {
		lines = append(lines, strings.TrimSpace(fmt.Sprintf("🛫 *Flight:* %s %s", deref(f.Airline), deref(f.FlightNumber))))
	}
	if dep, arr := deref(f.Departure.City), deref(f.Arrival.City); dep != "" && arr != "" {
		lines = append(lines, fmt.Sprintf("📍 *Route:* %s (%s) → %s (%s)", dep, orDash(f.Departure.IATA), arr, orDash(f.Arrival.IATA)))
	}
	if d, t := deref(f.Departure.Date), deref(f.Departure.Time); d != "" && t != "" {
		lines = append(lines, fmt.Sprintf("🕐 *Departure:* %s at %s", d, t))
	}
	if d, t := deref(f.Arrival.Date), deref(f.Arrival.Time); d != "" && t != "" {
		lines = append(lines, fmt.Sprintf("🕓 *Arrival:* %s at %s", d, t))
	}
	lines = appendIf(lines, "💺 *Seat:* ", f.Seat)
	lines = appendIf(lines, "🧳 *Baggage:* ", f.BaggageAllowance)

	if len(f.Layovers) == 0 {
		return lines
	}
	lines = append(lines, "", "🔄 *Layovers:*")
	for _, l := range f.Layovers {
		lines = append(lines, fmt.Sprintf("  • %s — %s", orDefault(nonEmpty(l.City, l.IATA), "Unknown"), orDefault(l.Duration, "duration unknown")))
	}

	// Without a passport country there is nothing to judge; the line is omitted.
	if strings.TrimSpace(passportCountry) != "" {
		lines = append(lines, "")
		if LikelyTransitExempt(passportCountry) {
			lines = append(lines, transitReassure)
		} else {
			lines = append(lines, transitCaution)
		}
	}
	return lines
}

// itinerarySnippet downgrades Markdown for chat apps and caps the length at SnippetLimit runes.
func itinerarySnippet(itinerary string) string {
	clean := strings.TrimSpace(itinerary)
	if clean == "" {
		return ""
	}
	clean = strings.ReplaceAll(clean, "**", "*")
	clean = headingMarker.ReplaceAllString(clean, "*📌 ")
	clean = strings.TrimSpace(clean)

	r := []rune(clean)
	if len(r) <= SnippetLimit {
		return clean
	}
	return string(r[:SnippetLimit]) + TruncationNotice
}
