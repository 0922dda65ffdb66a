package scanner

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"roamgenie/internal/ai"
	"roamgenie/internal/metrics"
)

// maxDegradedSummary bounds the raw text kept on a degraded booking.
const maxDegradedSummary = 2000

const bookingSchema = `{
  "type": "flight" | "hotel" | "car_rental" | "tour" | "unknown",
  "bookingReference": string | null,
  "pnr": string | null,
  "airline": string | null,
  "flightNumber": string | null,
  "departure": { "airport": string | null, "iata": string | null, "city": string | null, "terminal": string | null, "time": string | null, "date": string | null },
  "arrival": { "airport": string | null, "iata": string | null, "city": string | null, "terminal": string | null, "time": string | null, "date": string | null },
  "seat": string | null,
  "class": string | null,
  "baggageAllowance": string | null,
  "layovers": [{ "city": string, "iata": string, "duration": string }],
  "passengerName": string | null,
  "hotel": { "name": string | null, "checkIn": string | null, "checkOut": string | null, "roomType": string | null, "address": string | null },
  "carRental": { "company": string | null, "pickupDate": string | null, "returnDate": string | null, "pickupLocation": string | null },
  "tour": { "name": string | null, "startDate": string | null, "endDate": string | null, "inclusions": string[] },
  "totalPrice": string | null,
  "currency": string | null,
  "summary": string
}`

var logger = log.New(log.Writer(), "[scanner] ", log.LstdFlags)

// Parser turns raw confirmation text into a Booking.
type Parser struct {
	gen ai.Generator
	now func() time.Time
}

// NewParser creates a Parser backed by gen.
func NewParser(gen ai.Generator) *Parser {
	return &Parser{gen: gen, now: time.Now}
}

// ParseBooking extracts a Booking from rawText. Malformed model output never fails:
// it yields a degraded booking with ParseError set. Only upstream errors are returned.
// Callers must reject empty input before calling.
func (p *Parser) ParseBooking(ctx context.Context, rawText string) (Booking, error) {
	res, err := ai.GenerateJSON(ctx, p.gen, bookingSystemPrompt(p.now()),
		"Extract all booking details from the following confirmation text:\n\n"+rawText)
	if err != nil {
		return Booking{}, fmt.Errorf("parse booking: %w", err)
	}

	if res.Unparsed() {
		logger.Printf("WARNING: model returned non-JSON booking output (%d chars)", len(res.Raw))
		metrics.DegradedOutputs.WithLabelValues("booking").Inc()
		return DegradedBooking(degradedSummary(res.Raw, rawText)), nil
	}

	b, err := DecodeBooking(res.Data)
	if err != nil {
		logger.Printf("WARNING: %v", err)
		metrics.DegradedOutputs.WithLabelValues("booking").Inc()
		return DegradedBooking(degradedSummary(res.Raw, rawText)), nil
	}
	return b, nil
}

func bookingSystemPrompt(now time.Time) string {
	return strings.Join([]string{
		"You are a world-class travel document parser.",
		"Your job is to extract every piece of booking information from the supplied text.",
		"Return ONLY valid JSON, no markdown fences, no prose.",
		"Use null for fields you cannot find.",
		"Populate only the sub-object that matches \"type\"; set the others to null.",
		"Resolve relative dates against the current date: " + now.Format("2006-01-02") + ".",
		"The JSON schema must be:",
		bookingSchema,
	}, "\n")
}

// degradedSummary keeps the model text when there is any, else echoes the input.
func degradedSummary(raw, input string) string {
	if s := truncateRunes(strings.TrimSpace(raw), maxDegradedSummary); s != "" {
		return s
	}
	if s := truncateRunes(strings.TrimSpace(input), maxDegradedSummary); s != "" {
		return s
	}
	return "No booking details could be extracted."
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
