package warroom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"roamgenie/internal/ai"
	"roamgenie/internal/metrics"
)

// WhatsAppAlertLimit bounds IntelBrief.WhatsAppAlert in runes.
const WhatsAppAlertLimit = 200

const (
	fallbackHeadline = "Status Update Available"
	fallbackAction   = "Check with your airline for the latest updates."
)

var briefSystemPrompt = strings.Join([]string{
	"You are RoamGenie's real-time travel intelligence officer.",
	"Assess the situation and return ONLY valid JSON (no markdown fences).",
	"Schema:",
	"{",
	`  "alertLevel": "green" | "amber" | "red",`,
	`  "headline": string,`,
	`  "summary": string,`,
	`  "connectionViable": boolean | null,`,
	`  "recommendedActions": string[],`,
	`  "whatsappAlert": string`,
	"}",
	`"whatsappAlert" must be a short, human-friendly WhatsApp message (max 200 chars).`,
	`"alertLevel" green = all good, amber = worth watching, red = immediate action needed.`,
	`Use null for "connectionViable" when there is not enough information to judge.`,
}, "\n")

var errMalformedBrief = errors.New("malformed intel brief")

// BuildIntelBrief asks the model for a disruption assessment. It never fails:
// unparseable or invalid output, and upstream failures, yield FallbackBrief.
func BuildIntelBrief(ctx context.Context, g ai.Generator, fs FlightStatus, advisories []string, bc BriefContext) IntelBrief {
	logger.Printf("building intelligence brief for %s", fs.FlightIATA)

	res, err := ai.GenerateJSON(ctx, g, briefSystemPrompt, briefUserPrompt(fs, advisories, bc))
	if err != nil {
		logger.Printf("WARNING: intel brief generation failed, using fallback: %v", err)
		metrics.DegradedOutputs.WithLabelValues("intel_brief").Inc()
		return FallbackBrief(fs, "")
	}
	if res.Unparsed() {
		logger.Printf("WARNING: model JSON parse failed, using fallback")
		metrics.DegradedOutputs.WithLabelValues("intel_brief").Inc()
		return FallbackBrief(fs, res.Raw)
	}

	brief, err := decodeBrief(res.Data, fs)
	if err != nil {
		logger.Printf("WARNING: %v, using fallback", err)
		metrics.DegradedOutputs.WithLabelValues("intel_brief").Inc()
		return FallbackBrief(fs, res.Raw)
	}
	return brief
}

func briefUserPrompt(fs FlightStatus, advisories []string, bc BriefContext) string {
	layover := "unknown"
	if bc.LayoverMinutes != nil {
		layover = strconv.Itoa(*bc.LayoverMinutes)
	}
	dest := bc.Destination
	if strings.TrimSpace(dest) == "" {
		dest = "unknown"
	}

	numbered := make([]string, len(advisories))
	for i, a := range advisories {
		numbered[i] = fmt.Sprintf("%d. %s", i+1, a)
	}

	return strings.Join([]string{
		fmt.Sprintf("Flight: %s | Status: %s", fs.FlightIATA, fs.Status),
		fmt.Sprintf("Departure delay: %d minutes", fs.Departure.Delay),
		fmt.Sprintf("Layover available: %s minutes", layover),
		"Destination: " + dest,
		"Travel advisories:\n" + strings.Join(numbered, "\n"),
		"Assess if the connection is viable, what the traveler should do, and whether a WhatsApp alert is warranted.",
	}, "\n")
}

type wireBrief struct {
	AlertLevel         *string  `json:"alertLevel"`
	Headline           *string  `json:"headline"`
	Summary            *string  `json:"summary"`
	ConnectionViable   *bool    `json:"connectionViable"`
	RecommendedActions []string `json:"recommendedActions"`
	WhatsAppAlert      *string  `json:"whatsappAlert"`
}

// decodeBrief validates the model JSON. A missing or unknown alert level is malformed;
// missing text fields are filled from the flight status.
func decodeBrief(data []byte, fs FlightStatus) (IntelBrief, error) {
	var w wireBrief
	if err := json.Unmarshal(data, &w); err != nil {
		return IntelBrief{}, fmt.Errorf("%w: %v", errMalformedBrief, err)
	}
	if w.AlertLevel == nil {
		return IntelBrief{}, fmt.Errorf("%w: missing alertLevel", errMalformedBrief)
	}
	level := AlertLevel(strings.ToLower(strings.TrimSpace(*w.AlertLevel)))
	if !level.Valid() {
		return IntelBrief{}, fmt.Errorf("%w: unsupported alertLevel %q", errMalformedBrief, *w.AlertLevel)
	}

	b := IntelBrief{
		AlertLevel:         level,
		Headline:           trimmed(w.Headline),
		Summary:            trimmed(w.Summary),
		ConnectionViable:   w.ConnectionViable,
		RecommendedActions: make([]string, 0, len(w.RecommendedActions)),
		WhatsAppAlert:      trimmed(w.WhatsAppAlert),
	}
	for _, a := range w.RecommendedActions {
		if a = strings.TrimSpace(a); a != "" {
			b.RecommendedActions = append(b.RecommendedActions, a)
		}
	}
	if b.Headline == "" {
		b.Headline = fallbackHeadline
	}
	if b.Summary == "" {
		b.Summary = statusLine(fs)
	}
	if b.WhatsAppAlert == "" {
		b.WhatsAppAlert = fallbackAlert(fs)
	}
	b.WhatsAppAlert = truncateRunes(b.WhatsAppAlert, WhatsAppAlertLimit)
	return b, nil
}

// FallbackBrief is the cautious brief used whenever the model cannot be trusted.
// It is always amber and builds the alert from the flight status alone.
func FallbackBrief(fs FlightStatus, raw string) IntelBrief {
	summary := strings.TrimSpace(raw)
	if summary == "" {
		summary = statusLine(fs)
	}
	return IntelBrief{
		AlertLevel:         AlertAmber,
		Headline:           fallbackHeadline,
		Summary:            summary,
		ConnectionViable:   nil,
		RecommendedActions: []string{fallbackAction},
		WhatsAppAlert:      truncateRunes(fallbackAlert(fs), WhatsAppAlertLimit),
	}
}

func fallbackAlert(fs FlightStatus) string {
	return fmt.Sprintf("⚠️ War Room update for %s: %s. Check app for details.", fs.FlightIATA, fs.Status)
}

func statusLine(fs FlightStatus) string {
	return fmt.Sprintf("Flight %s is %s with a departure delay of %d minutes.", fs.FlightIATA, fs.Status, fs.Departure.Delay)
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
