package warroom

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"roamgenie/internal/metrics"
)

const (
	aviationStackEndpoint = "http://api.aviationstack.com/v1/flights"
	statusTimeout         = 10 * time.Second

	// isoMillis matches the timestamps AviationStack returns.
	isoMillis = "2006-01-02T15:04:05.000Z07:00"
)

var logger = log.New(log.Writer(), "[warroom] ", log.LstdFlags)

// StatusSource returns the live status of a flight. It never fails: when the
// backend cannot answer, a mock record flagged IsMock is returned instead.
type StatusSource interface {
	FlightStatus(ctx context.Context, flightIATA string) FlightStatus
}

// AviationStack looks up flights on the AviationStack REST API.
type AviationStack struct {
	key        string
	endpoint   string
	httpClient *http.Client
	now        func() time.Time
}

// NewAviationStack creates a status source. An empty key serves mock data only.
func NewAviationStack(key string) *AviationStack {
	return &AviationStack{
		key:        key,
		endpoint:   aviationStackEndpoint,
		httpClient: &http.Client{Timeout: statusTimeout},
		now:        time.Now,
	}
}

type aviationStackResponse struct {
	Data  []aviationStackFlight `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type aviationStackFlight struct {
	FlightStatus string                    `json:"flight_status"`
	Departure    aviationStackEndpointJSON `json:"departure"`
	Arrival      aviationStackEndpointJSON `json:"arrival"`
	Airline      struct {
		Name string `json:"name"`
	} `json:"airline"`
	Flight struct {
		IATA string `json:"iata"`
	} `json:"flight"`
}

type aviationStackEndpointJSON struct {
	Airport   string  `json:"airport"`
	IATA      string  `json:"iata"`
	Scheduled *string `json:"scheduled"`
	Estimated *string `json:"estimated"`
	Delay     *int    `json:"delay"`
	Terminal  *string `json:"terminal"`
	Gate      *string `json:"gate"`
}

// FlightStatus implements StatusSource.
func (a *AviationStack) FlightStatus(ctx context.Context, flightIATA string) FlightStatus {
	if a.key == "" {
		logger.Printf("WARNING: AviationStack key not set, returning mock flight data for %s", flightIATA)
		return a.mock(flightIATA)
	}

	logger.Printf("fetching status for flight %s", flightIATA)
	fs, err := a.fetch(ctx, flightIATA)
	if err != nil {
		logger.Printf("AviationStack error for %s: %v", flightIATA, err)
		return a.mock(flightIATA)
	}
	return fs
}

func (a *AviationStack) mock(flightIATA string) FlightStatus {
	metrics.MockFlightStatus.Inc()
	return MockFlightStatus(flightIATA, a.now())
}

func (a *AviationStack) fetch(ctx context.Context, flightIATA string) (FlightStatus, error) {
	q := url.Values{}
	q.Set("access_key", a.key)
	q.Set("flight_iata", flightIATA)

	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return FlightStatus{}, fmt.Errorf("aviationstack: build request: %w", err)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return FlightStatus{}, fmt.Errorf("aviationstack: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FlightStatus{}, fmt.Errorf("aviationstack: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return FlightStatus{}, fmt.Errorf("aviationstack: status %d", resp.StatusCode)
	}

	var ar aviationStackResponse
	if err := json.Unmarshal(body, &ar); err != nil {
		return FlightStatus{}, fmt.Errorf("aviationstack: unmarshal response: %w", err)
	}
	if ar.Error != nil {
		return FlightStatus{}, fmt.Errorf("aviationstack: api error %s: %s", ar.Error.Code, ar.Error.Message)
	}
	if len(ar.Data) == 0 {
		return FlightStatus{}, fmt.Errorf("aviationstack: no flight found for %s", flightIATA)
	}

	f := ar.Data[0]
	return FlightStatus{
		FlightIATA: orNA(f.Flight.IATA, "N/A"),
		Airline:    orNA(f.Airline.Name, "Unknown"),
		Status:     orNA(f.FlightStatus, "Unknown"),
		Departure:  f.Departure.normalize(),
		Arrival:    f.Arrival.normalize(),
	}, nil
}

func (e aviationStackEndpointJSON) normalize() Endpoint {
	out := Endpoint{
		Airport:   orNA(e.Airport, "N/A"),
		IATA:      orNA(e.IATA, "N/A"),
		Scheduled: e.Scheduled,
		Estimated: e.Estimated,
		Terminal:  e.Terminal,
		Gate:      e.Gate,
	}
	if e.Delay != nil && *e.Delay > 0 {
		out.Delay = *e.Delay
	}
	return out
}

func orNA(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}

// MockFlightStatus synthesizes a BOM -> DEL record departing three hours after now.
// The delay is derived from the flight code so repeated lookups agree.
func MockFlightStatus(flightIATA string, now time.Time) FlightStatus {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToUpper(flightIATA)))
	sum := h.Sum32()

	delay := 0
	if sum%2 == 0 {
		delay = 10 + int(sum/2%55)
	}
	status := "active"
	if delay > 0 {
		status = "delayed"
	}

	dep := now.UTC().Add(3 * time.Hour)
	arr := dep.Add(2*time.Hour + 15*time.Minute)
	slip := time.Duration(delay) * time.Minute

	return FlightStatus{
		FlightIATA: flightIATA,
		Airline:    "Demo Airline",
		Status:     status,
		Departure: Endpoint{
			Airport:   "Chhatrapati Shivaji Maharaj International Airport",
			IATA:      "BOM",
			Scheduled: timestamp(dep),
			Estimated: timestamp(dep.Add(slip)),
			Delay:     delay,
			Terminal:  str("T2"),
			Gate:      str("A12"),
		},
		Arrival: Endpoint{
			Airport:   "Indira Gandhi International Airport",
			IATA:      "DEL",
			Scheduled: timestamp(arr),
			Estimated: timestamp(arr.Add(slip)),
			Delay:     delay,
			Terminal:  str("T3"),
			Gate:      str("B7"),
		},
		IsMock: true,
	}
}

func timestamp(t time.Time) *string { return str(t.Format(isoMillis)) }

func str(s string) *string { return &s }
