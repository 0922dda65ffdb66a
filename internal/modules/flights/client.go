// README: SerpAPI google_flights client. Round-trip search in INR, cheapest options rendered as cards.
package flights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	serpEndpoint   = "https://serpapi.com/search.json"
	searchTimeout  = 20 * time.Second
	searchCurrency = "INR"

	// CheapestCount is how many options a plan shows.
	CheapestCount = 3
)

var logger = log.New(log.Writer(), "[flights] ", log.LstdFlags)

// ErrNotConfigured means no SerpAPI key is set.
var ErrNotConfigured = errors.New("flight search not configured")

// Query is a round-trip search.
type Query struct {
	From     string // departure IATA
	To       string // arrival IATA
	Outbound string // YYYY-MM-DD
	Return   string // YYYY-MM-DD
}

// Airport is one end of a flight segment.
type Airport struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	Time string `json:"time"`
}

// Segment is one leg of an itinerary option.
type Segment struct {
	DepartureAirport Airport `json:"departure_airport"`
	ArrivalAirport   Airport `json:"arrival_airport"`
	Duration         int     `json:"duration"`
	Airline          string  `json:"airline"`
	AirlineLogo      string  `json:"airline_logo"`
	FlightNumber     string  `json:"flight_number"`
	TravelClass      string  `json:"travel_class"`
}

// Option is one priced itinerary from the search results.
type Option struct {
	Flights       []Segment `json:"flights"`
	TotalDuration *int      `json:"total_duration"`
	Price         *int      `json:"price"`
	Type          string    `json:"type"`
	Airline       string    `json:"airline"`
	AirlineLogo   string    `json:"airline_logo"`
	Link          string    `json:"link"`
}

type searchResponse struct {
	BestFlights  []Option `json:"best_flights"`
	OtherFlights []Option `json:"other_flights"`
	Error        string   `json:"error"`
}

// Searcher finds flight options for a round trip.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Option, error)
}

// Client queries the SerpAPI Google Flights engine.
type Client struct {
	key        string
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a Client. Search returns ErrNotConfigured when key is empty.
func NewClient(key string) *Client {
	return &Client{
		key:        key,
		endpoint:   serpEndpoint,
		httpClient: &http.Client{Timeout: searchTimeout},
	}
}

// Search returns the "best flights" list for the route.
func (c *Client) Search(ctx context.Context, q Query) ([]Option, error) {
	if c.key == "" {
		return nil, ErrNotConfigured
	}
	from, to := strings.ToUpper(strings.TrimSpace(q.From)), strings.ToUpper(strings.TrimSpace(q.To))
	logger.Printf("searching flights %s -> %s on %s", from, to, q.Outbound)

	params := url.Values{}
	params.Set("engine", "google_flights")
	params.Set("departure_id", from)
	params.Set("arrival_id", to)
	params.Set("outbound_date", q.Outbound)
	params.Set("return_date", q.Return)
	params.Set("currency", searchCurrency)
	params.Set("hl", "en")
	params.Set("api_key", c.key)

	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("serpapi flights: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi flights: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("serpapi flights: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi flights: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("serpapi flights: unmarshal response: %w", err)
	}
	if sr.Error != "" {
		return nil, fmt.Errorf("serpapi flights: %s", sr.Error)
	}
	return sr.BestFlights, nil
}

// Cheapest returns up to n options ordered by ascending price. Options without
// a price sort last; ties keep their original order.
func Cheapest(options []Option, n int) []Option {
	out := make([]Option, len(options))
	copy(out, options)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Price, out[j].Price
		switch {
		case pi == nil:
			return false
		case pj == nil:
			return true
		default:
			return *pi < *pj
		}
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Card is a flight option formatted for display.
type Card struct {
	AirlineLogo   string `json:"airlineLogo"`
	Airline       string `json:"airline"`
	Price         *int   `json:"price"`
	TotalDuration *int   `json:"totalDuration"`
	DepartureTime string `json:"departureTime"`
	ArrivalTime   string `json:"arrivalTime"`
	BookingLink   string `json:"bookingLink"`
}

// ToCard formats an option. from and to build the fallback booking link.
func ToCard(o Option, from, to string) Card {
	c := Card{
		AirlineLogo:   o.AirlineLogo,
		Airline:       o.Airline,
		Price:         o.Price,
		TotalDuration: o.TotalDuration,
		DepartureTime: "N/A",
		ArrivalTime:   "N/A",
		BookingLink:   o.Link,
	}
	if len(o.Flights) > 0 {
		first, last := o.Flights[0], o.Flights[len(o.Flights)-1]
		c.DepartureTime = FormatDatetime(first.DepartureAirport.Time)
		c.ArrivalTime = FormatDatetime(last.ArrivalAirport.Time)
		if c.Airline == "" {
			c.Airline = first.Airline
		}
		if c.AirlineLogo == "" {
			c.AirlineLogo = first.AirlineLogo
		}
	}
	if c.Airline == "" {
		c.Airline = "Unknown Airline"
	}
	if c.BookingLink == "" {
		c.BookingLink = "https://www.google.com/flights?q=" + url.QueryEscape(from) + "+" + url.QueryEscape(to)
	}
	return c
}

// FormatDatetime renders "2006-01-02 15:04" as "Jan 02, 2006, 03:04 PM".
// Anything unparseable comes back as "N/A".
func FormatDatetime(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return "N/A"
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("Jan 02, 2006, 03:04 PM")
		}
	}
	return "N/A"
}
