package warroom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	serpAPIEndpoint = "https://serpapi.com/search.json"
	advisoryTimeout = 15 * time.Second
	maxAdvisories   = 5
)

// AdvisorySource returns travel advisory headlines for a destination.
// An empty list means nothing was found; failures become an explanatory line.
type AdvisorySource interface {
	Advisories(ctx context.Context, destination string) []string
}

// SerpAdvisories searches Google News through SerpAPI.
type SerpAdvisories struct {
	key        string
	endpoint   string
	httpClient *http.Client
	now        func() time.Time
}

// NewSerpAdvisories creates an advisory source. An empty key serves a placeholder line.
func NewSerpAdvisories(key string) *SerpAdvisories {
	return &SerpAdvisories{
		key:        key,
		endpoint:   serpAPIEndpoint,
		httpClient: &http.Client{Timeout: advisoryTimeout},
		now:        time.Now,
	}
}

type serpResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

type serpNewsResponse struct {
	NewsResults    []serpResult `json:"news_results"`
	OrganicResults []serpResult `json:"organic_results"`
	Error          string       `json:"error,omitempty"`
}

// Advisories implements AdvisorySource.
func (s *SerpAdvisories) Advisories(ctx context.Context, destination string) []string {
	if s.key == "" {
		logger.Printf("WARNING: SerpAPI key not set, returning placeholder advisories")
		return []string{destination + ": No disruptions reported. Check official government travel advisories."}
	}

	logger.Printf("fetching travel advisories for %s", destination)
	results, err := s.search(ctx, destination)
	if err != nil {
		logger.Printf("SerpAPI advisory error: %v", err)
		return []string{fmt.Sprintf("Unable to fetch advisories for %s at this time.", destination)}
	}
	if len(results) == 0 {
		return []string{fmt.Sprintf("No current advisories found for %s.", destination)}
	}

	out := make([]string, 0, maxAdvisories)
	for _, r := range results {
		if len(out) == maxAdvisories {
			break
		}
		switch {
		case strings.TrimSpace(r.Title) != "":
			out = append(out, strings.TrimSpace(r.Title))
		case strings.TrimSpace(r.Snippet) != "":
			out = append(out, strings.TrimSpace(r.Snippet))
		default:
			out = append(out, "Advisory")
		}
	}
	return out
}

func (s *SerpAdvisories) search(ctx context.Context, destination string) ([]serpResult, error) {
	q := url.Values{}
	q.Set("engine", "google")
	q.Set("q", fmt.Sprintf("%s travel advisory alert %s", destination, s.now().Format("January 2006")))
	q.Set("api_key", s.key)
	q.Set("num", fmt.Sprint(maxAdvisories))
	q.Set("tbm", "nws")

	ctx, cancel := context.WithTimeout(ctx, advisoryTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("serpapi: build request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("serpapi: read response: %w", err)
	}
	var sr serpNewsResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("serpapi: unmarshal response (status %d): %w", resp.StatusCode, err)
	}
	if sr.Error != "" {
		return nil, fmt.Errorf("serpapi: api error: %s", sr.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi: status %d", resp.StatusCode)
	}
	if len(sr.NewsResults) > 0 {
		return sr.NewsResults, nil
	}
	return sr.OrganicResults, nil
}
