// README: Bench cases for the RoamGenie API: health, route contracts, input rejection, redis state, throughput.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	StatusPass    = "PASS"
	StatusFail    = "FAIL"
	StatusPending = "PENDING"
	StatusSkip    = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name  string
	Focus string
	Run   func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 90 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.RedisURL != "" {
		if opts, err := redis.ParseURL(r.cfg.RedisURL); err == nil {
			r.redis = redis.NewClient(opts)
		} else {
			fmt.Printf("invalid redis url: %v\n", err)
		}
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	cases := []TestCase{
		{
			Name:  "Env: API health",
			Focus: "GET /health answers ok",
			Run: func(ctx context.Context, r *Runner) Result {
				var body struct {
					Status string `json:"status"`
				}
				start := time.Now()
				code, err := r.getJSON(ctx, base+"/health", &body)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				if code != http.StatusOK || body.Status != "ok" {
					return Result{Status: StatusFail, Note: fmt.Sprintf("status=%d body.status=%q", code, body.Status)}
				}
				return Result{Status: StatusPass, Latency: time.Since(start)}
			},
		},
		{
			Name:  "Env: Redis connect",
			Focus: "Rate limiter and visa dataset share redis",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: StatusSkip, Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass}
			},
		},
		httpCaseMethod("Routing: unknown route -> 404", http.MethodGet, base+"/api/does-not-exist", nil, []int{404}, nil),

		// Scanner
		httpCase("Scanner: empty text -> 400", base+"/api/scanner/parse", map[string]any{"text": "  "}, []int{400}, []int{404}),
		httpCase("Scanner: image without file -> 400", base+"/api/scanner/parse-image", nil, []int{400}, []int{404}),

		// War room
		httpCase("WarRoom: monitor without flight -> 400", base+"/api/warroom/monitor", map[string]any{"destination": "Dubai"}, []int{400}, []int{404}),
		httpCaseMethod("WarRoom: flight status", http.MethodGet, base+"/api/warroom/flight?iata=EK502", nil, []int{200}, []int{404}),
		httpCaseMethod("WarRoom: advisories without destination -> 400", http.MethodGet, base+"/api/warroom/advisories", nil, []int{400}, []int{404}),

		// Passport
		{
			Name:  "Passport: countries list loaded",
			Focus: "Visa dataset available (download, redis copy, or built-in table)",
			Run: func(ctx context.Context, r *Runner) Result {
				var body struct {
					Countries []string `json:"countries"`
				}
				start := time.Now()
				code, err := r.getJSON(ctx, base+"/api/passport/countries", &body)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				if code == http.StatusNotFound {
					return Result{Status: StatusPending, Note: "passport routes not registered"}
				}
				if code != http.StatusOK || len(body.Countries) == 0 {
					return Result{Status: StatusFail, Note: fmt.Sprintf("status=%d countries=%d", code, len(body.Countries))}
				}
				return Result{Status: StatusPass, Latency: time.Since(start), Note: fmt.Sprintf("countries=%d", len(body.Countries))}
			},
		},
		httpCase("Passport: visa-free lookup", base+"/api/passport/visa-free", map[string]any{"country": "India"}, []int{200}, []int{404}),
		httpCase("Passport: visa-free without country -> 400", base+"/api/passport/visa-free", map[string]any{}, []int{400}, []int{404}),
		{
			Name:  "Redis: visa dataset copy present",
			Focus: "First instance to download the dataset shares it",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: StatusSkip, Note: "redis not configured"}
				}
				n, err := r.redis.Exists(ctx, "roamgenie:passport:records").Result()
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				if n == 0 {
					return Result{Status: StatusPending, Note: "no shared copy (dataset may have come from the built-in table)"}
				}
				return Result{Status: StatusPass}
			},
		},

		// Travel
		httpCaseMethod("Travel: IATA map", http.MethodGet, base+"/api/travel/iata-map", nil, []int{200}, []int{404}),
		httpCase("Travel: plan missing fields -> 400", base+"/api/travel/plan", map[string]any{"source": "BOM"}, []int{400}, []int{404}),

		// Emergency
		httpCase("Emergency: non-Indian number -> 400", base+"/api/emergency/flight-cancellation", map[string]any{"whatsappNumber": "+14155238886"}, []int{400}, []int{404}),
		httpCase("IVR: non-Indian number -> 400", base+"/api/ivr/call", map[string]any{"toNumber": "12345"}, []int{400}, []int{404}),

		// Performance
		{
			Name:  "Perf: health throughput",
			Focus: "Middleware chain overhead",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, http.MethodGet, base+"/health", nil)
			},
		},
	}

	if r.cfg.WithAI {
		cases = append(cases,
			httpCase("AI: scanner text pipeline", base+"/api/scanner/parse", map[string]any{
				"text":            "Booking confirmed. Emirates EK502 BOM-DXB 2026-11-02 04:30, PNR X7K9Q2, passenger Asha Rao, seat 32A.",
				"passportCountry": "India",
			}, []int{200}, []int{404}),
			httpCase("AI: war-room monitor", base+"/api/warroom/monitor", map[string]any{
				"flightIata":     "EK502",
				"destination":    "Dubai",
				"layoverMinutes": 90,
			}, []int{200}, []int{404}),
		)
	} else {
		cases = append(cases, manualCase("AI: pipelines", "run with -with-ai to call the AI provider"))
	}
	return cases
}

func (r *Runner) getJSON(ctx context.Context, url string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode: %w", err)
	}
	return resp.StatusCode, nil
}

func httpCase(name, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	return httpCaseMethod(name, http.MethodPost, url, body, okStatuses, pendingStatuses)
}

func httpCaseMethod(name, method, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			var reader io.Reader
			if body != nil {
				b, _ := json.Marshal(body)
				reader = strings.NewReader(string(b))
			}
			req, _ := http.NewRequestWithContext(ctx, method, url, reader)
			if body != nil {
				req.Header.Set("Content-Type", "application/json")
			}
			start := time.Now()
			resp, err := r.httpc.Do(req)
			if err != nil {
				return Result{Status: StatusFail, Note: err.Error()}
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			latency := time.Since(start)

			note := fmt.Sprintf("status=%d", resp.StatusCode)
			switch {
			case contains(okStatuses, resp.StatusCode):
				return Result{Status: StatusPass, Latency: latency, Note: note}
			case contains(pendingStatuses, resp.StatusCode):
				return Result{Status: StatusPending, Latency: latency, Note: note}
			case resp.StatusCode == http.StatusTooManyRequests:
				return Result{Status: StatusPending, Latency: latency, Note: "rate limited"}
			}
			return Result{Status: StatusFail, Latency: latency, Note: note}
		},
	}
}

func manualCase(name, note string) TestCase {
	return TestCase{
		Name:  name,
		Focus: "Manual",
		Run: func(ctx context.Context, r *Runner) Result {
			return Result{Status: StatusSkip, Note: note}
		},
	}
}

func perfLoad(ctx context.Context, r *Runner, method, url string, payload any) Result {
	var b []byte
	if payload != nil {
		b, _ = json.Marshal(payload)
	}
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount, limited int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				var body io.Reader
				if b != nil {
					body = strings.NewReader(string(b))
				}
				req, _ := http.NewRequestWithContext(ctx, method, url, body)
				resp, err := r.httpc.Do(req)
				if err != nil {
					mu.Lock()
					errCount++
					mu.Unlock()
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				mu.Lock()
				count++
				if resp.StatusCode == http.StatusTooManyRequests {
					limited++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: StatusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: StatusPass, Note: fmt.Sprintf("rps=%.1f errors=%d rate_limited=%d", rps, errCount, limited)}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}
