// README: Visa requirement dataset with get-or-load caching (redis copy -> CSV download -> built-in table).
package passport

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKey        = "roamgenie:passport:records"
	downloadTimeout = 15 * time.Second
)

var logger = log.New(log.Writer(), "[passport] ", log.LstdFlags)

var visaFreeRequirement = regexp.MustCompile(`(?i)visa[\s-]?free|visa on arrival`)

// Record is one passport -> destination requirement row.
type Record struct {
	Passport    string `json:"passport"`
	Destination string `json:"destination"`
	Requirement string `json:"requirement"`
}

// VisaFree reports whether the requirement allows entry without a visa issued in advance.
// Numeric requirements are the allowed stay in days.
func (r Record) VisaFree() bool {
	if visaFreeRequirement.MatchString(r.Requirement) {
		return true
	}
	days, err := strconv.Atoi(strings.TrimSpace(r.Requirement))
	return err == nil && days > 0
}

// kvStore is the part of a redis client used to share the dataset between instances.
type kvStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Dataset loads the visa records once and serves them for the process lifetime.
type Dataset struct {
	urls       []string
	cache      kvStore
	cacheTTL   time.Duration
	httpClient *http.Client

	mu        sync.Mutex
	records   []Record
	passports []string
}

// NewDataset creates a lazily loaded dataset. rdb may be nil.
func NewDataset(urls []string, rdb *redis.Client, cacheTTL time.Duration) *Dataset {
	d := &Dataset{
		urls:       urls,
		cacheTTL:   cacheTTL,
		httpClient: &http.Client{Timeout: downloadTimeout},
	}
	if rdb != nil {
		d.cache = rdb
	}
	return d
}

// NewDatasetFromRecords returns a dataset that is already loaded.
func NewDatasetFromRecords(records []Record) *Dataset {
	return &Dataset{records: records}
}

// Records returns the dataset, loading it on first use. Loading never fails:
// when every source is unavailable the built-in table is used.
func (d *Dataset) Records(ctx context.Context) []Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.records != nil {
		return d.records
	}
	d.records = d.load(ctx)
	return d.records
}

func (d *Dataset) load(ctx context.Context) []Record {
	if recs, err := d.fromCache(ctx); err == nil && len(recs) > 0 {
		logger.Printf("loaded %d visa records from redis", len(recs))
		return recs
	} else if err != nil && !errors.Is(err, redis.Nil) {
		logger.Printf("WARNING: redis dataset read failed: %v", err)
	}

	for _, url := range d.urls {
		if strings.TrimSpace(url) == "" {
			continue
		}
		logger.Printf("fetching visa dataset from %s", url)
		recs, err := d.download(ctx, url)
		if err != nil {
			logger.Printf("WARNING: failed to load from %s: %v", url, err)
			continue
		}
		logger.Printf("loaded %d visa records", len(recs))
		d.toCache(ctx, recs)
		return recs
	}

	logger.Printf("WARNING: using built-in fallback visa dataset")
	return fallbackRecords()
}

func (d *Dataset) fromCache(ctx context.Context) ([]Record, error) {
	if d.cache == nil {
		return nil, nil
	}
	raw, err := d.cache.Get(ctx, cacheKey).Bytes()
	if err != nil {
		return nil, err
	}
	var recs []Record
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("decode cached dataset: %w", err)
	}
	return recs, nil
}

func (d *Dataset) toCache(ctx context.Context, recs []Record) {
	if d.cache == nil {
		return
	}
	raw, err := json.Marshal(recs)
	if err != nil {
		return
	}
	if err := d.cache.Set(ctx, cacheKey, raw, d.cacheTTL).Err(); err != nil {
		logger.Printf("WARNING: redis dataset write failed: %v", err)
	}
}

func (d *Dataset) download(ctx context.Context, url string) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return ParseCSV(resp.Body)
}

// ParseCSV reads a tidy passport-index CSV with Passport, Destination and
// Requirement columns in any order and letter case.
func ParseCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	pi, ok1 := col["passport"]
	di, ok2 := col["destination"]
	ri, ok3 := col["requirement"]
	if !ok1 || !ok2 || !ok3 {
		return nil, fmt.Errorf("missing columns in header %q", header)
	}

	var out []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(row) <= pi || len(row) <= di || len(row) <= ri {
			continue
		}
		rec := Record{
			Passport:    strings.TrimSpace(row[pi]),
			Destination: strings.TrimSpace(row[di]),
			Requirement: strings.TrimSpace(row[ri]),
		}
		if rec.Passport == "" && rec.Destination == "" {
			continue
		}
		out = append(out, rec)
	}
	if len(out) == 0 {
		return nil, errors.New("dataset is empty")
	}
	return out, nil
}

func fallbackRecords() []Record {
	var out []Record
	for passport, dests := range fallbackVisaFree {
		for _, dest := range dests {
			out = append(out, Record{Passport: passport, Destination: dest, Requirement: "visa free"})
		}
	}
	return out
}

// Passports returns every passport country in the dataset, sorted.
func (d *Dataset) Passports(ctx context.Context) []string {
	recs := d.Records(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.passports != nil {
		return d.passports
	}
	seen := map[string]bool{}
	out := []string{}
	for _, r := range recs {
		if r.Passport != "" && !seen[r.Passport] {
			seen[r.Passport] = true
			out = append(out, r.Passport)
		}
	}
	sort.Strings(out)
	d.passports = out
	return out
}

// VisaFreeResult lists the destinations open to one passport.
type VisaFreeResult struct {
	Countries       []string          `json:"visaFreeCountries"`
	RegionBreakdown map[string]int    `json:"regionBreakdown"`
	Flags           map[string]string `json:"flags"`
}

// VisaFree finds visa-free and visa-on-arrival destinations for a passport.
// An exact (case-insensitive) passport match wins; otherwise a substring match is tried.
func (d *Dataset) VisaFree(ctx context.Context, country string) VisaFreeResult {
	recs := d.Records(ctx)
	lower := strings.ToLower(strings.TrimSpace(country))

	match := func(exact bool) []string {
		var dests []string
		for _, r := range recs {
			p := strings.ToLower(strings.TrimSpace(r.Passport))
			if exact && p != lower || !exact && !strings.Contains(p, lower) {
				continue
			}
			if r.VisaFree() && r.Destination != "" {
				dests = append(dests, r.Destination)
			}
		}
		return dests
	}

	dests := match(true)
	if len(dests) == 0 && lower != "" {
		dests = match(false)
	}

	countries := uniqueSorted(dests)
	res := VisaFreeResult{
		Countries:       countries,
		RegionBreakdown: make(map[string]int, len(Regions)),
		Flags:           make(map[string]string, len(countries)),
	}
	for _, reg := range Regions {
		n := 0
		for _, c := range countries {
			if contains(reg.Countries, c) {
				n++
			}
		}
		res.RegionBreakdown[reg.Name] = n
	}
	for _, c := range countries {
		res.Flags[c] = Flag(c)
	}
	logger.Printf("%d visa-free destinations found for %q", len(countries), country)
	return res
}

func uniqueSorted(in []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
