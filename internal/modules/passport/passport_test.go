package passport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"roamgenie/internal/ai"
)

func sampleRecords() []Record {
	return []Record{
		{Passport: "India", Destination: "Thailand", Requirement: "visa on arrival"},
		{Passport: "India", Destination: "Nepal", Requirement: "visa free"},
		{Passport: "India", Destination: "Japan", Requirement: "90"},
		{Passport: "India", Destination: "France", Requirement: "visa required"},
		{Passport: "India", Destination: "Kenya", Requirement: "e-visa"},
		{Passport: "India", Destination: "Nepal", Requirement: "visa free"},
		{Passport: "Singapore", Destination: "Japan", Requirement: "visa-free"},
		{Passport: "Singapore", Destination: "Germany", Requirement: "90"},
		{Passport: "Hong Kong (SAR China)", Destination: "Japan", Requirement: "30"},
	}
}

// fakeKV is an in-memory stand-in for the redis commands the dataset uses.
type fakeKV struct {
	data   map[string]string
	getErr error
	sets   int
	ttl    time.Duration
}

func (f *fakeKV) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.data == nil {
		f.data = map[string]string{}
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.sets++
	f.ttl = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestRecord_VisaFree(t *testing.T) {
	cases := map[string]bool{
		"visa free":       true,
		"Visa-Free":       true,
		"visa on arrival": true,
		"90":              true,
		" 30 ":            true,
		"0":               false,
		"-1":              false,
		"visa required":   false,
		"e-visa":          false,
		"no admission":    false,
		"":                false,
	}
	for req, want := range cases {
		if got := (Record{Requirement: req}).VisaFree(); got != want {
			t.Errorf("VisaFree(%q) = %v, want %v", req, got, want)
		}
	}
}

func TestDataset_VisaFreeExactMatch(t *testing.T) {
	d := NewDatasetFromRecords(sampleRecords())
	res := d.VisaFree(context.Background(), "india")

	want := []string{"Japan", "Nepal", "Thailand"}
	if strings.Join(res.Countries, ",") != strings.Join(want, ",") {
		t.Fatalf("Countries = %v, want %v", res.Countries, want)
	}
	if res.RegionBreakdown["Asia"] != 3 {
		t.Errorf("Asia = %d, want 3", res.RegionBreakdown["Asia"])
	}
	if res.RegionBreakdown["Europe"] != 0 {
		t.Errorf("Europe = %d, want 0", res.RegionBreakdown["Europe"])
	}
	if len(res.RegionBreakdown) != len(Regions) {
		t.Errorf("RegionBreakdown has %d regions, want %d", len(res.RegionBreakdown), len(Regions))
	}
	if res.Flags["Japan"] != "🇯🇵" {
		t.Errorf("Flags[Japan] = %q", res.Flags["Japan"])
	}
}

func TestDataset_VisaFreeSubstringMatch(t *testing.T) {
	d := NewDatasetFromRecords(sampleRecords())
	res := d.VisaFree(context.Background(), "Hong Kong")
	if len(res.Countries) != 1 || res.Countries[0] != "Japan" {
		t.Fatalf("Countries = %v, want [Japan]", res.Countries)
	}
}

func TestDataset_VisaFreeUnknownPassport(t *testing.T) {
	d := NewDatasetFromRecords(sampleRecords())
	res := d.VisaFree(context.Background(), "Atlantis")
	if res.Countries == nil || len(res.Countries) != 0 {
		t.Fatalf("Countries = %#v, want empty non-nil slice", res.Countries)
	}
	raw, _ := json.Marshal(res)
	if !strings.Contains(string(raw), `"visaFreeCountries":[]`) {
		t.Errorf("wire = %s", raw)
	}
}

func TestDataset_Passports(t *testing.T) {
	d := NewDatasetFromRecords(sampleRecords())
	got := d.Passports(context.Background())
	want := []string{"Hong Kong (SAR China)", "India", "Singapore"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("Passports = %v, want %v", got, want)
	}
}

func TestDataset_VisaStatus(t *testing.T) {
	d := NewDatasetFromRecords(sampleRecords())
	ctx := context.Background()
	if !d.VisaStatus(ctx, "India", "thailand") {
		t.Error("India -> Thailand should be visa-free")
	}
	if d.VisaStatus(ctx, "India", "France") {
		t.Error("India -> France should need a visa")
	}
	if d.VisaStatus(ctx, "India", "  ") {
		t.Error("blank destination should not be visa-free")
	}
}

func TestParseCSV(t *testing.T) {
	t.Run("any column order and case", func(t *testing.T) {
		in := "\ufeffRequirement, PASSPORT ,destination\nvisa free,India,Nepal\n90,India,Japan\n"
		recs, err := ParseCSV(strings.NewReader(in))
		if err != nil {
			t.Fatalf("ParseCSV: %v", err)
		}
		if len(recs) != 2 {
			t.Fatalf("got %d records, want 2", len(recs))
		}
		want := Record{Passport: "India", Destination: "Nepal", Requirement: "visa free"}
		if recs[0] != want {
			t.Errorf("recs[0] = %+v, want %+v", recs[0], want)
		}
	})

	t.Run("short and blank rows are skipped", func(t *testing.T) {
		in := "Passport,Destination,Requirement\nIndia\n,,\nIndia,Nepal,visa free\n"
		recs, err := ParseCSV(strings.NewReader(in))
		if err != nil {
			t.Fatalf("ParseCSV: %v", err)
		}
		if len(recs) != 1 {
			t.Fatalf("got %d records, want 1", len(recs))
		}
	})

	t.Run("missing column", func(t *testing.T) {
		if _, err := ParseCSV(strings.NewReader("Passport,Destination\nIndia,Nepal\n")); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("header only", func(t *testing.T) {
		if _, err := ParseCSV(strings.NewReader("Passport,Destination,Requirement\n")); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestDataset_LoadFromURL(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path == "/missing.csv" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("Passport,Destination,Requirement\nIndia,Nepal,visa free\nIndia,Peru,visa required\n"))
	}))
	defer srv.Close()

	kv := &fakeKV{}
	d := NewDataset([]string{"", srv.URL + "/missing.csv", srv.URL + "/tidy.csv"}, nil, time.Hour)
	d.cache = kv

	ctx := context.Background()
	recs := d.Records(ctx)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	d.Records(ctx)
	if hits != 2 {
		t.Errorf("hits = %d, want 2 (one 404, one success, then cached)", hits)
	}
	if kv.sets != 1 || kv.ttl != time.Hour {
		t.Errorf("redis sets = %d ttl = %v", kv.sets, kv.ttl)
	}
	var cached []Record
	if err := json.Unmarshal([]byte(kv.data[cacheKey]), &cached); err != nil || len(cached) != 2 {
		t.Errorf("cached copy = %q (%v)", kv.data[cacheKey], err)
	}
}

func TestDataset_LoadFromRedis(t *testing.T) {
	raw, _ := json.Marshal([]Record{{Passport: "Chile", Destination: "Peru", Requirement: "visa free"}})
	kv := &fakeKV{data: map[string]string{cacheKey: string(raw)}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("download should not happen when redis has the dataset")
	}))
	defer srv.Close()

	d := NewDataset([]string{srv.URL}, nil, time.Hour)
	d.cache = kv
	got := d.VisaFree(context.Background(), "Chile")
	if len(got.Countries) != 1 || got.Countries[0] != "Peru" {
		t.Fatalf("Countries = %v", got.Countries)
	}
	if kv.sets != 0 {
		t.Errorf("sets = %d, want 0", kv.sets)
	}
}

func TestDataset_FallbackTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewDataset([]string{srv.URL}, nil, time.Hour)
	d.cache = &fakeKV{getErr: errors.New("connection refused")}

	ctx := context.Background()
	res := d.VisaFree(ctx, "India")
	if len(res.Countries) != len(uniqueSorted(fallbackVisaFree["India"])) {
		t.Fatalf("got %d countries, want %d", len(res.Countries), len(fallbackVisaFree["India"]))
	}
	if !d.VisaStatus(ctx, "United States", "Canada") {
		t.Error("fallback table should list Canada for US passports")
	}
	if got := d.Passports(ctx); len(got) != len(fallbackVisaFree) {
		t.Errorf("Passports = %v", got)
	}
}

func TestDetectCountry(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		want     string
		wantConf float64
		wantOK   bool
	}{
		{"republic of", "REPUBLIC OF INDIA\nP<IND", "India", patternConfidence, true},
		{"usa banner", "United States of America\nPassport", "United States", patternConfidence, true},
		{"nationality field", "Surname DOE\nNationality GERMANY", "Germany", patternConfidence, true},
		{"keyword only", "Issued in Singapore on 2020-01-01", "Singapore", keywordConfidence, true},
		{"unrecognised field falls through to keyword", "REPUBLIC OF NOWHERE japan", "Japan", keywordConfidence, true},
		{"nothing", "driving licence 12345", "", 0, false},
		{"empty", "", "", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := DetectCountry(tc.text)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if got.Country != tc.want || got.Confidence != tc.wantConf {
				t.Errorf("got %+v, want %s/%v", got, tc.want, tc.wantConf)
			}
		})
	}
}

func TestFlag(t *testing.T) {
	if got := Flag("India"); got != "🇮🇳" {
		t.Errorf("Flag(India) = %q", got)
	}
	if got := Flag("European Union Countries"); got != "" {
		t.Errorf("Flag(unknown) = %q, want empty", got)
	}
}

func TestService_Scan(t *testing.T) {
	ds := NewDatasetFromRecords(sampleRecords())
	ocr := ai.NewMockGenerator()
	ocr.ExtractTextFn = func(ctx context.Context, image []byte, mimeType string) (string, error) {
		if mimeType != "image/png" {
			t.Errorf("mimeType = %q", mimeType)
		}
		return "REPUBLIC OF INDIA\nPASSPORT NO Z1234567", nil
	}
	svc := NewService(ds, ocr)

	res, err := svc.Scan(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "image/png")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.Country != "India" || res.Confidence != patternConfidence {
		t.Errorf("detection = %+v", res.Detection)
	}
	if len(res.Countries) != 3 {
		t.Errorf("Countries = %v", res.Countries)
	}

	raw, _ := json.Marshal(res)
	for _, key := range []string{`"country":"India"`, `"confidence":0.8`, `"visaFreeCountries"`, `"regionBreakdown"`, `"flags"`} {
		if !strings.Contains(string(raw), key) {
			t.Errorf("wire %s missing %s", raw, key)
		}
	}
}

func TestService_ScanErrors(t *testing.T) {
	ds := NewDatasetFromRecords(sampleRecords())
	ctx := context.Background()

	t.Run("unsupported type", func(t *testing.T) {
		_, err := NewService(ds, ai.NewMockGenerator()).Scan(ctx, []byte("%PDF"), "application/pdf")
		if !errors.Is(err, ErrUnsupportedImage) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("no ocr", func(t *testing.T) {
		_, err := NewService(ds, nil).Scan(ctx, []byte{1}, "image/jpeg")
		if !errors.Is(err, ErrOCRUnavailable) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("ocr failure", func(t *testing.T) {
		ocr := ai.NewMockGenerator()
		ocr.ExtractTextFn = func(context.Context, []byte, string) (string, error) {
			return "", &ai.UpstreamError{Provider: "mock", Err: errors.New("quota")}
		}
		_, err := NewService(ds, ocr).Scan(ctx, []byte{1}, "image/webp")
		if !errors.Is(err, ai.ErrUpstreamGeneration) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("country not detected", func(t *testing.T) {
		ocr := ai.NewMockGenerator()
		ocr.ExtractTextFn = func(context.Context, []byte, string) (string, error) {
			return "blurry text", nil
		}
		_, err := NewService(ds, ocr).Scan(ctx, []byte{1}, "IMAGE/JPEG")
		if !errors.Is(err, ErrCountryNotDetected) {
			t.Fatalf("err = %v", err)
		}
	})
}

func TestService_Lookup(t *testing.T) {
	svc := NewService(NewDatasetFromRecords(sampleRecords()), nil)
	ctx := context.Background()

	res, err := svc.Lookup(ctx, "  Singapore ")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if res.Country != "Singapore" || len(res.Countries) != 2 {
		t.Errorf("res = %+v", res)
	}
	if len(res.AvailablePassports) != 3 {
		t.Errorf("AvailablePassports = %v", res.AvailablePassports)
	}

	if _, err := svc.Lookup(ctx, " "); !errors.Is(err, ErrInputRejected) {
		t.Errorf("blank country err = %v", err)
	}
	if got := svc.Countries(ctx); len(got) != 3 {
		t.Errorf("Countries = %v", got)
	}
}
