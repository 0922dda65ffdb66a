package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"PORT", "REDIS_URL", "GEMINI_API_KEY", "GOOGLE_API_KEY", "ANTHROPIC_API_KEY", "OPENAI_API_KEY",
		"PASSPORT_DATASET_URL", "ROAMGENIE_HTTP_ADDR", "ROAMGENIE_HTTP_PORT", "ROAMGENIE_AI_PROVIDER",
		"ROAMGENIE_AI_MODEL", "ROAMGENIE_AI_TIMEOUT", "ROAMGENIE_AI_GEMINI_KEY", "ROAMGENIE_AI_ANTHROPIC_KEY",
		"ROAMGENIE_AI_OPENAI_KEY", "ROAMGENIE_RATELIMIT_REQUESTS", "ROAMGENIE_RATELIMIT_WINDOW",
		"ROAMGENIE_PASSPORT_DATASET_URLS",
	} {
		t.Setenv(name, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":3000" {
		t.Errorf("addr = %q, want :3000", cfg.HTTP.Addr)
	}
	if cfg.AI.Provider != ProviderGemini {
		t.Errorf("provider = %q, want gemini", cfg.AI.Provider)
	}
	if cfg.RateLimit.Requests != 100 || cfg.RateLimit.Window != 15*time.Minute {
		t.Errorf("rate limit = %d/%s, want 100/15m", cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}
	if cfg.Twilio.WhatsAppFrom != "whatsapp:+14155238886" {
		t.Errorf("whatsapp from = %q", cfg.Twilio.WhatsAppFrom)
	}
	if len(cfg.Passport.DatasetURLs) != 2 {
		t.Errorf("dataset urls = %v, want 2 defaults", cfg.Passport.DatasetURLs)
	}
}

func TestLoad_LegacyAndPrefixedEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "legacy-key")
	t.Setenv("SERPAPI_KEY", "serp")
	t.Setenv("PORT", "8081")
	t.Setenv("ROAMGENIE_AI_TIMEOUT", "5s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.GeminiKey != "legacy-key" {
		t.Errorf("gemini key = %q, want legacy-key", cfg.AI.GeminiKey)
	}
	if cfg.WarRoom.SerpAPIKey != "serp" {
		t.Errorf("serpapi key = %q", cfg.WarRoom.SerpAPIKey)
	}
	if cfg.HTTP.Addr != ":8081" {
		t.Errorf("addr = %q, want :8081", cfg.HTTP.Addr)
	}
	if cfg.AI.Timeout != 5*time.Second {
		t.Errorf("timeout = %s, want 5s", cfg.AI.Timeout)
	}

	t.Setenv("ROAMGENIE_AI_GEMINI_KEY", "prefixed")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.GeminiKey != "prefixed" {
		t.Errorf("gemini key = %q, want prefixed to win", cfg.AI.GeminiKey)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "roamgenie.yaml")
	body := "ai:\n  provider: Anthropic\n  anthropic_key: sk-test\nratelimit:\n  requests: 10\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.Provider != ProviderAnthropic {
		t.Errorf("provider = %q, want anthropic", cfg.AI.Provider)
	}
	if cfg.AIKey() != "sk-test" {
		t.Errorf("AIKey = %q", cfg.AIKey())
	}
	if cfg.RateLimit.Requests != 10 {
		t.Errorf("requests = %d, want 10", cfg.RateLimit.Requests)
	}
}

func TestLoad_DatasetURLOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("PASSPORT_DATASET_URL", "https://mirror.example/passport-index-tidy.csv")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	urls := cfg.Passport.DatasetURLs
	if len(urls) != 3 {
		t.Fatalf("dataset urls = %v, want override plus 2 defaults", urls)
	}
	if urls[0] != "https://mirror.example/passport-index-tidy.csv" {
		t.Errorf("first url = %q, want the override", urls[0])
	}
	if urls[2] != "https://raw.githubusercontent.com/datasets/passport-index/main/data/passport-index-tidy.csv" {
		t.Errorf("fallback url = %q", urls[2])
	}

	t.Setenv("PASSPORT_DATASET_URL", urls[1])
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Passport.DatasetURLs) != 2 {
		t.Errorf("dataset urls = %v, want no duplicate", cfg.Passport.DatasetURLs)
	}
}

func TestValidate(t *testing.T) {
	base := Config{}
	base.AI.Provider = ProviderGemini
	base.AI.Timeout = time.Second
	base.HTTP.RequestTimeout = time.Second
	base.RateLimit.Requests = 1
	base.RateLimit.Window = time.Second

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown provider", func(c *Config) { c.AI.Provider = "llama" }, true},
		{"zero ai timeout", func(c *Config) { c.AI.Timeout = 0 }, true},
		{"zero request timeout", func(c *Config) { c.HTTP.RequestTimeout = 0 }, true},
		{"zero rate window", func(c *Config) { c.RateLimit.Window = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
