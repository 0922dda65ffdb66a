// README: Smoke and throughput runner against a live RoamGenie API; prints one line per case and a summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	bench := NewRunner(cfg)
	results := bench.RunAll(ctx)

	fmt.Println("\n== Summary ==")
	pass, fail, pending, skipped := 0, 0, 0, 0
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			pass++
		case StatusFail:
			fail++
		case StatusPending:
			pending++
		case StatusSkip:
			skipped++
		}
	}
	fmt.Printf("PASS=%d FAIL=%d PENDING=%d SKIP=%d\n", pass, fail, pending, skipped)

	if fail > 0 || (cfg.Strict && pending > 0) {
		os.Exit(1)
	}
}

type Config struct {
	BaseURL     string
	RedisURL    string
	WithAI      bool
	Strict      bool
	Timeout     time.Duration
	Concurrency int
	Duration    time.Duration
}

// loadConfig reads flags; their defaults come from ROAMGENIE_BENCH_* variables.
func loadConfig() Config {
	v := viper.New()
	v.SetEnvPrefix("ROAMGENIE_BENCH")
	v.AutomaticEnv()
	v.SetDefault("base_url", "http://localhost:3000")
	v.SetDefault("with_ai", false)
	v.SetDefault("strict", false)
	v.SetDefault("timeout", 3*time.Minute)
	v.SetDefault("concurrency", 10)
	v.SetDefault("duration", 5*time.Second)
	_ = v.BindEnv("redis_url", "ROAMGENIE_BENCH_REDIS_URL", "REDIS_URL")

	var cfg Config
	flag.StringVar(&cfg.BaseURL, "base-url", v.GetString("base_url"), "API base URL")
	flag.StringVar(&cfg.RedisURL, "redis", v.GetString("redis_url"), "Redis URL (redis://...); empty skips the redis checks")
	flag.BoolVar(&cfg.WithAI, "with-ai", v.GetBool("with_ai"), "Run cases that call the AI provider")
	flag.BoolVar(&cfg.Strict, "strict", v.GetBool("strict"), "Fail on pending cases")
	flag.DurationVar(&cfg.Timeout, "timeout", v.GetDuration("timeout"), "Total timeout")
	flag.IntVar(&cfg.Concurrency, "concurrency", v.GetInt("concurrency"), "Concurrency for perf cases")
	flag.DurationVar(&cfg.Duration, "duration", v.GetDuration("duration"), "Duration for perf cases")
	flag.Parse()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return cfg
}
