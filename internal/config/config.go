// README: Config loader (viper) with defaults and env overrides for HTTP, Redis, AI providers, and external services.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Addr           string        `mapstructure:"addr"`
	Port           string        `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type AIConfig struct {
	Provider     string        `mapstructure:"provider"`
	Model        string        `mapstructure:"model"`
	GeminiKey    string        `mapstructure:"gemini_key"`
	AnthropicKey string        `mapstructure:"anthropic_key"`
	OpenAIKey    string        `mapstructure:"openai_key"`
	Temperature  float32       `mapstructure:"temperature"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type MapsConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type TwilioConfig struct {
	AccountSID   string `mapstructure:"account_sid"`
	AuthToken    string `mapstructure:"auth_token"`
	PhoneNumber  string `mapstructure:"phone_number"`
	WhatsAppFrom string `mapstructure:"whatsapp_from"`
}

type FirebaseConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

type WarRoomConfig struct {
	AviationStackKey string `mapstructure:"aviationstack_key"`
	SerpAPIKey       string `mapstructure:"serpapi_key"`
}

type PassportConfig struct {
	DatasetURLs []string      `mapstructure:"dataset_urls"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

type IVRConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Redis     RedisConfig     `mapstructure:"redis"`
	AI        AIConfig        `mapstructure:"ai"`
	Maps      MapsConfig      `mapstructure:"maps"`
	Twilio    TwilioConfig    `mapstructure:"twilio"`
	Firebase  FirebaseConfig  `mapstructure:"firebase"`
	WarRoom   WarRoomConfig   `mapstructure:"warroom"`
	Passport  PassportConfig  `mapstructure:"passport"`
	IVR       IVRConfig       `mapstructure:"ivr"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Load reads configuration from defaults, an optional config file and the environment.
// Environment keys use the ROAMGENIE_ prefix (ROAMGENIE_AI_PROVIDER); the bare names the
// deployment has always used (GEMINI_API_KEY, SERPAPI_KEY, ...) are honoured too.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ROAMGENIE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("roamgenie")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.HTTP.Port != "" {
		cfg.HTTP.Addr = ":" + strings.TrimPrefix(cfg.HTTP.Port, ":")
	}
	cfg.AI.Provider = strings.ToLower(strings.TrimSpace(cfg.AI.Provider))
	if u := strings.TrimSpace(os.Getenv("PASSPORT_DATASET_URL")); u != "" {
		cfg.Passport.DatasetURLs = preferURL(u, cfg.Passport.DatasetURLs)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":3000")
	v.SetDefault("http.request_timeout", 60*time.Second)
	v.SetDefault("http.allowed_origins", []string{
		"http://localhost:5173",
		"http://localhost:4173",
		"http://localhost:3000",
	})
	v.SetDefault("redis.url", "")
	v.SetDefault("ai.provider", ProviderGemini)
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.temperature", 0.4)
	v.SetDefault("ai.timeout", 45*time.Second)
	v.SetDefault("twilio.whatsapp_from", "whatsapp:+14155238886")
	v.SetDefault("passport.dataset_urls", []string{
		"https://raw.githubusercontent.com/ilyankou/passport-index-dataset/master/passport-index-tidy.csv",
		"https://raw.githubusercontent.com/datasets/passport-index/main/data/passport-index-tidy.csv",
	})
	v.SetDefault("passport.cache_ttl", 24*time.Hour)
	v.SetDefault("ratelimit.requests", 100)
	v.SetDefault("ratelimit.window", 15*time.Minute)
}

// bindLegacyEnv maps un-prefixed variable names onto config keys. The prefixed name wins.
func bindLegacyEnv(v *viper.Viper) error {
	legacy := map[string][]string{
		"http.port":                 {"PORT"},
		"redis.url":                 {"REDIS_URL"},
		"ai.gemini_key":             {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
		"ai.anthropic_key":          {"ANTHROPIC_API_KEY"},
		"ai.openai_key":             {"OPENAI_API_KEY"},
		"maps.api_key":              {"GOOGLE_MAPS_API_KEY"},
		"twilio.account_sid":        {"TWILIO_ACCOUNT_SID"},
		"twilio.auth_token":         {"TWILIO_AUTH_TOKEN"},
		"twilio.phone_number":       {"TWILIO_PHONE_NUMBER"},
		"twilio.whatsapp_from":      {"TWILIO_WHATSAPP"},
		"firebase.project_id":       {"FIREBASE_PROJECT_ID"},
		"firebase.credentials_file": {"GOOGLE_APPLICATION_CREDENTIALS"},
		"warroom.aviationstack_key": {"AVIATIONSTACK_KEY"},
		"warroom.serpapi_key":       {"SERPAPI_KEY"},
		"ivr.webhook_url":           {"N8N_WEBHOOK_URL"},
	}
	for key, names := range legacy {
		prefixed := "ROAMGENIE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, prefixed}, names...)...); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}

// preferURL puts first at the head of urls; the rest stay as fallbacks.
func preferURL(first string, urls []string) []string {
	out := make([]string, 0, len(urls)+1)
	out = append(out, first)
	for _, u := range urls {
		if u != first {
			out = append(out, u)
		}
	}
	return out
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	switch c.AI.Provider {
	case ProviderGemini, ProviderAnthropic, ProviderOpenAI:
	default:
		return fmt.Errorf("ai.provider %q is not supported (gemini, anthropic, openai)", c.AI.Provider)
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be > 0")
	}
	if c.HTTP.RequestTimeout <= 0 {
		return fmt.Errorf("http.request_timeout must be > 0")
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("ratelimit.requests and ratelimit.window must be > 0")
	}
	return nil
}

// AIKey returns the API key for the configured provider.
func (c Config) AIKey() string {
	switch c.AI.Provider {
	case ProviderAnthropic:
		return c.AI.AnthropicKey
	case ProviderOpenAI:
		return c.AI.OpenAIKey
	default:
		return c.AI.GeminiKey
	}
}
