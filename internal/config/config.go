// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server timeouts,
// logging, database path, the cron shared secret, LLM credentials, rate
// limiting, detection windows, scheduling, and observability settings so
// that nothing else in the call chain reads the environment implicitly.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// LLMConfig holds credentials and model selection for the external
// text-generation provider.
type LLMConfig struct {
	APIKey       string // OPENAI_API_KEY
	BaseURL      string // OPENAI_BASE_URL (optional, OpenAI-compatible endpoint)
	ChatModel    string // OPENAI_CHAT_MODEL
	VisionModel  string // OPENAI_VISION_MODEL
	RequestLimit time.Duration
}

// CronConfig holds everything the two scheduled jobs need: the shared
// secret authenticating the external scheduler, the fixed-window rate
// limit, and the detection windows.
type CronConfig struct {
	Secret string // CRON_SECRET; empty means the server is misconfigured

	// Fixed-window limiter backed by Redis.
	RedisURL  string        // REDIS_URL; empty disables the limiter (fail-open)
	RateLimit int64         // requests per window per job name
	RateTTL   time.Duration // window size

	// Proactive notifier windows.
	LookbackDays       int // interaction-log window and dedup window (days)
	StressDayThreshold int // distinct stressful days required to trigger

	// Weekly digest windows.
	DigestDays        int // interaction-log window (days)
	DigestEntryRunes  int // per message/response truncation for the transcript
	DigestMaxWordHint int // word cap requested from the summarizer
}

// SchedulerConfig controls the optional in-process cron runner. Jobs are
// normally triggered over HTTP by an external scheduler; the runner exists
// for single-binary deployments and is off by default.
type SchedulerConfig struct {
	Enabled    bool   // SCHEDULER_ENABLED
	CheckSpec  string // SCHEDULER_CHECK_SPEC (cron expression)
	DigestSpec string // SCHEDULER_DIGEST_SPEC
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool
	SwaggerEnabled bool
	APIBasePath    string

	// App
	DBPath string // SQLite path

	// Public-API rate limiting (token bucket per user/IP)
	RateRPS   float64
	RateBurst int

	CORS      CORSConfig
	LLM       LLMConfig
	Cron      CronConfig
	Scheduler SchedulerConfig
	OTEL      OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables, applies defaults,
// normalizes values, and validates the result. The cron secret is allowed
// to be empty here: its absence is reported per-request as a 500 by the
// cron auth middleware, per the configuration-error contract.
func Load() (Config, error) {
	cfg := Config{
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		DBPath: getenv("DB_PATH", "coach.db"),

		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},

		LLM: LLMConfig{
			APIKey:       getenv("OPENAI_API_KEY", ""),
			BaseURL:      getenv("OPENAI_BASE_URL", ""),
			ChatModel:    getenv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			VisionModel:  getenv("OPENAI_VISION_MODEL", "gpt-4o"),
			RequestLimit: getdur("OPENAI_TIMEOUT", 45*time.Second),
		},

		Cron: CronConfig{
			Secret:             getenv("CRON_SECRET", ""),
			RedisURL:           getenv("REDIS_URL", ""),
			RateLimit:          int64(getint("CRON_RATE_LIMIT", 100)),
			RateTTL:            getdur("CRON_RATE_WINDOW", 60*time.Minute),
			LookbackDays:       getint("STRESS_LOOKBACK_DAYS", 3),
			StressDayThreshold: getint("STRESS_DAY_THRESHOLD", 2),
			DigestDays:         getint("DIGEST_LOOKBACK_DAYS", 7),
			DigestEntryRunes:   getint("DIGEST_ENTRY_RUNES", 200),
			DigestMaxWordHint:  getint("DIGEST_MAX_WORDS", 200),
		},

		Scheduler: SchedulerConfig{
			Enabled:    getbool("SCHEDULER_ENABLED", false),
			CheckSpec:  getenv("SCHEDULER_CHECK_SPEC", "0 9 * * *"),
			DigestSpec: getenv("SCHEDULER_DIGEST_SPEC", "0 8 * * 1"),
		},

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-coach-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Cron.RateLimit < 1 {
		return cfg, errors.New("CRON_RATE_LIMIT must be >= 1")
	}
	if cfg.Cron.RateTTL <= 0 {
		return cfg, errors.New("CRON_RATE_WINDOW must be > 0")
	}
	if cfg.Cron.LookbackDays < 1 {
		return cfg, errors.New("STRESS_LOOKBACK_DAYS must be >= 1")
	}
	if cfg.Cron.StressDayThreshold < 1 {
		return cfg, errors.New("STRESS_DAY_THRESHOLD must be >= 1")
	}
	if cfg.Cron.DigestDays < 1 {
		return cfg, errors.New("DIGEST_LOOKBACK_DAYS must be >= 1")
	}
	if cfg.Cron.DigestEntryRunes < 1 {
		return cfg, errors.New("DIGEST_ENTRY_RUNES must be >= 1")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
