package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q, want release", cfg.GinMode)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Errorf("APIBasePath = %q, want /api/v1", cfg.APIBasePath)
	}
	if cfg.Cron.RateLimit != 100 || cfg.Cron.RateTTL != time.Hour {
		t.Errorf("cron limiter defaults wrong: %+v", cfg.Cron)
	}
	if cfg.Cron.LookbackDays != 3 || cfg.Cron.StressDayThreshold != 2 {
		t.Errorf("stress windows wrong: %+v", cfg.Cron)
	}
	if cfg.Cron.DigestDays != 7 || cfg.Cron.DigestEntryRunes != 200 {
		t.Errorf("digest windows wrong: %+v", cfg.Cron)
	}
	if cfg.Scheduler.Enabled {
		t.Error("in-process scheduler must be off by default")
	}
}

func TestLoad_CronSecretMayBeEmpty(t *testing.T) {
	// Absence is reported per-request by the cron auth middleware,
	// not at startup.
	t.Setenv("CRON_SECRET", "")
	if _, err := Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("GIN_MODE", "bogus")
	t.Setenv("CRON_RATE_LIMIT", "5")
	t.Setenv("CRON_RATE_WINDOW", "30m")
	t.Setenv("STRESS_DAY_THRESHOLD", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warning normalized to warn", cfg.LogLevel)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q, unknown modes fall back to release", cfg.GinMode)
	}
	if cfg.Cron.RateLimit != 5 || cfg.Cron.RateTTL != 30*time.Minute {
		t.Errorf("cron limiter = %+v", cfg.Cron)
	}
	if cfg.Cron.StressDayThreshold != 3 {
		t.Errorf("StressDayThreshold = %d", cfg.Cron.StressDayThreshold)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := map[string]struct{ key, val string }{
		"bad log level":      {"LOG_LEVEL", "verbose"},
		"zero rate limit":    {"CRON_RATE_LIMIT", "0"},
		"zero lookback":      {"STRESS_LOOKBACK_DAYS", "0"},
		"zero threshold":     {"STRESS_DAY_THRESHOLD", "0"},
		"zero digest window": {"DIGEST_LOOKBACK_DAYS", "0"},
		"burst below one":    {"RATE_BURST", "0"},
		"sample ratio > 1":   {"OTEL_TRACES_SAMPLER_ARG", "1.5"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			if _, err := Load(); err == nil {
				t.Fatalf("%s=%s must fail validation", tc.key, tc.val)
			}
		})
	}
}

func TestLoad_MalformedValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("CRON_RATE_LIMIT", "not-a-number")
	t.Setenv("READ_TIMEOUT", "soon")
	t.Setenv("LOG_PRETTY", "maybe")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Cron.RateLimit != 100 {
		t.Errorf("RateLimit = %d, want default 100", cfg.Cron.RateLimit)
	}
	if cfg.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want default 15s", cfg.ReadTimeout)
	}
	if cfg.LogPretty {
		t.Error("LogPretty must stay at its default on unparseable input")
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := map[string]string{
		"":         "/",
		"api":      "/api",
		"/api/":    "/api",
		"/api/v2":  "/api/v2",
		"/api/v2/": "/api/v2",
		"/":        "/",
	}
	for in, want := range cases {
		if got := normalizeBasePath(in); got != want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}
