// Command server runs the coaching backend: the public wellness API, the
// cron trigger endpoints, and (optionally) the in-process scheduler for
// single-binary deployments.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/nourish-labs/go-coach-backend/internal/config"
	httpapi "github.com/nourish-labs/go-coach-backend/internal/http"
	"github.com/nourish-labs/go-coach-backend/internal/llm"
	"github.com/nourish-labs/go-coach-backend/internal/observability"
	"github.com/nourish-labs/go-coach-backend/internal/ratelimit"
	"github.com/nourish-labs/go-coach-backend/internal/repo"
	"github.com/nourish-labs/go-coach-backend/internal/services"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// Local development convenience; absent .env is fine.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	setupLogging(cfg)

	ctx := context.Background()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up tracing")
	}
	defer func() {
		if err := shutdownOTel(context.Background()); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown failed")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	// Redis is optional: without it the cron limiter fails open.
	var rlStore ratelimit.Store
	if cfg.Cron.RedisURL != "" {
		store, err := ratelimit.NewRedisStore(cfg.Cron.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, cron rate limiting disabled")
		} else {
			rlStore = store
			defer store.C.Close()
		}
	}

	llmClient := llm.NewOpenAI(cfg.LLM)

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, db, llmClient, rlStore, cfg)

	// Optional in-process scheduler for single-binary deployments. Normal
	// deployments trigger the jobs over HTTP with the shared secret.
	if cfg.Scheduler.Enabled {
		runner := startScheduler(db, llmClient, cfg)
		defer runner.Stop()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// setupLogging configures zerolog from LOG_LEVEL and LOG_PRETTY.
func setupLogging(cfg config.Config) {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// startScheduler wires the two jobs into a robfig/cron runner using the
// configured cron expressions. Jobs run with a background context and
// write their own audit rows exactly as on the HTTP path; the HTTP-layer
// rate limiter does not apply here.
func startScheduler(db *gorm.DB, llmClient services.CoachLLM, cfg config.Config) *cron.Cron {
	notifier, digest := httpapi.NewJobServices(db, llmClient, cfg)

	c := cron.New()
	if _, err := c.AddFunc(cfg.Scheduler.CheckSpec, func() {
		if _, err := notifier.CheckUserStatus(context.Background()); err != nil {
			log.Error().Err(err).Msg("scheduled checkUserStatus failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.Scheduler.CheckSpec).Msg("invalid check schedule")
	}
	if _, err := c.AddFunc(cfg.Scheduler.DigestSpec, func() {
		if _, err := digest.GenerateWeeklyDigest(context.Background()); err != nil {
			log.Error().Err(err).Msg("scheduled generateWeeklyDigest failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.Scheduler.DigestSpec).Msg("invalid digest schedule")
	}

	c.Start()
	log.Info().Str("check", cfg.Scheduler.CheckSpec).Str("digest", cfg.Scheduler.DigestSpec).
		Msg("in-process scheduler started")
	return c
}
