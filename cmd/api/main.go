package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/fdg312/family-hub/internal/config"
	"github.com/fdg312/family-hub/internal/dbmigrate"
	"github.com/fdg312/family-hub/internal/httpserver"
	"github.com/fdg312/family-hub/internal/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Env, cfg.LogLevel)

	for _, warning := range cfg.Warnings {
		logger.Warn("config: " + warning)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("FATAL config: %v", err)
	}

	printStartupBanner(logger, cfg)

	if cfg.RunMigrationsOnStartup {
		target, err := dbmigrate.SelectTarget(cfg, true)
		if err != nil {
			logger.Fatalf("FATAL startup migrations: %v", err)
		}

		logger.WithField("using", target.Source).Info("startup migrations: command=up")
		if err := dbmigrate.Run(context.Background(), "up", target.URL, logger); err != nil {
			logger.Fatalf("FATAL startup migrations failed: %v", err)
		}
		logger.Info("startup migrations: completed")
	}

	validateProductionConfig(logger, cfg)

	server := httpserver.New(cfg, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatalf("server: %v", err)
		}
	case sig := <-stop:
		logger.WithField("signal", sig.String()).Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.WithError(err).Warn("graceful shutdown failed")
		}
	}

	if err := server.Close(); err != nil {
		logger.WithError(err).Warn("close failed")
	}
}

// printStartupBanner logs a one-time summary of the resolved configuration.
// No secrets are ever printed, only "set" / "not set".
func printStartupBanner(logger *logrus.Logger, cfg *config.Config) {
	logger.Info("========== Family Hub API ==========")
	logger.Infof("  env              = %s", cfg.Env)
	logger.Infof("  port             = %d", cfg.Port)
	logger.Infof("  log_level        = %s", cfg.LogLevel)

	// ---- Database ----
	logger.Info("---- database ----")
	logger.Infof("  runtime_url      = %s", describeDBURL(cfg.DatabaseURL, cfg.DatabaseURLPooled))
	logger.Infof("  pooled           = %s", setOrNot(cfg.DatabaseURLPooled))
	logger.Infof("  direct           = %s", setOrNot(cfg.DatabaseURLDirect))
	logger.Infof("  migrations_on_startup = %t", cfg.RunMigrationsOnStartup)
	if cfg.RunMigrationsOnStartup {
		if cfg.DatabaseURLDirect != "" {
			logger.Info("  migrations_via   = DATABASE_URL_DIRECT")
		} else {
			logger.Info("  migrations_via   = (will fail: DATABASE_URL_DIRECT not set)")
		}
	}

	// ---- Cache ----
	logger.Info("---- cache ----")
	logger.Infof("  cache_mode       = %s", cfg.CacheMode)
	if cfg.CacheMode == config.CacheModeRedis {
		logger.Infof("  redis_url        = %s", setOrNot(cfg.RedisURL))
	}
	logger.Infof("  week_ttl         = %dm", cfg.WeekCacheTTLMinutes)
	logger.Infof("  proposal_ttl     = %dm", cfg.ProposalCacheTTLMinutes)

	// ---- Household ----
	logger.Info("---- household ----")
	logger.Infof("  time_zone        = %s", cfg.HouseholdTimeZone)
	logger.Infof("  child_name       = %s", nonEmptyOrDash(cfg.ChildName))

	// ---- AI ----
	logger.Info("---- ai ----")
	logger.Infof("  ai_mode          = %s", cfg.AIMode)
	logger.Infof("  ai_rate_limit    = %d per %ds", cfg.AIRateLimitCalls, cfg.AIRateLimitWindowSeconds)
	switch cfg.AIMode {
	case config.AIModeOpenAI:
		logger.Infof("  openai_model     = %s", cfg.OpenAIModel)
		logger.Infof("  openai_api_key   = %s", setOrNot(cfg.OpenAIAPIKey))
	case config.AIModeGemini:
		logger.Infof("  gemini_model     = %s", cfg.GeminiModel)
		logger.Infof("  gemini_api_key   = %s", setOrNot(cfg.GeminiAPIKey))
	}

	logger.Info("====================================")
}

// validateProductionConfig performs fatal checks that only matter in non-local envs.
func validateProductionConfig(logger *logrus.Logger, cfg *config.Config) {
	isProd := cfg.Env == "production" || cfg.Env == "staging"
	if !isProd {
		return
	}

	if cfg.DatabaseURL == "" {
		logger.Fatalf("FATAL db: no DATABASE_URL configured in %s", cfg.Env)
	}
	if cfg.CacheMode == config.CacheModeRedis && strings.HasPrefix(cfg.RedisURL, "redis://localhost") {
		logger.Warnf("cache: CACHE_MODE=redis points at localhost in %s", cfg.Env)
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		logger.Warnf("cors: no CORS_ALLOWED_ORIGINS in %s, browsers will be blocked", cfg.Env)
	}
}

// ---- helpers (no secrets) ----

func setOrNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}

func nonEmptyOrDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func describeDBURL(runtime, pooled string) string {
	if runtime == "" {
		return "not set (will use in-memory storage)"
	}
	if pooled != "" && runtime == pooled {
		return fmt.Sprintf("set (via %s)", "DATABASE_URL_POOLED")
	}
	return "set"
}
