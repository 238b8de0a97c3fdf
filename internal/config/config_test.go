package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "ENV", "PORT", "DATABASE_URL", "DATABASE_URL_POOLED", "DATABASE_URL_DIRECT",
		"CACHE_MODE", "REDIS_URL", "WEEK_CACHE_TTL_MINUTES", "PROPOSAL_CACHE_TTL_MINUTES",
		"AI_MODE", "AI_RATE_LIMIT_CALLS", "AI_RATE_LIMIT_WINDOW_SECONDS", "CHARGE_MEAL_MINUTES_DIVISOR",
		"ALERT_OVERLOAD_SCORE", "ALERT_MAX_MEALS_PER_DAY",
		"CHARGE_PROJECT_WEIGHT_URGENT", "CHARGE_NORMAL_FROM", "CHARGE_INTENSE_FROM",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Env != "local" {
		t.Errorf("expected env=local, got %q", cfg.Env)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.CacheMode != CacheModeMemory {
		t.Errorf("expected cache mode memory, got %q", cfg.CacheMode)
	}
	if cfg.WeekCacheTTLMinutes != 30 || cfg.ProposalCacheTTLMinutes != 60 {
		t.Errorf("expected TTLs 30/60, got %d/%d", cfg.WeekCacheTTLMinutes, cfg.ProposalCacheTTLMinutes)
	}
	if cfg.AIMode != AIModeMock {
		t.Errorf("expected AI mode mock, got %q", cfg.AIMode)
	}
	if cfg.Charge.MealMinutesDivisor != 5 || cfg.Charge.ActivityWeight != 15 || cfg.Charge.RoutineWeight != 3 {
		t.Errorf("unexpected charge defaults: %+v", cfg.Charge)
	}
	if cfg.Charge.ProjectWeightLow != 5 || cfg.Charge.ProjectWeightUrgent != 25 || cfg.Charge.NormalFrom != 34 || cfg.Charge.IntenseFrom != 70 {
		t.Errorf("unexpected project weights or bands: %+v", cfg.Charge)
	}
	if len(cfg.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", cfg.Warnings)
	}
	if cfg.Alerts.OverloadScore != 80 || cfg.Alerts.MaxMealsPerDay != 3 || cfg.Alerts.UrgentHorizonDays != 2 {
		t.Errorf("unexpected alert defaults: %+v", cfg.Alerts)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("expected localhost CORS defaults, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadDatabaseURLPriority(t *testing.T) {
	t.Setenv("DATABASE_URL_POOLED", "postgres://pooled")
	t.Setenv("DATABASE_URL", "postgres://url")
	t.Setenv("DATABASE_URL_DIRECT", "postgres://direct")

	cfg := Load()
	if cfg.DatabaseURL != "postgres://pooled" {
		t.Fatalf("expected pooled URL to win, got %q", cfg.DatabaseURL)
	}
	if cfg.DatabaseURLDirect != "postgres://direct" {
		t.Fatalf("expected direct URL preserved, got %q", cfg.DatabaseURLDirect)
	}
}

func TestLoadCacheMode(t *testing.T) {
	t.Run("redis gets default URL", func(t *testing.T) {
		t.Setenv("CACHE_MODE", "redis")
		t.Setenv("REDIS_URL", "")

		cfg := Load()
		if cfg.CacheMode != CacheModeRedis {
			t.Fatalf("expected redis, got %q", cfg.CacheMode)
		}
		if cfg.RedisURL == "" {
			t.Fatal("expected default REDIS_URL")
		}
	})

	t.Run("unknown mode falls back to memory", func(t *testing.T) {
		t.Setenv("CACHE_MODE", "memcached")

		cfg := Load()
		if cfg.CacheMode != CacheModeMemory {
			t.Fatalf("expected memory fallback, got %q", cfg.CacheMode)
		}
	})
}

func TestLoadInvalidNumbersUseDefaults(t *testing.T) {
	t.Setenv("WEEK_CACHE_TTL_MINUTES", "-5")
	t.Setenv("AI_RATE_LIMIT_CALLS", "abc")
	t.Setenv("CHARGE_MEAL_MINUTES_DIVISOR", "0")
	t.Setenv("AI_TEMPERATURE", "9")

	cfg := Load()
	if cfg.WeekCacheTTLMinutes != 30 {
		t.Errorf("expected TTL fallback 30, got %d", cfg.WeekCacheTTLMinutes)
	}
	if cfg.AIRateLimitCalls != 10 {
		t.Errorf("expected rate limit fallback 10, got %d", cfg.AIRateLimitCalls)
	}
	if cfg.Charge.MealMinutesDivisor != 5 {
		t.Errorf("expected divisor fallback 5, got %d", cfg.Charge.MealMinutesDivisor)
	}
	if cfg.AITemperature != 2 {
		t.Errorf("expected temperature clamped to 2, got %v", cfg.AITemperature)
	}
}

func TestParseCORSOrigins(t *testing.T) {
	got := parseCORSOrigins(" https://a.example , ,https://b.example", "production")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", got)
	}
	if parseCORSOrigins("", "production") != nil {
		t.Fatal("expected nil origins in production when unset")
	}
}

func TestLoadChargeProjectWeightsAndBands(t *testing.T) {
	t.Setenv("CHARGE_PROJECT_WEIGHT_MEDIUM", "12")
	t.Setenv("CHARGE_PROJECT_WEIGHT_URGENT", "40")
	t.Setenv("CHARGE_NORMAL_FROM", "20")
	t.Setenv("CHARGE_INTENSE_FROM", "60")

	cfg := Load()
	if cfg.Charge.ProjectWeightMedium != 12 || cfg.Charge.ProjectWeightUrgent != 40 {
		t.Errorf("expected project weights 12/40, got %+v", cfg.Charge)
	}
	if cfg.Charge.NormalFrom != 20 || cfg.Charge.IntenseFrom != 60 {
		t.Errorf("expected bands 20/60, got %d/%d", cfg.Charge.NormalFrom, cfg.Charge.IntenseFrom)
	}
}

func TestLoadInvalidChargeBandsFallBackWithWarning(t *testing.T) {
	t.Setenv("CHARGE_NORMAL_FROM", "80")
	t.Setenv("CHARGE_INTENSE_FROM", "50")

	cfg := Load()
	if cfg.Charge.NormalFrom != 34 || cfg.Charge.IntenseFrom != 70 {
		t.Errorf("expected bands fallback 34/70, got %d/%d", cfg.Charge.NormalFrom, cfg.Charge.IntenseFrom)
	}
	if len(cfg.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", cfg.Warnings)
	}
}

func TestLoadUnknownModesAreReportedAsWarnings(t *testing.T) {
	t.Setenv("CACHE_MODE", "disk")
	t.Setenv("AI_MODE", "oracle")

	cfg := Load()
	if cfg.CacheMode != CacheModeMemory || cfg.AIMode != AIModeMock {
		t.Fatalf("expected fallbacks memory/mock, got %q/%q", cfg.CacheMode, cfg.AIMode)
	}
	if len(cfg.Warnings) != 2 {
		t.Fatalf("expected two warnings, got %v", cfg.Warnings)
	}
}

func TestValidateRequiresProviderKey(t *testing.T) {
	cfg := &Config{AIMode: AIModeOpenAI}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing OPENAI_API_KEY")
	}
	cfg = &Config{AIMode: AIModeGemini, GeminiAPIKey: "key"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg = &Config{AIMode: AIModeMock}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
