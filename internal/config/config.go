package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	CacheModeMemory = "memory"
	CacheModeRedis  = "redis"

	AIModeMock   = "mock"
	AIModeOpenAI = "openai"
	AIModeGemini = "gemini"
)

// ChargeConfig holds the tunable weights of the daily workload score.
// Zero project weights and bands keep the built-in defaults.
type ChargeConfig struct {
	MealMinutesDivisor int
	ActivityWeight     int
	RoutineWeight      int

	ProjectWeightLow    int
	ProjectWeightMedium int
	ProjectWeightHigh   int
	ProjectWeightUrgent int

	// score < NormalFrom is faible, score >= IntenseFrom is intense
	NormalFrom  int
	IntenseFrom int
}

// AlertConfig holds the thresholds of the day and week alert rules.
type AlertConfig struct {
	OverloadScore     int
	DayBudgetMax      float64
	WeekBudgetMax     float64
	MaxMealsPerDay    int
	MaxIntenseDays    int
	UrgentHorizonDays int
}

// Config holds the application configuration.
type Config struct {
	Env      string // local | staging | production
	Port     int
	LogLevel string

	// Database
	DatabaseURL       string // runtime connection (resolved: pooled > url > direct)
	DatabaseURLRaw    string // DATABASE_URL as provided
	DatabaseURLPooled string // DATABASE_URL_POOLED as provided
	DatabaseURLDirect string // for migrations / DDL (may be empty)

	// CORS
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Rate Limiting (HTTP, per IP)
	RateLimitRPS   int
	RateLimitBurst int

	// Cache
	CacheMode               string // memory | redis
	RedisURL                string
	WeekCacheTTLMinutes     int
	ProposalCacheTTLMinutes int

	// Household
	HouseholdTimeZone string
	ChildName         string

	// Week view tuning
	Charge ChargeConfig
	Alerts AlertConfig

	// AI
	AIMode                   string // mock | openai | gemini
	AIMaxOutputTokens        int
	AITemperature            float64
	AITimeoutSeconds         int
	AIRateLimitCalls         int
	AIRateLimitWindowSeconds int
	OpenAIAPIKey             string
	OpenAIModel              string
	GeminiAPIKey             string
	GeminiModel              string

	// Migrations
	RunMigrationsOnStartup bool

	// Warnings collects fallbacks applied while loading, for the caller to log.
	Warnings []string
}

// Load reads the configuration from environment variables.
// Load never fails: invalid values fall back to defaults and are reported in
// Warnings. Call Validate for the checks that must stop the process.
func Load() *Config {
	var warnings []string
	// APP_ENV (fallback to ENV for backward compat, default: local)
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env == "" {
		env = "local"
	}

	port := envInt("PORT", 8080)

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "debug"
	}

	// ---------- Database ----------
	// Priority: DATABASE_URL_POOLED > DATABASE_URL > DATABASE_URL_DIRECT
	dbPooled := strings.TrimSpace(os.Getenv("DATABASE_URL_POOLED"))
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	dbDirect := strings.TrimSpace(os.Getenv("DATABASE_URL_DIRECT"))

	runtimeDB := dbPooled
	if runtimeDB == "" {
		runtimeDB = dbURL
	}
	if runtimeDB == "" {
		runtimeDB = dbDirect
	}

	// ---------- Cache ----------
	cacheMode := strings.ToLower(strings.TrimSpace(os.Getenv("CACHE_MODE")))
	if cacheMode == "" {
		cacheMode = CacheModeMemory
	}
	if cacheMode != CacheModeMemory && cacheMode != CacheModeRedis {
		warnings = append(warnings, fmt.Sprintf("unknown CACHE_MODE=%q, fallback to %s", cacheMode, CacheModeMemory))
		cacheMode = CacheModeMemory
	}
	redisURL := strings.TrimSpace(os.Getenv("REDIS_URL"))
	if cacheMode == CacheModeRedis && redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	weekTTL := positiveOr(envInt("WEEK_CACHE_TTL_MINUTES", 30), 30)
	proposalTTL := positiveOr(envInt("PROPOSAL_CACHE_TTL_MINUTES", 60), 60)

	// ---------- Household ----------
	tz := strings.TrimSpace(os.Getenv("HOUSEHOLD_TIME_ZONE"))
	if tz == "" {
		tz = "Europe/Paris"
	}
	childName := strings.TrimSpace(os.Getenv("HOUSEHOLD_CHILD_NAME"))
	if childName == "" {
		childName = "l'enfant"
	}

	// ---------- Charge & alerts ----------
	charge := ChargeConfig{
		MealMinutesDivisor: positiveOr(envInt("CHARGE_MEAL_MINUTES_DIVISOR", 5), 5),
		ActivityWeight:     nonNegativeOr(envInt("CHARGE_ACTIVITY_WEIGHT", 15), 15),
		RoutineWeight:      nonNegativeOr(envInt("CHARGE_ROUTINE_WEIGHT", 3), 3),

		ProjectWeightLow:    nonNegativeOr(envInt("CHARGE_PROJECT_WEIGHT_LOW", 5), 5),
		ProjectWeightMedium: nonNegativeOr(envInt("CHARGE_PROJECT_WEIGHT_MEDIUM", 10), 10),
		ProjectWeightHigh:   nonNegativeOr(envInt("CHARGE_PROJECT_WEIGHT_HIGH", 15), 15),
		ProjectWeightUrgent: nonNegativeOr(envInt("CHARGE_PROJECT_WEIGHT_URGENT", 25), 25),

		NormalFrom:  envInt("CHARGE_NORMAL_FROM", 34),
		IntenseFrom: envInt("CHARGE_INTENSE_FROM", 70),
	}
	if charge.NormalFrom < 1 || charge.NormalFrom >= charge.IntenseFrom || charge.IntenseFrom > 100 {
		warnings = append(warnings, fmt.Sprintf("invalid charge bands %d/%d, fallback to 34/70", charge.NormalFrom, charge.IntenseFrom))
		charge.NormalFrom, charge.IntenseFrom = 34, 70
	}
	alerts := AlertConfig{
		OverloadScore:     envInt("ALERT_OVERLOAD_SCORE", 80),
		DayBudgetMax:      envFloat("ALERT_DAY_BUDGET_MAX", 100),
		WeekBudgetMax:     envFloat("ALERT_WEEK_BUDGET_MAX", 500),
		MaxMealsPerDay:    positiveOr(envInt("ALERT_MAX_MEALS_PER_DAY", 3), 3),
		MaxIntenseDays:    nonNegativeOr(envInt("ALERT_MAX_INTENSE_DAYS", 2), 2),
		UrgentHorizonDays: nonNegativeOr(envInt("ALERT_URGENT_HORIZON_DAYS", 2), 2),
	}

	// ---------- AI ----------
	aiMode := strings.ToLower(strings.TrimSpace(os.Getenv("AI_MODE")))
	if aiMode == "" {
		aiMode = AIModeMock
	}
	if aiMode != AIModeMock && aiMode != AIModeOpenAI && aiMode != AIModeGemini {
		warnings = append(warnings, fmt.Sprintf("unknown AI_MODE=%q, fallback to %s", aiMode, AIModeMock))
		aiMode = AIModeMock
	}

	aiMaxOutputTokens := positiveOr(envInt("AI_MAX_OUTPUT_TOKENS", 1200), 1200)

	aiTemperature := envFloat("AI_TEMPERATURE", 0.3)
	if aiTemperature < 0 {
		aiTemperature = 0
	}
	if aiTemperature > 2 {
		aiTemperature = 2
	}

	aiTimeoutSeconds := positiveOr(envInt("AI_TIMEOUT_SECONDS", 20), 20)
	aiRateLimitCalls := positiveOr(envInt("AI_RATE_LIMIT_CALLS", 10), 10)
	aiRateLimitWindow := positiveOr(envInt("AI_RATE_LIMIT_WINDOW_SECONDS", 3600), 3600)

	openAIAPIKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	openAIModel := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if openAIModel == "" {
		openAIModel = "gpt-4.1-mini"
	}
	geminiAPIKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	geminiModel := strings.TrimSpace(os.Getenv("GEMINI_MODEL"))
	if geminiModel == "" {
		geminiModel = "gemini-1.5-flash"
	}

	return &Config{
		Env:               env,
		Port:              port,
		LogLevel:          logLevel,
		DatabaseURL:       runtimeDB,
		DatabaseURLRaw:    dbURL,
		DatabaseURLPooled: dbPooled,
		DatabaseURLDirect: dbDirect,

		CORSAllowedOrigins:   parseCORSOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"), env),
		CORSAllowCredentials: os.Getenv("CORS_ALLOW_CREDENTIALS") == "1",

		RateLimitRPS:   envInt("RATE_LIMIT_RPS", 0),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 0),

		CacheMode:               cacheMode,
		RedisURL:                redisURL,
		WeekCacheTTLMinutes:     weekTTL,
		ProposalCacheTTLMinutes: proposalTTL,

		HouseholdTimeZone: tz,
		ChildName:         childName,

		Charge: charge,
		Alerts: alerts,

		AIMode:                   aiMode,
		AIMaxOutputTokens:        aiMaxOutputTokens,
		AITemperature:            aiTemperature,
		AITimeoutSeconds:         aiTimeoutSeconds,
		AIRateLimitCalls:         aiRateLimitCalls,
		AIRateLimitWindowSeconds: aiRateLimitWindow,
		OpenAIAPIKey:             openAIAPIKey,
		OpenAIModel:              openAIModel,
		GeminiAPIKey:             geminiAPIKey,
		GeminiModel:              geminiModel,

		RunMigrationsOnStartup: parseBoolEnv("RUN_MIGRATIONS_ON_STARTUP"),

		Warnings: warnings,
	}
}

// Validate reports the settings the API cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.AIMode == AIModeOpenAI && c.OpenAIAPIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is required when AI_MODE=openai"))
	}
	if c.AIMode == AIModeGemini && c.GeminiAPIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY is required when AI_MODE=gemini"))
	}
	return errors.Join(errs...)
}

// parseCORSOrigins parses CORS_ALLOWED_ORIGINS env var.
// In local mode, defaults to localhost origins if empty.
func parseCORSOrigins(raw, env string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if env == "local" {
			return []string{"http://localhost:3000", "http://localhost:8081"}
		}
		return nil // prod: deny by default
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// envInt reads an int env var with a default value.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultVal
	}
	return v
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func positiveOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func nonNegativeOr(v, fallback int) int {
	if v < 0 {
		return fallback
	}
	return v
}
