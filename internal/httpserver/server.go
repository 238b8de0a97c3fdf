package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/fdg312/family-hub/internal/ai"
	"github.com/fdg312/family-hub/internal/cache"
	"github.com/fdg312/family-hub/internal/config"
	"github.com/fdg312/family-hub/internal/entries"
	"github.com/fdg312/family-hub/internal/storage"
	"github.com/fdg312/family-hub/internal/storage/memory"
	"github.com/fdg312/family-hub/internal/storage/postgres"
	"github.com/fdg312/family-hub/internal/suggestions"
	"github.com/fdg312/family-hub/internal/telemetry"
	"github.com/fdg312/family-hub/internal/weekview"
)

// Server представляет HTTP сервер
type Server struct {
	config   *config.Config
	mux      *http.ServeMux
	storage  storage.HouseholdStorage
	cache    cache.Store
	provider ai.Provider
	registry *prometheus.Registry
	logger   *logrus.Logger
	http     *http.Server
}

// New создаёт новый HTTP сервер
func New(cfg *config.Config, logger *logrus.Logger) *Server {
	s := &Server{
		config:   cfg,
		mux:      http.NewServeMux(),
		registry: prometheus.NewRegistry(),
		logger:   logger,
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ctx := context.Background()

	// Инициализируем storage, кэш и AI провайдер
	s.initStorage(ctx)
	s.cache = cache.NewFromConfig(ctx, cfg, logger)
	s.initProvider(ctx)

	// Регистрируем маршруты
	s.routes()

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// initStorage инициализирует storage (Memory или Postgres)
func (s *Server) initStorage(ctx context.Context) {
	if s.config.DatabaseURL == "" {
		s.logger.Info("using in-memory storage")
		s.storage = memory.New()
		return
	}

	s.logger.Info("connecting to PostgreSQL")
	pgStorage, err := postgres.New(ctx, s.config.DatabaseURL)
	if err != nil {
		s.logger.WithError(err).Warn("PostgreSQL unavailable, falling back to in-memory storage")
		s.storage = memory.New()
		return
	}
	s.logger.Info("PostgreSQL connected")
	s.storage = pgStorage
}

// initProvider выбирает AI провайдер; при ошибке используется mock
func (s *Server) initProvider(ctx context.Context) {
	provider, err := ai.NewProvider(ctx, s.config)
	if err != nil {
		s.logger.WithError(err).WithField("ai_mode", s.config.AIMode).Warn("AI provider init failed, using mock")
		provider = ai.NewMockProvider()
	}
	s.provider = provider
}

// routes регистрирует маршруты
func (s *Server) routes() {
	metrics := telemetry.New(s.registry)

	location, err := time.LoadLocation(s.config.HouseholdTimeZone)
	if err != nil {
		s.logger.WithError(err).WithField("tz", s.config.HouseholdTimeZone).Warn("unknown household time zone, using UTC")
		location = time.UTC
	}

	// Week view
	loaders := weekview.NewLoaders(s.storage, s.logger)
	weekService := weekview.NewService(
		loaders,
		weekview.WeightsFromConfig(s.config.Charge),
		weekview.RulesFromConfig(s.config.Alerts, s.config.ChildName),
		location,
		metrics,
		s.logger,
	)
	weekTTL := time.Duration(s.config.WeekCacheTTLMinutes) * time.Minute
	weekCache := weekview.NewCache(s.cache, weekService, weekTTL, metrics, s.logger)
	weekHandler := weekview.NewHandler(weekCache)

	// AI proposals
	generator := suggestions.NewGenerator(s.provider, s.cache, weekCache, suggestions.OptionsFromConfig(s.config), metrics, s.logger)
	proposalHandler := suggestions.NewHandler(generator, suggestions.HouseholdContext{ChildName: s.config.ChildName})

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))

	// GET /v1/weeks/{start} - consolidated week view (cached)
	s.mux.HandleFunc("GET /v1/weeks/{start}", weekHandler.HandleGet)
	// DELETE /v1/weeks/{start}/cache - drop the cached view
	s.mux.HandleFunc("DELETE /v1/weeks/{start}/cache", weekHandler.HandleInvalidate)
	// POST /v1/weeks/{start}/proposal - AI week proposal
	s.mux.HandleFunc("POST /v1/weeks/{start}/proposal", proposalHandler.HandleGenerate)

	// CRUD: meals, activities, events, projects, routines
	entries.NewServices(s.storage, weekCache, s.logger).Register(s.mux)
}

// handleHealthz возвращает статус сервера
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// Handler собирает цепочку middleware (внешняя первой): CORS → Rate Limit → Router
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	return handler
}

// Start запускает HTTP сервер и блокируется до Shutdown
func (s *Server) Start() error {
	addr := s.http.Addr
	s.logger.WithFields(logrus.Fields{
		"addr":    addr,
		"healthz": fmt.Sprintf("http://localhost%s/healthz", addr),
		"weeks":   fmt.Sprintf("http://localhost%s/v1/weeks/{start}", addr),
	}).Info("server started")

	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown останавливает приём запросов и ждёт завершения активных
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Close закрывает провайдер, кэш и storage
func (s *Server) Close() error {
	var errs []error
	if s.provider != nil {
		errs = append(errs, s.provider.Close())
	}
	if s.cache != nil {
		errs = append(errs, s.cache.Close())
	}
	if s.storage != nil {
		errs = append(errs, s.storage.Close())
	}
	return errors.Join(errs...)
}
