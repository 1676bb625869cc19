package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/soliloquy-hq/credo/internal/api/handlers"
	mw "github.com/soliloquy-hq/credo/internal/api/middleware"
	"github.com/soliloquy-hq/credo/internal/config"
	"github.com/soliloquy-hq/credo/internal/domain"
	"github.com/soliloquy-hq/credo/internal/opinion"
	"github.com/soliloquy-hq/credo/internal/service"
	"github.com/soliloquy-hq/credo/internal/store"
)

// App holds the wired router plus light request counters.
type App struct {
	Router       *chi.Mux
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	cardStore := store.NewCardStore(db)
	conflictStore := store.NewCardConflictStore(db)
	profileStore := store.NewProfileStore(db)
	cogConflictStore := store.NewCognitiveConflictStore(db)

	// Opinion collaborator via provider factory. Detection degrades to
	// no-conflict verdicts if initialization fails; the service stays up.
	opinionClient, err := opinion.NewClient(config.OpinionProvider(), config.OpinionAPIKey(), config.OpinionTimeout())
	if err != nil {
		logger.Warn("opinion client initialization failed",
			zap.String("provider", config.OpinionProvider()),
			zap.Error(err))
		opinionClient = opinion.NewMockClient()
	} else {
		logger.Info("opinion client initialized", zap.String("provider", config.OpinionProvider()))
	}

	// Services
	selector := service.NewCandidateSelector(cardStore, profileStore, conflictStore, cogConflictStore,
		config.TopicGateThreshold(), config.MaxCandidates(), logger)
	classifier := service.NewClassifier(opinionClient, logger)
	conflictSvc := service.NewConflictService(cardStore, conflictStore, selector, classifier, logger)
	profileSvc := service.NewProfileService(cardStore, profileStore, cogConflictStore, selector, classifier, opinionClient, logger)

	// Handlers
	cardHandler := handlers.NewCardHandler(cardStore, conflictSvc, profileSvc, logger)
	conflictHandler := handlers.NewConflictHandler(conflictSvc)
	profileHandler := handlers.NewProfileHandler(profileSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health and metrics (no owner scope)
	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())

	// Owner-scoped routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.OwnerScope)

		r.Route("/cards", func(r chi.Router) {
			r.Post("/", cardHandler.Create)
			r.Get("/", cardHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cardHandler.GetByID)
				r.Get("/conflicts", conflictHandler.ListByCard)
			})
		})

		r.Route("/conflicts", func(r chi.Router) {
			r.Post("/detect", conflictHandler.Detect)
			r.Get("/unresolved", conflictHandler.ListUnresolved)
			r.Get("/unresolved/count", conflictHandler.CountUnresolved)
			r.Post("/{id}/acknowledge", conflictHandler.Acknowledge)
		})

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", profileHandler.List)
			r.Post("/rebuild", profileHandler.Rebuild)
			r.Post("/detect", profileHandler.Detect)
			r.Route("/conflicts", func(r chi.Router) {
				r.Get("/", profileHandler.ListConflicts)
				r.Post("/{id}/acknowledge", profileHandler.AcknowledgeConflict)
				r.Post("/{id}/dismiss", profileHandler.DismissConflict)
			})
		})
	})

	return app
}

// NewRouter returns just the chi.Mux.
func NewRouter(db *pgxpool.Pool, logger *zap.Logger) *chi.Mux {
	return NewApp(db, logger).Router
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.CardStore              = (*store.CardStore)(nil)
	_ domain.CardConflictStore      = (*store.CardConflictStore)(nil)
	_ domain.ProfileStore           = (*store.ProfileStore)(nil)
	_ domain.CognitiveConflictStore = (*store.CognitiveConflictStore)(nil)
	_ domain.OpinionClient          = (*opinion.OpenAIClient)(nil)
	_ domain.OpinionClient          = (*opinion.AnthropicClient)(nil)
	_ domain.OpinionClient          = (*opinion.MockClient)(nil)
)
