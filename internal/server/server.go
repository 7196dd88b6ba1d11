package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/jswierk/allocator/internal/config"
	"github.com/jswierk/allocator/internal/database"
	"github.com/jswierk/allocator/internal/modules/contributions"
	"github.com/jswierk/allocator/internal/modules/gaps"
	"github.com/jswierk/allocator/internal/modules/history"
	"github.com/jswierk/allocator/internal/modules/optimization"
	"github.com/jswierk/allocator/internal/modules/portfolio"
	"github.com/jswierk/allocator/internal/modules/rebalancing"
	"github.com/jswierk/allocator/internal/modules/riskprofile"
	"github.com/jswierk/allocator/internal/modules/views"
)

// Config holds server configuration
type Config struct {
	Port    int
	Log     zerolog.Logger
	DB      *database.DB
	Config  *config.Config
	DevMode bool
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	cfg    *config.Config

	optimizationHandler *optimization.Handler
	historyHandler      *history.Handler
	gapsHandler         *gaps.Handler
	contributionHandler *contributions.Handler
	rebalancingHandler  *rebalancing.Handler
	riskProfileHandler  *riskprofile.Handler
	portfolioHandler    *portfolio.Handler
}

// New creates a new HTTP server with all module handlers wired
func New(cfg Config) *Server {
	log := cfg.Log

	historyRepo := history.NewRepository(cfg.DB.Conn(), log)

	viewSettings := views.Settings{
		Enabled:   cfg.Config.UseViews,
		ReturnMin: cfg.Config.ExpectedReturnMin,
		ReturnMax: cfg.Config.ExpectedReturnMax,
	}

	s := &Server{
		router: chi.NewRouter(),
		log:    log.With().Str("component", "server").Logger(),
		cfg:    cfg.Config,

		optimizationHandler: optimization.NewHandler(
			optimization.NewService(log), historyRepo, viewSettings, log),
		historyHandler: history.NewHandler(historyRepo, log),
		gapsHandler:    gaps.NewHandler(gaps.NewAnalyzer(log), log),
		contributionHandler: contributions.NewHandler(
			contributions.NewAllocator(log), cfg.Config.MinAllocationEUR, log),
		rebalancingHandler: rebalancing.NewHandler(
			rebalancing.NewChecker(log), cfg.Config.RebalanceThreshold, log),
		riskProfileHandler: riskprofile.NewHandler(log),
		portfolioHandler:   portfolio.NewHandler(log),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.handleSystemStatus)
		})

		r.Route("/optimize", func(r chi.Router) {
			r.Post("/", s.optimizationHandler.HandleOptimize)
			r.Get("/history", s.historyHandler.HandleList)
			r.Post("/gap-analysis", s.gapsHandler.HandleAnalyze)
			r.Post("/allocate", s.contributionHandler.HandleAllocate)
			r.Post("/rebalance-check", s.rebalancingHandler.HandleCheck)
		})

		r.Route("/portfolio", func(r chi.Router) {
			r.Post("/validate", s.portfolioHandler.HandleValidate)
		})

		r.Route("/crra", func(r chi.Router) {
			r.Post("/calculate", s.riskProfileHandler.HandleCalculate)
			r.Post("/interpret", s.riskProfileHandler.HandleInterpret)
			r.Get("/scale", s.riskProfileHandler.HandleScale)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
