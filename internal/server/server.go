// Package server provides the HTTP server and routing for MasteringMarket.
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

	"github.com/masteringmarket/server/internal/config"
	"github.com/masteringmarket/server/internal/modules/auth"
	"github.com/masteringmarket/server/internal/modules/charts"
	"github.com/masteringmarket/server/internal/modules/chat"
	"github.com/masteringmarket/server/internal/modules/game"
	"github.com/masteringmarket/server/internal/modules/market"
	"github.com/masteringmarket/server/internal/modules/news"
)

// Config holds server configuration
type Config struct {
	Log      zerolog.Logger
	Config   *config.Config
	Sessions *auth.SessionStore

	AuthHandlers   *auth.Handler
	MarketHandlers *market.Handler
	ChartsHandlers *charts.Handler
	NewsHandlers   *news.Handler
	ChatHandlers   *chat.Handler
	GameHandlers   *game.Handler
	SystemHandlers *SystemHandlers
}

// Server represents the HTTP server
type Server struct {
	router   *chi.Mux
	server   *http.Server
	log      zerolog.Logger
	cfg      *config.Config
	sessions *auth.SessionStore

	authHandlers   *auth.Handler
	marketHandlers *market.Handler
	chartsHandlers *charts.Handler
	newsHandlers   *news.Handler
	chatHandlers   *chat.Handler
	gameHandlers   *game.Handler
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		cfg:            cfg.Config,
		sessions:       cfg.Sessions,
		authHandlers:   cfg.AuthHandlers,
		marketHandlers: cfg.MarketHandlers,
		chartsHandlers: cfg.ChartsHandlers,
		newsHandlers:   cfg.NewsHandlers,
		chatHandlers:   cfg.ChatHandlers,
		gameHandlers:   cfg.GameHandlers,
		systemHandlers: cfg.SystemHandlers,
	}

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	origins := s.cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check (outside /api for load balancers)
	s.router.Get("/health", s.systemHandlers.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/signup", s.authHandlers.HandleSignup)
		r.Post("/auth/login", s.authHandlers.HandleLogin)

		r.Get("/market/quotes", s.marketHandlers.HandleQuotes)
		r.Get("/market/stream", s.marketHandlers.HandleStream)
		r.Get("/charts/{symbol}", s.chartsHandlers.HandleChart)
		r.Get("/news", s.newsHandlers.HandleHeadlines)
		r.Get("/game/leaderboard", s.gameHandlers.HandleLeaderboard)
		r.Get("/system/health", s.systemHandlers.HandleHealth)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(s.sessions.RequireAuth)

			r.Post("/auth/logout", s.authHandlers.HandleLogout)

			r.Post("/chat", s.chatHandlers.HandleAsk)

			r.Get("/game/state", s.gameHandlers.HandleState)
			r.Post("/game/trade", s.gameHandlers.HandleTrade)
			r.Post("/game/scenario/trigger", s.gameHandlers.HandleTriggerScenario)
			r.Post("/game/scenario/end", s.gameHandlers.HandleEndScenario)
			r.Get("/game/scenario/advice", s.gameHandlers.HandleAdvice)
			r.Post("/game/score", s.gameHandlers.HandleRecordScore)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
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
			Dur("duration", time.Since(start)).
			Msg("Request")
	})
}
