// Package main is the entry point for the MasteringMarket learning platform.
// The server combines live market data, aggregated financial news, an AI
// stock-market assistant, and a paper-trading game with crash scenarios,
// challenges and a persisted leaderboard.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"google.golang.org/genai"

	"github.com/masteringmarket/server/internal/config"
	"github.com/masteringmarket/server/internal/database"
	"github.com/masteringmarket/server/internal/modules/advisor"
	"github.com/masteringmarket/server/internal/modules/auth"
	"github.com/masteringmarket/server/internal/modules/charts"
	"github.com/masteringmarket/server/internal/modules/chat"
	"github.com/masteringmarket/server/internal/modules/game"
	"github.com/masteringmarket/server/internal/modules/market"
	"github.com/masteringmarket/server/internal/modules/news"
	"github.com/masteringmarket/server/internal/scheduler"
	"github.com/masteringmarket/server/internal/server"
	"github.com/masteringmarket/server/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Int("port", cfg.Port).
		Str("data_dir", cfg.DataDir).
		Bool("ai_enabled", cfg.GeminiAPIKey != "").
		Msg("Starting MasteringMarket server")

	// Databases: durable user records and scores in users.db,
	// ephemeral quote snapshots in cache.db.
	usersDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "users.db"),
		Profile: database.ProfileLedger,
		Name:    "users",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open users database")
	}
	defer usersDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	// Auth
	userRepo := auth.NewRepository(usersDB.Conn(), log)
	if err := userRepo.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize users table")
	}
	sessions := auth.NewSessionStore()
	authService := auth.NewService(userRepo, sessions, log)

	// Market data
	snapshots := market.NewSnapshotRepository(cacheDB.Conn(), log)
	if err := snapshots.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize snapshot table")
	}
	marketService := market.NewService(market.NewYahooClient(log), snapshots, market.GameSymbols, log)

	// Background quote refresh keeps the cache warm and the snapshot fresh.
	sched := scheduler.New(log)
	if err := sched.AddJob("@every 5m", market.NewRefreshJob(marketService)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register refresh job")
	}
	sched.Start()
	defer sched.Stop()

	// Gemini client is shared by the chat assistant and the AI advisor.
	// Without an API key both degrade to canned replies and random scenarios.
	var genaiClient *genai.Client
	if cfg.GeminiAPIKey != "" {
		genaiClient, err = genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to create Gemini client, AI features disabled")
			genaiClient = nil
		}
	}

	var gemini *advisor.Gemini
	if genaiClient != nil {
		gemini = advisor.NewGemini(genaiClient, log)
	}
	advisorService := advisor.NewService(gemini, advisor.NewFallback(time.Now().UnixNano()), log)

	chatService := chat.NewService(genaiClient, marketService, log)
	newsService := news.NewService(cfg.NewsFeeds, log)
	chartsService := charts.NewService(marketService, log)

	// Game
	leaderboard := game.NewLeaderboardRepository(usersDB.Conn(), log)
	if err := leaderboard.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize leaderboard table")
	}
	gameSessions := game.NewManager(cfg.StartingCash, log)
	gameHandlers := game.NewHandler(gameSessions, marketService, advisorService, advisorService, leaderboard, log)

	srv := server.New(server.Config{
		Log:            log,
		Config:         cfg,
		Sessions:       sessions,
		AuthHandlers:   auth.NewHandler(authService, gameSessions, log),
		MarketHandlers: market.NewHandler(marketService, cfg.AllowOrigins, log),
		ChartsHandlers: charts.NewHandler(chartsService, log),
		NewsHandlers:   news.NewHandler(newsService, log),
		ChatHandlers:   chat.NewHandler(chatService, log),
		GameHandlers:   gameHandlers,
		SystemHandlers: server.NewSystemHandlers(log, usersDB, cacheDB),
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Warm the quote cache once at startup, off the critical path.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := marketService.Refresh(ctx); err != nil {
			log.Warn().Err(err).Msg("Initial quote refresh failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Server stopped")
}
