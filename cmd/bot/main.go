// Command bot is the Matchwatch service: the Telegram front-end, the match
// poll loop, and the internal ops API.
//
// Usage:
//
//	matchwatch-bot
//	API_PORT=8090 matchwatch-bot
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/joho/godotenv"

	"github.com/kxbet/matchwatch/internal/api"
	"github.com/kxbet/matchwatch/internal/bot"
	"github.com/kxbet/matchwatch/internal/config"
	"github.com/kxbet/matchwatch/internal/db"
	"github.com/kxbet/matchwatch/internal/footballdata"
	"github.com/kxbet/matchwatch/internal/notify"
	"github.com/kxbet/matchwatch/internal/poller"
	"github.com/kxbet/matchwatch/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Debug {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(logger)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Open the subscription store
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open subscription store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// Provider client
	matches := footballdata.NewClient(cfg.FootballDataToken, cfg.ProviderRPM, logger)

	// Telegram client, shared by the front-end and the notifier
	tg, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Error("Failed to connect to Telegram", "error", err)
		os.Exit(1)
	}
	logger.Info("Telegram connected", "bot", tg.Self.UserName)

	// Start the poll loop
	p := poller.New(st, matches, notify.NewTelegramNotifier(tg), cfg, logger)
	go p.Run(ctx)

	// Start the command front-end
	front := bot.New(tg, st, matches, cfg.MenuMatches, logger)
	go func() {
		if err := front.Run(ctx); err != nil {
			logger.Error("Telegram front-end failed", "error", err)
			cancel()
		}
	}()

	// Ops API server
	router := api.NewRouter(st, front.ListingCache(), cfg)
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting ops API", "addr", addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Ops API failed", "error", err)
			cancel()
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Service stopped")
}

// openStore picks the Postgres store when DATABASE_URL is set, the JSON
// file store otherwise.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	if !cfg.UsePostgres() {
		logger.Info("Using file store", "path", cfg.StorePath)
		return store.NewFileStore(cfg.StorePath), nil
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("Using Postgres store",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)
	return store.NewPostgresStore(pool), nil
}
