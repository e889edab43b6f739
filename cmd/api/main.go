package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pulse-network/backend/internal/auth"
	"github.com/pulse-network/backend/internal/config"
	"github.com/pulse-network/backend/internal/db"
	"github.com/pulse-network/backend/internal/events"
	apphttp "github.com/pulse-network/backend/internal/http"
	"github.com/pulse-network/backend/internal/http/dto"
	"github.com/pulse-network/backend/internal/http/handlers"
	"github.com/pulse-network/backend/internal/quest"
	"github.com/pulse-network/backend/internal/repositories"
	"github.com/pulse-network/backend/internal/services"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, int32(cfg.PostgresMaxConns), log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	playerRepo := repositories.NewPlayerRepo(pool)
	addressRepo := repositories.NewAddressRepo(pool)
	snapshotRepo := repositories.NewSnapshotRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Sessions and combo tracking
	sessions := auth.NewSessionStore(rdb, cfg.SessionTTL)
	combos := quest.NewComboRegistry()

	// Chain adapters and leaderboard
	chains, err := services.BuildChains(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to set up chain adapters", zap.Error(err))
	}
	boards := services.BuildLeaderboard(cfg, chains, addressRepo, rdb, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(playerRepo, addressRepo, sessions, cfg, log)
	questHandler := handlers.NewQuestHandler(chains.Facade, sessions, combos, publisher, log)
	leaderboardHandler := handlers.NewLeaderboardHandler(boards, snapshotRepo, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(dto.ErrorResponse{
				Error:     err.Error(),
				RequestID: c.GetRespHeader("X-Request-ID"),
			})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, authHandler, questHandler, leaderboardHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
