package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pulse-network/backend/internal/config"
	"github.com/pulse-network/backend/internal/http/handlers"
	"github.com/pulse-network/backend/internal/middleware"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	questHandler *handlers.QuestHandler,
	leaderboardHandler *handlers.LeaderboardHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/login", authHandler.Login)

	// Rate-limited public endpoints
	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	// Meta (public, no auth required)
	metaHandler := handlers.NewMetaHandler()
	api.Get("/meta/quests", metaHandler.GetQuests)

	// Leaderboard (public, cached)
	api.Get("/leaderboard", leaderboardHandler.Get)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// Session lifecycle
	protected.Post("/auth/logout", authHandler.Logout)
	protected.Get("/auth/session", authHandler.Session)
	protected.Post("/auth/stacks/connect", authHandler.StacksConnect)
	protected.Delete("/auth/stacks", authHandler.StacksDisconnect)

	// Profile and quest board
	protected.Get("/me/profile", questHandler.Profile)
	protected.Get("/me/quests", questHandler.Quests)

	// Quest actions
	protected.Post("/quests/checkin", questHandler.Checkin)
	protected.Post("/quests/relay", questHandler.Relay)
	protected.Post("/quests/atmosphere", questHandler.Atmosphere)
	protected.Post("/quests/nudge", questHandler.Nudge)
	protected.Post("/quests/message", questHandler.Message)
	protected.Post("/quests/predict", questHandler.Predict)
	protected.Post("/quests/combo/claim", questHandler.ClaimCombo)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
