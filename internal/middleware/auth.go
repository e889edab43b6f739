package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pulse-network/backend/internal/auth"
	"github.com/pulse-network/backend/internal/config"
)

const (
	CtxAddress  = "address"
	CtxChainID  = "chain_id"
	CtxDeviceID = "device_id"
)

func AuthMiddleware(cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
		}

		claims, err := auth.ParseJWT(cfg.JWTSecret, tokenStr)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		c.Locals(CtxAddress, claims.Address)
		c.Locals(CtxChainID, claims.ChainID)
		c.Locals(CtxDeviceID, claims.DeviceID)

		return c.Next()
	}
}

func GetAddress(c *fiber.Ctx) string {
	addr, _ := c.Locals(CtxAddress).(string)
	return addr
}

func GetChainID(c *fiber.Ctx) uint64 {
	id, _ := c.Locals(CtxChainID).(uint64)
	return id
}

func GetDeviceID(c *fiber.Ctx) string {
	id, _ := c.Locals(CtxDeviceID).(string)
	return id
}
