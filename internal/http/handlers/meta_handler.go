package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pulse-network/backend/internal/quest"
)

type MetaHandler struct{}

func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

// GetQuests serves the static ten-quest catalog.
func (h *MetaHandler) GetQuests(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"quests": quest.Catalog()})
}
