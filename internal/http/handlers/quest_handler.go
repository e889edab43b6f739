package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pulse-network/backend/internal/auth"
	"github.com/pulse-network/backend/internal/chain"
	"github.com/pulse-network/backend/internal/events"
	"github.com/pulse-network/backend/internal/facade"
	"github.com/pulse-network/backend/internal/http/dto"
	"github.com/pulse-network/backend/internal/middleware"
	"github.com/pulse-network/backend/internal/quest"
)

type QuestHandler struct {
	facade    *facade.Facade
	sessions  *auth.SessionStore
	combos    *quest.ComboRegistry
	publisher events.Publisher
	log       *zap.Logger
}

func NewQuestHandler(
	f *facade.Facade,
	sessions *auth.SessionStore,
	combos *quest.ComboRegistry,
	publisher events.Publisher,
	log *zap.Logger,
) *QuestHandler {
	return &QuestHandler{
		facade:    f,
		sessions:  sessions,
		combos:    combos,
		publisher: publisher,
		log:       log,
	}
}

// connState rebuilds the selection inputs from the request's claims
// and the device's stored Stacks session.
func (h *QuestHandler) connState(c *fiber.Ctx) facade.ConnState {
	deviceID := middleware.GetDeviceID(c)
	stacksAddr, err := h.sessions.StacksAddress(c.Context(), deviceID)
	if err != nil {
		h.log.Warn("failed to read stacks session", zap.Error(err))
	}
	return facade.ConnState{
		StacksSessionActive:  stacksAddr != "",
		StacksSessionAddress: stacksAddr,
		ConnectedAddress:     middleware.GetAddress(c),
		ChainID:              middleware.GetChainID(c),
	}
}

// perform runs one quest action, feeds the session combo tracker on
// success, and publishes the activity event.
func (h *QuestHandler) perform(c *fiber.Ctx, questID int, action func(facade.ConnState) chain.ActionResult) error {
	state := h.connState(c)
	active, sender := h.facade.Select(state)

	result := action(state)

	tracker := h.combos.For(sender)
	if result.Success {
		wasActive := tracker.Active()
		tracker.RecordCompletion(questID, time.Now())

		event := events.QuestCompleted(sender, questID, quest.Points(questID), result.TxID, string(active))
		if err := h.publisher.Publish(c.Context(), events.StreamQuest, event); err != nil {
			h.log.Warn("failed to publish quest event", zap.Error(err))
		}
		if !wasActive && tracker.Active() {
			if err := h.publisher.Publish(c.Context(), events.StreamQuest, events.ComboActivated(sender)); err != nil {
				h.log.Warn("failed to publish combo event", zap.Error(err))
			}
		}
	}

	return c.JSON(dto.ActionResponse{ActionResult: result, ComboActive: tracker.Active()})
}

func (h *QuestHandler) Checkin(c *fiber.Ctx) error {
	return h.perform(c, quest.DailyCheckin, func(state facade.ConnState) chain.ActionResult {
		return h.facade.DailyCheckin(c.Context(), state)
	})
}

func (h *QuestHandler) Relay(c *fiber.Ctx) error {
	return h.perform(c, quest.RelaySignal, func(state facade.ConnState) chain.ActionResult {
		return h.facade.RelaySignal(c.Context(), state)
	})
}

func (h *QuestHandler) Atmosphere(c *fiber.Ctx) error {
	var req dto.AtmosphereRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	return h.perform(c, quest.UpdateAtmosphere, func(state facade.ConnState) chain.ActionResult {
		return h.facade.UpdateAtmosphere(c.Context(), state, req.WeatherCode)
	})
}

func (h *QuestHandler) Nudge(c *fiber.Ctx) error {
	var req dto.NudgeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.Recipient == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "recipient is required"})
	}
	return h.perform(c, quest.NudgeFriend, func(state facade.ConnState) chain.ActionResult {
		return h.facade.NudgeFriend(c.Context(), state, req.Recipient)
	})
}

func (h *QuestHandler) Message(c *fiber.Ctx) error {
	var req dto.MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "text is required"})
	}
	if len(req.Text) > 280 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "text exceeds 280 characters"})
	}
	return h.perform(c, quest.CommitMessage, func(state facade.ConnState) chain.ActionResult {
		return h.facade.CommitMessage(c.Context(), state, req.Text)
	})
}

func (h *QuestHandler) Predict(c *fiber.Ctx) error {
	var req dto.PredictRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	return h.perform(c, quest.PredictPulse, func(state facade.ConnState) chain.ActionResult {
		return h.facade.PredictPulse(c.Context(), state, req.Level)
	})
}

// ClaimCombo submits the on-chain bonus claim. It is not a quest,
// so it does not feed the combo tracker.
func (h *QuestHandler) ClaimCombo(c *fiber.Ctx) error {
	state := h.connState(c)
	active, sender := h.facade.Select(state)

	result := h.facade.ClaimDailyCombo(c.Context(), state)
	if result.Success {
		event := events.ComboClaimed(sender, result.TxID, string(active))
		if err := h.publisher.Publish(c.Context(), events.StreamQuest, event); err != nil {
			h.log.Warn("failed to publish combo claim event", zap.Error(err))
		}
	}
	return c.JSON(dto.ActionResponse{ActionResult: result, ComboActive: h.combos.For(sender).Active()})
}

// Profile refreshes and returns the canonical profile for the
// selected backend.
func (h *QuestHandler) Profile(c *fiber.Ctx) error {
	state := h.connState(c)
	active, _ := h.facade.Select(state)

	h.facade.RefreshData(c.Context(), state)

	resp := dto.ProfileResponse{
		ActiveContract: string(active),
		LastError:      h.facade.LastError(state),
	}
	if profile, ok := h.facade.Profile(state); ok {
		resp.Profile = &profile
	}
	if info, ok := h.facade.ContractInfo(state); ok {
		resp.ContractInfo = &info
	}
	return c.JSON(resp)
}

// Quests returns the catalog with per-quest completion plus the
// session's combo state.
func (h *QuestHandler) Quests(c *fiber.Ctx) error {
	state := h.connState(c)
	_, sender := h.facade.Select(state)

	h.facade.RefreshData(c.Context(), state)

	resp := dto.QuestsResponse{ComboActive: h.combos.For(sender).Active()}
	for _, q := range quest.Catalog() {
		completed := h.facade.IsQuestCompleted(state, q.ID)
		if completed {
			resp.CompletedCount++
		}
		resp.Quests = append(resp.Quests, dto.QuestStatus{Quest: q, Completed: completed})
	}

	available, err := h.facade.CheckComboAvailable(c.Context(), state)
	if err != nil {
		h.log.Debug("combo availability check failed", zap.Error(err))
	}
	resp.ComboAvailable = available

	return c.JSON(resp)
}
