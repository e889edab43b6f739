package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pulse-network/backend/internal/auth"
	"github.com/pulse-network/backend/internal/chain"
	"github.com/pulse-network/backend/internal/chain/evm"
	"github.com/pulse-network/backend/internal/config"
	"github.com/pulse-network/backend/internal/http/dto"
	"github.com/pulse-network/backend/internal/leaderboard"
	"github.com/pulse-network/backend/internal/middleware"
	"github.com/pulse-network/backend/internal/models"
	"github.com/pulse-network/backend/internal/repositories"
)

type AuthHandler struct {
	playerRepo  *repositories.PlayerRepo
	addressRepo *repositories.AddressRepo
	sessions    *auth.SessionStore
	cfg         *config.Config
	log         *zap.Logger
}

func NewAuthHandler(
	playerRepo *repositories.PlayerRepo,
	addressRepo *repositories.AddressRepo,
	sessions *auth.SessionStore,
	cfg *config.Config,
	log *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		playerRepo:  playerRepo,
		addressRepo: addressRepo,
		sessions:    sessions,
		cfg:         cfg,
		log:         log,
	}
}

// Login binds a connected wallet address to a device, records the
// player, and issues a session token. The stored login marker lets
// the same address skip this step on a later visit.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.Address == "" || req.DeviceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "address and device_id are required"})
	}

	cls := chain.Classify(req.Address)
	if cls.Family == chain.FamilyUnknown {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "unrecognized address format"})
	}

	if _, err := h.playerRepo.UpsertByAddress(c.Context(), req.Address, cls.Family, cls.Network); err != nil {
		h.log.Error("failed to upsert player", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}
	for _, filter := range filtersForLogin(cls, req.ChainID) {
		if err := h.addressRepo.Register(c.Context(), req.Address, filter, models.AddressSourceConnected); err != nil {
			h.log.Warn("failed to register leaderboard candidate", zap.Error(err))
		}
	}

	if err := h.sessions.MarkLoggedIn(c.Context(), req.DeviceID, req.Address); err != nil {
		h.log.Error("failed to store login marker", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	token, err := auth.GenerateJWT(h.cfg.JWTSecret, req.Address, req.ChainID, req.DeviceID, h.cfg.JWTExpiration)
	if err != nil {
		h.log.Error("failed to generate jwt", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	return c.JSON(dto.AuthResponse{
		Token:    token,
		Address:  req.Address,
		Display:  chain.DisplayAddress(req.Address),
		Family:   cls.Family,
		Network:  cls.Network,
		LoggedIn: true,
	})
}

// Logout clears the device's login marker. The JWT itself stays
// valid until expiry; the marker is what gates the skip-login path.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	deviceID := middleware.GetDeviceID(c)
	if err := h.sessions.ClearLogin(c.Context(), deviceID); err != nil {
		h.log.Error("failed to clear login marker", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Session reports whether the device's stored marker matches the
// token's address, plus any resumable Stacks address.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	deviceID := middleware.GetDeviceID(c)
	address := middleware.GetAddress(c)

	loggedIn, err := h.sessions.IsLoggedIn(c.Context(), deviceID, address)
	if err != nil {
		h.log.Error("failed to read login marker", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}
	stacksAddr, err := h.sessions.StacksAddress(c.Context(), deviceID)
	if err != nil {
		h.log.Warn("failed to read stacks session", zap.Error(err))
	}

	resp := dto.SessionResponse{LoggedIn: loggedIn, StacksAddress: stacksAddr}
	if loggedIn {
		resp.Address = address
	}
	return c.JSON(resp)
}

// StacksConnect persists the device's dedicated Stacks session so it
// survives reloads and wins adapter selection on later requests.
func (h *AuthHandler) StacksConnect(c *fiber.Ctx) error {
	var req dto.StacksConnectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	cls := chain.Classify(req.Address)
	if cls.Family != chain.FamilyStacks {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "not a Stacks address"})
	}

	deviceID := middleware.GetDeviceID(c)
	if err := h.sessions.SaveStacksAddress(c.Context(), deviceID, req.Address); err != nil {
		h.log.Error("failed to store stacks session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	filter := leaderboard.FilterStacksMainnet
	if cls.Network == chain.NetworkTestnet {
		filter = leaderboard.FilterStacksTestnet
	}
	if err := h.addressRepo.Register(c.Context(), req.Address, filter, models.AddressSourceConnected); err != nil {
		h.log.Warn("failed to register leaderboard candidate", zap.Error(err))
	}

	return c.JSON(fiber.Map{"ok": true, "address": req.Address})
}

func (h *AuthHandler) StacksDisconnect(c *fiber.Ctx) error {
	deviceID := middleware.GetDeviceID(c)
	if err := h.sessions.ClearStacksAddress(c.Context(), deviceID); err != nil {
		h.log.Error("failed to clear stacks session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}
	return c.JSON(fiber.Map{"ok": true})
}

// filtersForLogin picks the leaderboard filters a fresh connection
// belongs to. EVM network comes from the chain id, not the address.
func filtersForLogin(cls chain.Classification, chainID uint64) []leaderboard.Filter {
	switch cls.Family {
	case chain.FamilyEVM:
		switch chainID {
		case evm.BaseMainnetChainID:
			return []leaderboard.Filter{leaderboard.FilterBaseMainnet}
		case evm.BaseSepoliaChainID:
			return []leaderboard.Filter{leaderboard.FilterBaseTestnet}
		default:
			return []leaderboard.Filter{leaderboard.FilterBaseMainnet, leaderboard.FilterBaseTestnet}
		}
	case chain.FamilyStacks:
		if cls.Network == chain.NetworkTestnet {
			return []leaderboard.Filter{leaderboard.FilterStacksTestnet}
		}
		return []leaderboard.Filter{leaderboard.FilterStacksMainnet}
	default:
		return nil
	}
}
