package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pulse-network/backend/internal/http/dto"
	"github.com/pulse-network/backend/internal/leaderboard"
	"github.com/pulse-network/backend/internal/repositories"
)

type LeaderboardHandler struct {
	boards    *leaderboard.Service
	snapshots *repositories.SnapshotRepo
	log       *zap.Logger
}

func NewLeaderboardHandler(boards *leaderboard.Service, snapshots *repositories.SnapshotRepo, log *zap.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{boards: boards, snapshots: snapshots, log: log}
}

// Get serves one board. network=all returns a single board merged
// across every network, re-ranked over the combined entries. An
// optional address query slots the caller into the candidate set.
func (h *LeaderboardHandler) Get(c *fiber.Ctx) error {
	network := c.Query("network", string(leaderboard.FilterBaseMainnet))
	connected := c.Query("address", "")

	resp := dto.LeaderboardResponse{}
	if network == string(leaderboard.FilterAll) {
		board, err := h.boards.Merged(c.Context(), connected)
		if err != nil {
			h.log.Error("merged leaderboard unavailable", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: "leaderboard unavailable"})
		}
		resp.Boards = append(resp.Boards, board)
		return c.JSON(resp)
	}

	filter := leaderboard.Filter(network)
	if !knownFilter(filter) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "unknown network filter"})
	}

	board, err := h.boards.Get(c.Context(), filter, connected)
	if err != nil {
		h.log.Warn("leaderboard build failed, trying snapshot",
			zap.String("filter", string(filter)), zap.Error(err))
		board, err = h.snapshots.Latest(c.Context(), filter)
		if err != nil {
			h.log.Error("no snapshot available", zap.String("filter", string(filter)), zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: "leaderboard unavailable"})
		}
	}
	resp.Boards = append(resp.Boards, board)
	return c.JSON(resp)
}

func knownFilter(f leaderboard.Filter) bool {
	for _, known := range leaderboard.Filters() {
		if f == known {
			return true
		}
	}
	return false
}
