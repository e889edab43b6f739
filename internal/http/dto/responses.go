package dto

import (
	"github.com/pulse-network/backend/internal/chain"
	"github.com/pulse-network/backend/internal/leaderboard"
	"github.com/pulse-network/backend/internal/quest"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type AuthResponse struct {
	Token    string        `json:"token"`
	Address  string        `json:"address"`
	Display  string        `json:"display"`
	Family   chain.Family  `json:"family"`
	Network  chain.Network `json:"network"`
	LoggedIn bool          `json:"logged_in"`
}

type SessionResponse struct {
	LoggedIn      bool   `json:"logged_in"`
	Address       string `json:"address,omitempty"`
	StacksAddress string `json:"stacks_address,omitempty"`
}

// ActionResponse wraps a quest write outcome; combo fields reflect
// the caller's session-local combo tracker after the action.
type ActionResponse struct {
	chain.ActionResult
	ComboActive bool `json:"combo_active"`
}

type ProfileResponse struct {
	Profile        *chain.Profile     `json:"profile"`
	ActiveContract string             `json:"active_contract"`
	ContractInfo   *chain.ContractInfo `json:"contract_info,omitempty"`
	LastError      string             `json:"last_error,omitempty"`
}

type QuestStatus struct {
	quest.Quest
	Completed bool `json:"completed"`
}

type QuestsResponse struct {
	Quests         []QuestStatus `json:"quests"`
	CompletedCount int           `json:"completed_count"`
	ComboActive    bool          `json:"combo_active"`
	ComboAvailable bool          `json:"combo_available"`
}

type LeaderboardResponse struct {
	Boards []*leaderboard.Board `json:"boards"`
}
