package models

import (
	"time"

	"github.com/google/uuid"
)

// Address sources for the leaderboard candidate set.
const (
	AddressSourceSeed       = "seed"
	AddressSourceConnected  = "connected"
	AddressSourceDiscovered = "discovered"
)

// RegisteredAddress is one leaderboard candidate for a network
// filter.
type RegisteredAddress struct {
	ID        uuid.UUID `json:"id"`
	Address   string    `json:"address"`
	Filter    string    `json:"filter"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// LeaderboardSnapshot is a serialized board kept for history and for
// serving when every upstream read fails.
type LeaderboardSnapshot struct {
	ID        uuid.UUID `json:"id"`
	Filter    string    `json:"filter"`
	Board     []byte    `json:"-"`
	FetchedAt time.Time `json:"fetched_at"`
}
