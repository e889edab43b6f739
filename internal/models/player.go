package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pulse-network/backend/internal/chain"
)

type Player struct {
	ID          uuid.UUID     `json:"id"`
	Address     string        `json:"address"`
	Family      chain.Family  `json:"family"`
	Network     chain.Network `json:"network"`
	DisplayName *string       `json:"display_name,omitempty"`
	FirstSeenAt time.Time     `json:"first_seen_at"`
	LastSeenAt  time.Time     `json:"last_seen_at"`
}
