// Package quest holds the fixed quest catalog, the daily completion
// bitmap, and the combo bonus evaluator.
package quest

// Quest ids are 1-indexed and stable; bit (id-1) of the daily bitmap
// tracks completion.
const (
	DailyCheckin     = 1
	RelaySignal      = 2
	UpdateAtmosphere = 3
	NudgeFriend      = 4
	MintHourBadge    = 5
	CommitMessage    = 6
	StakeForStreak   = 7
	ClaimMilestone   = 8
	PredictPulse     = 9
	OpenCapsule      = 10

	Count = 10
)

// Quest describes one entry of the daily catalog.
type Quest struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	StreakRisk  bool   `json:"streak_risk,omitempty"`
}

var catalog = []Quest{
	{ID: DailyCheckin, Name: "Daily Check-In", Description: "Secure your streak & get Pulse Points.", Points: 50},
	{ID: RelaySignal, Name: "Relay Signal", Description: "Pass the torch to another timezone.", Points: 100},
	{ID: UpdateAtmosphere, Name: "Update Atmosphere", Description: "Sync local weather to chain.", Points: 30},
	{ID: NudgeFriend, Name: "Nudge Friend", Description: "Ping a friend to save their streak.", Points: 40},
	{ID: MintHourBadge, Name: "Mint Hour Badge", Description: "Collect unique hour stamps.", Points: 60},
	{ID: CommitMessage, Name: "Commit Message", Description: "Etch your mood on the ticker.", Points: 20},
	{ID: StakeForStreak, Name: "Stake for Streak", Description: "High risk, high reward.", Points: 200, StreakRisk: true},
	{ID: ClaimMilestone, Name: "Claim Milestone", Description: "Evolve your profile level.", Points: 500},
	{ID: PredictPulse, Name: "Predict Pulse", Description: "Vote on tomorrow's activity.", Points: 80},
	{ID: OpenCapsule, Name: "Open Capsule", Description: "Reveal long-term rewards.", Points: 1000},
}

// Catalog returns the full ten-quest catalog in id order.
func Catalog() []Quest {
	out := make([]Quest, len(catalog))
	copy(out, catalog)
	return out
}

// Points returns the point value for a quest id, 0 for unknown ids.
func Points(questID int) int {
	if questID < 1 || questID > Count {
		return 0
	}
	return catalog[questID-1].Points
}
