// Package chain defines the types shared by every per-chain contract
// adapter: address classification, the quest capability set, and the
// canonical profile shape the rest of the service consumes.
package chain

import "context"

// Family identifies which chain ecosystem an address belongs to.
type Family string

const (
	FamilyEVM     Family = "evm"
	FamilyStacks  Family = "stacks"
	FamilyUnknown Family = "unknown"
)

// Network distinguishes mainnet from test deployments.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
	NetworkUnknown Network = "unknown"
)

// ActionResult is the uniform outcome of a quest write. Adapter
// methods never return a Go error for transaction failures; wallet
// rejections, RPC failures and missing sessions all reduce to
// Success=false with a message.
type ActionResult struct {
	Success bool   `json:"success"`
	TxID    string `json:"tx_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Fail builds a failed ActionResult with the given message.
func Fail(msg string) ActionResult {
	return ActionResult{Success: false, Error: msg}
}

// Profile is the canonical user profile shape. Both adapters reshape
// their native profile representation into this type; numeric fields
// are plain ints regardless of the chain's native width.
type Profile struct {
	TotalPoints   int  `json:"total_points"`
	CurrentStreak int  `json:"current_streak"`
	LongestStreak int  `json:"longest_streak"`
	Level         int  `json:"level"`
	TotalCheckins int  `json:"total_checkins"`
	Exists        bool `json:"exists"`
}

// ContractInfo describes the deployment an adapter talks to.
type ContractInfo struct {
	ChainType       string  `json:"chain_type"`
	Network         Network `json:"network"`
	ContractAddress string  `json:"contract_address"`
	ExplorerURL     string  `json:"explorer_url"`
}

// Adapter is the capability set every per-chain backend implements.
// Write methods resolve deterministically: every call returns a
// settled ActionResult, there is no pending state visible to callers.
// RefreshData surfaces read errors through LastError rather than a
// return value; IsQuestCompleted is a pure read against the bitmap
// cached by the most recent RefreshData and returns false when no
// data has been fetched for the sender.
type Adapter interface {
	Family() Family

	DailyCheckin(ctx context.Context, sender string) ActionResult
	RelaySignal(ctx context.Context, sender string) ActionResult
	UpdateAtmosphere(ctx context.Context, sender string, weatherCode uint) ActionResult
	NudgeFriend(ctx context.Context, sender, recipient string) ActionResult
	CommitMessage(ctx context.Context, sender, text string) ActionResult
	PredictPulse(ctx context.Context, sender string, level uint) ActionResult
	ClaimDailyCombo(ctx context.Context, sender string) ActionResult

	RefreshData(ctx context.Context, sender string)
	IsQuestCompleted(sender string, questID int) bool
	Profile(sender string) (Profile, bool)
	LastError() string
}

// ComboChecker is implemented by adapters whose contract exposes an
// on-chain combo availability check. The Stacks contract has no such
// function, so its availability is recomputed locally by the facade.
type ComboChecker interface {
	CanClaimCombo(ctx context.Context, sender string) (bool, error)
}
