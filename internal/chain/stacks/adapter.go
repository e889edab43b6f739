package stacks

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/pulse-network/backend/internal/chain"
	"github.com/pulse-network/backend/internal/quest"
)

// Contract function names on the pulse Clarity contract.
const (
	fnDailyCheckin     = "daily-checkin"
	fnRelaySignal      = "relay-signal"
	fnUpdateAtmosphere = "update-atmosphere"
	fnNudgeFriend      = "nudge-friend"
	fnCommitMessage    = "commit-message"
	fnPredictPulse     = "predict-pulse"
	fnClaimDailyCombo  = "claim-daily-combo-bonus"

	fnGetUserProfile    = "get-user-profile"
	fnGetDay            = "get-day"
	fnDailyQuestStatus  = "get-daily-quest-status"
	fnHasCompletedToday = "has-completed-quest-today"
)

// ReadStrategy selects how the daily quest bitmap is reconstructed.
// Newer contract deployments expose a combined read returning the
// bitmap in one call; older ones only answer per-quest queries. Both
// strategies must produce bit-identical results.
type ReadStrategy string

const (
	ReadCombined   ReadStrategy = "combined"
	ReadSequential ReadStrategy = "sequential"
)

// Endpoint describes one Stacks deployment.
type Endpoint struct {
	APIURL          string
	ContractAddress string
	ContractName    string
	ExplorerURL     string
}

// ContractID is the fully qualified contract identifier.
func (e Endpoint) ContractID() string {
	return e.ContractAddress + "." + e.ContractName
}

type stacksSnapshot struct {
	profile chain.Profile
	bitmap  quest.Bitmap
}

// Adapter implements the quest capability set against the Stacks
// deployment. Profile and bitmap reads go through the node's
// unauthenticated call-read API; writes are submitted over the wallet
// session if one is attached.
type Adapter struct {
	network  chain.Network
	endpoint Endpoint
	client   *CallReadClient
	session  WalletSession
	strategy ReadStrategy
	log      *zap.Logger

	mu        sync.RWMutex
	snapshots map[string]stacksSnapshot
	lastErr   string
}

func NewAdapter(endpoint Endpoint, network chain.Network, session WalletSession, strategy ReadStrategy, log *zap.Logger) *Adapter {
	if strategy == "" {
		strategy = ReadCombined
	}
	return &Adapter{
		network:   network,
		endpoint:  endpoint,
		client:    NewCallReadClient(endpoint.APIURL, log),
		session:   session,
		strategy:  strategy,
		log:       log,
		snapshots: make(map[string]stacksSnapshot),
	}
}

func (a *Adapter) Family() chain.Family { return chain.FamilyStacks }

func (a *Adapter) Network() chain.Network { return a.network }

func (a *Adapter) ContractInfo() chain.ContractInfo {
	return chain.ContractInfo{
		ChainType:       "stacks",
		Network:         a.network,
		ContractAddress: a.endpoint.ContractID(),
		ExplorerURL:     a.endpoint.ExplorerURL,
	}
}

// call submits one public-function transaction through the wallet
// session. Every failure mode reduces to a failed ActionResult.
func (a *Adapter) call(ctx context.Context, function string, args []string) chain.ActionResult {
	if a.session == nil {
		return chain.Fail("wallet session missing")
	}
	txID, err := a.session.CallContract(ctx, ContractCallRequest{
		Contract:     a.endpoint.ContractID(),
		FunctionName: function,
		FunctionArgs: args,
	})
	if err != nil {
		a.setErr(err)
		a.log.Debug("stacks write failed", zap.String("function", function), zap.Error(err))
		return chain.Fail(err.Error())
	}
	a.clearErr()
	return chain.ActionResult{Success: true, TxID: txID}
}

func (a *Adapter) DailyCheckin(ctx context.Context, _ string) chain.ActionResult {
	return a.call(ctx, fnDailyCheckin, nil)
}

func (a *Adapter) RelaySignal(ctx context.Context, _ string) chain.ActionResult {
	return a.call(ctx, fnRelaySignal, nil)
}

func (a *Adapter) UpdateAtmosphere(ctx context.Context, _ string, weatherCode uint) chain.ActionResult {
	return a.call(ctx, fnUpdateAtmosphere, []string{UintCV(uint64(weatherCode))})
}

func (a *Adapter) NudgeFriend(ctx context.Context, _ string, recipient string) chain.ActionResult {
	arg, err := PrincipalCV(recipient)
	if err != nil {
		return chain.Fail(fmt.Sprintf("invalid recipient: %v", err))
	}
	return a.call(ctx, fnNudgeFriend, []string{arg})
}

func (a *Adapter) CommitMessage(ctx context.Context, _ string, text string) chain.ActionResult {
	return a.call(ctx, fnCommitMessage, []string{StringASCIICV(text)})
}

func (a *Adapter) PredictPulse(ctx context.Context, _ string, level uint) chain.ActionResult {
	return a.call(ctx, fnPredictPulse, []string{UintCV(uint64(level))})
}

func (a *Adapter) ClaimDailyCombo(ctx context.Context, _ string) chain.ActionResult {
	return a.call(ctx, fnClaimDailyCombo, nil)
}

// RefreshData pulls the sender's profile tuple and reconstructs the
// daily bitmap with the configured strategy. Read failures land on
// the error side channel; the cached snapshot keeps its last value.
func (a *Adapter) RefreshData(ctx context.Context, sender string) {
	principal, err := PrincipalCV(sender)
	if err != nil {
		a.setErr(err)
		return
	}

	snap := stacksSnapshot{profile: chain.Profile{Level: 1}}

	result, err := a.client.CallRead(ctx, a.endpoint.ContractAddress, a.endpoint.ContractName, fnGetUserProfile, sender, []string{principal})
	if err != nil {
		a.setErr(err)
		a.log.Warn("stacks profile read failed", zap.String("sender", sender), zap.Error(err))
		return
	}

	switch tuple, status := ParseProfileTuple(result); status {
	case ParseSome:
		snap.profile = chain.Profile{
			TotalPoints:   int(tuple.TotalPoints),
			CurrentStreak: int(tuple.CurrentStreak),
			LongestStreak: int(tuple.LongestStreak),
			Level:         int(tuple.Level),
			TotalCheckins: int(tuple.TotalCheckins),
			Exists:        true,
		}
	case ParseNone:
		// New user: default profile, exists=false.
	case ParseMalformed:
		a.setErr(fmt.Errorf("malformed profile response"))
		return
	}

	bitmap, err := a.fetchBitmap(ctx, sender, principal)
	if err != nil {
		a.setErr(err)
		a.log.Warn("stacks bitmap read failed", zap.String("sender", sender), zap.Error(err))
		return
	}
	snap.bitmap = bitmap

	a.mu.Lock()
	a.snapshots[sender] = snap
	a.lastErr = ""
	a.mu.Unlock()
}

func (a *Adapter) fetchBitmap(ctx context.Context, sender, principal string) (quest.Bitmap, error) {
	if a.strategy == ReadSequential {
		return a.fetchBitmapSequential(ctx, sender, principal)
	}
	return a.fetchBitmapCombined(ctx, sender, principal)
}

// fetchBitmapCombined asks the contract for the current day, then for
// that day's quest-status tuple, which carries the pre-computed
// bitmap.
func (a *Adapter) fetchBitmapCombined(ctx context.Context, sender, principal string) (quest.Bitmap, error) {
	dayHex, err := a.client.CallRead(ctx, a.endpoint.ContractAddress, a.endpoint.ContractName, fnGetDay, sender, nil)
	if err != nil {
		return 0, err
	}
	dayCV, err := DecodeHexCV(dayHex)
	if err != nil {
		return 0, fmt.Errorf("malformed get-day response: %w", err)
	}
	if dayCV.Type == tagResponseOk && dayCV.Inner != nil {
		dayCV = *dayCV.Inner
	}
	if dayCV.Type != tagUint || dayCV.Uint == 0 {
		return 0, nil
	}

	statusHex, err := a.client.CallRead(ctx, a.endpoint.ContractAddress, a.endpoint.ContractName, fnDailyQuestStatus, sender,
		[]string{principal, UintCV(dayCV.Uint)})
	if err != nil {
		return 0, err
	}
	if statusHex == hexNone {
		return 0, nil
	}
	tuple, status := ParseProfileTuple(statusHex)
	if status == ParseMalformed {
		return 0, fmt.Errorf("malformed quest-status response")
	}
	if status == ParseNone {
		return 0, nil
	}
	return quest.Bitmap(tuple.CompletedQuests), nil
}

// fetchBitmapSequential asks has-completed-quest-today once per quest
// and ORs the answers into a bitmap. Output is bit-identical to the
// combined read for the same on-chain truth.
func (a *Adapter) fetchBitmapSequential(ctx context.Context, sender, principal string) (quest.Bitmap, error) {
	var bitmap quest.Bitmap
	for id := 1; id <= quest.Count; id++ {
		result, err := a.client.CallRead(ctx, a.endpoint.ContractAddress, a.endpoint.ContractName, fnHasCompletedToday, sender,
			[]string{principal, UintCV(uint64(id))})
		if err != nil {
			return 0, err
		}
		cv, err := DecodeHexCV(result)
		if err != nil {
			return 0, fmt.Errorf("malformed quest %d status: %w", id, err)
		}
		if cv.Type == tagResponseOk && cv.Inner != nil {
			cv = *cv.Inner
		}
		if cv.Type == tagBoolTrue || (cv.Type == tagOptionalSome && cv.Inner != nil && cv.Inner.Type == tagBoolTrue) {
			bitmap.Set(id)
		}
	}
	return bitmap, nil
}

func (a *Adapter) IsQuestCompleted(sender string, questID int) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	snap, ok := a.snapshots[sender]
	if !ok {
		return false
	}
	return snap.bitmap.Has(questID)
}

func (a *Adapter) Profile(sender string) (chain.Profile, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	snap, ok := a.snapshots[sender]
	return snap.profile, ok
}

func (a *Adapter) LastError() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastErr
}

func (a *Adapter) setErr(err error) {
	a.mu.Lock()
	a.lastErr = err.Error()
	a.mu.Unlock()
}

func (a *Adapter) clearErr() {
	a.mu.Lock()
	a.lastErr = ""
	a.mu.Unlock()
}
