// Package facade routes quest actions to exactly one per-chain
// adapter based on the caller's connection state, and normalizes the
// adapters' outputs into one canonical surface.
package facade

import (
	"context"

	"go.uber.org/zap"

	"github.com/pulse-network/backend/internal/chain"
	"github.com/pulse-network/backend/internal/quest"
)

// ErrNoNetwork is the uniform action error when no adapter can be
// selected for the caller's connection state.
const ErrNoNetwork = "No supported network connected"

// Active names the selected backend.
type Active string

const (
	ActiveBase   Active = "base"
	ActiveStacks Active = "stacks"
	ActiveNone   Active = "none"
)

// ConnState is everything selection depends on. It is derived from
// the caller's session on every request and never stored, so it
// cannot go stale independent of its inputs.
type ConnState struct {
	StacksSessionActive  bool
	StacksSessionAddress string
	ConnectedAddress     string
	ChainID              uint64
}

// Facade fronts the registered adapters. Base deployments are keyed
// by EVM chain id, Stacks deployments by network.
type Facade struct {
	base   map[uint64]chain.Adapter
	stacks map[chain.Network]chain.Adapter
	log    *zap.Logger
}

func New(log *zap.Logger) *Facade {
	return &Facade{
		base:   make(map[uint64]chain.Adapter),
		stacks: make(map[chain.Network]chain.Adapter),
		log:    log,
	}
}

func (f *Facade) RegisterBase(chainID uint64, a chain.Adapter) {
	f.base[chainID] = a
	f.log.Info("registered base adapter", zap.Uint64("chain_id", chainID))
}

func (f *Facade) RegisterStacks(network chain.Network, a chain.Adapter) {
	f.stacks[network] = a
	f.log.Info("registered stacks adapter", zap.String("network", string(network)))
}

type selection struct {
	active  Active
	adapter chain.Adapter
	sender  string
}

// resolve applies the selection priority. A dedicated Stacks session
// always wins over an incidentally Stacks-shaped connected address:
// the session carries a definite signing capability, the address
// alone may not. A recognized EVM chain id comes third; anything
// else selects nothing.
func (f *Facade) resolve(state ConnState) selection {
	if state.StacksSessionActive {
		sender := state.StacksSessionAddress
		if sender == "" && chain.Classify(state.ConnectedAddress).Family == chain.FamilyStacks {
			sender = state.ConnectedAddress
		}
		if sender != "" {
			return selection{active: ActiveStacks, adapter: f.stacksFor(sender), sender: sender}
		}
		// Session flag without a usable Stacks sender: fall through
		// to the remaining rules rather than routing a foreign
		// address into a Stacks adapter.
	}
	if chain.Classify(state.ConnectedAddress).Family == chain.FamilyStacks {
		return selection{active: ActiveStacks, adapter: f.stacksFor(state.ConnectedAddress), sender: state.ConnectedAddress}
	}
	if a, ok := f.base[state.ChainID]; ok && state.ConnectedAddress != "" {
		return selection{active: ActiveBase, adapter: a, sender: state.ConnectedAddress}
	}
	return selection{active: ActiveNone}
}

func (f *Facade) stacksFor(address string) chain.Adapter {
	network := chain.Classify(address).Network
	if network == chain.NetworkUnknown {
		network = chain.NetworkMainnet
	}
	return f.stacks[network]
}

// Select reports which backend the state resolves to and the sender
// address actions would use.
func (f *Facade) Select(state ConnState) (Active, string) {
	sel := f.resolve(state)
	return sel.active, sel.sender
}

// dispatch forwards one action to the selected adapter. At most one
// adapter is invoked per call; with nothing selected the action
// fails without any network I/O.
func (f *Facade) dispatch(state ConnState, fn func(chain.Adapter, string) chain.ActionResult) chain.ActionResult {
	sel := f.resolve(state)
	if sel.active == ActiveNone || sel.adapter == nil {
		return chain.Fail(ErrNoNetwork)
	}
	return fn(sel.adapter, sel.sender)
}

func (f *Facade) DailyCheckin(ctx context.Context, state ConnState) chain.ActionResult {
	return f.dispatch(state, func(a chain.Adapter, sender string) chain.ActionResult {
		return a.DailyCheckin(ctx, sender)
	})
}

func (f *Facade) RelaySignal(ctx context.Context, state ConnState) chain.ActionResult {
	return f.dispatch(state, func(a chain.Adapter, sender string) chain.ActionResult {
		return a.RelaySignal(ctx, sender)
	})
}

func (f *Facade) UpdateAtmosphere(ctx context.Context, state ConnState, weatherCode uint) chain.ActionResult {
	return f.dispatch(state, func(a chain.Adapter, sender string) chain.ActionResult {
		return a.UpdateAtmosphere(ctx, sender, weatherCode)
	})
}

func (f *Facade) NudgeFriend(ctx context.Context, state ConnState, recipient string) chain.ActionResult {
	return f.dispatch(state, func(a chain.Adapter, sender string) chain.ActionResult {
		return a.NudgeFriend(ctx, sender, recipient)
	})
}

func (f *Facade) CommitMessage(ctx context.Context, state ConnState, text string) chain.ActionResult {
	return f.dispatch(state, func(a chain.Adapter, sender string) chain.ActionResult {
		return a.CommitMessage(ctx, sender, text)
	})
}

func (f *Facade) PredictPulse(ctx context.Context, state ConnState, level uint) chain.ActionResult {
	return f.dispatch(state, func(a chain.Adapter, sender string) chain.ActionResult {
		return a.PredictPulse(ctx, sender, level)
	})
}

func (f *Facade) ClaimDailyCombo(ctx context.Context, state ConnState) chain.ActionResult {
	return f.dispatch(state, func(a chain.Adapter, sender string) chain.ActionResult {
		return a.ClaimDailyCombo(ctx, sender)
	})
}

// RefreshData pulls fresh profile and bitmap data on the selected
// adapter. A no-op when nothing is selected.
func (f *Facade) RefreshData(ctx context.Context, state ConnState) {
	sel := f.resolve(state)
	if sel.active == ActiveNone || sel.adapter == nil {
		return
	}
	sel.adapter.RefreshData(ctx, sel.sender)
}

// Profile returns the canonical profile from the selected adapter's
// cache. The second return is false when nothing is selected or no
// data has been fetched yet.
func (f *Facade) Profile(state ConnState) (chain.Profile, bool) {
	sel := f.resolve(state)
	if sel.active == ActiveNone || sel.adapter == nil {
		return chain.Profile{}, false
	}
	return sel.adapter.Profile(sel.sender)
}

func (f *Facade) IsQuestCompleted(state ConnState, questID int) bool {
	sel := f.resolve(state)
	if sel.active == ActiveNone || sel.adapter == nil {
		return false
	}
	return sel.adapter.IsQuestCompleted(sel.sender, questID)
}

// LastError exposes the selected adapter's read-path error side
// channel. Empty when nothing is selected.
func (f *Facade) LastError(state ConnState) string {
	sel := f.resolve(state)
	if sel.active == ActiveNone || sel.adapter == nil {
		return ""
	}
	return sel.adapter.LastError()
}

type infoProvider interface {
	ContractInfo() chain.ContractInfo
}

// ContractInfo describes the deployment the state resolves to.
func (f *Facade) ContractInfo(state ConnState) (chain.ContractInfo, bool) {
	sel := f.resolve(state)
	if sel.active == ActiveNone || sel.adapter == nil {
		return chain.ContractInfo{}, false
	}
	if p, ok := sel.adapter.(infoProvider); ok {
		return p.ContractInfo(), true
	}
	return chain.ContractInfo{}, false
}

// CheckComboAvailable reports whether the daily combo bonus can be
// claimed. The Base contract exposes an on-chain check and we use
// it; the Stacks contract has none, so availability is recomputed
// locally from the check-in, atmosphere and message bits. The
// asymmetry mirrors the deployed contracts and is kept on purpose.
func (f *Facade) CheckComboAvailable(ctx context.Context, state ConnState) (bool, error) {
	sel := f.resolve(state)
	switch {
	case sel.active == ActiveBase:
		checker, ok := sel.adapter.(chain.ComboChecker)
		if !ok {
			return false, nil
		}
		return checker.CanClaimCombo(ctx, sel.sender)
	case sel.active == ActiveStacks && sel.adapter != nil:
		return sel.adapter.IsQuestCompleted(sel.sender, quest.DailyCheckin) &&
			sel.adapter.IsQuestCompleted(sel.sender, quest.UpdateAtmosphere) &&
			sel.adapter.IsQuestCompleted(sel.sender, quest.CommitMessage), nil
	default:
		return false, nil
	}
}
