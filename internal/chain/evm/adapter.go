package evm

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/pulse-network/backend/internal/chain"
	"github.com/pulse-network/backend/internal/quest"
)

// Endpoint describes one Base deployment.
type Endpoint struct {
	ChainID         uint64
	RPCURL          string
	ContractAddress string
	ExplorerURL     string
}

type snapshot struct {
	profile chain.Profile
	bitmap  quest.Bitmap
}

// Adapter talks to the Pulse contract on one Base network. Reads are
// typed contract calls; writes go through the configured signer. A
// snapshot of profile + quest bitmap per sender is cached by
// RefreshData for the pure IsQuestCompleted reads.
type Adapter struct {
	network  chain.Network
	endpoint Endpoint
	client   *ethclient.Client
	pulse    *Pulse
	signer   *bind.TransactOpts
	log      *zap.Logger

	mu        sync.RWMutex
	snapshots map[string]snapshot
	lastErr   string
}

// NewAdapter dials the RPC endpoint and binds the contract. signerKey
// is a hex-encoded private key for the transaction relayer; it may be
// empty, in which case writes fail with a captured error instead of
// panicking.
func NewAdapter(ctx context.Context, endpoint Endpoint, network chain.Network, signerKey string, log *zap.Logger) (*Adapter, error) {
	client, err := ethclient.DialContext(ctx, endpoint.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", endpoint.RPCURL, err)
	}

	pulse, err := NewPulse(common.HexToAddress(endpoint.ContractAddress), client)
	if err != nil {
		return nil, fmt.Errorf("failed to bind pulse contract: %w", err)
	}

	var signer *bind.TransactOpts
	if signerKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(signerKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid signer key: %w", err)
		}
		signer, err = bind.NewKeyedTransactorWithChainID(key, new(big.Int).SetUint64(endpoint.ChainID))
		if err != nil {
			return nil, fmt.Errorf("failed to build transactor: %w", err)
		}
	}

	log.Info("evm adapter ready",
		zap.String("network", string(network)),
		zap.Uint64("chain_id", endpoint.ChainID),
		zap.String("contract", endpoint.ContractAddress),
	)

	return &Adapter{
		network:   network,
		endpoint:  endpoint,
		client:    client,
		pulse:     pulse,
		signer:    signer,
		log:       log,
		snapshots: make(map[string]snapshot),
	}, nil
}

func (a *Adapter) Family() chain.Family { return chain.FamilyEVM }

// Network returns which Base deployment this adapter targets.
func (a *Adapter) Network() chain.Network { return a.network }

// ChainID returns the chain id of the deployment.
func (a *Adapter) ChainID() uint64 { return a.endpoint.ChainID }

// ContractInfo describes the deployment for API consumers.
func (a *Adapter) ContractInfo() chain.ContractInfo {
	return chain.ContractInfo{
		ChainType:       "base",
		Network:         a.network,
		ContractAddress: a.endpoint.ContractAddress,
		ExplorerURL:     a.endpoint.ExplorerURL,
	}
}

func (a *Adapter) txOpts(ctx context.Context) (*bind.TransactOpts, error) {
	if a.signer == nil {
		return nil, fmt.Errorf("no signer configured for %s", a.network)
	}
	opts := *a.signer
	opts.Context = ctx
	return &opts, nil
}

// transact runs one write and reduces every failure to an
// ActionResult. Wallet rejections and RPC errors surface as
// Success=false, never as a Go error or panic.
func (a *Adapter) transact(ctx context.Context, action string, fn func(*bind.TransactOpts) (*types.Transaction, error)) chain.ActionResult {
	opts, err := a.txOpts(ctx)
	if err != nil {
		a.setErr(err)
		return chain.Fail(err.Error())
	}
	tx, err := fn(opts)
	if err != nil {
		a.setErr(err)
		a.log.Debug("evm write failed", zap.String("action", action), zap.Error(err))
		return chain.Fail(err.Error())
	}
	a.clearErr()
	return chain.ActionResult{Success: true, TxID: tx.Hash().Hex()}
}

func (a *Adapter) DailyCheckin(ctx context.Context, _ string) chain.ActionResult {
	return a.transact(ctx, "dailyCheckin", func(o *bind.TransactOpts) (*types.Transaction, error) {
		return a.pulse.DailyCheckin(o)
	})
}

func (a *Adapter) RelaySignal(ctx context.Context, _ string) chain.ActionResult {
	return a.transact(ctx, "relaySignal", func(o *bind.TransactOpts) (*types.Transaction, error) {
		return a.pulse.RelaySignal(o)
	})
}

func (a *Adapter) UpdateAtmosphere(ctx context.Context, _ string, weatherCode uint) chain.ActionResult {
	return a.transact(ctx, "updateAtmosphere", func(o *bind.TransactOpts) (*types.Transaction, error) {
		return a.pulse.UpdateAtmosphere(o, new(big.Int).SetUint64(uint64(weatherCode)))
	})
}

func (a *Adapter) NudgeFriend(ctx context.Context, _ string, recipient string) chain.ActionResult {
	if chain.Classify(recipient).Family != chain.FamilyEVM {
		return chain.Fail("recipient is not a valid address")
	}
	return a.transact(ctx, "nudgeFriend", func(o *bind.TransactOpts) (*types.Transaction, error) {
		return a.pulse.NudgeFriend(o, common.HexToAddress(recipient))
	})
}

func (a *Adapter) CommitMessage(ctx context.Context, _ string, text string) chain.ActionResult {
	return a.transact(ctx, "commitMessage", func(o *bind.TransactOpts) (*types.Transaction, error) {
		return a.pulse.CommitMessage(o, text)
	})
}

func (a *Adapter) PredictPulse(ctx context.Context, _ string, level uint) chain.ActionResult {
	return a.transact(ctx, "predictPulse", func(o *bind.TransactOpts) (*types.Transaction, error) {
		return a.pulse.PredictPulse(o, new(big.Int).SetUint64(uint64(level)))
	})
}

func (a *Adapter) ClaimDailyCombo(ctx context.Context, _ string) chain.ActionResult {
	return a.transact(ctx, "claimDailyCombo", func(o *bind.TransactOpts) (*types.Transaction, error) {
		return a.pulse.ClaimDailyCombo(o)
	})
}

// RefreshData pulls the sender's profile and quest bitmap from the
// contract. Errors are recorded on the side channel; the previous
// snapshot, if any, stays readable.
func (a *Adapter) RefreshData(ctx context.Context, sender string) {
	opts := &bind.CallOpts{Context: ctx}
	raw, err := a.pulse.GetUserProfile(opts, common.HexToAddress(sender))
	if err != nil {
		a.setErr(err)
		a.log.Warn("evm profile read failed", zap.String("sender", sender), zap.Error(err))
		return
	}

	snap := snapshot{
		profile: chain.Profile{
			TotalPoints:   asInt(raw.TotalPoints),
			CurrentStreak: asInt(raw.CurrentStreak),
			LongestStreak: asInt(raw.LongestStreak),
			Level:         asInt(raw.Level),
			TotalCheckins: asInt(raw.TotalCheckins),
			Exists:        raw.Exists,
		},
		bitmap: quest.Bitmap(asInt(raw.QuestBitmap)),
	}
	if snap.profile.Level < 1 {
		snap.profile.Level = 1
	}

	a.mu.Lock()
	a.snapshots[sender] = snap
	a.lastErr = ""
	a.mu.Unlock()
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

// CanClaimCombo checks combo availability on-chain. Only the Base
// contract exposes this; the facade falls back to a local computation
// for chains that do not.
func (a *Adapter) CanClaimCombo(ctx context.Context, sender string) (bool, error) {
	return a.pulse.CanClaimCombo(&bind.CallOpts{Context: ctx}, common.HexToAddress(sender))
}

// GlobalStats reads the contract-wide counters used by the
// leaderboard summary.
func (a *Adapter) GlobalStats(ctx context.Context) (totalUsers, totalPoints int, err error) {
	stats, err := a.pulse.GetGlobalStats(&bind.CallOpts{Context: ctx})
	if err != nil {
		return 0, 0, err
	}
	return asInt(stats.TotalUsers), asInt(stats.TotalPoints), nil
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

// asInt coerces a contract uint256 to a plain int, guarding nil and
// values past the int range.
func asInt(v *big.Int) int {
	if v == nil || !v.IsInt64() {
		return 0
	}
	return int(v.Int64())
}
