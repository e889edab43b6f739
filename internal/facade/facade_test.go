package facade

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/pulse-network/backend/internal/chain"
)

const (
	evmAddr        = "0xcF0A164b64b92Fa6262e312cDB60a12c302e8F1c"
	stacksMainAddr = "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7"
	stacksTestAddr = "ST31DP8F8CF2GXSZBHHHK5J6Y061744E1TP7FRGHT"
	baseChainID    = 8453
	unknownChainID = 1
)

// fakeAdapter counts every invocation so routing exclusivity can be
// asserted.
type fakeAdapter struct {
	family    chain.Family
	calls     int
	senders   []string
	completed map[int]bool
	profile   chain.Profile
	hasData   bool
	comboOK   bool
	comboErr  error
}

func (a *fakeAdapter) record(sender string) chain.ActionResult {
	a.calls++
	a.senders = append(a.senders, sender)
	return chain.ActionResult{Success: true, TxID: "0xfake"}
}

func (a *fakeAdapter) Family() chain.Family { return a.family }
func (a *fakeAdapter) DailyCheckin(_ context.Context, sender string) chain.ActionResult {
	return a.record(sender)
}
func (a *fakeAdapter) RelaySignal(_ context.Context, sender string) chain.ActionResult {
	return a.record(sender)
}
func (a *fakeAdapter) UpdateAtmosphere(_ context.Context, sender string, _ uint) chain.ActionResult {
	return a.record(sender)
}
func (a *fakeAdapter) NudgeFriend(_ context.Context, sender, _ string) chain.ActionResult {
	return a.record(sender)
}
func (a *fakeAdapter) CommitMessage(_ context.Context, sender, _ string) chain.ActionResult {
	return a.record(sender)
}
func (a *fakeAdapter) PredictPulse(_ context.Context, sender string, _ uint) chain.ActionResult {
	return a.record(sender)
}
func (a *fakeAdapter) ClaimDailyCombo(_ context.Context, sender string) chain.ActionResult {
	return a.record(sender)
}
func (a *fakeAdapter) RefreshData(_ context.Context, sender string) { a.record(sender) }
func (a *fakeAdapter) IsQuestCompleted(_ string, questID int) bool  { return a.completed[questID] }
func (a *fakeAdapter) Profile(_ string) (chain.Profile, bool)       { return a.profile, a.hasData }
func (a *fakeAdapter) LastError() string                            { return "" }

// comboAdapter additionally carries the on-chain combo check, like
// the Base adapter does.
type comboAdapter struct{ fakeAdapter }

func (a *comboAdapter) CanClaimCombo(_ context.Context, _ string) (bool, error) {
	a.calls++
	return a.comboOK, a.comboErr
}

func newTestFacade() (*Facade, *comboAdapter, *fakeAdapter, *fakeAdapter) {
	base := &comboAdapter{fakeAdapter{family: chain.FamilyEVM}}
	stacksMain := &fakeAdapter{family: chain.FamilyStacks}
	stacksTest := &fakeAdapter{family: chain.FamilyStacks}

	f := New(zap.NewNop())
	f.RegisterBase(baseChainID, base)
	f.RegisterStacks(chain.NetworkMainnet, stacksMain)
	f.RegisterStacks(chain.NetworkTestnet, stacksTest)
	return f, base, stacksMain, stacksTest
}

func TestSelectionPriority(t *testing.T) {
	f, _, _, _ := newTestFacade()

	tests := []struct {
		name       string
		state      ConnState
		wantActive Active
		wantSender string
	}{
		{
			name:       "stacks session wins over evm connection",
			state:      ConnState{StacksSessionActive: true, StacksSessionAddress: stacksMainAddr, ConnectedAddress: evmAddr, ChainID: baseChainID},
			wantActive: ActiveStacks,
			wantSender: stacksMainAddr,
		},
		{
			name:       "stacks shaped address without session",
			state:      ConnState{ConnectedAddress: stacksTestAddr, ChainID: baseChainID},
			wantActive: ActiveStacks,
			wantSender: stacksTestAddr,
		},
		{
			name:       "recognized evm chain",
			state:      ConnState{ConnectedAddress: evmAddr, ChainID: baseChainID},
			wantActive: ActiveBase,
			wantSender: evmAddr,
		},
		{
			name:       "unrecognized evm chain",
			state:      ConnState{ConnectedAddress: evmAddr, ChainID: unknownChainID},
			wantActive: ActiveNone,
		},
		{
			name:       "no connection at all",
			state:      ConnState{},
			wantActive: ActiveNone,
		},
		{
			name:       "recognized chain but no address",
			state:      ConnState{ChainID: baseChainID},
			wantActive: ActiveNone,
		},
		{
			name:       "empty session address falls through to evm",
			state:      ConnState{StacksSessionActive: true, ConnectedAddress: evmAddr, ChainID: baseChainID},
			wantActive: ActiveBase,
			wantSender: evmAddr,
		},
		{
			name:       "empty session address with stacks shaped connection",
			state:      ConnState{StacksSessionActive: true, ConnectedAddress: stacksTestAddr},
			wantActive: ActiveStacks,
			wantSender: stacksTestAddr,
		},
		{
			name:       "session flag alone selects nothing",
			state:      ConnState{StacksSessionActive: true},
			wantActive: ActiveNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			active, sender := f.Select(tt.state)
			if active != tt.wantActive {
				t.Errorf("active = %q, want %q", active, tt.wantActive)
			}
			if sender != tt.wantSender {
				t.Errorf("sender = %q, want %q", sender, tt.wantSender)
			}
		})
	}
}

func TestDispatchExclusivity(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		state ConnState
		want  func(base *comboAdapter, main, test *fakeAdapter) (hit *fakeAdapter, sender string)
	}{
		{
			name:  "evm connection only hits base",
			state: ConnState{ConnectedAddress: evmAddr, ChainID: baseChainID},
			want: func(base *comboAdapter, _, _ *fakeAdapter) (*fakeAdapter, string) {
				return &base.fakeAdapter, evmAddr
			},
		},
		{
			name:  "stacks session only hits stacks mainnet",
			state: ConnState{StacksSessionActive: true, StacksSessionAddress: stacksMainAddr, ConnectedAddress: evmAddr, ChainID: baseChainID},
			want: func(_ *comboAdapter, main, _ *fakeAdapter) (*fakeAdapter, string) {
				return main, stacksMainAddr
			},
		},
		{
			name:  "testnet address only hits stacks testnet",
			state: ConnState{ConnectedAddress: stacksTestAddr},
			want: func(_ *comboAdapter, _, test *fakeAdapter) (*fakeAdapter, string) {
				return test, stacksTestAddr
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, base, main, test := newTestFacade()
			hit, sender := tt.want(base, main, test)

			res := f.DailyCheckin(ctx, tt.state)
			if !res.Success {
				t.Fatalf("DailyCheckin failed: %s", res.Error)
			}

			total := base.calls + main.calls + test.calls
			if total != 1 {
				t.Fatalf("%d adapter calls for one action, want exactly 1", total)
			}
			if hit.calls != 1 {
				t.Errorf("expected adapter was not the one invoked")
			}
			if len(hit.senders) != 1 || hit.senders[0] != sender {
				t.Errorf("senders = %v, want [%s]", hit.senders, sender)
			}
		})
	}
}

func TestDispatchNoneMakesNoCalls(t *testing.T) {
	f, base, main, test := newTestFacade()
	ctx := context.Background()
	state := ConnState{ConnectedAddress: evmAddr, ChainID: unknownChainID}

	results := []chain.ActionResult{
		f.DailyCheckin(ctx, state),
		f.RelaySignal(ctx, state),
		f.UpdateAtmosphere(ctx, state, 2),
		f.NudgeFriend(ctx, state, stacksMainAddr),
		f.CommitMessage(ctx, state, "gm"),
		f.PredictPulse(ctx, state, 5),
		f.ClaimDailyCombo(ctx, state),
	}
	for i, res := range results {
		if res.Success {
			t.Errorf("action %d succeeded with no network selected", i)
		}
		if res.Error != ErrNoNetwork {
			t.Errorf("action %d error = %q, want %q", i, res.Error, ErrNoNetwork)
		}
	}
	if total := base.calls + main.calls + test.calls; total != 0 {
		t.Errorf("%d adapter calls despite no selection", total)
	}
}

func TestProfileNormalization(t *testing.T) {
	f, base, _, _ := newTestFacade()
	base.profile = chain.Profile{TotalPoints: 120, Level: 2, Exists: true}
	base.hasData = true

	state := ConnState{ConnectedAddress: evmAddr, ChainID: baseChainID}
	profile, ok := f.Profile(state)
	if !ok {
		t.Fatal("Profile: no data from active adapter")
	}
	if profile.TotalPoints != 120 || profile.Level != 2 {
		t.Errorf("unexpected profile: %+v", profile)
	}

	if _, ok := f.Profile(ConnState{}); ok {
		t.Error("Profile reported data with nothing selected")
	}
}

func TestCheckComboAvailable(t *testing.T) {
	ctx := context.Background()

	t.Run("base delegates to on-chain check", func(t *testing.T) {
		f, base, _, _ := newTestFacade()
		base.comboOK = true
		ok, err := f.CheckComboAvailable(ctx, ConnState{ConnectedAddress: evmAddr, ChainID: baseChainID})
		if err != nil || !ok {
			t.Fatalf("got (%v, %v), want (true, nil)", ok, err)
		}
		if base.calls != 1 {
			t.Errorf("on-chain check invoked %d times, want 1", base.calls)
		}
	})

	t.Run("stacks recomputes from local bits", func(t *testing.T) {
		f, _, main, _ := newTestFacade()
		state := ConnState{ConnectedAddress: stacksMainAddr}

		main.completed = map[int]bool{1: true, 3: true}
		if ok, _ := f.CheckComboAvailable(ctx, state); ok {
			t.Error("combo available with only two trigger bits set")
		}

		main.completed[6] = true
		if ok, _ := f.CheckComboAvailable(ctx, state); !ok {
			t.Error("combo unavailable with all three trigger bits set")
		}
		if main.calls != 0 {
			t.Errorf("stacks check made %d adapter action calls, want 0", main.calls)
		}
	})

	t.Run("none is never available", func(t *testing.T) {
		f, _, _, _ := newTestFacade()
		if ok, err := f.CheckComboAvailable(ctx, ConnState{}); ok || err != nil {
			t.Errorf("got (%v, %v), want (false, nil)", ok, err)
		}
	})
}

func TestContractInfo(t *testing.T) {
	f, _, _, _ := newTestFacade()
	// Fakes do not implement the info surface.
	if _, ok := f.ContractInfo(ConnState{ConnectedAddress: evmAddr, ChainID: baseChainID}); ok {
		t.Error("ContractInfo reported info from an adapter without one")
	}
	if _, ok := f.ContractInfo(ConnState{}); ok {
		t.Error("ContractInfo reported info with nothing selected")
	}
}
