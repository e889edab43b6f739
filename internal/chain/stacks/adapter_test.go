package stacks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"testing"

	"go.uber.org/zap"

	"github.com/pulse-network/backend/internal/chain"
	"github.com/pulse-network/backend/internal/quest"
)

// fakeNode serves the call-read API from a fixed chain state so both
// bitmap read strategies can be exercised against the same truth.
type fakeNode struct {
	day       uint64
	profile   []kv
	completed map[int]bool
	calls     map[string]int
}

func (n *fakeNode) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req callReadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad call-read body: %v", err)
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		fn := path.Base(r.URL.Path)
		n.calls[fn]++

		var result string
		switch fn {
		case fnGetUserProfile:
			if n.profile == nil {
				result = hexNone
			} else {
				result = toHex(someBytes(tupleBytes(n.profile)))
			}
		case fnGetDay:
			result = UintCV(n.day)
		case fnDailyQuestStatus:
			var bitmap uint64
			for id, done := range n.completed {
				if done {
					bitmap |= 1 << (id - 1)
				}
			}
			result = toHex(someBytes(tupleBytes([]kv{
				{"completed-quests", uintBytes(bitmap)},
				{"quest-count", uintBytes(uint64(len(n.completed)))},
			})))
		case fnHasCompletedToday:
			if len(req.Arguments) != 2 {
				t.Errorf("%s: got %d arguments, want 2", fn, len(req.Arguments))
			}
			cv, err := DecodeHexCV(req.Arguments[1])
			if err != nil || cv.Type != tagUint {
				t.Errorf("%s: bad quest id argument %q", fn, req.Arguments[1])
			}
			if n.completed[int(cv.Uint)] {
				result = "0x03"
			} else {
				result = "0x04"
			}
		default:
			http.Error(w, fmt.Sprintf("unknown function %q", fn), http.StatusNotFound)
			return
		}

		json.NewEncoder(w).Encode(callReadResponse{Okay: true, Result: result})
	}
}

func newTestAdapter(t *testing.T, node *fakeNode, session WalletSession, strategy ReadStrategy) *Adapter {
	t.Helper()
	srv := httptest.NewServer(node.handler(t))
	t.Cleanup(srv.Close)
	endpoint := Endpoint{
		APIURL:          srv.URL,
		ContractAddress: testMainnetAddr,
		ContractName:    "pulse",
		ExplorerURL:     "https://explorer.hiro.so",
	}
	return NewAdapter(endpoint, chain.NetworkMainnet, session, strategy, zap.NewNop())
}

func TestBitmapStrategiesAgree(t *testing.T) {
	completed := map[int]bool{1: true, 3: true, 6: true, 9: true}
	for _, strategy := range []ReadStrategy{ReadCombined, ReadSequential} {
		t.Run(string(strategy), func(t *testing.T) {
			node := &fakeNode{
				day:       20601,
				profile:   profileFixture(),
				completed: completed,
				calls:     make(map[string]int),
			}
			a := newTestAdapter(t, node, nil, strategy)
			a.RefreshData(context.Background(), testMainnetAddr)

			if errMsg := a.LastError(); errMsg != "" {
				t.Fatalf("RefreshData error: %s", errMsg)
			}
			for id := 1; id <= quest.Count; id++ {
				if got := a.IsQuestCompleted(testMainnetAddr, id); got != completed[id] {
					t.Errorf("quest %d completed = %v, want %v", id, got, completed[id])
				}
			}

			profile, ok := a.Profile(testMainnetAddr)
			if !ok || !profile.Exists {
				t.Fatalf("Profile: ok=%v exists=%v, want cached existing profile", ok, profile.Exists)
			}
			if profile.TotalPoints != 730 || profile.Level != 3 {
				t.Errorf("unexpected profile: %+v", profile)
			}

			switch strategy {
			case ReadCombined:
				if node.calls[fnHasCompletedToday] != 0 {
					t.Errorf("combined strategy made %d per-quest calls", node.calls[fnHasCompletedToday])
				}
			case ReadSequential:
				if node.calls[fnHasCompletedToday] != quest.Count {
					t.Errorf("sequential strategy made %d per-quest calls, want %d", node.calls[fnHasCompletedToday], quest.Count)
				}
				if node.calls[fnDailyQuestStatus] != 0 {
					t.Errorf("sequential strategy hit the combined endpoint %d times", node.calls[fnDailyQuestStatus])
				}
			}
		})
	}
}

func TestRefreshDataNewUser(t *testing.T) {
	node := &fakeNode{day: 20601, profile: nil, calls: make(map[string]int)}
	a := newTestAdapter(t, node, nil, ReadCombined)
	a.RefreshData(context.Background(), testMainnetAddr)

	profile, ok := a.Profile(testMainnetAddr)
	if !ok {
		t.Fatal("Profile: no snapshot cached for new user")
	}
	if profile.Exists {
		t.Error("new user marked as existing")
	}
	if profile.Level != 1 {
		t.Errorf("Level = %d, want default 1", profile.Level)
	}
	for id := 1; id <= quest.Count; id++ {
		if a.IsQuestCompleted(testMainnetAddr, id) {
			t.Errorf("quest %d reported complete for new user", id)
		}
	}
}

func TestRefreshDataNodeDownSetsLastError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "over capacity", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	endpoint := Endpoint{APIURL: srv.URL, ContractAddress: testMainnetAddr, ContractName: "pulse"}
	a := NewAdapter(endpoint, chain.NetworkMainnet, nil, ReadCombined, zap.NewNop())
	a.RefreshData(context.Background(), testMainnetAddr)

	if a.LastError() == "" {
		t.Fatal("LastError empty after failed refresh")
	}
	if _, ok := a.Profile(testMainnetAddr); ok {
		t.Error("snapshot cached despite failed refresh")
	}
}

type fakeSession struct {
	calls []ContractCallRequest
	txID  string
	err   error
}

func (s *fakeSession) CallContract(_ context.Context, req ContractCallRequest) (string, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return "", s.err
	}
	return s.txID, nil
}

func TestWritesRequireSession(t *testing.T) {
	node := &fakeNode{calls: make(map[string]int)}
	a := newTestAdapter(t, node, nil, ReadCombined)

	res := a.DailyCheckin(context.Background(), testMainnetAddr)
	if res.Success {
		t.Fatal("DailyCheckin succeeded without a wallet session")
	}
	if res.Error != "wallet session missing" {
		t.Errorf("Error = %q, want %q", res.Error, "wallet session missing")
	}
}

func TestWritesGoThroughSession(t *testing.T) {
	session := &fakeSession{txID: "0xabc123"}
	node := &fakeNode{calls: make(map[string]int)}
	a := newTestAdapter(t, node, session, ReadCombined)
	ctx := context.Background()

	tests := []struct {
		name     string
		call     func() chain.ActionResult
		function string
		argCount int
	}{
		{"daily-checkin", func() chain.ActionResult { return a.DailyCheckin(ctx, testMainnetAddr) }, fnDailyCheckin, 0},
		{"relay-signal", func() chain.ActionResult { return a.RelaySignal(ctx, testMainnetAddr) }, fnRelaySignal, 0},
		{"update-atmosphere", func() chain.ActionResult { return a.UpdateAtmosphere(ctx, testMainnetAddr, 3) }, fnUpdateAtmosphere, 1},
		{"nudge-friend", func() chain.ActionResult { return a.NudgeFriend(ctx, testMainnetAddr, testTestnetAddr) }, fnNudgeFriend, 1},
		{"commit-message", func() chain.ActionResult { return a.CommitMessage(ctx, testMainnetAddr, "gm") }, fnCommitMessage, 1},
		{"predict-pulse", func() chain.ActionResult { return a.PredictPulse(ctx, testMainnetAddr, 7) }, fnPredictPulse, 1},
		{"claim-combo", func() chain.ActionResult { return a.ClaimDailyCombo(ctx, testMainnetAddr) }, fnClaimDailyCombo, 0},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.call()
			if !res.Success {
				t.Fatalf("call failed: %s", res.Error)
			}
			if res.TxID != "0xabc123" {
				t.Errorf("TxID = %q", res.TxID)
			}
			got := session.calls[i]
			if got.FunctionName != tt.function {
				t.Errorf("function = %q, want %q", got.FunctionName, tt.function)
			}
			if len(got.FunctionArgs) != tt.argCount {
				t.Errorf("got %d args, want %d", len(got.FunctionArgs), tt.argCount)
			}
			if got.Contract != testMainnetAddr+".pulse" {
				t.Errorf("contract = %q", got.Contract)
			}
		})
	}
}

func TestNudgeFriendRejectsBadRecipient(t *testing.T) {
	session := &fakeSession{txID: "0xabc123"}
	node := &fakeNode{calls: make(map[string]int)}
	a := newTestAdapter(t, node, session, ReadCombined)

	res := a.NudgeFriend(context.Background(), testMainnetAddr, "0xcF0A164b64b92Fa6262e312cDB60a12c302e8F1c")
	if res.Success {
		t.Fatal("NudgeFriend accepted an EVM recipient")
	}
	if len(session.calls) != 0 {
		t.Errorf("wallet session reached despite invalid recipient: %d calls", len(session.calls))
	}
}
