package quest

import (
	"sync"
	"time"
)

// ComboWindow is the maximum spread between the first and last
// trigger-quest completion for the combo to activate. The boundary is
// inclusive.
const ComboWindow = 5 * time.Minute

// comboTriggers are the quests that must all complete inside the
// window: check-in, atmosphere update, and message.
var comboTriggers = []int{DailyCheckin, UpdateAtmosphere, CommitMessage}

// EvaluateCombo reports whether the recorded timestamps satisfy the
// combo condition: all three trigger quests present and
// max(t)-min(t) <= ComboWindow.
func EvaluateCombo(timestamps map[int]time.Time) bool {
	var earliest, latest time.Time
	for _, id := range comboTriggers {
		ts, ok := timestamps[id]
		if !ok {
			return false
		}
		if earliest.IsZero() || ts.Before(earliest) {
			earliest = ts
		}
		if ts.After(latest) {
			latest = ts
		}
	}
	return latest.Sub(earliest) <= ComboWindow
}

// ComboTracker accumulates per-quest completion timestamps for one
// session and holds the advisory combo flag. Once active the flag is
// sticky: re-evaluation only ever turns it on. The flag does not
// claim anything on-chain; claiming is a separate quest action.
type ComboTracker struct {
	mu         sync.Mutex
	timestamps map[int]time.Time
	active     bool
}

func NewComboTracker() *ComboTracker {
	return &ComboTracker{timestamps: make(map[int]time.Time)}
}

// RecordCompletion overwrites the quest's last-completion timestamp
// and re-evaluates the combo condition.
func (t *ComboTracker) RecordCompletion(questID int, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timestamps[questID] = at
	if !t.active && EvaluateCombo(t.timestamps) {
		t.active = true
	}
}

// Active reports the sticky combo flag.
func (t *ComboTracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Timestamps returns a copy of the recorded completion times.
func (t *ComboTracker) Timestamps() map[int]time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[int]time.Time, len(t.timestamps))
	for k, v := range t.timestamps {
		out[k] = v
	}
	return out
}

// ComboRegistry hands out one tracker per session key (the wallet
// address). Trackers live in memory only; a restart clears them, the
// same way a page reload clears the original client-side state.
type ComboRegistry struct {
	mu       sync.Mutex
	trackers map[string]*ComboTracker
}

func NewComboRegistry() *ComboRegistry {
	return &ComboRegistry{trackers: make(map[string]*ComboTracker)}
}

func (r *ComboRegistry) For(key string) *ComboTracker {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trackers[key]
	if !ok {
		t = NewComboTracker()
		r.trackers[key] = t
	}
	return t
}
