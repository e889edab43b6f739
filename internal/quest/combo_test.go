package quest

import (
	"testing"
	"time"
)

func TestEvaluateCombo(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	at := func(ms int64) time.Time { return base.Add(time.Duration(ms) * time.Millisecond) }

	tests := []struct {
		name       string
		timestamps map[int]time.Time
		expected   bool
	}{
		{
			"all three at same instant",
			map[int]time.Time{DailyCheckin: at(0), UpdateAtmosphere: at(0), CommitMessage: at(0)},
			true,
		},
		{
			"just inside window",
			map[int]time.Time{DailyCheckin: at(0), UpdateAtmosphere: at(299_999), CommitMessage: at(0)},
			true,
		},
		{
			"exactly on boundary is inclusive",
			map[int]time.Time{DailyCheckin: at(0), UpdateAtmosphere: at(300_000), CommitMessage: at(150_000)},
			true,
		},
		{
			"just past boundary",
			map[int]time.Time{DailyCheckin: at(0), UpdateAtmosphere: at(150_000), CommitMessage: at(300_001)},
			false,
		},
		{
			"missing one trigger",
			map[int]time.Time{DailyCheckin: at(0), UpdateAtmosphere: at(10)},
			false,
		},
		{
			"non-trigger quests do not count",
			map[int]time.Time{DailyCheckin: at(0), UpdateAtmosphere: at(10), RelaySignal: at(20)},
			false,
		},
		{
			"spread measured over triggers only",
			map[int]time.Time{
				DailyCheckin:     at(0),
				UpdateAtmosphere: at(100),
				CommitMessage:    at(200),
				OpenCapsule:      at(10_000_000),
			},
			true,
		},
		{"empty", map[int]time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateCombo(tt.timestamps); got != tt.expected {
				t.Errorf("EvaluateCombo() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestComboTrackerSticky(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	tr := NewComboTracker()

	tr.RecordCompletion(DailyCheckin, base)
	tr.RecordCompletion(UpdateAtmosphere, base.Add(time.Minute))
	if tr.Active() {
		t.Fatal("combo active with only two triggers recorded")
	}

	tr.RecordCompletion(CommitMessage, base.Add(2*time.Minute))
	if !tr.Active() {
		t.Fatal("combo not active after all triggers inside window")
	}

	// A later overwrite that no longer satisfies the window must not
	// clear the flag within the session.
	tr.RecordCompletion(CommitMessage, base.Add(2*time.Hour))
	if !tr.Active() {
		t.Fatal("combo flag cleared by re-evaluation; must stay sticky")
	}
}

func TestComboTrackerOutsideWindowStaysInactive(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	tr := NewComboTracker()

	tr.RecordCompletion(DailyCheckin, base)
	tr.RecordCompletion(UpdateAtmosphere, base.Add(time.Minute))
	tr.RecordCompletion(CommitMessage, base.Add(ComboWindow+time.Millisecond))
	if tr.Active() {
		t.Fatal("combo active despite spread past window")
	}

	// Re-doing the slow quest inside the window activates it.
	tr.RecordCompletion(DailyCheckin, base.Add(ComboWindow))
	if !tr.Active() {
		t.Fatal("combo not active after re-completion tightened the spread")
	}
}

func TestComboRegistryIsolation(t *testing.T) {
	reg := NewComboRegistry()
	a := reg.For("0xaaa")
	b := reg.For("0xbbb")
	if a == b {
		t.Fatal("distinct sessions share a tracker")
	}
	if reg.For("0xaaa") != a {
		t.Fatal("same session key returned a new tracker")
	}
}
