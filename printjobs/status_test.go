package printjobs

import "testing"

func TestKnownStatuses(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusProcessing, StatusCompleted, StatusFailed} {
		if !s.Known() {
			t.Errorf("%q should be known", s)
		}
	}
	if Status("printed").Known() {
		t.Error("unknown status reported as known")
	}
}

func TestTerminalStatuses(t *testing.T) {
	if StatusPending.Terminal() || StatusProcessing.Terminal() {
		t.Error("active statuses reported as terminal")
	}
	if !StatusCompleted.Terminal() || !StatusFailed.Terminal() {
		t.Error("terminal statuses not reported as terminal")
	}
}

func TestTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusFailed, false},
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusFailed, true},
		{StatusProcessing, StatusPending, true}, // requeue
		{StatusCompleted, StatusProcessing, false},
		{StatusCompleted, StatusPending, false},
		{StatusFailed, StatusProcessing, false},
		{StatusFailed, StatusPending, false},
		{StatusPending, StatusPending, false},
		{Status("printed"), StatusCompleted, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.ok {
			t.Errorf("CanTransition(%s, %s): got %v want %v", c.from, c.to, got, c.ok)
		}
	}
}
