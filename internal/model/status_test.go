package model

import "testing"

func TestThumbnailState_IsCached(t *testing.T) {
	tests := []struct {
		state    ThumbnailState
		expected bool
	}{
		{ThumbnailAbsent, false},
		{ThumbnailPending, false},
		{ThumbnailReady, true},
		{ThumbnailFailed, true},
	}

	for _, test := range tests {
		result := test.state.IsCached()
		if result != test.expected {
			t.Errorf("ThumbnailState(%s).IsCached() = %v, expected %v", test.state, result, test.expected)
		}
	}
}

func TestSchedulerState_IsRunning(t *testing.T) {
	if SchedulerStopped.IsRunning() {
		t.Error("Stopped scheduler should not report running")
	}
	if !SchedulerRunning.IsRunning() {
		t.Error("Running scheduler should report running")
	}
	if SchedulerRunning.String() != "Running" {
		t.Errorf("SchedulerState.String() = %s, expected Running", SchedulerRunning.String())
	}
}

func TestChangeKind_String(t *testing.T) {
	tests := []struct {
		kind     ChangeKind
		expected string
	}{
		{ChangeAdded, "Added"},
		{ChangeModified, "Modified"},
		{ChangeRemoved, "Removed"},
		{ChangeKind(42), "Unknown"},
	}

	for _, test := range tests {
		if got := test.kind.String(); got != test.expected {
			t.Errorf("ChangeKind(%d).String() = %s, expected %s", test.kind, got, test.expected)
		}
	}
}
