package reconcile

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ytget/template-overlay/internal/model"
)

func TestScheduler_StopSafety(t *testing.T) {
	s := NewScheduler(newFakeSource(), newFakeRegistry(), 10*time.Millisecond)

	// Never started
	s.Stop()
	if s.State() != model.SchedulerStopped {
		t.Errorf("expected Stopped, got %s", s.State())
	}

	s.Start()
	if s.State() != model.SchedulerRunning {
		t.Errorf("expected Running, got %s", s.State())
	}
	s.Start() // no-op

	s.Stop()
	s.Stop()
	if s.State() != model.SchedulerStopped {
		t.Errorf("expected Stopped after double stop, got %s", s.State())
	}
}

func TestScheduler_TickAppliesOutOfBandEdits(t *testing.T) {
	a := tpl(1, "a", "A", model.Coords{1, 1, 0, 0})
	b := tpl(2, "b", "B", model.Coords{2, 2, 0, 0})
	source := newFakeSource(a, b)
	registry := newFakeRegistry()
	s := NewScheduler(source, registry, time.Hour)

	if _, err := s.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if res := s.Tick(); len(res.Changes) != 0 {
		t.Errorf("tick without edits should find nothing, got %v", res.Changes)
	}

	moved := a
	moved.Coords = model.Coords{1, 1, 0, 5}
	source.set(moved, b)
	source.setEnabled("2 b", false)

	res := s.Tick()
	if res.Skipped || res.Err != nil {
		t.Fatalf("unexpected tick result %+v", res)
	}
	if len(res.Changes) != 2 {
		t.Fatalf("expected 2 changes, got %v", res.Changes)
	}

	fields, _ := registry.fields("1 a")
	if fields.Coords != moved.Coords {
		t.Errorf("registry coords = %v, expected %v", fields.Coords, moved.Coords)
	}
	fields, _ = registry.fields("2 b")
	if fields.Enabled {
		t.Error("registry should show 2 b disabled")
	}

	baseline := s.Baseline()
	if baseline["1 a"].Coords != moved.Coords || baseline["2 b"].Enabled {
		t.Errorf("baseline not refreshed: %+v", baseline)
	}

	if res := s.Tick(); len(res.Changes) != 0 {
		t.Errorf("changes should not be reported twice, got %v", res.Changes)
	}
}

func TestScheduler_TickSkippedWhileApplying(t *testing.T) {
	s := NewScheduler(newFakeSource(), newFakeRegistry(), time.Hour)

	s.applyMu.Lock()
	res := s.Tick()
	s.applyMu.Unlock()

	if !res.Skipped {
		t.Error("tick should be skipped while another apply holds the lock")
	}
	if s.Skipped() != 1 {
		t.Errorf("expected 1 skipped tick, got %d", s.Skipped())
	}
}

func TestScheduler_SyncErrorDoesNotStopSync(t *testing.T) {
	source := newFakeSource(tpl(1, "a", "A", model.Coords{}))
	registry := newFakeRegistry()
	s := NewScheduler(source, registry, time.Hour)

	var reported atomic.Int32
	s.SetErrorHandler(func(err error) { reported.Add(1) })

	source.panicOn = true
	res := s.Tick()
	var syncErr *SyncError
	if !errors.As(res.Err, &syncErr) {
		t.Fatalf("expected SyncError, got %v", res.Err)
	}
	if reported.Load() != 1 {
		t.Errorf("error handler called %d times", reported.Load())
	}

	source.panicOn = false
	res = s.Tick()
	if res.Err != nil || len(res.Changes) != 1 {
		t.Errorf("next tick should recover and apply, got %+v", res)
	}
}

func TestScheduler_RunningLoopPicksUpChanges(t *testing.T) {
	source := newFakeSource(tpl(1, "a", "A", model.Coords{}))
	registry := newFakeRegistry()
	s := NewScheduler(source, registry, 5*time.Millisecond)
	if _, err := s.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	s.Start()
	defer s.Stop()

	source.set(tpl(1, "a", "A", model.Coords{}), tpl(2, "b", "B", model.Coords{}))

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := registry.fields("2 b"); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("scheduler did not apply the added template")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewScheduler_DefaultInterval(t *testing.T) {
	s := NewScheduler(newFakeSource(), newFakeRegistry(), 0)
	if s.Interval() != DefaultInterval {
		t.Errorf("expected default interval %s, got %s", DefaultInterval, s.Interval())
	}
}

func TestScheduler_DetachedAppliesNothing(t *testing.T) {
	source := newFakeSource(tpl(1, "a", "A", model.Coords{}))
	registry := newFakeRegistry()
	s := NewScheduler(source, registry, time.Hour)

	if _, err := s.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	s.Detach()
	if len(s.Baseline()) != 0 {
		t.Error("Detach should clear the baseline")
	}

	before := registry.mutations()
	source.set(tpl(1, "a", "A", model.Coords{}), tpl(2, "b", "B", model.Coords{}))
	if res, err := s.Refresh(); err != nil || res.Mutations() != 0 {
		t.Errorf("detached refresh should do nothing, got %+v, %v", res, err)
	}
	if res := s.Tick(); res.Skipped || len(res.Changes) != 0 {
		t.Errorf("detached tick should do nothing, got %+v", res)
	}
	if got := registry.mutations(); got != before {
		t.Errorf("registry mutated while detached: %d -> %d", before, got)
	}

	s.Attach()
	res, err := s.Refresh()
	if err != nil {
		t.Fatalf("Refresh after Attach failed: %v", err)
	}
	if len(res.Added) != 1 || res.Added[0] != "2 b" {
		t.Errorf("expected 2 b added after Attach, got %+v", res)
	}
}
