package reconcile

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ytget/template-overlay/internal/model"
)

// DefaultInterval is the polling period while the panel is visible
const DefaultInterval = 2 * time.Second

// SyncError reports a tick or refresh abandoned because of an unexpected
// failure. The scheduler keeps running after it.
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s: %v", e.Op, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// TickResult describes one scheduler tick
type TickResult struct {
	Skipped bool
	Changes []model.ChangeRecord
	Err     error
}

// Scheduler polls the store while running and applies incremental plans.
// Ticks and refreshes never overlap: a tick that finds another apply in
// progress is skipped. A detached scheduler applies nothing.
type Scheduler struct {
	source     Source
	registry   Registry
	reconciler *Reconciler
	interval   time.Duration
	onError    func(error)

	applyMu  sync.Mutex
	baseline model.Snapshot
	detached bool

	mu    sync.Mutex
	state model.SchedulerState
	stop  chan struct{}
	done  chan struct{}
	ticks sync.WaitGroup

	skipped atomic.Uint64
}

// NewScheduler creates a stopped scheduler
func NewScheduler(source Source, registry Registry, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		source:     source,
		registry:   registry,
		reconciler: NewReconciler(registry),
		interval:   interval,
		baseline:   make(model.Snapshot),
		state:      model.SchedulerStopped,
	}
}

// SetErrorHandler registers a callback for SyncErrors
func (s *Scheduler) SetErrorHandler(handler func(error)) {
	s.mu.Lock()
	s.onError = handler
	s.mu.Unlock()
}

// SetInterval changes the polling period. It takes effect on the next Start.
func (s *Scheduler) SetInterval(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s.mu.Lock()
	s.interval = interval
	s.mu.Unlock()
}

// Interval returns the polling period
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// State returns Stopped or Running
func (s *Scheduler) State() model.SchedulerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Skipped returns how many ticks were skipped because an apply was running
func (s *Scheduler) Skipped() uint64 {
	return s.skipped.Load()
}

// Start begins polling. Starting a running scheduler does nothing.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsRunning() {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.state = model.SchedulerRunning
	go s.loop(s.interval, s.stop, s.done)
	log.Printf("Sync scheduler started, interval %s", s.interval)
}

// Stop halts polling and waits for any tick in progress. It is safe to call
// on a scheduler that was never started or is already stopped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.state.IsRunning() {
		s.mu.Unlock()
		return
	}
	close(s.stop)
	done := s.done
	s.state = model.SchedulerStopped
	s.mu.Unlock()

	<-done
	s.ticks.Wait()
	log.Printf("Sync scheduler stopped")
}

func (s *Scheduler) loop(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.ticks.Add(1)
			go func() {
				defer s.ticks.Done()
				s.Tick()
			}()
		}
	}
}

// Tick detects changes since the last baseline, applies them and refreshes
// the baseline. Failures are logged and reported, never propagated.
func (s *Scheduler) Tick() (result TickResult) {
	if !s.applyMu.TryLock() {
		s.skipped.Add(1)
		log.Printf("Sync tick skipped: previous apply still running")
		return TickResult{Skipped: true}
	}
	defer s.applyMu.Unlock()
	if s.detached {
		return TickResult{}
	}

	defer func() {
		if r := recover(); r != nil {
			result = TickResult{Err: s.fail("tick", fmt.Errorf("panic: %v", r))}
		}
	}()

	entries := Collect(s.source)
	changes := DetectChanges(entries, s.baseline)
	if len(changes) == 0 {
		return TickResult{}
	}

	s.registry.Apply(PlanChanges(changes, entries))
	s.baseline = model.SnapshotOf(entries)
	log.Printf("Sync tick applied %d changes: %v", len(changes), changes)
	return TickResult{Changes: changes}
}

// Refresh runs a full reconcile and rebuilds the baseline. It waits for a
// running tick instead of skipping.
func (s *Scheduler) Refresh() (result Result, err error) {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()
	if s.detached {
		return Result{}, nil
	}

	defer func() {
		if r := recover(); r != nil {
			result = Result{}
			err = s.fail("refresh", fmt.Errorf("panic: %v", r))
		}
	}()

	entries := Collect(s.source)
	result = s.reconciler.Reconcile(entries)
	s.baseline = model.SnapshotOf(entries)
	return result, nil
}

// Baseline returns a copy of the current sync snapshot
func (s *Scheduler) Baseline() model.Snapshot {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()
	return s.baseline.Clone()
}

// Detach waits for any apply in progress, clears the baseline and makes
// later ticks and refreshes no-ops until Attach. The registry can be torn
// down safely once it returns.
func (s *Scheduler) Detach() {
	s.applyMu.Lock()
	s.detached = true
	s.baseline = make(model.Snapshot)
	s.applyMu.Unlock()
}

// Attach lets ticks and refreshes apply to the registry again
func (s *Scheduler) Attach() {
	s.applyMu.Lock()
	s.detached = false
	s.applyMu.Unlock()
}

func (s *Scheduler) fail(op string, err error) error {
	syncErr := &SyncError{Op: op, Err: err}
	log.Printf("Error: %v", syncErr)
	s.mu.Lock()
	handler := s.onError
	s.mu.Unlock()
	if handler != nil {
		handler(syncErr)
	}
	return syncErr
}
