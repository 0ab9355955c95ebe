package model

// ThumbnailState is the cache state of a template preview
type ThumbnailState string

const (
	// ThumbnailAbsent means no preview was ever requested
	ThumbnailAbsent ThumbnailState = "absent"

	// ThumbnailPending means a derivation is in flight
	ThumbnailPending ThumbnailState = "pending"

	// ThumbnailReady means a preview bitmap is cached
	ThumbnailReady ThumbnailState = "ready"

	// ThumbnailFailed means derivation failed and the failure is cached
	ThumbnailFailed ThumbnailState = "failed"
)

// String returns the string representation of ThumbnailState
func (s ThumbnailState) String() string {
	return string(s)
}

// IsCached returns true if a result (bitmap or failure) is stored
func (s ThumbnailState) IsCached() bool {
	return s == ThumbnailReady || s == ThumbnailFailed
}

// SchedulerState is the lifecycle state of the sync scheduler
type SchedulerState string

const (
	SchedulerStopped SchedulerState = "Stopped"
	SchedulerRunning SchedulerState = "Running"
)

// String returns the string representation of SchedulerState
func (s SchedulerState) String() string {
	return string(s)
}

// IsRunning returns true while the polling loop is active
func (s SchedulerState) IsRunning() bool {
	return s == SchedulerRunning
}
