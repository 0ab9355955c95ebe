package reconcile

// Package reconcile keeps the card registry in step with the template store:
// a pure change detector, full-pass and incremental plans, and a polling
// scheduler that applies incremental plans while the panel is visible.
