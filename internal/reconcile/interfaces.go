package reconcile

import (
	"github.com/ytget/template-overlay/internal/model"
)

// Source is the read side of the template store.
type Source interface {
	// Templates returns the collection in display order
	Templates() []model.TemplateRecord
	// Settings returns per-identity settings, ok=false when none are stored
	Settings(id string) (model.TemplateSettings, bool)
}

// Registry is the card registry as seen by reconciliation.
type Registry interface {
	// Snapshots returns the last rendered fields of every card
	Snapshots() model.Snapshot
	// Apply performs every mutation of plan as one batch
	Apply(plan Plan)
}
