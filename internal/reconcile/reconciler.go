package reconcile

import (
	"log"

	"github.com/ytget/template-overlay/internal/model"
)

// Result lists the identities touched by a full pass
type Result struct {
	Added   []string
	Updated []string
	Removed []string
}

// Mutations returns the number of registry mutations performed
func (r Result) Mutations() int {
	return len(r.Added) + len(r.Updated) + len(r.Removed)
}

// Reconciler runs full passes against a registry.
type Reconciler struct {
	registry Registry
}

// NewReconciler creates a reconciler for registry
func NewReconciler(registry Registry) *Reconciler {
	return &Reconciler{registry: registry}
}

// Reconcile makes the registry's membership, fields and order match entries.
// The whole plan is computed first and applied as one batch. Calling it again
// with an unchanged collection mutates nothing.
func (r *Reconciler) Reconcile(entries []model.Entry) Result {
	plan := PlanFull(entries, r.registry.Snapshots())
	r.registry.Apply(plan)

	result := Result{Removed: plan.Remove}
	for _, e := range plan.Add {
		result.Added = append(result.Added, e.ID)
	}
	for _, u := range plan.Update {
		result.Updated = append(result.Updated, u.ID)
	}

	if result.Mutations() > 0 {
		log.Printf("Reconcile: %d added, %d updated, %d removed", len(result.Added), len(result.Updated), len(result.Removed))
	}
	return result
}
