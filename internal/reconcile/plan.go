package reconcile

import (
	"log"

	"github.com/ytget/template-overlay/internal/model"
)

// Update is an in-place field update of one card
type Update struct {
	ID      string
	Changed []model.FieldName
	Fields  model.Fields
}

// Plan is a batch of registry mutations computed before any is applied.
// Removes run first, then updates, then adds; Order (when non-nil) is the
// final card order.
type Plan struct {
	Remove []string
	Update []Update
	Add    []model.Entry
	Order  []string
}

// Mutations counts membership and field mutations, excluding reordering
func (p Plan) Mutations() int {
	return len(p.Remove) + len(p.Update) + len(p.Add)
}

// Collect reads the store once and resolves identities and watched fields.
// A duplicate identity keeps its first occurrence.
func Collect(source Source) []model.Entry {
	records := source.Templates()
	entries := make([]model.Entry, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for _, record := range records {
		id := model.IdentityOf(record)
		if _, dup := seen[id]; dup {
			log.Printf("Warning: duplicate template identity %q, keeping first occurrence", id)
			continue
		}
		seen[id] = struct{}{}

		settings, _ := source.Settings(id)
		entries = append(entries, model.Entry{
			ID:     id,
			Record: record,
			Fields: model.FieldsOf(record, settings),
		})
	}
	return entries
}

// PlanFull diffs the live entries against what the registry currently shows.
func PlanFull(entries []model.Entry, registered model.Snapshot) Plan {
	plan := Plan{Order: orderOf(entries)}
	current := make(map[string]struct{}, len(entries))

	for _, e := range entries {
		current[e.ID] = struct{}{}
		shown, ok := registered[e.ID]
		if !ok {
			plan.Add = append(plan.Add, e)
			continue
		}
		if changed := shown.Diff(e.Fields); len(changed) > 0 {
			plan.Update = append(plan.Update, Update{ID: e.ID, Changed: changed, Fields: e.Fields})
		}
	}

	for _, id := range sortedKeys(registered) {
		if _, ok := current[id]; !ok {
			plan.Remove = append(plan.Remove, id)
		}
	}
	return plan
}

// PlanChanges turns detector output into a plan.
func PlanChanges(changes []model.ChangeRecord, entries []model.Entry) Plan {
	var plan Plan
	for _, c := range changes {
		switch c.Kind {
		case model.ChangeAdded:
			plan.Add = append(plan.Add, c.Entry)
		case model.ChangeRemoved:
			plan.Remove = append(plan.Remove, c.ID)
		case model.ChangeModified:
			plan.Update = append(plan.Update, Update{ID: c.ID, Changed: c.Changed, Fields: c.New})
		}
	}
	if plan.Mutations() > 0 {
		plan.Order = orderOf(entries)
	}
	return plan
}

func orderOf(entries []model.Entry) []string {
	order := make([]string, len(entries))
	for i, e := range entries {
		order[i] = e.ID
	}
	return order
}
