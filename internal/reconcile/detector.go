package reconcile

import (
	"sort"

	"github.com/ytget/template-overlay/internal/model"
)

// DetectChanges compares the live collection with the previous snapshot.
// Added and Modified records follow collection order; Removed records follow,
// sorted by identity. previous is not modified.
func DetectChanges(current []model.Entry, previous model.Snapshot) []model.ChangeRecord {
	var changes []model.ChangeRecord
	seen := make(map[string]struct{}, len(current))

	for _, e := range current {
		seen[e.ID] = struct{}{}
		old, ok := previous[e.ID]
		if !ok {
			changes = append(changes, model.ChangeRecord{Kind: model.ChangeAdded, ID: e.ID, New: e.Fields, Entry: e})
			continue
		}
		if changed := old.Diff(e.Fields); len(changed) > 0 {
			changes = append(changes, model.ChangeRecord{
				Kind:    model.ChangeModified,
				ID:      e.ID,
				Changed: changed,
				Old:     old,
				New:     e.Fields,
				Entry:   e,
			})
		}
	}

	for _, id := range sortedKeys(previous) {
		if _, ok := seen[id]; !ok {
			changes = append(changes, model.ChangeRecord{Kind: model.ChangeRemoved, ID: id, Old: previous[id]})
		}
	}
	return changes
}

func sortedKeys(s model.Snapshot) []string {
	keys := make([]string, 0, len(s))
	for id := range s {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	return keys
}
