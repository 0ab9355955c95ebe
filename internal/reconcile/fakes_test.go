package reconcile

import (
	"sync"

	"github.com/ytget/template-overlay/internal/model"
)

// fakeSource is an in-memory store
type fakeSource struct {
	mu       sync.Mutex
	records  []model.TemplateRecord
	settings map[string]model.TemplateSettings
	panicOn  bool
}

func newFakeSource(records ...model.TemplateRecord) *fakeSource {
	return &fakeSource{records: records, settings: make(map[string]model.TemplateSettings)}
}

func (f *fakeSource) Templates() []model.TemplateRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOn {
		panic("store exploded")
	}
	return append([]model.TemplateRecord(nil), f.records...)
}

func (f *fakeSource) Settings(id string) (model.TemplateSettings, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.settings[id]
	return s, ok
}

func (f *fakeSource) set(records ...model.TemplateRecord) {
	f.mu.Lock()
	f.records = records
	f.mu.Unlock()
}

func (f *fakeSource) setEnabled(id string, enabled bool) {
	f.mu.Lock()
	f.settings[id] = model.TemplateSettings{Enabled: model.BoolPtr(enabled)}
	f.mu.Unlock()
}

// fakeRegistry records applied plans
type fakeRegistry struct {
	mu       sync.Mutex
	cards    model.Snapshot
	order    []string
	adds     int
	updates  int
	removes  int
	reorders int
	applied  []Plan
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{cards: make(model.Snapshot)}
}

func (r *fakeRegistry) Snapshots() model.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cards.Clone()
}

func (r *fakeRegistry) Apply(plan Plan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, plan)

	for _, id := range plan.Remove {
		delete(r.cards, id)
		r.removes++
		r.order = without(r.order, id)
	}
	for _, u := range plan.Update {
		r.cards[u.ID] = r.cards[u.ID].Merge(u.Fields, u.Changed)
		r.updates++
	}
	for _, e := range plan.Add {
		r.cards[e.ID] = e.Fields
		r.order = append(r.order, e.ID)
		r.adds++
	}
	if plan.Order != nil && !equalOrder(r.order, plan.Order) {
		r.order = append([]string(nil), plan.Order...)
		r.reorders++
	}
}

func (r *fakeRegistry) mutations() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.adds + r.updates + r.removes + r.reorders
}

func (r *fakeRegistry) currentOrder() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

func (r *fakeRegistry) fields(id string) (model.Fields, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.cards[id]
	return f, ok
}

func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func equalOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func tpl(sort int, author, name string, coords model.Coords) model.TemplateRecord {
	return model.TemplateRecord{
		SortID:     model.IntPtr(sort),
		AuthorID:   author,
		Name:       name,
		Coords:     coords,
		PixelCount: 100,
	}
}
