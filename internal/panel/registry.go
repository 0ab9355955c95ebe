package panel

import (
	"context"
	"log"
	"slices"
	"sync"

	"github.com/ytget/template-overlay/internal/model"
	"github.com/ytget/template-overlay/internal/reconcile"
)

// card is a registered rendered card and its last-rendered fields
type card struct {
	id     string
	handle Handle
	fields model.Fields
	source string
}

// Registry maps template identity to its rendered card. At most one card
// exists per identity; display order is kept in order.
type Registry struct {
	presenter Presenter
	thumbs    Thumbnailer

	mu         sync.Mutex
	cards      map[string]*card
	order      []string
	generation uint64 // bumped by Close; late thumbnails from older generations are dropped
	ctx        context.Context
	cancel     context.CancelFunc

	pending sync.WaitGroup
}

// NewRegistry creates an empty registry
func NewRegistry(presenter Presenter, thumbs Thumbnailer) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		presenter: presenter,
		thumbs:    thumbs,
		cards:     make(map[string]*card),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Add renders a card for entry and requests its thumbnail. The card shows a
// placeholder until the thumbnail resolves.
func (r *Registry) Add(entry model.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addLocked(entry)
}

// UpdateFields applies the named fields to an existing card in place
func (r *Registry) UpdateFields(id string, changed []model.FieldName, fields model.Fields) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updateLocked(id, changed, fields)
}

// Remove evicts the card and its cached thumbnail
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(id)
}

// Has reports whether a card is registered for id
func (r *Registry) Has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.cards[id]
	return ok
}

// Reorder arranges existing cards to follow ids without recreating them
func (r *Registry) Reorder(ids []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reorderLocked(ids)
}

// Apply performs a reconcile plan as one batch; no caller sees a partially
// applied plan.
func (r *Registry) Apply(plan reconcile.Plan) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range plan.Remove {
		r.removeLocked(id)
	}
	for _, u := range plan.Update {
		r.updateLocked(u.ID, u.Changed, u.Fields)
	}
	for _, e := range plan.Add {
		r.addLocked(e)
	}
	if plan.Order != nil {
		r.reorderLocked(plan.Order)
	}
}

// ReloadThumbnail drops the cached preview for id and requests a new one
// from source, keeping the card. A card already showing source is left alone.
func (r *Registry) ReloadThumbnail(id, source string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cards[id]
	if !ok || c.source == source {
		return false
	}
	r.thumbs.Invalidate(id)
	c.source = source
	r.requestThumbnail(c)
	return true
}

// Order returns card identities in display order
func (r *Registry) Order() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

// Snapshot returns the last rendered fields of id
func (r *Registry) Snapshot(id string) (model.Fields, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[id]
	if !ok {
		return model.Fields{}, false
	}
	return c.fields, true
}

// Snapshots returns the last rendered fields of every card
func (r *Registry) Snapshots() model.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := make(model.Snapshot, len(r.cards))
	for id, c := range r.cards {
		s[id] = c.fields
	}
	return s
}

// Len returns the number of cards
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cards)
}

// Close removes every card, cancels outstanding thumbnail requests and waits
// for them. The registry can be filled again afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	for _, id := range r.order {
		r.presenter.Remove(r.cards[id].handle)
	}
	r.cards = make(map[string]*card)
	r.order = nil
	r.generation++
	r.cancel()
	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.mu.Unlock()

	r.pending.Wait()
}

func (r *Registry) addLocked(e model.Entry) {
	if c, ok := r.cards[e.ID]; ok {
		log.Printf("Warning: card %s already registered, updating instead", e.ID)
		if changed := c.fields.Diff(e.Fields); len(changed) > 0 {
			r.updateLocked(e.ID, changed, e.Fields)
		}
		return
	}

	c := &card{
		id:     e.ID,
		fields: e.Fields,
		source: e.Record.Source,
	}
	c.handle = r.presenter.RenderNew(e.ID, e.Fields)
	r.cards[e.ID] = c
	r.order = append(r.order, e.ID)
	r.requestThumbnail(c)
}

func (r *Registry) updateLocked(id string, changed []model.FieldName, fields model.Fields) bool {
	c, ok := r.cards[id]
	if !ok {
		log.Printf("Warning: update for unknown card %s ignored", id)
		return false
	}
	if len(changed) == 0 {
		return true
	}
	c.fields = c.fields.Merge(fields, changed)
	r.presenter.ApplyUpdate(c.handle, changed, c.fields)
	return true
}

func (r *Registry) removeLocked(id string) bool {
	c, ok := r.cards[id]
	if !ok {
		return false
	}
	r.presenter.Remove(c.handle)
	delete(r.cards, id)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id })
	r.thumbs.Invalidate(id)
	return true
}

// reorderLocked follows ids for known cards; cards missing from ids keep
// their relative order at the end.
func (r *Registry) reorderLocked(ids []string) {
	next := make([]string, 0, len(r.order))
	placed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := r.cards[id]; !ok {
			continue
		}
		if _, dup := placed[id]; dup {
			continue
		}
		placed[id] = struct{}{}
		next = append(next, id)
	}
	for _, id := range r.order {
		if _, ok := placed[id]; !ok {
			next = append(next, id)
		}
	}

	if slices.Equal(next, r.order) {
		return
	}
	r.order = next

	handles := make([]Handle, len(next))
	for i, id := range next {
		handles[i] = r.cards[id].handle
	}
	r.presenter.Reorder(handles)
}

// requestThumbnail resolves the preview off the lock. The result is attached
// only if the same card is still registered in the same generation.
func (r *Registry) requestThumbnail(c *card) {
	ctx := r.ctx
	generation := r.generation
	id, source := c.id, c.source

	r.pending.Add(1)
	go func() {
		defer r.pending.Done()

		img, err := r.thumbs.Get(ctx, id, source)

		r.mu.Lock()
		defer r.mu.Unlock()
		if r.generation != generation || r.cards[id] != c || c.source != source {
			log.Printf("Thumbnail for %s arrived after its card was removed, dropping", id)
			return
		}
		r.presenter.SetThumbnail(c.handle, img, err)
	}()
}
