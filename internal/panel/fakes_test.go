package panel

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/ytget/template-overlay/internal/model"
)

// fakeCard is the handle produced by fakePresenter
type fakeCard struct {
	id      string
	fields  model.Fields
	thumb   image.Image
	failed  bool
	removed bool
}

// fakePresenter records every presenter call
type fakePresenter struct {
	mu       sync.Mutex
	rendered int
	updates  int
	removes  int
	reorders int
	thumbs   int
	order    []*fakeCard
	notices  []Notice
}

func (p *fakePresenter) RenderNew(id string, fields model.Fields) Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rendered++
	c := &fakeCard{id: id, fields: fields}
	p.order = append(p.order, c)
	return c
}

func (p *fakePresenter) ApplyUpdate(h Handle, changed []model.FieldName, fields model.Fields) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates++
	h.(*fakeCard).fields = fields
}

func (p *fakePresenter) SetThumbnail(h Handle, img image.Image, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.thumbs++
	c := h.(*fakeCard)
	c.thumb = img
	c.failed = err != nil
}

func (p *fakePresenter) Remove(h Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removes++
	c := h.(*fakeCard)
	c.removed = true
	for i, v := range p.order {
		if v == c {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

func (p *fakePresenter) Reorder(handles []Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reorders++
	p.order = p.order[:0]
	for _, h := range handles {
		p.order = append(p.order, h.(*fakeCard))
	}
}

func (p *fakePresenter) Notify(n Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notices = append(p.notices, n)
}

func (p *fakePresenter) ids() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.order))
	for i, c := range p.order {
		out[i] = c.id
	}
	return out
}

func (p *fakePresenter) counts() (rendered, updates, removes, reorders int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rendered, p.updates, p.removes, p.reorders
}

func (p *fakePresenter) thumbCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.thumbs
}

func (p *fakePresenter) lastNotice() (Notice, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.notices) == 0 {
		return Notice{}, false
	}
	return p.notices[len(p.notices)-1], true
}

// fakeThumbs serves a fixed image; when gate is set Get blocks until it is
// closed or ctx is done.
type fakeThumbs struct {
	mu          sync.Mutex
	img         image.Image
	gate        chan struct{}
	invalidated []string
}

func (f *fakeThumbs) Get(ctx context.Context, id, source string) (image.Image, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.img, nil
}

func (f *fakeThumbs) Invalidate(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, id)
}

func (f *fakeThumbs) invalidatedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.invalidated...)
}

var errStoreLocked = errors.New("store is read-only")

// fakeStore is an in-memory template store
type fakeStore struct {
	mu         sync.Mutex
	records    []model.TemplateRecord
	settings   map[string]model.TemplateSettings
	rejectAll  bool
	removeHits int
	hold       func() // when set, Templates calls it before returning
}

func newFakeStore(records ...model.TemplateRecord) *fakeStore {
	return &fakeStore{records: records, settings: make(map[string]model.TemplateSettings)}
}

func (s *fakeStore) Templates() []model.TemplateRecord {
	s.mu.Lock()
	records := append([]model.TemplateRecord(nil), s.records...)
	hold := s.hold
	s.mu.Unlock()

	if hold != nil {
		hold()
	}
	return records
}

func (s *fakeStore) setHold(hold func()) {
	s.mu.Lock()
	s.hold = hold
	s.mu.Unlock()
}

func (s *fakeStore) Settings(id string) (model.TemplateSettings, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.settings[id]
	return v, ok
}

func (s *fakeStore) IsEnabled(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings[id].EnabledOrDefault()
}

func (s *fakeStore) RemoveByIdentity(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeHits++
	if s.rejectAll {
		return false
	}
	for i, r := range s.records {
		if model.IdentityOf(r) == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			delete(s.settings, id)
			return true
		}
	}
	return false
}

func (s *fakeStore) SetEnabled(id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rejectAll {
		return errStoreLocked
	}
	v := s.settings[id]
	v.Enabled = model.BoolPtr(enabled)
	s.settings[id] = v
	return nil
}

func (s *fakeStore) set(records ...model.TemplateRecord) {
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
}

func tpl(sort int, author, name string) model.TemplateRecord {
	return model.TemplateRecord{
		SortID:     model.IntPtr(sort),
		AuthorID:   author,
		Name:       name,
		Coords:     model.Coords{1, 2, 3, 4},
		PixelCount: 50,
		Source:     "img-" + author,
	}
}

func entry(r model.TemplateRecord) model.Entry {
	id := model.IdentityOf(r)
	return model.Entry{ID: id, Record: r, Fields: model.FieldsOf(r, model.TemplateSettings{})}
}
