package store

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/ytget/template-overlay/internal/model"
)

var (
	// ErrNotFound is returned for an identity the store does not hold
	ErrNotFound = errors.New("template not found")

	// ErrDuplicate is returned when adding a template whose identity exists
	ErrDuplicate = errors.New("template already exists")
)

// Service is the in-memory template store. Records keep insertion order;
// settings are keyed by identity and survive record updates.
type Service struct {
	records   []model.TemplateRecord
	settings  map[string]model.TemplateSettings
	mutex     sync.RWMutex
	manifest  string                 // when set, mutations are saved here
	saved     []byte                 // last manifest content written by this store
	onUpdate  func(model.StoreEvent) // callback for panel updates
	callbacks sync.Mutex
}

var _ TemplateStore = (*Service)(nil)

// NewService creates an empty store
func NewService() *Service {
	return &Service{
		settings: make(map[string]model.TemplateSettings),
	}
}

// Open creates a store persisted to the manifest at path, loading it when
// it exists.
func Open(path string) (*Service, error) {
	m, err := LoadManifest(path)
	if err != nil {
		return nil, err
	}
	s := NewService()
	s.manifest = path
	s.Replace(m.Templates, m.Settings)
	log.Printf("Loaded %d templates from %s", len(m.Templates), path)
	return s, nil
}

// ManifestPath returns the path mutations are persisted to
func (s *Service) ManifestPath() string {
	return s.manifest
}

// SetUpdateCallback sets the callback function for store mutations
func (s *Service) SetUpdateCallback(callback func(model.StoreEvent)) {
	s.callbacks.Lock()
	s.onUpdate = callback
	s.callbacks.Unlock()
}

// Templates returns the records in store order
func (s *Service) Templates() []model.TemplateRecord {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return append([]model.TemplateRecord(nil), s.records...)
}

// Settings returns the settings stored for id
func (s *Service) Settings(id string) (model.TemplateSettings, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	v, ok := s.settings[id]
	return v, ok
}

// IsEnabled reports the enabled flag of id, true when never set
func (s *Service) IsEnabled(id string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.settings[id].EnabledOrDefault()
}

// Get returns the record with identity id
func (s *Service) Get(id string) (model.TemplateRecord, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.TemplateRecord{}, false
	}
	return s.records[i], true
}

// Add appends a template. Records with no usable identity get a stable
// placeholder key.
func (s *Service) Add(record model.TemplateRecord) (string, error) {
	record = withStableKey(record)
	id := model.IdentityOf(record)

	s.mutex.Lock()
	if s.indexOf(id) >= 0 {
		s.mutex.Unlock()
		return "", fmt.Errorf("add %s: %w", id, ErrDuplicate)
	}
	s.records = append(s.records, record)
	if err := s.persistLocked(); err != nil {
		s.records = s.records[:len(s.records)-1]
		s.mutex.Unlock()
		return "", err
	}
	s.mutex.Unlock()

	s.notify(model.StoreEvent{Kind: model.StoreCreated, ID: id, Source: record.Source})
	return id, nil
}

// Update replaces the record with the same identity in place
func (s *Service) Update(record model.TemplateRecord) error {
	id := model.IdentityOf(record)

	s.mutex.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mutex.Unlock()
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	prev := s.records[i]
	s.records[i] = record
	if err := s.persistLocked(); err != nil {
		s.records[i] = prev
		s.mutex.Unlock()
		return err
	}
	s.mutex.Unlock()

	s.notify(model.StoreEvent{Kind: model.StoreUpdated, ID: id, Source: record.Source})
	return nil
}

// RemoveByIdentity deletes the template and its settings. It reports false
// when the identity is unknown or the change could not be saved.
func (s *Service) RemoveByIdentity(id string) bool {
	s.mutex.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mutex.Unlock()
		log.Printf("Warning: remove of unknown template %s", id)
		return false
	}

	prevRecords := append([]model.TemplateRecord(nil), s.records...)
	prevSettings, hadSettings := s.settings[id]
	s.records = append(s.records[:i], s.records[i+1:]...)
	delete(s.settings, id)
	if err := s.persistLocked(); err != nil {
		s.records = prevRecords
		if hadSettings {
			s.settings[id] = prevSettings
		}
		s.mutex.Unlock()
		log.Printf("Error: remove %s: %v", id, err)
		return false
	}
	s.mutex.Unlock()

	s.notify(model.StoreEvent{Kind: model.StoreRemoved, ID: id})
	return true
}

// SetEnabled stores the enabled flag of id
func (s *Service) SetEnabled(id string, enabled bool) error {
	return s.updateSettings(id, func(v *model.TemplateSettings) {
		v.Enabled = model.BoolPtr(enabled)
	})
}

// SetDisplayName overrides the name shown for id; empty restores the record name
func (s *Service) SetDisplayName(id, name string) error {
	return s.updateSettings(id, func(v *model.TemplateSettings) {
		v.DisplayName = strings.TrimSpace(name)
	})
}

// Replace swaps the whole collection without firing callbacks. Changes made
// this way reach the panel through periodic sync.
func (s *Service) Replace(records []model.TemplateRecord, settings map[string]model.TemplateSettings) {
	next := make([]model.TemplateRecord, 0, len(records))
	for _, r := range records {
		next = append(next, withStableKey(r))
	}
	nextSettings := make(map[string]model.TemplateSettings, len(settings))
	for id, v := range settings {
		nextSettings[id] = v
	}

	s.mutex.Lock()
	s.records = next
	s.settings = nextSettings
	s.mutex.Unlock()
}

// Save writes the manifest, if one is configured
func (s *Service) Save() error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.persistLocked()
}

func (s *Service) updateSettings(id string, apply func(*model.TemplateSettings)) error {
	s.mutex.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mutex.Unlock()
		return fmt.Errorf("settings of %s: %w", id, ErrNotFound)
	}
	prev, had := s.settings[id]
	next := prev
	apply(&next)
	s.settings[id] = next
	if err := s.persistLocked(); err != nil {
		if had {
			s.settings[id] = prev
		} else {
			delete(s.settings, id)
		}
		s.mutex.Unlock()
		return err
	}
	source := s.records[i].Source
	s.mutex.Unlock()

	s.notify(model.StoreEvent{Kind: model.StoreUpdated, ID: id, Source: source})
	return nil
}

// persistLocked saves the manifest; callers hold mutex
func (s *Service) persistLocked() error {
	if s.manifest == "" {
		return nil
	}
	m := Manifest{
		Templates: s.records,
		Settings:  s.settings,
	}
	data, err := SaveManifest(s.manifest, m)
	if err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	s.saved = data
	return nil
}

// Reload replaces the collection from manifest content read from disk.
// Content this store wrote itself is ignored. Reports whether the collection
// was replaced.
func (s *Service) Reload(data []byte) (bool, error) {
	s.mutex.RLock()
	own := s.saved != nil && bytes.Equal(data, s.saved)
	s.mutex.RUnlock()
	if own {
		return false, nil
	}

	m, err := ParseManifest(data)
	if err != nil {
		return false, err
	}
	s.Replace(m.Templates, m.Settings)
	s.mutex.Lock()
	s.saved = append([]byte(nil), data...)
	s.mutex.Unlock()
	log.Printf("Reloaded %d templates from manifest", len(m.Templates))
	return true, nil
}

// indexOf returns the position of id; callers hold mutex
func (s *Service) indexOf(id string) int {
	for i, r := range s.records {
		if rid, _ := model.ResolveIdentity(r); rid == id {
			return i
		}
	}
	return -1
}

// notify delivers ev outside the store lock
func (s *Service) notify(ev model.StoreEvent) {
	s.callbacks.Lock()
	callback := s.onUpdate
	s.callbacks.Unlock()
	if callback != nil {
		callback(ev)
	}
}

// withStableKey pins a placeholder identity into Key so it does not change
// between reads.
func withStableKey(record model.TemplateRecord) model.TemplateRecord {
	id, err := model.ResolveIdentity(record)
	if err != nil && strings.HasPrefix(id, model.TempIdentityPrefix) {
		record.Key = strconv.Itoa(model.DefaultSortID) + model.IdentitySeparator + id
	}
	return record
}
