package store

import (
	"github.com/ytget/template-overlay/internal/model"
)

// TemplateStore defines the interface for the template store service.
type TemplateStore interface {
	SetUpdateCallback(func(model.StoreEvent))
	Templates() []model.TemplateRecord
	Settings(id string) (model.TemplateSettings, bool)
	IsEnabled(id string) bool
	Get(id string) (model.TemplateRecord, bool)

	// Add appends a template and returns its identity
	Add(record model.TemplateRecord) (string, error)

	// Update replaces the template with the same identity
	Update(record model.TemplateRecord) error

	RemoveByIdentity(id string) bool
	SetEnabled(id string, enabled bool) error
	SetDisplayName(id, name string) error

	// Replace swaps the whole collection without firing callbacks
	Replace(records []model.TemplateRecord, settings map[string]model.TemplateSettings)
}
