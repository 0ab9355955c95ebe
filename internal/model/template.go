package model

import "fmt"

// Coords is a template anchor: tile X, tile Y, pixel X, pixel Y.
// Arrays compare element-wise, so == is value equality.
type Coords [4]int

// String renders coords the way the panel shows them
func (c Coords) String() string {
	return fmt.Sprintf("%d, %d, %d, %d", c[0], c[1], c[2], c[3])
}

// TemplateRecord is a template as held by the template store.
type TemplateRecord struct {
	SortID     *int   `yaml:"sort_id,omitempty"`
	AuthorID   string `yaml:"author_id,omitempty"`
	Key        string `yaml:"key,omitempty"` // combined identifier used by older manifests
	Name       string `yaml:"name"`
	Coords     Coords `yaml:"coords,flow"`
	PixelCount int    `yaml:"pixel_count"`
	Source     string `yaml:"source"` // file path or data: URI
}

// TemplateSettings holds per-identity user settings kept apart from the record
type TemplateSettings struct {
	Enabled     *bool  `yaml:"enabled,omitempty"`
	DisplayName string `yaml:"display_name,omitempty"`
}

// EnabledOrDefault reports the enabled flag, true when it was never set.
func (s TemplateSettings) EnabledOrDefault() bool {
	if s.Enabled == nil {
		return true
	}
	return *s.Enabled
}

// Entry is one resolved row of the live collection.
type Entry struct {
	ID     string
	Record TemplateRecord
	Fields Fields
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}

// BoolPtr returns a pointer to v
func BoolPtr(v bool) *bool {
	return &v
}
