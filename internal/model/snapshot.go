package model

// FieldName names a watched field in change records.
type FieldName string

const (
	FieldDisplayName FieldName = "name"
	FieldCoords      FieldName = "coords"
	FieldPixelCount  FieldName = "pixelCount"
	FieldEnabled     FieldName = "enabled"
)

// WatchedFields lists every watched field in comparison order
var WatchedFields = []FieldName{FieldDisplayName, FieldCoords, FieldPixelCount, FieldEnabled}

// Fields is the watched-field view of a template: what a card shows and
// what change detection compares.
type Fields struct {
	Name       string
	Coords     Coords
	PixelCount int
	Enabled    bool
}

// FieldsOf builds the watched fields, applying the display name override.
func FieldsOf(record TemplateRecord, settings TemplateSettings) Fields {
	name := record.Name
	if settings.DisplayName != "" {
		name = settings.DisplayName
	}
	return Fields{
		Name:       name,
		Coords:     record.Coords,
		PixelCount: record.PixelCount,
		Enabled:    settings.EnabledOrDefault(),
	}
}

// Diff returns the names of fields that differ between f and other.
func (f Fields) Diff(other Fields) []FieldName {
	var changed []FieldName
	if f.Name != other.Name {
		changed = append(changed, FieldDisplayName)
	}
	if f.Coords != other.Coords {
		changed = append(changed, FieldCoords)
	}
	if f.PixelCount != other.PixelCount {
		changed = append(changed, FieldPixelCount)
	}
	if f.Enabled != other.Enabled {
		changed = append(changed, FieldEnabled)
	}
	return changed
}

// Merge copies the named fields from src into f.
func (f Fields) Merge(src Fields, names []FieldName) Fields {
	for _, name := range names {
		switch name {
		case FieldDisplayName:
			f.Name = src.Name
		case FieldCoords:
			f.Coords = src.Coords
		case FieldPixelCount:
			f.PixelCount = src.PixelCount
		case FieldEnabled:
			f.Enabled = src.Enabled
		}
	}
	return f
}

// Snapshot maps identity to the watched fields seen at the last sync.
type Snapshot map[string]Fields

// SnapshotOf builds a snapshot from resolved entries
func SnapshotOf(entries []Entry) Snapshot {
	s := make(Snapshot, len(entries))
	for _, e := range entries {
		s[e.ID] = e.Fields
	}
	return s
}

// Clone returns an independent copy
func (s Snapshot) Clone() Snapshot {
	c := make(Snapshot, len(s))
	for id, f := range s {
		c[id] = f
	}
	return c
}
