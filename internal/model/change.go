package model

import "fmt"

// ChangeKind classifies a change record
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeModified
	ChangeRemoved
)

// String returns the kind name used in logs
func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "Added"
	case ChangeModified:
		return "Modified"
	case ChangeRemoved:
		return "Removed"
	default:
		return "Unknown"
	}
}

// ChangeRecord describes one difference between the live collection and the
// last sync snapshot. Changed, Old and New are set for Modified only; Entry is
// set for Added and Modified.
type ChangeRecord struct {
	Kind    ChangeKind
	ID      string
	Changed []FieldName
	Old     Fields
	New     Fields
	Entry   Entry
}

// HasField reports whether name is among the changed fields
func (c ChangeRecord) HasField(name FieldName) bool {
	for _, f := range c.Changed {
		if f == name {
			return true
		}
	}
	return false
}

func (c ChangeRecord) String() string {
	if c.Kind == ChangeModified {
		return fmt.Sprintf("%s(%s %v)", c.Kind, c.ID, c.Changed)
	}
	return fmt.Sprintf("%s(%s)", c.Kind, c.ID)
}
