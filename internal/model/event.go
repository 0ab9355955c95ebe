package model

// StoreEventKind is the kind of a template store mutation
type StoreEventKind string

const (
	StoreCreated StoreEventKind = "created"
	StoreUpdated StoreEventKind = "updated"
	StoreRemoved StoreEventKind = "removed"
)

// StoreEvent is emitted by the template store after a mutation
type StoreEvent struct {
	Kind StoreEventKind
	ID   string
	// Source is the template image source after the mutation, empty on removal
	Source string
}
