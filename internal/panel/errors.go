package panel

import "fmt"

// StoreOp names a user-initiated store operation
type StoreOp string

const (
	OpRemove StoreOp = "remove"
	OpToggle StoreOp = "toggle"
)

// StoreOperationError reports a remove/toggle the store rejected. Local
// registry and cache state are left as they were.
type StoreOperationError struct {
	Op  StoreOp
	ID  string
	Err error
}

func (e *StoreOperationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s template %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s template %s: rejected by store", e.Op, e.ID)
}

func (e *StoreOperationError) Unwrap() error {
	return e.Err
}

// Notice is a user-facing outcome of a store operation
type Notice struct {
	Op      StoreOp
	ID      string
	Enabled bool // new state after a successful toggle
	Err     error
}

// Failed reports whether the notice carries an error
func (n Notice) Failed() bool {
	return n.Err != nil
}
