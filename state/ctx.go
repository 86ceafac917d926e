// Package state implements the reactive printer state tree: a nested
// set of records whose fields carry per-field version stamps so a
// scheduler can discover exactly what changed since the last pass.
package state

// Ctx is the weak back-reference every tracked node holds to its owning
// client. A nil Ctx makes every mutation a silent no-op for stamping
// purposes, which is exactly what a freshly constructed, not-yet-
// attached sub-record needs.
type Ctx interface {
	// NextMsgID returns a fresh, monotonically increasing stamp.
	NextMsgID() uint64
	// Signal wakes whatever is waiting for this client to need service.
	Signal()
}

// noopCtx is used by nodes constructed before attachment to a client.
type noopCtx struct{}

func (noopCtx) NextMsgID() uint64 { return 0 }
func (noopCtx) Signal()           {}

var Noop Ctx = noopCtx{}
