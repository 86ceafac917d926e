package state

import "sync"

// Tracker is the per-node adjacency map of field name to the message-id
// stamp it was last changed at. Every state node embeds one.
type Tracker struct {
	mu      sync.Mutex
	changed map[string]uint64
	ctx     Ctx
}

// Bind attaches a node to its owning client's context. New binds every
// node it builds, and each setter re-binds its node to the ctx it is
// given.
func (t *Tracker) Bind(ctx Ctx) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ctx = ctx
}

func (t *Tracker) ctxOrNoop() Ctx {
	if t.ctx == nil {
		return Noop
	}
	return t.ctx
}

// MarkChanged stamps field with a fresh message id and signals the
// owning client. Called unconditionally by callers who have already
// decided the field materially changed (or, for signal-style fields,
// that a repeat assignment must still register).
func (t *Tracker) MarkChanged(field string) {
	ctx := t.ctxOrNoop()
	id := ctx.NextMsgID()
	if id == 0 {
		return // detached / unbound node: stay inert.
	}

	t.mu.Lock()
	if t.changed == nil {
		t.changed = make(map[string]uint64)
	}
	t.changed[field] = id
	t.mu.Unlock()

	ctx.Signal()
}

// ChangedFields returns a snapshot copy of this node's own (non-
// recursive) changed-field stamps.
func (t *Tracker) ChangedFields() map[string]uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]uint64, len(t.changed))
	for k, v := range t.changed {
		out[k] = v
	}
	return out
}

// HasChanged reports whether any field on this node is currently dirty.
func (t *Tracker) HasChanged() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.changed) > 0
}

// MaxStamp returns the highest stamp among this node's own fields, or 0
// if none are dirty.
func (t *Tracker) MaxStamp() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var max uint64
	for _, v := range t.changed {
		if v > max {
			max = v
		}
	}
	return max
}

// ResetChanged mirrors StateModel.model_reset_changed:
//   - no keys, no v: clear everything.
//   - no keys, v set: drop every stamp <= v, keep the rest (they were
//     acquired after the consumed snapshot and must survive).
//   - keys given: drop each key unless v is set and its current stamp
//     is > v (i.e. it was re-dirtied after the snapshot).
func (t *Tracker) ResetChanged(v *uint64, keys ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(keys) == 0 && v == nil {
		t.changed = make(map[string]uint64)
		return
	}

	if len(keys) == 0 {
		next := make(map[string]uint64, len(t.changed))
		for k, stamp := range t.changed {
			if stamp > *v {
				next[k] = stamp
			}
		}
		t.changed = next
		return
	}

	for _, k := range keys {
		if v != nil {
			if cur, ok := t.changed[k]; ok && cur > *v {
				continue
			}
		}
		delete(t.changed, k)
	}
}

// SetField compares cur and val with ==, and only if they differ does it
// assign and stamp field as changed: reassigning the same value is a
// no-op and never dirties the field.
func SetField[T comparable](t *Tracker, field string, cur *T, val T) {
	if *cur == val {
		return
	}
	*cur = val
	t.MarkChanged(field)
}
