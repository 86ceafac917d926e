package state

import (
	"sync"
	"time"

	"github.com/simplyprint/ws-client/wsmsg"
)

// IntervalKind names one of the server-configurable cooldowns.
type IntervalKind string

const (
	IntervalAI           IntervalKind = "ai"
	IntervalJob          IntervalKind = "job"
	IntervalTemps        IntervalKind = "temps"
	IntervalTempsTarget  IntervalKind = "temps_target"
	IntervalCPU          IntervalKind = "cpu"
	IntervalReconnect    IntervalKind = "reconnect"
	IntervalReadyMessage IntervalKind = "ready_message"
	IntervalPing         IntervalKind = "ping"
	IntervalWebcam       IntervalKind = "webcam"
)

var defaultDurations = map[IntervalKind]time.Duration{
	IntervalAI:           30000 * time.Millisecond,
	IntervalJob:          5000 * time.Millisecond,
	IntervalTemps:        5000 * time.Millisecond,
	IntervalTempsTarget:  2500 * time.Millisecond,
	IntervalCPU:          30000 * time.Millisecond,
	IntervalReconnect:    1000 * time.Millisecond,
	IntervalReadyMessage: 60000 * time.Millisecond,
	IntervalPing:         20000 * time.Millisecond,
	IntervalWebcam:       1000 * time.Millisecond,
}

// Intervals is the per-kind cooldown gate. The clock is
// monotonic (time.Now() in Go is already monotonic-backed); Update
// replaces durations but must not disturb last-used timestamps, so a
// server-pushed interval_change can't make a kind immediately ready
// again by resetting its usage.
type Intervals struct {
	mu        sync.Mutex
	durations map[IntervalKind]time.Duration
	lastUsed  map[IntervalKind]time.Time
}

// NewIntervals builds an Intervals table at the default cooldown
// durations.
func NewIntervals() *Intervals {
	durations := make(map[IntervalKind]time.Duration, len(defaultDurations))
	for k, v := range defaultDurations {
		durations[k] = v
	}
	return &Intervals{durations: durations, lastUsed: make(map[IntervalKind]time.Time)}
}

// IsReady reports whether kind's cooldown has elapsed.
func (iv *Intervals) IsReady(kind IntervalKind) bool {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	return iv.isReadyLocked(kind)
}

func (iv *Intervals) isReadyLocked(kind IntervalKind) bool {
	last, ok := iv.lastUsed[kind]
	if !ok {
		return true
	}
	return time.Since(last) >= iv.durations[kind]
}

// TimeUntilReady returns how long until kind's cooldown elapses (may be
// negative/zero if already ready).
func (iv *Intervals) TimeUntilReady(kind IntervalKind) time.Duration {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	last, ok := iv.lastUsed[kind]
	if !ok {
		return 0
	}
	return iv.durations[kind] - time.Since(last)
}

// Use consumes the cooldown if ready, recording now as last-used and
// returning true; otherwise it leaves state untouched and returns
// false. This is the only operation that advances last-used.
func (iv *Intervals) Use(kind IntervalKind) bool {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	if !iv.isReadyLocked(kind) {
		return false
	}
	iv.lastUsed[kind] = time.Now()
	return true
}

// DispatchMode reports whether a kind-gated message should send now or
// be rate-limited.
func (iv *Intervals) DispatchMode(kind IntervalKind) wsmsg.DispatchMode {
	if !iv.Use(kind) {
		return wsmsg.DispatchRateLimit
	}
	return wsmsg.DispatchSend
}

// Set overwrites a single kind's duration.
func (iv *Intervals) Set(kind IntervalKind, d time.Duration) {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	iv.durations[kind] = d
}

// Update replaces every duration from data, preserving last-used
// timestamps.
func (iv *Intervals) Update(data map[IntervalKind]int) {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	for k, ms := range data {
		iv.durations[k] = time.Duration(ms) * time.Millisecond
	}
}

// Snapshot returns the current durations in milliseconds, the wire
// shape of IntervalChangeMsg/ConnectedMsgData.
func (iv *Intervals) Snapshot() map[IntervalKind]int {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	out := make(map[IntervalKind]int, len(iv.durations))
	for k, v := range iv.durations {
		out[k] = int(v / time.Millisecond)
	}
	return out
}
