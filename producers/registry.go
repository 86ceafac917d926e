// Package producers maps dirty fields on a PrinterState to outbound
// wsmsg.Out envelopes. Each
// Entry is grounded on the matching ClientMsg subclass in
// original_source/simplyprint_ws_client/core/ws_protocol/messages.py.
package producers

import (
	"strings"

	"github.com/simplyprint/ws-client/state"
	"github.com/simplyprint/ws-client/wsmsg"
)

// BuildFunc renders a producer's wire payload from current state. An
// empty/nil return means "nothing to send" and the bucket is skipped.
type BuildFunc func(ps *state.PrinterState, currentJobID *int) map[string]any

// ResetFunc clears the stamps this producer is responsible for, bounded
// by v so stamps acquired after the consumed snapshot survive.
type ResetFunc func(ps *state.PrinterState, v *uint64)

// DispatchFunc decides whether a non-empty, built payload should
// actually be sent this pass. Nil means "always send."
type DispatchFunc func(ps *state.PrinterState) wsmsg.DispatchMode

// Entry is one registered {field-paths -> message kind} rule.
type Entry struct {
	Kind     wsmsg.ClientMsgType
	Paths    []string
	Build    BuildFunc
	Reset    ResetFunc
	Dispatch DispatchFunc
}

// Registry is consulted in order; consume-and-send preserves this
// order within one scheduler pass.
var Registry = []Entry{
	machineDataEntry,
	firmwareEntry,
	firmwareWarningEntry,
	stateChangeEntry,
	toolEntry,
	temperatureEntry,
	ambientTemperatureEntry,
	jobInfoEntry,
	fileProgressEntry,
	filamentSensorEntry,
	cpuInfoEntry,
	psuEntry,
	webcamStatusEntry,
	webcamEntry,
	materialDataEntry,
}

// maxForPaths returns the highest stamp in changeset whose key matches
// one of the given top-level path prefixes (either an exact match, for
// scalar/flat nodes, or a "prefix." match, for list nodes whose entries
// are keyed "prefix.<index>...").
func maxForPaths(changeset map[string]uint64, prefixes []string) uint64 {
	var max uint64
	for key, v := range changeset {
		for _, p := range prefixes {
			if key == p || strings.HasPrefix(key, p+".") {
				if v > max {
					max = v
				}
			}
		}
	}
	return max
}

// Consume walks the registry in order, building and gating each
// producer against the current changeset, and returns the envelopes to
// send this pass.
func Consume(ps *state.PrinterState, pending bool, currentJobID *int) []wsmsg.Out {
	changeset := ps.RecursiveChangeset()

	var out []wsmsg.Out

	for _, e := range Registry {
		v := maxForPaths(changeset, e.Paths)
		if v == 0 {
			continue
		}

		if pending && !e.Kind.WhenPending() {
			// Setup-time policy violation: drop silently.
			continue
		}

		data := e.Build(ps, currentJobID)
		if len(data) == 0 {
			continue
		}

		mode := wsmsg.DispatchSend
		if e.Dispatch != nil {
			mode = e.Dispatch(ps)
		}
		if mode != wsmsg.DispatchSend {
			// Rate-limited or cancelled: stamps survive for next pass.
			continue
		}

		e.Reset(ps, &v)
		out = append(out, wsmsg.Out{Type: e.Kind, Data: data})
	}

	return out
}
