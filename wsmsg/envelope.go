package wsmsg

import "encoding/json"

// Out is an outgoing client->server envelope. Data is the payload map
// built by a producer's Build step; For carries the owning client's
// unique_id in MULTI mode and is left empty in SINGLE mode.
type Out struct {
	Type ClientMsgType
	Data map[string]any
	For  string
}

// isEmpty mirrors the source's model_serializer: a map/slice-typed data
// value with zero length is treated the same as a nil value.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch x := v.(type) {
	case map[string]any:
		return len(x) == 0
	case []any:
		return len(x) == 0
	default:
		return false
	}
}

// MarshalJSON omits "data" when empty and "for" when unset, matching
// the wire shape in SPEC_FULL.md ("data is omitted from the wire form
// when nil or an empty map/slice").
func (o Out) MarshalJSON() ([]byte, error) {
	raw := map[string]any{"type": string(o.Type)}

	if !isEmpty(map[string]any(o.Data)) {
		raw["data"] = o.Data
	}

	if o.For != "" {
		raw["for"] = o.For
	}

	return json.Marshal(raw)
}

// In is an incoming server->client envelope before its data payload has
// been decoded against a concrete type.
type In struct {
	Type ServerMsgType   `json:"type"`
	Data json.RawMessage `json:"data"`
	For  json.RawMessage `json:"for"`
}

// ForUniqueID extracts the "for" field as a unique_id string.
func (e In) ForUniqueID() (string, bool) {
	if len(e.For) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(e.For, &s); err != nil {
		return "", false
	}
	return s, true
}

// ForPid extracts the "for" field as a numeric pid, used when routing
// ordinary per-client traffic in MULTI mode.
func (e In) ForPid() (int, bool) {
	if len(e.For) == 0 {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(e.For, &n); err != nil {
		return 0, false
	}
	return n, true
}
