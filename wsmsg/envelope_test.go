package wsmsg

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutMarshalOmitsEmptyDataAndFor(t *testing.T) {
	out := Out{Type: ClientMsgPing}

	b, err := json.Marshal(out)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "ping", raw["type"])
	assert.NotContains(t, raw, "data")
	assert.NotContains(t, raw, "for")
}

func TestOutMarshalOmitsEmptyMapData(t *testing.T) {
	out := Out{Type: ClientMsgKeepalive, Data: map[string]any{}}

	b, err := json.Marshal(out)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.NotContains(t, raw, "data", "an empty data map must be omitted the same as nil")
}

func TestOutMarshalIncludesDataAndFor(t *testing.T) {
	out := Out{
		Type: ClientMsgStateChange,
		Data: map[string]any{"new": "printing"},
		For:  "abc-123",
	}

	b, err := json.Marshal(out)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "state_change", raw["type"])
	assert.Equal(t, "abc-123", raw["for"])
	assert.Equal(t, map[string]any{"new": "printing"}, raw["data"])
}

func TestInForUniqueID(t *testing.T) {
	env := In{For: json.RawMessage(`"abc-123"`)}

	id, ok := env.ForUniqueID()
	require.True(t, ok)
	assert.Equal(t, "abc-123", id)
}

func TestInForUniqueIDAbsent(t *testing.T) {
	env := In{}

	_, ok := env.ForUniqueID()
	assert.False(t, ok)
}

func TestInForPid(t *testing.T) {
	env := In{For: json.RawMessage(`42`)}

	pid, ok := env.ForPid()
	require.True(t, ok)
	assert.Equal(t, 42, pid)
}

func TestInForPidWrongShapeFails(t *testing.T) {
	env := In{For: json.RawMessage(`"not-a-number"`)}

	_, ok := env.ForPid()
	assert.False(t, ok)
}
