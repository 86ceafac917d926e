package clientview

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplyprint/ws-client/client"
	"github.com/simplyprint/ws-client/printerconfig"
	"github.com/simplyprint/ws-client/wsmsg"
)

func newTestClient() *client.Client {
	cfg := printerconfig.New()
	return client.New(cfg, nil)
}

func TestRouteByPid(t *testing.T) {
	v := New()
	c := newTestClient()
	c.Config.ID = 5
	v.Add(c)

	pid := 5
	msg := wsmsg.ServerMessage{For: marshalInt(t, pid)}
	got, ok := v.Route(msg)
	require.True(t, ok)
	assert.Same(t, c, got)
}

func TestRouteByUniqueIDFallback(t *testing.T) {
	v := New()
	c := newTestClient()
	v.Add(c)

	msg := wsmsg.ServerMessage{For: marshalString(t, c.Config.UniqueID)}
	got, ok := v.Route(msg)
	require.True(t, ok)
	assert.Same(t, c, got)
}

func TestRouteAddConnectionAckByUniqueIDInData(t *testing.T) {
	v := New()
	c := newTestClient()
	v.Add(c)

	uid := c.Config.UniqueID
	msg := wsmsg.ServerMessage{
		AddConnection: &wsmsg.MultiPrinterAddedMsgData{UniqueID: &uid, Status: true},
	}
	got, ok := v.Route(msg)
	require.True(t, ok)
	assert.Same(t, c, got)
}

func TestRouteRemoveConnectionAckByUniqueIDInData(t *testing.T) {
	v := New()
	c := newTestClient()
	v.Add(c)

	uid := c.Config.UniqueID
	msg := wsmsg.ServerMessage{
		RemoveConn: &wsmsg.MultiPrinterRemovedMsgData{UniqueID: &uid, Deleted: false},
	}
	got, ok := v.Route(msg)
	require.True(t, ok)
	assert.Same(t, c, got)
}

func TestRouteUnknownReturnsFalse(t *testing.T) {
	v := New()
	msg := wsmsg.ServerMessage{For: marshalInt(t, 999)}
	_, ok := v.Route(msg)
	assert.False(t, ok)
}

func TestTagSetsFor(t *testing.T) {
	c := newTestClient()
	out := Tag(c, wsmsg.Out{Type: wsmsg.ClientMsgType("ping")})
	assert.Equal(t, c.Config.UniqueID, out.For)
}

func TestRemoveDropsBothIndexes(t *testing.T) {
	v := New()
	c := newTestClient()
	c.Config.ID = 9
	v.Add(c)
	v.Remove(c)

	_, ok := v.ByUniqueID(c.Config.UniqueID)
	assert.False(t, ok)
	_, ok = v.ByPid(9)
	assert.False(t, ok)
}

func marshalInt(t *testing.T, n int) []byte {
	t.Helper()
	b, err := json.Marshal(n)
	require.NoError(t, err)
	return b
}

func marshalString(t *testing.T, s string) []byte {
	t.Helper()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	return b
}
