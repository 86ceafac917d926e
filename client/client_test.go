package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplyprint/ws-client/printerconfig"
	"github.com/simplyprint/ws-client/wsmsg"
)

func newTestClient() *Client {
	return New(printerconfig.New(), nil)
}

func TestNewStartsConnecting(t *testing.T) {
	c := newTestClient()
	assert.Equal(t, StateConnecting, c.State())
	assert.True(t, c.IsPending())
}

func TestOnConnectedMarksConnected(t *testing.T) {
	c := newTestClient()
	name := "printer-1"
	c.HandleServerMessage(wsmsg.ServerMessage{Connected: &wsmsg.ConnectedMsgData{
		InSetup: false,
		Name:    &name,
	}}, 3)

	assert.Equal(t, StateConnected, c.State())
	assert.False(t, c.IsPending())
	assert.Equal(t, uint64(3), c.ConnectionV())
	assert.Equal(t, "printer-1", c.Config.Name)
}

func TestEnsureAddedNoOpBeforeConnectionEstablished(t *testing.T) {
	c := newTestClient()
	_, ok := c.EnsureAdded(true)
	assert.False(t, ok, "a fresh client reports CONNECTING until a real ConnectionEstablished is observed")
	assert.Equal(t, StateConnecting, c.State())
}

func TestEnsureAddedTransitionsToPendingAdded(t *testing.T) {
	c := newTestClient()
	c.OnConnectionEstablished(1)

	out, ok := c.EnsureAdded(true)
	require.True(t, ok)
	assert.Equal(t, StatePendingAdded, c.State())
	assert.NotEmpty(t, out.Type)
}

func TestEnsureAddedNoOpWhenAlreadyPendingAdded(t *testing.T) {
	c := newTestClient()
	c.OnConnectionEstablished(1)

	_, ok := c.EnsureAdded(true)
	require.True(t, ok)

	_, ok = c.EnsureAdded(true)
	assert.False(t, ok)
}

func TestEnsureRemovedDefersWhilePendingAdded(t *testing.T) {
	c := newTestClient()
	c.OnConnectionEstablished(1)

	_, ok := c.EnsureAdded(true)
	require.True(t, ok)

	_, ok = c.EnsureRemoved()
	assert.False(t, ok, "remove must wait for the pending add's outcome")
	assert.Equal(t, StatePendingAdded, c.State())
}

func TestEnsureRemovedAfterConnected(t *testing.T) {
	c := newTestClient()
	c.HandleServerMessage(wsmsg.ServerMessage{Connected: &wsmsg.ConnectedMsgData{}}, 1)

	out, ok := c.EnsureRemoved()
	require.True(t, ok)
	assert.Equal(t, StatePendingRemoved, c.State())
	assert.NotEmpty(t, out.Type)
}

func TestOnAddConnectionAckRejectedResetsState(t *testing.T) {
	c := newTestClient()
	c.OnConnectionEstablished(1)
	_, ok := c.EnsureAdded(true)
	require.True(t, ok)

	reason := "already registered elsewhere"
	c.HandleServerMessage(wsmsg.ServerMessage{AddConnection: &wsmsg.MultiPrinterAddedMsgData{
		Status: false,
		Reason: &reason,
	}}, 1)

	assert.Equal(t, StateNotConnected, c.State())
}

func TestOnAddConnectionAckAcceptedSetsPid(t *testing.T) {
	c := newTestClient()
	c.OnConnectionEstablished(1)
	_, ok := c.EnsureAdded(true)
	require.True(t, ok)

	pid := 11
	c.HandleServerMessage(wsmsg.ServerMessage{AddConnection: &wsmsg.MultiPrinterAddedMsgData{
		Status: true,
		Pid:    &pid,
	}}, 5)

	assert.Equal(t, StateConnected, c.State())
	assert.Equal(t, 11, c.Config.ID)
	assert.False(t, c.Config.InSetup)
	assert.Equal(t, uint64(5), c.ConnectionV())
}

func TestOnConnectionLostReturnsToConnecting(t *testing.T) {
	c := newTestClient()
	c.HandleServerMessage(wsmsg.ServerMessage{Connected: &wsmsg.ConnectedMsgData{}}, 1)
	require.Equal(t, StateConnected, c.State())

	c.OnConnectionLost(1)
	assert.Equal(t, StateConnecting, c.State(), "a lost connection must wait for a fresh ConnectionEstablished before anything is replayed")
	assert.True(t, c.IsPending())
}

func TestOnConnectionLostIgnoresStaleGeneration(t *testing.T) {
	c := newTestClient()
	c.HandleServerMessage(wsmsg.ServerMessage{Connected: &wsmsg.ConnectedMsgData{}}, 5)
	require.Equal(t, StateConnected, c.State())

	c.OnConnectionLost(3)
	assert.Equal(t, StateConnected, c.State(), "a lost notification older than the client's current generation is ignored")
}

func TestOnConnectionEstablishedAfterLostUnblocksEnsureAdded(t *testing.T) {
	c := newTestClient()
	c.HandleServerMessage(wsmsg.ServerMessage{Connected: &wsmsg.ConnectedMsgData{}}, 1)
	c.OnConnectionLost(1)
	require.Equal(t, StateConnecting, c.State())

	_, ok := c.EnsureAdded(true)
	assert.False(t, ok, "must not act until the new generation is actually established")

	c.OnConnectionEstablished(2)
	assert.Equal(t, StateNotConnected, c.State())
	assert.Equal(t, uint64(2), c.ConnectionV())

	_, ok = c.EnsureAdded(true)
	assert.True(t, ok)
}

func TestSignalInvokesWaker(t *testing.T) {
	c := newTestClient()
	woke := false
	c.SetWaker(func() { woke = true })

	c.Signal()
	assert.True(t, woke)

	select {
	case <-c.Woken():
	default:
		t.Fatal("expected signal channel to carry a pending wake")
	}
}

func TestOnNewTokenNoExistMarksDeleted(t *testing.T) {
	c := newTestClient()
	c.HandleServerMessage(wsmsg.ServerMessage{Connected: &wsmsg.ConnectedMsgData{}}, 1)
	c.Config.ID = 9

	c.HandleServerMessage(wsmsg.ServerMessage{NewToken: &wsmsg.NewTokenMsgData{NoExist: true}}, 1)

	assert.Equal(t, StateNotConnected, c.State())
	assert.Equal(t, 0, c.Config.ID)
	assert.True(t, c.Config.InSetup)
}
