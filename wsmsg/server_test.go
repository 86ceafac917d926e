package wsmsg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeServerMessageConnected(t *testing.T) {
	raw := []byte(`{"type":"connected","data":{"in_setup":true,"region":"eu"}}`)

	msg, err := DecodeServerMessage(raw)
	require.NoError(t, err)
	require.NotNil(t, msg.Connected)
	assert.True(t, msg.Connected.InSetup)
	assert.Equal(t, "eu", msg.Connected.Region)
}

func TestDecodeServerMessageNoPayloadType(t *testing.T) {
	msg, err := DecodeServerMessage([]byte(`{"type":"pong"}`))
	require.NoError(t, err)
	assert.Equal(t, ServerMsgPong, msg.Type)
}

func TestDecodeServerMessageUnknownTypeFails(t *testing.T) {
	_, err := DecodeServerMessage([]byte(`{"type":"not_a_real_type"}`))
	assert.Error(t, err)
}

func TestDecodeServerMessageDemand(t *testing.T) {
	raw := []byte(`{"type":"demand","data":{"demand":"pause"}}`)

	msg, err := DecodeServerMessage(raw)
	require.NoError(t, err)
	require.NotNil(t, msg.Demand)
	assert.Equal(t, DemandPause, msg.Demand.Type)
}

func TestDecodeServerMessageAddConnectionRoutesByUniqueID(t *testing.T) {
	raw := []byte(`{"type":"add_connection","for":"abc-123","data":{"status":true,"pid":5}}`)

	msg, err := DecodeServerMessage(raw)
	require.NoError(t, err)
	require.NotNil(t, msg.AddConnection)
	require.NotNil(t, msg.AddConnection.Pid)
	assert.Equal(t, 5, *msg.AddConnection.Pid)

	id, ok := msg.ForUniqueID()
	require.True(t, ok)
	assert.Equal(t, "abc-123", id)
}

func TestDecodeServerMessageOrdinaryTrafficRoutesByPid(t *testing.T) {
	raw := []byte(`{"type":"interval_change","for":7,"data":{"ai":60,"job":1,"temps":1,"temps_target":1,"cpu":30,"reconnect":1,"ready_message":1,"ping":5,"webcam":1}}`)

	msg, err := DecodeServerMessage(raw)
	require.NoError(t, err)
	require.NotNil(t, msg.IntervalChange)
	assert.Equal(t, 60, msg.IntervalChange.AI)

	pid, ok := msg.ForPid()
	require.True(t, ok)
	assert.Equal(t, 7, pid)
}
