package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplyprint/ws-client/client"
	"github.com/simplyprint/ws-client/connection"
	"github.com/simplyprint/ws-client/connmanager"
	"github.com/simplyprint/ws-client/printerconfig"
	"github.com/simplyprint/ws-client/wsmsg"
)

func newTestScheduler() *Scheduler {
	mgr := connmanager.New(connection.ModeSingle, "host", "0.2", nil)
	return New(mgr, nil, nil)
}

func TestManageRegistersActiveEntryAndWaker(t *testing.T) {
	s := newTestScheduler()
	c := client.New(printerconfig.New(), nil)

	s.Manage(c)

	s.mu.Lock()
	e, ok := s.entries[c]
	s.mu.Unlock()
	require.True(t, ok)
	assert.True(t, e.active)

	c.Signal()
	select {
	case <-s.wake:
	default:
		t.Fatal("expected client signal to wake the scheduler")
	}
}

func TestDueEntriesPicksUpGoalMismatch(t *testing.T) {
	s := newTestScheduler()
	c := client.New(printerconfig.New(), nil)
	s.Manage(c)

	s.mu.Lock()
	s.entries[c].lastTicked = time.Now()
	s.mu.Unlock()

	due := s.dueEntries()
	require.Len(t, due, 1)
	assert.Same(t, c, due[0].client)
}

func TestDueEntriesSkipsSettledInactiveClient(t *testing.T) {
	s := newTestScheduler()
	c := client.New(printerconfig.New(), nil)
	s.Manage(c)

	s.mu.Lock()
	e := s.entries[c]
	e.active = false
	e.lastTicked = time.Now()
	s.mu.Unlock()

	due := s.dueEntries()
	assert.Empty(t, due)
}

func TestSetActiveFalseMarksRemoving(t *testing.T) {
	s := newTestScheduler()
	c := client.New(printerconfig.New(), nil)
	s.Manage(c)

	s.SetActive(c, false)

	s.mu.Lock()
	e := s.entries[c]
	s.mu.Unlock()
	assert.False(t, e.active)
	assert.True(t, e.removing)
}

func TestReapRemovesSettledRemovingEntries(t *testing.T) {
	s := newTestScheduler()
	c := client.New(printerconfig.New(), nil) // starts CONNECTING: already settled
	s.Manage(c)
	s.SetActive(c, false)

	s.reap()

	s.mu.Lock()
	_, ok := s.entries[c]
	s.mu.Unlock()
	assert.False(t, ok, "a removing client that is already settled (CONNECTING) must be reaped")
}

func TestReapLeavesUnsettledRemovingEntries(t *testing.T) {
	s := newTestScheduler()
	c := client.New(printerconfig.New(), nil)
	c.HandleServerMessage(wsmsg.ServerMessage{Connected: &wsmsg.ConnectedMsgData{}}, 1)
	require.Equal(t, client.StateConnected, c.State())

	s.Manage(c)
	s.SetActive(c, false)

	s.reap()

	s.mu.Lock()
	_, ok := s.entries[c]
	s.mu.Unlock()
	assert.True(t, ok, "a still-registered client must not be reaped until it settles")
}

func TestStopEndsRun(t *testing.T) {
	s := newTestScheduler()
	s.Stop()

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}
