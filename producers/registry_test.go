package producers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplyprint/ws-client/state"
	"github.com/simplyprint/ws-client/wsmsg"
)

type fakeCtx struct{ id uint64 }

func (f *fakeCtx) NextMsgID() uint64 { f.id++; return f.id }
func (f *fakeCtx) Signal()           {}

func resetAll(ps *state.PrinterState) {
	ps.ResetChanged(nil)
}

func TestConsumeSkipsUnchangedEntries(t *testing.T) {
	ctx := &fakeCtx{}
	ps := state.New(ctx)
	resetAll(ps)

	out := Consume(ps, false, nil)
	assert.Empty(t, out)
}

func TestConsumeBuildsStateChangeOnStatusChange(t *testing.T) {
	ctx := &fakeCtx{}
	ps := state.New(ctx)
	ps.SetStatus(state.StatusPrinting)

	out := Consume(ps, false, nil)
	require.Len(t, out, 1)
	assert.Equal(t, wsmsg.ClientMsgStateChange, out[0].Type)
	assert.Equal(t, "printing", out[0].Data["new"])
}

func TestConsumeClearsStampsAfterSend(t *testing.T) {
	ctx := &fakeCtx{}
	ps := state.New(ctx)
	ps.SetStatus(state.StatusPrinting)

	out := Consume(ps, false, nil)
	require.Len(t, out, 1)

	out = Consume(ps, false, nil)
	assert.Empty(t, out, "a consumed stamp must not be resent next pass")
}

func TestConsumeDropsNonPendingAllowedKindsWhileSetup(t *testing.T) {
	ctx := &fakeCtx{}
	ps := state.New(ctx)
	ps.SetActiveTool(1) // "tool" message kind is not in the pending allow-list

	out := Consume(ps, true, nil)
	assert.Empty(t, out, "tool changes must be dropped silently while the client is pending setup")

	changeset := ps.RecursiveChangeset()
	assert.Contains(t, changeset, "active_tool", "the dirty stamp itself is not cleared by a pending-drop")
}

func TestConsumeAllowsStateChangeWhilePending(t *testing.T) {
	ctx := &fakeCtx{}
	ps := state.New(ctx)
	ps.SetStatus(state.StatusPrinting)

	out := Consume(ps, true, nil)
	require.Len(t, out, 1)
	assert.Equal(t, wsmsg.ClientMsgStateChange, out[0].Type)
}

func TestConsumePreservesRegistryOrder(t *testing.T) {
	ctx := &fakeCtx{}
	ps := state.New(ctx)
	ps.SetActiveTool(2)
	ps.SetStatus(state.StatusPrinting)

	out := Consume(ps, false, nil)
	require.Len(t, out, 2)
	assert.Equal(t, wsmsg.ClientMsgStateChange, out[0].Type, "state_change is registered before tool")
	assert.Equal(t, wsmsg.ClientMsgTool, out[1].Type)
}
