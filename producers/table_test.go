package producers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplyprint/ws-client/state"
	"github.com/simplyprint/ws-client/wsmsg"
)

func TestFileProgressEntryBuildsErrorMessage(t *testing.T) {
	ctx := &fakeCtx{}
	ps := state.New(ctx)
	ps.FileProgress.SetState(ctx, state.FileProgressError)
	ps.FileProgress.SetMessage(ctx, "checksum mismatch")

	out := fileProgressEntry.Build(ps, nil)
	require.NotNil(t, out)
	assert.Equal(t, "error", out["state"])
	assert.Equal(t, "checksum mismatch", out["message"])
	assert.NotContains(t, out, "percent")
}

func TestFileProgressEntryDefaultsMissingErrorMessage(t *testing.T) {
	ctx := &fakeCtx{}
	ps := state.New(ctx)
	ps.FileProgress.SetState(ctx, state.FileProgressError)

	out := fileProgressEntry.Build(ps, nil)
	assert.Equal(t, "Unknown error", out["message"])
}

func TestFileProgressEntryIncludesPercentWhileDownloading(t *testing.T) {
	ctx := &fakeCtx{}
	ps := state.New(ctx)
	ps.FileProgress.SetState(ctx, state.FileProgressDownloading)
	ps.FileProgress.SetPercent(ctx, 42.5)
	jobID := 9

	out := fileProgressEntry.Build(ps, &jobID)
	assert.Equal(t, 42.5, out["percent"])
	assert.Equal(t, 9, out["job_id"])
}

func TestFileProgressEntryOmitsPercentWhenReady(t *testing.T) {
	ctx := &fakeCtx{}
	ps := state.New(ctx)
	ps.FileProgress.SetState(ctx, state.FileProgressReady)

	out := fileProgressEntry.Build(ps, nil)
	assert.NotContains(t, out, "percent")
}

func TestJobInfoEntryDispatchSendsImmediatelyOnExclusiveField(t *testing.T) {
	ctx := &fakeCtx{}
	ps := state.New(ctx)
	ps.JobInfo.SetStarted(ctx)

	assert.Equal(t, wsmsg.DispatchSend, jobInfoEntry.Dispatch(ps))
}

func TestJobInfoEntryDispatchRateLimitsPlainProgress(t *testing.T) {
	ctx := &fakeCtx{}
	ps := state.New(ctx)
	ps.Intervals.Set(state.IntervalJob, time.Hour)
	ps.JobInfo.SetProgress(ctx, 50)

	mode := jobInfoEntry.Dispatch(ps)
	assert.Equal(t, wsmsg.DispatchSend, mode, "first dispatch within a fresh interval still sends")

	mode2 := jobInfoEntry.Dispatch(ps)
	assert.Equal(t, wsmsg.DispatchRateLimit, mode2, "second dispatch within the cooldown window is rate-limited")
}

func TestCpuInfoEntryBuildsOnlyDirtyFields(t *testing.T) {
	ctx := &fakeCtx{}
	ps := state.New(ctx)
	ps.CpuInfo.SetUsage(ctx, 12.5)

	out := cpuInfoEntry.Build(ps, nil)
	assert.Equal(t, 12.5, out["usage"])
	assert.NotContains(t, out, "temp")
}

func TestMaterialDataEntryRefreshIncludesEverything(t *testing.T) {
	ctx := &fakeCtx{}
	ps := state.New(ctx)
	ps.RequestMaterialRefresh()

	out := materialDataEntry.Build(ps, nil)
	assert.Equal(t, true, out["refresh"])
	assert.Contains(t, out, "bed")
	assert.Contains(t, out, "materials")
	assert.Contains(t, out, "layout")
	assert.Contains(t, out, "nozzles")
}

func TestMaterialDataEntryWithoutRefreshOnlyIncludesDirty(t *testing.T) {
	ctx := &fakeCtx{}
	ps := state.New(ctx)
	ps.ResetChanged(nil)
	for _, n := range ps.Nozzles {
		n.ResetChanged(nil)
	}
	for _, m := range ps.Materials {
		m.ResetChanged(nil)
	}
	for _, s := range ps.MmsLayout {
		s.ResetChanged(nil)
	}
	ps.Bed.ResetChanged(nil)

	ps.Bed.SetType(ctx, "glass")

	out := materialDataEntry.Build(ps, nil)
	assert.NotContains(t, out, "refresh")
	assert.Contains(t, out, "bed")
	assert.NotContains(t, out, "materials")
}
