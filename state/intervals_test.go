package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplyprint/ws-client/wsmsg"
)

func TestNewIntervalsStartsReady(t *testing.T) {
	iv := NewIntervals()
	assert.True(t, iv.IsReady(IntervalPing))
	assert.Equal(t, time.Duration(0), iv.TimeUntilReady(IntervalPing))
}

func TestUseConsumesCooldownAndBlocksImmediateReuse(t *testing.T) {
	iv := NewIntervals()
	iv.Set(IntervalPing, time.Hour)

	require.True(t, iv.Use(IntervalPing))
	assert.False(t, iv.IsReady(IntervalPing), "a just-used kind must not be ready again immediately")
	assert.False(t, iv.Use(IntervalPing), "a second Use before the cooldown elapses must fail")
}

func TestDispatchModeRateLimitsWithinCooldown(t *testing.T) {
	iv := NewIntervals()
	iv.Set(IntervalTemps, time.Hour)

	assert.Equal(t, wsmsg.DispatchSend, iv.DispatchMode(IntervalTemps))
	assert.Equal(t, wsmsg.DispatchRateLimit, iv.DispatchMode(IntervalTemps))
}

func TestUpdatePreservesLastUsedTimestamps(t *testing.T) {
	iv := NewIntervals()
	iv.Set(IntervalJob, time.Hour)
	require.True(t, iv.Use(IntervalJob))

	iv.Update(map[IntervalKind]int{IntervalJob: 1})
	assert.False(t, iv.IsReady(IntervalJob), "Update must not reset last-used, or a pushed interval_change would let a kind fire immediately")
}

func TestSetOverwritesSingleKindOnly(t *testing.T) {
	iv := NewIntervals()
	iv.Set(IntervalPing, 123*time.Millisecond)

	snap := iv.Snapshot()
	assert.Equal(t, 123, snap[IntervalPing])
	assert.Equal(t, int(defaultDurations[IntervalCPU]/time.Millisecond), snap[IntervalCPU])
}
