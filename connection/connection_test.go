package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simplyprint/ws-client/printerconfig"
	"github.com/simplyprint/ws-client/wsmsg"
)

func TestURLSingleMode(t *testing.T) {
	c := New("ws.simplyprint.io", "0.2", nil)
	cfg := &printerconfig.Config{ID: 7, Token: "tok"}

	url := c.URL(Hint{Mode: ModeSingle, Cfg: cfg})
	assert.Equal(t, "wss://ws.simplyprint.io/0.2/p/7/tok", url)
}

func TestURLMultiModeForcesZeroIDAndToken(t *testing.T) {
	c := New("ws.simplyprint.io", "0.2", nil)
	cfg := &printerconfig.Config{ID: 7, Token: "tok"}

	url := c.URL(Hint{Mode: ModeMulti, Cfg: cfg})
	assert.Equal(t, "wss://ws.simplyprint.io/0.2/mp/0/0", url)
}

func TestSendWhenNotConnectedDropsSilently(t *testing.T) {
	c := New("ws.simplyprint.io", "0.2", nil)
	ok := c.Send(wsmsg.Out{Type: wsmsg.ClientMsgType("ping")}, nil)
	assert.False(t, ok)
}

func TestVStartsAtZero(t *testing.T) {
	c := New("ws.simplyprint.io", "0.2", nil)
	assert.Equal(t, uint64(0), c.V())
	assert.False(t, c.Connected())
}

func TestRecordFailureFiresOnSuspectAfterThreshold(t *testing.T) {
	c := New("ws.simplyprint.io", "0.2", nil)
	fired := 0
	c.OnSuspect(func() { fired++ })

	for i := 0; i < suspectThreshold-1; i++ {
		c.recordFailure()
	}
	assert.Equal(t, 0, fired)

	c.recordFailure()
	assert.Equal(t, 1, fired)
	assert.Empty(t, c.failureTimes)
}
