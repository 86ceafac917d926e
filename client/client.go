// Package client implements the per-printer protocol state machine,
// adapted from
// original_source/simplyprint_ws_client/core/client.py. A Client is the
// state.Ctx its PrinterState is bound to, and is the unit a Connection
// Manager allocates onto a shared or dedicated Connection.
package client

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/simplyprint/ws-client/printerconfig"
	"github.com/simplyprint/ws-client/producers"
	"github.com/simplyprint/ws-client/state"
	"github.com/simplyprint/ws-client/wsmsg"
)

// ClientState is this printer's own view of its registration with the
// cloud, independent of the underlying Connection's socket state.
//
// CONNECTING means the connection this client was last registered
// against is gone and no ConnectionEstablished has been observed for
// the current one yet; ensure_added/ensure_removed must not act until
// it clears.
type ClientState int

const (
	StateNotConnected ClientState = iota
	StateConnecting
	StatePendingAdded
	StatePendingRemoved
	StateConnected
)

func (s ClientState) String() string {
	switch s {
	case StateNotConnected:
		return "NOT_CONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StatePendingAdded:
		return "PENDING_ADDED"
	case StatePendingRemoved:
		return "PENDING_REMOVED"
	case StateConnected:
		return "CONNECTED"
	default:
		return "UNKNOWN"
	}
}

// DemandHandler reacts to one decoded demand. A returned error is
// logged but never crashes the client.
type DemandHandler func(c *Client, d wsmsg.Demand) error

// Client is one printer's protocol state, its reactive state tree, and
// its pending-registration bookkeeping.
type Client struct {
	Config       *printerconfig.Config
	PrinterState *state.PrinterState

	logger *zap.SugaredLogger

	mu    sync.Mutex
	st    ClientState
	stGen uint64 // connection generation st was last set against
	gen   uint64 // connection generation last observed established/lost (0 = none yet)

	msgID  uint64
	signal chan struct{}

	currentJobID *int

	handlers map[wsmsg.DemandType]DemandHandler

	pendingBackoff backoff.BackOff
	lastAttempt    time.Time

	waker func()
}

// New builds a Client bound to its own PrinterState and registers the
// default demand handlers.
func New(cfg *printerconfig.Config, logger *zap.SugaredLogger) *Client {
	c := &Client{
		Config:   cfg,
		logger:   logger,
		st:       StateConnecting,
		signal:   make(chan struct{}, 1),
		handlers: map[wsmsg.DemandType]DemandHandler{},
	}
	c.PrinterState = state.New(c)

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 500 * time.Millisecond
	eb.MaxInterval = 15 * time.Second
	eb.MaxElapsedTime = 0
	c.pendingBackoff = eb

	registerDefaultHandlers(c)
	return c
}

// NextMsgID implements state.Ctx.
func (c *Client) NextMsgID() uint64 { return atomic.AddUint64(&c.msgID, 1) }

// Signal implements state.Ctx, waking a scheduler tick waiting on this
// client.
func (c *Client) Signal() {
	select {
	case c.signal <- struct{}{}:
	default:
	}
	if c.waker != nil {
		c.waker()
	}
}

// Woken exposes the signal channel so a scheduler can select on it.
func (c *Client) Woken() <-chan struct{} { return c.signal }

// SetWaker installs the scheduler-wide wake callback invoked alongside
// this client's own signal channel.
func (c *Client) SetWaker(f func()) { c.waker = f }

// HasPendingWork reports whether anything has marked this client dirty
// since the last drain, without consuming the signal.
func (c *Client) HasPendingWork() bool {
	return len(c.PrinterState.RecursiveChangeset()) > 0
}

// State reports the client's current registration state. A stored
// state tagged against a generation other than the one last observed
// established reports as CONNECTING regardless of what was stored,
// since it was never actually reached on the live connection.
func (c *Client) State() ClientState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.effectiveState()
}

// effectiveState requires c.mu held.
func (c *Client) effectiveState() ClientState {
	if c.gen != c.stGen {
		return StateConnecting
	}
	return c.st
}

// setState requires c.mu held; it tags the new state with the
// generation it was set against.
func (c *Client) setState(s ClientState) {
	c.st = s
	c.stGen = c.gen
}

// IsPending reports whether the client is not yet fully registered
// (not CONNECTED, or still in setup), gating which outbound message
// kinds are allowed.
func (c *Client) IsPending() bool {
	return c.State() != StateConnected || c.Config.InSetup
}

// RegisterHandler installs or overrides the handler for a demand type.
func (c *Client) RegisterHandler(t wsmsg.DemandType, h DemandHandler) {
	c.handlers[t] = h
}

// HandleDemand dispatches a decoded demand to its registered handler,
// logging and swallowing any error.
func (c *Client) HandleDemand(d wsmsg.Demand) {
	h, ok := c.handlers[d.Type]
	if !ok {
		if c.logger != nil {
			c.logger.Debugw("no handler registered for demand", "demand", d.Type)
		}
		return
	}
	if err := h(c, d); err != nil && c.logger != nil {
		c.logger.Errorw("demand handler failed", "demand", d.Type, "err", err)
	}
}

// HandleServerMessage applies one decoded server->client message
// against this client's current registration state.
func (c *Client) HandleServerMessage(msg wsmsg.ServerMessage, connV uint64) {
	switch {
	case msg.Connected != nil:
		c.onConnected(msg.Connected, connV)
	case msg.NewToken != nil:
		c.onNewToken(msg.NewToken)
	case msg.CompleteSetup != nil:
		c.Config.ID = msg.CompleteSetup.PrinterID
		c.Config.InSetup = false
	case msg.IntervalChange != nil:
		c.applyIntervals(msg.IntervalChange)
	case msg.PrinterSettings != nil:
		c.applySettings(msg.PrinterSettings)
	case msg.AddConnection != nil:
		c.onAddConnectionAck(msg.AddConnection, connV)
	case msg.RemoveConn != nil:
		c.onRemoveConnectionAck(msg.RemoveConn)
	case msg.Error != nil:
		if c.logger != nil {
			c.logger.Warnw("server reported error", "msg", msg.Error.Msg)
		}
	case msg.Demand != nil:
		c.HandleDemand(*msg.Demand)
	}
}

func (c *Client) onConnected(d *wsmsg.ConnectedMsgData, connV uint64) {
	c.mu.Lock()
	c.gen = connV
	c.setState(StateConnected)
	c.mu.Unlock()
	c.Config.InSetup = d.InSetup
	if d.ShortID != nil {
		c.Config.ShortID = *d.ShortID
	}
	if d.Name != nil {
		c.Config.Name = *d.Name
	}
	if d.Intervals != nil {
		c.applyIntervals(d.Intervals)
	}
	if d.PrinterSettings != nil {
		c.applySettings(d.PrinterSettings)
	}
	c.PrinterState.MarkCommonFieldsChanged()
	if pb, ok := c.pendingBackoff.(*backoff.ExponentialBackOff); ok {
		pb.Reset()
	}
}

func (c *Client) onNewToken(d *wsmsg.NewTokenMsgData) {
	c.Config.Token = d.Token
	c.Config.ShortID = d.ShortID
	if d.NoExist {
		c.Config.MarkDeleted()
		c.mu.Lock()
		c.setState(StateNotConnected)
		c.mu.Unlock()
	}
}

func (c *Client) applyIntervals(d *wsmsg.IntervalsData) {
	c.PrinterState.Intervals.Update(map[state.IntervalKind]int{
		state.IntervalAI:           d.AI,
		state.IntervalJob:          d.Job,
		state.IntervalTemps:        d.Temps,
		state.IntervalTempsTarget:  d.TempsTarget,
		state.IntervalCPU:          d.CPU,
		state.IntervalReconnect:    d.Reconnect,
		state.IntervalReadyMessage: d.ReadyMessage,
		state.IntervalPing:         d.Ping,
		state.IntervalWebcam:       d.Webcam,
	})
}

func (c *Client) applySettings(d *wsmsg.PrinterSettingsData) {
	if d.HasFilamentSensor != nil {
		c.PrinterState.Settings.SetHasFilamentSensor(c, *d.HasFilamentSensor)
	}
	if d.Webcam != nil {
		if v, ok := d.Webcam["flipH"].(bool); ok {
			c.PrinterState.WebcamSettings.SetFlipH(c, v)
		}
		if v, ok := d.Webcam["flipV"].(bool); ok {
			c.PrinterState.WebcamSettings.SetFlipV(c, v)
		}
	}
}

// EnsureAdded builds the MULTI-mode add_connection handshake message.
// It only acts once a ConnectionEstablished has actually been observed
// for the client's current generation (state == NOT_CONNECTED);
// before that the client reports CONNECTING and this is a no-op, so a
// connection allocated but not yet dialed can never be handed a
// message that silently vanishes. Honors the pending-retry backoff so
// a slow/lossy link doesn't spam the shared socket.
func (c *Client) EnsureAdded(allowSetup bool) (wsmsg.Out, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.effectiveState() != StateNotConnected {
		return wsmsg.Out{}, false
	}
	if !c.readyForAttempt() {
		return wsmsg.Out{}, false
	}
	c.setState(StatePendingAdded)
	c.lastAttempt = time.Now()
	return wsmsg.AddConnectionMsg(c.Config, allowSetup), true
}

// EnsureRemoved builds the MULTI-mode remove_connection handshake
// message, only once the client is fully CONNECTED. If an add is
// still pending, or the connection has not been (re-)established yet,
// the removal is deferred until that outcome is known (DESIGN.md
// open-question decision: "wait for the pending add's outcome, then
// issue remove").
func (c *Client) EnsureRemoved() (wsmsg.Out, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.effectiveState() != StateConnected {
		return wsmsg.Out{}, false
	}
	c.setState(StatePendingRemoved)
	c.lastAttempt = time.Now()
	return wsmsg.RemoveConnectionMsg(c.Config), true
}

// readyForAttempt requires c.mu held.
func (c *Client) readyForAttempt() bool {
	if c.lastAttempt.IsZero() {
		return true
	}
	return time.Since(c.lastAttempt) >= c.pendingBackoff.NextBackOff()
}

func (c *Client) onAddConnectionAck(d *wsmsg.MultiPrinterAddedMsgData, connV uint64) {
	if !d.Status {
		if c.logger != nil {
			reason := ""
			if d.Reason != nil {
				reason = *d.Reason
			}
			c.logger.Warnw("add_connection rejected", "reason", reason)
		}
		c.mu.Lock()
		c.setState(StateNotConnected)
		c.mu.Unlock()
		return
	}
	if d.Pid != nil {
		c.Config.ID = *d.Pid
		c.Config.InSetup = false
	}
	c.mu.Lock()
	c.gen = connV
	c.setState(StateConnected)
	c.mu.Unlock()
	c.PrinterState.MarkCommonFieldsChanged()
}

func (c *Client) onRemoveConnectionAck(d *wsmsg.MultiPrinterRemovedMsgData) {
	if d.Deleted {
		c.Config.MarkDeleted()
	}
	c.mu.Lock()
	c.setState(StateNotConnected)
	c.mu.Unlock()
}

// Consume drains the printer state's dirty fields into outbound
// envelopes via the producer registry.
func (c *Client) Consume() []wsmsg.Out {
	return producers.Consume(c.PrinterState, c.IsPending(), c.currentJobID)
}

// OnConnectionEstablished notifies the client that its underlying
// Connection reached a new live generation v. If the client was
// waiting on this (reported CONNECTING because no generation had been
// observed, or the previous one was lost), it settles to
// NOT_CONNECTED so the next EnsureAdded replays the handshake against
// v. A stale or redundant establishment for a generation the client
// has already moved past is impossible here since v only increases.
func (c *Client) OnConnectionEstablished(v uint64) {
	c.mu.Lock()
	c.gen = v
	if c.effectiveState() == StateConnecting {
		c.setState(StateNotConnected)
	}
	c.mu.Unlock()
	c.Signal()
}

// OnConnectionLost resets registration state after the owning
// Connection drops, so the next EnsureAdded/EnsureRemoved call waits
// for a fresh OnConnectionEstablished before replaying the handshake.
// A lost notification older than the generation this client has
// already moved to is ignored.
func (c *Client) OnConnectionLost(v uint64) {
	c.mu.Lock()
	if c.gen > v {
		c.mu.Unlock()
		return
	}
	c.gen = v
	if pb, ok := c.pendingBackoff.(*backoff.ExponentialBackOff); ok {
		pb.Reset()
	}
	c.setState(StateConnecting)
	c.mu.Unlock()
	c.Signal()
}

// OnDeallocated resets the client to NOT_CONNECTED unconditionally,
// for use when its connection is being torn down for good (not a
// transient drop the client should wait to recover from) so a
// scheduler's reap sees a settled state.
func (c *Client) OnDeallocated() {
	c.mu.Lock()
	c.setState(StateNotConnected)
	c.mu.Unlock()
	c.Signal()
}

// ConnectionV reports the connection generation this client last
// observed, used to tag outbound sends so a message built against a
// generation that has since been lost or superseded is dropped rather
// than flushed onto an unrelated connection.
func (c *Client) ConnectionV() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}
