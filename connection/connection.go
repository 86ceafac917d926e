// Package connection implements the single long-lived WebSocket
// connection state machine: a mutex-guarded conn field and a
// background read-loop goroutine per connection.
package connection

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/simplyprint/ws-client/printerconfig"
	"github.com/simplyprint/ws-client/wsmsg"
)

// Mode selects SINGLE (one printer per socket) or MULTI (many printers
// share a socket).
type Mode int

const (
	ModeSingle Mode = iota
	ModeMulti
)

// Hint is the URL-building context a Connection Manager hands to a
// Connection on allocate.
type Hint struct {
	Mode Mode
	Cfg  *printerconfig.Config
}

// phase is the connection's own lifecycle phase.
type phase int

const (
	phaseNotConnected phase = iota
	phaseConnecting
	phaseConnected
	phasePaused
)

// suspectWindow/suspectThreshold implement WsSuspectConnectionBoundedInterval
// from the source: N consecutive failures inside a bounded window.
const (
	suspectThreshold = 7
	suspectWindow    = 1 * time.Minute
)

// Connection manages one WebSocket socket end-to-end: backoff,
// pause/resume, and suspect-connection diagnostics.
type Connection struct {
	Host    string // e.g. "ws.simplyprint.io"
	Version string // protocol version path segment, e.g. "0.2"

	logger *zap.SugaredLogger

	mu      sync.Mutex
	v       uint64
	ws      *websocket.Conn
	ph      phase
	stopped bool
	pauseCh chan struct{}

	failureTimes []time.Time

	onEstablished []func(v uint64)
	onLost        []func(v uint64)
	onIncoming    []func(msg wsmsg.ServerMessage, v uint64)
	onSuspect     []func()

	bo       backoff.BackOff
	stopOnce sync.Once
	done     chan struct{}
	started  bool
}

// New builds a Connection against host/version.
func New(host, version string, logger *zap.SugaredLogger) *Connection {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 1 * time.Second
	eb.MaxInterval = 60 * time.Second
	eb.MaxElapsedTime = 0 // never give up; resets to InitialInterval only on success

	return &Connection{
		Host:    host,
		Version: version,
		logger:  logger,
		ph:      phaseNotConnected,
		pauseCh: make(chan struct{}, 1),
		bo:      eb,
		done:    make(chan struct{}),
	}
}

func (c *Connection) OnEstablished(f func(v uint64))                       { c.onEstablished = append(c.onEstablished, f) }
func (c *Connection) OnLost(f func(v uint64))                               { c.onLost = append(c.onLost, f) }
func (c *Connection) OnIncoming(f func(msg wsmsg.ServerMessage, v uint64))  { c.onIncoming = append(c.onIncoming, f) }
func (c *Connection) OnSuspect(f func())                                   { c.onSuspect = append(c.onSuspect, f) }

// V returns the current connection generation.
func (c *Connection) V() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

// Connected reports whether the socket is currently live.
func (c *Connection) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ph == phaseConnected
}

// URL builds the wire address for hint.
func (c *Connection) URL(hint Hint) string {
	modeSeg := "p"
	id, token := "0", "0"

	if hint.Mode == ModeMulti {
		modeSeg = "mp"
	} else if hint.Cfg != nil {
		id = fmt.Sprintf("%d", hint.Cfg.ID)
		token = hint.Cfg.Token
	}

	u := url.URL{
		Scheme: "wss",
		Host:   c.Host,
		Path:   fmt.Sprintf("/%s/%s/%s/%s", c.Version, modeSeg, id, token),
	}
	return u.String()
}

// Connect starts the connection loop if it isn't already running; at
// most one loop instance runs at a time.
func (c *Connection) Connect(hint Hint) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	go c.loop(hint)
}

// Disconnect stops the loop and closes the socket.
func (c *Connection) Disconnect() {
	c.Stop()
}

// Interrupt closes the live socket, if any, so a blocked receive fails;
// the loop observes the resulting error and re-enters NOT_CONNECTED on
// its own. A dial in progress is not cancelled: there is no socket to
// close until it completes.
func (c *Connection) Interrupt() {
	c.mu.Lock()
	ws := c.ws
	c.mu.Unlock()
	if ws != nil {
		ws.Close()
	}
}

// Pause drains the live socket and parks the loop until Resume.
func (c *Connection) Pause() {
	c.mu.Lock()
	c.ph = phasePaused
	ws := c.ws
	c.mu.Unlock()
	if ws != nil {
		ws.Close()
	}
}

// Resume releases a paused loop.
func (c *Connection) Resume() {
	select {
	case c.pauseCh <- struct{}{}:
	default:
	}
}

// Stop halts the loop permanently.
func (c *Connection) Stop() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		c.stopped = true
		ws := c.ws
		c.mu.Unlock()
		if ws != nil {
			ws.Close()
		}
		close(c.done)
	})
}

// Send writes msg if the connection is live and vOpt (if non-nil)
// matches the current generation.
func (c *Connection) Send(msg wsmsg.Out, vOpt *uint64) bool {
	c.mu.Lock()
	ws := c.ws
	connected := c.ph == phaseConnected
	v := c.v
	c.mu.Unlock()

	if !connected || ws == nil {
		return false
	}
	if vOpt != nil && *vOpt != v {
		return false
	}

	b, err := msg.MarshalJSON()
	if err != nil {
		if c.logger != nil {
			c.logger.Errorw("failed to serialize outgoing message, dropping", "type", msg.Type, "err", err)
		}
		return false
	}

	if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
		if c.logger != nil {
			c.logger.Infow("write failed, dropping message", "err", err)
		}
		return false
	}
	return true
}

func (c *Connection) isStopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

func (c *Connection) loop(hint Hint) {
	firstConnect := true

	for !c.isStopped() {
		c.mu.Lock()
		ph := c.ph
		c.mu.Unlock()

		switch ph {
		case phasePaused:
			select {
			case <-c.pauseCh:
				c.mu.Lock()
				c.ph = phaseNotConnected
				c.mu.Unlock()
			case <-c.done:
				return
			}

		case phaseNotConnected:
			if !firstConnect {
				select {
				case <-time.After(c.bo.NextBackOff()):
				case <-c.done:
					return
				}
			}
			firstConnect = false
			c.mu.Lock()
			c.ph = phaseConnecting
			c.mu.Unlock()

		case phaseConnecting:
			ws, _, err := websocket.DefaultDialer.DialContext(context.Background(), c.URL(hint), nil)
			if err != nil {
				c.recordFailure()
				c.mu.Lock()
				c.ph = phaseNotConnected
				c.mu.Unlock()
				if c.logger != nil {
					c.logger.Infow("connect failed, backing off", "url", c.URL(hint), "err", err)
				}
				continue
			}

			c.bo.Reset()
			c.failureTimes = nil

			c.mu.Lock()
			c.v++
			v := c.v
			c.ws = ws
			c.ph = phaseConnected
			c.mu.Unlock()

			for _, f := range c.onEstablished {
				f(v)
			}

		case phaseConnected:
			c.mu.Lock()
			ws := c.ws
			v := c.v
			c.mu.Unlock()

			_, raw, err := ws.ReadMessage()
			if err != nil {
				c.mu.Lock()
				c.ws = nil
				if c.ph == phaseConnected {
					c.ph = phaseNotConnected
				}
				c.mu.Unlock()

				for _, f := range c.onLost {
					f(v)
				}
				continue
			}

			msg, err := wsmsg.DecodeServerMessage(raw)
			if err != nil {
				if c.logger != nil {
					c.logger.Errorw("malformed incoming message, dropping", "err", err)
				}
				continue
			}

			for _, f := range c.onIncoming {
				f(msg, v)
			}
		}
	}
}

// recordFailure tracks connect failures inside suspectWindow and fires
// ConnectionSuspect once suspectThreshold is reached.
func (c *Connection) recordFailure() {
	now := time.Now()
	cutoff := now.Add(-suspectWindow)

	kept := c.failureTimes[:0]
	for _, t := range c.failureTimes {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	c.failureTimes = append(kept, now)

	if len(c.failureTimes) >= suspectThreshold {
		c.failureTimes = nil
		for _, f := range c.onSuspect {
			f()
		}
	}
}
