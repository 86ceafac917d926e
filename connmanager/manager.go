// Package connmanager wires Clients onto Connections: one dedicated
// Connection per Client in SINGLE mode, one shared Connection fanned
// out through a clientview.View in MULTI mode. Grounded on
// original_source/simplyprint_ws_client/core/client_connection_manager.py.
package connmanager

import (
	"sync"

	"go.uber.org/zap"

	"github.com/simplyprint/ws-client/client"
	"github.com/simplyprint/ws-client/clientview"
	"github.com/simplyprint/ws-client/connection"
	"github.com/simplyprint/ws-client/wsmsg"
)

// Manager owns the Connection(s) backing a set of Clients.
type Manager struct {
	mode   connection.Mode
	host   string
	version string
	logger *zap.SugaredLogger

	mu sync.Mutex

	// MULTI mode.
	shared *connection.Connection
	view   *clientview.View

	// SINGLE mode: one dedicated connection per client.
	single map[*client.Client]*connection.Connection

	suspectCounts map[*connection.Connection]int
}

// New builds a Manager for the given mode.
func New(mode connection.Mode, host, version string, logger *zap.SugaredLogger) *Manager {
	m := &Manager{
		mode:          mode,
		host:          host,
		version:       version,
		logger:        logger,
		single:        map[*client.Client]*connection.Connection{},
		suspectCounts: map[*connection.Connection]int{},
	}
	if mode == connection.ModeMulti {
		m.view = clientview.New()
	}
	return m
}

// Allocate wires c's outgoing emit onto a connection: in MULTI mode it
// registers c in the shared view, creating and dialing the shared
// connection on first use; in SINGLE mode it dials a dedicated socket.
// The add_connection handshake itself is built by Client.EnsureAdded,
// not here.
func (m *Manager) Allocate(c *client.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.mode {
	case connection.ModeMulti:
		if m.shared == nil {
			m.shared = connection.New(m.host, m.version, m.logger)
			m.wireConnection(m.shared)
			m.shared.Connect(connection.Hint{Mode: connection.ModeMulti})
		}
		m.view.Add(c)

	case connection.ModeSingle:
		if _, ok := m.single[c]; ok {
			return
		}
		conn := connection.New(m.host, m.version, m.logger)
		m.wireConnection(conn)
		m.single[c] = conn
		conn.Connect(connection.Hint{Mode: connection.ModeSingle, Cfg: c.Config})
	}
}

// Deallocate tears down a client's registration: in SINGLE mode its
// dedicated connection is stopped; in MULTI mode it is dropped from the
// view.
func (m *Manager) Deallocate(c *client.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.mode {
	case connection.ModeMulti:
		m.view.Remove(c)
	case connection.ModeSingle:
		if conn, ok := m.single[c]; ok {
			conn.Stop()
			delete(m.single, c)
		}
	}
	c.OnDeallocated()
}

// Mode reports the multiplexing mode this manager was built for.
func (m *Manager) Mode() connection.Mode { return m.mode }

// ConnectionFor returns the connection backing c, for sending.
func (m *Manager) ConnectionFor(c *client.Client) *connection.Connection {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mode == connection.ModeMulti {
		return m.shared
	}
	return m.single[c]
}

// Send emits out on behalf of c, tagging it with the client's unique_id
// in MULTI mode.
func (m *Manager) Send(c *client.Client, out wsmsg.Out) bool {
	conn := m.ConnectionFor(c)
	if conn == nil {
		return false
	}
	if m.mode == connection.ModeMulti {
		out = clientview.Tag(c, out)
	}
	v := c.ConnectionV()
	return conn.Send(out, &v)
}

func (m *Manager) wireConnection(conn *connection.Connection) {
	conn.OnEstablished(func(v uint64) { m.onEstablished(conn, v) })
	conn.OnLost(func(v uint64) { m.onLost(conn, v) })
	conn.OnIncoming(func(msg wsmsg.ServerMessage, v uint64) { m.onIncoming(conn, msg, v) })
	conn.OnSuspect(func() { m.onSuspect(conn) })
}

func (m *Manager) onEstablished(conn *connection.Connection, v uint64) {
	if m.mode == connection.ModeSingle {
		for c, cc := range m.single {
			if cc == conn {
				// Tracks the generation for the send staleness guard;
				// the server's own "connected" message, which carries
				// intervals/setup state, arrives shortly via onIncoming
				// and is what actually advances client state.
				c.OnConnectionEstablished(v)
			}
		}
		return
	}
	// MULTI mode: every registered client now has a live generation to
	// register against; kick the add_connection handshake for each.
	for _, c := range m.view.All() {
		c.OnConnectionEstablished(v)
		if out, ok := c.EnsureAdded(true); ok {
			m.Send(c, out)
		}
	}
}

func (m *Manager) onLost(conn *connection.Connection, v uint64) {
	if m.mode == connection.ModeSingle {
		for c, cc := range m.single {
			if cc == conn {
				c.OnConnectionLost(v)
			}
		}
		return
	}
	for _, c := range m.view.All() {
		c.OnConnectionLost(v)
	}
}

func (m *Manager) onIncoming(conn *connection.Connection, msg wsmsg.ServerMessage, v uint64) {
	if m.mode == connection.ModeSingle {
		for c, cc := range m.single {
			if cc == conn {
				c.HandleServerMessage(msg, v)
			}
		}
		return
	}

	c, ok := m.view.Route(msg)
	if !ok {
		if m.logger != nil {
			m.logger.Debugw("incoming message has no routable destination", "type", msg.Type)
		}
		return
	}
	c.HandleServerMessage(msg, v)
	if pid, ok := msg.ForPid(); ok {
		m.view.PidAssigned(c, pid)
	} else if msg.AddConnection != nil && msg.AddConnection.Pid != nil {
		m.view.PidAssigned(c, *msg.AddConnection.Pid)
	}
}

// onSuspect counts suspect signals per connection and logs them; the
// count is never reset and no diagnostic is run from here.
func (m *Manager) onSuspect(conn *connection.Connection) {
	m.mu.Lock()
	m.suspectCounts[conn]++
	n := m.suspectCounts[conn]
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.Warnw("connection suspect", "count", n)
	}
}

// SuspectCount reports how many suspect signals the connection backing
// c has accumulated since it was created.
func (m *Manager) SuspectCount(c *client.Client) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.suspectCounts[m.connectionForLocked(c)]
}

func (m *Manager) connectionForLocked(c *client.Client) *connection.Connection {
	if m.mode == connection.ModeMulti {
		return m.shared
	}
	return m.single[c]
}
