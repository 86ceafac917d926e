// Package clientview routes MULTI-mode traffic on one shared Connection
// to the right Client, keyed by unique_id (during setup, before a pid
// exists) or by server-issued pid once registered. Grounded on
// original_source/simplyprint_ws_client/core/client_view.py.
package clientview

import (
	"sync"

	"github.com/simplyprint/ws-client/client"
	"github.com/simplyprint/ws-client/wsmsg"
)

// View is the routing table a Connection Manager keeps for one shared
// socket in MULTI mode.
type View struct {
	mu         sync.RWMutex
	byUniqueID map[string]*client.Client
	byPid      map[int]*client.Client
}

// New builds an empty view.
func New() *View {
	return &View{
		byUniqueID: map[string]*client.Client{},
		byPid:      map[int]*client.Client{},
	}
}

// Add registers c for routing, keyed by its unique_id and, if already
// assigned one, its pid.
func (v *View) Add(c *client.Client) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.byUniqueID[c.Config.UniqueID] = c
	if c.Config.ID != 0 {
		v.byPid[c.Config.ID] = c
	}
}

// Remove drops c from both lookup tables.
func (v *View) Remove(c *client.Client) {
	v.mu.Lock()
	defer v.mu.Unlock()

	delete(v.byUniqueID, c.Config.UniqueID)
	if c.Config.ID != 0 {
		delete(v.byPid, c.Config.ID)
	}
}

// PidAssigned records a client's server-issued pid becoming known (or
// changing) after setup completes, keeping the pid index current.
func (v *View) PidAssigned(c *client.Client, pid int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.byPid[pid] = c
}

// ByUniqueID looks up a registered client by its locally generated
// identity.
func (v *View) ByUniqueID(id string) (*client.Client, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	c, ok := v.byUniqueID[id]
	return c, ok
}

// ByPid looks up a registered client by its server-issued printer id.
func (v *View) ByPid(pid int) (*client.Client, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	c, ok := v.byPid[pid]
	return c, ok
}

// All returns every registered client, for fan-out operations like
// consume-and-send scheduler passes.
func (v *View) All() []*client.Client {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]*client.Client, 0, len(v.byUniqueID))
	seen := make(map[*client.Client]bool, len(v.byUniqueID))
	for _, c := range v.byUniqueID {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// Route resolves the destination client for one decoded incoming
// message. add_connection/remove_connection replies carry the
// unique_id inside their data payload, not "for";
// everything else is dispatched by the "for" field, which in MULTI
// mode carries a pid.
func (v *View) Route(msg wsmsg.ServerMessage) (*client.Client, bool) {
	if msg.AddConnection != nil {
		if msg.AddConnection.UniqueID != nil {
			return v.ByUniqueID(*msg.AddConnection.UniqueID)
		}
		return nil, false
	}
	if msg.RemoveConn != nil {
		if msg.RemoveConn.UniqueID != nil {
			return v.ByUniqueID(*msg.RemoveConn.UniqueID)
		}
		return nil, false
	}

	if pid, ok := msg.ForPid(); ok {
		return v.ByPid(pid)
	}
	if uid, ok := msg.ForUniqueID(); ok {
		return v.ByUniqueID(uid)
	}

	return nil, false
}

// Tag stamps out with c's unique_id in "for", as every outgoing
// MULTI-mode envelope must carry.
func Tag(c *client.Client, out wsmsg.Out) wsmsg.Out {
	out.For = c.Config.UniqueID
	return out
}
