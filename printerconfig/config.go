// Package printerconfig holds the identity and credentials of a printer
// known to the cloud control plane: the part of the client's state that
// survives restarts and is handed to the config store for persistence.
package printerconfig

import "github.com/google/uuid"

// Config is a printer's identity and credentials. Equality is identity,
// not value: two blank configs produced by New are never considered
// equal even if every field matches, so a connection manager or
// set-based structure never collapses two distinct pending printers
// into one.
type Config struct {
	// ID is server-issued; 0 means the printer has not completed setup.
	ID int
	// Token is server-issued, opaque.
	Token string
	// UniqueID is generated once, locally, and never changes; it is the
	// true identity across restarts because ID can be 0 during setup.
	UniqueID string
	InSetup  bool
	ShortID  string
	Name     string
	PublicIP string
}

// New creates a blank, not-yet-registered config with a freshly
// generated unique_id.
func New() *Config {
	return &Config{
		UniqueID: uuid.NewString(),
		InSetup:  true,
	}
}

// MarkDeleted resets a config to the pre-setup state, as on a
// remove/delete notification from the server.
func (c *Config) MarkDeleted() {
	c.ID = 0
	c.InSetup = true
	c.ShortID = ""
}
