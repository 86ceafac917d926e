// Package configstore persists printerconfig.Config records across
// restarts, keyed by unique_id since id is 0 during setup.
package configstore

import "github.com/simplyprint/ws-client/printerconfig"

// Store is the external interface a Client Connection Manager consumes
// for credential persistence. Credentials are keyed by
// unique_id, never by (id, token), because id is 0 during setup.
type Store interface {
	Persist(cfg *printerconfig.Config) error
	Remove(cfg *printerconfig.Config) error
	Flush(cfgs []*printerconfig.Config) error
	Load() ([]*printerconfig.Config, error)
	Find(pred func(*printerconfig.Config) bool) []*printerconfig.Config
	ByID(id int) (*printerconfig.Config, bool)
	ByToken(token string) (*printerconfig.Config, bool)
	ByUniqueID(uid string) (*printerconfig.Config, bool)
}
