package configstore

import (
	"sync"

	"github.com/simplyprint/ws-client/printerconfig"
)

// Memory is an in-process, non-persistent Store, useful for tests and
// for a one-shot diagnostics run.
type Memory struct {
	mu   sync.RWMutex
	byUID map[string]*printerconfig.Config
}

// NewMemory builds an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{byUID: map[string]*printerconfig.Config{}}
}

func (m *Memory) Persist(cfg *printerconfig.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byUID[cfg.UniqueID] = cfg
	return nil
}

func (m *Memory) Remove(cfg *printerconfig.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byUID, cfg.UniqueID)
	return nil
}

func (m *Memory) Flush(cfgs []*printerconfig.Config) error {
	for _, cfg := range cfgs {
		if err := m.Persist(cfg); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) Load() ([]*printerconfig.Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*printerconfig.Config, 0, len(m.byUID))
	for _, cfg := range m.byUID {
		out = append(out, cfg)
	}
	return out, nil
}

func (m *Memory) Find(pred func(*printerconfig.Config) bool) []*printerconfig.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*printerconfig.Config
	for _, cfg := range m.byUID {
		if pred(cfg) {
			out = append(out, cfg)
		}
	}
	return out
}

func (m *Memory) ByID(id int) (*printerconfig.Config, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, cfg := range m.byUID {
		if cfg.ID == id {
			return cfg, true
		}
	}
	return nil, false
}

func (m *Memory) ByToken(token string) (*printerconfig.Config, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, cfg := range m.byUID {
		if cfg.Token == token {
			return cfg, true
		}
	}
	return nil, false
}

func (m *Memory) ByUniqueID(uid string) (*printerconfig.Config, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.byUID[uid]
	return cfg, ok
}
