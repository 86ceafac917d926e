package configstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/simplyprint/ws-client/printerconfig"
)

// JSON is a Store backed by a single JSON file, rewritten atomically
// (temporary file, then rename); no backup copy of the previous file
// is kept. The in-memory
// cache-then-flush-to-disk shape is adapted from database/database.go's
// namespace cache.
type JSON struct {
	mu   sync.Mutex
	path string
	byUID map[string]*printerconfig.Config
}

// NewJSON loads (or initializes) a JSON-file Store at path.
func NewJSON(path string) (*JSON, error) {
	j := &JSON{path: path, byUID: map[string]*printerconfig.Config{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return j, nil
		}
		return nil, fmt.Errorf("reading config store: %w", err)
	}

	var cfgs []*printerconfig.Config
	if err := json.Unmarshal(data, &cfgs); err != nil {
		return nil, fmt.Errorf("decoding config store: %w", err)
	}
	for _, cfg := range cfgs {
		j.byUID[cfg.UniqueID] = cfg
	}
	return j, nil
}

// saveLocked atomically rewrites the backing file from the current
// cache. Caller must hold j.mu.
func (j *JSON) saveLocked() error {
	cfgs := make([]*printerconfig.Config, 0, len(j.byUID))
	for _, cfg := range j.byUID {
		cfgs = append(cfgs, cfg)
	}

	data, err := json.MarshalIndent(cfgs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config store: %w", err)
	}

	if err := atomic.WriteFile(j.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing config store: %w", err)
	}
	return nil
}

func (j *JSON) Persist(cfg *printerconfig.Config) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.byUID[cfg.UniqueID] = cfg
	return j.saveLocked()
}

func (j *JSON) Remove(cfg *printerconfig.Config) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.byUID, cfg.UniqueID)
	return j.saveLocked()
}

func (j *JSON) Flush(cfgs []*printerconfig.Config) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, cfg := range cfgs {
		j.byUID[cfg.UniqueID] = cfg
	}
	return j.saveLocked()
}

func (j *JSON) Load() ([]*printerconfig.Config, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]*printerconfig.Config, 0, len(j.byUID))
	for _, cfg := range j.byUID {
		out = append(out, cfg)
	}
	return out, nil
}

func (j *JSON) Find(pred func(*printerconfig.Config) bool) []*printerconfig.Config {
	j.mu.Lock()
	defer j.mu.Unlock()

	var out []*printerconfig.Config
	for _, cfg := range j.byUID {
		if pred(cfg) {
			out = append(out, cfg)
		}
	}
	return out
}

func (j *JSON) ByID(id int) (*printerconfig.Config, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, cfg := range j.byUID {
		if cfg.ID == id {
			return cfg, true
		}
	}
	return nil, false
}

func (j *JSON) ByToken(token string) (*printerconfig.Config, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, cfg := range j.byUID {
		if cfg.Token == token {
			return cfg, true
		}
	}
	return nil, false
}

func (j *JSON) ByUniqueID(uid string) (*printerconfig.Config, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	cfg, ok := j.byUID[uid]
	return cfg, ok
}
