package configstore

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/simplyprint/ws-client/printerconfig"
)

// SQLite is a Store backed by a local sqlite3 database, keyed by
// unique_id, with id and token each indexed separately for secondary
// lookups and the remaining fields folded into a JSON blob.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and migrates) a sqlite3-backed Store at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening config store: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS printer_configs (
	unique_id TEXT PRIMARY KEY,
	id        INTEGER NOT NULL DEFAULT 0,
	token     TEXT NOT NULL DEFAULT '',
	extra     TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_printer_configs_id ON printer_configs(id);
CREATE INDEX IF NOT EXISTS idx_printer_configs_token ON printer_configs(token);
`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating config store: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

type extraFields struct {
	InSetup  bool   `json:"in_setup"`
	ShortID  string `json:"short_id"`
	Name     string `json:"name"`
	PublicIP string `json:"public_ip"`
}

func (s *SQLite) Persist(cfg *printerconfig.Config) error {
	extra, err := json.Marshal(extraFields{
		InSetup: cfg.InSetup, ShortID: cfg.ShortID, Name: cfg.Name, PublicIP: cfg.PublicIP,
	})
	if err != nil {
		return fmt.Errorf("encoding config extras: %w", err)
	}

	_, err = s.db.Exec(`
INSERT INTO printer_configs (unique_id, id, token, extra) VALUES (?, ?, ?, ?)
ON CONFLICT(unique_id) DO UPDATE SET id = excluded.id, token = excluded.token, extra = excluded.extra
`, cfg.UniqueID, cfg.ID, cfg.Token, string(extra))
	if err != nil {
		return fmt.Errorf("persisting config: %w", err)
	}
	return nil
}

func (s *SQLite) Remove(cfg *printerconfig.Config) error {
	_, err := s.db.Exec(`DELETE FROM printer_configs WHERE unique_id = ?`, cfg.UniqueID)
	if err != nil {
		return fmt.Errorf("removing config: %w", err)
	}
	return nil
}

func (s *SQLite) Flush(cfgs []*printerconfig.Config) error {
	for _, cfg := range cfgs {
		if err := s.Persist(cfg); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) scanAll(rows *sql.Rows) ([]*printerconfig.Config, error) {
	defer rows.Close()

	var out []*printerconfig.Config
	for rows.Next() {
		var cfg printerconfig.Config
		var extra string
		if err := rows.Scan(&cfg.UniqueID, &cfg.ID, &cfg.Token, &extra); err != nil {
			return nil, fmt.Errorf("scanning config: %w", err)
		}
		var ex extraFields
		if err := json.Unmarshal([]byte(extra), &ex); err != nil {
			return nil, fmt.Errorf("decoding config extras: %w", err)
		}
		cfg.InSetup, cfg.ShortID, cfg.Name, cfg.PublicIP = ex.InSetup, ex.ShortID, ex.Name, ex.PublicIP
		out = append(out, &cfg)
	}
	return out, rows.Err()
}

func (s *SQLite) Load() ([]*printerconfig.Config, error) {
	rows, err := s.db.Query(`SELECT unique_id, id, token, extra FROM printer_configs`)
	if err != nil {
		return nil, fmt.Errorf("loading configs: %w", err)
	}
	return s.scanAll(rows)
}

// Find loads the full set and filters in-process; the store is small
// enough (one row per known printer) that a predicate pushdown isn't
// worth the added query surface.
func (s *SQLite) Find(pred func(*printerconfig.Config) bool) []*printerconfig.Config {
	all, err := s.Load()
	if err != nil {
		return nil
	}
	var out []*printerconfig.Config
	for _, cfg := range all {
		if pred(cfg) {
			out = append(out, cfg)
		}
	}
	return out
}

func (s *SQLite) ByID(id int) (*printerconfig.Config, bool) {
	rows, err := s.db.Query(`SELECT unique_id, id, token, extra FROM printer_configs WHERE id = ? LIMIT 1`, id)
	if err != nil {
		return nil, false
	}
	cfgs, err := s.scanAll(rows)
	if err != nil || len(cfgs) == 0 {
		return nil, false
	}
	return cfgs[0], true
}

func (s *SQLite) ByToken(token string) (*printerconfig.Config, bool) {
	rows, err := s.db.Query(`SELECT unique_id, id, token, extra FROM printer_configs WHERE token = ? LIMIT 1`, token)
	if err != nil {
		return nil, false
	}
	cfgs, err := s.scanAll(rows)
	if err != nil || len(cfgs) == 0 {
		return nil, false
	}
	return cfgs[0], true
}

func (s *SQLite) ByUniqueID(uid string) (*printerconfig.Config, bool) {
	rows, err := s.db.Query(`SELECT unique_id, id, token, extra FROM printer_configs WHERE unique_id = ? LIMIT 1`, uid)
	if err != nil {
		return nil, false
	}
	cfgs, err := s.scanAll(rows)
	if err != nil || len(cfgs) == 0 {
		return nil, false
	}
	return cfgs[0], true
}
