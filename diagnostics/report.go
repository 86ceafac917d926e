// Package diagnostics runs a connectivity probe on request (POST
// /reports/run) and serves the stored results over a small local HTTP
// API. The Connection Manager does not trigger it: a ConnectionSuspect
// is only counted there.
package diagnostics

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/simplyprint/ws-client/backend"
)

// Probe is one network reachability check against a single target.
type Probe struct {
	Target  string        `json:"target"`
	Kind    string        `json:"kind"` // "dns" | "websocket" | "https"
	OK      bool          `json:"ok"`
	Latency int64         `json:"latency_ms"`
	Error   string        `json:"error,omitempty"`
}

// Report is one connectivity diagnostic run, persisted as
// connectivity_report_<YYYYMMDD_HHMMSS>.json.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	Interfaces  []string  `json:"interfaces"`
	Probes      []Probe   `json:"probes"`
}

// candidates is every backend preset worth probing when connectivity
// is suspect, independent of which one the client is actually
// configured against.
var candidates = []backend.Name{backend.Production, backend.Test, backend.Staging, backend.Pilot}

// Run performs DNS, WebSocket (TCP dial to the WS port), and HTTPS
// probes against every backend candidate, plus a local NIC inventory.
func Run() Report {
	r := Report{GeneratedAt: time.Now()}

	if ifaces, err := net.Interfaces(); err == nil {
		for _, iface := range ifaces {
			r.Interfaces = append(r.Interfaces, fmt.Sprintf("%s(%s)", iface.Name, iface.Flags))
		}
	}

	for _, name := range candidates {
		host, ok := presetHost(name)
		if !ok {
			continue
		}
		r.Probes = append(r.Probes, probeDNS(host))
		r.Probes = append(r.Probes, probeTCP(host, "443"))
		r.Probes = append(r.Probes, probeHTTPS(host))
	}

	return r
}

func presetHost(name backend.Name) (string, bool) {
	s := backend.Settings{Backend: name}
	host, err := s.WSHost()
	if err != nil {
		return "", false
	}
	return host, true
}

func probeDNS(host string) Probe {
	h, _, err := net.SplitHostPort(host)
	if err != nil {
		h = host
	}
	start := time.Now()
	_, err = net.LookupHost(h)
	p := Probe{Target: h, Kind: "dns", Latency: time.Since(start).Milliseconds()}
	if err != nil {
		p.Error = err.Error()
	} else {
		p.OK = true
	}
	return p
}

func probeTCP(host, port string) Probe {
	h, _, err := net.SplitHostPort(host)
	if err != nil {
		h = host
	}
	addr := net.JoinHostPort(h, port)
	start := time.Now()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	p := Probe{Target: addr, Kind: "websocket", Latency: time.Since(start).Milliseconds()}
	if err != nil {
		p.Error = err.Error()
		return p
	}
	conn.Close()
	p.OK = true
	return p
}

func probeHTTPS(host string) Probe {
	h, _, err := net.SplitHostPort(host)
	if err != nil {
		h = host
	}
	start := time.Now()
	conn, err := tls.DialWithDialer(&net.Dialer{Timeout: 5 * time.Second}, "tcp", net.JoinHostPort(h, "443"), &tls.Config{ServerName: h})
	p := Probe{Target: h, Kind: "https", Latency: time.Since(start).Milliseconds()}
	if err != nil {
		p.Error = err.Error()
		return p
	}
	conn.Close()
	p.OK = true
	return p
}

// Store persists Reports to a capped-size log directory.
type Store struct {
	dir      string
	maxFiles int
}

// NewStore builds a Store rooted at dir, keeping at most maxFiles
// past reports.
func NewStore(dir string, maxFiles int) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating diagnostics log directory: %w", err)
	}
	return &Store{dir: dir, maxFiles: maxFiles}, nil
}

// Save writes r to disk and evicts the oldest reports beyond maxFiles.
func (s *Store) Save(r Report) (string, error) {
	name := fmt.Sprintf("connectivity_report_%s.json", r.GeneratedAt.Format("20060102_150405"))
	path := filepath.Join(s.dir, name)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding connectivity report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing connectivity report: %w", err)
	}

	s.evictOldest()
	return path, nil
}

func (s *Store) evictOldest() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for len(names) > s.maxFiles {
		os.Remove(filepath.Join(s.dir, names[0]))
		names = names[1:]
	}
}

// List returns the stored report filenames, oldest first.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing connectivity reports: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Read loads one stored report by filename.
func (s *Store) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("reading connectivity report: %w", err)
	}
	return data, nil
}
