// Package backend resolves which SimplyPrint cloud environment a
// client talks to: a named preset (production/test/staging/pilot/
// localhost) or a fully custom trio of URLs, selected via environment
// variables using github.com/caarlos0/env/v11 struct tags.
package backend

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Name identifies a backend preset.
type Name string

const (
	Production Name = "production"
	Test       Name = "test"
	Staging    Name = "staging"
	Pilot      Name = "pilot"
	Localhost  Name = "localhost"
	Custom     Name = "custom"
)

var presetHosts = map[Name]string{
	Production: "ws.simplyprint.io",
	Test:       "test.ws.simplyprint.io",
	Staging:    "staging.ws.simplyprint.io",
	Pilot:      "pilot.ws.simplyprint.io",
	Localhost:  "localhost:8080",
}

const protocolVersion = "0.2"

// Settings is the env-driven backend selector.
type Settings struct {
	Backend Name   `env:"SIMPLYPRINT_BACKEND" envDefault:"production"`
	WSURL   string `env:"SIMPLYPRINT_WS_URL"`
	APIURL  string `env:"SIMPLYPRINT_API_URL"`
	MainURL string `env:"SIMPLYPRINT_MAIN_URL"`
}

// Load parses Settings from the process environment.
func Load() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parsing backend settings: %w", err)
	}
	return s, nil
}

// WSHost resolves the WebSocket host this Settings selects: the
// explicit override if set, otherwise the named preset's host.
func (s Settings) WSHost() (string, error) {
	if s.WSURL != "" {
		return s.WSURL, nil
	}
	host, ok := presetHosts[s.Backend]
	if !ok {
		return "", fmt.Errorf("backend %q has no preset host and SIMPLYPRINT_WS_URL is unset", s.Backend)
	}
	return host, nil
}

// ProtocolVersion is the URL path segment every connection dials
// against.
func (s Settings) ProtocolVersion() string { return protocolVersion }
