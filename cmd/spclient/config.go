package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppConfig is the on-disk application configuration: everything that
// isn't backend selection (that's env-driven, see backend.Settings)
// or per-printer credentials (that's the config store).
type AppConfig struct {
	Mode        string      `yaml:"mode"` // "single" | "multi"
	Store       StoreConfig `yaml:"store"`
	Diagnostics DiagConfig  `yaml:"diagnostics"`
	DataDir     string      `yaml:"data_dir"`
}

type StoreConfig struct {
	Kind string `yaml:"kind"` // "memory" | "json" | "sqlite"
	Path string `yaml:"path"`
}

type DiagConfig struct {
	Addr         string `yaml:"addr"`
	LogDir       string `yaml:"log_dir"`
	MaxReports   int    `yaml:"max_reports"`
}

// DefaultAppConfig returns sane defaults that LoadAppConfig overlays
// a file on top of.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Mode: "multi",
		Store: StoreConfig{
			Kind: "json",
			Path: "printers.json",
		},
		Diagnostics: DiagConfig{
			Addr:       "127.0.0.1:7140",
			LogDir:     "diagnostics",
			MaxReports: 20,
		},
		DataDir: ".spclient",
	}
}

// LoadAppConfig reads and parses path, overlaying it on
// DefaultAppConfig.
func LoadAppConfig(path string) (*AppConfig, error) {
	cfg := DefaultAppConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading app config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing app config: %w", err)
	}
	return cfg, nil
}
