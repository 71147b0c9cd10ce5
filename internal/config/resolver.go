package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AddrLookup resolves a network interface name to an IPv4 address. It is
// the only external query configuration resolution performs.
type AddrLookup func(iface string) (string, error)

// Load builds the pre-flag configuration: built-in defaults, overlaid
// with the optional defaults file in stateDir, overlaid with environment
// variables. A missing defaults file is not an error; the original
// driver ran without one.
func Load(stateDir string) (SessionConfig, error) {
	cfg := Default()
	if stateDir != "" {
		cfg.StateDir = stateDir
	}

	path := filepath.Join(cfg.StateDir, DefaultsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to read defaults file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		// The file cannot relocate the state directory it lives in.
		if stateDir != "" {
			cfg.StateDir = stateDir
		}
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// Resolve validates cfg and fills the bind address from the configured
// interface when none was given. It returns the final immutable
// configuration for the session.
func Resolve(cfg SessionConfig, lookup AddrLookup) (SessionConfig, error) {
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	if cfg.BindAddr == "" {
		addr, err := lookup(cfg.Iface)
		if err != nil {
			return cfg, fmt.Errorf("failed to resolve bind address: %w", err)
		}
		cfg.BindAddr = addr
	}

	return cfg, nil
}
