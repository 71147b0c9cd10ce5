// Package config holds the session configuration for netdiag.
//
// A session's configuration is resolved in three layers: built-in
// defaults, the optional netdiag.yaml defaults file in the state
// directory, and finally CLI flags. The resolved value is immutable for
// the rest of the run; every stage receives it by value.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

// Protocol is the transport used by the load generator
type Protocol string

const (
	// ProtocolUDP runs the load generator in UDP mode
	ProtocolUDP Protocol = "udp"
	// ProtocolTCP runs the load generator in TCP mode
	ProtocolTCP Protocol = "tcp"
)

// Environment variable names forming the agent's input contract. The
// resolver also honors them as overrides so the driver and the agent
// agree on interface and output path when both are set from the
// environment.
const (
	EnvIface        = "NETDIAG_IFACE"
	EnvOutputPath   = "NETDIAG_OUTPUT_PATH"
	EnvPollInterval = "NETDIAG_POLL_INTERVAL"
)

// DefaultsFile is the name of the optional YAML defaults file inside the
// state directory.
const DefaultsFile = "netdiag.yaml"

// Validation errors surfaced by Resolve
var (
	ErrMissingTarget   = errors.New("target host is required")
	ErrInvalidPort     = errors.New("port must be between 1 and 65535")
	ErrInvalidDuration = errors.New("duration must be a positive number of seconds")
	ErrInvalidRate     = errors.New("bandwidth must be a rate spec like 90M")
	ErrInvalidProtocol = errors.New("protocol must be udp or tcp")
	ErrInvalidParallel = errors.New("parallel stream count must be positive")
	ErrInvalidTopN     = errors.New("top-n must be positive")
)

// rateSpec matches iperf3-style bandwidth values: a number with an
// optional K/M/G suffix.
var rateSpec = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?[KMGkmg]?$`)

// SessionConfig is the validated configuration for one recording session.
type SessionConfig struct {
	Iface           string   `yaml:"iface"`
	BindAddr        string   `yaml:"bind_addr"`
	OutputPath      string   `yaml:"output_path"`
	AgentPath       string   `yaml:"agent_path"`
	DurationSec     int      `yaml:"duration_sec"`
	Bandwidth       string   `yaml:"bandwidth"`
	Protocol        Protocol `yaml:"protocol"`
	Target          string   `yaml:"target"`
	Port            int      `yaml:"port"`
	LoadTool        string   `yaml:"load_tool"`
	StateDir        string   `yaml:"state_dir"`
	PollIntervalSec float64  `yaml:"poll_interval_sec"`

	// Accepted for CLI compatibility with the original driver but not
	// forwarded to any command.
	ParallelStreams int `yaml:"parallel_streams"`
	TopN            int `yaml:"top_n"`
}

// Default returns the built-in configuration baseline.
func Default() SessionConfig {
	return SessionConfig{
		Iface:           "eth0",
		OutputPath:      "./events.ndjson",
		AgentPath:       "./netdiag-agent",
		DurationSec:     10,
		Bandwidth:       "90M",
		Protocol:        ProtocolUDP,
		Port:            5201,
		LoadTool:        "iperf3",
		StateDir:        defaultStateDir(),
		ParallelStreams: 1,
		TopN:            10,
	}
}

// defaultStateDir returns ~/.netdiag, falling back to a relative
// directory when the home directory cannot be determined.
func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".netdiag"
	}
	return filepath.Join(home, ".netdiag")
}

// applyEnvironment overrides file-level values from the process
// environment. The same variables are later exported to the agent, so an
// operator exporting them once configures both sides identically.
func (c *SessionConfig) applyEnvironment() {
	if v := os.Getenv(EnvIface); v != "" {
		c.Iface = v
	}
	if v := os.Getenv(EnvOutputPath); v != "" {
		c.OutputPath = v
	}
	if v := os.Getenv(EnvPollInterval); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.PollIntervalSec = f
		}
	}
}

// Validate checks the invariants of a resolved configuration.
func (c SessionConfig) Validate() error {
	if c.Target == "" {
		return ErrMissingTarget
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: got %d", ErrInvalidPort, c.Port)
	}
	if c.DurationSec <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDuration, c.DurationSec)
	}
	if !rateSpec.MatchString(c.Bandwidth) {
		return fmt.Errorf("%w: got %q", ErrInvalidRate, c.Bandwidth)
	}
	if c.Protocol != ProtocolUDP && c.Protocol != ProtocolTCP {
		return fmt.Errorf("%w: got %q", ErrInvalidProtocol, c.Protocol)
	}
	if c.ParallelStreams <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidParallel, c.ParallelStreams)
	}
	if c.TopN <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidTopN, c.TopN)
	}
	return nil
}

// SessionsDir returns the directory holding recorded session files.
func (c SessionConfig) SessionsDir() string {
	return filepath.Join(c.StateDir, "sessions")
}

// AgentLogDir returns the directory holding agent stderr logs.
func (c SessionConfig) AgentLogDir() string {
	return filepath.Join(c.StateDir, "agent-logs")
}
