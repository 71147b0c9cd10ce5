// Package session records and orchestrates netdiag telemetry sessions.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/Wes1101/T4-1000-netdiag/internal/config"
)

// Status represents the final state of a recording session
type Status string

const (
	// StatusRunning indicates the session is in progress
	StatusRunning Status = "running"
	// StatusCompleted indicates the session finished and output was recorded
	StatusCompleted Status = "completed"
	// StatusNoOutput indicates the session finished but the agent left no output
	StatusNoOutput Status = "no-output"
	// StatusFailed indicates the session aborted before completion
	StatusFailed Status = "failed"
	// StatusInterrupted indicates the session was cut short by a signal
	StatusInterrupted Status = "interrupted"
)

// Session is the persisted record of one telemetry recording run. It
// doubles as the session result: output location, agent stderr log and
// the load generator's exit status.
type Session struct {
	ID        string    `json:"id" yaml:"id"`
	Target    string    `json:"target" yaml:"target"`
	Iface     string    `json:"iface" yaml:"iface"`
	BindAddr  string    `json:"bind_addr" yaml:"bind_addr"`
	Protocol  string    `json:"protocol" yaml:"protocol"`
	Port      int       `json:"port" yaml:"port"`
	Bandwidth string    `json:"bandwidth" yaml:"bandwidth"`
	Duration  int       `json:"duration_sec" yaml:"duration_sec"`
	Status    Status    `json:"status" yaml:"status"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	StoppedAt time.Time `json:"stopped_at,omitempty" yaml:"stopped_at,omitempty"`

	OutputPath     string `json:"output_path" yaml:"output_path"`
	BackupPath     string `json:"backup_path,omitempty" yaml:"backup_path,omitempty"`
	AgentPID       int    `json:"agent_pid,omitempty" yaml:"agent_pid,omitempty"`
	AgentStderrLog string `json:"agent_stderr_log,omitempty" yaml:"agent_stderr_log,omitempty"`
	LoadExitCode   int    `json:"load_exit_code" yaml:"load_exit_code"`
	OutputExists   bool   `json:"output_exists" yaml:"output_exists"`
}

// newSession creates a running session record from a resolved config.
func newSession(cfg config.SessionConfig) *Session {
	return &Session{
		ID:         uuid.New().String(),
		Target:     cfg.Target,
		Iface:      cfg.Iface,
		BindAddr:   cfg.BindAddr,
		Protocol:   string(cfg.Protocol),
		Port:       cfg.Port,
		Bandwidth:  cfg.Bandwidth,
		Duration:   cfg.DurationSec,
		Status:     StatusRunning,
		StartedAt:  time.Now(),
		OutputPath: cfg.OutputPath,
	}
}
