//go:build !windows

package agent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wes1101/T4-1000-netdiag/internal/config"
	"github.com/Wes1101/T4-1000-netdiag/internal/logger"
)

// writeAgentScript drops an executable shell script to act as the agent.
func writeAgentScript(t *testing.T, dir, body string) string {
	t.Helper()

	path := filepath.Join(dir, "fake-agent")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func testConfig(t *testing.T, agentPath string) config.SessionConfig {
	t.Helper()

	cfg := config.Default()
	cfg.AgentPath = agentPath
	cfg.StateDir = t.TempDir()
	cfg.OutputPath = filepath.Join(cfg.StateDir, "events.ndjson")
	cfg.Iface = "lo"
	return cfg
}

func TestSupervisor_StartAndStop(t *testing.T) {
	dir := t.TempDir()
	agentPath := writeAgentScript(t, dir, "trap 'exit 0' TERM\nwhile true; do sleep 0.1; done")
	cfg := testConfig(t, agentPath)

	s := NewSupervisor(logger.Nop())
	h, err := s.Start(cfg)
	require.NoError(t, err)
	require.NotZero(t, h.PID)
	assert.Equal(t, StateRunning, h.State())
	assert.True(t, Alive(h.PID))

	require.NoError(t, s.Stop(h))
	assert.Equal(t, StateStopped, h.State())

	// No process with the tracked PID may survive Stop
	assert.Eventually(t, func() bool {
		return !Alive(h.PID)
	}, 2*time.Second, 50*time.Millisecond)
}

func TestSupervisor_StopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	agentPath := writeAgentScript(t, dir, "trap 'exit 0' TERM\nwhile true; do sleep 0.1; done")
	cfg := testConfig(t, agentPath)

	s := NewSupervisor(logger.Nop())
	h, err := s.Start(cfg)
	require.NoError(t, err)

	require.NoError(t, s.Stop(h))
	stateAfterFirst := h.State()

	require.NoError(t, s.Stop(h))
	assert.Equal(t, stateAfterFirst, h.State())
	assert.Equal(t, StateStopped, h.State())
}

func TestSupervisor_StopNilHandle(t *testing.T) {
	s := NewSupervisor(logger.Nop())
	assert.NoError(t, s.Stop(nil))
}

func TestSupervisor_ForceKillsStubbornAgent(t *testing.T) {
	dir := t.TempDir()
	// An agent that ignores SIGTERM must be SIGKILLed after the grace period
	agentPath := writeAgentScript(t, dir, "trap '' TERM\nwhile true; do sleep 0.1; done")
	cfg := testConfig(t, agentPath)

	s := NewSupervisor(logger.Nop())
	s.grace = 200 * time.Millisecond

	h, err := s.Start(cfg)
	require.NoError(t, err)

	require.NoError(t, s.Stop(h))
	assert.Equal(t, StateStopped, h.State())
	assert.Eventually(t, func() bool {
		return !Alive(h.PID)
	}, 2*time.Second, 50*time.Millisecond)
}

func TestSupervisor_StopAfterAgentExited(t *testing.T) {
	dir := t.TempDir()
	agentPath := writeAgentScript(t, dir, "exit 0")
	cfg := testConfig(t, agentPath)

	s := NewSupervisor(logger.Nop())
	h, err := s.Start(cfg)
	require.NoError(t, err)

	// Wait for the agent to exit on its own
	require.Eventually(t, func() bool {
		return h.State() == StateStopped
	}, 2*time.Second, 20*time.Millisecond)

	assert.NoError(t, s.Stop(h))
}

func TestSupervisor_EnvironmentContract(t *testing.T) {
	dir := t.TempDir()
	envDump := filepath.Join(dir, "env.txt")
	agentPath := writeAgentScript(t, dir,
		`echo "$NETDIAG_IFACE|$NETDIAG_OUTPUT_PATH|$NETDIAG_POLL_INTERVAL" > `+envDump)

	cfg := testConfig(t, agentPath)
	cfg.PollIntervalSec = 0.5

	s := NewSupervisor(logger.Nop())
	h, err := s.Start(cfg)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return h.State() == StateStopped
	}, 2*time.Second, 20*time.Millisecond)

	data, err := os.ReadFile(envDump)
	require.NoError(t, err)

	fields := strings.Split(strings.TrimSpace(string(data)), "|")
	require.Len(t, fields, 3)
	assert.Equal(t, cfg.Iface, fields[0])
	assert.Equal(t, cfg.OutputPath, fields[1])
	assert.Equal(t, "0.5", fields[2])
}

func TestSupervisor_StderrRedirectedToLog(t *testing.T) {
	dir := t.TempDir()
	agentPath := writeAgentScript(t, dir, `echo "collector failure" >&2`)
	cfg := testConfig(t, agentPath)

	s := NewSupervisor(logger.Nop())
	h, err := s.Start(cfg)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return h.State() == StateStopped
	}, 2*time.Second, 20*time.Millisecond)

	data, err := os.ReadFile(h.StderrLogPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "collector failure")
}

func TestSupervisor_MissingAgent(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "no-such-agent"))

	s := NewSupervisor(logger.Nop())
	_, err := s.Start(cfg)
	assert.Error(t, err)
}
