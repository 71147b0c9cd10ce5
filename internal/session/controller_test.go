//go:build !windows

package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wes1101/T4-1000-netdiag/internal/agent"
	"github.com/Wes1101/T4-1000-netdiag/internal/config"
	"github.com/Wes1101/T4-1000-netdiag/internal/logger"
)

// writeScript drops an executable shell script into dir.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

// recordingAgent writes one NDJSON event and then waits for SIGTERM,
// standing in for the real collection agent.
func recordingAgent(t *testing.T, dir string) string {
	t.Helper()
	return writeScript(t, dir, "fake-agent",
		`echo '{"record_type":"snapshot","seq":1}' >> "$NETDIAG_OUTPUT_PATH"
trap 'exit 0' TERM
while true; do sleep 0.1; done`)
}

func controllerConfig(t *testing.T, agentPath, loadTool string) config.SessionConfig {
	t.Helper()

	cfg := config.Default()
	cfg.StateDir = t.TempDir()
	cfg.OutputPath = filepath.Join(cfg.StateDir, "out", "events.ndjson")
	cfg.AgentPath = agentPath
	cfg.LoadTool = loadTool
	cfg.Target = "10.0.0.5"
	cfg.BindAddr = "127.0.0.1"
	cfg.DurationSec = 1
	return cfg
}

func TestController_CompletedSession(t *testing.T) {
	dir := t.TempDir()
	agentPath := recordingAgent(t, dir)
	loadTool := writeScript(t, dir, "fake-iperf3", "sleep 0.2")
	cfg := controllerConfig(t, agentPath, loadTool)

	store := NewFileStore(cfg.SessionsDir())
	ctrl := NewController(cfg, logger.Nop(), store)

	sess, err := ctrl.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess)

	assert.Equal(t, StatusCompleted, sess.Status)
	assert.Equal(t, 0, sess.LoadExitCode)
	assert.True(t, sess.OutputExists)
	assert.NotZero(t, sess.AgentPID)
	assert.False(t, agent.Alive(sess.AgentPID), "agent must not survive the session")

	// The persisted record matches the returned result
	saved, err := store.Load(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, saved.Status)
	assert.True(t, saved.OutputExists)
}

func TestController_RotatesPreviousOutput(t *testing.T) {
	dir := t.TempDir()
	agentPath := recordingAgent(t, dir)
	loadTool := writeScript(t, dir, "fake-iperf3", "sleep 0.2")
	cfg := controllerConfig(t, agentPath, loadTool)

	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.OutputPath), 0o755))
	prior := []byte(`{"record_type":"snapshot","seq":99}` + "\n")
	require.NoError(t, os.WriteFile(cfg.OutputPath, prior, 0o644))

	ctrl := NewController(cfg, logger.Nop(), NewFileStore(cfg.SessionsDir()))
	sess, err := ctrl.Run(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, sess.BackupPath)
	got, err := os.ReadFile(sess.BackupPath)
	require.NoError(t, err)
	assert.Equal(t, prior, got)

	// The new output must not contain the archived event
	fresh, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	assert.NotContains(t, string(fresh), `"seq":99`)
}

func TestController_LoadFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	agentPath := recordingAgent(t, dir)
	loadTool := writeScript(t, dir, "fake-iperf3", "sleep 0.2; exit 3")
	cfg := controllerConfig(t, agentPath, loadTool)

	ctrl := NewController(cfg, logger.Nop(), NewFileStore(cfg.SessionsDir()))
	sess, err := ctrl.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, sess.Status)
	assert.Equal(t, 3, sess.LoadExitCode)
	assert.True(t, sess.OutputExists, "agent output stays valid despite load failure")
}

func TestController_MissingOutputIsWarning(t *testing.T) {
	dir := t.TempDir()
	// Agent that records nothing
	agentPath := writeScript(t, dir, "fake-agent", "trap 'exit 0' TERM\nwhile true; do sleep 0.1; done")
	loadTool := writeScript(t, dir, "fake-iperf3", "exit 0")
	cfg := controllerConfig(t, agentPath, loadTool)

	ctrl := NewController(cfg, logger.Nop(), NewFileStore(cfg.SessionsDir()))
	sess, err := ctrl.Run(context.Background())

	assert.ErrorIs(t, err, ErrNoOutput)
	require.NotNil(t, sess)
	assert.Equal(t, StatusNoOutput, sess.Status)
	assert.False(t, sess.OutputExists)
	assert.False(t, agent.Alive(sess.AgentPID), "cleanup runs before the warning is surfaced")
}

func TestController_MissingLoadToolFailsBeforeSideEffects(t *testing.T) {
	dir := t.TempDir()
	agentPath := recordingAgent(t, dir)
	cfg := controllerConfig(t, agentPath, filepath.Join(dir, "absent-tool"))

	store := NewFileStore(cfg.SessionsDir())
	ctrl := NewController(cfg, logger.Nop(), store)

	sess, err := ctrl.Run(context.Background())
	assert.Error(t, err)
	assert.Nil(t, sess)

	// No output directory, no session record
	_, statErr := os.Stat(filepath.Dir(cfg.OutputPath))
	assert.True(t, os.IsNotExist(statErr))
	sessions, listErr := store.List(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, sessions)
}

func TestController_MissingAgentFailsSession(t *testing.T) {
	dir := t.TempDir()
	loadRan := filepath.Join(dir, "load-ran")
	loadTool := writeScript(t, dir, "fake-iperf3", "touch "+loadRan)
	cfg := controllerConfig(t, filepath.Join(dir, "absent-agent"), loadTool)

	ctrl := NewController(cfg, logger.Nop(), NewFileStore(cfg.SessionsDir()))
	sess, err := ctrl.Run(context.Background())

	assert.Error(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, StatusFailed, sess.Status)

	// The load generator must never start without an agent
	_, statErr := os.Stat(loadRan)
	assert.True(t, os.IsNotExist(statErr))
}

func TestController_InterruptStopsAgentAndReportsSignal(t *testing.T) {
	dir := t.TempDir()
	agentPath := recordingAgent(t, dir)
	loadTool := writeScript(t, dir, "fake-iperf3", "sleep 30")
	cfg := controllerConfig(t, agentPath, loadTool)

	ctrl := NewController(cfg, logger.Nop(), NewFileStore(cfg.SessionsDir()))

	type result struct {
		sess *Session
		err  error
	}
	done := make(chan result, 1)
	go func() {
		sess, err := ctrl.Run(context.Background())
		done <- result{sess, err}
	}()

	// Give the session time to reach the load phase, then interrupt
	time.Sleep(500 * time.Millisecond)
	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))

	select {
	case res := <-done:
		var interrupted *InterruptedError
		require.True(t, errors.As(res.err, &interrupted))
		assert.Equal(t, 130, interrupted.ExitCode())
		require.NotNil(t, res.sess)
		assert.Equal(t, StatusInterrupted, res.sess.Status)
		assert.False(t, agent.Alive(res.sess.AgentPID), "agent must not be orphaned on interrupt")
	case <-time.After(10 * time.Second):
		t.Fatal("session did not unwind after interrupt")
	}
}

func TestInterruptedError_ExitCode(t *testing.T) {
	assert.Equal(t, 130, (&InterruptedError{Signal: syscall.SIGINT}).ExitCode())
	assert.Equal(t, 143, (&InterruptedError{Signal: syscall.SIGTERM}).ExitCode())
}
