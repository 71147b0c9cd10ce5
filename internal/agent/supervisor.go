// Package agent supervises the external telemetry collection agent.
//
// The agent is a black box: it is launched detached, told where to write
// through environment variables, and otherwise left alone. The supervisor
// owns the process lifecycle exclusively and guarantees the agent is
// never left running after Stop returns.
package agent

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Wes1101/T4-1000-netdiag/internal/config"
	"github.com/Wes1101/T4-1000-netdiag/internal/logger"
)

// State represents the lifecycle state of a supervised agent process
type State string

const (
	// StateRunning indicates the agent process is alive
	StateRunning State = "running"
	// StateStopping indicates a termination request is in flight
	StateStopping State = "stopping"
	// StateStopped indicates the process exit has been confirmed
	StateStopped State = "stopped"
)

// stopGracePeriod is how long Stop waits, polling once per second, before
// escalating from SIGTERM to SIGKILL.
const stopGracePeriod = 5 * time.Second

// Handle tracks one supervised agent process. It is created by Start and
// owned by the Supervisor; callers only pass it back to Stop.
type Handle struct {
	PID           int
	StderrLogPath string

	cmd      *exec.Cmd
	mu       sync.Mutex
	state    State
	done     chan struct{}
	doneOnce sync.Once
}

// State returns the current lifecycle state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *Handle) setState(s State) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

// monitor reaps the agent process and marks the handle stopped.
func (h *Handle) monitor(stderr *os.File) {
	_ = h.cmd.Wait()
	_ = stderr.Close()

	h.setState(StateStopped)
	h.doneOnce.Do(func() {
		close(h.done)
	})
}

// Supervisor launches and terminates the collection agent.
type Supervisor struct {
	log   logger.Logger
	grace time.Duration
}

// NewSupervisor creates a supervisor logging through log.
func NewSupervisor(log logger.Logger) *Supervisor {
	if log == nil {
		log = logger.Nop()
	}
	return &Supervisor{log: log, grace: stopGracePeriod}
}

// Start launches the agent as a detached child process. Its stdout is
// discarded; stderr is redirected to a log file under the state directory
// for post-mortem inspection. The interface name and output path reach
// the agent exclusively through environment variables.
func (s *Supervisor) Start(cfg config.SessionConfig) (*Handle, error) {
	info, err := os.Stat(cfg.AgentPath)
	if err != nil {
		return nil, fmt.Errorf("agent not found at %s: %w", cfg.AgentPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("agent path %s is a directory", cfg.AgentPath)
	}

	if err := os.MkdirAll(cfg.AgentLogDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create agent log directory: %w", err)
	}

	logPath := filepath.Join(cfg.AgentLogDir(), fmt.Sprintf("agent-%s.log", uuid.New().String()))
	stderr, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent stderr log: %w", err)
	}

	cmd := exec.Command(cfg.AgentPath)
	cmd.Env = agentEnv(cfg)
	cmd.Stdout = nil
	cmd.Stderr = stderr
	configureDetached(cmd)

	if err := cmd.Start(); err != nil {
		_ = stderr.Close()
		_ = os.Remove(logPath)
		return nil, fmt.Errorf("failed to start agent: %w", err)
	}

	h := &Handle{
		PID:           cmd.Process.Pid,
		StderrLogPath: logPath,
		cmd:           cmd,
		state:         StateRunning,
		done:          make(chan struct{}),
	}

	go h.monitor(stderr)

	s.log.Info("agent started", "pid", h.PID, "stderr_log", logPath)
	return h, nil
}

// Stop terminates the agent: SIGTERM first, then liveness polled once per
// second for up to five seconds, then SIGKILL. The grace period lets the
// agent flush and close its output file. Stop is idempotent; stopping an
// already-stopped agent is a no-op.
func (s *Supervisor) Stop(h *Handle) error {
	if h == nil {
		return nil
	}

	h.mu.Lock()
	if h.state == StateStopped {
		h.mu.Unlock()
		return nil
	}
	h.state = StateStopping
	h.mu.Unlock()

	s.log.Info("stopping agent", "pid", h.PID)

	if err := signalTerm(h.cmd); err != nil {
		// The process may have exited between the state check and the
		// signal; confirm via the monitor before treating it as an error.
		select {
		case <-h.done:
			return nil
		default:
			return fmt.Errorf("failed to signal agent: %w", err)
		}
	}

	deadline := time.Now().Add(s.grace)
	for time.Now().Before(deadline) {
		select {
		case <-h.done:
			s.log.Info("agent exited", "pid", h.PID)
			return nil
		case <-time.After(time.Second):
		}
	}

	// Still alive after the grace period. Force kill, ignoring failures
	// because the process may have just exited.
	s.log.Warn("agent did not exit in time, killing", "pid", h.PID)
	_ = signalKill(h.cmd)

	<-h.done
	return nil
}

// agentEnv builds the agent's environment: the parent environment plus
// the NETDIAG_* input contract.
func agentEnv(cfg config.SessionConfig) []string {
	env := append(os.Environ(),
		fmt.Sprintf("%s=%s", config.EnvIface, cfg.Iface),
		fmt.Sprintf("%s=%s", config.EnvOutputPath, cfg.OutputPath),
	)
	if cfg.PollIntervalSec > 0 {
		env = append(env, fmt.Sprintf("%s=%g", config.EnvPollInterval, cfg.PollIntervalSec))
	}
	return env
}
