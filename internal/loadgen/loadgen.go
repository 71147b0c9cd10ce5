// Package loadgen drives the external load generator for the duration of
// a session. The tool (iperf3 by default) runs synchronously in the
// foreground; its exit status is reported but a failed run does not
// invalidate the agent's independently collected output.
package loadgen

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/Wes1101/T4-1000-netdiag/internal/config"
	"github.com/Wes1101/T4-1000-netdiag/internal/logger"
)

// Runner executes load generation runs.
type Runner struct {
	log logger.Logger
}

// NewRunner creates a runner logging through log.
func NewRunner(log logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{log: log}
}

// CheckTool verifies the load generator is on PATH.
func CheckTool(tool string) error {
	if _, err := exec.LookPath(tool); err != nil {
		return fmt.Errorf("load generator %q not found on PATH: %w", tool, err)
	}
	return nil
}

// BuildArgs assembles the load generator's argument list from the session
// configuration.
func BuildArgs(cfg config.SessionConfig) []string {
	args := []string{
		"-c", cfg.Target,
		"-p", strconv.Itoa(cfg.Port),
		"-B", cfg.BindAddr,
		"-t", strconv.Itoa(cfg.DurationSec),
		"-b", cfg.Bandwidth,
	}
	if cfg.Protocol == config.ProtocolUDP {
		args = append(args, "-u")
	}
	return args
}

// Run invokes the load generator and blocks until it exits or ctx is
// cancelled. It returns the child's exit code; a non-zero code is not an
// error. An error is returned only when the tool could not run at all or
// the context was cancelled mid-flight.
func (r *Runner) Run(ctx context.Context, cfg config.SessionConfig) (int, error) {
	args := BuildArgs(cfg)
	r.log.Info("starting load generator", "tool", cfg.LoadTool, "target", cfg.Target, "duration_sec", cfg.DurationSec)
	r.log.Debug("load generator command", "args", args)

	cmd := exec.CommandContext(ctx, cfg.LoadTool, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return -1, ctx.Err()
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			code := exitErr.ExitCode()
			r.log.Warn("load generator exited non-zero", "exit_code", code)
			return code, nil
		}
		return -1, fmt.Errorf("failed to run load generator: %w", err)
	}

	return 0, nil
}
