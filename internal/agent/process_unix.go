//go:build !windows

package agent

import (
	"fmt"
	"os/exec"
	"syscall"
)

// configureDetached puts the agent in its own process group so signals
// aimed at the driver's terminal do not reach it, and so termination
// signals cover any children the agent spawns.
func configureDetached(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// signalTerm sends SIGTERM to the agent's process group.
func signalTerm(cmd *exec.Cmd) error {
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM to process group: %w", err)
	}
	return nil
}

// signalKill sends SIGKILL to the agent's process group.
func signalKill(cmd *exec.Cmd) error {
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		return fmt.Errorf("failed to kill process group: %w", err)
	}
	return nil
}

// Alive reports whether a process with the given PID exists. Signal 0
// performs the existence check without delivering anything.
func Alive(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}
