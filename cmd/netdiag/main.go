package main

import (
	"errors"
	"os"

	"github.com/Wes1101/T4-1000-netdiag/internal/cli/commands"
	"github.com/Wes1101/T4-1000-netdiag/internal/session"
)

func main() {
	if err := commands.Execute(); err != nil {
		var interrupted *session.InterruptedError
		if errors.As(err, &interrupted) {
			os.Exit(interrupted.ExitCode())
		}
		os.Exit(1)
	}
}
