package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Wes1101/T4-1000-netdiag/internal/cli/ui"
	"github.com/Wes1101/T4-1000-netdiag/internal/config"
	"github.com/Wes1101/T4-1000-netdiag/internal/session"
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"ls"},
	Short:   "List recorded sessions",
	RunE:    listSessions,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show one recorded session",
	Args:  cobra.ExactArgs(1),
	RunE:  showSession,
}

func init() {
	sessionsCmd.AddCommand(sessionsShowCmd)
}

// sessionStore opens the session store under the configured state dir.
func sessionStore() (*session.FileStore, error) {
	cfg, err := config.Load(flagStateDir)
	if err != nil {
		return nil, err
	}
	return session.NewFileStore(cfg.SessionsDir()), nil
}

func listSessions(cmd *cobra.Command, args []string) error {
	store, err := sessionStore()
	if err != nil {
		return err
	}

	sessions, err := store.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	ui.PrintSessionList(sessions)
	return nil
}

func showSession(cmd *cobra.Command, args []string) error {
	store, err := sessionStore()
	if err != nil {
		return err
	}

	sess, err := store.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	ui.PrintSession(sess)
	return nil
}
