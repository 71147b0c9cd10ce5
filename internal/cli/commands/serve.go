package commands

import (
	"github.com/spf13/cobra"

	"github.com/Wes1101/T4-1000-netdiag/internal/config"
	"github.com/Wes1101/T4-1000-netdiag/internal/mcp"
	"github.com/Wes1101/T4-1000-netdiag/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long:  "Serve recorded sessions over the Model Context Protocol on stdio",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagStateDir)
	if err != nil {
		return err
	}

	store := session.NewFileStore(cfg.SessionsDir())
	return mcp.NewServer(store, Version).Serve()
}
