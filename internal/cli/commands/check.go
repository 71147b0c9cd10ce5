package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Wes1101/T4-1000-netdiag/internal/cli/ui"
	"github.com/Wes1101/T4-1000-netdiag/internal/config"
	"github.com/Wes1101/T4-1000-netdiag/internal/loadgen"
	"github.com/Wes1101/T4-1000-netdiag/internal/netif"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify session preconditions",
	Long: `Verify that a session could run with the current configuration:
the load generator is on PATH, the agent executable exists, and the
configured interface carries an IPv4 address. Nothing is started.`,
	RunE: runCheck,
}

var checkOpts struct {
	iface string
	agent string
}

func init() {
	checkCmd.Flags().StringVarP(&checkOpts.iface, "iface", "i", "", "Network interface to check")
	checkCmd.Flags().StringVarP(&checkOpts.agent, "agent", "a", "", "Path to the collection agent executable")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagStateDir)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("iface") {
		cfg.Iface = checkOpts.iface
	}
	if cmd.Flags().Changed("agent") {
		cfg.AgentPath = checkOpts.agent
	}

	failed := false

	if err := loadgen.CheckTool(cfg.LoadTool); err != nil {
		ui.Error("load generator: %v", err)
		failed = true
	} else {
		ui.Success("load generator %q found", cfg.LoadTool)
	}

	if info, err := os.Stat(cfg.AgentPath); err != nil {
		ui.Error("agent: %v", err)
		failed = true
	} else if info.IsDir() {
		ui.Error("agent: %s is a directory", cfg.AgentPath)
		failed = true
	} else {
		ui.Success("agent found at %s", cfg.AgentPath)
	}

	if addr, err := netif.FirstIPv4(cfg.Iface); err != nil {
		ui.Error("interface: %v", err)
		failed = true
	} else {
		ui.Success("interface %s has address %s", cfg.Iface, addr)
	}

	if failed {
		return fmt.Errorf("preconditions not met")
	}
	return nil
}
