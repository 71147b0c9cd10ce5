package commands

import (
	"github.com/spf13/cobra"

	"github.com/Wes1101/T4-1000-netdiag/internal/cli/ui"
	"github.com/Wes1101/T4-1000-netdiag/internal/config"
	"github.com/Wes1101/T4-1000-netdiag/internal/netif"
	"github.com/Wes1101/T4-1000-netdiag/internal/session"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Record one telemetry session",
	Long: `Record one telemetry session against a target host.

The collection agent is started first and runs detached for the whole
session; the load generator then runs in the foreground for the
configured duration. When it exits the agent is stopped gracefully and
the recorded output is verified.

Examples:
  # UDP load against 10.0.0.5 for 30 seconds on eth0
  netdiag run -t 10.0.0.5 -i eth0 -d 30

  # Explicit bind address and output location
  netdiag run -t 10.0.0.5 -B 192.168.1.20 -o /var/log/netdiag/events.ndjson

  # TCP instead of UDP
  netdiag run -t 10.0.0.5 --protocol tcp`,
	RunE: runSession,
}

var runOpts struct {
	iface     string
	bindAddr  string
	output    string
	agent     string
	duration  int
	bandwidth string
	target    string
	port      int
	protocol  string
	parallel  int
	topN      int
}

func init() {
	runCmd.Flags().StringVarP(&runOpts.iface, "iface", "i", "", "Network interface the agent observes")
	runCmd.Flags().StringVarP(&runOpts.bindAddr, "bind", "B", "", "Local IPv4 address to bind the load generator to (default: first IPv4 of the interface)")
	runCmd.Flags().StringVarP(&runOpts.output, "output", "o", "", "Destination file for recorded events (NDJSON)")
	runCmd.Flags().StringVarP(&runOpts.agent, "agent", "a", "", "Path to the collection agent executable")
	runCmd.Flags().IntVarP(&runOpts.duration, "duration", "d", 0, "Load duration in seconds")
	runCmd.Flags().StringVarP(&runOpts.bandwidth, "bandwidth", "b", "", "Load bandwidth rate spec (e.g. 90M)")
	runCmd.Flags().StringVarP(&runOpts.target, "target", "t", "", "Target host to drive traffic at (required)")
	runCmd.Flags().IntVarP(&runOpts.port, "port", "p", 0, "Target port")
	runCmd.Flags().StringVar(&runOpts.protocol, "protocol", "", "Transport protocol (udp, tcp)")

	// Accepted for compatibility with the original driver; not forwarded
	// to any command.
	runCmd.Flags().IntVarP(&runOpts.parallel, "parallel", "P", 0, "Reserved: parallel stream count")
	runCmd.Flags().IntVarP(&runOpts.topN, "top", "s", 0, "Reserved: number of top talkers to report")
}

// applyRunFlags overlays explicitly-set flags onto the loaded config.
func applyRunFlags(cmd *cobra.Command, cfg *config.SessionConfig) {
	flags := cmd.Flags()
	if flags.Changed("iface") {
		cfg.Iface = runOpts.iface
	}
	if flags.Changed("bind") {
		cfg.BindAddr = runOpts.bindAddr
	}
	if flags.Changed("output") {
		cfg.OutputPath = runOpts.output
	}
	if flags.Changed("agent") {
		cfg.AgentPath = runOpts.agent
	}
	if flags.Changed("duration") {
		cfg.DurationSec = runOpts.duration
	}
	if flags.Changed("bandwidth") {
		cfg.Bandwidth = runOpts.bandwidth
	}
	if flags.Changed("target") {
		cfg.Target = runOpts.target
	}
	if flags.Changed("port") {
		cfg.Port = runOpts.port
	}
	if flags.Changed("protocol") {
		cfg.Protocol = config.Protocol(runOpts.protocol)
	}
	if flags.Changed("parallel") {
		cfg.ParallelStreams = runOpts.parallel
	}
	if flags.Changed("top") {
		cfg.TopN = runOpts.topN
	}
}

func runSession(cmd *cobra.Command, args []string) error {
	log := CreateLogger()

	cfg, err := config.Load(flagStateDir)
	if err != nil {
		return err
	}
	applyRunFlags(cmd, &cfg)

	resolved, err := config.Resolve(cfg, netif.FirstIPv4)
	if err != nil {
		return err
	}

	store := session.NewFileStore(resolved.SessionsDir())
	ctrl := session.NewController(resolved, log, store)

	sess, err := ctrl.Run(cmd.Context())
	if sess != nil {
		ui.PrintSession(sess)
	}
	if err != nil {
		return err
	}

	ui.Success("Session %s recorded to %s", sess.ID, sess.OutputPath)
	return nil
}
