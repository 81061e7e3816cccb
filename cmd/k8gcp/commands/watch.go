package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/k8gcp/cmd/k8gcp/handlers"
)

// Watch returns the command for the unattended reconciliation loop.
//
// Optional flags:
//
//	--config, -c: Path to cluster configuration YAML file (default: k8gcp.yaml)
func Watch() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the unattended alias reconciliation loop",
		Long: `Run reconciliation passes on a fixed interval.

Intended to run on the bastion under a process supervisor. Waits a short
boot delay, runs one pass, then repeats on the configured interval (default
every 15 minutes). Outcomes are logged locally; if a metrics address is
configured, pass counters are exposed for Prometheus.

Stop with SIGINT or SIGTERM; an in-flight pass is cancelled cleanly.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Watch(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "k8gcp.yaml", "Path to configuration file")

	return cmd
}
