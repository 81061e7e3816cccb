package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/imamik/k8gcp/cmd/k8gcp/handlers"
)

// Reconcile returns the command for a single on-demand reconciliation pass.
//
// Optional flags:
//
//	--config, -c: Path to cluster configuration YAML file (default: k8gcp.yaml)
//	--timeout: Deadline for the whole pass (default: 10m)
func Reconcile() *cobra.Command {
	var configPath string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile node alias IP ranges against cluster pod CIDRs",
		Long: `Run one alias reconciliation pass against the cluster.

The pass reads the alias assignment of every cluster node from the cloud
API, the authoritative pod CIDR of every node from the control plane, and
converges the former to the latter. Duplicate alias assignments anywhere on
the shared network are cleared. Mutated nodes are rebooted as one batch and
the pass waits for all of them to come back reachable.

An already-converged cluster produces no cloud mutations.

Examples:
  # Run a pass with the default config
  k8gcp reconcile

  # Run with a tighter overall deadline
  k8gcp reconcile --timeout 7m`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Reconcile(cmd.Context(), configPath, timeout)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "k8gcp.yaml", "Path to configuration file")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "Deadline for the whole pass")

	return cmd
}
