// Package commands defines the CLI command structure and flag bindings.
//
// Command execution is delegated to handler functions in the handlers
// package, which are framework-agnostic and tested independently.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the k8gcp CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "k8gcp",
		Short: "Operate Talos Kubernetes on Google Cloud from the bastion",
	}

	cmd.AddCommand(Reconcile())
	cmd.AddCommand(Watch())
	cmd.AddCommand(Version())

	return cmd
}
