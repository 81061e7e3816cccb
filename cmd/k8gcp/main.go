// Package main is the entry point for the k8gcp CLI.
//
// k8gcp operates a self-managed Talos Kubernetes cluster on Google Cloud
// from its bastion host. Its core job is keeping per-node alias IP ranges in
// sync with the pod CIDR assignments made by the cluster control plane.
//
// Commands: reconcile, watch, version.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/k8gcp/cmd/k8gcp/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
