// Package handlers implements the business logic for CLI commands.
//
// Handlers are framework-agnostic and can be tested independently of the
// CLI framework; external clients are created through factory variables
// that tests replace.
package handlers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/imamik/k8gcp/internal/audit"
	"github.com/imamik/k8gcp/internal/config"
	"github.com/imamik/k8gcp/internal/platform/gcp"
	"github.com/imamik/k8gcp/internal/platform/k8s"
	"github.com/imamik/k8gcp/internal/reconcile"
	"github.com/imamik/k8gcp/internal/util/netutil"
)

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfig loads the cluster configuration.
	loadConfig = config.LoadFile

	// newCloudClient creates the compute client.
	newCloudClient = func(ctx context.Context, cfg *config.Config, timeouts *config.Timeouts) (reconcile.CloudClient, error) {
		scope := gcp.Scope{
			Project:     cfg.Project,
			Zone:        cfg.Zone,
			Network:     cfg.Network,
			ClusterName: cfg.ClusterName,
			LabelKey:    cfg.NodeLabel,
		}
		return gcp.NewRealClient(ctx, scope, cfg.CredentialsFile, timeouts)
	}

	// newClusterClient creates the cluster control plane client.
	newClusterClient = func(cfg *config.Config) (reconcile.ClusterClient, error) {
		return k8s.NewClient(cfg.Kubeconfig)
	}

	// newProber creates the recovery reachability prober.
	newProber = func(cfg *config.Config, timeouts *config.Timeouts) reconcile.Prober {
		return netutil.NewTCPProber(cfg.Recovery.Port, timeouts.ProbeDial)
	}

	// openAudit opens the append-only action log.
	openAudit = audit.Open
)

// Reconcile runs one on-demand reconciliation pass and reports the outcome
// synchronously. Pass-fatal conditions (fetch failure, recovery failure)
// return an error so the command exits non-zero and no caller treats the
// cluster as healthy.
func Reconcile(ctx context.Context, configPath string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reconciler, auditLog, _, err := buildReconciler(ctx, configPath)
	if err != nil {
		return err
	}
	defer func() { _ = auditLog.Close() }()

	result, err := reconciler.Run(ctx)
	if err != nil {
		return fmt.Errorf("reconciliation pass failed: %w", err)
	}

	log.Printf("[reconcile] %s: planned=%d mutated=%d failed=%d collisions=%d in %s",
		result.Outcome, result.Planned, result.Mutated, result.Failed, result.Collisions,
		result.Duration.Round(time.Millisecond))
	return nil
}

// buildReconciler wires the clients for one trigger invocation. Both trigger
// paths share it so they cannot drift apart.
func buildReconciler(ctx context.Context, configPath string) (*reconcile.Reconciler, *audit.Log, *config.Config, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	timeouts := config.LoadTimeouts()

	cloud, err := newCloudClient(ctx, cfg, timeouts)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create cloud client: %w", err)
	}

	cluster, err := newClusterClient(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create cluster client: %w", err)
	}

	auditLog, err := openAudit(cfg.AuditLog)
	if err != nil {
		return nil, nil, nil, err
	}

	prober := newProber(cfg, timeouts)
	return reconcile.New(cfg, cloud, cluster, prober, auditLog, nil), auditLog, cfg, nil
}
