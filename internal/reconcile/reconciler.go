package reconcile

import (
	"context"
	"log"
	"time"

	"github.com/imamik/k8gcp/internal/audit"
	"github.com/imamik/k8gcp/internal/config"
)

// Outcome is the overall result of one reconciliation pass.
type Outcome string

const (
	// OutcomeConverged means every pending mutation was applied and the
	// repaired nodes came back reachable.
	OutcomeConverged Outcome = "Converged"
	// OutcomeNoOpNeeded means the node set was already converged (or the
	// feature is administratively disabled) and nothing was written.
	OutcomeNoOpNeeded Outcome = "NoOpNeeded"
	// OutcomePartialFailure means at least one node's mutation failed while
	// others converged. Surfaced as a warning, not a pass failure.
	OutcomePartialFailure Outcome = "PartialFailure"
	// OutcomeRecoveryFailed means a rebooted node did not come back within
	// the recovery window. Fatal: the cluster must be treated as degraded.
	OutcomeRecoveryFailed Outcome = "RecoveryFailed"
)

// Result summarizes a pass for the trigger that invoked it.
type Result struct {
	Outcome    Outcome
	Planned    int // pending mutations in the plan
	Mutated    int // successfully applied mutations (incl. collision clears)
	Failed     int // nodes whose mutation failed
	Collisions int // collision groups detected

	// Unsafe lists nodes preserved because their range is unset.
	Unsafe []string

	Duration time.Duration
}

// Reconciler runs the alias reconciliation pipeline:
// fetch -> diff -> collision scan -> converge -> repair.
//
// It holds no state between passes; every pass recomputes from live
// inventory. Overlapping invocations are tolerated without locking because a
// converged node set diffs to an all-no-op plan (at worst two runs redo the
// same clear/set).
type Reconciler struct {
	cfg       *config.Config
	inventory InventoryClient
	cluster   ClusterClient
	compute   ComputeClient
	probe     Prober
	audit     *audit.Log
	log       Logger
}

// New creates a reconciler. A nil logger falls back to the standard logger.
func New(cfg *config.Config, cloud CloudClient, cluster ClusterClient, probe Prober, auditLog *audit.Log, logger Logger) *Reconciler {
	if logger == nil {
		logger = log.Default()
	}
	return &Reconciler{
		cfg:       cfg,
		inventory: cloud,
		cluster:   cluster,
		compute:   cloud,
		probe:     probe,
		audit:     auditLog,
		log:       logger,
	}
}

// Run executes one reconciliation pass. The returned error is non-nil only
// for pass-fatal conditions (*FetchError, *RecoveryTimeout or a failed
// reboot); per-node mutation failures are reflected in the result as
// PartialFailure instead. Callers supply their own deadline via ctx; the
// recovery window dominates worst-case latency.
func (r *Reconciler) Run(ctx context.Context) (Result, error) {
	start := time.Now()

	// Disabled mode: anything but native routing has no aliases to manage.
	// Return before touching either API.
	if !r.cfg.ReconcileEnabled() {
		r.log.Printf("[reconcile] routing mode %q, alias reconciliation disabled", r.cfg.RoutingMode)
		return Result{Outcome: OutcomeNoOpNeeded, Duration: time.Since(start)}, nil
	}

	snap, err := TakeSnapshot(ctx, r.inventory, r.cluster)
	if err != nil {
		return Result{Duration: time.Since(start)}, err
	}
	r.log.Printf("[reconcile] snapshot: %d cluster node(s), %d network alias(es), %d pod range(s)",
		len(snap.ClusterAliases), len(snap.NetworkAliases), len(snap.PodRanges))

	plan := BuildPlan(snap)
	for _, node := range plan.Unsafe() {
		r.log.Printf("[reconcile] warning: %s carries alias %q but the cluster has not assigned a range yet, preserving",
			node, plan.Entries[node].Current)
	}

	collisions := DetectCollisions(snap.NetworkAliases)

	result := Result{
		Planned:    len(plan.Pending()),
		Collisions: len(collisions),
		Unsafe:     plan.Unsafe(),
	}

	if plan.IsNoOp() && len(collisions) == 0 {
		result.Outcome = OutcomeNoOpNeeded
		result.Duration = time.Since(start)
		r.log.Printf("[reconcile] already converged, nothing to do")
		return result, nil
	}

	converger := NewConverger(r.compute, r.audit, r.log)
	cr := converger.Apply(ctx, plan, collisions)
	result.Mutated = len(cr.Batch.Members)
	result.Failed = len(cr.Failures)

	orchestrator := NewOrchestrator(r.inventory, r.compute, r.probe,
		r.cfg.Recovery.Window, r.cfg.Recovery.Interval, r.log)
	if err := orchestrator.Repair(ctx, cr.Batch); err != nil {
		result.Outcome = OutcomeRecoveryFailed
		result.Duration = time.Since(start)
		return result, err
	}

	if result.Failed > 0 || len(cr.Unresolved) > 0 {
		result.Outcome = OutcomePartialFailure
	} else {
		result.Outcome = OutcomeConverged
	}
	result.Duration = time.Since(start)
	return result, nil
}
