package reconcile

import (
	"context"

	"github.com/imamik/k8gcp/internal/audit"
)

// Mutation records one applied alias change, with the pre- and post-mutation
// values for audit and logging.
type Mutation struct {
	Node     string
	OldAlias string
	NewAlias string // "" for a clear
	Reason   string // "converge", "clear" or "collision"
}

// RepairBatch is the set of nodes whose alias just changed and which
// therefore need a reboot for the new assignment to take effect. It is
// created here and consumed by the repair orchestrator within the same pass.
type RepairBatch struct {
	Members []Mutation
}

// Empty reports whether the batch has no members. The common case.
func (b RepairBatch) Empty() bool { return len(b.Members) == 0 }

// Nodes returns the member node names in batch order.
func (b RepairBatch) Nodes() []string {
	nodes := make([]string, 0, len(b.Members))
	for _, m := range b.Members {
		nodes = append(nodes, m.Node)
	}
	return nodes
}

// ConvergeResult is what the converger hands back to the pass.
type ConvergeResult struct {
	Batch      RepairBatch
	Failures   []*MutationError
	Unresolved []*CollisionUnresolved
}

// Converger applies the cloud-side mutations for a plan and its collision
// groups.
type Converger struct {
	compute ComputeClient
	log     Logger
	audit   *audit.Log
}

// NewConverger creates a converger.
func NewConverger(compute ComputeClient, auditLog *audit.Log, log Logger) *Converger {
	return &Converger{compute: compute, audit: auditLog, log: log}
}

// Apply mutates one node at a time. A failure on one node is recorded and
// the remaining nodes are still attempted: partial convergence beats total
// inaction. Collision members are cleared unconditionally and take
// precedence over any plan entry for the same node in this pass; the next
// pass converges them from fresh inventory.
func (c *Converger) Apply(ctx context.Context, plan Plan, collisions []CollisionGroup) ConvergeResult {
	var result ConvergeResult

	collisionMember := make(map[string]bool)
	for _, group := range collisions {
		c.log.Printf("[converge] alias %s assigned to %d nodes, clearing all members", group.Alias, len(group.Nodes))
		var groupErr error
		for _, node := range group.Nodes {
			collisionMember[node] = true
			if err := c.mutate(ctx, &result, Mutation{
				Node:     node,
				OldAlias: group.Alias,
				Reason:   "collision",
			}); err != nil {
				groupErr = err
			}
		}
		if groupErr != nil {
			// A half-cleared group leaves a live duplicate-route hazard.
			unresolved := &CollisionUnresolved{Alias: group.Alias, Nodes: group.Nodes, Err: groupErr}
			c.log.Printf("[converge] COLLISION UNRESOLVED: %v", unresolved)
			result.Unresolved = append(result.Unresolved, unresolved)
		}
	}

	for _, node := range plan.Pending() {
		if collisionMember[node] {
			continue
		}
		entry := plan.Entries[node]

		reason := "clear"
		if entry.Action == ActionConverge {
			reason = "converge"
		}
		_ = c.mutate(ctx, &result, Mutation{
			Node:     node,
			OldAlias: entry.Current,
			NewAlias: entry.Target,
			Reason:   reason,
		})
	}

	return result
}

// mutate applies a single alias change, records it in the audit log, and
// adds it to the repair batch on success.
func (c *Converger) mutate(ctx context.Context, result *ConvergeResult, m Mutation) error {
	err := c.compute.SetNodeAlias(ctx, m.Node, m.NewAlias)

	rec := audit.Record{
		Node:     m.Node,
		OldAlias: m.OldAlias,
		NewAlias: m.NewAlias,
		Reason:   m.Reason,
		Outcome:  "ok",
	}
	if err != nil {
		rec.Outcome = "error"
		rec.Error = err.Error()
	}
	if auditErr := c.audit.Append(rec); auditErr != nil {
		c.log.Printf("[converge] audit write failed for %s: %v", m.Node, auditErr)
	}

	if err != nil {
		mutErr := &MutationError{Node: m.Node, OldAlias: m.OldAlias, NewAlias: m.NewAlias, Err: err}
		c.log.Printf("[converge] warning: %v", mutErr)
		result.Failures = append(result.Failures, mutErr)
		return err
	}

	c.log.Printf("[converge] %s: alias %q -> %q (%s)", m.Node, m.OldAlias, m.NewAlias, m.Reason)
	result.Batch.Members = append(result.Batch.Members, m)
	return nil
}
