package reconcile

import "sort"

// Action classifies what a pass will do to a node's alias.
type Action string

const (
	// ActionNoOp means the alias already matches the desired range, or there
	// is nothing to reconcile for this node.
	ActionNoOp Action = "noop"

	// ActionConverge means the alias will be replaced with the target range.
	ActionConverge Action = "converge"

	// ActionClear means the alias will be removed: the cluster assigned the
	// RangeNone sentinel, so the node must not carry one.
	ActionClear Action = "clear"

	// ActionPreserveUnsafe means the node carries an alias but the cluster
	// has not reported a range for it yet. The alias is left untouched and
	// a warning is emitted: clearing on an unknown target is never safe.
	ActionPreserveUnsafe Action = "preserve-unsafe"
)

// PlanEntry is the decision for a single node.
type PlanEntry struct {
	Action  Action
	Current string // alias at snapshot time, "" if none
	Target  string // desired range for converge
}

// Plan is the immutable per-pass decision set, keyed by node name. It is
// built once from a snapshot and never mutated, only superseded by the next
// pass.
type Plan struct {
	Entries map[string]PlanEntry
}

// BuildPlan diffs the cloud aliases against the cluster pod ranges for the
// cluster scope. It is a pure function of the snapshot: no side effects, no
// API calls.
func BuildPlan(snap Snapshot) Plan {
	entries := make(map[string]PlanEntry, len(snap.ClusterAliases))

	for node, alias := range snap.ClusterAliases {
		pr, inCluster := snap.PodRanges[node]

		entry := PlanEntry{Action: ActionNoOp, Current: alias}

		switch {
		case alias != "" && inCluster && !pr.Assigned:
			// Address management is lagging behind instance creation. An
			// unknown target never justifies a clear.
			entry.Action = ActionPreserveUnsafe

		case alias != "" && pr.Assigned && pr.CIDR == RangeNone:
			entry.Action = ActionClear

		case alias != "" && pr.Assigned && alias == pr.CIDR:
			entry.Action = ActionNoOp

		case alias != "" && pr.Assigned && alias != pr.CIDR:
			entry.Action = ActionConverge
			entry.Target = pr.CIDR

		case alias == "" && pr.Assigned && pr.CIDR != RangeNone && pr.CIDR != "":
			entry.Action = ActionConverge
			entry.Target = pr.CIDR
		}

		entries[node] = entry
	}

	// Nodes the cluster knows about but the cloud inventory does not carry
	// cannot be mutated through the alias interface; they are recorded as
	// no-ops so the plan covers the full node set.
	for node := range snap.PodRanges {
		if _, ok := entries[node]; !ok {
			entries[node] = PlanEntry{Action: ActionNoOp}
		}
	}

	return Plan{Entries: entries}
}

// IsNoOp reports whether the plan contains no pending mutations.
func (p Plan) IsNoOp() bool {
	for _, e := range p.Entries {
		if e.Action == ActionConverge || e.Action == ActionClear {
			return false
		}
	}
	return true
}

// Pending returns the node names with a pending mutation, sorted for stable
// iteration and logging.
func (p Plan) Pending() []string {
	var nodes []string
	for node, e := range p.Entries {
		if e.Action == ActionConverge || e.Action == ActionClear {
			nodes = append(nodes, node)
		}
	}
	sort.Strings(nodes)
	return nodes
}

// Unsafe returns the nodes whose alias was preserved because the cluster has
// not reported a range yet, sorted.
func (p Plan) Unsafe() []string {
	var nodes []string
	for node, e := range p.Entries {
		if e.Action == ActionPreserveUnsafe {
			nodes = append(nodes, node)
		}
	}
	sort.Strings(nodes)
	return nodes
}
