package reconcile

import (
	"context"
)

// PodRange is a node's pod address assignment as reported by the cluster
// control plane. Assigned distinguishes "range unset" (the IPAM controller
// has not run for this node yet) from an actual assignment, which may be the
// RangeNone sentinel.
type PodRange struct {
	CIDR     string
	Assigned bool
}

// RangeNone is the sentinel assignment for nodes that must not carry an
// alias range. It is distinct from an unset range: clearing is safe for
// RangeNone but never for unset.
const RangeNone = "none"

// ClusterClient reads the authoritative pod range assignments from the
// cluster control plane. Nodes absent from the returned map do not exist in
// the cluster; nodes present with Assigned=false exist but have no range yet.
type ClusterClient interface {
	ListNodePodRanges(ctx context.Context) (map[string]PodRange, error)
}

// InventoryClient reads current alias assignments from the cloud API.
// An empty map is a valid result meaning "no nodes", not an error.
type InventoryClient interface {
	// ListNodeAliases returns nodeName -> alias CIDR for the cluster scope.
	// Nodes without an alias map to the empty string.
	ListNodeAliases(ctx context.Context) (map[string]string, error)

	// ListNetworkAliases returns nodeName -> alias CIDR for every instance
	// sharing the virtual network, across clusters. Used for collision
	// detection only. Instances without an alias are omitted.
	ListNetworkAliases(ctx context.Context) (map[string]string, error)

	// ResolvePrimaryAddress returns the stable (primary, non-alias) address
	// of a node.
	ResolvePrimaryAddress(ctx context.Context, node string) (string, error)
}

// ComputeClient applies cloud-side mutations.
type ComputeClient interface {
	// SetNodeAlias replaces the node's alias range with cidr. An empty cidr
	// clears the alias.
	SetNodeAlias(ctx context.Context, node, cidr string) error

	// RebootNodes reboots the given nodes as one batch.
	RebootNodes(ctx context.Context, nodes []string) error
}

// CloudClient combines the cloud-facing interfaces.
type CloudClient interface {
	InventoryClient
	ComputeClient
}

// Prober checks reachability of a node's stable address.
type Prober interface {
	IsReachable(ctx context.Context, ip string) bool
}

// Logger is the minimal logging interface used throughout a pass.
type Logger interface {
	Printf(format string, v ...any)
}
