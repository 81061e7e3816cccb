package reconcile

import (
	"context"
	"time"
)

// Snapshot is a point-in-time view of both sources of truth. It is built
// once per pass and passed by value between pipeline stages; later passes
// recompute it from live inventory rather than mutating it.
type Snapshot struct {
	// ClusterAliases maps node name -> alias CIDR ("" when no alias is
	// configured) for instances belonging to the target cluster.
	ClusterAliases map[string]string

	// NetworkAliases maps node name -> alias CIDR for every instance on the
	// shared virtual network that carries an alias, across clusters.
	NetworkAliases map[string]string

	// PodRanges maps node name -> pod range assignment as reported by the
	// cluster control plane.
	PodRanges map[string]PodRange

	Taken time.Time
}

// TakeSnapshot fetches both sources sequentially and returns an immutable
// snapshot. Any read failure surfaces as a *FetchError; nothing has been
// mutated at that point so the pass can abort cleanly.
func TakeSnapshot(ctx context.Context, inventory InventoryClient, cluster ClusterClient) (Snapshot, error) {
	aliases, err := inventory.ListNodeAliases(ctx)
	if err != nil {
		return Snapshot{}, &FetchError{Source: "cloud", Err: err}
	}

	ranges, err := cluster.ListNodePodRanges(ctx)
	if err != nil {
		return Snapshot{}, &FetchError{Source: "cluster", Err: err}
	}

	networkAliases, err := inventory.ListNetworkAliases(ctx)
	if err != nil {
		return Snapshot{}, &FetchError{Source: "cloud", Err: err}
	}

	return Snapshot{
		ClusterAliases: aliases,
		NetworkAliases: networkAliases,
		PodRanges:      ranges,
		Taken:          time.Now(),
	}, nil
}
