package reconcile

import "sort"

// CollisionGroup is a set of nodes sharing one alias range at scan time.
// Duplicate assignments are an active correctness hazard (duplicate routes),
// so every member gets cleared regardless of its desired range.
type CollisionGroup struct {
	Alias string
	Nodes []string
}

// DetectCollisions scans the network-wide alias inventory and returns every
// alias assigned to more than one node. The scan deliberately covers the
// whole virtual network rather than just the cluster: ranges reused across
// clusters or left behind by deleted nodes collide all the same.
func DetectCollisions(networkAliases map[string]string) []CollisionGroup {
	byAlias := make(map[string][]string)
	for node, alias := range networkAliases {
		if alias == "" {
			continue
		}
		byAlias[alias] = append(byAlias[alias], node)
	}

	var groups []CollisionGroup
	for alias, nodes := range byAlias {
		if len(nodes) < 2 {
			continue
		}
		sort.Strings(nodes)
		groups = append(groups, CollisionGroup{Alias: alias, Nodes: nodes})
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Alias < groups[j].Alias })
	return groups
}
