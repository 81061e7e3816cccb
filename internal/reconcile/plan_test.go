package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPlan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		aliases map[string]string
		ranges  map[string]PodRange
		want    map[string]PlanEntry
	}{
		{
			name:    "alias matches desired range",
			aliases: map[string]string{"worker-1": "10.200.1.0/24"},
			ranges:  map[string]PodRange{"worker-1": {CIDR: "10.200.1.0/24", Assigned: true}},
			want:    map[string]PlanEntry{"worker-1": {Action: ActionNoOp, Current: "10.200.1.0/24"}},
		},
		{
			name:    "alias differs from desired range",
			aliases: map[string]string{"worker-2": "10.200.1.0/24"},
			ranges:  map[string]PodRange{"worker-2": {CIDR: "10.200.5.0/24", Assigned: true}},
			want: map[string]PlanEntry{"worker-2": {
				Action: ActionConverge, Current: "10.200.1.0/24", Target: "10.200.5.0/24",
			}},
		},
		{
			name:    "alias set but range not assigned yet is preserved",
			aliases: map[string]string{"cp-0": "10.200.3.0/24"},
			ranges:  map[string]PodRange{"cp-0": {}},
			want:    map[string]PlanEntry{"cp-0": {Action: ActionPreserveUnsafe, Current: "10.200.3.0/24"}},
		},
		{
			name:    "missing alias with assigned range converges",
			aliases: map[string]string{"worker-3": ""},
			ranges:  map[string]PodRange{"worker-3": {CIDR: "10.200.7.0/24", Assigned: true}},
			want:    map[string]PlanEntry{"worker-3": {Action: ActionConverge, Target: "10.200.7.0/24"}},
		},
		{
			name:    "sentinel none clears an existing alias",
			aliases: map[string]string{"worker-4": "10.200.2.0/24"},
			ranges:  map[string]PodRange{"worker-4": {CIDR: RangeNone, Assigned: true}},
			want:    map[string]PlanEntry{"worker-4": {Action: ActionClear, Current: "10.200.2.0/24"}},
		},
		{
			name:    "sentinel none with no alias is a no-op",
			aliases: map[string]string{"worker-5": ""},
			ranges:  map[string]PodRange{"worker-5": {CIDR: RangeNone, Assigned: true}},
			want:    map[string]PlanEntry{"worker-5": {Action: ActionNoOp}},
		},
		{
			name:    "node absent from cluster is a no-op",
			aliases: map[string]string{"stray-0": "10.200.9.0/24"},
			ranges:  map[string]PodRange{},
			want:    map[string]PlanEntry{"stray-0": {Action: ActionNoOp, Current: "10.200.9.0/24"}},
		},
		{
			name:    "cluster node without cloud inventory is a no-op",
			aliases: map[string]string{},
			ranges:  map[string]PodRange{"ghost-0": {CIDR: "10.200.8.0/24", Assigned: true}},
			want:    map[string]PlanEntry{"ghost-0": {Action: ActionNoOp}},
		},
		{
			name:    "empty inventory yields an empty plan",
			aliases: map[string]string{},
			ranges:  map[string]PodRange{},
			want:    map[string]PlanEntry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			plan := BuildPlan(Snapshot{ClusterAliases: tt.aliases, PodRanges: tt.ranges})
			assert.Equal(t, tt.want, plan.Entries)
		})
	}
}

// A node whose desired range is unknown must never be converged or cleared,
// no matter what alias it carries.
func TestBuildPlan_NeverClearsOnUnknownTarget(t *testing.T) {
	t.Parallel()

	snap := Snapshot{
		ClusterAliases: map[string]string{
			"cp-0":     "10.200.3.0/24",
			"worker-0": "10.200.1.0/24",
		},
		PodRanges: map[string]PodRange{
			"cp-0":     {},
			"worker-0": {},
		},
	}

	plan := BuildPlan(snap)
	for node, entry := range plan.Entries {
		assert.NotEqual(t, ActionConverge, entry.Action, "node %s", node)
		assert.NotEqual(t, ActionClear, entry.Action, "node %s", node)
	}
	assert.Equal(t, []string{"cp-0", "worker-0"}, plan.Unsafe())
}

func TestPlan_IsNoOpAndPending(t *testing.T) {
	t.Parallel()

	converged := BuildPlan(Snapshot{
		ClusterAliases: map[string]string{
			"a": "10.200.1.0/24",
			"b": "10.200.2.0/24",
		},
		PodRanges: map[string]PodRange{
			"a": {CIDR: "10.200.1.0/24", Assigned: true},
			"b": {CIDR: "10.200.2.0/24", Assigned: true},
		},
	})
	assert.True(t, converged.IsNoOp())
	assert.Empty(t, converged.Pending())

	drifted := BuildPlan(Snapshot{
		ClusterAliases: map[string]string{
			"a": "10.200.1.0/24",
			"b": "10.200.9.0/24",
		},
		PodRanges: map[string]PodRange{
			"a": {CIDR: "10.200.1.0/24", Assigned: true},
			"b": {CIDR: "10.200.2.0/24", Assigned: true},
		},
	})
	assert.False(t, drifted.IsNoOp())
	assert.Equal(t, []string{"b"}, drifted.Pending())
}
