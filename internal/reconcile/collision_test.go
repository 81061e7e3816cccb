package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectCollisions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		aliases map[string]string
		want    []CollisionGroup
	}{
		{
			name: "two nodes sharing one alias",
			aliases: map[string]string{
				"worker-0": "10.200.9.0/24",
				"worker-3": "10.200.9.0/24",
				"worker-1": "10.200.1.0/24",
			},
			want: []CollisionGroup{
				{Alias: "10.200.9.0/24", Nodes: []string{"worker-0", "worker-3"}},
			},
		},
		{
			name: "collision across clusters on the shared network",
			aliases: map[string]string{
				"alpha-worker-0": "10.200.4.0/24",
				"beta-worker-2":  "10.200.4.0/24",
				"beta-worker-3":  "10.200.4.0/24",
			},
			want: []CollisionGroup{
				{Alias: "10.200.4.0/24", Nodes: []string{"alpha-worker-0", "beta-worker-2", "beta-worker-3"}},
			},
		},
		{
			name: "multiple groups sorted by alias",
			aliases: map[string]string{
				"a": "10.200.2.0/24",
				"b": "10.200.2.0/24",
				"c": "10.200.1.0/24",
				"d": "10.200.1.0/24",
			},
			want: []CollisionGroup{
				{Alias: "10.200.1.0/24", Nodes: []string{"c", "d"}},
				{Alias: "10.200.2.0/24", Nodes: []string{"a", "b"}},
			},
		},
		{
			name: "unique aliases produce no groups",
			aliases: map[string]string{
				"worker-0": "10.200.1.0/24",
				"worker-1": "10.200.2.0/24",
			},
			want: nil,
		},
		{
			name:    "empty inventory",
			aliases: map[string]string{},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DetectCollisions(tt.aliases))
		})
	}
}
