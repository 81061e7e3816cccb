package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInventory struct {
	aliases        map[string]string
	networkAliases map[string]string
	addrs          map[string]string
	listErr        error

	mu        sync.Mutex
	listCalls int
}

func (f *fakeInventory) ListNodeAliases(_ context.Context) (map[string]string, error) {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.aliases, nil
}

func (f *fakeInventory) ListNetworkAliases(_ context.Context) (map[string]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.networkAliases != nil {
		return f.networkAliases, nil
	}
	return f.aliases, nil
}

func (f *fakeInventory) ResolvePrimaryAddress(_ context.Context, node string) (string, error) {
	ip, ok := f.addrs[node]
	if !ok {
		return "", errors.New("instance not found")
	}
	return ip, nil
}

// fakeProber reports the configured IPs as reachable, optionally only after
// a number of probe iterations.
type fakeProber struct {
	mu        sync.Mutex
	reachable map[string]bool
	afterPoll int
	polls     int
}

func (f *fakeProber) IsReachable(_ context.Context, ip string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.polls <= f.afterPoll {
		return false
	}
	return f.reachable[ip]
}

func batchOf(nodes ...string) RepairBatch {
	b := RepairBatch{}
	for _, n := range nodes {
		b.Members = append(b.Members, Mutation{Node: n, NewAlias: "10.200.1.0/24", Reason: "converge"})
	}
	return b
}

func newTestOrchestrator(inv *fakeInventory, compute *fakeCompute, probe Prober) *Orchestrator {
	return NewOrchestrator(inv, compute, probe, 200*time.Millisecond, 10*time.Millisecond, testLogger())
}

func TestOrchestrator_EmptyBatchStaysIdle(t *testing.T) {
	t.Parallel()

	compute := &fakeCompute{}
	o := newTestOrchestrator(&fakeInventory{}, compute, &fakeProber{})

	err := o.Repair(context.Background(), RepairBatch{})

	require.NoError(t, err)
	assert.Equal(t, RepairIdle, o.State())
	// The reboot call is never issued with zero members.
	assert.Empty(t, compute.rebooted)
}

func TestOrchestrator_RebootsExactlyTheBatch(t *testing.T) {
	t.Parallel()

	inv := &fakeInventory{addrs: map[string]string{
		"worker-1": "10.0.0.11",
		"worker-2": "10.0.0.12",
	}}
	compute := &fakeCompute{}
	probe := &fakeProber{reachable: map[string]bool{"10.0.0.11": true, "10.0.0.12": true}}
	o := newTestOrchestrator(inv, compute, probe)

	err := o.Repair(context.Background(), batchOf("worker-1", "worker-2"))

	require.NoError(t, err)
	assert.Equal(t, RepairRecovered, o.State())
	require.Len(t, compute.rebooted, 1)
	assert.ElementsMatch(t, []string{"worker-1", "worker-2"}, compute.rebooted[0])
}

func TestOrchestrator_WaitsForLateRecovery(t *testing.T) {
	t.Parallel()

	inv := &fakeInventory{addrs: map[string]string{"worker-1": "10.0.0.11"}}
	probe := &fakeProber{reachable: map[string]bool{"10.0.0.11": true}, afterPoll: 3}
	o := newTestOrchestrator(inv, &fakeCompute{}, probe)

	err := o.Repair(context.Background(), batchOf("worker-1"))

	require.NoError(t, err)
	assert.Equal(t, RepairRecovered, o.State())
}

func TestOrchestrator_TimesOutOnUnreachableNode(t *testing.T) {
	t.Parallel()

	inv := &fakeInventory{addrs: map[string]string{
		"worker-1": "10.0.0.11",
		"worker-2": "10.0.0.12",
	}}
	probe := &fakeProber{reachable: map[string]bool{"10.0.0.11": true}}
	o := newTestOrchestrator(inv, &fakeCompute{}, probe)

	err := o.Repair(context.Background(), batchOf("worker-1", "worker-2"))

	var timeout *RecoveryTimeout
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, []string{"worker-2"}, timeout.Unreachable)
	assert.Equal(t, RepairRecoveryFailed, o.State())
}

// An address that cannot be resolved counts toward the timeout: after a
// reboot the pass itself caused, a node it cannot even locate is failed, not
// skipped.
func TestOrchestrator_UnresolvedAddressFailsClosed(t *testing.T) {
	t.Parallel()

	inv := &fakeInventory{addrs: map[string]string{"worker-1": "10.0.0.11"}}
	probe := &fakeProber{reachable: map[string]bool{"10.0.0.11": true}}
	o := newTestOrchestrator(inv, &fakeCompute{}, probe)

	err := o.Repair(context.Background(), batchOf("worker-1", "worker-9"))

	var timeout *RecoveryTimeout
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, []string{"worker-9"}, timeout.Unreachable)
}

func TestOrchestrator_RebootFailureIsFatal(t *testing.T) {
	t.Parallel()

	compute := &fakeCompute{failReboot: errors.New("zone operation failed")}
	o := newTestOrchestrator(&fakeInventory{}, compute, &fakeProber{})

	err := o.Repair(context.Background(), batchOf("worker-1"))

	require.Error(t, err)
	assert.Equal(t, RepairRecoveryFailed, o.State())
}
