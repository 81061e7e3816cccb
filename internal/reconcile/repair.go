package reconcile

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/imamik/k8gcp/internal/util/async"
)

// RepairState tracks the repair orchestrator's progress through a pass.
type RepairState string

const (
	// RepairIdle means there was nothing to repair.
	RepairIdle RepairState = "idle"
	// RepairBatching means batch members are being collected.
	RepairBatching RepairState = "batching"
	// RepairRebooting means the bulk reboot has been issued.
	RepairRebooting RepairState = "rebooting"
	// RepairAwaitingRecovery means rebooted nodes are being probed.
	RepairAwaitingRecovery RepairState = "awaiting-recovery"
	// RepairRecovered means every batch member came back reachable.
	RepairRecovered RepairState = "recovered"
	// RepairRecoveryFailed means the window elapsed with nodes unreachable.
	RepairRecoveryFailed RepairState = "recovery-failed"
)

// Orchestrator drives the post-mutation reboot and recovery verification.
//
// Changing a running node's alias does not fix its existing lease and
// routing state; only a reboot re-applies the assignment. The whole batch is
// rebooted in one request so the fleet sees a single disruption window
// instead of alternating up/down states node by node.
type Orchestrator struct {
	inventory InventoryClient
	compute   ComputeClient
	probe     Prober
	log       Logger

	window   time.Duration
	interval time.Duration

	state RepairState
}

// NewOrchestrator creates a repair orchestrator. window bounds the whole
// recovery check; interval is the delay between probe iterations.
func NewOrchestrator(inventory InventoryClient, compute ComputeClient, probe Prober, window, interval time.Duration, log Logger) *Orchestrator {
	return &Orchestrator{
		inventory: inventory,
		compute:   compute,
		probe:     probe,
		window:    window,
		interval:  interval,
		log:       log,
		state:     RepairIdle,
	}
}

// State returns the orchestrator's current state.
func (o *Orchestrator) State() RepairState { return o.state }

// Repair reboots the batch and verifies recovery. An empty batch terminates
// idle with no action and, in particular, no reboot call. A non-nil error is
// fatal to the pass: either the reboot could not be issued, or the recovery
// window elapsed (*RecoveryTimeout) — the caller must not proceed to declare
// the cluster healthy.
func (o *Orchestrator) Repair(ctx context.Context, batch RepairBatch) error {
	o.state = RepairBatching
	if batch.Empty() {
		o.state = RepairIdle
		return nil
	}

	nodes := batch.Nodes()
	o.state = RepairRebooting
	o.log.Printf("[repair] rebooting %d node(s): %v", len(nodes), nodes)
	if err := o.compute.RebootNodes(ctx, nodes); err != nil {
		o.state = RepairRecoveryFailed
		return fmt.Errorf("failed to reboot batch: %w", err)
	}

	o.state = RepairAwaitingRecovery
	if err := o.awaitRecovery(ctx, nodes); err != nil {
		o.state = RepairRecoveryFailed
		return err
	}

	o.state = RepairRecovered
	o.log.Printf("[repair] all %d node(s) recovered", len(nodes))
	return nil
}

// awaitRecovery resolves each node's stable address and polls reachability
// of the whole batch within one bounded window. A node whose address cannot
// be resolved counts as unreachable: failing closed is the only safe reading
// after a reboot the pass itself caused.
func (o *Orchestrator) awaitRecovery(ctx context.Context, nodes []string) error {
	addrs := make(map[string]string, len(nodes))
	for _, node := range nodes {
		ip, err := o.inventory.ResolvePrimaryAddress(ctx, node)
		if err != nil {
			o.log.Printf("[repair] warning: cannot resolve address of %s: %v", node, err)
			continue
		}
		addrs[node] = ip
	}

	var mu sync.Mutex
	recovered := make(map[string]bool, len(nodes))

	err := wait.PollUntilContextTimeout(ctx, o.interval, o.window, true, func(ctx context.Context) (bool, error) {
		var tasks []async.Task
		for node, ip := range addrs {
			if recovered[node] {
				continue
			}
			tasks = append(tasks, async.Task{
				Name: node,
				Func: func(ctx context.Context) error {
					if o.probe.IsReachable(ctx, ip) {
						mu.Lock()
						recovered[node] = true
						mu.Unlock()
					}
					return nil
				},
			})
		}
		if err := async.RunParallel(ctx, tasks); err != nil {
			return false, err
		}
		return len(recovered) == len(nodes), nil
	})
	if err == nil {
		return nil
	}

	var unreachable []string
	for _, node := range nodes {
		if !recovered[node] {
			unreachable = append(unreachable, node)
		}
	}
	sort.Strings(unreachable)
	return &RecoveryTimeout{Unreachable: unreachable, Window: o.window}
}
