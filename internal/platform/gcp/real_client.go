package gcp

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/api/compute/v1"
	"google.golang.org/api/option"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/imamik/k8gcp/internal/config"
	"github.com/imamik/k8gcp/internal/reconcile"
)

// RealClient implements reconcile.CloudClient against the GCP Compute API.
type RealClient struct {
	service  *compute.Service
	scope    Scope
	timeouts *config.Timeouts

	// zones maps instance name -> zone, filled in by the inventory scans.
	// Collision members found by the network-wide scan can live in other
	// zones, and mutations must be routed to the instance's own zone.
	mu    sync.Mutex
	zones map[string]string
}

var _ reconcile.CloudClient = (*RealClient)(nil)

// NewRealClient creates a compute client for the given scope. When
// credentialsFile is empty, application default credentials are used — on
// the bastion that is the instance service account.
func NewRealClient(ctx context.Context, scope Scope, credentialsFile string, timeouts *config.Timeouts) (*RealClient, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	service, err := compute.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create compute service: %w", err)
	}

	return &RealClient{
		service:  service,
		scope:    scope,
		timeouts: timeouts,
		zones:    make(map[string]string),
	}, nil
}

func (c *RealClient) rememberZone(node, zone string) {
	if zone == "" {
		return
	}
	c.mu.Lock()
	c.zones[node] = zone
	c.mu.Unlock()
}

// zoneOf returns the zone an instance was last seen in, falling back to the
// configured cluster zone for instances no scan has covered.
func (c *RealClient) zoneOf(node string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if zone, ok := c.zones[node]; ok {
		return zone
	}
	return c.scope.Zone
}

// zoneFromScopeKey extracts the zone name from an aggregated-list scope key
// such as "zones/europe-west1-c". Regional scopes yield "".
func zoneFromScopeKey(key string) string {
	const prefix = "zones/"
	if !strings.HasPrefix(key, prefix) {
		return ""
	}
	return strings.TrimPrefix(key, prefix)
}

// ListNodeAliases returns nodeName -> alias CIDR for every instance in the
// zone labeled with the cluster name. Instances without an alias map to the
// empty string. An empty map is a valid result meaning "no nodes".
func (c *RealClient) ListNodeAliases(ctx context.Context) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Fetch)
	defer cancel()

	aliases := make(map[string]string)
	filter := fmt.Sprintf("labels.%s=%s", c.scope.LabelKey, c.scope.ClusterName)

	call := c.service.Instances.List(c.scope.Project, c.scope.Zone).Filter(filter)
	err := call.Pages(ctx, func(page *compute.InstanceList) error {
		for _, inst := range page.Items {
			aliases[inst.Name] = firstAlias(inst)
			c.rememberZone(inst.Name, c.scope.Zone)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list instances in %s/%s: %w", c.scope.Project, c.scope.Zone, err)
	}
	return aliases, nil
}

// ListNetworkAliases returns nodeName -> alias CIDR for every instance on
// the shared virtual network that carries an alias, regardless of zone,
// cluster or label. Deleted clusters leave aliases behind and those collide
// like any other, so the scan must not filter by ownership.
func (c *RealClient) ListNetworkAliases(ctx context.Context) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Fetch)
	defer cancel()

	aliases := make(map[string]string)
	networkSuffix := "/networks/" + c.scope.Network

	call := c.service.Instances.AggregatedList(c.scope.Project)
	err := call.Pages(ctx, func(page *compute.InstanceAggregatedList) error {
		for scopeKey, scoped := range page.Items {
			zone := zoneFromScopeKey(scopeKey)
			for _, inst := range scoped.Instances {
				if len(inst.NetworkInterfaces) == 0 {
					continue
				}
				if !strings.HasSuffix(inst.NetworkInterfaces[0].Network, networkSuffix) {
					continue
				}
				c.rememberZone(inst.Name, zone)
				if alias := firstAlias(inst); alias != "" {
					aliases[inst.Name] = alias
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list instances on network %s: %w", c.scope.Network, err)
	}
	return aliases, nil
}

// ResolvePrimaryAddress returns the primary (non-alias) internal address of
// a node.
func (c *RealClient) ResolvePrimaryAddress(ctx context.Context, node string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Fetch)
	defer cancel()

	inst, err := c.service.Instances.Get(c.scope.Project, c.zoneOf(node), node).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get instance %s: %w", node, err)
	}
	if len(inst.NetworkInterfaces) == 0 {
		return "", fmt.Errorf("instance %s has no network interface", node)
	}
	return inst.NetworkInterfaces[0].NetworkIP, nil
}

// SetNodeAlias replaces the node's alias range with cidr; an empty cidr
// clears it. The interface fingerprint guards against concurrent interface
// updates, and the zone operation is awaited so a subsequent read sees the
// new assignment.
func (c *RealClient) SetNodeAlias(ctx context.Context, node, cidr string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Mutation)
	defer cancel()

	// Collision members may live outside the cluster zone.
	zone := c.zoneOf(node)

	inst, err := c.service.Instances.Get(c.scope.Project, zone, node).Context(ctx).Do()
	if err != nil {
		if IsNotFound(err) {
			return fmt.Errorf("instance %s disappeared since the snapshot: %w", node, err)
		}
		return fmt.Errorf("failed to get instance %s: %w", node, err)
	}
	if len(inst.NetworkInterfaces) == 0 {
		return fmt.Errorf("instance %s has no network interface", node)
	}
	nic := inst.NetworkInterfaces[0]

	patch := &compute.NetworkInterface{
		Fingerprint:     nic.Fingerprint,
		AliasIpRanges:   nil,
		ForceSendFields: []string{"AliasIpRanges"},
	}
	if cidr != "" {
		patch.AliasIpRanges = []*compute.AliasIpRange{{IpCidrRange: cidr}}
	}

	op, err := c.service.Instances.UpdateNetworkInterface(c.scope.Project, zone, node, nic.Name, patch).Context(ctx).Do()
	if err != nil {
		if IsConflict(err) {
			return fmt.Errorf("interface of %s changed concurrently, will resolve next pass: %w", node, err)
		}
		return fmt.Errorf("failed to update interface of %s: %w", node, err)
	}
	if err := c.waitZoneOperation(ctx, zone, op.Name); err != nil {
		return fmt.Errorf("alias update on %s did not complete: %w", node, err)
	}
	return nil
}

// RebootNodes resets the whole batch. All reset requests are issued before
// any operation is awaited, so the batch goes down together instead of
// alternating up/down states across the fleet.
func (c *RealClient) RebootNodes(ctx context.Context, nodes []string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Reboot)
	defer cancel()

	type pendingOp struct {
		zone string
		name string
	}
	ops := make(map[string]pendingOp, len(nodes))
	for _, node := range nodes {
		zone := c.zoneOf(node)
		op, err := c.service.Instances.Reset(c.scope.Project, zone, node).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to reset %s: %w", node, err)
		}
		ops[node] = pendingOp{zone: zone, name: op.Name}
	}

	for node, pending := range ops {
		if err := c.waitZoneOperation(ctx, pending.zone, pending.name); err != nil {
			return fmt.Errorf("reset of %s did not complete: %w", node, err)
		}
	}
	return nil
}

// waitZoneOperation polls a zone operation until it reports DONE or the
// surrounding context expires.
func (c *RealClient) waitZoneOperation(ctx context.Context, zone, name string) error {
	return wait.PollUntilContextCancel(ctx, c.timeouts.OpPoll, true, func(ctx context.Context) (bool, error) {
		op, err := c.service.ZoneOperations.Get(c.scope.Project, zone, name).Context(ctx).Do()
		if err != nil {
			// Transient lookup failures are retried until the deadline.
			return false, nil
		}
		if op.Status != "DONE" {
			return false, nil
		}
		if op.Error != nil && len(op.Error.Errors) > 0 {
			return false, fmt.Errorf("operation %s failed: %s", name, op.Error.Errors[0].Message)
		}
		return true, nil
	})
}

// firstAlias returns the CIDR of the first alias range on the first
// interface, or "" when the instance carries none. Nodes are provisioned
// with a single interface and at most one pod alias range.
func firstAlias(inst *compute.Instance) string {
	if len(inst.NetworkInterfaces) == 0 {
		return ""
	}
	ranges := inst.NetworkInterfaces[0].AliasIpRanges
	if len(ranges) == 0 {
		return ""
	}
	return ranges[0].IpCidrRange
}
