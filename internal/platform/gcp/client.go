// Package gcp provides a wrapper around the GCP Compute API for node alias
// inventory and mutation.
package gcp

import (
	"context"

	"github.com/imamik/k8gcp/internal/reconcile"
)

// Scope identifies the slice of cloud inventory a client operates on.
// Cluster-scope reads are bounded by project, zone and the cluster label;
// network-scope reads (collision scans) cover every instance sharing the
// virtual network, across clusters.
type Scope struct {
	Project     string
	Zone        string
	Network     string
	ClusterName string
	// LabelKey is the instance label carrying the cluster name.
	LabelKey string
}

// MockClient is a func-field mock implementation of reconcile.CloudClient.
type MockClient struct {
	ListNodeAliasesFunc       func(ctx context.Context) (map[string]string, error)
	ListNetworkAliasesFunc    func(ctx context.Context) (map[string]string, error)
	ResolvePrimaryAddressFunc func(ctx context.Context, node string) (string, error)
	SetNodeAliasFunc          func(ctx context.Context, node, cidr string) error
	RebootNodesFunc           func(ctx context.Context, nodes []string) error
}

// Ensure interface compliance.
var _ reconcile.CloudClient = (*MockClient)(nil)

// ListNodeAliases mocks the cluster-scope alias inventory.
func (m *MockClient) ListNodeAliases(ctx context.Context) (map[string]string, error) {
	if m.ListNodeAliasesFunc != nil {
		return m.ListNodeAliasesFunc(ctx)
	}
	return map[string]string{}, nil
}

// ListNetworkAliases mocks the network-scope alias inventory.
func (m *MockClient) ListNetworkAliases(ctx context.Context) (map[string]string, error) {
	if m.ListNetworkAliasesFunc != nil {
		return m.ListNetworkAliasesFunc(ctx)
	}
	return map[string]string{}, nil
}

// ResolvePrimaryAddress mocks stable address resolution.
func (m *MockClient) ResolvePrimaryAddress(ctx context.Context, node string) (string, error) {
	if m.ResolvePrimaryAddressFunc != nil {
		return m.ResolvePrimaryAddressFunc(ctx, node)
	}
	return "10.0.0.1", nil
}

// SetNodeAlias mocks an alias mutation.
func (m *MockClient) SetNodeAlias(ctx context.Context, node, cidr string) error {
	if m.SetNodeAliasFunc != nil {
		return m.SetNodeAliasFunc(ctx, node, cidr)
	}
	return nil
}

// RebootNodes mocks the bulk reboot.
func (m *MockClient) RebootNodes(ctx context.Context, nodes []string) error {
	if m.RebootNodesFunc != nil {
		return m.RebootNodesFunc(ctx, nodes)
	}
	return nil
}
