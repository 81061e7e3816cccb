// Package k8s reads node state from the cluster control plane.
package k8s

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/imamik/k8gcp/internal/reconcile"
)

// Client reads the authoritative pod range assignments from the API server.
type Client struct {
	clientset kubernetes.Interface
}

// NewClient creates a cluster client from a kubeconfig file, typically the
// admin kubeconfig cached on the bastion during bootstrap.
func NewClient(kubeconfigPath string) (*Client, error) {
	config, err := clientcmd.BuildConfigFromFlags("", kubeconfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to build kubeconfig: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	return &Client{clientset: clientset}, nil
}

// NewClientFromInterface wraps an existing clientset, for tests.
func NewClientFromInterface(clientset kubernetes.Interface) *Client {
	return &Client{clientset: clientset}
}

var _ reconcile.ClusterClient = (*Client)(nil)

// ListNodePodRanges returns every cluster node's pod range assignment.
// Nodes whose PodCIDR has not been set by the IPAM controller yet appear
// with Assigned=false — that is valid partial data, not an error, and is
// semantically different from "no range needed". Nodes absent from the map
// do not exist in the cluster.
func (c *Client) ListNodePodRanges(ctx context.Context) (map[string]reconcile.PodRange, error) {
	nodes, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	ranges := make(map[string]reconcile.PodRange, len(nodes.Items))
	for _, node := range nodes.Items {
		pr := reconcile.PodRange{}
		if node.Spec.PodCIDR != "" {
			pr = reconcile.PodRange{CIDR: node.Spec.PodCIDR, Assigned: true}
		}
		ranges[node.Name] = pr
	}
	return ranges, nil
}
