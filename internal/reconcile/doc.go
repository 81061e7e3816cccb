// Package reconcile keeps per-node alias IP ranges on the cloud network in
// sync with the pod address ranges assigned by the cluster control plane.
//
// The two assignments are owned by independent systems and drift during node
// creation, node-count changes and control-plane restarts. Each pass takes
// an immutable snapshot of both, diffs them under safety rules, scans the
// whole virtual network for duplicate assignments, applies the resulting
// mutations, and reboots exactly the mutated nodes before verifying they
// come back reachable.
package reconcile
