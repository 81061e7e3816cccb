package reconcile

import (
	"fmt"
	"strings"
	"time"
)

// FetchError indicates that an inventory or cluster read failed before any
// mutation was attempted. A pass that hits a FetchError aborts with nothing
// written. An empty result is not a FetchError.
type FetchError struct {
	Source string // "cloud" or "cluster"
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s inventory: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MutationError records a single node's failed cloud update. It is surfaced
// as a warning; the pass continues for the remaining nodes.
type MutationError struct {
	Node     string
	OldAlias string
	NewAlias string
	Err      error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("failed to update alias on %s (%q -> %q): %v", e.Node, e.OldAlias, e.NewAlias, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// RecoveryTimeout indicates that the recovery window elapsed with at least
// one rebooted node still unreachable. This is fatal to the pass: the caller
// must treat the cluster as degraded.
type RecoveryTimeout struct {
	Unreachable []string
	Window      time.Duration
}

func (e *RecoveryTimeout) Error() string {
	return fmt.Sprintf("%d node(s) not reachable within %s: %s",
		len(e.Unreachable), e.Window, strings.Join(e.Unreachable, ", "))
}

// CollisionUnresolved indicates a detected alias collision whose clear failed
// on at least one member, leaving an active duplicate-route hazard behind.
type CollisionUnresolved struct {
	Alias string
	Nodes []string
	Err   error
}

func (e *CollisionUnresolved) Error() string {
	return fmt.Sprintf("alias %s still assigned to multiple nodes (%s): %v",
		e.Alias, strings.Join(e.Nodes, ", "), e.Err)
}

func (e *CollisionUnresolved) Unwrap() error { return e.Err }
