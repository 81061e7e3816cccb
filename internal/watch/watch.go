// Package watch runs the unattended reconciliation loop on the bastion.
//
// It shares the pass implementation with the interactive command: both are
// thin callers around reconcile.Reconciler.Run, so the two trigger paths
// cannot diverge. Outcomes are logged locally rather than returned; the
// process is stopped through the host's own lifecycle controls (signal
// context).
package watch

import (
	"context"
	"errors"
	"time"

	"github.com/imamik/k8gcp/internal/reconcile"
)

// PassFunc executes one reconciliation pass.
type PassFunc func(ctx context.Context) (reconcile.Result, error)

// Runner invokes a pass on a fixed interval, plus once shortly after boot.
type Runner struct {
	Pass      PassFunc
	Interval  time.Duration
	BootDelay time.Duration
	Log       reconcile.Logger
	Metrics   *Metrics // optional
}

// Run loops until ctx is cancelled. It never returns a pass error: failures
// are logged and the next tick tries again from fresh inventory. There is no
// mutual exclusion with the interactive trigger; overlapping runs converge
// rather than conflict.
func (r *Runner) Run(ctx context.Context) error {
	r.Log.Printf("[watch] starting: boot delay %s, interval %s", r.BootDelay, r.Interval)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(r.BootDelay):
	}

	r.runOnce(ctx)

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Log.Printf("[watch] stopping: %v", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	result, err := r.Pass(ctx)

	switch {
	case err == nil:
		r.Log.Printf("[watch] pass finished: %s (planned=%d mutated=%d failed=%d collisions=%d) in %s",
			result.Outcome, result.Planned, result.Mutated, result.Failed, result.Collisions,
			result.Duration.Round(time.Millisecond))
	case errors.Is(err, context.Canceled):
		return
	default:
		outcome := result.Outcome
		if outcome == "" {
			outcome = "FetchFailed"
		}
		r.Log.Printf("[watch] pass failed (%s): %v", outcome, err)
	}

	if r.Metrics != nil {
		outcome := string(result.Outcome)
		if outcome == "" {
			outcome = "FetchFailed"
		}
		r.Metrics.Observe(outcome, result.Mutated, result.Duration)
	}
}
