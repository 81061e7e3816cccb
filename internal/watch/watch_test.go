package watch

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/k8gcp/internal/reconcile"
)

func testRunner(pass PassFunc) (*Runner, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Runner{
		Pass:      pass,
		Interval:  10 * time.Millisecond,
		BootDelay: time.Millisecond,
		Log:       log.New(&buf, "", 0),
	}, &buf
}

func TestRunner_RunsUntilCancelled(t *testing.T) {
	t.Parallel()

	var passes atomic.Int32
	r, _ := testRunner(func(context.Context) (reconcile.Result, error) {
		passes.Add(1)
		return reconcile.Result{Outcome: reconcile.OutcomeNoOpNeeded}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := r.Run(ctx)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	// Boot pass plus several ticks.
	assert.GreaterOrEqual(t, passes.Load(), int32(2))
}

func TestRunner_LogsFailuresAndKeepsGoing(t *testing.T) {
	t.Parallel()

	var passes atomic.Int32
	r, buf := testRunner(func(context.Context) (reconcile.Result, error) {
		passes.Add(1)
		return reconcile.Result{}, errors.New("api unreachable")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_ = r.Run(ctx)

	assert.GreaterOrEqual(t, passes.Load(), int32(2), "a failed pass must not stop the loop")
	assert.Contains(t, buf.String(), "pass failed")
}

func TestRunner_ObservesMetrics(t *testing.T) {
	t.Parallel()

	metrics, _ := NewMetrics()
	var buf bytes.Buffer
	r := &Runner{
		Pass: func(context.Context) (reconcile.Result, error) {
			return reconcile.Result{Outcome: reconcile.OutcomeConverged, Mutated: 2, Duration: time.Second}, nil
		},
		Interval:  time.Hour,
		BootDelay: time.Millisecond,
		Log:       log.New(&buf, "", 0),
		Metrics:   metrics,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = r.Run(ctx)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.passes.WithLabelValues("Converged")))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.mutations))
}
