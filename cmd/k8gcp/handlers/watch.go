package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/imamik/k8gcp/internal/reconcile"
	"github.com/imamik/k8gcp/internal/watch"
)

// Watch runs the unattended reconciliation loop until ctx is cancelled.
func Watch(ctx context.Context, configPath string) error {
	reconciler, auditLog, cfg, err := buildReconciler(ctx, configPath)
	if err != nil {
		return err
	}
	defer func() { _ = auditLog.Close() }()

	var metrics *watch.Metrics
	if cfg.Watch.MetricsAddr != "" {
		var srv *http.Server
		metrics, srv = startMetricsServer(cfg.Watch.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	runner := &watch.Runner{
		Pass: func(ctx context.Context) (reconcile.Result, error) {
			return reconciler.Run(ctx)
		},
		Interval:  cfg.Watch.Interval,
		BootDelay: cfg.Watch.BootDelay,
		Log:       log.Default(),
		Metrics:   metrics,
	}

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// startMetricsServer exposes the pass metrics for Prometheus.
func startMetricsServer(addr string) (*watch.Metrics, *http.Server) {
	metrics, registry := watch.NewMetrics()

	mux := http.NewServeMux()
	mux.Handle("/metrics", watch.Handler(registry))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[watch] metrics server failed: %v", err)
		}
	}()

	return metrics, srv
}
