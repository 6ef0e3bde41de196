package scoutstat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/ahrav/go-scout/infrastructure/httpapi"
	"github.com/ahrav/go-scout/infrastructure/middleware"
	"github.com/ahrav/go-scout/internal/application"
	"github.com/ahrav/go-scout/internal/ports"
)

const shutdownTimeout = 10 * time.Second

// reloader rebuilds the engine and publishes it through ref.
type reloader struct {
	builder *engineBuilder
	ref     *application.EngineRef
	metrics ports.MetricsCollector
	logger  *log.Logger
}

// reload builds a new engine and swaps it in. On failure the previous
// engine keeps serving.
func (r *reloader) reload(ctx context.Context) error {
	e, err := r.builder.build(ctx)
	status := "ok"
	if err != nil {
		status = "error"
	}
	if r.metrics != nil {
		r.metrics.RecordCounter(middleware.MetricDatasetReloads, 1, map[string]string{"status": status})
	}
	if err != nil {
		r.logger.Printf("ERROR: reload failed, keeping previous dataset: %v", err)
		return err
	}

	r.ref.Swap(e)
	r.logger.Printf("INFO: reloaded %d records for %d teams", e.RecordCount(), len(e.Teams()))
	return nil
}

// watch reloads on every SIGHUP until ctx is done.
func (r *reloader) watch(ctx context.Context) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			_ = r.reload(ctx)
		}
	}
}

func serve(ctx context.Context, cfg Config, logger *log.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewPrometheusMetrics(registry)

	builder, err := newEngineBuilder(cfg, metrics)
	if err != nil {
		return err
	}
	r := &reloader{
		builder: builder,
		ref:     application.NewEngineRef(nil),
		metrics: metrics,
		logger:  logger,
	}
	if err := r.reload(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go r.watch(ctx)

	router := httpapi.NewRouter(httpapi.NewHandler(r.ref, metrics), registry)
	if cfg.RateLimit > 0 {
		router.Use(httpapi.RateLimitMiddleware(rate.Limit(cfg.RateLimit), max(cfg.RateBurst, 1)))
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("INFO: listening on %s", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Printf("INFO: shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
