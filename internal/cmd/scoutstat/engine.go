package scoutstat

import (
	"context"
	"fmt"

	"github.com/ahrav/go-scout/infrastructure/dataset"
	"github.com/ahrav/go-scout/infrastructure/middleware"
	"github.com/ahrav/go-scout/internal/application"
	"github.com/ahrav/go-scout/internal/domain"
	"github.com/ahrav/go-scout/internal/ports"
)

// engineBuilder loads the configured inputs into a fresh engine. It is
// reused for every reload so the loader cache spans reloads.
type engineBuilder struct {
	cfg     Config
	loader  *application.Loader
	metrics ports.MetricsCollector
}

func newEngineBuilder(cfg Config, metrics ports.MetricsCollector) (*engineBuilder, error) {
	loader, err := application.NewLoader()
	if err != nil {
		return nil, fmt.Errorf("failed to create loader: %w", err)
	}
	return &engineBuilder{cfg: cfg, loader: loader, metrics: metrics}, nil
}

// build reads the dataset, catalogue and formula set and compiles an engine.
func (b *engineBuilder) build(ctx context.Context) (*application.Engine, error) {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	opener := &dataset.Opener{MaxRetries: b.cfg.Retries}
	s, err := opener.LoadStore(ctx, b.cfg.Data)
	if err != nil {
		return nil, err
	}

	catalog := domain.DefaultCatalog()
	if b.cfg.Catalog != "" {
		if catalog, err = b.loader.LoadCatalogFromFile(ctx, b.cfg.Catalog); err != nil {
			return nil, err
		}
	}

	opts := []application.EngineOption{application.WithMaxConcurrency(b.cfg.Concurrency)}
	if b.cfg.Formulas != "" {
		set, err := b.loader.LoadFormulaSetFromFile(ctx, b.cfg.Formulas)
		if err != nil {
			return nil, err
		}
		opts = append(opts, application.WithFormulaSet(set))
	}
	if b.cfg.Trace || b.metrics != nil {
		observer := middleware.NewOTelFormulaObserver(b.metrics)
		opts = append(opts, application.WithFormulaDecorator(middleware.Decorator(observer)))
	}

	e, err := application.NewEngine(s, catalog, opts...)
	if err != nil {
		return nil, err
	}

	if b.metrics != nil {
		b.metrics.RecordGauge(middleware.MetricRecordsLoaded, float64(e.RecordCount()), nil)
		b.metrics.RecordGauge(middleware.MetricTeamsLoaded, float64(len(e.Teams())), nil)
	}
	return e, nil
}
