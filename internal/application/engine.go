package application

import (
	"context"
	"fmt"

	"github.com/ahrav/go-scout/internal/domain"
	"github.com/ahrav/go-scout/internal/ports"
	"github.com/ahrav/go-scout/internal/store"
)

// Verify interface compliance at compile time.
var _ ports.Analytics = (*Engine)(nil)

// Engine is one immutable snapshot of the analytics stack over a dataset
// and a catalogue: Resolver, Aggregator and Compositor wired together,
// plus an optional compiled formula set. Reloading builds a new Engine;
// an existing one is never mutated.
type Engine struct {
	*Resolver
	*Aggregator
	*Compositor

	registry *DefaultFormulaRegistry
	formulas *FormulaSet
	ranker   *Ranker
}

// engineOptions collects NewEngine options.
type engineOptions struct {
	formulaSet     *FormulaSetConfig
	factories      map[string]ports.FormulaFactory
	decorate       FormulaDecorator
	maxConcurrency int
}

// EngineOption configures NewEngine.
type EngineOption func(*engineOptions)

// WithFormulaSet compiles cfg against the new engine.
func WithFormulaSet(cfg *FormulaSetConfig) EngineOption {
	return func(o *engineOptions) { o.formulaSet = cfg }
}

// WithFormulaFactory registers a custom formula type before the formula
// set is compiled.
func WithFormulaFactory(formulaType string, factory ports.FormulaFactory) EngineOption {
	return func(o *engineOptions) {
		if o.factories == nil {
			o.factories = make(map[string]ports.FormulaFactory)
		}
		o.factories[formulaType] = factory
	}
}

// WithFormulaDecorator wraps every compiled formula and stat.
func WithFormulaDecorator(decorate FormulaDecorator) EngineOption {
	return func(o *engineOptions) { o.decorate = decorate }
}

// WithMaxConcurrency bounds the number of teams ranked concurrently.
func WithMaxConcurrency(n int) EngineOption {
	return func(o *engineOptions) { o.maxConcurrency = n }
}

// NewEngine wires Resolver, Aggregator and Compositor over s and catalog
// and compiles the configured formula set, if any.
func NewEngine(s *store.Store, catalog *domain.Catalog, opts ...EngineOption) (*Engine, error) {
	var o engineOptions
	for _, opt := range opts {
		opt(&o)
	}

	resolver, err := NewResolver(s, catalog)
	if err != nil {
		return nil, err
	}
	aggregator, err := NewAggregator(resolver)
	if err != nil {
		return nil, err
	}
	compositor, err := NewCompositor(aggregator, resolver, catalog)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		Resolver:   resolver,
		Aggregator: aggregator,
		Compositor: compositor,
		ranker:     NewRanker(resolver, o.maxConcurrency),
	}

	e.registry = NewFormulaRegistry(e)
	for formulaType, factory := range o.factories {
		if err := e.registry.RegisterFormulaFactory(formulaType, factory); err != nil {
			return nil, err
		}
	}

	if o.formulaSet != nil {
		set, err := CompileFormulaSet(o.formulaSet, e.registry, o.decorate)
		if err != nil {
			return nil, fmt.Errorf("failed to compile formula set: %w", err)
		}
		e.formulas = set
	}

	return e, nil
}

// Registry returns the formula registry bound to this engine.
func (e *Engine) Registry() ports.FormulaRegistry { return e.registry }

// FormulaSet returns the compiled formula set, or nil when none was
// configured.
func (e *Engine) FormulaSet() *FormulaSet { return e.formulas }

// Stat returns the formula or stat with id from the compiled formula set.
// Unknown ids are domain.ErrUnknownFormula.
func (e *Engine) Stat(id string) (ports.Formula, error) {
	return e.formulas.lookup(id)
}

// Score evaluates the stat with id for entity. Stats report their display
// value; plain formulas report their value as both raw and display.
func (e *Engine) Score(id string, entity domain.EntityID) (domain.Score, error) {
	f, err := e.Stat(id)
	if err != nil {
		return domain.Score{}, err
	}
	if scorer, ok := f.(ports.Scorer); ok {
		return scorer.Score(entity)
	}
	v, err := f.Evaluate(entity)
	if err != nil {
		return domain.Score{}, err
	}
	return domain.Score{Raw: v, Display: v}, nil
}

// Rank evaluates formula for every team and orders the results.
func (e *Engine) Rank(ctx context.Context, formula ports.Formula) (Ranking, error) {
	return e.ranker.Rank(ctx, formula)
}
