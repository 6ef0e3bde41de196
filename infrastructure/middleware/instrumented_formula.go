package middleware

import (
	"context"
	"time"

	"github.com/ahrav/go-scout/internal/domain"
	"github.com/ahrav/go-scout/internal/ports"
)

// FormulaObserver provides observability hooks for formula evaluation.
// Implementations can add tracing, metrics and logging without coupling
// those concerns to the formulas themselves.
type FormulaObserver interface {
	// BeforeEvaluate is called before the wrapped formula runs. The
	// returned context is handed to AfterEvaluate, so an observer can carry
	// a span or timer across the call.
	BeforeEvaluate(ctx context.Context, formula string, entity domain.EntityID) context.Context

	// AfterEvaluate is called with the outcome and timing of the evaluation.
	AfterEvaluate(ctx context.Context, formula string, entity domain.EntityID, value float64, elapsed time.Duration, err error)
}

// InstrumentedFormula wraps a formula and reports every evaluation to a
// FormulaObserver. It holds no mutable state and is safe for concurrent
// use whenever the wrapped formula and observer are.
type InstrumentedFormula struct {
	next     ports.Formula
	observer FormulaObserver
}

// NewInstrumentedFormula wraps next. A nil observer makes the wrapper a
// pass-through.
func NewInstrumentedFormula(next ports.Formula, observer FormulaObserver) *InstrumentedFormula {
	if next == nil {
		panic("instrumented formula: next formula is required")
	}
	return &InstrumentedFormula{next: next, observer: observer}
}

// Decorator returns a function that wraps every compiled formula with
// observer. It matches the engine's formula decorator option.
func Decorator(observer FormulaObserver) func(ports.Formula) ports.Formula {
	return func(f ports.Formula) ports.Formula {
		return NewInstrumentedFormula(f, observer)
	}
}

// Name returns the wrapped formula's name.
func (f *InstrumentedFormula) Name() string { return f.next.Name() }

// Unwrap returns the wrapped formula.
func (f *InstrumentedFormula) Unwrap() ports.Formula { return f.next }

// Evaluate runs the wrapped formula between the observer hooks.
func (f *InstrumentedFormula) Evaluate(entity domain.EntityID) (float64, error) {
	var v float64
	err := f.observe(entity, func() (float64, error) {
		var err error
		v, err = f.next.Evaluate(entity)
		return v, err
	})
	return v, err
}

// Score reports the wrapped formula's score. A formula that is not a
// ports.Scorer scores as its raw value.
func (f *InstrumentedFormula) Score(entity domain.EntityID) (domain.Score, error) {
	var score domain.Score
	err := f.observe(entity, func() (float64, error) {
		if scorer, ok := f.next.(ports.Scorer); ok {
			var err error
			score, err = scorer.Score(entity)
			return score.Raw, err
		}
		v, err := f.next.Evaluate(entity)
		score = domain.Score{Raw: v, Display: v}
		return v, err
	})
	return score, err
}

// Validate delegates to the wrapped formula.
func (f *InstrumentedFormula) Validate() error { return f.next.Validate() }

func (f *InstrumentedFormula) observe(entity domain.EntityID, eval func() (float64, error)) error {
	if f.observer == nil {
		_, err := eval()
		return err
	}

	// Formulas are pure and take no context; each evaluation is its own root.
	ctx := f.observer.BeforeEvaluate(context.Background(), f.next.Name(), entity)

	start := time.Now()
	v, err := eval()
	f.observer.AfterEvaluate(ctx, f.next.Name(), entity, v, time.Since(start), err)
	return err
}

var (
	_ ports.Formula = (*InstrumentedFormula)(nil)
	_ ports.Scorer  = (*InstrumentedFormula)(nil)
)
