package scoring

import (
	"fmt"
	"math"

	"github.com/ahrav/go-scout/internal/domain"
	"github.com/ahrav/go-scout/internal/ports"
)

var _ ports.Formula = (*Factor)(nil)

// Factor scales a formula by a normalization divisor so values on
// different scales can be weighted together.
type Factor struct {
	formula ports.Formula
	divisor float64
}

// NewFactor wraps formula with divisor. A zero divisor means no
// normalization and is stored as 1.
func NewFactor(formula ports.Formula, divisor float64) (*Factor, error) {
	if formula == nil {
		return nil, fmt.Errorf("%w: factor formula", ErrMissingDependency)
	}
	if divisor == 0 {
		divisor = 1
	}
	if math.IsNaN(divisor) || math.IsInf(divisor, 0) {
		return nil, fmt.Errorf("%w: divisor %v", domain.ErrInvalidConfiguration, divisor)
	}
	return &Factor{formula: formula, divisor: divisor}, nil
}

// Name returns the wrapped formula's name.
func (f *Factor) Name() string { return f.formula.Name() }

// Divisor returns the normalization divisor.
func (f *Factor) Divisor() float64 { return f.divisor }

// Evaluate returns the wrapped formula's value divided by the divisor.
func (f *Factor) Evaluate(entity domain.EntityID) (float64, error) {
	v, err := f.formula.Evaluate(entity)
	if err != nil {
		return 0, err
	}
	return v / f.divisor, nil
}

// Validate validates the wrapped formula.
func (f *Factor) Validate() error { return f.formula.Validate() }

// Term pairs a factor with its weight in a stat.
type Term struct {
	Factor *Factor
	Weight float64
}

// weightedSum is the shared core of WeightedStat and CompositeStat.
type weightedSum struct {
	name  string
	terms []Term
}

func newWeightedSum(name string, terms []Term) (weightedSum, error) {
	if name == "" {
		return weightedSum{}, ErrEmptyFormulaName
	}
	if len(terms) == 0 {
		return weightedSum{}, ErrNoTerms
	}
	for i, t := range terms {
		if t.Factor == nil {
			return weightedSum{}, fmt.Errorf("%w: term %d has no factor", ErrMissingDependency, i)
		}
		if math.IsNaN(t.Weight) || math.IsInf(t.Weight, 0) {
			return weightedSum{}, fmt.Errorf("%w: term %d (%s)", ErrInvalidWeight, i, t.Factor.Name())
		}
	}
	return weightedSum{name: name, terms: append([]Term(nil), terms...)}, nil
}

// evaluate returns Σ factor(entity) × weight. The first failing factor
// aborts the sum.
func (w weightedSum) evaluate(entity domain.EntityID) (float64, error) {
	var sum float64
	for _, t := range w.terms {
		v, err := t.Factor.Evaluate(entity)
		if err != nil {
			return 0, fmt.Errorf("%s: factor %s: %w", w.name, t.Factor.Name(), err)
		}
		sum += v * t.Weight
	}
	return sum, nil
}

func (w weightedSum) validate() error {
	for _, t := range w.terms {
		if err := t.Factor.Validate(); err != nil {
			return fmt.Errorf("%s: factor %s: %w", w.name, t.Factor.Name(), err)
		}
	}
	return nil
}
