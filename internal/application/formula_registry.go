package application

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/ahrav/go-scout/infrastructure/scoring"
	"github.com/ahrav/go-scout/internal/ports"
)

// Built-in formula types.
const (
	FormulaTypeAverage        = "average"
	FormulaTypeScoredAverage  = "scored_average"
	FormulaTypeGrid           = "grid"
	FormulaTypePoints         = "points"
	FormulaTypeAllianceField  = "alliance_field"
	FormulaTypeAllianceSum    = "alliance_sum"
	FormulaTypeWinProbability = "win_probability"
	FormulaTypeWinOdds        = "win_odds"
	FormulaTypePredictedScore = "predicted_score"
)

// BuiltinFormulaTypes returns every formula type a new registry supports.
func BuiltinFormulaTypes() []string {
	return []string{
		FormulaTypeAverage,
		FormulaTypeScoredAverage,
		FormulaTypeGrid,
		FormulaTypePoints,
		FormulaTypeAllianceField,
		FormulaTypeAllianceSum,
		FormulaTypeWinProbability,
		FormulaTypeWinOdds,
		FormulaTypePredictedScore,
	}
}

// Verify interface compliance at compile time.
var _ ports.FormulaRegistry = (*DefaultFormulaRegistry)(nil)

// DefaultFormulaRegistry implements the FormulaRegistry interface providing
// a factory for creating formulas based on type and parameters.
// Built-in factories receive the registry's analytics surface through the
// scoring.ParamAnalytics parameter.
type DefaultFormulaRegistry struct {
	// factories maps formula type strings to their factory functions.
	factories map[string]ports.FormulaFactory
	// mu protects concurrent access to the factories map.
	mu sync.RWMutex
	// analytics is the query surface injected into built-in formulas.
	analytics ports.Analytics
}

// NewFormulaRegistry creates a registry with the built-in formula types
// pre-registered against analytics.
func NewFormulaRegistry(analytics ports.Analytics) *DefaultFormulaRegistry {
	registry := &DefaultFormulaRegistry{
		factories: make(map[string]ports.FormulaFactory),
		analytics: analytics,
	}
	registry.registerBuiltinFactories()
	return registry
}

// adapt lifts a typed scoring factory into a ports.FormulaFactory that
// injects the analytics surface.
func adapt[F ports.Formula](a ports.Analytics, create func(string, map[string]any) (F, error)) ports.FormulaFactory {
	return func(id string, params map[string]any) (ports.Formula, error) {
		params[scoring.ParamAnalytics] = a
		f, err := create(id, params)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

// registerBuiltinFactories registers the standard formula types.
func (r *DefaultFormulaRegistry) registerBuiltinFactories() {
	a := r.analytics

	r.factories[FormulaTypeAverage] = adapt(a, scoring.CreateAverageFormula)
	r.factories[FormulaTypeScoredAverage] = adapt(a, scoring.CreateScoredAverageFormula)
	r.factories[FormulaTypeGrid] = adapt(a, scoring.CreateGridFormula)
	r.factories[FormulaTypePoints] = adapt(a, scoring.CreatePointsFormula)
	r.factories[FormulaTypeAllianceField] = adapt(a, scoring.CreateAllianceFieldFormula)
	r.factories[FormulaTypeWinProbability] = adapt(a, scoring.CreateWinProbabilityFormula)
	r.factories[FormulaTypeWinOdds] = adapt(a, scoring.CreateWinOddsFormula)
	r.factories[FormulaTypePredictedScore] = adapt(a, scoring.CreatePredictedScoreFormula)

	// AllianceSum composes a previously compiled formula instead of
	// querying analytics directly.
	r.factories[FormulaTypeAllianceSum] = func(id string, params map[string]any) (ports.Formula, error) {
		f, err := scoring.CreateAllianceSumFormula(id, params)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

// CreateFormula creates a new formula instance based on the provided
// type, identifier, and parameters. The caller's params map is not
// modified.
func (r *DefaultFormulaRegistry) CreateFormula(
	formulaType string,
	id string,
	params map[string]any,
) (ports.Formula, error) {
	r.mu.RLock()
	factory, exists := r.factories[formulaType]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unsupported formula type: %s", formulaType)
	}

	if id == "" {
		return nil, fmt.Errorf("formula ID cannot be empty")
	}

	params = maps.Clone(params)
	if params == nil {
		params = make(map[string]any)
	}

	formula, err := factory(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create formula %s of type %s: %w", id, formulaType, err)
	}

	return formula, nil
}

// RegisterFormulaFactory registers a new factory function for a formula
// type. This allows extending the registry with custom formulas at runtime.
func (r *DefaultFormulaRegistry) RegisterFormulaFactory(
	formulaType string,
	factory ports.FormulaFactory,
) error {
	if formulaType == "" {
		return fmt.Errorf("formula type cannot be empty")
	}

	if factory == nil {
		return fmt.Errorf("factory function cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[formulaType] = factory
	return nil
}

// GetSupportedTypes returns every registered formula type, sorted.
func (r *DefaultFormulaRegistry) GetSupportedTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.factories))
}
