// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import "github.com/ahrav/go-scout/internal/domain"

// Formula is a named, pure function from an entity id to a number.
// Variants cover raw-field lookups, averaged stats and composites of
// other formulas. Formulas must be safe for concurrent use and must not
// hold mutable state beyond what their constructor captured.
type Formula interface {
	// Name returns a unique identifier for this formula.
	// The name is used for logging, metrics, and configuration references.
	Name() string

	// Evaluate computes the formula for one entity. Data-availability
	// failures such as domain.ErrNoData are returned to the caller,
	// never replaced by a default value.
	//
	// Example:
	//
	//	v, err := formula.Evaluate(domain.TeamEntity(4099))
	//	if errors.Is(err, domain.ErrNoData) {
	//	    // the team has not played yet
	//	}
	Evaluate(entity domain.EntityID) (float64, error)

	// Validate checks that the formula is properly configured.
	// It is called once when a formula set is compiled.
	Validate() error
}

// Scorer is implemented by composite stats that can report a display
// score alongside their raw value.
type Scorer interface {
	Formula

	// Score evaluates the stat and reports raw, display and reference
	// values for rendering.
	Score(entity domain.EntityID) (domain.Score, error)
}

// FormulaFactory creates a formula from its id and decoded parameters.
// Parameters come from YAML and may carry injected dependencies, such as a
// previously compiled formula the new one composes.
type FormulaFactory func(id string, params map[string]any) (Formula, error)

// FormulaRegistry maps formula type names to factories.
type FormulaRegistry interface {
	// CreateFormula builds a formula of formulaType.
	CreateFormula(formulaType, id string, params map[string]any) (Formula, error)

	// RegisterFormulaFactory adds or replaces the factory for formulaType.
	RegisterFormulaFactory(formulaType string, factory FormulaFactory) error

	// GetSupportedTypes returns every registered formula type.
	GetSupportedTypes() []string
}

// SeriesSource yields one numeric per-match sequence for a team. It is the
// typed replacement for a per-team closure handed to alliance operations.
type SeriesSource interface {
	// Name identifies the series in logs and responses.
	Name() string

	// Series returns the team's values in stored match order.
	Series(team int) ([]float64, error)
}
