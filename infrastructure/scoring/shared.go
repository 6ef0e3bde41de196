// Package scoring provides the formula variants, factors and composite
// stats that implement ports.Formula for the scouting analytics engine.
package scoring

import (
	"bytes"
	"errors"
	"fmt"
	"maps"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-scout/internal/ports"
)

// Keys under which registries inject dependencies into factory params.
// Injected values are never decoded as YAML parameters.
const (
	// ParamAnalytics carries the ports.Analytics a formula queries.
	ParamAnalytics = "analytics"
	// ParamFormulaRef carries a previously compiled ports.Formula.
	ParamFormulaRef = "formula_ref"
)

// Common errors returned by scoring constructors.
var (
	// ErrEmptyFormulaName is returned when a formula is created without a name.
	ErrEmptyFormulaName = errors.New("formula name cannot be empty")

	// ErrMissingDependency is returned when a required collaborator is nil
	// or was not injected into factory params.
	ErrMissingDependency = errors.New("missing dependency")

	// ErrNoTerms is returned when a stat is built without any factors.
	ErrNoTerms = errors.New("stat requires at least one weighted factor")

	// ErrInvalidWeight is returned for NaN or infinite weights.
	ErrInvalidWeight = errors.New("weight must be a finite number")

	// ErrInvalidMaxValue is returned when a divisor stat's max value is not positive.
	ErrInvalidMaxValue = errors.New("max value must be positive")
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()

// decodeParams copies the YAML-facing entries of params into out with
// strict decoding, so a misspelt parameter is an error rather than being
// silently ignored. Injected dependency keys are skipped.
func decodeParams(params map[string]any, out any) error {
	plain := maps.Clone(params)
	delete(plain, ParamAnalytics)
	delete(plain, ParamFormulaRef)
	if len(plain) == 0 {
		return nil
	}

	raw, err := yaml.Marshal(plain)
	if err != nil {
		return fmt.Errorf("failed to encode parameters: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}
	return nil
}

// analyticsParam extracts the injected query surface.
func analyticsParam(params map[string]any) (ports.Analytics, error) {
	a, ok := params[ParamAnalytics].(ports.Analytics)
	if !ok || a == nil {
		return nil, fmt.Errorf("%w: %s must implement ports.Analytics", ErrMissingDependency, ParamAnalytics)
	}
	return a, nil
}

// formulaParam extracts an injected, previously compiled formula.
func formulaParam(params map[string]any) (ports.Formula, error) {
	f, ok := params[ParamFormulaRef].(ports.Formula)
	if !ok || f == nil {
		return nil, fmt.Errorf("%w: %s must implement ports.Formula", ErrMissingDependency, ParamFormulaRef)
	}
	return f, nil
}
