package application

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-scout/infrastructure/scoring"
	"github.com/ahrav/go-scout/internal/domain"
)

// identifierPattern matches formula, stat and criteria ids.
var identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_\-]*$`)

// ValidateFormulaParameters validates the parameters for a built-in
// formula type, ensuring required fields are present and values are in
// range. Types registered at runtime are accepted as-is; their factories
// validate their own parameters.
func ValidateFormulaParameters(formulaType string, params yaml.Node) error {
	paramMap := map[string]any{}
	if !params.IsZero() {
		if err := params.Decode(&paramMap); err != nil {
			return fmt.Errorf("failed to decode parameters: %w", err)
		}
	}

	switch formulaType {
	case FormulaTypeAverage:
		return requireStrings(formulaType, paramMap, "field")
	case FormulaTypeScoredAverage:
		return requireStrings(formulaType, paramMap, "field", "criteria")
	case FormulaTypeGrid:
		return validateOptionalPhase(paramMap)
	case FormulaTypePoints, FormulaTypePredictedScore:
		return validateOptionalScope(paramMap)
	case FormulaTypeAllianceField:
		if err := requireStrings(formulaType, paramMap, "field"); err != nil {
			return err
		}
		if reduce, ok := paramMap["reduce"].(string); ok {
			if _, err := domain.ParseReduction(reduce); err != nil {
				return err
			}
		}
		return nil
	case FormulaTypeAllianceSum:
		return requireStrings(formulaType, paramMap, "formula")
	case FormulaTypeWinProbability:
		return validateOptionalScope(paramMap)
	case FormulaTypeWinOdds:
		if len(paramMap) > 0 {
			return fmt.Errorf("%s takes no parameters", formulaType)
		}
		return nil
	default:
		return nil
	}
}

// requireStrings checks that every key holds a non-empty string.
func requireStrings(formulaType string, params map[string]any, keys ...string) error {
	for _, key := range keys {
		v, ok := params[key]
		if !ok {
			return fmt.Errorf("%s requires '%s' parameter", formulaType, key)
		}
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%s must be a string", key)
		}
		if s == "" {
			return fmt.Errorf("%s cannot be empty", key)
		}
	}
	return nil
}

func validateOptionalPhase(params map[string]any) error {
	v, ok := params["phase"]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("phase must be a string")
	}
	_, err := domain.ParsePhase(s)
	return err
}

func validateOptionalScope(params map[string]any) error {
	v, ok := params["scope"]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("scope must be a string")
	}
	_, err := domain.ParseScope(s)
	return err
}

// referencedFormula returns the id a formula's parameters reference, if
// any. The compiled referent is injected as scoring.ParamFormulaRef.
func referencedFormula(params map[string]any) (string, bool) {
	ref, ok := params["formula"].(string)
	return ref, ok && ref != ""
}

// registerCustomValidators registers domain-specific validation functions
// with the validator instance, including semantic version validation
// and identifier validation.
func registerCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}
	if err := v.RegisterValidation("identifier", validateIdentifier); err != nil {
		return fmt.Errorf("failed to register identifier validator: %w", err)
	}
	return nil
}

// validateSemver validates that a string follows semantic versioning
// format (X.Y.Z where X, Y, Z are non-negative integers).
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	var major, minor, patch int
	n, err := fmt.Sscanf(value, "%d.%d.%d", &major, &minor, &patch)
	return err == nil && n == 3 && major >= 0 && minor >= 0 && patch >= 0
}

// validateIdentifier accepts ids that start with a letter and continue
// with letters, digits, underscores or hyphens.
func validateIdentifier(fl validator.FieldLevel) bool {
	return identifierPattern.MatchString(fl.Field().String())
}

// injectedParams lists the parameter keys reserved for dependency
// injection. Documents may not set them.
var injectedParams = []string{scoring.ParamAnalytics, scoring.ParamFormulaRef}
