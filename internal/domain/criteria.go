package domain

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// CriteriaMap translates a categorical scouted value into its point value
// under one scoring ruleset. It is supplied alongside a field key so the
// same raw field can be scored under different rulesets.
type CriteriaMap map[string]float64

// Translate returns the score for v. Numbers are looked up through their
// shortest decimal form, so a boolean normalized to 1 matches key "1".
// A label absent from the map is an error, never zero.
func (c CriteriaMap) Translate(v Value) (float64, error) {
	if v.Kind() == KindList {
		return 0, fmt.Errorf("%w: list value %q cannot be translated", ErrUnknownCategory, v.Label())
	}
	label := v.Label()
	if score, ok := c[label]; ok {
		return score, nil
	}
	if score, ok := c[strings.TrimSpace(label)]; ok {
		return score, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, label)
}

// Labels returns the labels the map defines, sorted.
func (c CriteriaMap) Labels() []string {
	return slices.Sorted(maps.Keys(c))
}

// Clone returns an independent copy of the map.
func (c CriteriaMap) Clone() CriteriaMap { return maps.Clone(c) }
