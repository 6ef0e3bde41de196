package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Reduction combines the values of several teams into one.
type Reduction string

// Supported reductions.
const (
	ReduceSum  Reduction = "sum"
	ReduceMean Reduction = "mean"
	ReduceMax  Reduction = "max"
	ReduceMin  Reduction = "min"
)

// ParseReduction parses a reduction name; the empty string means sum.
func ParseReduction(s string) (Reduction, error) {
	switch r := Reduction(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return ReduceSum, nil
	case ReduceSum, ReduceMean, ReduceMax, ReduceMin:
		return r, nil
	default:
		return "", fmt.Errorf("%w: reduction %q", ErrInvalidConfiguration, s)
	}
}

// Apply reduces xs. It returns ErrEmptyInput for an empty input.
func (r Reduction) Apply(xs []float64) (float64, error) {
	if len(xs) == 0 {
		return 0, ErrEmptyInput
	}
	switch r {
	case ReduceSum, "":
		var sum float64
		for _, x := range xs {
			sum += x
		}
		return sum, nil
	case ReduceMean:
		return Mean(xs)
	case ReduceMax:
		return slices.Max(xs), nil
	case ReduceMin:
		return slices.Min(xs), nil
	default:
		return 0, fmt.Errorf("%w: reduction %q", ErrInvalidConfiguration, string(r))
	}
}
