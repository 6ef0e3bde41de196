package scoring

import (
	"fmt"

	"github.com/ahrav/go-scout/internal/domain"
	"github.com/ahrav/go-scout/internal/ports"
)

var (
	_ ports.Scorer = (*WeightedStat)(nil)
	_ ports.Scorer = (*CompositeStat)(nil)
)

// WeightedStat is a weighted sum of factors displayed as a percentage of
// a fixed maximum.
type WeightedStat struct {
	sum      weightedSum
	maxValue float64
}

// NewWeightedStat creates a WeightedStat. maxValue must be positive.
func NewWeightedStat(name string, terms []Term, maxValue float64) (*WeightedStat, error) {
	sum, err := newWeightedSum(name, terms)
	if err != nil {
		return nil, err
	}
	if !(maxValue > 0) {
		return nil, fmt.Errorf("%w: %s has %v", ErrInvalidMaxValue, name, maxValue)
	}
	return &WeightedStat{sum: sum, maxValue: maxValue}, nil
}

// Name returns the stat's identifier.
func (s *WeightedStat) Name() string { return s.sum.name }

// Evaluate returns the raw weighted sum.
func (s *WeightedStat) Evaluate(entity domain.EntityID) (float64, error) {
	return s.sum.evaluate(entity)
}

// Score returns the raw sum and its percentage of the max value.
func (s *WeightedStat) Score(entity domain.EntityID) (domain.Score, error) {
	raw, err := s.sum.evaluate(entity)
	if err != nil {
		return domain.Score{}, err
	}
	return domain.Score{Raw: raw, Display: raw / s.maxValue * 100}, nil
}

// Validate validates every factor.
func (s *WeightedStat) Validate() error { return s.sum.validate() }

// CompositeMode selects how a CompositeStat uses its max value.
type CompositeMode string

// Supported composite modes.
const (
	// ModeDivisor displays the raw sum as a percentage of the max value.
	ModeDivisor CompositeMode = "divisor"
	// ModeReference displays the raw sum and reports the max value as a
	// reference marker.
	ModeReference CompositeMode = "reference"
)

// CompositeStat is a weighted sum of formulas, including other stats.
// Its mode is fixed by the constructor used to build it.
type CompositeStat struct {
	sum      weightedSum
	mode     CompositeMode
	maxValue float64
}

// NewDivisorCompositeStat creates a stat whose display value is the raw
// sum as a percentage of maxValue. maxValue must be positive.
func NewDivisorCompositeStat(name string, terms []Term, maxValue float64) (*CompositeStat, error) {
	sum, err := newWeightedSum(name, terms)
	if err != nil {
		return nil, err
	}
	if !(maxValue > 0) {
		return nil, fmt.Errorf("%w: %s has %v", ErrInvalidMaxValue, name, maxValue)
	}
	return &CompositeStat{sum: sum, mode: ModeDivisor, maxValue: maxValue}, nil
}

// NewReferenceCompositeStat creates a stat whose display value is the raw
// sum, with referenceValue drawn as a marker. The reference never scales
// the result.
func NewReferenceCompositeStat(name string, terms []Term, referenceValue float64) (*CompositeStat, error) {
	sum, err := newWeightedSum(name, terms)
	if err != nil {
		return nil, err
	}
	return &CompositeStat{sum: sum, mode: ModeReference, maxValue: referenceValue}, nil
}

// Name returns the stat's identifier.
func (s *CompositeStat) Name() string { return s.sum.name }

// Mode reports how the stat uses its max value.
func (s *CompositeStat) Mode() CompositeMode { return s.mode }

// Evaluate returns the raw weighted sum in both modes.
func (s *CompositeStat) Evaluate(entity domain.EntityID) (float64, error) {
	return s.sum.evaluate(entity)
}

// Score evaluates the stat and shapes the display according to its mode.
func (s *CompositeStat) Score(entity domain.EntityID) (domain.Score, error) {
	raw, err := s.sum.evaluate(entity)
	if err != nil {
		return domain.Score{}, err
	}
	if s.mode == ModeReference {
		return domain.Score{Raw: raw, Display: raw, Reference: s.maxValue}, nil
	}
	return domain.Score{Raw: raw, Display: raw / s.maxValue * 100}, nil
}

// Validate validates every factor.
func (s *CompositeStat) Validate() error { return s.sum.validate() }
