package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-scout/internal/domain"
)

// fixedFormula returns a stored value per entity and ErrNoData otherwise.
type fixedFormula struct {
	name   string
	values map[domain.EntityID]float64
}

func (f fixedFormula) Name() string { return f.name }

func (f fixedFormula) Evaluate(entity domain.EntityID) (float64, error) {
	v, ok := f.values[entity]
	if !ok {
		return 0, domain.ErrNoData
	}
	return v, nil
}

func (f fixedFormula) Validate() error { return nil }

func constant(name string, v float64) fixedFormula {
	return fixedFormula{name: name, values: map[domain.EntityID]float64{domain.TeamEntity(4099): v}}
}

func mustFactor(t *testing.T, f fixedFormula, divisor float64) *Factor {
	t.Helper()
	factor, err := NewFactor(f, divisor)
	require.NoError(t, err)
	return factor
}

func TestFactor(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		divisor  float64
		expected float64
	}{
		{name: "zero divisor defaults to one", value: 10, divisor: 0, expected: 10},
		{name: "divides by divisor", value: 10, divisor: 4, expected: 2.5},
		{name: "negative divisor flips sign", value: 10, divisor: -2, expected: -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustFactor(t, constant("x", tt.value), tt.divisor)
			got, err := f.Evaluate(domain.TeamEntity(4099))
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
			assert.Equal(t, "x", f.Name())
		})
	}

	t.Run("rejects nil formula and non-finite divisor", func(t *testing.T) {
		_, err := NewFactor(nil, 1)
		assert.ErrorIs(t, err, ErrMissingDependency)

		_, err = NewFactor(constant("x", 1), math.Inf(1))
		assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	})
}

func TestCompositeStat_Score(t *testing.T) {
	team := domain.TeamEntity(4099)
	terms := func(t *testing.T) []Term {
		return []Term{
			{Factor: mustFactor(t, constant("auto", 10), 1), Weight: 4},
			{Factor: mustFactor(t, constant("teleop", 5), 1), Weight: 6},
		}
	}

	t.Run("divisor mode", func(t *testing.T) {
		stat, err := NewDivisorCompositeStat("overall", terms(t), 100)
		require.NoError(t, err)
		assert.Equal(t, ModeDivisor, stat.Mode())

		raw, err := stat.Evaluate(team)
		require.NoError(t, err)
		assert.InDelta(t, 70.0, raw, 1e-9)

		score, err := stat.Score(team)
		require.NoError(t, err)
		assert.InDelta(t, 70.0, score.Raw, 1e-9)
		assert.InDelta(t, 70.0, score.Display, 1e-9)
		assert.Zero(t, score.Reference)
	})

	t.Run("divisor mode scales display", func(t *testing.T) {
		stat, err := NewDivisorCompositeStat("overall", terms(t), 140)
		require.NoError(t, err)

		score, err := stat.Score(team)
		require.NoError(t, err)
		assert.InDelta(t, 70.0, score.Raw, 1e-9)
		assert.InDelta(t, 50.0, score.Display, 1e-9)
	})

	t.Run("reference mode never scales", func(t *testing.T) {
		stat, err := NewReferenceCompositeStat("overall", terms(t), 80)
		require.NoError(t, err)
		assert.Equal(t, ModeReference, stat.Mode())

		score, err := stat.Score(team)
		require.NoError(t, err)
		assert.InDelta(t, 70.0, score.Raw, 1e-9)
		assert.InDelta(t, 70.0, score.Display, 1e-9)
		assert.InDelta(t, 80.0, score.Reference, 1e-9)
	})

	t.Run("factor errors propagate", func(t *testing.T) {
		stat, err := NewReferenceCompositeStat("overall", terms(t), 80)
		require.NoError(t, err)

		_, err = stat.Score(domain.TeamEntity(254))
		assert.ErrorIs(t, err, domain.ErrNoData)
		assert.Contains(t, err.Error(), "factor auto")
	})

	t.Run("stats compose", func(t *testing.T) {
		inner, err := NewReferenceCompositeStat("inner", terms(t), 0)
		require.NoError(t, err)
		innerFactor, err := NewFactor(inner, 7)
		require.NoError(t, err)

		outer, err := NewDivisorCompositeStat("outer", []Term{{Factor: innerFactor, Weight: 1}}, 10)
		require.NoError(t, err)

		score, err := outer.Score(team)
		require.NoError(t, err)
		assert.InDelta(t, 10.0, score.Raw, 1e-9)
		assert.InDelta(t, 100.0, score.Display, 1e-9)
	})
}

func TestStatConstruction(t *testing.T) {
	factor := mustFactor(t, constant("x", 1), 1)

	tests := []struct {
		name     string
		build    func() error
		expected error
	}{
		{
			name: "empty name",
			build: func() error {
				_, err := NewDivisorCompositeStat("", []Term{{Factor: factor, Weight: 1}}, 1)
				return err
			},
			expected: ErrEmptyFormulaName,
		},
		{
			name: "no terms",
			build: func() error {
				_, err := NewReferenceCompositeStat("s", nil, 1)
				return err
			},
			expected: ErrNoTerms,
		},
		{
			name: "nan weight",
			build: func() error {
				_, err := NewWeightedStat("s", []Term{{Factor: factor, Weight: math.NaN()}}, 1)
				return err
			},
			expected: ErrInvalidWeight,
		},
		{
			name: "nil factor",
			build: func() error {
				_, err := NewWeightedStat("s", []Term{{Weight: 1}}, 1)
				return err
			},
			expected: ErrMissingDependency,
		},
		{
			name: "zero max value in divisor mode",
			build: func() error {
				_, err := NewDivisorCompositeStat("s", []Term{{Factor: factor, Weight: 1}}, 0)
				return err
			},
			expected: ErrInvalidMaxValue,
		},
		{
			name: "negative max value for weighted stat",
			build: func() error {
				_, err := NewWeightedStat("s", []Term{{Factor: factor, Weight: 1}}, -3)
				return err
			},
			expected: ErrInvalidMaxValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.build(), tt.expected)
		})
	}
}

func TestWeightedStat_Score(t *testing.T) {
	stat, err := NewWeightedStat("defense", []Term{
		{Factor: mustFactor(t, constant("rating", 4), 5), Weight: 50},
		{Factor: mustFactor(t, constant("time", 30), 60), Weight: 50},
	}, 100)
	require.NoError(t, err)
	require.NoError(t, stat.Validate())

	score, err := stat.Score(domain.TeamEntity(4099))
	require.NoError(t, err)
	assert.InDelta(t, 65.0, score.Raw, 1e-9)
	assert.InDelta(t, 65.0, score.Display, 1e-9)
	assert.Equal(t, "defense", stat.Name())
}
