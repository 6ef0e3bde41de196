package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-scout/infrastructure/scoring"
	"github.com/ahrav/go-scout/internal/domain"
	"github.com/ahrav/go-scout/internal/ports"
)

func TestDefaultFormulaRegistry_CreateFormula(t *testing.T) {
	e := newTestEngine(t)
	registry := NewFormulaRegistry(e)

	tests := []struct {
		name        string
		formulaType string
		params      map[string]any
		entity      domain.EntityID
		expected    float64
		wantErr     string
	}{
		{
			name:        "average",
			formulaType: FormulaTypeAverage,
			params:      map[string]any{"field": "DriverRating"},
			entity:      domain.TeamEntity(4099),
			expected:    4,
		},
		{
			name:        "grid",
			formulaType: FormulaTypeGrid,
			params:      map[string]any{"phase": "teleop"},
			entity:      domain.TeamEntity(4099),
			expected:    20.0 / 3,
		},
		{
			name:        "alliance field",
			formulaType: FormulaTypeAllianceField,
			params:      map[string]any{"field": "DriverRating", "reduce": "max"},
			entity:      domain.AllianceInMatchEntity("qm1", domain.AllianceBlue),
			expected:    5,
		},
		{
			name:        "predicted score",
			formulaType: FormulaTypePredictedScore,
			params:      nil,
			entity:      domain.AllianceGroupEntity(domain.AllianceGroup{4099, 118, 180}),
			expected:    35.75 * 1.06,
		},
		{
			name:        "unsupported type",
			formulaType: "median",
			wantErr:     "unsupported formula type: median",
		},
		{
			name:        "factory error is wrapped",
			formulaType: FormulaTypeAverage,
			params:      map[string]any{"field": "DriverRating", "extra": true},
			wantErr:     "failed to create formula f of type average",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := registry.CreateFormula(tt.formulaType, "f", tt.params)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "f", f.Name())

			got, err := f.Evaluate(tt.entity)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestDefaultFormulaRegistry_DoesNotMutateParams(t *testing.T) {
	registry := NewFormulaRegistry(newTestEngine(t))
	params := map[string]any{"field": "DriverRating"}

	_, err := registry.CreateFormula(FormulaTypeAverage, "f", params)
	require.NoError(t, err)
	assert.NotContains(t, params, scoring.ParamAnalytics)
}

func TestDefaultFormulaRegistry_Register(t *testing.T) {
	registry := NewFormulaRegistry(newTestEngine(t))

	assert.Len(t, registry.GetSupportedTypes(), len(BuiltinFormulaTypes()))

	assert.Error(t, registry.RegisterFormulaFactory("", func(string, map[string]any) (ports.Formula, error) { return nil, nil }))
	assert.Error(t, registry.RegisterFormulaFactory("x", nil))

	require.NoError(t, registry.RegisterFormulaFactory("constant", func(id string, _ map[string]any) (ports.Formula, error) {
		return constantFormula{name: id, value: 3}, nil
	}))
	assert.Contains(t, registry.GetSupportedTypes(), "constant")

	f, err := registry.CreateFormula("constant", "three", nil)
	require.NoError(t, err)
	got, err := f.Evaluate(domain.TeamEntity(1))
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)

	_, err = registry.CreateFormula("constant", "", nil)
	assert.ErrorContains(t, err, "formula ID cannot be empty")
}

func TestValidateFormulaParameters(t *testing.T) {
	tests := []struct {
		name        string
		formulaType string
		params      map[string]any
		wantErr     string
	}{
		{name: "average ok", formulaType: FormulaTypeAverage, params: map[string]any{"field": "DriverRating"}},
		{name: "average field not a string", formulaType: FormulaTypeAverage, params: map[string]any{"field": 3}, wantErr: "field must be a string"},
		{name: "average empty field", formulaType: FormulaTypeAverage, params: map[string]any{"field": ""}, wantErr: "field cannot be empty"},
		{name: "grid bad phase", formulaType: FormulaTypeGrid, params: map[string]any{"phase": "overtime"}, wantErr: "invalid phase scope"},
		{name: "alliance field bad reduce", formulaType: FormulaTypeAllianceField, params: map[string]any{"field": "x", "reduce": "median"}, wantErr: "invalid configuration"},
		{name: "win odds takes nothing", formulaType: FormulaTypeWinOdds, params: map[string]any{"scope": "auto"}, wantErr: "win_odds takes no parameters"},
		{name: "custom types pass through", formulaType: "custom", params: map[string]any{"anything": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := encodeNode(t, tt.params)
			err := ValidateFormulaParameters(tt.formulaType, node)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func encodeNode(t *testing.T, params map[string]any) yaml.Node {
	t.Helper()
	var node yaml.Node
	require.NoError(t, node.Encode(params))
	return node
}
