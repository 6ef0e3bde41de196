package application

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-scout/internal/domain"
)

const testCatalog = `
name: "2023"
fields: [DriverRating, DefenseRating]
criteria:
  endgame: {None: 0, Parked: 0, Docked: 2, Engage: 10}
grids:
  auto:
    field: AutoGrid
    points: {L: 3, M: 4, H: 6}
  teleop:
    field: TeleopGrid
    points: {L: 2, M: 3, H: 5}
layout:
  columns: 9
  tiers: [H, M, L]
rules:
  - field: Mobile
    phase: auto
    kind: count
    points_each: 3
  - field: EndgameFinalCharge
    phase: endgame
    kind: criteria
    criteria: endgame
foul_rate: 1.06
`

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	l, err := NewLoader()
	require.NoError(t, err)
	return l
}

func TestLoader_LoadFormulaSetFromReader(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "valid document",
			yaml: testFormulaSet,
		},
		{
			name: "unknown top-level field",
			yaml: `
version: "1.0.0"
metadata: {name: x}
formulae: []
`,
			wantErr: "field formulae not found",
		},
		{
			name: "version is not semver",
			yaml: `
version: "v1"
metadata: {name: x}
formulas:
  - {id: a, type: average, parameters: {field: DriverRating}}
`,
			wantErr: "semver",
		},
		{
			name: "formula id is not an identifier",
			yaml: `
version: "1.0.0"
metadata: {name: x}
formulas:
  - {id: "1st", type: average, parameters: {field: DriverRating}}
`,
			wantErr: "identifier",
		},
		{
			name: "no formulas",
			yaml: `
version: "1.0.0"
metadata: {name: x}
formulas: []
`,
			wantErr: "Formulas",
		},
		{
			name: "duplicate id across formulas and stats",
			yaml: `
version: "1.0.0"
metadata: {name: x}
formulas:
  - {id: a, type: average, parameters: {field: DriverRating}}
stats:
  - id: a
    mode: reference
    factors: [{ref: a, weight: 1}]
`,
			wantErr: `duplicate ID "a": already used by formula`,
		},
		{
			name: "unsupported type",
			yaml: `
version: "1.0.0"
metadata: {name: x}
formulas:
  - {id: a, type: median, parameters: {field: DriverRating}}
`,
			wantErr: `unsupported type "median"`,
		},
		{
			name: "missing required parameter",
			yaml: `
version: "1.0.0"
metadata: {name: x}
formulas:
  - {id: a, type: scored_average, parameters: {field: EndgameFinalCharge}}
`,
			wantErr: "scored_average requires 'criteria' parameter",
		},
		{
			name: "invalid scope parameter",
			yaml: `
version: "1.0.0"
metadata: {name: x}
formulas:
  - {id: a, type: points, parameters: {scope: overtime}}
`,
			wantErr: "invalid phase scope",
		},
		{
			name: "reserved parameter",
			yaml: `
version: "1.0.0"
metadata: {name: x}
formulas:
  - {id: a, type: average, parameters: {field: DriverRating, analytics: x}}
`,
			wantErr: `reserved parameter "analytics"`,
		},
		{
			name: "alliance sum references a later formula",
			yaml: `
version: "1.0.0"
metadata: {name: x}
formulas:
  - {id: sum, type: alliance_sum, parameters: {formula: a}}
  - {id: a, type: average, parameters: {field: DriverRating}}
`,
			wantErr: "references undeclared formula: a",
		},
		{
			name: "stat references a later stat",
			yaml: `
version: "1.0.0"
metadata: {name: x}
formulas:
  - {id: a, type: average, parameters: {field: DriverRating}}
stats:
  - id: first
    mode: reference
    factors: [{ref: second, weight: 1}]
  - id: second
    mode: reference
    factors: [{ref: a, weight: 1}]
`,
			wantErr: "stat first references undeclared formula or stat: second",
		},
		{
			name: "divisor stat without max value",
			yaml: `
version: "1.0.0"
metadata: {name: x}
formulas:
  - {id: a, type: average, parameters: {field: DriverRating}}
stats:
  - id: s
    mode: divisor
    factors: [{ref: a, weight: 1}]
`,
			wantErr: "divisor mode requires a positive max_value",
		},
		{
			name: "unknown stat mode",
			yaml: `
version: "1.0.0"
metadata: {name: x}
formulas:
  - {id: a, type: average, parameters: {field: DriverRating}}
stats:
  - id: s
    mode: scaled
    max_value: 1
    factors: [{ref: a, weight: 1}]
`,
			wantErr: "oneof",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := newTestLoader(t).LoadFormulaSetFromReader(context.Background(), strings.NewReader(tt.yaml))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, cfg.Formulas, 6)
			assert.Len(t, cfg.Stats, 2)
		})
	}
}

func TestLoader_Caching(t *testing.T) {
	l := newTestLoader(t)
	ctx := context.Background()

	first, err := l.LoadFormulaSetFromReader(ctx, strings.NewReader(testFormulaSet))
	require.NoError(t, err)

	second, err := l.LoadFormulaSetFromReader(ctx, strings.NewReader(testFormulaSet))
	require.NoError(t, err)
	assert.Same(t, first, second)

	reformatted := "# comments do not change the hash\n" + strings.ReplaceAll(testFormulaSet, `"1.0.0"`, `'1.0.0'`)
	third, err := l.LoadFormulaSetFromReader(ctx, strings.NewReader(reformatted))
	require.NoError(t, err)
	assert.Same(t, first, third, "normalized documents share a cache entry")

	l.ClearCache()
	fourth, err := l.LoadFormulaSetFromReader(ctx, strings.NewReader(testFormulaSet))
	require.NoError(t, err)
	assert.NotSame(t, first, fourth)
}

func TestLoader_ConcurrentLoads(t *testing.T) {
	l := newTestLoader(t)

	const goroutines = 16
	results := make([]*FormulaSetConfig, goroutines)
	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cfg, err := l.LoadFormulaSetFromReader(context.Background(), strings.NewReader(testFormulaSet))
			assert.NoError(t, err)
			results[i] = cfg
		}()
	}
	wg.Wait()

	for _, cfg := range results[1:] {
		assert.Same(t, results[0], cfg)
	}
}

func TestLoader_LoadFromFile(t *testing.T) {
	dir := t.TempDir()
	formulas := filepath.Join(dir, "formulas.yaml")
	catalog := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(formulas, []byte(testFormulaSet), 0o600))
	require.NoError(t, os.WriteFile(catalog, []byte(testCatalog), 0o600))

	l := newTestLoader(t)
	ctx := context.Background()

	cfg, err := l.LoadFormulaSetFromFile(ctx, formulas)
	require.NoError(t, err)
	assert.Equal(t, "picklist", cfg.Metadata.Name)

	c, err := l.LoadCatalogFromFile(ctx, catalog)
	require.NoError(t, err)
	assert.Equal(t, "2023", c.Name())

	_, err = l.LoadFormulaSetFromFile(ctx, filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read file")
}

func TestLoader_LoadCatalog(t *testing.T) {
	l := newTestLoader(t)
	ctx := context.Background()

	t.Run("matches the built-in ruleset", func(t *testing.T) {
		c, err := l.LoadCatalogFromReader(ctx, strings.NewReader(testCatalog))
		require.NoError(t, err)

		e, err := NewEngine(newTestResolver(t).store, c)
		require.NoError(t, err)
		pts, err := e.PointsByMatch(4099, domain.ScopeAll)
		require.NoError(t, err)
		assert.Equal(t, []float64{24, 18, 6}, pts)
		assert.InDelta(t, 1.06, c.FoulRate(), 1e-9)
		assert.True(t, c.HasField("DefenseRating"))
	})

	t.Run("cached", func(t *testing.T) {
		a, err := l.LoadCatalogFromReader(ctx, strings.NewReader(testCatalog))
		require.NoError(t, err)
		b, err := l.LoadCatalogFromReader(ctx, strings.NewReader(testCatalog))
		require.NoError(t, err)
		assert.Same(t, a, b)
	})

	t.Run("rule references a missing criteria map", func(t *testing.T) {
		doc := strings.Replace(testCatalog, "criteria: endgame\n", "criteria: climb\n", 1)
		_, err := l.LoadCatalogFromReader(ctx, strings.NewReader(doc))
		assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	})

	t.Run("unknown phase key", func(t *testing.T) {
		doc := strings.Replace(testCatalog, "  teleop:\n", "  overtime:\n", 1)
		_, err := l.LoadCatalogFromReader(ctx, strings.NewReader(doc))
		assert.ErrorContains(t, err, "oneof")
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := l.LoadCatalogFromReader(ctx, strings.NewReader("name: x\nfoul: 1\n"))
		assert.ErrorContains(t, err, "field foul not found")
	})
}

func TestCompileFormulaSet_Errors(t *testing.T) {
	e := newTestEngine(t)

	_, err := CompileFormulaSet(nil, e.Registry(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	cfg := &FormulaSetConfig{
		Version:  "1.0.0",
		Metadata: Metadata{Name: "x"},
		Stats: []StatConfig{{
			ID: "s", Mode: "reference",
			Factors: []FactorConfig{{Ref: "missing", Weight: 1}},
		}},
	}
	_, err = CompileFormulaSet(cfg, e.Registry(), nil)
	assert.ErrorIs(t, err, domain.ErrUnknownFormula)
}
