package application

import (
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-scout/internal/domain"
)

// FormulaSetConfig defines a named collection of formulas and composite
// stats and serves as the configuration entry point for pick-list and
// scouting-report computations.
type FormulaSetConfig struct {
	// Version specifies the configuration schema version using semantic
	// versioning to ensure compatibility across system updates.
	Version string `yaml:"version" validate:"required,semver"`
	// Metadata contains descriptive information about the formula set.
	Metadata Metadata `yaml:"metadata" validate:"required"`
	// Formulas are the primitive formulas, compiled in document order.
	// A formula may reference formulas declared before it.
	Formulas []FormulaConfig `yaml:"formulas" validate:"required,min=1,dive"`
	// Stats are weighted combinations of formulas and earlier stats.
	Stats []StatConfig `yaml:"stats" validate:"dive"`
}

// Metadata provides descriptive information about a formula set
// to support organization, discovery, and operational management.
type Metadata struct {
	// Name is the human-readable identifier for this formula set.
	Name string `yaml:"name" validate:"required,min=1,max=255"`
	// Description explains what the set is used for.
	Description string `yaml:"description" validate:"max=1000"`
	// Tags are categorical labels such as the season or event.
	Tags []string `yaml:"tags" validate:"max=20,dive,min=1,max=50"`
	// Labels are arbitrary key-value pairs for external tooling.
	Labels map[string]string `yaml:"labels" validate:"max=50"`
}

// FormulaConfig defines one primitive formula.
type FormulaConfig struct {
	// ID is the unique identifier used by stats and HTTP queries.
	ID string `yaml:"id" validate:"required,identifier,max=100"`
	// Type selects the registered formula factory.
	Type string `yaml:"type" validate:"required,identifier"`
	// Parameters contains type-specific configuration as flexible YAML
	// that is validated according to the formula type.
	Parameters yaml.Node `yaml:"parameters"`
}

// StatConfig defines a weighted combination of formulas.
type StatConfig struct {
	// ID is the unique identifier of the stat.
	ID string `yaml:"id" validate:"required,identifier,max=100"`
	// Mode selects how MaxValue is used: "weighted" and "divisor" display
	// the raw sum as a percentage of MaxValue, "reference" displays the raw
	// sum with MaxValue as a marker.
	Mode string `yaml:"mode" validate:"required,oneof=weighted divisor reference"`
	// MaxValue is the divisor or reference marker.
	MaxValue float64 `yaml:"max_value" validate:"gte=0"`
	// Factors are the weighted terms of the stat.
	Factors []FactorConfig `yaml:"factors" validate:"required,min=1,dive"`
}

// FactorConfig is one weighted term of a stat.
type FactorConfig struct {
	// Ref names a formula or an earlier stat.
	Ref string `yaml:"ref" validate:"required,identifier"`
	// Weight multiplies the normalized factor value.
	Weight float64 `yaml:"weight"`
	// Divisor normalizes the referenced value; zero means 1.
	Divisor float64 `yaml:"divisor"`
}

// CatalogConfig is the YAML form of a season ruleset.
type CatalogConfig struct {
	Name     string                        `yaml:"name" validate:"required"`
	Fields   []string                      `yaml:"fields"`
	Criteria map[string]map[string]float64 `yaml:"criteria" validate:"dive,keys,identifier,endkeys,min=1"`
	Grids    map[string]GridConfig         `yaml:"grids" validate:"dive,keys,oneof=auto teleop endgame,endkeys"`
	Layout   LayoutConfig                  `yaml:"layout"`
	Rules    []RuleConfig                  `yaml:"rules" validate:"dive"`
	FoulRate float64                       `yaml:"foul_rate" validate:"gte=0"`
}

// GridConfig names a phase's grid field and its per-tier points.
type GridConfig struct {
	Field  string             `yaml:"field" validate:"required"`
	Points map[string]float64 `yaml:"points" validate:"required,min=1"`
}

// LayoutConfig is the heatmap grid shape.
type LayoutConfig struct {
	Columns int      `yaml:"columns" validate:"gte=0"`
	Tiers   []string `yaml:"tiers"`
}

// RuleConfig awards points for a field in one phase.
type RuleConfig struct {
	Field      string  `yaml:"field" validate:"required"`
	Phase      string  `yaml:"phase" validate:"required,oneof=auto teleop endgame"`
	Kind       string  `yaml:"kind" validate:"required,oneof=count criteria"`
	PointsEach float64 `yaml:"points_each"`
	Criteria   string  `yaml:"criteria"`
}

// ToSpec converts the YAML form into the input of domain.NewCatalog.
// Semantic checks are left to NewCatalog.
func (c *CatalogConfig) ToSpec() domain.CatalogSpec {
	spec := domain.CatalogSpec{
		Name:     c.Name,
		Fields:   c.Fields,
		Criteria: make(map[string]domain.CriteriaMap, len(c.Criteria)),
		Grids:    make(map[domain.Phase]domain.GridSpec, len(c.Grids)),
		Layout:   domain.GridLayout{Columns: c.Layout.Columns},
		FoulRate: c.FoulRate,
	}
	for name, crit := range c.Criteria {
		spec.Criteria[name] = domain.CriteriaMap(crit)
	}
	for phase, g := range c.Grids {
		table := make(domain.GridPointTable, len(g.Points))
		for tier, pts := range g.Points {
			table[domain.Tier(tier)] = pts
		}
		spec.Grids[domain.Phase(phase)] = domain.GridSpec{Field: g.Field, Points: table}
	}
	for _, t := range c.Layout.Tiers {
		spec.Layout.Tiers = append(spec.Layout.Tiers, domain.Tier(t))
	}
	for _, r := range c.Rules {
		spec.Rules = append(spec.Rules, domain.PointRule{
			Field:      r.Field,
			Phase:      domain.Phase(r.Phase),
			Kind:       domain.RuleKind(r.Kind),
			PointsEach: r.PointsEach,
			Criteria:   r.Criteria,
		})
	}
	return spec
}
