package domain

import (
	"fmt"
	"maps"
	"slices"
)

// RuleKind selects how a PointRule turns a field into points.
type RuleKind string

// Point rule kinds.
const (
	// RuleCount multiplies a numeric field by PointsEach.
	RuleCount RuleKind = "count"
	// RuleCriteria translates a categorical field through a named criteria map.
	RuleCriteria RuleKind = "criteria"
)

// PointRule derives part of a team's match score from one field.
type PointRule struct {
	Field      string
	Phase      Phase
	Kind       RuleKind
	PointsEach float64
	Criteria   string
}

// GridSpec names the grid field scored in one phase and its point table.
type GridSpec struct {
	Field  string
	Points GridPointTable
}

// CatalogSpec is the mutable input to NewCatalog.
type CatalogSpec struct {
	Name     string
	Fields   []string
	Criteria map[string]CriteriaMap
	Grids    map[Phase]GridSpec
	Layout   GridLayout
	Rules    []PointRule
	FoulRate float64
}

// Catalog is the shared vocabulary of field keys, criteria maps, grid
// point tables and point rules for one season's ruleset. A Catalog is
// immutable after NewCatalog returns and is passed explicitly to every
// engine, so engines for different rulesets can coexist.
type Catalog struct {
	name     string
	fields   map[string]struct{}
	criteria map[string]CriteriaMap
	grids    map[Phase]GridSpec
	layout   GridLayout
	rules    []PointRule
	foulRate float64
}

// NewCatalog validates spec and builds an immutable Catalog. Fields named
// by grids and rules are added to the field vocabulary. A zero FoulRate
// defaults to 1.
func NewCatalog(spec CatalogSpec) (*Catalog, error) {
	verr := NewValidationError("catalog", ErrInvalidConfiguration)
	if spec.Name == "" {
		verr.AddError("name is required")
	}

	c := &Catalog{
		name:     spec.Name,
		fields:   make(map[string]struct{}, len(spec.Fields)),
		criteria: make(map[string]CriteriaMap, len(spec.Criteria)),
		grids:    make(map[Phase]GridSpec, len(spec.Grids)),
		layout:   GridLayout{Columns: spec.Layout.Columns, Tiers: slices.Clone(spec.Layout.Tiers)},
		rules:    slices.Clone(spec.Rules),
		foulRate: spec.FoulRate,
	}
	if c.foulRate == 0 {
		c.foulRate = 1
	}
	if c.foulRate < 0 {
		verr.AddErrorf("foul rate must be positive, got %v", spec.FoulRate)
	}

	for _, f := range spec.Fields {
		if f == "" {
			verr.AddError("field keys must be non-empty")
			continue
		}
		c.fields[f] = struct{}{}
	}

	for name, crit := range spec.Criteria {
		if len(crit) == 0 {
			verr.AddErrorf("criteria map %q is empty", name)
		}
		c.criteria[name] = crit.Clone()
	}

	for phase, grid := range spec.Grids {
		if !slices.Contains(Phases, phase) {
			verr.AddErrorf("grid phase %q is unknown", phase)
		}
		if grid.Field == "" {
			verr.AddErrorf("grid for phase %q has no field", phase)
		}
		for tier := range grid.Points {
			if _, err := ParseTier(string(tier)); err != nil {
				verr.AddErrorf("grid for phase %q has unknown tier %q", phase, tier)
			}
		}
		c.grids[phase] = GridSpec{Field: grid.Field, Points: maps.Clone(grid.Points)}
		if grid.Field != "" {
			c.fields[grid.Field] = struct{}{}
		}
	}

	if len(c.grids) > 0 {
		if c.layout.Columns <= 0 {
			verr.AddError("grid layout needs a positive column count")
		}
		if len(c.layout.Tiers) == 0 {
			verr.AddError("grid layout needs at least one tier")
		}
		for _, tier := range c.layout.Tiers {
			if _, err := ParseTier(string(tier)); err != nil {
				verr.AddErrorf("grid layout has unknown tier %q", tier)
			}
		}
	}

	for i, rule := range c.rules {
		if rule.Field == "" {
			verr.AddErrorf("rule %d has no field", i)
		} else {
			c.fields[rule.Field] = struct{}{}
		}
		if !slices.Contains(Phases, rule.Phase) {
			verr.AddErrorf("rule %d (%s) has unknown phase %q", i, rule.Field, rule.Phase)
		}
		switch rule.Kind {
		case RuleCount:
			if rule.PointsEach == 0 {
				verr.AddErrorf("rule %d (%s) needs non-zero points_each", i, rule.Field)
			}
		case RuleCriteria:
			if _, ok := c.criteria[rule.Criteria]; !ok {
				verr.AddErrorf("rule %d (%s) references unknown criteria map %q", i, rule.Field, rule.Criteria)
			}
		default:
			verr.AddErrorf("rule %d (%s) has unknown kind %q", i, rule.Field, rule.Kind)
		}
	}

	if verr.HasErrors() {
		return nil, verr
	}
	return c, nil
}

// Name returns the ruleset name.
func (c *Catalog) Name() string { return c.name }

// Criteria returns a copy of the named criteria map.
func (c *Catalog) Criteria(name string) (CriteriaMap, error) {
	crit, ok := c.criteria[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCriteria, name)
	}
	return crit.Clone(), nil
}

// CriteriaNames returns the names of all criteria maps, sorted.
func (c *Catalog) CriteriaNames() []string {
	return slices.Sorted(maps.Keys(c.criteria))
}

// Grid returns the grid scored in phase p.
func (c *Catalog) Grid(p Phase) (GridSpec, bool) {
	g, ok := c.grids[p]
	if !ok {
		return GridSpec{}, false
	}
	return GridSpec{Field: g.Field, Points: maps.Clone(g.Points)}, true
}

// Layout returns the heatmap shape.
func (c *Catalog) Layout() GridLayout {
	return GridLayout{Columns: c.layout.Columns, Tiers: slices.Clone(c.layout.Tiers)}
}

// Rules returns the point rules counted under scope, in declaration order.
func (c *Catalog) Rules(scope Scope) []PointRule {
	out := make([]PointRule, 0, len(c.rules))
	for _, r := range c.rules {
		if scope.Includes(r.Phase) {
			out = append(out, r)
		}
	}
	return out
}

// FoulRate returns the multiplier applied to predicted alliance scores.
func (c *Catalog) FoulRate() float64 { return c.foulRate }

// Fields returns the declared field keys, sorted.
func (c *Catalog) Fields() []string {
	return slices.Sorted(maps.Keys(c.fields))
}

// HasField reports whether key is part of the vocabulary.
func (c *Catalog) HasField(key string) bool {
	_, ok := c.fields[key]
	return ok
}

// Field keys of the 2023 ruleset.
const (
	FieldAutoGrid             = "AutoGrid"
	FieldTeleopGrid           = "TeleopGrid"
	FieldDefenseRating        = "DefenseRating"
	FieldDriverRating         = "DriverRating"
	FieldDefenseTime          = "DefenseTime"
	FieldCounterDefenseRating = "CounterDefenseRating"
	FieldDefendedTime         = "DefendedTime"
	FieldEndgameFinalCharge   = "EndgameFinalCharge"
	FieldAutoMissed           = "AutoMissed"
	FieldTeleopMissed         = "TeleopMissed"
	FieldMobile               = "Mobile"
	FieldDisable              = "Disable"
	FieldAutoNotes            = "AutoNotes"
	FieldTeleopNotes          = "TeleopNotes"
	FieldEndgameNotes         = "EndgameNotes"
)

// Criteria map names of the 2023 ruleset.
const (
	CriteriaEndgame      = "endgame"
	CriteriaEngage       = "engage"
	CriteriaMobility     = "mobility"
	CriteriaDisabled     = "disabled"
	CriteriaBoolean      = "boolean"
	CriteriaClimbing     = "climbing"
	CriteriaDriverRating = "driver_rating"
	CriteriaDefenseTime  = "defense_time"
	CriteriaBasicRating  = "basic_rating"
)

// DefaultCatalog returns the 2023 ruleset: cones and cubes placed on a
// nine-column, three-tier grid with charge-station endgame scoring.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(CatalogSpec{
		Name: "2023",
		Fields: []string{
			FieldAutoGrid, FieldTeleopGrid, FieldDefenseRating, FieldDriverRating,
			FieldDefenseTime, FieldCounterDefenseRating, FieldDefendedTime,
			FieldEndgameFinalCharge, FieldAutoMissed, FieldTeleopMissed,
			FieldMobile, FieldDisable, FieldAutoNotes, FieldTeleopNotes, FieldEndgameNotes,
		},
		Criteria: map[string]CriteriaMap{
			CriteriaEndgame:  {"None": 0, "Parked": 0, "Docked": 2, "Engage": 10},
			CriteriaEngage:   {"None": 0, "Parked": 0, "Docked": 0, "Engage": 1},
			CriteriaMobility: {"1": 100, "0": 0},
			CriteriaDisabled: {"1": 1, "0": 0},
			CriteriaBoolean:  {"0": 0, "1": 1, "false": 0, "true": 1},
			CriteriaClimbing: {"Park": 2, "Dock": 6, "Engage": 10},
			CriteriaDriverRating: {
				"Very Fluid": 5, "Fluid": 4, "Average": 3, "Poor": 2, "Very Poor": 1,
			},
			CriteriaDefenseTime: {
				"Very Often": 5, "Often": 4, "Sometimes": 3, "Rarely": 2, "Never": 1,
			},
			CriteriaBasicRating: {
				"Very Good": 5, "Good": 4, "Okay": 3, "Poor": 2, "Very Poor": 1,
			},
		},
		Grids: map[Phase]GridSpec{
			PhaseAuto:   {Field: FieldAutoGrid, Points: GridPointTable{TierLow: 3, TierMid: 4, TierHigh: 6}},
			PhaseTeleop: {Field: FieldTeleopGrid, Points: GridPointTable{TierLow: 2, TierMid: 3, TierHigh: 5}},
		},
		Layout: GridLayout{Columns: 9, Tiers: []Tier{TierHigh, TierMid, TierLow}},
		Rules: []PointRule{
			{Field: FieldMobile, Phase: PhaseAuto, Kind: RuleCount, PointsEach: 3},
			{Field: FieldEndgameFinalCharge, Phase: PhaseEndgame, Kind: RuleCriteria, Criteria: CriteriaEndgame},
		},
		FoulRate: 1.06,
	})
	if err != nil {
		panic(fmt.Sprintf("default catalog is invalid: %v", err))
	}
	return c
}
