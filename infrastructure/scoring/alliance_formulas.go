package scoring

import (
	"fmt"

	"github.com/ahrav/go-scout/internal/domain"
	"github.com/ahrav/go-scout/internal/ports"
)

var (
	_ ports.Formula = (*AllianceFieldFormula)(nil)
	_ ports.Formula = (*AllianceSumFormula)(nil)
	_ ports.Formula = (*WinProbabilityFormula)(nil)
	_ ports.Formula = (*WinOddsFormula)(nil)
	_ ports.Formula = (*PredictedScoreFormula)(nil)
)

// AllianceFieldFormula evaluates an alliance-in-match entity ("qm12:red")
// to one raw field combined across the alliance's teams.
type AllianceFieldFormula struct {
	name   string
	config AllianceFieldConfig
	reduce domain.Reduction
	stats  ports.StatResolver
}

// AllianceFieldConfig defines the configuration parameters for
// AllianceFieldFormula.
type AllianceFieldConfig struct {
	// Field is the raw record key to read from each team's record.
	Field string `yaml:"field" json:"field" validate:"required"`

	// Reduce combines the per-team values: sum, mean, max or min.
	Reduce string `yaml:"reduce" json:"reduce" validate:"omitempty,oneof=sum mean max min"`
}

// DefaultAllianceFieldConfig returns a config that sums the alliance.
func DefaultAllianceFieldConfig() AllianceFieldConfig {
	return AllianceFieldConfig{Reduce: string(domain.ReduceSum)}
}

// NewAllianceFieldFormula creates an AllianceFieldFormula reading from stats.
func NewAllianceFieldFormula(
	name string,
	config AllianceFieldConfig,
	stats ports.StatResolver,
) (*AllianceFieldFormula, error) {
	if name == "" {
		return nil, ErrEmptyFormulaName
	}
	if stats == nil {
		return nil, fmt.Errorf("%w: stat resolver", ErrMissingDependency)
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	reduce, err := domain.ParseReduction(config.Reduce)
	if err != nil {
		return nil, err
	}
	return &AllianceFieldFormula{name: name, config: config, reduce: reduce, stats: stats}, nil
}

// Name returns the formula's identifier.
func (f *AllianceFieldFormula) Name() string { return f.name }

// Evaluate returns the reduced field value for one alliance in one match.
func (f *AllianceFieldFormula) Evaluate(entity domain.EntityID) (float64, error) {
	match, color, err := entity.AllianceInMatch()
	if err != nil {
		return 0, err
	}
	return f.stats.AllianceMatchValue(match, f.config.Field, color, f.reduce)
}

// Validate checks the formula's configuration.
func (f *AllianceFieldFormula) Validate() error {
	if err := validate.Struct(f.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// CreateAllianceFieldFormula is a factory function that creates an
// AllianceFieldFormula.
func CreateAllianceFieldFormula(id string, params map[string]any) (*AllianceFieldFormula, error) {
	analytics, err := analyticsParam(params)
	if err != nil {
		return nil, err
	}
	config := DefaultAllianceFieldConfig()
	if err := decodeParams(params, &config); err != nil {
		return nil, err
	}
	return NewAllianceFieldFormula(id, config, analytics)
}

// AllianceSumFormula evaluates an alliance group entity ("a,b,c") to the
// sum of a team formula over the group's members. Any member's error
// fails the whole evaluation.
type AllianceSumFormula struct {
	name   string
	config AllianceSumConfig
	member ports.Formula
}

// AllianceSumConfig defines the configuration parameters for
// AllianceSumFormula.
type AllianceSumConfig struct {
	// Formula is the id of the team formula to sum. The formula set
	// resolves it and injects the compiled formula as formula_ref.
	Formula string `yaml:"formula" json:"formula" validate:"required"`
}

// NewAllianceSumFormula creates an AllianceSumFormula over member.
func NewAllianceSumFormula(name string, config AllianceSumConfig, member ports.Formula) (*AllianceSumFormula, error) {
	if name == "" {
		return nil, ErrEmptyFormulaName
	}
	if member == nil {
		return nil, fmt.Errorf("%w: member formula", ErrMissingDependency)
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &AllianceSumFormula{name: name, config: config, member: member}, nil
}

// Name returns the formula's identifier.
func (f *AllianceSumFormula) Name() string { return f.name }

// Evaluate sums the member formula over the group's teams.
func (f *AllianceSumFormula) Evaluate(entity domain.EntityID) (float64, error) {
	group, err := entity.AllianceGroup()
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, team := range group.Teams() {
		v, err := f.member.Evaluate(domain.TeamEntity(team))
		if err != nil {
			return 0, fmt.Errorf("team %d: %w", team, err)
		}
		sum += v
	}
	return sum, nil
}

// Validate checks the formula's configuration and its member formula.
func (f *AllianceSumFormula) Validate() error {
	if err := validate.Struct(f.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return f.member.Validate()
}

// CreateAllianceSumFormula is a factory function that creates an
// AllianceSumFormula from params carrying an injected formula_ref.
func CreateAllianceSumFormula(id string, params map[string]any) (*AllianceSumFormula, error) {
	member, err := formulaParam(params)
	if err != nil {
		return nil, err
	}
	var config AllianceSumConfig
	if err := decodeParams(params, &config); err != nil {
		return nil, err
	}
	return NewAllianceSumFormula(id, config, member)
}

// MatchupConfig defines the series a matchup formula compares. Field
// selects a raw-field series; when it is empty the alliances are compared
// on derived points in Scope.
type MatchupConfig struct {
	Field string `yaml:"field" json:"field"`
	Scope string `yaml:"scope" json:"scope" validate:"omitempty,oneof=all total auto teleop"`
}

func (c MatchupConfig) source(a ports.Analytics) (ports.SeriesSource, error) {
	if c.Field != "" {
		return FieldSeries{Stats: a, Field: c.Field}, nil
	}
	scope, err := domain.ParseScope(c.Scope)
	if err != nil {
		return nil, err
	}
	return PointsSeries{Points: a, Scope: scope}, nil
}

// WinProbabilityFormula evaluates a matchup entity ("a,b,c vs d,e,f") to
// the percentage of aligned matches in which the first group's combined
// series strictly beats the second's.
type WinProbabilityFormula struct {
	name     string
	config   MatchupConfig
	source   ports.SeriesSource
	matchups ports.MatchupEvaluator
}

// NewWinProbabilityFormula creates a WinProbabilityFormula.
func NewWinProbabilityFormula(name string, config MatchupConfig, analytics ports.Analytics) (*WinProbabilityFormula, error) {
	if name == "" {
		return nil, ErrEmptyFormulaName
	}
	if analytics == nil {
		return nil, fmt.Errorf("%w: analytics", ErrMissingDependency)
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	source, err := config.source(analytics)
	if err != nil {
		return nil, err
	}
	return &WinProbabilityFormula{name: name, config: config, source: source, matchups: analytics}, nil
}

// Name returns the formula's identifier.
func (f *WinProbabilityFormula) Name() string { return f.name }

// Evaluate returns the historical win percentage of the first group.
func (f *WinProbabilityFormula) Evaluate(entity domain.EntityID) (float64, error) {
	a, b, err := entity.Matchup()
	if err != nil {
		return 0, err
	}
	return f.matchups.WinProbability(a, b, f.source)
}

// Validate checks the formula's configuration.
func (f *WinProbabilityFormula) Validate() error {
	if err := validate.Struct(f.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// CreateWinProbabilityFormula is a factory function that creates a
// WinProbabilityFormula.
func CreateWinProbabilityFormula(id string, params map[string]any) (*WinProbabilityFormula, error) {
	analytics, err := analyticsParam(params)
	if err != nil {
		return nil, err
	}
	var config MatchupConfig
	if err := decodeParams(params, &config); err != nil {
		return nil, err
	}
	return NewWinProbabilityFormula(id, config, analytics)
}

// WinOddsFormula evaluates a matchup entity to the modelled percentage
// chance that the first group outscores the second.
type WinOddsFormula struct {
	name     string
	matchups ports.MatchupEvaluator
}

// NewWinOddsFormula creates a WinOddsFormula.
func NewWinOddsFormula(name string, matchups ports.MatchupEvaluator) (*WinOddsFormula, error) {
	if name == "" {
		return nil, ErrEmptyFormulaName
	}
	if matchups == nil {
		return nil, fmt.Errorf("%w: matchup evaluator", ErrMissingDependency)
	}
	return &WinOddsFormula{name: name, matchups: matchups}, nil
}

// Name returns the formula's identifier.
func (f *WinOddsFormula) Name() string { return f.name }

// Evaluate returns the win odds of the first group as a percentage.
func (f *WinOddsFormula) Evaluate(entity domain.EntityID) (float64, error) {
	a, b, err := entity.Matchup()
	if err != nil {
		return 0, err
	}
	odds, err := f.matchups.WinOdds(a, b)
	if err != nil {
		return 0, err
	}
	return odds * 100, nil
}

// Validate always succeeds; the formula has no parameters.
func (f *WinOddsFormula) Validate() error { return nil }

// CreateWinOddsFormula is a factory function that creates a WinOddsFormula.
func CreateWinOddsFormula(id string, params map[string]any) (*WinOddsFormula, error) {
	analytics, err := analyticsParam(params)
	if err != nil {
		return nil, err
	}
	var none struct{}
	if err := decodeParams(params, &none); err != nil {
		return nil, err
	}
	return NewWinOddsFormula(id, analytics)
}

// PredictedScoreFormula evaluates an alliance group entity to its expected
// match score including the catalogue's foul allowance.
type PredictedScoreFormula struct {
	name     string
	config   PointsConfig
	scope    domain.Scope
	matchups ports.MatchupEvaluator
}

// NewPredictedScoreFormula creates a PredictedScoreFormula.
func NewPredictedScoreFormula(
	name string,
	config PointsConfig,
	matchups ports.MatchupEvaluator,
) (*PredictedScoreFormula, error) {
	if name == "" {
		return nil, ErrEmptyFormulaName
	}
	if matchups == nil {
		return nil, fmt.Errorf("%w: matchup evaluator", ErrMissingDependency)
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	scope, err := domain.ParseScope(config.Scope)
	if err != nil {
		return nil, err
	}
	return &PredictedScoreFormula{name: name, config: config, scope: scope, matchups: matchups}, nil
}

// Name returns the formula's identifier.
func (f *PredictedScoreFormula) Name() string { return f.name }

// Evaluate returns the group's predicted score.
func (f *PredictedScoreFormula) Evaluate(entity domain.EntityID) (float64, error) {
	group, err := entity.AllianceGroup()
	if err != nil {
		return 0, err
	}
	return f.matchups.PredictedScore(group, f.scope)
}

// Validate checks the formula's configuration.
func (f *PredictedScoreFormula) Validate() error {
	if err := validate.Struct(f.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// CreatePredictedScoreFormula is a factory function that creates a
// PredictedScoreFormula.
func CreatePredictedScoreFormula(id string, params map[string]any) (*PredictedScoreFormula, error) {
	analytics, err := analyticsParam(params)
	if err != nil {
		return nil, err
	}
	config := DefaultPointsConfig()
	if err := decodeParams(params, &config); err != nil {
		return nil, err
	}
	return NewPredictedScoreFormula(id, config, analytics)
}
