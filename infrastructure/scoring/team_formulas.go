package scoring

import (
	"fmt"

	"github.com/ahrav/go-scout/internal/domain"
	"github.com/ahrav/go-scout/internal/ports"
)

var (
	_ ports.Formula = (*AverageFormula)(nil)
	_ ports.Formula = (*ScoredAverageFormula)(nil)
	_ ports.Formula = (*GridFormula)(nil)
	_ ports.Formula = (*PointsFormula)(nil)
)

// AverageFormula evaluates a team entity to the mean of one raw field.
type AverageFormula struct {
	name   string
	config AverageConfig
	stats  ports.StatResolver
}

// AverageConfig defines the configuration parameters for AverageFormula.
type AverageConfig struct {
	// Field is the raw record key to average.
	Field string `yaml:"field" json:"field" validate:"required"`
}

// NewAverageFormula creates an AverageFormula reading from stats.
func NewAverageFormula(name string, config AverageConfig, stats ports.StatResolver) (*AverageFormula, error) {
	if name == "" {
		return nil, ErrEmptyFormulaName
	}
	if stats == nil {
		return nil, fmt.Errorf("%w: stat resolver", ErrMissingDependency)
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &AverageFormula{name: name, config: config, stats: stats}, nil
}

// Name returns the formula's identifier.
func (f *AverageFormula) Name() string { return f.name }

// Evaluate returns the team's mean value of the configured field.
func (f *AverageFormula) Evaluate(entity domain.EntityID) (float64, error) {
	team, err := entity.Team()
	if err != nil {
		return 0, err
	}
	return f.stats.Average(team, f.config.Field)
}

// Validate checks the formula's configuration.
func (f *AverageFormula) Validate() error {
	if err := validate.Struct(f.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// CreateAverageFormula is a factory function that creates an AverageFormula
// from decoded parameters carrying an injected ports.Analytics.
func CreateAverageFormula(id string, params map[string]any) (*AverageFormula, error) {
	analytics, err := analyticsParam(params)
	if err != nil {
		return nil, err
	}
	var config AverageConfig
	if err := decodeParams(params, &config); err != nil {
		return nil, err
	}
	return NewAverageFormula(id, config, analytics)
}

// ScoredAverageFormula evaluates a team entity to the mean of a categorical
// field after translating each label through a criteria map.
type ScoredAverageFormula struct {
	name     string
	config   ScoredAverageConfig
	criteria domain.CriteriaMap
	stats    ports.StatResolver
}

// ScoredAverageConfig defines the configuration parameters for
// ScoredAverageFormula.
type ScoredAverageConfig struct {
	// Field is the categorical record key to translate.
	Field string `yaml:"field" json:"field" validate:"required"`

	// Criteria names the catalogue criteria map used for translation.
	Criteria string `yaml:"criteria" json:"criteria" validate:"required"`
}

// NewScoredAverageFormula creates a ScoredAverageFormula. The criteria map
// is captured by value; later changes to crit do not affect the formula.
func NewScoredAverageFormula(
	name string,
	config ScoredAverageConfig,
	stats ports.StatResolver,
	crit domain.CriteriaMap,
) (*ScoredAverageFormula, error) {
	if name == "" {
		return nil, ErrEmptyFormulaName
	}
	if stats == nil {
		return nil, fmt.Errorf("%w: stat resolver", ErrMissingDependency)
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	if len(crit) == 0 {
		return nil, fmt.Errorf("%w: %q is empty", domain.ErrUnknownCriteria, config.Criteria)
	}
	return &ScoredAverageFormula{
		name:     name,
		config:   config,
		criteria: crit.Clone(),
		stats:    stats,
	}, nil
}

// Name returns the formula's identifier.
func (f *ScoredAverageFormula) Name() string { return f.name }

// Evaluate returns the team's mean translated score.
func (f *ScoredAverageFormula) Evaluate(entity domain.EntityID) (float64, error) {
	team, err := entity.Team()
	if err != nil {
		return 0, err
	}
	return f.stats.ScoredAverage(team, f.config.Field, f.criteria)
}

// Validate checks the formula's configuration.
func (f *ScoredAverageFormula) Validate() error {
	if err := validate.Struct(f.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if len(f.criteria) == 0 {
		return fmt.Errorf("%w: %q is empty", domain.ErrUnknownCriteria, f.config.Criteria)
	}
	return nil
}

// CreateScoredAverageFormula resolves the named criteria map from the
// injected analytics catalogue and creates the formula.
func CreateScoredAverageFormula(id string, params map[string]any) (*ScoredAverageFormula, error) {
	analytics, err := analyticsParam(params)
	if err != nil {
		return nil, err
	}
	var config ScoredAverageConfig
	if err := decodeParams(params, &config); err != nil {
		return nil, err
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	crit, err := analytics.Catalog().Criteria(config.Criteria)
	if err != nil {
		return nil, fmt.Errorf("formula %s: %w", id, err)
	}
	return NewScoredAverageFormula(id, config, analytics, crit)
}

// GridFormula evaluates a team entity to its mean grid score in one phase.
type GridFormula struct {
	name   string
	config GridConfig
	stats  ports.StatResolver
}

// GridConfig defines the configuration parameters for GridFormula.
type GridConfig struct {
	// Phase selects the catalogue grid to score.
	Phase string `yaml:"phase" json:"phase" validate:"required,oneof=auto teleop endgame"`
}

// DefaultGridConfig returns a GridConfig scoring the teleop grid.
func DefaultGridConfig() GridConfig {
	return GridConfig{Phase: string(domain.PhaseTeleop)}
}

// NewGridFormula creates a GridFormula reading from stats.
func NewGridFormula(name string, config GridConfig, stats ports.StatResolver) (*GridFormula, error) {
	if name == "" {
		return nil, ErrEmptyFormulaName
	}
	if stats == nil {
		return nil, fmt.Errorf("%w: stat resolver", ErrMissingDependency)
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &GridFormula{name: name, config: config, stats: stats}, nil
}

// Name returns the formula's identifier.
func (f *GridFormula) Name() string { return f.name }

// Evaluate returns the team's mean grid score for the configured phase.
func (f *GridFormula) Evaluate(entity domain.EntityID) (float64, error) {
	team, err := entity.Team()
	if err != nil {
		return 0, err
	}
	return f.stats.AverageGridScore(team, domain.Phase(f.config.Phase))
}

// Validate checks the formula's configuration.
func (f *GridFormula) Validate() error {
	if err := validate.Struct(f.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// CreateGridFormula is a factory function that creates a GridFormula.
func CreateGridFormula(id string, params map[string]any) (*GridFormula, error) {
	analytics, err := analyticsParam(params)
	if err != nil {
		return nil, err
	}
	config := DefaultGridConfig()
	if err := decodeParams(params, &config); err != nil {
		return nil, err
	}
	return NewGridFormula(id, config, analytics)
}

// PointsFormula evaluates a team entity to its mean points per match.
type PointsFormula struct {
	name   string
	config PointsConfig
	scope  domain.Scope
	points ports.PointsSource
}

// PointsConfig defines the configuration parameters for PointsFormula.
type PointsConfig struct {
	// Scope restricts points to one period: "all", "auto" or "teleop".
	Scope string `yaml:"scope" json:"scope" validate:"omitempty,oneof=all total auto teleop"`
}

// DefaultPointsConfig returns a PointsConfig covering the whole match.
func DefaultPointsConfig() PointsConfig {
	return PointsConfig{Scope: "all"}
}

// NewPointsFormula creates a PointsFormula reading from points.
func NewPointsFormula(name string, config PointsConfig, points ports.PointsSource) (*PointsFormula, error) {
	if name == "" {
		return nil, ErrEmptyFormulaName
	}
	if points == nil {
		return nil, fmt.Errorf("%w: points source", ErrMissingDependency)
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	scope, err := domain.ParseScope(config.Scope)
	if err != nil {
		return nil, err
	}
	return &PointsFormula{name: name, config: config, scope: scope, points: points}, nil
}

// Name returns the formula's identifier.
func (f *PointsFormula) Name() string { return f.name }

// Evaluate returns the team's mean points in the configured scope.
func (f *PointsFormula) Evaluate(entity domain.EntityID) (float64, error) {
	team, err := entity.Team()
	if err != nil {
		return 0, err
	}
	return f.points.AveragePoints(team, f.scope)
}

// Validate checks the formula's configuration.
func (f *PointsFormula) Validate() error {
	if err := validate.Struct(f.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return f.scope.Validate()
}

// CreatePointsFormula is a factory function that creates a PointsFormula.
func CreatePointsFormula(id string, params map[string]any) (*PointsFormula, error) {
	analytics, err := analyticsParam(params)
	if err != nil {
		return nil, err
	}
	config := DefaultPointsConfig()
	if err := decodeParams(params, &config); err != nil {
		return nil, err
	}
	return NewPointsFormula(id, config, analytics)
}
