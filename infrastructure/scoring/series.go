package scoring

import (
	"fmt"

	"github.com/ahrav/go-scout/internal/domain"
	"github.com/ahrav/go-scout/internal/ports"
)

var (
	_ ports.SeriesSource = FieldSeries{}
	_ ports.SeriesSource = PointsSeries{}
)

// FieldSeries yields a team's numeric readings of one raw field.
type FieldSeries struct {
	Stats ports.StatResolver
	Field string
}

// Name returns the field key.
func (s FieldSeries) Name() string { return s.Field }

// Series returns the team's values of the field in match order.
func (s FieldSeries) Series(team int) ([]float64, error) {
	return s.Stats.Values(team, s.Field)
}

// PointsSeries yields a team's derived points per match.
type PointsSeries struct {
	Points ports.PointsSource
	Scope  domain.Scope
}

// Name returns "points" qualified by the scope.
func (s PointsSeries) Name() string { return fmt.Sprintf("points:%s", s.Scope) }

// Series returns the team's points per match in the configured scope.
func (s PointsSeries) Series(team int) ([]float64, error) {
	return s.Points.PointsByMatch(team, s.Scope)
}
