package application

import (
	"errors"
	"fmt"
	"math"

	"github.com/ahrav/go-scout/internal/domain"
	"github.com/ahrav/go-scout/internal/ports"
)

// Verify interface compliance at compile time.
var _ ports.MatchupEvaluator = (*Compositor)(nil)

// Roster reports whether a team appears in the dataset.
type Roster interface {
	HasTeam(team int) bool
}

// Compositor combines the per-match sequences of an alliance group and
// compares groups head to head.
//
// Alignment policy: sequences are aligned by each team's own match order
// and truncated to the shortest, so no value is invented for a match a
// team has not played yet. A scouted team with no data for the series
// contributes an empty sequence and therefore truncates the combination
// to nothing. A team absent from the dataset is domain.ErrNoData.
type Compositor struct {
	points  ports.PointsSource
	roster  Roster
	catalog *domain.Catalog
}

// NewCompositor creates a compositor that reads team points from points
// and checks team membership against roster.
func NewCompositor(points ports.PointsSource, roster Roster, catalog *domain.Catalog) (*Compositor, error) {
	if points == nil {
		return nil, fmt.Errorf("%w: points source cannot be nil", domain.ErrInvalidConfiguration)
	}
	if roster == nil {
		return nil, fmt.Errorf("%w: roster cannot be nil", domain.ErrInvalidConfiguration)
	}
	if catalog == nil {
		return nil, fmt.Errorf("%w: catalog cannot be nil", domain.ErrInvalidConfiguration)
	}
	return &Compositor{points: points, roster: roster, catalog: catalog}, nil
}

// Combine sums the three teams' sequences from source elementwise. The
// result is as long as the shortest team sequence.
func (c *Compositor) Combine(group domain.AllianceGroup, source ports.SeriesSource) ([]float64, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: series source cannot be nil", domain.ErrInvalidConfiguration)
	}
	seqs := make([][]float64, 0, domain.AllianceSize)
	for _, team := range group.Teams() {
		if !c.roster.HasTeam(team) {
			return nil, domain.NewQueryError("combine", teamLabel(team), source.Name(), domain.ErrNoData)
		}
		s, err := source.Series(team)
		if errors.Is(err, domain.ErrNoData) {
			s, err = nil, nil
		}
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, s)
	}
	return domain.CombineShortest(seqs...), nil
}

// WinProbability aligns both groups' combined sequences index by index
// and returns the percentage of aligned matches in which a strictly beats
// b. It is domain.ErrInsufficientData when no match is comparable.
func (c *Compositor) WinProbability(a, b domain.AllianceGroup, source ports.SeriesSource) (float64, error) {
	ca, err := c.Combine(a, source)
	if err != nil {
		return 0, err
	}
	cb, err := c.Combine(b, source)
	if err != nil {
		return 0, err
	}
	pct, err := domain.HeadToHead(ca, cb)
	if err != nil {
		return 0, domain.NewQueryError("win_probability", string(domain.MatchupEntity(a, b)), source.Name(), err)
	}
	return pct, nil
}

// PredictedScore sums each team's mean points under scope and scales the
// total by the catalogue's average foul rate.
func (c *Compositor) PredictedScore(group domain.AllianceGroup, scope domain.Scope) (float64, error) {
	var total float64
	for _, team := range group.Teams() {
		avg, err := c.points.AveragePoints(team, scope)
		if err != nil {
			return 0, err
		}
		total += avg
	}
	return total * c.catalog.FoulRate(), nil
}

// WinOdds models each team's points as a normal distribution, sums them
// per alliance, and returns the probability that red outscores blue.
func (c *Compositor) WinOdds(red, blue domain.AllianceGroup) (float64, error) {
	redMean, redStd, err := c.distribution(red)
	if err != nil {
		return 0, err
	}
	blueMean, blueStd, err := c.distribution(blue)
	if err != nil {
		return 0, err
	}
	return domain.NormalWinOdds(redMean, redStd, blueMean, blueStd), nil
}

// distribution returns the mean and deviation of a group's summed points,
// treating teams as independent.
func (c *Compositor) distribution(group domain.AllianceGroup) (mean, std float64, err error) {
	var variance float64
	for _, team := range group.Teams() {
		pts, err := c.points.PointsByMatch(team, domain.ScopeAll)
		if err != nil {
			return 0, 0, err
		}
		m, _ := domain.Mean(pts)
		s, _ := domain.StdDev(pts)
		mean += m
		variance += s * s
	}
	return mean, math.Sqrt(variance), nil
}
