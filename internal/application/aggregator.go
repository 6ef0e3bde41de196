package application

import (
	"context"
	"fmt"
	"slices"

	"github.com/ahrav/go-scout/internal/domain"
	"github.com/ahrav/go-scout/internal/ports"
)

// Verify interface compliance at compile time.
var _ ports.PointsSource = (*Aggregator)(nil)

// Aggregator performs statistical reductions over the sequences the
// Resolver produces: cumulative series, heatmaps, per-match points and
// population quantiles. It never reads the Record Store directly.
type Aggregator struct {
	resolver *Resolver
	catalog  *domain.Catalog
}

// NewAggregator creates an aggregator over resolver.
func NewAggregator(resolver *Resolver) (*Aggregator, error) {
	if resolver == nil {
		return nil, fmt.Errorf("%w: resolver cannot be nil", domain.ErrInvalidConfiguration)
	}
	return &Aggregator{resolver: resolver, catalog: resolver.Catalog()}, nil
}

// CumulativeOverTime returns the running total of key through each of the
// team's matches that define it. Indices run 0..n-1 for use as an x-axis.
func (a *Aggregator) CumulativeOverTime(team int, key string) (domain.TimeSeries, error) {
	values, err := a.resolver.Values(team, key)
	if err != nil {
		return domain.TimeSeries{}, err
	}
	if len(values) == 0 {
		return domain.TimeSeries{}, domain.NewQueryError("cumulative", teamLabel(team), key, domain.ErrNoData)
	}
	return domain.NewTimeSeries(domain.CumulativeSum(values)), nil
}

// Heatmap bins the grid placements recorded in key across all of the
// team's matches. The shape comes from the catalogue's grid layout, so
// cells never observed are zero and a team without placements gets an
// all-zero matrix.
func (a *Aggregator) Heatmap(team int, key string) (domain.Heatmap, error) {
	const op = "heatmap"
	layout := a.catalog.Layout()
	if layout.Columns <= 0 || len(layout.Tiers) == 0 {
		return domain.Heatmap{}, domain.NewQueryError(op, teamLabel(team), key,
			fmt.Errorf("%w: catalog %q has no grid layout", domain.ErrInvalidConfiguration, a.catalog.Name()))
	}
	seq, err := a.resolver.Series(team, key)
	if err != nil {
		return domain.Heatmap{}, err
	}
	h := domain.NewHeatmap(layout)
	for v := range seq {
		for _, code := range gridCodes(v) {
			cell, err := domain.ParseGridCell(code)
			if err == nil {
				err = h.Add(cell)
			}
			if err != nil {
				return domain.Heatmap{}, domain.NewQueryError(op, teamLabel(team), key, err)
			}
		}
	}
	return h, nil
}

// matchPoints is the point total of one team record.
type matchPoints struct {
	matchKey string
	points   float64
}

// pointTerm scores one field of a record.
type pointTerm struct {
	field string
	score func(domain.Value) (float64, error)
}

// terms returns the catalogue's grids and point rules counted under scope.
func (a *Aggregator) terms(scope domain.Scope) ([]pointTerm, error) {
	var terms []pointTerm
	for _, phase := range domain.Phases {
		if !scope.Includes(phase) {
			continue
		}
		grid, ok := a.catalog.Grid(phase)
		if !ok {
			continue
		}
		terms = append(terms, pointTerm{
			field: grid.Field,
			score: func(v domain.Value) (float64, error) {
				return domain.ScoreGrid(gridCodes(v), grid.Points)
			},
		})
	}
	for _, rule := range a.catalog.Rules(scope) {
		switch rule.Kind {
		case domain.RuleCount:
			terms = append(terms, pointTerm{
				field: rule.Field,
				score: func(v domain.Value) (float64, error) {
					n, ok := v.Number()
					if !ok {
						return 0, fmt.Errorf("%w: %q", domain.ErrNotNumeric, v.Label())
					}
					return n * rule.PointsEach, nil
				},
			})
		case domain.RuleCriteria:
			crit, err := a.catalog.Criteria(rule.Criteria)
			if err != nil {
				return nil, err
			}
			terms = append(terms, pointTerm{field: rule.Field, score: crit.Translate})
		}
	}
	return terms, nil
}

// points derives the team's points per match under scope. A record
// missing some rule fields scores zero for them; a record defining none
// of them is left out.
func (a *Aggregator) points(op string, team int, scope domain.Scope) ([]matchPoints, error) {
	if err := scope.Validate(); err != nil {
		return nil, domain.NewQueryError(op, teamLabel(team), scope.String(), err)
	}
	terms, err := a.terms(scope)
	if err != nil {
		return nil, domain.NewQueryError(op, teamLabel(team), scope.String(), err)
	}
	keys := make([]string, 0, len(terms))
	for _, t := range terms {
		if !slices.Contains(keys, t.field) {
			keys = append(keys, t.field)
		}
	}
	rows, err := a.resolver.Rows(team, keys...)
	if err != nil {
		return nil, err
	}

	out := make([]matchPoints, 0, len(rows))
	for _, row := range rows {
		if len(row.Values) == 0 {
			continue
		}
		var total float64
		for _, t := range terms {
			v, ok := row.Values[t.field]
			if !ok {
				continue
			}
			p, err := t.score(v)
			if err != nil {
				return nil, domain.NewQueryError(op, teamLabel(team), t.field,
					fmt.Errorf("match %s: %w", row.MatchKey, err))
			}
			total += p
		}
		out = append(out, matchPoints{matchKey: row.MatchKey, points: total})
	}
	return out, nil
}

// PointsByMatch returns the points the team scored in each of its matches
// under scope, in stored order.
func (a *Aggregator) PointsByMatch(team int, scope domain.Scope) ([]float64, error) {
	mp, err := a.points("points_by_match", team, scope)
	if err != nil {
		return nil, err
	}
	if len(mp) == 0 {
		return nil, domain.NewQueryError("points_by_match", teamLabel(team), scope.String(), domain.ErrNoData)
	}
	out := make([]float64, len(mp))
	for i, p := range mp {
		out[i] = p.points
	}
	return out, nil
}

// AveragePoints returns the team's mean points per match under scope.
func (a *Aggregator) AveragePoints(team int, scope domain.Scope) (float64, error) {
	pts, err := a.PointsByMatch(team, scope)
	if err != nil {
		return 0, err
	}
	mean, _ := domain.Mean(pts)
	return mean, nil
}

// PointsForMatch returns the points the team scored in one match under
// scope. With cumulative set, it returns the running total through that
// match in the team's stored order instead.
func (a *Aggregator) PointsForMatch(team int, matchKey string, scope domain.Scope, cumulative bool) (float64, error) {
	const op = "points_for_match"
	mp, err := a.points(op, team, scope)
	if err != nil {
		return 0, err
	}
	var running float64
	for _, p := range mp {
		running += p.points
		if p.matchKey != matchKey {
			continue
		}
		if cumulative {
			return running, nil
		}
		return p.points, nil
	}

	played, err := a.resolver.TeamMatches(team)
	if err != nil {
		return 0, err
	}
	if slices.Contains(played, matchKey) {
		return 0, domain.NewQueryError(op, teamLabel(team), matchKey, domain.ErrNoData)
	}
	qerr := domain.NewQueryError(op, teamLabel(team), matchKey, domain.ErrMatchNotFound)
	qerr.Suggestion = suggest(matchKey, played)
	return 0, qerr
}

// Consistency returns the interquartile range of the team's per-match
// points under scope. Smaller is steadier.
func (a *Aggregator) Consistency(team int, scope domain.Scope) (float64, error) {
	pts, err := a.PointsByMatch(team, scope)
	if err != nil {
		return 0, err
	}
	slices.Sort(pts)
	return domain.IQR(pts)
}

// QuantileStat evaluates formula for every team and returns the q-th
// quantile of the results. Teams the formula reports domain.ErrNoData for
// are left out of the population.
func (a *Aggregator) QuantileStat(ctx context.Context, q float64, formula ports.Formula) (float64, error) {
	results, err := evaluateTeams(ctx, a.resolver.Teams(), formula, 0)
	if err != nil {
		return 0, err
	}
	values := make([]float64, 0, len(results))
	for _, r := range results {
		if !r.noData {
			values = append(values, r.value)
		}
	}
	slices.Sort(values)
	v, err := domain.Quantile(values, q)
	if err != nil {
		return 0, domain.NewQueryError("quantile_stat", "all", formula.Name(), err)
	}
	return v, nil
}
