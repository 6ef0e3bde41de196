package application

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strconv"

	"github.com/ahrav/go-scout/internal/domain"
	"github.com/ahrav/go-scout/internal/ports"
	"github.com/ahrav/go-scout/internal/store"
)

// Verify interface compliance at compile time.
var _ ports.StatResolver = (*Resolver)(nil)

// Resolver answers single-record and single-team field lookups. It is the
// query vocabulary every other component builds on, and the only one that
// reads the Record Store.
//
// A field key is known when the dataset or the catalogue defines it. Keys
// known to neither are reported as domain.ErrUnknownField with a
// suggestion; keys that are known but absent from a team's records yield
// empty results, or domain.ErrNoData from reductions.
type Resolver struct {
	store   *store.Store
	catalog *domain.Catalog
	known   []string
}

// NewResolver creates a resolver over an immutable store and catalogue.
func NewResolver(s *store.Store, catalog *domain.Catalog) (*Resolver, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: store cannot be nil", domain.ErrInvalidConfiguration)
	}
	if catalog == nil {
		return nil, fmt.Errorf("%w: catalog cannot be nil", domain.ErrInvalidConfiguration)
	}
	known := s.Fields()
	for _, f := range catalog.Fields() {
		if !s.HasField(f) {
			known = append(known, f)
		}
	}
	slices.Sort(known)
	return &Resolver{store: s, catalog: catalog, known: known}, nil
}

// Catalog returns the ruleset the resolver was built with.
func (r *Resolver) Catalog() *domain.Catalog { return r.catalog }

// Teams returns every team in the dataset in ascending order.
func (r *Resolver) Teams() []int { return r.store.Teams() }

// HasTeam reports whether the dataset holds any record for team.
func (r *Resolver) HasTeam(team int) bool { return r.store.HasTeam(team) }

// RecordCount returns the number of records in the dataset.
func (r *Resolver) RecordCount() int { return r.store.Len() }

// Matches returns every match key in first-seen order.
func (r *Resolver) Matches() []string { return r.store.Matches() }

// Fields returns every known field key, sorted.
func (r *Resolver) Fields() []string { return slices.Clone(r.known) }

// TeamMatches returns the keys of the team's matches in stored order.
func (r *Resolver) TeamMatches(team int) ([]string, error) {
	if err := r.checkTeam("team_matches", team, ""); err != nil {
		return nil, err
	}
	out := make([]string, 0, r.store.TeamRecordCount(team))
	for rec := range r.store.TeamRecords(team) {
		out = append(out, rec.MatchKey)
	}
	return out, nil
}

// Average returns the arithmetic mean of key across every record of the
// team that defines it. A team with no qualifying records is
// domain.ErrNoData, never zero.
func (r *Resolver) Average(team int, key string) (float64, error) {
	values, err := r.values("average", team, key)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, domain.NewQueryError("average", teamLabel(team), key, domain.ErrNoData)
	}
	mean, _ := domain.Mean(values)
	return mean, nil
}

// Values returns the team's numeric readings of key in stored order.
// Records that do not define key are skipped.
func (r *Resolver) Values(team int, key string) ([]float64, error) {
	return r.values("values", team, key)
}

func (r *Resolver) values(op string, team int, key string) ([]float64, error) {
	seq, err := r.series(op, team, key)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, r.store.TeamRecordCount(team))
	for v := range seq {
		n, ok := v.Number()
		if !ok {
			return nil, domain.NewQueryError(op, teamLabel(team), key,
				fmt.Errorf("%w: %s value %q", domain.ErrNotNumeric, v.Kind(), v.Label()))
		}
		out = append(out, n)
	}
	return out, nil
}

// Series returns a lazy, finite, restartable sequence of the raw values
// of key across the team's records in stored order. Records that do not
// define key are skipped rather than zero-filled.
func (r *Resolver) Series(team int, key string) (iter.Seq[domain.Value], error) {
	return r.series("series", team, key)
}

func (r *Resolver) series(op string, team int, key string) (iter.Seq[domain.Value], error) {
	if err := r.checkField(op, team, key); err != nil {
		return nil, err
	}
	if err := r.checkTeam(op, team, key); err != nil {
		return nil, err
	}
	records := r.store.TeamRecords(team)
	return func(yield func(domain.Value) bool) {
		for rec := range records {
			v, ok := rec.Field(key)
			if !ok {
				continue
			}
			if !yield(v) {
				return
			}
		}
	}, nil
}

// ScoredSeries is Series with every value translated through crit. Every
// label is checked before the sequence is returned, so a label absent
// from crit is reported here as domain.ErrUnknownCategory and iterating
// the sequence can never fail.
func (r *Resolver) ScoredSeries(team int, key string, crit domain.CriteriaMap) (iter.Seq[float64], error) {
	seq, err := r.series("scored_series", team, key)
	if err != nil {
		return nil, err
	}
	for v := range seq {
		if _, err := crit.Translate(v); err != nil {
			qerr := domain.NewQueryError("scored_series", teamLabel(team), key, err)
			qerr.Suggestion = suggest(v.Label(), crit.Labels())
			return nil, qerr
		}
	}
	return func(yield func(float64) bool) {
		for v := range seq {
			score, _ := crit.Translate(v)
			if !yield(score) {
				return
			}
		}
	}, nil
}

// ScoredAverage returns the mean of ScoredSeries.
func (r *Resolver) ScoredAverage(team int, key string, crit domain.CriteriaMap) (float64, error) {
	seq, err := r.ScoredSeries(team, key, crit)
	if err != nil {
		return 0, err
	}
	scores := slices.Collect(seq)
	if len(scores) == 0 {
		return 0, domain.NewQueryError("scored_average", teamLabel(team), key, domain.ErrNoData)
	}
	mean, _ := domain.Mean(scores)
	return mean, nil
}

// GridScore returns the team's total grid score in phase across all of
// its matches: each tier's placement count times the tier's point value
// from the catalogue, summed.
func (r *Resolver) GridScore(team int, phase domain.Phase) (float64, error) {
	scores, err := r.gridScores("grid_score", team, phase)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, s := range scores {
		total += s
	}
	return total, nil
}

// GridScoreByMatch returns the team's grid score in phase per match, in
// stored order.
func (r *Resolver) GridScoreByMatch(team int, phase domain.Phase) ([]float64, error) {
	return r.gridScores("grid_score_by_match", team, phase)
}

// AverageGridScore returns the mean per-match grid score in phase.
func (r *Resolver) AverageGridScore(team int, phase domain.Phase) (float64, error) {
	scores, err := r.gridScores("average_grid_score", team, phase)
	if err != nil {
		return 0, err
	}
	mean, _ := domain.Mean(scores)
	return mean, nil
}

func (r *Resolver) gridScores(op string, team int, phase domain.Phase) ([]float64, error) {
	grid, ok := r.catalog.Grid(phase)
	if !ok {
		return nil, domain.NewQueryError(op, teamLabel(team), string(phase),
			fmt.Errorf("%w: no grid scored in phase %q", domain.ErrUnknownField, phase))
	}
	seq, err := r.series(op, team, grid.Field)
	if err != nil {
		return nil, err
	}
	var scores []float64
	for v := range seq {
		s, err := domain.ScoreGrid(gridCodes(v), grid.Points)
		if err != nil {
			return nil, domain.NewQueryError(op, teamLabel(team), grid.Field, err)
		}
		scores = append(scores, s)
	}
	if len(scores) == 0 {
		return nil, domain.NewQueryError(op, teamLabel(team), grid.Field, domain.ErrNoData)
	}
	return scores, nil
}

// AllianceMatchValue combines key across every team that played on color
// in one match. Records without an alliance are never counted.
func (r *Resolver) AllianceMatchValue(matchKey, key string, color domain.Alliance, reduce domain.Reduction) (float64, error) {
	const op = "alliance_match_value"
	entity := string(domain.AllianceInMatchEntity(matchKey, color))
	if !r.isKnown(key) {
		return 0, r.unknownField(op, entity, key)
	}
	if !r.store.HasMatch(matchKey) {
		qerr := domain.NewQueryError(op, entity, key, domain.ErrMatchNotFound)
		qerr.Suggestion = suggest(matchKey, r.store.Matches())
		return 0, qerr
	}
	var values []float64
	for _, rec := range r.store.MatchRecords(matchKey) {
		if rec.Alliance != color || color == domain.AllianceUnknown {
			continue
		}
		v, ok := rec.Field(key)
		if !ok {
			continue
		}
		n, ok := v.Number()
		if !ok {
			return 0, domain.NewQueryError(op, entity, key,
				fmt.Errorf("%w: team %d value %q", domain.ErrNotNumeric, rec.TeamNumber, v.Label()))
		}
		values = append(values, n)
	}
	result, err := reduce.Apply(values)
	if errors.Is(err, domain.ErrEmptyInput) {
		return 0, domain.NewQueryError(op, entity, key, domain.ErrNoData)
	}
	if err != nil {
		return 0, domain.NewQueryError(op, entity, key, err)
	}
	return result, nil
}

// MatchRow holds the values one record defines for a requested set of keys.
type MatchRow struct {
	MatchKey string
	Values   map[string]domain.Value
}

// Rows returns one row per team record in stored order, each holding
// whichever of keys the record defines. Unlike Series, rows are never
// skipped, so callers can tell a match without data from a missing match.
func (r *Resolver) Rows(team int, keys ...string) ([]MatchRow, error) {
	for _, key := range keys {
		if err := r.checkField("rows", team, key); err != nil {
			return nil, err
		}
	}
	if err := r.checkTeam("rows", team, ""); err != nil {
		return nil, err
	}
	rows := make([]MatchRow, 0, r.store.TeamRecordCount(team))
	for rec := range r.store.TeamRecords(team) {
		row := MatchRow{MatchKey: rec.MatchKey, Values: make(map[string]domain.Value, len(keys))}
		for _, key := range keys {
			if v, ok := rec.Field(key); ok {
				row.Values[key] = v
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// RecordValue returns the raw value of key in the team's record for one
// match.
func (r *Resolver) RecordValue(team int, matchKey, key string) (domain.Value, error) {
	const op = "record_value"
	if err := r.checkField(op, team, key); err != nil {
		return domain.Value{}, err
	}
	rec, ok := r.store.Record(team, matchKey)
	if !ok {
		return domain.Value{}, domain.NewQueryError(op, teamLabel(team), matchKey, domain.ErrMatchNotFound)
	}
	v, ok := rec.Field(key)
	if !ok {
		return domain.Value{}, domain.NewQueryError(op, teamLabel(team), key, domain.ErrNoData)
	}
	return v, nil
}

func (r *Resolver) isKnown(key string) bool {
	return r.store.HasField(key) || r.catalog.HasField(key)
}

func (r *Resolver) checkField(op string, team int, key string) error {
	if r.isKnown(key) {
		return nil
	}
	return r.unknownField(op, teamLabel(team), key)
}

func (r *Resolver) unknownField(op, entity, key string) error {
	qerr := domain.NewQueryError(op, entity, key, domain.ErrUnknownField)
	qerr.Suggestion = suggest(key, r.known)
	return qerr
}

func (r *Resolver) checkTeam(op string, team int, key string) error {
	if r.store.HasTeam(team) {
		return nil
	}
	return domain.NewQueryError(op, teamLabel(team), key, domain.ErrNoData)
}

// gridCodes reads a grid field. A single label is treated as one placement.
func gridCodes(v domain.Value) []string {
	if v.Kind() == domain.KindList {
		return v.Items()
	}
	return []string{v.Label()}
}

func teamLabel(team int) string { return strconv.Itoa(team) }
