package application

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-scout/internal/domain"
	"github.com/ahrav/go-scout/internal/testutils"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewResolver(testutils.SampleStore(t), domain.DefaultCatalog())
	require.NoError(t, err)
	return r
}

func TestNewResolver_RejectsNil(t *testing.T) {
	_, err := NewResolver(nil, domain.DefaultCatalog())
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	_, err = NewResolver(testutils.SampleStore(t), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestResolver_Average(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		name     string
		team     int
		key      string
		expected float64
		err      error
	}{
		{name: "numeric field", team: 4099, key: "DriverRating", expected: 4},
		{name: "numeric strings are read as numbers", team: 254, key: "DriverRating", expected: 14.0 / 3},
		{name: "sparse field skips records without it", team: 4099, key: "DefenseRating", expected: 3},
		{name: "flattened nested field", team: 4099, key: "Auto.Cubes", expected: 1},
		{name: "known field absent for team", team: 254, key: "DefenseRating", err: domain.ErrNoData},
		{name: "unknown team", team: 9999, key: "DriverRating", err: domain.ErrNoData},
		{name: "unknown field", team: 4099, key: "DriverRatng", err: domain.ErrUnknownField},
		{name: "categorical field", team: 4099, key: "EndgameFinalCharge", err: domain.ErrNotNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Average(tt.team, tt.key)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestResolver_UnknownFieldSuggestion(t *testing.T) {
	r := newTestResolver(t)

	_, err := r.Values(4099, "driverrating")
	require.ErrorIs(t, err, domain.ErrUnknownField)

	var qerr *domain.QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, "DriverRating", qerr.Suggestion)
	assert.Equal(t, "4099", qerr.Entity)
	assert.Contains(t, err.Error(), `did you mean "DriverRating"?`)
}

func TestResolver_CatalogFieldsAreKnown(t *testing.T) {
	s := testutils.SampleStore(t)
	catalog, err := domain.NewCatalog(domain.CatalogSpec{
		Name:   "custom",
		Fields: []string{"TeleopUpperHub"},
	})
	require.NoError(t, err)

	r, err := NewResolver(s, catalog)
	require.NoError(t, err)
	assert.Contains(t, r.Fields(), "TeleopUpperHub")

	values, err := r.Values(4099, "TeleopUpperHub")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestResolver_Series(t *testing.T) {
	r := newTestResolver(t)

	seq, err := r.Series(4099, "EndgameFinalCharge")
	require.NoError(t, err)

	labels := func() []string {
		var out []string
		for v := range seq {
			out = append(out, v.Label())
		}
		return out
	}
	assert.Equal(t, []string{"Engage", "Docked", "None"}, labels())
	assert.Equal(t, labels(), labels(), "sequence is restartable")

	var first []string
	for v := range seq {
		first = append(first, v.Label())
		break
	}
	assert.Equal(t, []string{"Engage"}, first)

	_, err = r.Series(9999, "EndgameFinalCharge")
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestResolver_ScoredSeries(t *testing.T) {
	r := newTestResolver(t)
	endgame, err := domain.DefaultCatalog().Criteria(domain.CriteriaEndgame)
	require.NoError(t, err)

	t.Run("translates every value", func(t *testing.T) {
		seq, err := r.ScoredSeries(4099, "EndgameFinalCharge", endgame)
		require.NoError(t, err)
		assert.Equal(t, []float64{10, 2, 0}, slices.Collect(seq))

		avg, err := r.ScoredAverage(4099, "EndgameFinalCharge", endgame)
		require.NoError(t, err)
		assert.InDelta(t, 4.0, avg, 1e-9)
	})

	t.Run("unknown label is reported eagerly", func(t *testing.T) {
		crit := domain.CriteriaMap{"None": 0, "Parked": 0, "Dockd": 6, "Engage": 10}
		_, err := r.ScoredSeries(4099, "EndgameFinalCharge", crit)
		require.ErrorIs(t, err, domain.ErrUnknownCategory)

		var qerr *domain.QueryError
		require.ErrorAs(t, err, &qerr)
		assert.Equal(t, "Dockd", qerr.Suggestion)
	})

	t.Run("numeric labels translate", func(t *testing.T) {
		crit, err := domain.DefaultCatalog().Criteria(domain.CriteriaBoolean)
		require.NoError(t, err)
		seq, err := r.ScoredSeries(4099, "Mobile", crit)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 0, 1}, slices.Collect(seq))
	})
}

func TestResolver_GridScores(t *testing.T) {
	r := newTestResolver(t)

	total, err := r.GridScore(4099, domain.PhaseTeleop)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, total, 1e-9)

	byMatch, err := r.GridScoreByMatch(4099, domain.PhaseTeleop)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 12, 3}, byMatch)

	avg, err := r.AverageGridScore(4099, domain.PhaseAuto)
	require.NoError(t, err)
	assert.InDelta(t, 10.0/3, avg, 1e-9)

	_, err = r.GridScore(4099, domain.PhaseEndgame)
	assert.ErrorIs(t, err, domain.ErrUnknownField)

	_, err = r.GridScore(testutils.SpectatorTeam, domain.PhaseAuto)
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestResolver_AllianceMatchValue(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		name     string
		match    string
		key      string
		color    domain.Alliance
		reduce   domain.Reduction
		expected float64
		err      error
	}{
		{name: "red sum", match: "qm1", key: "DriverRating", color: domain.AllianceRed, reduce: domain.ReduceSum, expected: 9},
		{name: "blue sum", match: "qm1", key: "DriverRating", color: domain.AllianceBlue, reduce: domain.ReduceSum, expected: 12},
		{name: "blue max", match: "qm1", key: "DriverRating", color: domain.AllianceBlue, reduce: domain.ReduceMax, expected: 5},
		{name: "red mean with two teams", match: "qm3", key: "DriverRating", color: domain.AllianceRed, reduce: domain.ReduceMean, expected: 2.5},
		{name: "unknown alliance never counts", match: "qm4", key: "DriverRating", color: domain.AllianceUnknown, reduce: domain.ReduceSum, err: domain.ErrNoData},
		{name: "missing match", match: "qm11", key: "DriverRating", color: domain.AllianceRed, reduce: domain.ReduceSum, err: domain.ErrMatchNotFound},
		{name: "unknown field", match: "qm1", key: "Nope", color: domain.AllianceRed, reduce: domain.ReduceSum, err: domain.ErrUnknownField},
		{name: "field absent in match", match: "qm2", key: "DefenseRating", color: domain.AllianceBlue, reduce: domain.ReduceSum, err: domain.ErrNoData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.AllianceMatchValue(tt.match, tt.key, tt.color, tt.reduce)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}

	_, err := r.AllianceMatchValue("qm11", "DriverRating", domain.AllianceRed, domain.ReduceSum)
	var qerr *domain.QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, "qm1", qerr.Suggestion)
}

func TestResolver_RecordLookups(t *testing.T) {
	r := newTestResolver(t)

	matches, err := r.TeamMatches(4099)
	require.NoError(t, err)
	assert.Equal(t, []string{"qm1", "qm2", "qm3"}, matches)

	v, err := r.RecordValue(4099, "qm1", "EndgameFinalCharge")
	require.NoError(t, err)
	assert.Equal(t, "Engage", v.Label())

	_, err = r.RecordValue(4099, "qm4", "EndgameFinalCharge")
	assert.ErrorIs(t, err, domain.ErrMatchNotFound)

	_, err = r.RecordValue(4099, "qm2", "DefenseRating")
	assert.ErrorIs(t, err, domain.ErrNoData)

	rows, err := r.Rows(testutils.SpectatorTeam, "AutoGrid", "DriverRating")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "qm4", rows[0].MatchKey)
	assert.Len(t, rows[0].Values, 1)

	assert.Equal(t, []int{118, 180, 254, 971, 1678, 4099, 5000}, r.Teams())
	assert.Equal(t, []string{"qm1", "qm2", "qm3", "qm4"}, r.Matches())
}
