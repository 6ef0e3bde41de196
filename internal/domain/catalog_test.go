package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	assert.Equal(t, "2023", c.Name())
	assert.InDelta(t, 1.06, c.FoulRate(), 1e-9)
	assert.True(t, c.HasField(FieldAutoGrid))
	assert.True(t, c.HasField(FieldEndgameFinalCharge))
	assert.False(t, c.HasField("TeleopUpperHub"))

	endgame, err := c.Criteria(CriteriaEndgame)
	require.NoError(t, err)
	assert.Equal(t, 10.0, endgame["Engage"])

	_, err = c.Criteria("nope")
	assert.ErrorIs(t, err, ErrUnknownCriteria)

	auto, ok := c.Grid(PhaseAuto)
	require.True(t, ok)
	assert.Equal(t, FieldAutoGrid, auto.Field)
	assert.Equal(t, 6.0, auto.Points[TierHigh])

	_, ok = c.Grid(PhaseEndgame)
	assert.False(t, ok)

	assert.Len(t, c.Rules(ScopeAll), 2)
	assert.Len(t, c.Rules(ScopeAuto), 1)
	assert.Len(t, c.Rules(ScopeTeleop), 1, "endgame rules count under teleop")
}

func TestCatalogIsImmutable(t *testing.T) {
	c := DefaultCatalog()

	crit, err := c.Criteria(CriteriaEndgame)
	require.NoError(t, err)
	crit["Engage"] = 0

	again, err := c.Criteria(CriteriaEndgame)
	require.NoError(t, err)
	assert.Equal(t, 10.0, again["Engage"])

	g, _ := c.Grid(PhaseTeleop)
	g.Points[TierHigh] = 100
	g2, _ := c.Grid(PhaseTeleop)
	assert.Equal(t, 5.0, g2.Points[TierHigh])
}

func TestNewCatalogValidation(t *testing.T) {
	spec := CatalogSpec{
		Name:     "",
		Criteria: map[string]CriteriaMap{"empty": {}},
		Grids: map[Phase]GridSpec{
			PhaseAuto: {Field: "AutoGrid", Points: GridPointTable{"X": 1}},
		},
		Rules: []PointRule{
			{Field: "Climb", Phase: PhaseEndgame, Kind: RuleCriteria, Criteria: "missing"},
			{Field: "Mobile", Phase: "overtime", Kind: RuleCount, PointsEach: 3},
			{Field: "Cones", Phase: PhaseTeleop, Kind: RuleCount},
		},
		FoulRate: -1,
	}

	_, err := NewCatalog(spec)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.GreaterOrEqual(t, len(verr.Errors), 7)
}

func TestNewCatalogAddsRuleFields(t *testing.T) {
	c, err := NewCatalog(CatalogSpec{
		Name:     "custom",
		Criteria: map[string]CriteriaMap{"climb": {"Park": 2}},
		Rules: []PointRule{
			{Field: "ClimbStatus", Phase: PhaseEndgame, Kind: RuleCriteria, Criteria: "climb"},
		},
	})
	require.NoError(t, err)
	assert.True(t, c.HasField("ClimbStatus"))
	assert.Equal(t, 1.0, c.FoulRate(), "zero foul rate defaults to 1")
	assert.Equal(t, []string{"ClimbStatus"}, c.Fields())
}
