// Package testutils provides shared record fixtures and helpers for
// package tests.
package testutils

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-scout/internal/domain"
	"github.com/ahrav/go-scout/internal/store"
)

// Teams in the sample event. RedTeams and BlueTeams played together in
// qm1 and qm2.
var (
	RedTeams  = domain.AllianceGroup{4099, 118, 180}
	BlueTeams = domain.AllianceGroup{254, 1678, 971}
)

// SpectatorTeam has a single record with no alliance and no scoring fields.
const SpectatorTeam = 5000

// Rec builds one raw record the way a decoded JSON document looks.
func Rec(match string, team int, alliance string, fields map[string]any) map[string]any {
	r := map[string]any{
		store.KeyMatchKey:   match,
		store.KeyTeamNumber: float64(team),
	}
	if alliance != "" {
		r[store.KeyAlliance] = alliance
	}
	for k, v := range fields {
		r[k] = v
	}
	return r
}

func grid(codes ...string) []any {
	out := make([]any, len(codes))
	for i, c := range codes {
		out[i] = c
	}
	return out
}

// SampleRecords returns a small 2023 event. Points under the default
// catalogue, per team in match order:
//
//	4099  [24 18 6]      auto [9 4 3]   teleop [15 14 3]
//	118   [22 16 4 9]
//	180   [2 12]
//	254   [35 14 0]
//	1678  [13 6]
//	971   [8 5]
//	5000  no scoring fields
//
// Red (4099,118,180) combined points are [48 46]; blue (254,1678,971)
// combined points are [56 25].
func SampleRecords() []map[string]any {
	return []map[string]any{
		Rec("qm1", 4099, "red", map[string]any{
			"AutoGrid": grid("1H"), "TeleopGrid": grid("2M", "3L"), "Mobile": true,
			"EndgameFinalCharge": "Engage", "DriverRating": 4.0, "DefenseRating": 2.0,
			"Auto": map[string]any{"Cones": 2.0, "Cubes": 1.0},
		}),
		Rec("qm1", 118, "red", map[string]any{
			"AutoGrid": grid("H1", "H2"), "TeleopGrid": grid("H3"), "Mobile": true,
			"EndgameFinalCharge": "Docked", "DriverRating": 3.0,
		}),
		Rec("qm1", 180, "red", map[string]any{
			"AutoGrid": grid(), "TeleopGrid": grid("1L"), "Mobile": false,
			"EndgameFinalCharge": "Parked", "DriverRating": 2.0,
		}),
		Rec("qm1", 254, "blue", map[string]any{
			"AutoGrid": grid("1H", "2H"), "TeleopGrid": grid("3H", "4H"), "Mobile": true,
			"EndgameFinalCharge": "Engage", "DriverRating": 5.0,
		}),
		Rec("qm1", 1678, "blue", map[string]any{
			"AutoGrid": grid("7L"), "TeleopGrid": grid(), "Mobile": false,
			"EndgameFinalCharge": "Engage", "DriverRating": 3.0,
		}),
		Rec("qm1", 971, "blue", map[string]any{
			"AutoGrid": grid(), "TeleopGrid": grid("9M"), "Mobile": true,
			"EndgameFinalCharge": "Docked", "DriverRating": 4.0,
		}),

		Rec("qm2", 4099, "red", map[string]any{
			"AutoGrid": grid("2M"), "TeleopGrid": grid("1H", "4H", "5L"), "Mobile": false,
			"EndgameFinalCharge": "Docked", "DriverRating": 5.0,
			"Auto": map[string]any{"Cones": 1.0},
		}),
		Rec("qm2", 118, "red", map[string]any{
			"AutoGrid": grid("L"), "TeleopGrid": grid(), "Mobile": true,
			"EndgameFinalCharge": "Engage", "DriverRating": 4.0,
		}),
		Rec("qm2", 180, "red", map[string]any{
			"AutoGrid": grid("3M"), "TeleopGrid": grid("2M"), "Mobile": true,
			"EndgameFinalCharge": "Docked", "DriverRating": 3.0,
		}),
		Rec("qm2", 254, "blue", map[string]any{
			"AutoGrid": grid("5M"), "TeleopGrid": grid("6H"), "Mobile": true,
			"EndgameFinalCharge": "Docked", "DriverRating": 5.0,
		}),
		Rec("qm2", 1678, "blue", map[string]any{
			"AutoGrid": grid(), "TeleopGrid": grid("8M"), "Mobile": true,
			"EndgameFinalCharge": "Parked", "DriverRating": 4.0,
		}),
		Rec("qm2", 971, "blue", map[string]any{
			"AutoGrid": grid("1L"), "TeleopGrid": grid("2L"), "Mobile": false,
			"EndgameFinalCharge": "None", "DriverRating": 2.0,
		}),

		Rec("qm3", 4099, "red", map[string]any{
			"AutoGrid": grid(), "TeleopGrid": grid("6M"), "Mobile": true,
			"EndgameFinalCharge": "None", "DriverRating": 3.0, "DefenseRating": 4.0,
		}),
		Rec("qm3", 118, "red", map[string]any{
			"AutoGrid": grid(), "TeleopGrid": grid("7L", "8L"), "Mobile": false,
			"EndgameFinalCharge": "Parked", "DriverRating": 2.0,
		}),
		Rec("qm3", 254, "blue", map[string]any{
			"AutoGrid": grid(), "TeleopGrid": grid(), "Mobile": false,
			"EndgameFinalCharge": "None", "DriverRating": "4",
		}),

		Rec("qm4", 118, "red", map[string]any{
			"AutoGrid": grid("9H"), "TeleopGrid": grid(), "Mobile": true,
			"EndgameFinalCharge": "None", "DriverRating": 4.0,
		}),
		Rec("qm4", SpectatorTeam, "", map[string]any{
			"DriverRating": 1.0, "AutoNotes": "no show",
		}),
	}
}

// SampleStore loads SampleRecords and fails the test on error.
func SampleStore(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.Load(SampleRecords())
	require.NoError(t, err)
	return s
}

// NewTestValidator creates a new validator instance for testing.
// This provides a consistent validator configuration across all tests.
func NewTestValidator() *validator.Validate {
	return validator.New()
}
