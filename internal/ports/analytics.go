package ports

import "github.com/ahrav/go-scout/internal/domain"

// StatResolver answers single-team and single-match field lookups.
type StatResolver interface {
	// Average returns the mean of key across the team's records that
	// define it.
	Average(team int, key string) (float64, error)

	// Values returns the team's numeric readings of key in match order.
	Values(team int, key string) ([]float64, error)

	// ScoredAverage returns the mean of key after translating every value
	// through crit.
	ScoredAverage(team int, key string, crit domain.CriteriaMap) (float64, error)

	// AverageGridScore returns the team's mean grid score in phase.
	AverageGridScore(team int, phase domain.Phase) (float64, error)

	// AllianceMatchValue combines key across every team on color in one
	// match.
	AllianceMatchValue(matchKey, key string, color domain.Alliance, reduce domain.Reduction) (float64, error)
}

// PointsSource derives scoring points from the raw field set.
type PointsSource interface {
	// PointsByMatch returns the team's points per match, in match order.
	PointsByMatch(team int, scope domain.Scope) ([]float64, error)

	// AveragePoints returns the mean of PointsByMatch.
	AveragePoints(team int, scope domain.Scope) (float64, error)
}

// MatchupEvaluator compares alliance groups.
type MatchupEvaluator interface {
	// WinProbability is the percentage of aligned matches in which a's
	// combined series strictly beats b's.
	WinProbability(a, b domain.AllianceGroup, source SeriesSource) (float64, error)

	// WinOdds is the probability in [0, 1] that red outscores blue,
	// modelling each team's points as a normal distribution.
	WinOdds(red, blue domain.AllianceGroup) (float64, error)

	// PredictedScore is the group's expected score including fouls.
	PredictedScore(group domain.AllianceGroup, scope domain.Scope) (float64, error)
}

// Analytics is the full query surface formulas are compiled against.
type Analytics interface {
	StatResolver
	PointsSource
	MatchupEvaluator

	// Catalog returns the ruleset the engine was built with.
	Catalog() *domain.Catalog
}
