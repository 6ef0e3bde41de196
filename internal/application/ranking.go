package application

import (
	"cmp"
	"context"
	"slices"

	"github.com/ahrav/go-scout/internal/ports"
)

// TeamLister enumerates the teams to rank.
type TeamLister interface {
	Teams() []int
}

// RankedTeam is one row of a pick list.
type RankedTeam struct {
	Rank  int     `json:"rank"`
	Team  int     `json:"team"`
	Value float64 `json:"value"`
}

// Ranking is a pick list for one formula.
type Ranking struct {
	Formula string       `json:"formula"`
	Teams   []RankedTeam `json:"teams"`
	// NoData lists teams the formula had no data for, ascending.
	NoData []int `json:"no_data"`
}

// Ranker orders teams by a formula's value.
type Ranker struct {
	teams TeamLister
	limit int
}

// NewRanker creates a ranker over teams. limit bounds concurrent
// evaluations; zero uses GOMAXPROCS.
func NewRanker(teams TeamLister, limit int) *Ranker {
	return &Ranker{teams: teams, limit: limit}
}

// Rank evaluates formula for every team concurrently and sorts teams by
// descending value, breaking ties by ascending team number. Teams
// reporting domain.ErrNoData are listed separately; any other error
// aborts the ranking.
func (r *Ranker) Rank(ctx context.Context, formula ports.Formula) (Ranking, error) {
	results, err := evaluateTeams(ctx, r.teams.Teams(), formula, r.limit)
	if err != nil {
		return Ranking{}, err
	}

	ranking := Ranking{Formula: formula.Name(), NoData: []int{}}
	for _, res := range results {
		if res.noData {
			ranking.NoData = append(ranking.NoData, res.team)
			continue
		}
		ranking.Teams = append(ranking.Teams, RankedTeam{Team: res.team, Value: res.value})
	}

	slices.SortFunc(ranking.Teams, func(a, b RankedTeam) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Team, b.Team)
	})
	for i := range ranking.Teams {
		ranking.Teams[i].Rank = i + 1
	}
	slices.Sort(ranking.NoData)
	return ranking, nil
}
