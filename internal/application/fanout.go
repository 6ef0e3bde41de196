package application

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-scout/internal/domain"
	"github.com/ahrav/go-scout/internal/ports"
)

// teamResult is the outcome of evaluating a formula for one team.
type teamResult struct {
	team   int
	value  float64
	noData bool
}

// defaultMaxConcurrency bounds formula fan-out when callers pass zero.
var defaultMaxConcurrency = runtime.GOMAXPROCS(0)

// evaluateTeams evaluates formula for every team concurrently. Teams
// whose evaluation reports domain.ErrNoData are marked rather than
// failing the whole batch; any other error cancels the remaining work.
// Results keep the order of teams.
func evaluateTeams(ctx context.Context, teams []int, formula ports.Formula, limit int) ([]teamResult, error) {
	if formula == nil {
		return nil, fmt.Errorf("%w: formula cannot be nil", domain.ErrInvalidConfiguration)
	}
	if limit <= 0 {
		limit = defaultMaxConcurrency
	}

	results := make([]teamResult, len(teams))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, team := range teams {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := formula.Evaluate(domain.TeamEntity(team))
			switch {
			case errors.Is(err, domain.ErrNoData):
				results[i] = teamResult{team: team, noData: true}
				return nil
			case err != nil:
				return fmt.Errorf("formula %s for team %d: %w", formula.Name(), team, err)
			}
			results[i] = teamResult{team: team, value: v}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
