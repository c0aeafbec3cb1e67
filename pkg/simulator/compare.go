package simulator

import (
	"context"
	"f1strategybot/pkg/strategy"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Compare simulates every scenario concurrently. Results keep the order of
// scenarios; nothing is ranked.
func (s *Simulator) Compare(ctx context.Context, scenarios strategy.Scenarios, totalLaps int) ([]Result, error) {
	results := make([]Result, len(scenarios))
	g, ctx := errgroup.WithContext(ctx)
	for i, sc := range scenarios {
		i, sc := i, sc
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := s.Simulate(sc.Strategy, totalLaps)
			if err != nil {
				return errors.Wrapf(err, "scenario %s", sc.ID)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
