package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/odestep/internal/dynamo"
)

// Ensemble runs independent simulators concurrently. Each member must own
// its integrator; integrators are not safe to share between goroutines.
type Ensemble struct {
	members []*Simulator
	limit   int
}

// NewEnsemble runs at most limit members at once; limit <= 0 means no limit.
func NewEnsemble(limit int) *Ensemble {
	return &Ensemble{limit: limit}
}

func (e *Ensemble) Add(s *Simulator) { e.members = append(e.members, s) }

func (e *Ensemble) Len() int { return len(e.members) }

// Run returns results in the order members were added. The first failure
// cancels the members still running.
func (e *Ensemble) Run(ctx context.Context, cfg dynamo.Config) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, len(e.members))

	g, gctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i, s := range e.members {
		i, s := i, s
		g.Go(func() error {
			res, err := s.Run(gctx, cfg)
			results[i] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
