package sim

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Agrid-Dev/thermohouse/internal/house"
)

// HouseSpec is one member of an ensemble.
type HouseSpec struct {
	Engine    *house.Engine
	Config    Config
	Observers []Observer
}

// SourceFactory builds a fresh sample source per house. Sources are stateful
// and must not be shared between runs.
type SourceFactory func() (SampleSource, error)

// RunEnsemble simulates independent houses in parallel. Houses share no
// state; results are returned in the order of specs. limit <= 0 means no
// limit on concurrent runs.
func RunEnsemble(ctx context.Context, specs []HouseSpec, newSource SourceFactory, limit int, log *slog.Logger) ([]*Result, error) {
	results := make([]*Result, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, spec := range specs {
		g.Go(func() error {
			runner, err := New(spec.Engine, spec.Config, log)
			if err != nil {
				return err
			}
			for _, o := range spec.Observers {
				runner.AddObserver(o)
			}
			src, err := newSource()
			if err != nil {
				return err
			}
			res, err := runner.Run(gctx, src)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
