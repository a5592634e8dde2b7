package sim

import (
	"context"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/parzivale/particlesim/internal/config"
	"github.com/parzivale/particlesim/internal/geom"
	"golang.org/x/sync/errgroup"
)

// Ensemble runs the same configuration under consecutive seeds.
type Ensemble struct {
	cfg       config.Config
	numRuns   int
	seedStart uint64
	limit     int
	log       *log.Logger
}

// NewEnsemble prepares numRuns runs seeded seedStart, seedStart+1, and so
// on. A zero seedStart is replaced by 1 so every run stays reproducible.
func NewEnsemble(cfg config.Config, numRuns int, seedStart uint64, logger *log.Logger) *Ensemble {
	if seedStart == 0 {
		seedStart = 1
	}
	return &Ensemble{
		cfg:       cfg,
		numRuns:   numRuns,
		seedStart: seedStart,
		limit:     runtime.GOMAXPROCS(0),
		log:       logger,
	}
}

// SetLimit caps how many runs execute at once. n <= 0 removes the cap.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

// Run executes every run with its own simulation and standard metrics.
// The first failure cancels the remaining runs. Results are in seed order.
func (e *Ensemble) Run(ctx context.Context, vp geom.Viewport, rc RunConfig) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			opts := []Option{WithSeed(e.seedStart + uint64(i))}
			if e.log != nil {
				opts = append(opts, WithLogger(e.log.With("run", i)))
			}
			s, err := New(e.cfg, opts...)
			if err != nil {
				return err
			}
			results[i], err = s.Run(ctx, vp, rc)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
