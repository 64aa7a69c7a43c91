// Package runner paces and dispatches benchmark requests against an endpoint.
package runner

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"benchd/pkg/types"
)

// Sender issues one measured request. Satisfied by *client.Client.
type Sender interface {
	Send(ctx context.Context, req types.Request) (types.Result, error)
}

// Options configures a benchmark run.
type Options struct {
	// RequestRate is the Poisson arrival rate in requests/sec.
	// Zero, negative or +Inf launches every request immediately (burst mode).
	RequestRate float64
	// Concurrency caps in-flight requests. Zero means unlimited.
	Concurrency int
	// Seed drives the arrival interval RNG.
	Seed   int64
	Logger zerolog.Logger
}

// Outcome is the raw product of a run before aggregation.
type Outcome struct {
	// RunID uniquely identifies this run.
	RunID string
	// Results in completion order. Failed requests carry a non-empty Err.
	Results []types.Result
	// Total wall-clock duration from first launch to last completion.
	Total time.Duration
}

// Runner drives one benchmark run.
type Runner struct {
	sender Sender
	opts   Options
}

// New builds a Runner.
func New(sender Sender, opts Options) *Runner {
	return &Runner{sender: sender, opts: opts}
}

// burst reports whether pacing is disabled.
func (r *Runner) burst() bool {
	return r.opts.RequestRate <= 0 || math.IsInf(r.opts.RequestRate, 1)
}

// Run sends every request, pacing launches by the arrival process, and
// collects results in completion order. Per-request failures are recorded in
// the Result rather than aborting the run; only context cancellation stops
// the benchmark early.
func (r *Runner) Run(ctx context.Context, reqs []types.Request) (Outcome, error) {
	out := Outcome{RunID: uuid.NewString()}
	if len(reqs) == 0 {
		return out, nil
	}
	log := r.opts.Logger.With().Str("run_id", out.RunID).Logger()
	rng := rand.New(rand.NewSource(r.opts.Seed))

	resultCh := make(chan types.Result, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	if r.opts.Concurrency > 0 {
		g.SetLimit(r.opts.Concurrency)
	}

	start := time.Now()
launch:
	for i, req := range reqs {
		req := req
		g.Go(func() error {
			res, err := r.sender.Send(gctx, req)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warn().Err(err).Msg("request failed")
				res = types.Result{
					Prompt:       req.Prompt,
					PromptTokens: req.PromptTokens,
					OutputTokens: req.OutputTokens,
					Err:          err.Error(),
				}
			}
			resultCh <- res
			return nil
		})
		if r.burst() || i == len(reqs)-1 {
			continue
		}
		// Arrival intervals are exponential, so launches form a Poisson process.
		interval := time.Duration(rng.ExpFloat64() / r.opts.RequestRate * float64(time.Second))
		select {
		case <-time.After(interval):
		case <-gctx.Done():
			break launch
		}
	}

	err := g.Wait()
	out.Total = time.Since(start)
	close(resultCh)
	for res := range resultCh {
		out.Results = append(out.Results, res)
	}
	if err != nil {
		return out, err
	}
	if ctx.Err() != nil {
		return out, ctx.Err()
	}
	log.Info().Int("results", len(out.Results)).Dur("total", out.Total).Msg("run complete")
	return out, nil
}
