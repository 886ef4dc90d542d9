// Package worker runs upstream fetch jobs on a bounded pool.
package worker

import (
	"context"
	"errors"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/pokerleague/pkg/logger"
	"github.com/okian/pokerleague/pkg/metrics"
)

// Pool bounds how many jobs run at once.
type Pool struct {
	size   int
	name   string
	logger logger.Logger
}

// NewPool creates a pool running at most size jobs concurrently. A size
// below 1 uses runtime.NumCPU().
func NewPool(size int, opts ...Option) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
	}

	p := &Pool{
		size: size,
		name: "fetch-pool",
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named(p.name)
	}

	metrics.UpdatePoolConcurrency(size)
	return p
}

// Size returns the concurrency bound.
func (p *Pool) Size() int {
	return p.size
}

// Run calls fn for every input with bounded concurrency and returns the
// results in input order. The first failure cancels the jobs still running
// or waiting and is returned.
func Run[In, Out any](ctx context.Context, p *Pool, inputs []In, fn func(context.Context, In) (Out, error)) ([]Out, error) {
	out := make([]Out, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.size)

	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				metrics.RecordPoolJob("canceled", 0)
				return err
			}
			res, err := runJob(gctx, p, func(ctx context.Context) (Out, error) { return fn(ctx, in) })
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Result is the outcome of one job run by Settle.
type Result[Out any] struct {
	Value Out
	Err   error
}

// Settle is Run without fail-fast: every input is attempted and each result
// carries its own error.
func Settle[In, Out any](ctx context.Context, p *Pool, inputs []In, fn func(context.Context, In) (Out, error)) []Result[Out] {
	out := make([]Result[Out], len(inputs))

	var g errgroup.Group
	g.SetLimit(p.size)

	for i, in := range inputs {
		g.Go(func() error {
			v, err := runJob(ctx, p, func(ctx context.Context) (Out, error) { return fn(ctx, in) })
			out[i] = Result[Out]{Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func runJob[Out any](ctx context.Context, p *Pool, job func(context.Context) (Out, error)) (Out, error) {
	start := time.Now()
	v, err := job(ctx)
	latency := float64(time.Since(start).Milliseconds())

	switch {
	case err == nil:
		metrics.RecordPoolJob("ok", latency)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		metrics.RecordPoolJob("canceled", latency)
	default:
		metrics.RecordPoolJob("error", latency)
		p.logger.Debug(ctx, "job failed", logger.Error(err))
	}
	return v, err
}
