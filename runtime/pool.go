// Package runtime spawns the parallel execution contexts that drive
// benchmark clients and partitions connections across them as evenly as
// possible, per round.
package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/paulbellamy/ratecounter"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nobias/nobias/bench"
)

// ClientFactory builds one fresh *bench.Client. The pool has no opinion on
// connectors, protocols, or headers — those are config concerns — it only
// knows how many clients to build and how to spread them across contexts.
type ClientFactory func() *bench.Client

// Pool spawns Threads execution contexts and distributes Connections client
// instances across them, per spec §4.6's partitioning rule.
type Pool struct {
	Threads     int
	Connections int
	Logger      zerolog.Logger

	// Rate, if non-nil, is called roughly once per second with a
	// requests/sec reading while the pool runs. A client's successes are
	// counted only once that client's Run has returned, so the reading
	// stays at zero while every client is still running. It is a live
	// display only — never the source of the authoritative throughput
	// figure, which stats.Summarize computes from the merged results.
	Rate func(rps float64)
}

// Run blocks until every client has returned a WorkerResult (successful or
// empty) and returns them in no particular order. A client-level failure
// never aborts the pool; it is recorded as an empty WorkerResult.
func (p *Pool) Run(ctx context.Context, factory ClientFactory) ([]bench.WorkerResult, error) {
	if p.Threads <= 0 {
		return nil, fmt.Errorf("runtime: threads must be positive, got %d", p.Threads)
	}
	if p.Connections <= 0 {
		return nil, fmt.Errorf("runtime: connections must be positive, got %d", p.Connections)
	}

	counter := ratecounter.NewRateCounter(time.Second)
	stopRate := make(chan struct{})
	if p.Rate != nil {
		go p.displayRate(counter, stopRate)
	}
	defer close(stopRate)

	results := make([]bench.WorkerResult, p.Connections)

	g, gctx := errgroup.WithContext(ctx)
	assigned := 0
	for i := 0; i < p.Threads; i++ {
		share := p.Connections / p.Threads
		if i < p.Connections%p.Threads {
			share++
		}
		slot := results[assigned : assigned+share]
		assigned += share

		g.Go(func() error {
			return p.runContext(gctx, factory, counter, slot)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// runContext cooperatively drives every client assigned to one execution
// context. Clients within a context fan out onto their own goroutines too —
// Go's M:N scheduler, not this code, decides whether that's "cooperative" or
// "parallel" in the OS-thread sense; either reading satisfies spec §4.6.
func (p *Pool) runContext(ctx context.Context, factory ClientFactory, counter *ratecounter.RateCounter, slot []bench.WorkerResult) error {
	g, cctx := errgroup.WithContext(ctx)
	for i := range slot {
		i := i
		g.Go(func() error {
			c := factory()
			res, err := c.Run(cctx)
			if err != nil {
				p.Logger.Error().Err(err).Msg("client run failed, recording an empty result")
				return nil
			}
			if counter != nil {
				counter.Incr(int64(res.Success))
			}
			slot[i] = res
			return nil
		})
	}
	return g.Wait()
}

func (p *Pool) displayRate(counter *ratecounter.RateCounter, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.Rate(float64(counter.Rate()))
		case <-stop:
			return
		}
	}
}
