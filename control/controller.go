// Package control runs the configured number of rounds end to end: fresh
// connections and a fresh deadline each round, dispatching a RoundReport to
// the output renderer after each and a RunSummary after the last.
package control

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/nobias/nobias/bench"
	"github.com/nobias/nobias/config"
	"github.com/nobias/nobias/output"
	"github.com/nobias/nobias/protocol"
	"github.com/nobias/nobias/runtime"
	"github.com/nobias/nobias/stats"
	"github.com/nobias/nobias/transport"
	"github.com/nobias/nobias/uri"
)

// Controller owns one fully-resolved run: settings, target, and the
// collaborators needed to build a fresh client per connection per round.
type Controller struct {
	Settings  *config.Settings
	URI       *uri.ParsedURI
	Connector transport.Connector
	Renderer  output.Renderer
	Logger    zerolog.Logger
}

// Run executes Settings.Rounds rounds sequentially and returns the final
// RunSummary. Each round is an entirely independent benchmark: a new Pool,
// new clients, a new deadline.
func (c *Controller) Run(ctx context.Context) (*output.RunSummary, error) {
	proto := c.protocol()
	pcts := c.percentiles()

	reports := make([]stats.RoundReport, 0, c.Settings.Rounds)

	for round := 1; round <= c.Settings.Rounds; round++ {
		pool := &runtime.Pool{
			Threads:     c.Settings.Threads,
			Connections: c.Settings.Connections,
			Logger:      c.Logger,
			Rate: func(rps float64) {
				c.Logger.Info().Float64("rps", rps).Int("round", round).Msg("live rate")
			},
		}

		factory := func() *bench.Client {
			return &bench.Client{
				Connector:    c.Connector,
				Protocol:     proto,
				URI:          c.URI,
				Headers:      cloneHeaders(c.Settings.Headers),
				Deadline:     c.Settings.Duration,
				CapacityHint: 1024,
				Logger:       c.Logger,
			}
		}

		results, err := pool.Run(ctx, factory)
		if err != nil {
			return nil, err
		}

		merged := stats.Merge(results...)
		report := stats.Summarize(merged, pcts)
		reports = append(reports, report)

		if c.Renderer != nil {
			c.Renderer.Round(round, report)
		}
	}

	summary := output.Summarize(reports)
	if c.Renderer != nil {
		c.Renderer.Final(summary)
	}

	return summary, nil
}

func (c *Controller) protocol() protocol.Protocol {
	if c.Settings.HTTP2 {
		return protocol.HTTP2{}
	}
	return protocol.HTTP1{}
}

func (c *Controller) percentiles() []float64 {
	if !c.Settings.Percentiles {
		return nil
	}
	return stats.DefaultPercentiles
}

func cloneHeaders(h http.Header) http.Header {
	if h == nil {
		return http.Header{}
	}
	return h.Clone()
}
