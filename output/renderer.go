// Package output renders RoundReports and the final RunSummary, either as
// a human-readable table or as machine-readable JSON.
package output

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/nobias/nobias/stats"
)

// Renderer receives one callback per completed round, then one final
// callback after every round has run.
type Renderer interface {
	Round(n int, report stats.RoundReport)
	Final(summary *RunSummary)
}

// RunSummary is the cross-round aggregate spec §4.8 describes, plus a
// correlation ID so JSON output from repeated invocations can be matched up
// by downstream tooling.
type RunSummary struct {
	ID     uuid.UUID
	Rounds []stats.RoundReport

	MeanThroughputRPS float64
	StdDevThroughput  float64
	MeanP99           time.Duration
	StdDevP99         time.Duration
}

// Summarize builds a RunSummary from every round's report. p99 is read from
// each report's Percentiles map when present (only meaningful if --pct was
// on); it is zero otherwise.
func Summarize(rounds []stats.RoundReport) *RunSummary {
	summary := &RunSummary{ID: newID(), Rounds: rounds}
	if len(rounds) == 0 {
		return summary
	}

	throughputs := make([]float64, len(rounds))
	p99s := make([]float64, len(rounds))
	for i, r := range rounds {
		throughputs[i] = r.ThroughputRPS
		if r.Percentiles != nil {
			p99s[i] = float64(r.Percentiles[99])
		}
	}

	summary.MeanThroughputRPS, summary.StdDevThroughput = meanStdDev(throughputs)
	meanP99, stdP99 := meanStdDev(p99s)
	summary.MeanP99 = time.Duration(meanP99)
	summary.StdDevP99 = time.Duration(stdP99)

	return summary
}

func meanStdDev(vs []float64) (mean, stddev float64) {
	if len(vs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	mean = sum / float64(len(vs))

	if len(vs) < 2 {
		return mean, 0
	}
	var variance float64
	for _, v := range vs {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(vs) - 1)

	return mean, math.Sqrt(variance)
}

func newID() uuid.UUID {
	return uuid.New()
}
