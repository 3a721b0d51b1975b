package output

import (
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/nobias/nobias/stats"
)

// JSONRenderer emits one JSON object per round and one for the final
// summary, each on its own line (--json).
type JSONRenderer struct {
	Out io.Writer
}

var _ Renderer = (*JSONRenderer)(nil)

type roundJSON struct {
	Round         int                `json:"round"`
	Success       int                `json:"success"`
	Error         int                `json:"error"`
	Dropped       int                `json:"dropped"`
	ThroughputRPS float64            `json:"throughput_rps"`
	BytesPerSec   float64            `json:"bytes_per_sec"`
	LatencyMinMs  float64            `json:"latency_min_ms"`
	LatencyMaxMs  float64            `json:"latency_max_ms"`
	LatencyMeanMs float64            `json:"latency_mean_ms"`
	LatencyStdDev float64            `json:"latency_stddev_ms"`
	PercentileMs  map[string]float64 `json:"percentiles_ms,omitempty"`
}

func (j *JSONRenderer) Round(n int, report stats.RoundReport) {
	out := roundJSON{
		Round:         n,
		Success:       report.Success,
		Error:         report.Error,
		Dropped:       report.Dropped,
		ThroughputRPS: report.ThroughputRPS,
		BytesPerSec:   report.BytesPerSec,
		LatencyMinMs:  msOf(report.Latency.Min),
		LatencyMaxMs:  msOf(report.Latency.Max),
		LatencyMeanMs: msOf(report.Latency.Mean),
		LatencyStdDev: msOf(report.Latency.StdDev),
	}
	if len(report.Percentiles) > 0 {
		out.PercentileMs = make(map[string]float64, len(report.Percentiles))
		for p, d := range report.Percentiles {
			out.PercentileMs[formatPercentile(p)] = msOf(d)
		}
	}

	enc := json.NewEncoder(j.Out)
	_ = enc.Encode(out)
}

type summaryJSON struct {
	ID                string  `json:"id"`
	Rounds            int     `json:"rounds"`
	MeanThroughputRPS float64 `json:"mean_throughput_rps"`
	StdDevThroughput  float64 `json:"stddev_throughput_rps"`
	MeanP99Ms         float64 `json:"mean_p99_ms"`
	StdDevP99Ms       float64 `json:"stddev_p99_ms"`
}

func (j *JSONRenderer) Final(summary *RunSummary) {
	out := summaryJSON{
		ID:                summary.ID.String(),
		Rounds:            len(summary.Rounds),
		MeanThroughputRPS: summary.MeanThroughputRPS,
		StdDevThroughput:  summary.StdDevThroughput,
		MeanP99Ms:         msOf(summary.MeanP99),
		StdDevP99Ms:       msOf(summary.StdDevP99),
	}

	enc := json.NewEncoder(j.Out)
	_ = enc.Encode(out)
}

func msOf(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func formatPercentile(p float64) string {
	return strconv.FormatFloat(p, 'g', -1, 64)
}
