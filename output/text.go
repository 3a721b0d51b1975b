package output

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/nobias/nobias/stats"
)

// TextRenderer prints a human-readable summary per round and at the end of
// the run. It is the default renderer when --json is not set.
type TextRenderer struct {
	Out io.Writer
}

var _ Renderer = (*TextRenderer)(nil)

func (t *TextRenderer) Round(n int, report stats.RoundReport) {
	fmt.Fprintf(t.Out, "Round %d: %d success, %d error, %d dropped, %.1f req/s, %.1f bytes/s\n",
		n, report.Success, report.Error, report.Dropped, report.ThroughputRPS, report.BytesPerSec)
	fmt.Fprintf(t.Out, "  latency: min=%s max=%s mean=%s stddev=%s\n",
		report.Latency.Min, report.Latency.Max, report.Latency.Mean, report.Latency.StdDev)

	if len(report.Percentiles) == 0 {
		return
	}
	fmt.Fprintln(t.Out, "  percentiles:")
	for _, p := range sortedPercentileKeys(report.Percentiles) {
		fmt.Fprintf(t.Out, "    p%-5g %s\n", p, report.Percentiles[p])
	}
}

func (t *TextRenderer) Final(summary *RunSummary) {
	fmt.Fprintf(t.Out, "Run %s: %d round(s), mean %.1f req/s (stddev %.1f), mean p99 %s (stddev %s)\n",
		summary.ID, len(summary.Rounds), summary.MeanThroughputRPS, summary.StdDevThroughput,
		summary.MeanP99, summary.StdDevP99)
}

func sortedPercentileKeys(m map[float64]time.Duration) []float64 {
	keys := make([]float64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys
}
