// Package stats merges per-client results into a round-level report:
// throughput, byte rate, latency summary, and nearest-rank percentiles.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/nobias/nobias/bench"
)

// Merge concatenates every component WorkerResult's slices and sums their
// counters. Merge is associative and commutative: the result does not
// depend on the order results are passed in.
func Merge(results ...bench.WorkerResult) bench.WorkerResult {
	var merged bench.WorkerResult
	for _, r := range results {
		merged.TotalTimes = append(merged.TotalTimes, r.TotalTimes...)
		merged.RequestTimes = append(merged.RequestTimes, r.RequestTimes...)
		merged.BufferSizes = append(merged.BufferSizes, r.BufferSizes...)
		merged.Success += r.Success
		merged.Error += r.Error
		merged.Dropped += r.Dropped
	}
	return merged
}

// LatencySummary holds the min/max/mean/stddev of a merged latency list.
type LatencySummary struct {
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	StdDev time.Duration
}

// RoundReport is the derived, reportable view of one merged WorkerResult.
type RoundReport struct {
	Success int
	Error   int
	Dropped int

	// ThroughputRPS is success / max(total_times) in seconds.
	ThroughputRPS float64

	// BytesPerSec is sum(buffer_sizes) / max(total_times) in seconds.
	BytesPerSec float64

	Latency LatencySummary

	// Percentiles maps a requested percentile (e.g. 50, 99, 99.9) to its
	// nearest-rank value. Populated only for the percentiles passed to
	// Summarize.
	Percentiles map[float64]time.Duration
}

// DefaultPercentiles is the minimum set spec §4.7 requires when percentile
// reporting is enabled.
var DefaultPercentiles = []float64{50, 75, 90, 95, 99, 99.9}

// Summarize computes a RoundReport from a merged WorkerResult. pcts may be
// nil, in which case Percentiles is left empty (the --pct flag is off).
func Summarize(merged bench.WorkerResult, pcts []float64) RoundReport {
	report := RoundReport{
		Success: merged.Success,
		Error:   merged.Error,
		Dropped: merged.Dropped,
	}

	maxTotal := maxDuration(merged.TotalTimes)
	if maxTotal > 0 {
		report.ThroughputRPS = float64(merged.Success) / maxTotal.Seconds()
		report.BytesPerSec = float64(sumUint64(merged.BufferSizes)) / maxTotal.Seconds()
	}

	sorted := append([]time.Duration(nil), merged.RequestTimes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	report.Latency = summarizeLatency(sorted)

	if len(pcts) > 0 {
		report.Percentiles = make(map[float64]time.Duration, len(pcts))
		for _, p := range pcts {
			report.Percentiles[p] = Percentile(sorted, p)
		}
	}

	return report
}

// Percentile returns the nearest-rank p-th percentile of an already-sorted
// (ascending) latency slice: the value at index ⌈p·N/100⌉−1, clamped to the
// slice bounds. An empty slice yields 0.
func Percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	n := len(sorted)
	rank := int(math.Ceil(p*float64(n)/100)) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= n {
		rank = n - 1
	}
	return sorted[rank]
}

func summarizeLatency(sorted []time.Duration) LatencySummary {
	if len(sorted) == 0 {
		return LatencySummary{}
	}

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}
	mean := sum / time.Duration(len(sorted))

	var variance float64
	if len(sorted) > 1 {
		for _, d := range sorted {
			diff := float64(d - mean)
			variance += diff * diff
		}
		variance /= float64(len(sorted) - 1)
	}

	return LatencySummary{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   mean,
		StdDev: time.Duration(math.Sqrt(variance)),
	}
}

func maxDuration(ds []time.Duration) time.Duration {
	var max time.Duration
	for _, d := range ds {
		if d > max {
			max = d
		}
	}
	return max
}

func sumUint64(vs []uint64) uint64 {
	var sum uint64
	for _, v := range vs {
		sum += v
	}
	return sum
}
