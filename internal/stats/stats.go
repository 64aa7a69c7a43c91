// Package stats aggregates benchmark results into run summaries.
package stats

import (
	"sort"
	"time"

	"benchd/pkg/types"
)

// Summarize computes aggregate latency and throughput over the successful
// results of a run. Failed results (non-empty Err) are excluded from latency
// math but the throughput denominator is the full wall-clock duration.
func Summarize(results []types.Result, total time.Duration) types.Summary {
	s := types.Summary{TotalSeconds: total.Seconds()}

	latencies := make([]float64, 0, len(results))
	var sumLatency, sumPerToken, sumPerOutputToken float64
	for _, r := range results {
		if r.Err != "" {
			continue
		}
		latencies = append(latencies, r.LatencySeconds)
		sumLatency += r.LatencySeconds
		if n := r.PromptTokens + r.OutputTokens; n > 0 {
			sumPerToken += r.LatencySeconds / float64(n)
		}
		if r.OutputTokens > 0 {
			sumPerOutputToken += r.LatencySeconds / float64(r.OutputTokens)
		}
	}
	s.NumRequests = len(latencies)
	if s.NumRequests == 0 {
		return s
	}
	if s.TotalSeconds > 0 {
		s.Throughput = float64(s.NumRequests) / s.TotalSeconds
	}
	n := float64(s.NumRequests)
	s.AvgLatency = sumLatency / n
	s.AvgPerTokenLatency = sumPerToken / n
	s.AvgPerOutputTokenLatency = sumPerOutputToken / n

	sort.Float64s(latencies)
	s.MinLatency = latencies[0]
	s.MaxLatency = latencies[len(latencies)-1]
	s.P50Latency = quantile(latencies, 0.50)
	s.P90Latency = quantile(latencies, 0.90)
	s.P99Latency = quantile(latencies, 0.99)
	return s
}

// quantile returns the nearest-rank quantile of sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(q*float64(len(sorted))+0.5) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}
