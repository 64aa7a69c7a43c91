// Package report writes benchmark outputs and prints run summaries.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"benchd/internal/fsutil"
	"benchd/pkg/types"
)

// outputLine is one row of the completions file.
type outputLine struct {
	Prompt string `json:"prompt"`
	Added  string `json:"added"`
}

// DefaultOutputPath returns the conventional completions file name for a backend.
func DefaultOutputPath(backend types.Backend) string {
	return fmt.Sprintf("outputs-%s.jsonl", backend)
}

// WriteOutputs writes one JSON line per successful result. Failed results
// have no completion text and are skipped.
func WriteOutputs(path string, results []types.Result) error {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return err
	}
	if err := fsutil.EnsureParentDir(p); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, r := range results {
		if r.Err != "" {
			continue
		}
		if err := enc.Encode(outputLine{Prompt: r.Prompt, Added: r.Added}); err != nil {
			return fmt.Errorf("encode output line: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output file: %w", err)
	}
	return f.Sync()
}

// ReadOutputs loads a completions file back; used by tests and tooling.
func ReadOutputs(path string) ([]types.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []types.Result
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var line outputLine
		if err := json.Unmarshal(sc.Bytes(), &line); err != nil {
			return nil, fmt.Errorf("parse output line: %w", err)
		}
		out = append(out, types.Result{Prompt: line.Prompt, Added: line.Added})
	}
	return out, sc.Err()
}

// LogSummary prints the aggregate stats of a finished run.
func LogSummary(log zerolog.Logger, run types.Run, s types.Summary) {
	failed := run.NumRequests - s.NumRequests
	log.Info().
		Str("run_id", run.ID).
		Str("backend", string(run.Backend)).
		Str("model", run.Model).
		Int("requests", s.NumRequests).
		Int("failed", failed).
		Float64("total_seconds", s.TotalSeconds).
		Float64("throughput_rps", s.Throughput).
		Float64("avg_latency_s", s.AvgLatency).
		Float64("avg_per_token_latency_s", s.AvgPerTokenLatency).
		Float64("avg_per_output_token_latency_s", s.AvgPerOutputTokenLatency).
		Float64("p50_latency_s", s.P50Latency).
		Float64("p90_latency_s", s.P90Latency).
		Float64("p99_latency_s", s.P99Latency).
		Msg("benchmark summary")
}
