package cli

import (
	"context"
	"fmt"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"benchd/internal/client"
	"benchd/internal/config"
	"benchd/internal/dataset"
	"benchd/internal/report"
	"benchd/internal/runner"
	"benchd/internal/stats"
	"benchd/internal/store"
	"benchd/internal/token"
	"benchd/pkg/types"
)

func buildRunCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the online serving throughput benchmark",
		Example: "  benchd run --dataset sharegpt.json --backend vllm --num-prompts 500\n" +
			"  benchd run --dataset sharegpt.json --backend triton --model opt-125m --request-rate 4",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(cmd.Context(), *cfg)
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.Host, "host", cfg.Host, "Endpoint host")
	f.IntVar(&cfg.Port, "port", cfg.Port, "Endpoint port")
	f.StringVar(&cfg.Backend, "backend", cfg.Backend, "Backend wire format: vllm|tgi|triton")
	f.StringVar(&cfg.Model, "model", cfg.Model, "Model name (required for triton URLs)")
	f.StringVar(&cfg.Dataset, "dataset", cfg.Dataset, "Path to the ShareGPT-format dataset")
	f.IntVar(&cfg.NumPrompts, "num-prompts", cfg.NumPrompts, "Number of prompts to process")
	f.Float64Var(&cfg.RequestRate, "request-rate", cfg.RequestRate,
		"Requests per second; 0 sends all requests at time 0, otherwise arrivals follow a Poisson process")
	f.IntVar(&cfg.BestOf, "best-of", cfg.BestOf, "Generate best_of sequences per prompt and return the best one")
	f.Int64Var(&cfg.Seed, "seed", cfg.Seed, "RNG seed for sampling and arrival pacing")
	f.IntVar(&cfg.TimeoutSec, "timeout-sec", cfg.TimeoutSec, "Per-request timeout in seconds, retries included")
	f.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Max in-flight requests (0 = unlimited)")
	f.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "Completions file path (default outputs-<backend>.jsonl)")
	f.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database to persist the run (optional)")
	return cmd
}

func runBenchmark(ctx context.Context, cfg config.Config) error {
	log := newLogger(cfg.LogLevel)
	backend := types.Backend(cfg.Backend)
	if !backend.Valid() {
		return fmt.Errorf("unknown backend %q (want vllm, tgi or triton)", cfg.Backend)
	}
	if cfg.Dataset == "" {
		return fmt.Errorf("--dataset is required")
	}
	if backend == types.BackendTriton && cfg.Model == "" {
		return fmt.Errorf("--model is required for the triton backend")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := dataset.Load(cfg.Dataset, token.NewHeuristic())
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	reqs, err := dataset.Sample(pool, cfg.NumPrompts, rng)
	if err != nil {
		return err
	}
	log.Info().
		Int("pool", len(pool)).
		Int("sampled", len(reqs)).
		Str("backend", cfg.Backend).
		Float64("request_rate", cfg.RequestRate).
		Msg("dataset ready")

	c, err := client.New(client.Options{
		Backend: backend,
		BaseURL: fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port),
		Model:   cfg.Model,
		BestOf:  cfg.BestOf,
		Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		Logger:  log,
	})
	if err != nil {
		return err
	}
	log.Info().Str("url", c.URL()).Msg("benchmark starting")

	started := time.Now()
	r := runner.New(c, runner.Options{
		RequestRate: cfg.RequestRate,
		Concurrency: cfg.Concurrency,
		Seed:        cfg.Seed,
		Logger:      log,
	})
	outcome, err := r.Run(ctx, reqs)
	if err != nil {
		return err
	}

	summary := stats.Summarize(outcome.Results, outcome.Total)
	run := store.NewRunRecord(outcome.RunID, backend, cfg.Model, started,
		outcome.Total.Seconds(), len(outcome.Results), cfg.RequestRate, cfg.Seed)

	outputPath := cfg.OutputPath
	if outputPath == "" {
		outputPath = report.DefaultOutputPath(backend)
	}
	if err := report.WriteOutputs(outputPath, outcome.Results); err != nil {
		return err
	}
	log.Info().Str("path", outputPath).Msg("completions written")

	if cfg.DBPath != "" {
		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.SaveRun(ctx, run, outcome.Results); err != nil {
			return fmt.Errorf("persist run: %w", err)
		}
		log.Info().Str("db", cfg.DBPath).Str("run_id", run.ID).Msg("run persisted")
	}

	report.LogSummary(log, run, summary)
	return nil
}
