package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"benchd/internal/config"
	"benchd/internal/report"
	"benchd/internal/stats"
	"benchd/internal/store"
)

func buildReportCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [run-id]",
		Short: "List persisted runs or summarize one run",
		Example: "  benchd report --db runs.db\n" +
			"  benchd report --db runs.db 4f7c0a1e-...",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.DBPath == "" {
				return fmt.Errorf("--db is required")
			}
			if len(args) == 1 {
				return reportRun(cmd.Context(), *cfg, args[0])
			}
			return listRuns(cmd.Context(), *cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database holding persisted runs")
	return cmd
}

func listRuns(ctx context.Context, cfg config.Config) error {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, r := range runs {
		started := time.Unix(r.StartedUnix, 0).Format(time.RFC3339)
		fmt.Printf("%s  %-7s %-16s %s  %d reqs  %.2fs\n",
			r.ID, r.Backend, r.Model, started, r.NumRequests, r.TotalSeconds)
	}
	return nil
}

func reportRun(ctx context.Context, cfg config.Config, id string) error {
	log := newLogger(cfg.LogLevel)
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	run, results, err := st.LoadRun(ctx, id)
	if err != nil {
		return err
	}
	summary := stats.Summarize(results, time.Duration(run.TotalSeconds*float64(time.Second)))
	report.LogSummary(log, run, summary)
	return nil
}
