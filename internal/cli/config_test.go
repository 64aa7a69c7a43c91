package cli

import (
	"testing"

	"github.com/spf13/cobra"

	"benchd/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	if cfg.Host != "localhost" || cfg.Port != 8000 || cfg.Backend != "vllm" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.NumPrompts != 1000 || cfg.RequestRate != 0 || cfg.BestOf != 1 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.TimeoutSec != 3*3600 {
		t.Fatalf("timeout default: %d", cfg.TimeoutSec)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("BENCHD_HOST", "envhost")
	t.Setenv("BENCHD_PORT", "9001")
	t.Setenv("BENCHD_BACKEND", "tgi")
	t.Setenv("BENCHD_LOG_LEVEL", "debug")

	cfg := defaultConfig()
	applyEnv(&cfg)
	if cfg.Host != "envhost" || cfg.Port != 9001 || cfg.Backend != "tgi" || cfg.LogLevel != "debug" {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestApplyEnvIgnoresBadInt(t *testing.T) {
	t.Setenv("BENCHD_PORT", "not-a-number")
	cfg := defaultConfig()
	applyEnv(&cfg)
	if cfg.Port != 8000 {
		t.Fatalf("bad int should keep default, got %d", cfg.Port)
	}
}

func TestMergeConfig(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	dst := defaultConfig()
	mergeConfig(cmd, &dst, config.Config{Backend: "triton", Model: "opt-125m", RequestRate: 2.5, DBPath: "runs.db"})
	if dst.Backend != "triton" || dst.Model != "opt-125m" || dst.RequestRate != 2.5 || dst.DBPath != "runs.db" {
		t.Fatalf("merge failed: %+v", dst)
	}
	// untouched fields keep their defaults
	if dst.Host != "localhost" || dst.NumPrompts != 1000 {
		t.Fatalf("merge clobbered defaults: %+v", dst)
	}
}

func TestMergeConfigRespectsFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var backend string
	cmd.Flags().StringVar(&backend, "backend", "vllm", "")
	if err := cmd.Flags().Set("backend", "tgi"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	dst := defaultConfig()
	dst.Backend = "tgi"
	mergeConfig(cmd, &dst, config.Config{Backend: "triton", Model: "opt-125m"})
	if dst.Backend != "tgi" {
		t.Fatalf("file overrode explicit flag: %+v", dst)
	}
	if dst.Model != "opt-125m" {
		t.Fatalf("unset field not merged: %+v", dst)
	}
}

func TestRootCommandTree(t *testing.T) {
	root := buildRootCmd()
	want := map[string]bool{"run": false, "report": false, "serve": false, "version": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestRunValidation(t *testing.T) {
	root := buildRootCmd()
	root.SetArgs([]string{"run", "--backend", "bogus", "--dataset", "x.json"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected unknown backend error")
	}

	root = buildRootCmd()
	root.SetArgs([]string{"run", "--backend", "vllm"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected missing dataset error")
	}

	root = buildRootCmd()
	root.SetArgs([]string{"run", "--backend", "triton", "--dataset", "x.json"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected missing model error")
	}
}

func TestReportRequiresDB(t *testing.T) {
	root := buildRootCmd()
	root.SetArgs([]string{"report"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected missing db error")
	}
}
