package cli

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"benchd/internal/config"
)

// defaultConfig mirrors the original benchmark's defaults: burst arrivals,
// a thousand prompts, a 3-hour request timeout.
func defaultConfig() config.Config {
	return config.Config{
		Host:        "localhost",
		Port:        8000,
		Backend:     "vllm",
		NumPrompts:  1000,
		RequestRate: 0, // burst
		BestOf:      1,
		TimeoutSec:  3 * 3600,
		LogLevel:    "info",
	}
}

func envStr(key string, cur string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return cur
}

func envInt(key string, cur int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return cur
}

// applyEnv overlays BENCHD_* environment variables on cfg.
func applyEnv(cfg *config.Config) {
	cfg.Host = envStr("BENCHD_HOST", cfg.Host)
	cfg.Port = envInt("BENCHD_PORT", cfg.Port)
	cfg.Backend = envStr("BENCHD_BACKEND", cfg.Backend)
	cfg.Model = envStr("BENCHD_MODEL", cfg.Model)
	cfg.Dataset = envStr("BENCHD_DATASET", cfg.Dataset)
	cfg.DBPath = envStr("BENCHD_DB", cfg.DBPath)
	cfg.LogLevel = envStr("BENCHD_LOG_LEVEL", cfg.LogLevel)
}

// flagSet reports whether the user passed the named flag on cmd or any parent.
func flagSet(cmd *cobra.Command, name string) bool {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := cmd.InheritedFlags().Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}

// mergeConfig overlays the non-zero fields of src on dst, skipping fields the
// user already set via flags.
func mergeConfig(cmd *cobra.Command, dst *config.Config, src config.Config) {
	if src.Host != "" && !flagSet(cmd, "host") {
		dst.Host = src.Host
	}
	if src.Port != 0 && !flagSet(cmd, "port") {
		dst.Port = src.Port
	}
	if src.Backend != "" && !flagSet(cmd, "backend") {
		dst.Backend = src.Backend
	}
	if src.Model != "" && !flagSet(cmd, "model") {
		dst.Model = src.Model
	}
	if src.Dataset != "" && !flagSet(cmd, "dataset") {
		dst.Dataset = src.Dataset
	}
	if src.NumPrompts != 0 && !flagSet(cmd, "num-prompts") {
		dst.NumPrompts = src.NumPrompts
	}
	if src.RequestRate != 0 && !flagSet(cmd, "request-rate") {
		dst.RequestRate = src.RequestRate
	}
	if src.BestOf != 0 && !flagSet(cmd, "best-of") {
		dst.BestOf = src.BestOf
	}
	if src.Seed != 0 && !flagSet(cmd, "seed") {
		dst.Seed = src.Seed
	}
	if src.TimeoutSec != 0 && !flagSet(cmd, "timeout-sec") {
		dst.TimeoutSec = src.TimeoutSec
	}
	if src.Concurrency != 0 && !flagSet(cmd, "concurrency") {
		dst.Concurrency = src.Concurrency
	}
	if src.OutputPath != "" && !flagSet(cmd, "output") {
		dst.OutputPath = src.OutputPath
	}
	if src.DBPath != "" && !flagSet(cmd, "db") {
		dst.DBPath = src.DBPath
	}
	if src.LogLevel != "" && !flagSet(cmd, "log-level") {
		dst.LogLevel = src.LogLevel
	}
}
