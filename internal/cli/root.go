// Package cli wires the benchd command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"benchd/internal/buildinfo"
	"benchd/internal/config"
)

// Execute runs the root command.
func Execute() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	var configPath string

	// Environment variables act as flag defaults; explicit flags win.
	cfg := defaultConfig()
	applyEnv(&cfg)

	root := &cobra.Command{
		Use:           "benchd",
		Short:         "Serving throughput benchmark for LLM generate endpoints",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to a yaml/json/toml config file")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error (defaults BENCHD_LOG_LEVEL or info)")

	// The config file fills in only fields the user did not set on the
	// command line, keeping flags > file > env > defaults precedence.
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			return nil
		}
		fileCfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		mergeConfig(cmd, &cfg, fileCfg)
		return nil
	}

	root.AddCommand(buildRunCmd(&cfg))
	root.AddCommand(buildReportCmd(&cfg))
	root.AddCommand(buildServeCmd(&cfg))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(buildinfo.String())
		},
	})
	return root
}

// newLogger builds the process logger from the configured level.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}
