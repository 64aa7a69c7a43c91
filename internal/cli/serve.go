package cli

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"benchd/internal/config"
	"benchd/internal/mockserver"
)

func buildServeCmd(cfg *config.Config) *cobra.Command {
	var addr string
	var tokenDelay time.Duration
	var errorRate float64
	var corsOrigins []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a mock generate endpoint for development and testing",
		Example: "  benchd serve --addr :8000 --token-delay 5ms\n" +
			"  benchd serve --error-rate 0.1",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cfg.LogLevel)
			srv := mockserver.New(mockserver.Options{
				TokenDelay:  tokenDelay,
				ErrorRate:   errorRate,
				Seed:        cfg.Seed,
				CORSOrigins: corsOrigins,
				Logger:      log,
			})
			httpSrv := &http.Server{Addr: addr, Handler: srv.Handler()}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", addr).Dur("token_delay", tokenDelay).Float64("error_rate", errorRate).Msg("mock server listening")
				if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("graceful shutdown")
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&addr, "addr", ":8000", "HTTP listen address")
	f.DurationVar(&tokenDelay, "token-delay", 0, "Simulated decode time per generated token")
	f.Float64Var(&errorRate, "error-rate", 0, "Probability of injecting an error body per request")
	f.StringSliceVar(&corsOrigins, "cors-origin", nil, "Allowed CORS origins (repeatable); empty disables CORS")
	return cmd
}
