package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rentalfigs/internal/config"
	transporthttp "rentalfigs/internal/transport/http"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the rendered figures over HTTP",
		Long: `Serve a gallery of the figures in the output directory.

Routes: / (gallery), /api/health, /api/figures, /api/figures/{name},
/api/manifest and /metrics when metrics are enabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			a, err := newApp(rootOpts, func(cfg *config.Config) {
				if flags.Changed("addr") {
					cfg.Server.Addr = addr
				}
			})
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			router := transporthttp.NewRouter(a.paths, a.cfg.Server, a.providers, a.logger)
			return serve(ctx, transporthttp.NewServer(a.cfg.Server, router), a.cfg.Server, a.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.DefaultServerAddr, "listen address")
	return cmd
}

// serve runs srv until ctx is done, then shuts it down gracefully
func serve(ctx context.Context, srv *http.Server, cfg config.ServerConfig, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("gallery server starting", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down gallery server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("gallery server stopped")
	return nil
}
