package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/titlematch/internal/handlers"
	"github.com/lehigh-university-libraries/titlematch/internal/matching"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string
	var reloadInterval time.Duration
	var maxQueries int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the resolution HTTP API",
		Long: `Loads the catalog and serves the resolver over HTTP.

Endpoints:
  GET  /api/resolve?q=<query>   resolve one request
  POST /api/resolve             resolve {"queries": [...], "text": "..."}
  GET  /api/stats               catalog index statistics
  GET  /healthcheck

With --reload-interval the catalog is reloaded periodically and swapped in without
interrupting requests in flight.`,
		Example: `  # Start server on default port 8888
  titlematch serve --books books.parquet --series series.parquet

  # Custom port, reload the catalog every hour
  titlematch serve --port 3000 --reload-interval 1h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("reload-interval") {
				cfg.Server.ReloadInterval = reloadInterval
			}

			m, err := buildMatcher(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			holder := matching.NewHolder(m)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go holder.Refresh(ctx, cfg.Server.ReloadInterval, func(ctx context.Context) (*matching.Matcher, error) {
				return buildMatcher(ctx, cfg)
			})

			// Set up routes
			mux := http.NewServeMux()
			handlers.New(holder, maxQueries).Routes(mux)

			addr := ":" + cfg.Server.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           handlers.WithRequestID(mux),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Titlematch API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().DurationVar(&reloadInterval, "reload-interval", 0, "Reload the catalog at this interval (0 disables)")
	cmd.Flags().IntVar(&maxQueries, "max-queries", handlers.DefaultMaxQueries, "Maximum queries per request")

	return cmd
}
