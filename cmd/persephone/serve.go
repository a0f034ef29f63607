package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/xdsai/persephone/internal/config"
	"github.com/xdsai/persephone/internal/runtime"
	"github.com/xdsai/persephone/internal/validator"
	httpAdapter "github.com/xdsai/persephone/pkg/adapters/http"
	mcpAdapter "github.com/xdsai/persephone/pkg/adapters/mcp"
	"github.com/xdsai/persephone/pkg/domain"
	"github.com/xdsai/persephone/pkg/observability"
	"github.com/xdsai/persephone/pkg/session"
)

const (
	shutdownTimeout = 5 * time.Second
	mcpPath         = "/mcp"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	var withMCP bool
	cmd := &cobra.Command{
		Use:   "serve [story]",
		Short: "Start the HTTP server",
		Long: `Hosts many sessions of one story over a JSON API, with Server-Sent Events and Prometheus metrics.
With --mcp the same sessions are also offered as MCP tools on /mcp (streamable HTTP).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			story, err := loadStory(cfg, args)
			if err != nil {
				return err
			}
			logger, err := cfg.Logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			for _, issue := range validator.Validate(story).Issues {
				logger.Warn("story issue", "severity", string(issue.Severity), "node_id", issue.NodeID, "detail", issue.Message)
			}

			backend, err := cfg.OpenBackend(ctx)
			if err != nil {
				return err
			}
			defer backend.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics, err := observability.NewMetrics(reg)
			if err != nil {
				return err
			}

			manager := newManager(story, backend, logger, runtime.WithLifecycleHooks(metrics.Hooks()))

			var handler http.Handler = httpAdapter.NewHandler(manager,
				httpAdapter.WithLogger(logger),
				httpAdapter.WithMetrics(reg),
			)
			if withMCP {
				handler = withMCPHandler(handler, mcpAdapter.NewServer(manager, mcpAdapter.WithLogger(logger)))
			}

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}
			return serve(ctx, srv, func(addr string) {
				logger.Info("Starting persephone server", "addr", addr, "story", story.Meta.Title, "store", backend.Kind, "mcp", withMCP)
				fmt.Fprintf(cmd.OutOrStdout(), "Serving %q on %s\n", story.Meta.Title, addr)
			})
		},
	}

	cmd.Flags().StringVarP(&cfg.Addr, "addr", "a", cfg.Addr, "listen address ["+config.EnvAddr+"]")
	cmd.Flags().BoolVar(&withMCP, "mcp", false, "also serve MCP tools on "+mcpPath)
	return cmd
}

// newManager builds the session manager every host shares.
func newManager(story *domain.Story, backend *config.Backend, logger *slog.Logger, engineOpts ...runtime.EngineOption) *session.Manager {
	opts := []session.Option{
		session.WithLogger(logger),
		session.WithEngineOptions(engineOpts...),
	}
	if backend.Locker != nil {
		opts = append(opts, session.WithLocker(backend.Locker))
	}
	return session.NewManager(story, backend.Store, opts...)
}

// withMCPHandler routes mcpPath to the MCP server and everything else to api.
func withMCPHandler(api http.Handler, srv *mcpAdapter.Server) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(mcpPath, srv.Handler())
	mux.Handle("/", api)
	return mux
}

// serve runs srv until it fails or ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, started func(addr string)) error {
	serverErrors := make(chan error, 1)
	go func() {
		started(srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
		}
		return nil
	}
}
