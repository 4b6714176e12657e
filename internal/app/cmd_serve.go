package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ventanita/internal/httpserver"
)

var (
	serveHTTP bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the CMS.

By default the MCP server speaks on stdin/stdout so an agent can launch it
as a subprocess. With --http it listens on server.http_addr and serves:
  - the MCP streamable HTTP endpoint (server.mcp_path)
  - Prometheus metrics (server.metrics_path)
  - /healthz
  - /api/pages/{id}/structured-data and /api/pages/{id}/blocks/{field}

When scheduler.enabled is set, approved revisions go live on the cron
schedule. When fixtures.watch is set, changed fixture files are
re-imported.

Examples:
  ventanita serve
  ventanita serve --http --config /etc/ventanita/ventanita.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveHTTP, "http", false, "serve over HTTP instead of stdio")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		a.Shutdown(shutdownCtx)
	}()

	if err := a.startBackground(ctx); err != nil {
		return err
	}

	mcpSrv := a.MCP()
	if !serveHTTP {
		return mcpSrv.ServeStdio()
	}

	handler := httpserver.Router(a.cfg.Server, httpserver.Deps{
		Content: a.content,
		MCP:     mcpSrv.HTTPHandler(a.cfg.Server.MCPPath),
		Metrics: a.metrics.Handler(),
		Health:  a.db.Ping,
		Log:     a.log.With("component", "http"),
	})
	return httpserver.Serve(ctx, a.cfg.Server, handler, a.log)
}

// startBackground starts the publish scheduler and the fixture watcher
// when they are configured.
func (a *App) startBackground(ctx context.Context) error {
	if a.cfg.Scheduler.Enabled {
		if err := a.scheduler.Start(ctx, a.cfg.Scheduler.Spec); err != nil {
			return err
		}
	}
	if a.cfg.Fixtures.Dir == "" {
		return nil
	}
	if _, err := os.Stat(a.cfg.Fixtures.Dir); errors.Is(err, os.ErrNotExist) {
		a.log.Warn("fixtures directory does not exist", "dir", a.cfg.Fixtures.Dir)
		return nil
	}
	if a.cfg.Fixtures.Watch {
		return a.importer.Watch(ctx, a.cfg.Fixtures.Dir, a.cfg.Fixtures.Debounce)
	}
	return nil
}
