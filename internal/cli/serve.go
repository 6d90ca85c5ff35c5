package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/law-makers/goodscrawl/internal/api"
	"github.com/law-makers/goodscrawl/internal/app"
	"github.com/law-makers/goodscrawl/internal/ratelimit"
	"github.com/law-makers/goodscrawl/internal/ui"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve product records over HTTP",
		Long: `Starts an HTTP server exposing the extractor:

  GET /api/v1/health
  GET /api/v1/product?url=<product url>
  GET /api/musinsa?url=<musinsa product url>

Requests are rate limited per client IP. SIGINT or SIGTERM shuts the server
down gracefully.`,
		Example: `  # Listen on the configured address
  goodscrawl serve

  # Listen on another port without Chrome
  goodscrawl serve --addr=:9090 --mode=static`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appOf(cmd)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.Config.ServerAddr
			}
			svc, err := a.Scraper(app.ScrapeOptions{})
			if err != nil {
				return err
			}

			if n := a.PoolSize(); n > 0 {
				if err := a.EnsureBrowserPool().Warm(cmd.Context(), n); err != nil {
					a.Logger.Warn().Err(err).Msg("Browser warm-up failed, tabs open on demand")
				}
			}

			if a.Config.LogLevel != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}
			router := api.NewRouter(api.Options{
				Scraper:   svc,
				Limiter:   ratelimit.NewKeyedLimiter(a.Config.ServerRPS, a.Config.ServerBurst),
				Logger:    a.Logger,
				StartTime: time.Now(),
				Sites:     a.Sites.Names(),
				Stats:     a.Stats,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a, &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}, runtimeOf(cmd))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}

// serve runs srv until ctx ends, then drains in-flight requests
func serve(ctx context.Context, a *app.Application, srv *http.Server, rt *runtime) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	a.Logger.Info().Str("addr", srv.Addr).Msg("Server started")
	fmt.Fprintf(rt.stderr, "%s listening on %s\n", ui.Success("goodscrawl"), ui.Accent(srv.Addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.Logger.Info().Msg("Server stopped")
	return nil
}
