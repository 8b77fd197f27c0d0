package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/syaroho/internal/adapters/http/api"
	"github.com/okian/syaroho/internal/adapters/http/swagger"
	"github.com/okian/syaroho/internal/config"
	"github.com/okian/syaroho/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// NewServeCommand creates the serve command.
func NewServeCommand(root *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read API over HTTP",
		Long: `Serve results, the leaderboard and player profiles over HTTP until
interrupted.

When a config file is in use, edits to it are picked up and the new log
level is applied without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := root.openRuntime()
			if err != nil {
				return err
			}
			defer rt.close() //nolint:errcheck // shutdown path

			if addr == "" {
				addr = root.Config.Addr
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to listen", err)
			}
			return serve(cmd.Context(), root, rt, ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	return cmd
}

func serve(ctx context.Context, root *RootOptions, rt *runtime, ln net.Listener) error {
	log := logger.Named("http")

	var docs []swagger.Option
	if path := root.Config.DocsScript; path != "" {
		js, err := os.ReadFile(path)
		if err != nil {
			_ = ln.Close()
			return WrapExitError(ExitCommandError, "failed to read docs_script", err)
		}
		docs = append(docs, swagger.WithScript(js))
	}

	mux := http.NewServeMux()
	swagger.Register(ctx, mux, docs...)
	api.NewServer(rt.svc, rt.svc,
		api.WithMaxLimit(root.Config.MaxLeaderboardLimit),
		api.WithLocation(rt.loc),
	).Register(ctx, mux)

	srv := &http.Server{
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if root.ConfigPath != "" {
		go func() {
			err := config.Watch(ctx, root.ConfigPath, func(cfg *config.Config) {
				if err := logger.SetLevelString(cfg.LogLevel); err != nil {
					log.Warn(ctx, "ignoring invalid log_level", logger.String("log_level", cfg.LogLevel))
				}
			})
			if err != nil {
				log.Error(ctx, "config watch stopped", logger.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitFailure, "HTTP server failed", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(ctx, "shutting down server...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return WrapExitError(ExitFailure, "shutdown failed", err)
	}
	log.Info(ctx, "server stopped")
	return nil
}
