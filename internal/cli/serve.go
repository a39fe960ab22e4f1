package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tracker/internal/config"
	api "tracker/internal/http"
	"tracker/internal/store"
	"tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr    string
	Migrate bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until SIGINT or SIGTERM, then drain in-flight
requests for up to ten seconds.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides app_addr)")
	cmd.Flags().BoolVar(&opts.Migrate, "migrate", false, "create missing tables before serving")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	env, err := config.LoadEnv(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		env.AppAddr = opts.Addr
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	logger := utils.NewLogger(env.LogLevel, env.LogJSON, cmd.ErrOrStderr())
	if env.JWTSecret == config.DefaultJWTSecret {
		logger.Warn("using the default jwt secret; set TRACKER_JWT_SECRET")
	}

	ctx := cmd.Context()
	db, dialect, err := config.OpenDB(ctx, env)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database connected", "driver", dialect)

	if opts.Migrate {
		if err := store.Migrate(ctx, db, dialect); err != nil {
			return err
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := api.NewRouter(env, api.Deps{
		Store:    store.New(db, dialect, logger.Named("store")),
		Logger:   logger,
		Registry: registry,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-quit:
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
