package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Togather-Foundation/eventplanner/internal/api"
	"github.com/Togather-Foundation/eventplanner/internal/auth"
	"github.com/Togather-Foundation/eventplanner/internal/clock"
	"github.com/Togather-Foundation/eventplanner/internal/config"
	"github.com/Togather-Foundation/eventplanner/internal/domain/attendees"
	"github.com/Togather-Foundation/eventplanner/internal/domain/events"
	"github.com/Togather-Foundation/eventplanner/internal/jobs"
	"github.com/Togather-Foundation/eventplanner/internal/metrics"
	"github.com/Togather-Foundation/eventplanner/internal/notify"
	"github.com/Togather-Foundation/eventplanner/internal/storage"
	"github.com/Togather-Foundation/eventplanner/internal/storage/memory"
	"github.com/Togather-Foundation/eventplanner/internal/storage/postgres"
	"github.com/Togather-Foundation/eventplanner/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/rivertype"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	jobRunnerRiver    = "river"
	jobRunnerTicker   = "ticker"
	jobRunnerDisabled = "disabled"

	dbStatsInterval = 15 * time.Second
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the event planner HTTP server",
		Long: `Start the HTTP server and the daily upcoming-events check.

The server will:
- Load configuration from environment variables (or --config file if provided)
- Open the document store selected by STORE_DRIVER (postgres or memory)
- Schedule the upcoming-events check with River (postgres) or in process (memory)
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging and the in-memory store
  STORE_DRIVER=memory server serve --log-level debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if port != 0 {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, config.NewLogger(cfg.Logging))
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "server host address (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "server port (default: 8080)")
	return cmd
}

// resources is the set of long-lived resources a server process owns.
type resources struct {
	store storage.DocumentStore
	pool  *pgxpool.Pool
}

func (rt *resources) close() {
	if rt.pool != nil {
		rt.pool.Close()
	}
}

// openStore connects the document store named by cfg.Store.Driver. Every store
// is wrapped with Prometheus instrumentation.
func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*resources, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logger.Warn().Msg("using in-memory document store; data is lost on restart")
		return &resources{store: metrics.NewInstrumentedStore(memory.New())}, nil
	case config.StoreDriverPostgres:
		poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
		}
		if cfg.Database.MaxConnections > 0 {
			poolCfg.MaxConns = int32(cfg.Database.MaxConnections)
		}

		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		if err := pool.Ping(connectCtx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
		store, err := postgres.NewStore(pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return &resources{store: metrics.NewInstrumentedStore(store), pool: pool}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

// newNotifier picks the Resend mailer when an API key is configured.
func newNotifier(cfg config.NotifyConfig, logger zerolog.Logger) (notify.Notifier, error) {
	if cfg.ResendAPIKey == "" {
		return notify.NewLogNotifier(logger), nil
	}
	return notify.NewResendNotifier(cfg.ResendAPIKey, cfg.From, logger)
}

func newUpcomingCheck(store storage.DocumentStore, clk clock.Clock, notifier notify.Notifier, logger zerolog.Logger) *jobs.UpcomingEventsCheck {
	jobLogger := logger.With().Str("component", "jobs").Logger()
	eventSvc := events.NewService(store, clk, jobLogger)
	return &jobs.UpcomingEventsCheck{
		Events:    eventSvc,
		Attendees: attendees.NewService(store, eventSvc, clk, jobLogger),
		Notifier:  notifier,
		Clock:     clk,
		Logger:    jobLogger,
	}
}

// jobRunnerFor names how the upcoming-events check is scheduled for this process.
func jobRunnerFor(cfg config.Config, rt *resources) string {
	switch {
	case !cfg.Jobs.Enabled:
		return jobRunnerDisabled
	case rt.pool != nil:
		return jobRunnerRiver
	default:
		return jobRunnerTicker
	}
}

// startJobs returns the function that drives scheduled jobs until ctx is done.
func startJobs(cfg config.Config, rt *resources, runner string, check *jobs.UpcomingEventsCheck, clk clock.Clock, logger zerolog.Logger) (func(ctx context.Context) error, error) {
	schedule := jobs.DailyAt{Hour: 0, Minute: 0}

	switch runner {
	case jobRunnerRiver:
		client, err := jobs.NewClient(
			rt.pool,
			jobs.NewWorkers(check),
			config.NewSlogLogger(cfg.Logging),
			logger,
			[]rivertype.Hook{metrics.NewRiverMetricsHook()},
			jobs.NewPeriodicJobs(schedule),
		)
		if err != nil {
			return nil, fmt.Errorf("create river client: %w", err)
		}
		return func(ctx context.Context) error {
			if err := client.Start(ctx); err != nil {
				return fmt.Errorf("river workers failed to start: %w", err)
			}
			logger.Info().Msg("river background job workers started")
			<-ctx.Done()

			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := client.Stop(stopCtx); err != nil {
				logger.Error().Err(err).Msg("river workers shutdown error")
				return nil
			}
			logger.Info().Msg("river workers stopped")
			return nil
		}, nil
	case jobRunnerTicker:
		return func(ctx context.Context) error {
			logger.Info().Msg("upcoming events check scheduled in process")
			return jobs.RunDaily(ctx, schedule, clk, logger, check)
		}, nil
	default:
		logger.Warn().Msg("scheduled jobs disabled")
		return nil, nil
	}
}

func newHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

// runServer serves HTTP and runs scheduled jobs until ctx is cancelled, then
// shuts both down within cfg.Server.ShutdownTimeout.
func runServer(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	logger.Info().Str("version", Version).Str("environment", cfg.Environment).Msg("starting event planner server")

	metrics.Init(Version, GitCommit, BuildDate)

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

	rt, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.close()

	clk := clock.NewSystem()
	notifier, err := newNotifier(cfg.Notify, logger)
	if err != nil {
		return fmt.Errorf("init notifier: %w", err)
	}

	runner := jobRunnerFor(cfg, rt)
	runJobs, err := startJobs(cfg, rt, runner, newUpcomingCheck(rt.store, clk, notifier, logger), clk, logger)
	if err != nil {
		return err
	}

	router, err := api.NewRouter(api.Deps{
		Config:    cfg,
		Logger:    logger,
		Store:     rt.store,
		Verifier:  auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer),
		Clock:     clk,
		JobRunner: runner,
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
	})
	if err != nil {
		return err
	}
	defer router.Close()

	server := newHTTPServer(cfg.Server, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})
	if runJobs != nil {
		g.Go(func() error { return runJobs(gctx) })
	}
	if rt.pool != nil {
		g.Go(func() error {
			metrics.NewDBCollector(rt.pool).Start(gctx, dbStatsInterval)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
