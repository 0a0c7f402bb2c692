package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/Togather-Foundation/eventplanner/internal/clock"
	"github.com/Togather-Foundation/eventplanner/internal/config"
	"github.com/Togather-Foundation/eventplanner/internal/metrics"
	"github.com/Togather-Foundation/eventplanner/internal/notify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func memoryConfig(t *testing.T) config.Config {
	t.Helper()
	memoryEnv(t)
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestServeCommandHelp(t *testing.T) {
	out, err := execute(t, "serve", "--help")
	require.NoError(t, err)
	for _, want := range []string{"Start the event planner HTTP server", "--host", "--port", "server host address", "server port"} {
		require.Contains(t, out, want)
	}
}

func TestServeCommandFlagParsing(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "valid host flag", args: []string{"--host", "127.0.0.1"}},
		{name: "valid port flag", args: []string{"--port", "9090"}},
		{name: "invalid port value", args: []string{"--port", "invalid"}, wantErr: true},
		{name: "unknown flag", args: []string{"--unknown"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newServeCommand(&rootOptions{})
			err := cmd.ParseFlags(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestServeCommandConfigError(t *testing.T) {
	memoryEnv(t)
	t.Setenv("STORE_DRIVER", "sqlite")

	_, err := execute(t, "serve")
	require.ErrorContains(t, err, "config error")
	require.ErrorContains(t, err, "STORE_DRIVER")
}

func TestOpenStoreMemory(t *testing.T) {
	cfg := memoryConfig(t)

	rt, err := openStore(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer rt.close()

	require.Nil(t, rt.pool)
	require.IsType(t, &metrics.InstrumentedStore{}, rt.store)
	require.NoError(t, rt.store.Ping(context.Background()))
}

func TestOpenStoreRejectsBadDriverAndURL(t *testing.T) {
	cfg := memoryConfig(t)

	cfg.Store.Driver = "sqlite"
	_, err := openStore(context.Background(), cfg, zerolog.Nop())
	require.ErrorContains(t, err, "unsupported store driver")

	cfg.Store.Driver = config.StoreDriverPostgres
	cfg.Database.URL = "postgres://%zz"
	_, err = openStore(context.Background(), cfg, zerolog.Nop())
	require.ErrorContains(t, err, "parse DATABASE_URL")
}

func TestJobRunnerFor(t *testing.T) {
	cfg := memoryConfig(t)
	require.Equal(t, jobRunnerTicker, jobRunnerFor(cfg, &resources{}))

	cfg.Jobs.Enabled = false
	require.Equal(t, jobRunnerDisabled, jobRunnerFor(cfg, &resources{}))
}

func TestStartJobs(t *testing.T) {
	cfg := memoryConfig(t)
	rt := &resources{}
	check := newUpcomingCheck(nil, clock.NewSystem(), nil, zerolog.Nop())

	run, err := startJobs(cfg, rt, jobRunnerDisabled, check, clock.NewSystem(), zerolog.Nop())
	require.NoError(t, err)
	require.Nil(t, run)

	run, err = startJobs(cfg, rt, jobRunnerTicker, check, clock.NewSystem(), zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, run)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, run(ctx))
}

func TestNewNotifier(t *testing.T) {
	n, err := newNotifier(config.NotifyConfig{}, zerolog.Nop())
	require.NoError(t, err)
	require.IsType(t, &notify.LogNotifier{}, n)

	n, err = newNotifier(config.NotifyConfig{ResendAPIKey: "re_test", From: "noreply@example.com"}, zerolog.Nop())
	require.NoError(t, err)
	require.IsType(t, &notify.ResendNotifier{}, n)

	_, err = newNotifier(config.NotifyConfig{ResendAPIKey: "re_test", From: "bogus"}, zerolog.Nop())
	require.Error(t, err)
}

func TestNewHTTPServerUsesTimeouts(t *testing.T) {
	cfg := memoryConfig(t)
	server := newHTTPServer(cfg.Server, nil)
	require.Equal(t, "0.0.0.0:8080", server.Addr)
	require.Equal(t, cfg.Server.ReadTimeout, server.ReadTimeout)
	require.Equal(t, cfg.Server.WriteTimeout, server.WriteTimeout)
}

func TestRunServerStopsWhenContextDone(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 2 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- runServer(ctx, cfg, zerolog.Nop()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runServer did not stop")
	}
}
