package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"
	_ "time/tzdata"

	"trastes/internal/backend"
	"trastes/internal/chart"
	"trastes/internal/cli"
	apphttp "trastes/internal/http"
	applog "trastes/internal/log"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger.Logger)

	roster, err := cfg.Roster()
	if err != nil {
		logger.Error("Invalid roster", "error", err)
		os.Exit(1)
	}
	loc, err := cfg.Location()
	if err != nil {
		logger.Error("Invalid time zone", "error", err, "timezone", cfg.Timezone)
		os.Exit(1)
	}
	renderer, err := chart.NewRenderer(cfg.ChartPalette)
	if err != nil {
		logger.Error("Invalid chart palette", "error", err)
		os.Exit(1)
	}

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	result, err := backend.NewFactory(logger).CreateBackend(initCtx, backendConfig)
	cancelInit()
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:     ":" + cfg.Port,
		Writer:   result.Backend,
		Reader:   result.Backend,
		Roster:   roster,
		Location: loc,
		Charts:   renderer,
		LogLimit: cfg.LogLimit,
		Logger: applog.New(applog.Config{
			Level:     applog.ParseLevel(cfg.LogLevel),
			Component: applog.ComponentHTTP,
			Output:    os.Stdout,
		}),
	})
	if err != nil {
		logger.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	_, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}
	})

	logger.Info("Starting trastes server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"timezone", loc.String(),
		"activities", len(roster.Activities),
		"people", len(roster.People))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
