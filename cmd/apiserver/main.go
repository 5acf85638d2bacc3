// API server entry point for CohortMap.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/CohortMap/internal/app"
	"github.com/turtacn/CohortMap/internal/config"
	"github.com/turtacn/CohortMap/internal/infrastructure/monitoring/logging"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	grpcPort := flag.Int("grpc-port", -1, "gRPC server port, 0 disables (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *httpPort > 0 {
		cfg.Server.Port = *httpPort
	}
	if *grpcPort >= 0 {
		cfg.Server.GRPCPort = *grpcPort
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logging.SetDefault(logger)

	logger.Info("starting CohortMap API server",
		logging.String("version", app.Version),
		logging.Int("http_port", cfg.Server.Port),
		logging.Int("grpc_port", cfg.Server.GRPCPort),
		logging.String("cache_backend", cfg.Cache.Backend),
		logging.String("session_backend", cfg.Session.Backend),
	)

	if *configPath != "" {
		config.Watch(*configPath, func(next *config.Config) {
			if next.Log.Level != cfg.Log.Level {
				logger.Info("configuration changed; restart to apply", logging.String("log_level", next.Log.Level))
			}
		}, func(err error) {
			logger.Warn("ignoring invalid configuration change", logging.Err(err))
		})
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", logging.Err(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	runErr := a.Run(ctx)
	stop()
	if err := a.Close(); err != nil {
		logger.Warn("closing backends failed", logging.Err(err))
	}
	if runErr != nil {
		logger.Error("server stopped with error", logging.Err(runErr))
		os.Exit(1)
	}
	logger.Info("servers stopped")
}

//Personal.AI order the ending
