package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/CohortMap/internal/app"
	"github.com/turtacn/CohortMap/internal/infrastructure/monitoring/logging"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	var port, grpcPort int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and gRPC health service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := *cliCtx.Config
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("grpc-port") {
				cfg.Server.GRPCPort = grpcPort
			}

			// The server logs with the configured format rather than the
			// CLI's stderr console logger.
			logger, err := logging.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer logger.Sync()
			logging.SetDefault(logger)

			a, err := app.New(&cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.Run(ctx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides server.port)")
	cmd.Flags().IntVar(&grpcPort, "grpc-port", 0, "gRPC port, 0 disables (overrides server.grpc_port)")
	return cmd
}

//Personal.AI order the ending
