package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/co2-dashboard/internal/server"
)

var (
	servePort int
	serveWarm bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		cfg.Server.Port = port

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		env, err := initDashboard(cfg, "serve", reg)
		if err != nil {
			return err
		}

		// A dataset that cannot be loaded at start-up is fatal.
		if serveWarm {
			if err := env.Dashboard.Warm(ctx); err != nil {
				return err
			}
			zap.L().Info("dataset caches warmed")
		}

		srv := server.New(env.Dashboard, server.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Metrics:        env.Metrics,
		})
		return server.Run(ctx, fmt.Sprintf(":%d", port), srv.Handler())
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveWarm, "warm", true, "load both datasets before accepting requests (--warm=false defers loading to the first request)")
	rootCmd.AddCommand(serveCmd)
}
