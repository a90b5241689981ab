package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spektr-org/needsradar/internal/config"
	"github.com/spektr-org/needsradar/internal/logging"
	"github.com/spektr-org/needsradar/internal/metrics"
	"github.com/spektr-org/needsradar/internal/server"
	"github.com/spektr-org/needsradar/schema"
	"github.com/spektr-org/needsradar/session"
)

// NewServeCmd starts the HTTP API.
func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dashboard sessions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg, logger := cliCtx.Config, cliCtx.Logger
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ws, closeFn, err := openWorkspace(ctx, cliCtx)
			if err != nil {
				logger.Error("dataset load failed", logging.Err(err))
				return err
			}
			defer closeFn()

			m := metrics.New(true)
			m.WatchCache(ws.Cache)
			mgr := session.NewManager(ws.Dataset, cfg.Server.SessionIdle, logger,
				session.WithObserver(m),
				session.WithSelectableRegions(ws.overlayNames()),
				session.WithEngineOptions(cfg.EngineOptions()...))
			m.WatchSessions(mgr.Len)
			go mgr.Run(ctx, cfg.Server.SweepInterval)

			if cliCtx.ConfigPath != "" {
				watchLogLevel(cliCtx)
			}

			router := server.NewRouter(server.RouterConfig{
				Sessions: mgr,
				Metrics:  m,
				Overlay:  ws.Overlay,
				Scale:    cfg.OrdinalScale(),
				Describe: schema.DescribeOptions{
					Scale:     cfg.OrdinalScale(),
					Delimiter: cfg.Dataset.Delimiter,
					Regions:   ws.overlayNames(),
				},
				Logger: logger,
			})
			return server.New(cfg.Server, router, logger).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address; overrides server.addr")
	return cmd
}

// watchLogLevel applies log.level edits in the config file without a
// restart. Other settings need one.
func watchLogLevel(cliCtx *CLIContext) {
	logger := cliCtx.Logger
	config.Watch(cliCtx.ConfigPath,
		func(cfg *config.Config) {
			level := logging.ParseLevel(cfg.Log.Level)
			if level != cliCtx.Level.Level() {
				cliCtx.Level.SetLevel(level)
				logger.Info("log level changed", logging.String("level", level.String()))
			}
		},
		func(err error) {
			logger.Warn("config reload rejected", logging.Err(err))
		})
}
