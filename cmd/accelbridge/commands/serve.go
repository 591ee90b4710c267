package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teranos/accelbridge/config"
	"github.com/teranos/accelbridge/facade"
	"github.com/teranos/accelbridge/logger"
	"github.com/teranos/accelbridge/server"
)

// NewServeCmd returns the command that runs the bridge HTTP server.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the bridge HTTP server",
		Long: `Start the bridge HTTP server.

Exposes memory telemetry and optimization, GPU capability and compute, and
module status over HTTP, plus a WebSocket status stream at /ws. The native
accel backend is probed once at startup; when none is usable the software
fallback serves every request.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, cfg, err := buildFacade(logger.Logger)
			if err != nil {
				return err
			}

			srv := server.New(f, cfg.Server, cfg.Memory.ThrottleInterval(), logger.Logger)

			var monitor *facade.Monitor
			if cfg.Monitor.Enabled {
				monitor = facade.NewMonitor(f, cfg.Policy.Thresholds(), cfg.Monitor.Interval(), logger.Logger)
				monitor.Start()
				defer monitor.Stop()
			}

			// Hot-reload thresholds, TTLs, and the throttle window on config
			// file edits
			if path := config.ConfigFilePath(); path != "" {
				watcher, err := config.NewWatcher(path)
				if err != nil {
					logger.Warnw("Config watcher unavailable", "error", err)
				} else {
					watcher.OnReload(func(next *config.Config) error {
						f.SetCacheTTLs(next.Cache.GPUInfoTTL(), next.Cache.StatusTTL())
						srv.SetThrottleInterval(next.Memory.ThrottleInterval())
						if monitor != nil {
							monitor.SetThresholds(next.Policy.Thresholds())
						}
						return nil
					})
					watcher.Start()
					defer watcher.Stop()
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx)
		},
	}
}
