package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"transcodesched/internal/daemon"
	"transcodesched/internal/ipc"
	"transcodesched/internal/logging"
	"transcodesched/internal/notifications"
	"transcodesched/internal/sessionaudit"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the session controller daemon in the foreground",
		Long: "Runs the controller, the configured transcoder backend, the policy adapters, " +
			"and the control-socket server until interrupted. SIGUSR1 toggles resource availability.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}

			audit, err := sessionaudit.Open(cfg.Paths.AuditDBPath)
			if err != nil {
				return fmt.Errorf("open session history: %w", err)
			}

			notifier := notifications.NewService(cfg)
			d, err := daemon.New(cfg, logger, notifier, audit)
			if err != nil {
				_ = audit.Close()
				return err
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), unix.SIGINT, unix.SIGTERM)
			defer cancel()

			if err := d.Start(runCtx); err != nil {
				_ = audit.Close()
				return err
			}

			// The IPC accept loop is noisy at debug level; clamp it to warn
			// so per-connection chatter stays out of the daemon log.
			ipcLogger := logging.WithLevelOverride(logger, slog.LevelWarn)
			server, err := ipc.NewServer(runCtx, cfg.Paths.ControlSocket, d, ipcLogger, cancel)
			if err != nil {
				d.Stop("ipc server failed to start")
				_ = audit.Close()
				return err
			}
			server.Serve()

			toggle := make(chan os.Signal, 1)
			signal.Notify(toggle, unix.SIGUSR1)
			defer signal.Stop(toggle)

			fmt.Fprintf(cmd.OutOrStdout(), "transcodesched daemon running (backend %s, socket %s)\n",
				cfg.Transcoder.Backend, cfg.Paths.ControlSocket)

			for {
				select {
				case <-runCtx.Done():
					server.Close()
					d.Stop("signal received")
					return d.Close()
				case <-toggle:
					available := d.ToggleResource()
					logger.Info("resource availability toggled by SIGUSR1",
						logging.Bool("available", available))
				}
			}
		},
	}
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Ask a running daemon to exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Shutdown()
				if err != nil {
					return err
				}
				if resp.Stopping {
					fmt.Fprintln(cmd.OutOrStdout(), "daemon stopping")
				}
				return nil
			})
		},
	}
}
