package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"transcodesched/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newConfigShowCommand(ctx))
	cmd.AddCommand(newConfigInitCommand())
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "log_dir:          %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "control_socket:   %s\n", cfg.Paths.ControlSocket)
			fmt.Fprintf(out, "lock_path:        %s\n", cfg.Paths.LockPath)
			fmt.Fprintf(out, "audit_db_path:    %s\n", cfg.Paths.AuditDBPath)
			fmt.Fprintf(out, "log format/level: %s/%s\n", cfg.Logging.Format, cfg.Logging.Level)
			fmt.Fprintf(out, "backend:          %s\n", cfg.Transcoder.Backend)
			if cfg.Transcoder.Backend == "drapto" {
				fmt.Fprintf(out, "drapto binary:    %s\n", cfg.Transcoder.DraptoBinary)
			}
			fmt.Fprintf(out, "foreground uids:  %v\n", cfg.UIDPolicy.ForegroundUIDs)
			fmt.Fprintf(out, "resource avail:   %s\n", yesNo(cfg.ResourcePolicy.InitiallyAvailable))
			topic := cfg.Notifications.NtfyTopic
			if strings.TrimSpace(topic) == "" {
				topic = "(disabled)"
			}
			fmt.Fprintf(out, "ntfy topic:       %s\n", topic)
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(path)
			if target == "" {
				var err error
				target, err = config.DefaultConfigPath()
				if err != nil {
					return err
				}
			} else {
				var err error
				target, err = config.ExpandPath(target)
				if err != nil {
					return err
				}
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Destination path (defaults to the standard config location)")
	return cmd
}
