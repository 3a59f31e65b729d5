package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"transcodesched/internal/ipc"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var (
		clientID  int64
		sessionID int32
		uid       int32
		input     string
		output    string
		preset    string
		seconds   int
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a transcoding session to the daemon",
		Long: "Submits one session keyed by (--client, --session) under the owning --uid. " +
			"With the drapto backend, --input and --output name the media; with the " +
			"simulated backend, --seconds sets the pretend processing time.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Submit(ipc.SubmitRequest{
					ClientID:          clientID,
					SessionID:         sessionID,
					UID:               uid,
					InputPath:         input,
					OutputDir:         output,
					Preset:            preset,
					ProcessingSeconds: seconds,
				})
				if err != nil {
					return err
				}
				if !resp.Accepted {
					return fmt.Errorf("submit rejected: %s", resp.Message)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "session {client:%d, session:%d} accepted under uid %d\n",
					clientID, sessionID, uid)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&clientID, "client", 0, "Client identifier")
	cmd.Flags().Int32Var(&sessionID, "session", 0, "Session identifier, unique per client")
	cmd.Flags().Int32Var(&uid, "uid", -1, "Owning uid (-1 for offline/background)")
	cmd.Flags().StringVar(&input, "input", "", "Input media path (drapto backend)")
	cmd.Flags().StringVar(&output, "output", "", "Output directory (drapto backend)")
	cmd.Flags().StringVar(&preset, "preset", "", "Encoder preset profile (drapto backend)")
	cmd.Flags().IntVar(&seconds, "seconds", 0, "Simulated processing seconds (sim backend)")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func newCancelCommand(ctx *commandContext) *cobra.Command {
	var (
		clientID  int64
		sessionID int32
		allClient bool
	)

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel a session, or every session of a client",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if allClient {
					resp, err := client.CancelClient(clientID)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "removed %d sessions for client %d\n",
						resp.Removed, clientID)
					return nil
				}
				if !cmd.Flags().Changed("session") {
					return errors.New("either --session or --all is required")
				}
				resp, err := client.Cancel(ipc.CancelRequest{ClientID: clientID, SessionID: sessionID})
				if err != nil {
					return err
				}
				if !resp.Cancelled {
					return fmt.Errorf("cancel failed: %s", resp.Message)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "session {client:%d, session:%d} cancelled\n",
					clientID, sessionID)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&clientID, "client", 0, "Client identifier")
	cmd.Flags().Int32Var(&sessionID, "session", 0, "Session identifier")
	cmd.Flags().BoolVar(&allClient, "all", false, "Cancel every session belonging to --client")
	_ = cmd.MarkFlagRequired("client")

	return cmd
}

func newTopUidsCommand(ctx *commandContext) *cobra.Command {
	var uids []int32

	cmd := &cobra.Command{
		Use:   "top-uids",
		Short: "Replace the foreground uid set",
		Long: "Pushes a new foreground uid set to the daemon's uid policy; known uids move " +
			"ahead of the offline queue in scheduling priority.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.SetTopUids(uids); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "foreground uids set to %v\n", uids)
				return nil
			})
		},
	}

	cmd.Flags().Int32SliceVar(&uids, "uid", nil, "Foreground uid (repeatable)")
	return cmd
}

func newResourceCommand(ctx *commandContext) *cobra.Command {
	var available bool

	cmd := &cobra.Command{
		Use:   "resource",
		Short: "Set codec resource availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SetResource(available)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "resource available: %s\n", yesNo(resp.Available))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&available, "available", true, "Whether the codec resource is available")
	return cmd
}

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test push notification through the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.TestNotification()
				if err != nil {
					return err
				}
				if !resp.Sent {
					return fmt.Errorf("notification not sent: %s", resp.Message)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "notification sent")
				return nil
			})
		},
	}
}
