package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"transcodesched/internal/ipc"
	"transcodesched/internal/logging"
)

var percentPrinter = message.NewPrinter(language.English)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and session queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				return watchStatus(ctx)
			}
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return err
				}
				renderStatus(cmd, status)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Follow the running session's progress")
	return cmd
}

func renderStatus(cmd *cobra.Command, status *ipc.StatusResponse) {
	out := cmd.OutOrStdout()
	colorize := isatty.IsTerminal(os.Stdout.Fd())

	fmt.Fprintf(out, "daemon:    running=%s pid=%d backend=%s\n",
		yesNo(status.Running), status.PID, status.Backend)
	if status.StartedAt != "" {
		if started, err := time.Parse(time.RFC3339, status.StartedAt); err == nil {
			fmt.Fprintf(out, "uptime:    %s\n", humanize.Time(started))
		}
	}
	fmt.Fprintf(out, "resource:  available=%s", yesNo(status.ResourceAvailable))
	if status.ResourceLost {
		fmt.Fprint(out, " (sessions held, waiting for resource)")
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "top uids:  %v\n", status.TopUids)
	if status.Current != nil {
		fmt.Fprintf(out, "current:   {client:%d, session:%d}\n",
			status.Current.ClientID, status.Current.SessionID)
	}

	if len(status.Sessions) == 0 {
		fmt.Fprintln(out, "no sessions queued")
		return
	}

	headers := []string{"CLIENT", "SESSION", "UID", "STATE", "PROGRESS"}
	rows := make([][]string, 0, len(status.Sessions))
	for _, s := range status.Sessions {
		uidLabel := strconv.FormatInt(int64(s.UID), 10)
		if s.UID == -1 {
			uidLabel = "offline"
		}
		rows = append(rows, []string{
			strconv.FormatInt(s.ClientID, 10),
			strconv.FormatInt(int64(s.SessionID), 10),
			uidLabel,
			colorState(s.State, colorize),
			percentPrinter.Sprintf("%d%%", s.Progress),
		})
	}
	aligns := []columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignRight}
	fmt.Fprintln(out, renderTable(headers, rows, aligns))
}

func colorState(state string, colorize bool) string {
	if !colorize {
		return state
	}
	switch state {
	case "Running":
		return color.GreenString(state)
	case "Paused":
		return color.YellowString(state)
	case "Failed":
		return color.RedString(state)
	default:
		return state
	}
}

// watchStatus polls the daemon and mirrors the running session's progress on
// a progress bar until no sessions remain or the user interrupts.
func watchStatus(ctx *commandContext) error {
	var bar *progressbar.ProgressBar
	var barKey ipc.SessionRef

	for {
		var status *ipc.StatusResponse
		err := ctx.withClient(func(client *ipc.Client) error {
			var callErr error
			status, callErr = client.Status()
			return callErr
		})
		if err != nil {
			return err
		}

		if len(status.Sessions) == 0 {
			if bar != nil {
				_ = bar.Finish()
			}
			fmt.Println("no sessions queued")
			return nil
		}

		running := findRunning(status)
		if running != nil {
			key := ipc.SessionRef{ClientID: running.ClientID, SessionID: running.SessionID}
			if bar == nil || barKey != key {
				if bar != nil {
					_ = bar.Finish()
				}
				subject := logging.FormatSubject(
					strconv.FormatInt(int64(running.UID), 10),
					fmt.Sprintf("{client:%d, session:%d}", key.ClientID, key.SessionID),
					running.State)
				bar = progressbar.NewOptions(100,
					progressbar.OptionSetDescription(subject),
					progressbar.OptionSetPredictTime(false),
					progressbar.OptionShowCount(),
				)
				barKey = key
			}
			_ = bar.Set(int(running.Progress))
		}

		time.Sleep(time.Second)
	}
}

func findRunning(status *ipc.StatusResponse) *ipc.SessionInfo {
	for i := range status.Sessions {
		if status.Sessions[i].State == "Running" {
			return &status.Sessions[i]
		}
	}
	return nil
}
