package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"transcodesched/internal/ipc"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List terminal session transitions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.History(limit)
				if err != nil {
					return err
				}
				if len(resp.Records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no history recorded")
					return nil
				}

				headers := []string{"CLIENT", "SESSION", "UID", "OUTCOME", "PROGRESS", "WHEN"}
				rows := make([][]string, 0, len(resp.Records))
				for _, rec := range resp.Records {
					outcome := rec.Outcome
					if rec.Outcome == "failed" {
						outcome = fmt.Sprintf("failed (code %d)", rec.ErrorCode)
					}
					when := rec.RecordedAt
					if ts, err := time.Parse(time.RFC3339, rec.RecordedAt); err == nil {
						when = humanize.Time(ts)
					}
					uidLabel := strconv.FormatInt(int64(rec.UID), 10)
					if rec.UID == -1 {
						uidLabel = "offline"
					}
					rows = append(rows, []string{
						strconv.FormatInt(rec.ClientID, 10),
						strconv.FormatInt(int64(rec.SessionID), 10),
						uidLabel,
						outcome,
						fmt.Sprintf("%d%%", rec.FinalProgress),
						when,
					})
				}
				aligns := []columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignRight, alignLeft}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum records to show (0 for all)")
	return cmd
}
