package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"vidscribe/internal/ledger"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "status [run-id]",
		Short: "Show recent runs or the chunk detail of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				return printRunDetail(cmd, store, args[0])
			}
			return printRunList(cmd, store, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	return cmd
}

func printRunList(cmd *cobra.Command, store *ledger.Store, limit int) error {
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			truncate(run.Source, 48),
			strconv.Itoa(run.TotalChunks),
			string(run.Status),
			run.UpdatedAt.Local().Format(time.DateTime),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Source", "Chunks", "Status", "Updated"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	))
	return nil
}

func printRunDetail(cmd *cobra.Command, store *ledger.Store, runID string) error {
	run, err := store.GetRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}

	out := cmd.OutOrStdout()
	colorize := shouldColorize(os.Stdout)

	kind := statusInfo
	switch run.Status {
	case ledger.RunCompleted:
		kind = statusOK
	case ledger.RunFailed:
		kind = statusError
	}
	fmt.Fprintln(out, renderStatusLine("Run", statusInfo, run.ID, colorize))
	fmt.Fprintln(out, renderStatusLine("Source", statusInfo, run.Source, colorize))
	fmt.Fprintln(out, renderStatusLine("Status", kind, string(run.Status), colorize))
	if run.ErrorMessage != "" {
		fmt.Fprintln(out, renderStatusLine("Error", statusError, run.ErrorMessage, colorize))
	}

	chunks, err := store.ListChunks(cmd.Context(), runID)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(chunks))
	for _, chunk := range chunks {
		detail := chunk.TranscriptPath
		if chunk.ErrorMessage != "" {
			detail = truncate(chunk.ErrorMessage, 60)
		}
		rows = append(rows, []string{
			strconv.Itoa(chunk.Index),
			fmt.Sprintf("%s - %s", formatSeconds(chunk.StartSec), formatSeconds(chunk.EndSec)),
			string(chunk.Status),
			detail,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Chunk", "Range", "Status", "Detail"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	))
	return nil
}

func truncate(value string, limit int) string {
	if limit <= 3 || len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}
