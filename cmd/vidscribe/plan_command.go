package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vidscribe/internal/pipeline"
	"vidscribe/internal/services/ytdlp"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var mediaSeconds float64

	cmd := &cobra.Command{
		Use:   "plan <url>",
		Short: "Show the chunk plan for a video without downloading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			length := mediaSeconds
			if length <= 0 {
				client, err := ytdlp.New(cfg.Tools.YtDlp, cfg.Pipeline.FetchTimeout)
				if err != nil {
					return err
				}
				length, err = client.Duration(cmd.Context(), args[0])
				if err != nil {
					return err
				}
			}

			chunks, err := pipeline.Plan(length, cfg.Pipeline.ChunkDuration)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(chunks))
			for _, chunk := range chunks {
				rows = append(rows, []string{
					strconv.Itoa(chunk.Index),
					formatSeconds(chunk.StartSec),
					formatSeconds(chunk.EndSec),
					fmt.Sprintf("%.1fs", chunk.Duration()),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Source: %s (%.1fs, %d chunks of %ds)\n",
				args[0], length, len(chunks), cfg.Pipeline.ChunkDuration)
			fmt.Fprintln(out, renderTable(
				[]string{"Chunk", "Start", "End", "Length"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().Float64Var(&mediaSeconds, "duration", 0, "Media length in seconds (skips the probe)")
	return cmd
}

func formatSeconds(value float64) string {
	total := int(value)
	minutes := total / 60
	seconds := value - float64(minutes*60)
	return fmt.Sprintf("%d:%04.1f", minutes, seconds)
}
