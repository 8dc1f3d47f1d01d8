package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"vidscribe/internal/config"
	"vidscribe/internal/deps"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/services/ffmpeg"
	"vidscribe/internal/services/openaistt"
	"vidscribe/internal/services/whisper"
	"vidscribe/internal/services/ytdlp"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "run <url>",
		Short: "Download, chunk, and transcribe a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			if !skipPreflight {
				statuses := deps.CheckBinaries(deps.Requirements(cfg))
				if missing := deps.MissingRequired(statuses); len(missing) > 0 {
					return fmt.Errorf("missing required binaries: %s (see `vidscribe deps`)", strings.Join(missing, ", "))
				}
			}

			fetcher, err := ytdlp.New(cfg.Tools.YtDlp, cfg.Pipeline.FetchTimeout)
			if err != nil {
				return err
			}
			transcriber, backend, err := buildTranscriber(cfg)
			if err != nil {
				return err
			}

			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			supervisor, err := pipeline.NewSupervisor(cfg, logger, pipeline.Deps{
				Prober:      fetcher,
				Fetcher:     fetcher,
				Validator:   ffmpeg.NewService(cfg.Tools.FFmpeg),
				Transcriber: transcriber,
				Recorder:    pipeline.NewLedgerRecorder(store),
			})
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Transcribing %s (%s backend)\n", args[0], backend)

			report, runErr := supervisor.Run(runCtx, args[0])
			if report != nil {
				printRunReport(out, report, shouldColorize(os.Stdout))
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip the external binary availability check")
	return cmd
}

func buildTranscriber(cfg *config.Config) (pipeline.Transcriber, string, error) {
	if cfg.Whisper.Backend == "api" {
		svc, err := openaistt.NewService(openaistt.Config{
			APIKey:   cfg.Whisper.APIKey,
			Language: cfg.Whisper.Language,
		})
		if err != nil {
			return nil, "", err
		}
		return svc, "api", nil
	}
	svc := whisper.NewService(cfg.Tools.Whisper, whisper.Config{
		Model:    cfg.Whisper.Model,
		Language: cfg.Whisper.Language,
	})
	return svc, "local", nil
}

func printRunReport(out io.Writer, report *pipeline.RunReport, colorize bool) {
	fmt.Fprintln(out, renderStatusLine("Run", statusInfo, report.RunID, colorize))
	fmt.Fprintln(out, renderStatusLine("Media length", statusInfo, fmt.Sprintf("%.1fs", report.MediaSeconds), colorize))
	fmt.Fprintln(out, renderStatusLine("Chunks", statusInfo, fmt.Sprintf("%d", report.TotalChunks), colorize))

	kind := statusOK
	if len(report.Transcripts) < report.TotalChunks {
		kind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Transcripts", kind, fmt.Sprintf("%d written", len(report.Transcripts)), colorize))
	if len(report.FailedChunks) > 0 {
		fmt.Fprintln(out, renderStatusLine("Failed chunks", statusError, fmt.Sprintf("%v", report.FailedChunks), colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Elapsed", statusInfo, report.Elapsed.Round(100*time.Millisecond).String(), colorize))
}
