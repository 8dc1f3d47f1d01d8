package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vidscribe/internal/persona"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/services/llm"
)

func newPersonaCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "persona",
		Short: "Derive a speaker persona from the transcripts in the work directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			llmCfg := cfg.GetLLM()
			if llmCfg.APIKey == "" {
				return errors.New("llm.api_key is required for persona generation (or export OPENROUTER_API_KEY)")
			}

			transcript, err := pipeline.CollectTranscripts(cfg.Paths.WorkDir)
			if err != nil {
				return err
			}

			client := llm.NewClient(llm.Config{
				APIKey:         llmCfg.APIKey,
				BaseURL:        llmCfg.BaseURL,
				Model:          llmCfg.Model,
				Referer:        llmCfg.Referer,
				Title:          llmCfg.Title,
				TimeoutSeconds: llmCfg.TimeoutSeconds,
			})
			generator, err := persona.NewGenerator(client, logger)
			if err != nil {
				return err
			}

			result, err := generator.FromTranscript(cmd.Context(), transcript)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Persona: %s\n", result.Name)
			fmt.Fprintf(out, "Description: %s\n", result.Description)
			if len(result.Traits) > 0 {
				fmt.Fprintf(out, "Traits: %s\n", strings.Join(result.Traits, ", "))
			}
			if result.SpeakingStyle != "" {
				fmt.Fprintf(out, "Speaking style: %s\n", result.SpeakingStyle)
			}
			return nil
		},
	}
}
