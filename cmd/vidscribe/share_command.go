package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vidscribe/internal/pipeline"
	"vidscribe/internal/services/linkedin"
)

// linkedInPostLimit leaves headroom under the 3000 character API cap.
const linkedInPostLimit = 2900

func newShareCommand(ctx *commandContext) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "share",
		Short: "Publish the collected transcript as a LinkedIn post",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.LinkedIn.Enabled {
				return errors.New("linkedin sharing is disabled; set linkedin.enabled = true in the config")
			}

			body := strings.TrimSpace(text)
			if body == "" {
				transcript, err := pipeline.CollectTranscripts(cfg.Paths.WorkDir)
				if err != nil {
					return err
				}
				body = transcript
			}
			if len(body) > linkedInPostLimit {
				body = body[:linkedInPostLimit]
			}

			client, err := linkedin.NewClient(linkedin.Config{
				AccessToken:    cfg.LinkedIn.AccessToken,
				BaseURL:        cfg.LinkedIn.BaseURL,
				TimeoutSeconds: cfg.LinkedIn.TimeoutSeconds,
			})
			if err != nil {
				return err
			}

			profile, err := client.Profile(cmd.Context())
			if err != nil {
				return err
			}
			postID, err := client.CreatePost(cmd.Context(), profile.URN(), body)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Posted as %s: %s\n", profile.DisplayName(), postID)
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Post text (defaults to the collected transcripts)")
	return cmd
}
