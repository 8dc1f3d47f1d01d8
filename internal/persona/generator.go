package persona

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"vidscribe/internal/logging"
	"vidscribe/internal/services/llm"
)

const systemPrompt = `You analyze a video transcript and describe the speaker as a persona.
Respond with JSON only, using this shape:
{"persona_name": "...", "persona_description": "...", "traits": ["..."], "speaking_style": "..."}
persona_name is a short two-or-three word label for the speaker.
persona_description is one or two sentences.`

// Persona describes a speaker inferred from transcripts.
type Persona struct {
	Name          string   `json:"persona_name"`
	Description   string   `json:"persona_description"`
	Traits        []string `json:"traits"`
	SpeakingStyle string   `json:"speaking_style"`
}

// CompletionClient is the LLM surface the generator needs.
type CompletionClient interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Generator turns transcripts into personas via an LLM.
type Generator struct {
	client CompletionClient
	logger *slog.Logger
}

// NewGenerator constructs a persona generator.
func NewGenerator(client CompletionClient, logger *slog.Logger) (*Generator, error) {
	if client == nil {
		return nil, errors.New("completion client required")
	}
	return &Generator{
		client: client,
		logger: logging.NewComponentLogger(logger, "persona"),
	}, nil
}

// maxTranscriptChars bounds the prompt size for very long transcripts.
const maxTranscriptChars = 24000

// FromTranscript derives a persona for the speaker of the given transcript.
func (g *Generator) FromTranscript(ctx context.Context, transcript string) (*Persona, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, errors.New("transcript required")
	}
	if len(transcript) > maxTranscriptChars {
		transcript = transcript[:maxTranscriptChars]
	}

	userPrompt := "Transcript:\n" + transcript
	payload, err := g.client.CompleteJSON(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("persona completion: %w", err)
	}

	var persona Persona
	if err := llm.DecodeLLMJSON(payload, &persona); err != nil {
		return nil, fmt.Errorf("persona payload: %w", err)
	}
	persona.Name = displayName(persona.Name)
	if persona.Name == "" {
		return nil, errors.New("persona payload: missing persona_name")
	}
	if strings.TrimSpace(persona.Description) == "" {
		return nil, errors.New("persona payload: missing persona_description")
	}

	g.logger.Info("persona generated",
		logging.String("name", persona.Name),
		logging.Int("traits", len(persona.Traits)))
	return &persona, nil
}

var titleCaser = cases.Title(language.English)

func displayName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	return titleCaser.String(strings.ToLower(name))
}
