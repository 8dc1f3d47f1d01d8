package openaistt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"vidscribe/internal/services"
)

// Config holds OpenAI transcription settings.
type Config struct {
	APIKey   string
	Language string
	// BaseURL overrides the API endpoint (for tests and proxies).
	BaseURL string
}

// Service transcribes audio chunks through the OpenAI audio API.
type Service struct {
	cfg    Config
	client *openai.Client
}

// NewService creates an API-backed transcription service.
func NewService(cfg Config) (*Service, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, errors.New("openai transcription: api key required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = base
	}
	return &Service{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
	}, nil
}

// Model returns the transcription model name for logging.
func (s *Service) Model() string {
	return openai.Whisper1
}

// Transcribe uploads the audio file and returns the transcript text. The
// outputDir argument is accepted for interface parity with the local backend
// and ignored; the API returns text directly.
func (s *Service) Transcribe(ctx context.Context, source, _ string) (string, error) {
	if source == "" {
		return "", fmt.Errorf("transcribe: source path required")
	}
	req := openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: source,
		Language: strings.TrimSpace(s.cfg.Language),
	}
	resp, err := s.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "openai", "transcription", "", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", services.Wrap(services.ErrValidation, "openai", "transcription", "empty transcript", nil)
	}
	return text, nil
}
