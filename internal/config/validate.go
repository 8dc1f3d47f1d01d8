package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateWhisper(); err != nil {
		return err
	}
	if err := c.validateLinkedIn(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.ChunkDuration <= 0 {
		return errors.New("pipeline.chunk_duration must be positive (seconds)")
	}
	switch c.Pipeline.OnTranscriptionError {
	case "continue", "abort":
	default:
		return fmt.Errorf("pipeline.on_transcription_error must be %q or %q, got %q", "continue", "abort", c.Pipeline.OnTranscriptionError)
	}
	return nil
}

func (c *Config) validateWhisper() error {
	switch c.Whisper.Backend {
	case "local":
	case "api":
		if c.Whisper.APIKey == "" {
			return errors.New("whisper.api_key must be set when whisper.backend is \"api\" (or set OPENAI_API_KEY)")
		}
	default:
		return fmt.Errorf("whisper.backend must be %q or %q, got %q", "local", "api", c.Whisper.Backend)
	}
	return nil
}

func (c *Config) validateLinkedIn() error {
	if !c.LinkedIn.Enabled {
		return nil
	}
	if c.LinkedIn.AccessToken == "" {
		return errors.New("linkedin.access_token must be set when linkedin.enabled is true (or set LINKEDIN_ACCESS_TOKEN)")
	}
	return nil
}
