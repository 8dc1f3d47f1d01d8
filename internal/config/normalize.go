package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePipeline()
	c.normalizeTools()
	c.normalizeWhisper()
	c.normalizeLLM()
	c.normalizeLinkedIn()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.ChunkDuration <= 0 {
		c.Pipeline.ChunkDuration = defaultChunkDuration
	}
	c.Pipeline.OnTranscriptionError = strings.ToLower(strings.TrimSpace(c.Pipeline.OnTranscriptionError))
	if c.Pipeline.OnTranscriptionError == "" {
		c.Pipeline.OnTranscriptionError = defaultOnTranscriptionError
	}
	if c.Pipeline.FetchTimeout < 0 {
		c.Pipeline.FetchTimeout = 0
	}
	if c.Pipeline.TranscribeTimeout < 0 {
		c.Pipeline.TranscribeTimeout = 0
	}
}

func (c *Config) normalizeTools() {
	c.Tools.YtDlp = strings.TrimSpace(c.Tools.YtDlp)
	if c.Tools.YtDlp == "" {
		c.Tools.YtDlp = defaultYtDlpBinary
	}
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	c.Tools.Whisper = strings.TrimSpace(c.Tools.Whisper)
	if c.Tools.Whisper == "" {
		c.Tools.Whisper = defaultWhisperBinary
	}
}

func (c *Config) normalizeWhisper() {
	c.Whisper.Backend = strings.ToLower(strings.TrimSpace(c.Whisper.Backend))
	if c.Whisper.Backend == "" {
		c.Whisper.Backend = defaultWhisperBackend
	}
	c.Whisper.Model = strings.TrimSpace(c.Whisper.Model)
	if c.Whisper.Model == "" {
		c.Whisper.Model = defaultWhisperModel
	}
	c.Whisper.Language = strings.ToLower(strings.TrimSpace(c.Whisper.Language))
	c.Whisper.APIKey = strings.TrimSpace(c.Whisper.APIKey)
	if c.Whisper.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.Whisper.APIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	if c.LLM.Referer == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("DEEPSEEK_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLinkedIn() {
	c.LinkedIn.BaseURL = strings.TrimSpace(c.LinkedIn.BaseURL)
	if c.LinkedIn.BaseURL == "" {
		c.LinkedIn.BaseURL = defaultLinkedInBaseURL
	}
	if c.LinkedIn.TimeoutSeconds <= 0 {
		c.LinkedIn.TimeoutSeconds = defaultLinkedInTimeout
	}
	c.LinkedIn.AccessToken = strings.TrimSpace(c.LinkedIn.AccessToken)
	if c.LinkedIn.AccessToken == "" {
		if value, ok := os.LookupEnv("LINKEDIN_ACCESS_TOKEN"); ok {
			c.LinkedIn.AccessToken = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
