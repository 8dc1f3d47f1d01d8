package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"vidscribe/internal/config"
)

func TestLoadDefaultConfigExpandsPathsAndEnvFallbacks(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("OPENAI_API_KEY", "env-openai-key")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "vidscribe", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.Pipeline.ChunkDuration != 30 {
		t.Fatalf("unexpected chunk duration: %d", cfg.Pipeline.ChunkDuration)
	}
	if cfg.Pipeline.OnTranscriptionError != "continue" {
		t.Fatalf("unexpected failure policy: %q", cfg.Pipeline.OnTranscriptionError)
	}
	if !cfg.ContinueOnTranscriptionError() {
		t.Fatal("expected continue policy by default")
	}
	if cfg.Tools.YtDlp != "yt-dlp" || cfg.Tools.FFmpeg != "ffmpeg" {
		t.Fatalf("unexpected tool defaults: %+v", cfg.Tools)
	}
	if cfg.Whisper.Backend != "local" {
		t.Fatalf("unexpected whisper backend: %q", cfg.Whisper.Backend)
	}
	if cfg.Whisper.APIKey != "env-openai-key" {
		t.Fatalf("expected whisper API key from env, got %q", cfg.Whisper.APIKey)
	}
	if cfg.LinkedIn.Enabled {
		t.Fatal("expected LinkedIn disabled by default")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "vidscribe.toml")

	type payload struct {
		Pipeline struct {
			ChunkDuration        int    `toml:"chunk_duration"`
			OnTranscriptionError string `toml:"on_transcription_error"`
		} `toml:"pipeline"`
		Tools struct {
			YtDlp string `toml:"ytdlp"`
		} `toml:"tools"`
	}
	custom := payload{}
	custom.Pipeline.ChunkDuration = 45
	custom.Pipeline.OnTranscriptionError = "ABORT"
	custom.Tools.YtDlp = "/opt/yt-dlp/yt-dlp"

	raw, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, raw, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Pipeline.ChunkDuration != 45 {
		t.Fatalf("unexpected chunk duration: %d", cfg.Pipeline.ChunkDuration)
	}
	if cfg.Pipeline.OnTranscriptionError != "abort" {
		t.Fatalf("expected normalized abort policy, got %q", cfg.Pipeline.OnTranscriptionError)
	}
	if cfg.ContinueOnTranscriptionError() {
		t.Fatal("expected abort policy")
	}
	if cfg.Tools.YtDlp != "/opt/yt-dlp/yt-dlp" {
		t.Fatalf("unexpected yt-dlp binary: %q", cfg.Tools.YtDlp)
	}
}

func TestValidateRejectsBadFailurePolicy(t *testing.T) {
	cfg := config.Default()
	cfg.Pipeline.OnTranscriptionError = "skip"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "on_transcription_error") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateAPIKeyRequiredForAPIBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Whisper.Backend = "api"
	cfg.Whisper.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for missing API key")
	}
	cfg.Whisper.APIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	raw, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(raw), "[pipeline]") {
		t.Fatal("expected sample config to document the pipeline section")
	}
}
