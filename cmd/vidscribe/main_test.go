package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"vidscribe/internal/config"
	"vidscribe/internal/ledger"
	"vidscribe/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLIPlanCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"plan", "https://example.com/watch?v=abc", "--duration", "570"}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !strings.Contains(out, "19 chunks of 30s") {
		t.Fatalf("unexpected plan summary: %q", out)
	}
	if !strings.Contains(out, "0:00.0") || !strings.Contains(out, "9:30.0") {
		t.Fatalf("plan table missing chunk boundaries: %q", out)
	}
	if !strings.Contains(out, "18") {
		t.Fatalf("plan table missing last chunk index: %q", out)
	}
}

func TestCLIPlanCommandTruncatesLastChunk(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"plan", "https://example.com/v", "--duration", "70"}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !strings.Contains(out, "3 chunks of 30s") {
		t.Fatalf("unexpected plan summary: %q", out)
	}
	if !strings.Contains(out, "10.0s") {
		t.Fatalf("expected truncated final chunk length, got %q", out)
	}
}

func TestCLIStatusCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	if err := env.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	store, err := ledger.Open(env.cfg)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	spans := []ledger.ChunkSpan{
		{Index: 0, StartSec: 0, EndSec: 30},
		{Index: 1, StartSec: 30, EndSec: 45},
	}
	if err := store.BeginRun(ctx, "run-cli-test", "https://example.com/v", 30, spans); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := store.MarkChunkCompleted(ctx, "run-cli-test", 0, "/tmp/transcript_chunk_0.txt"); err != nil {
		t.Fatalf("MarkChunkCompleted: %v", err)
	}
	if err := store.MarkChunk(ctx, "run-cli-test", 1, ledger.ChunkFailed, "transcription exploded"); err != nil {
		t.Fatalf("MarkChunk: %v", err)
	}
	if err := store.FinishRun(ctx, "run-cli-test", ledger.RunCompleted, ""); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "run-cli-test") || !strings.Contains(out, "completed") {
		t.Fatalf("status list missing run: %q", out)
	}

	out, _, err = runCLI(t, []string{"status", "run-cli-test"}, env.configPath)
	if err != nil {
		t.Fatalf("status run-cli-test: %v", err)
	}
	if !strings.Contains(out, "transcript_chunk_0.txt") {
		t.Fatalf("status detail missing transcript path: %q", out)
	}
	if !strings.Contains(out, "transcription exploded") {
		t.Fatalf("status detail missing chunk error: %q", out)
	}
	if !strings.Contains(out, "0:30.0 - 0:45.0") {
		t.Fatalf("status detail missing chunk range: %q", out)
	}
}

func TestCLIStatusUnknownRun(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"status", "no-such-run"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestCLIDepsCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries())

	out, _, err := runCLI(t, []string{"deps"}, env.configPath)
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	for _, name := range []string{"yt-dlp", "ffmpeg", "whisper"} {
		if !strings.Contains(out, name) {
			t.Fatalf("deps output missing %s: %q", name, out)
		}
	}
}

func TestExitCode(t *testing.T) {
	if got := exitCode(nil); got != 0 {
		t.Fatalf("nil error: expected 0, got %d", got)
	}
	if got := exitCode(context.Canceled); got != 130 {
		t.Fatalf("canceled: expected 130, got %d", got)
	}
	if got := exitCode(fmt.Errorf("probe: %w", context.Canceled)); got != 130 {
		t.Fatalf("wrapped canceled: expected 130, got %d", got)
	}
	if got := exitCode(errors.New("boom")); got != 1 {
		t.Fatalf("failure: expected 1, got %d", got)
	}
}

func TestCLIDepsCommandMissingBinaries(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("PATH", testsupport.BaseDir(env.cfg))

	_, _, err := runCLI(t, []string{"deps"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "missing required binaries") {
		t.Fatalf("expected missing binaries error, got %v", err)
	}
}
