package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidscribe/internal/logging"
	"vidscribe/internal/services"
)

func TestNewWritesConsoleLinesWithComponentPrefix(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{
		Level:       "debug",
		Format:      "console",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	component := logging.NewComponentLogger(logger, "downloader")
	component.Info("chunk fetched", logging.Int("chunk", 3), logging.String("path", "/tmp/audio chunk"))

	raw, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(raw)
	if !strings.Contains(line, "INFO downloader: chunk fetched") {
		t.Fatalf("unexpected log line: %q", line)
	}
	if !strings.Contains(line, "chunk=3") {
		t.Fatalf("expected chunk attr in line: %q", line)
	}
	if !strings.Contains(line, `path="/tmp/audio chunk"`) {
		t.Fatalf("expected quoted path attr in line: %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsRunStageAndChunk(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := services.WithRunID(context.Background(), "run-9")
	ctx = services.WithStage(ctx, "transcribe")
	ctx = services.WithChunk(ctx, 2)

	logging.WithContext(ctx, logger).Info("transcript written")

	raw, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(raw)
	for _, want := range []string{"run_id=run-9", "stage=transcribe", "chunk=2"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in line %q", want, line)
		}
	}
}
