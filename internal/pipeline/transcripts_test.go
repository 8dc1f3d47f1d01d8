package pipeline_test

import (
	"os"
	"path/filepath"
	"testing"

	"vidscribe/internal/pipeline"
)

func TestCollectTranscriptsJoinsInChunkOrder(t *testing.T) {
	dir := t.TempDir()
	// Written out of order, including a double-digit index to catch
	// lexicographic sorting mistakes.
	for name, content := range map[string]string{
		"transcript_chunk_10.txt": "ten",
		"transcript_chunk_0.txt":  "zero",
		"transcript_chunk_2.txt":  "two",
		"notes.txt":               "ignored",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	text, err := pipeline.CollectTranscripts(dir)
	if err != nil {
		t.Fatalf("CollectTranscripts: %v", err)
	}
	if text != "zero\ntwo\nten" {
		t.Fatalf("unexpected order: %q", text)
	}
}

func TestCollectTranscriptsEmptyDir(t *testing.T) {
	if _, err := pipeline.CollectTranscripts(t.TempDir()); err == nil {
		t.Fatal("expected error when no transcripts exist")
	}
}
