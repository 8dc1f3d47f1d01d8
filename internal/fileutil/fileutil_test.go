package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"vidscribe/internal/fileutil"
)

func TestWriteFileAtomicOverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript_chunk_0.txt")
	if err := fileutil.WriteFileAtomic(path, []byte("first"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := fileutil.WriteFileAtomic(path, []byte("second"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(raw) != "second" {
		t.Fatalf("expected overwrite, got %q", raw)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected no leftover temp files, got %d entries", len(entries))
	}
}

func TestRemoveIfExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio_chunk_0.mp3")
	if err := fileutil.RemoveIfExists(path); err != nil {
		t.Fatalf("remove missing: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := fileutil.RemoveIfExists(path); err != nil {
		t.Fatalf("remove existing: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected file to be gone")
	}
}

func TestFileSize(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing")
	if size, err := fileutil.FileSize(missing); err != nil || size != 0 {
		t.Fatalf("missing file: size=%d err=%v", size, err)
	}

	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if size, err := fileutil.FileSize(empty); err != nil || size != 0 {
		t.Fatalf("empty file: size=%d err=%v", size, err)
	}

	full := filepath.Join(dir, "full")
	if err := os.WriteFile(full, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if size, err := fileutil.FileSize(full); err != nil || size != 5 {
		t.Fatalf("non-empty file: size=%d err=%v", size, err)
	}

	if _, err := fileutil.FileSize(dir); err == nil {
		t.Fatal("expected error for directory")
	}
}
