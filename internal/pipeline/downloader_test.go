package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"vidscribe/internal/pipeline"
)

type fetchCall struct {
	source   string
	startSec float64
	endSec   float64
}

// stubFetcher writes basePath+".mp3" with the configured content per call.
type stubFetcher struct {
	mu      sync.Mutex
	calls   []fetchCall
	content []byte
	err     error
}

func (f *stubFetcher) FetchSegment(_ context.Context, source string, startSec, endSec float64, basePath string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fetchCall{source: source, startSec: startSec, endSec: endSec})
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	dest := basePath + ".mp3"
	if err := os.WriteFile(dest, f.content, 0o644); err != nil {
		return "", err
	}
	return dest, nil
}

type stubValidator struct {
	err error
}

func (v *stubValidator) ValidateAudio(context.Context, string) error {
	return v.err
}

func TestDownloaderFetchesAndValidates(t *testing.T) {
	workDir := t.TempDir()
	fetcher := &stubFetcher{content: []byte("audio bytes")}
	downloader := pipeline.NewDownloader(fetcher, &stubValidator{}, workDir, nil)

	chunk := pipeline.Chunk{Index: 4, StartSec: 120, EndSec: 150}
	art, err := downloader.Fetch(context.Background(), "https://example.com/v", chunk)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if art.Chunk != chunk {
		t.Fatalf("unexpected chunk %#v", art.Chunk)
	}
	if art.Size != int64(len("audio bytes")) {
		t.Fatalf("expected artifact size %d, got %d", len("audio bytes"), art.Size)
	}
	if _, err := os.Stat(art.Path); err != nil {
		t.Fatalf("expected artifact on disk: %v", err)
	}
	if len(fetcher.calls) != 1 || fetcher.calls[0].startSec != 120 || fetcher.calls[0].endSec != 150 {
		t.Fatalf("unexpected fetch call %#v", fetcher.calls)
	}
}

func TestDownloaderMapsFetchFailure(t *testing.T) {
	downloader := pipeline.NewDownloader(&stubFetcher{err: fmt.Errorf("exit status 1")}, &stubValidator{}, t.TempDir(), nil)
	_, err := downloader.Fetch(context.Background(), "src", pipeline.Chunk{Index: 0, EndSec: 30})
	if !errors.Is(err, pipeline.ErrDownloadFailed) {
		t.Fatalf("expected ErrDownloadFailed, got %v", err)
	}
}

func TestDownloaderRejectsEmptyArtifact(t *testing.T) {
	workDir := t.TempDir()
	downloader := pipeline.NewDownloader(&stubFetcher{content: nil}, &stubValidator{}, workDir, nil)

	_, err := downloader.Fetch(context.Background(), "src", pipeline.Chunk{Index: 2, StartSec: 60, EndSec: 90})
	if !errors.Is(err, pipeline.ErrEmptyArtifact) {
		t.Fatalf("expected ErrEmptyArtifact, got %v", err)
	}

	entries, readErr := os.ReadDir(workDir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty artifact to be removed, found %d entries", len(entries))
	}
}

func TestDownloaderRejectsCorruptArtifact(t *testing.T) {
	workDir := t.TempDir()
	validator := &stubValidator{err: errors.New("Header missing")}
	downloader := pipeline.NewDownloader(&stubFetcher{content: []byte("garbage")}, validator, workDir, nil)

	_, err := downloader.Fetch(context.Background(), "src", pipeline.Chunk{Index: 1, StartSec: 30, EndSec: 60})
	if !errors.Is(err, pipeline.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}

	entries, readErr := os.ReadDir(workDir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("expected corrupt artifact to be removed, found %d entries", len(entries))
	}
}

func TestDownloaderOverwritesPreviousArtifact(t *testing.T) {
	workDir := t.TempDir()
	fetcher := &stubFetcher{content: []byte("fresh")}
	downloader := pipeline.NewDownloader(fetcher, &stubValidator{}, workDir, nil)
	chunk := pipeline.Chunk{Index: 0, EndSec: 30}

	first, err := downloader.Fetch(context.Background(), "src", chunk)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := downloader.Fetch(context.Background(), "src", chunk)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if first.Path != second.Path {
		t.Fatalf("expected stable artifact path, got %q and %q", first.Path, second.Path)
	}
}
