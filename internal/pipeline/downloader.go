package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"vidscribe/internal/fileutil"
	"vidscribe/internal/logging"
)

// SegmentFetcher downloads the audio of a source time range to disk.
type SegmentFetcher interface {
	FetchSegment(ctx context.Context, source string, startSec, endSec float64, basePath string) (string, error)
}

// ArtifactValidator checks a fetched artifact for corruption.
type ArtifactValidator interface {
	ValidateAudio(ctx context.Context, path string) error
}

// Downloader fetches and validates chunk artifacts. It is the producer side
// of the handoff queue.
type Downloader struct {
	fetcher   SegmentFetcher
	validator ArtifactValidator
	workDir   string
	logger    *slog.Logger
}

// NewDownloader constructs a downloader writing artifacts into workDir.
func NewDownloader(fetcher SegmentFetcher, validator ArtifactValidator, workDir string, logger *slog.Logger) *Downloader {
	return &Downloader{
		fetcher:   fetcher,
		validator: validator,
		workDir:   workDir,
		logger:    logging.NewComponentLogger(logger, "downloader"),
	}
}

// Fetch downloads the chunk's time range and validates the resulting file.
// Artifacts from previous runs of the same chunk are overwritten.
func (d *Downloader) Fetch(ctx context.Context, source string, chunk Chunk) (AudioArtifact, error) {
	basePath := filepath.Join(d.workDir, fmt.Sprintf("audio_chunk_%d", chunk.Index))

	path, err := d.fetcher.FetchSegment(ctx, source, chunk.StartSec, chunk.EndSec, basePath)
	if err != nil {
		return AudioArtifact{}, fmt.Errorf("%w: chunk %d [%v, %v): %w",
			ErrDownloadFailed, chunk.Index, chunk.StartSec, chunk.EndSec, err)
	}

	size, err := fileutil.FileSize(path)
	if err != nil {
		return AudioArtifact{}, fmt.Errorf("%w: chunk %d: inspect artifact: %w", ErrEmptyArtifact, chunk.Index, err)
	}
	if size == 0 {
		_ = fileutil.RemoveIfExists(path)
		return AudioArtifact{}, fmt.Errorf("%w: chunk %d produced no data at %s", ErrEmptyArtifact, chunk.Index, path)
	}

	if d.validator != nil {
		if err := d.validator.ValidateAudio(ctx, path); err != nil {
			_ = fileutil.RemoveIfExists(path)
			return AudioArtifact{}, fmt.Errorf("%w: chunk %d: %w", ErrValidationFailed, chunk.Index, err)
		}
	}

	logging.WithContext(ctx, d.logger).Info("chunk fetched",
		logging.Float64("start_sec", chunk.StartSec),
		logging.Float64("end_sec", chunk.EndSec),
		logging.String("path", path),
		logging.Int64("size_bytes", size))
	return AudioArtifact{Chunk: chunk, Path: path, Size: size}, nil
}
