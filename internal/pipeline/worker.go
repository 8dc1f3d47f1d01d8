package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"vidscribe/internal/fileutil"
	"vidscribe/internal/logging"
	"vidscribe/internal/services"
)

// Transcriber converts an audio file to text. outputDir is where the backend
// may write intermediate files.
type Transcriber interface {
	Transcribe(ctx context.Context, source, outputDir string) (string, error)
}

// WorkerResult summarizes a consumer pass over the handoff queue.
type WorkerResult struct {
	// Transcripts holds the final transcript paths for completed chunks.
	Transcripts []string
	// FailedChunks lists chunk indices whose transcription failed.
	FailedChunks []int
}

// TranscriptionWorker is the consumer side of the handoff queue. It pops
// artifacts until the end-of-stream marker, transcribes each one, writes the
// transcript file, and deletes the transient audio artifact.
type TranscriptionWorker struct {
	transcriber     Transcriber
	workDir         string
	runID           string
	recorder        RunRecorder
	logger          *slog.Logger
	continueOnError bool
	timeout         time.Duration
}

// WorkerOptions configures a transcription worker.
type WorkerOptions struct {
	Transcriber Transcriber
	WorkDir     string
	RunID       string
	Recorder    RunRecorder
	Logger      *slog.Logger
	// ContinueOnError keeps processing queued chunks after a transcription
	// failure instead of aborting the run.
	ContinueOnError bool
	// Timeout bounds a single chunk transcription. Zero disables it.
	Timeout time.Duration
}

// NewTranscriptionWorker constructs a worker.
func NewTranscriptionWorker(opts WorkerOptions) (*TranscriptionWorker, error) {
	if opts.Transcriber == nil {
		return nil, errors.New("transcriber required")
	}
	if opts.WorkDir == "" {
		return nil, errors.New("work directory required")
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &TranscriptionWorker{
		transcriber:     opts.Transcriber,
		workDir:         opts.WorkDir,
		runID:           opts.RunID,
		recorder:        recorder,
		logger:          logging.NewComponentLogger(opts.Logger, "transcriber"),
		continueOnError: opts.ContinueOnError,
		timeout:         opts.Timeout,
	}, nil
}

// Run consumes the queue until the end-of-stream marker arrives. With the
// continue policy, chunk failures are recorded and processing moves on; with
// the abort policy the first failure stops the worker and is returned.
func (w *TranscriptionWorker) Run(ctx context.Context, queue *HandoffQueue) (WorkerResult, error) {
	var result WorkerResult
	for {
		msg, err := queue.Pop(ctx)
		if err != nil {
			return result, fmt.Errorf("pop chunk: %w", err)
		}
		if msg.Kind == MessageEndOfStream {
			return result, nil
		}

		transcriptPath, err := w.process(ctx, msg.Artifact)
		if err != nil {
			index := msg.Artifact.Chunk.Index
			result.FailedChunks = append(result.FailedChunks, index)
			_ = w.recorder.ChunkFailed(ctx, w.runID, index, err.Error())
			if !w.continueOnError {
				return result, err
			}
			w.logger.Warn("chunk transcription failed, continuing",
				logging.Int(logging.FieldChunk, index),
				logging.Error(err))
			continue
		}
		result.Transcripts = append(result.Transcripts, transcriptPath)
	}
}

// process transcribes one artifact and writes its transcript. The transient
// audio file is removed before returning, success or not.
func (w *TranscriptionWorker) process(ctx context.Context, artifact AudioArtifact) (string, error) {
	index := artifact.Chunk.Index
	ctx = services.WithChunk(services.WithStage(ctx, "transcribe"), index)
	logger := logging.WithContext(ctx, w.logger)

	defer func() {
		if err := fileutil.RemoveIfExists(artifact.Path); err != nil {
			logger.Warn("remove artifact", logging.Error(err))
		}
	}()

	_ = w.recorder.ChunkTranscribing(ctx, w.runID, index)

	transcribeCtx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		transcribeCtx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	started := time.Now()
	text, err := w.transcriber.Transcribe(transcribeCtx, artifact.Path, w.workDir)
	if err != nil {
		return "", fmt.Errorf("%w: chunk %d: %w", ErrTranscriptionFailed, index, err)
	}

	transcriptPath := filepath.Join(w.workDir, fmt.Sprintf("transcript_chunk_%d.txt", index))
	if err := fileutil.WriteFileAtomic(transcriptPath, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("%w: chunk %d: write transcript: %w", ErrTranscriptionFailed, index, err)
	}

	_ = w.recorder.ChunkCompleted(ctx, w.runID, index, transcriptPath)
	logger.Info("chunk transcribed",
		logging.String("transcript", transcriptPath),
		logging.Duration("elapsed", time.Since(started)))
	return transcriptPath, nil
}
