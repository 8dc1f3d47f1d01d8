package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"vidscribe/internal/config"
	"vidscribe/internal/fileutil"
	"vidscribe/internal/logging"
	"vidscribe/internal/services"
)

// State is the supervisor lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// DurationProber reports a source's media length in seconds.
type DurationProber interface {
	Duration(ctx context.Context, source string) (float64, error)
}

// Deps bundles the collaborators a supervisor drives.
type Deps struct {
	Prober      DurationProber
	Fetcher     SegmentFetcher
	Validator   ArtifactValidator
	Transcriber Transcriber
	Recorder    RunRecorder
}

// RunReport summarizes a finished pipeline run.
type RunReport struct {
	RunID        string
	Source       string
	MediaSeconds float64
	TotalChunks  int
	Transcripts  []string
	FailedChunks []int
	Elapsed      time.Duration
}

// Supervisor orchestrates a single download/transcribe run: it plans chunks,
// runs the downloader and transcription worker concurrently, and guarantees
// the worker is released through exactly one end-of-stream marker even when
// the downloader fails mid-run.
type Supervisor struct {
	cfg    *config.Config
	deps   Deps
	logger *slog.Logger
	state  atomic.Int32
}

// NewSupervisor constructs a supervisor.
func NewSupervisor(cfg *config.Config, logger *slog.Logger, deps Deps) (*Supervisor, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if deps.Prober == nil {
		return nil, errors.New("duration prober required")
	}
	if deps.Fetcher == nil {
		return nil, errors.New("segment fetcher required")
	}
	if deps.Transcriber == nil {
		return nil, errors.New("transcriber required")
	}
	if deps.Recorder == nil {
		deps.Recorder = NopRecorder{}
	}
	return &Supervisor{
		cfg:    cfg,
		deps:   deps,
		logger: logging.NewComponentLogger(logger, "supervisor"),
	}, nil
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	return State(s.state.Load())
}

// Run executes the pipeline for source. A supervisor runs at most once; the
// terminal state is Completed or Failed.
func (s *Supervisor) Run(ctx context.Context, source string) (*RunReport, error) {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return nil, fmt.Errorf("supervisor already ran (state %s)", s.State())
	}

	report, err := s.run(ctx, source)
	if err != nil {
		s.state.Store(int32(StateFailed))
		return report, err
	}
	s.state.Store(int32(StateCompleted))
	return report, nil
}

func (s *Supervisor) run(ctx context.Context, source string) (*RunReport, error) {
	if err := s.cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	lock := flock.New(filepath.Join(s.cfg.Paths.WorkDir, "vidscribe.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, errors.New("another run is already in progress for this work directory")
	}
	defer func() { _ = lock.Unlock() }()

	started := time.Now()
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, s.logger)

	mediaSeconds, err := s.deps.Prober.Duration(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("probe media length: %w", err)
	}

	chunks, err := Plan(mediaSeconds, s.cfg.Pipeline.ChunkDuration)
	if err != nil {
		return nil, err
	}

	if err := s.deps.Recorder.BeginRun(ctx, runID, source, s.cfg.Pipeline.ChunkDuration, chunks); err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}

	logger.Info("run started",
		logging.String("source", source),
		logging.Float64("media_seconds", mediaSeconds),
		logging.Int("chunks", len(chunks)))

	report := &RunReport{
		RunID:        runID,
		Source:       source,
		MediaSeconds: mediaSeconds,
		TotalChunks:  len(chunks),
	}

	queue := NewHandoffQueue()
	downloader := NewDownloader(s.deps.Fetcher, s.deps.Validator, s.cfg.Paths.WorkDir, s.logger)
	worker, err := NewTranscriptionWorker(WorkerOptions{
		Transcriber:     s.deps.Transcriber,
		WorkDir:         s.cfg.Paths.WorkDir,
		RunID:           runID,
		Recorder:        s.deps.Recorder,
		Logger:          s.logger,
		ContinueOnError: s.cfg.ContinueOnTranscriptionError(),
		Timeout:         time.Duration(s.cfg.Pipeline.TranscribeTimeout) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	prodCtx, cancelProducer := context.WithCancel(ctx)
	defer cancelProducer()

	var (
		endOnce     sync.Once
		producerErr error
		prodDone    = make(chan struct{})
	)

	// The marker must reach the consumer exactly once no matter how the
	// producer exits, otherwise the worker would block forever.
	sealQueue := func() {
		endOnce.Do(func() {
			if err := queue.PushEnd(); err != nil {
				logger.Error("seal queue", logging.Error(err))
			}
		})
	}

	go func() {
		defer close(prodDone)
		defer sealQueue()
		for _, chunk := range chunks {
			if err := prodCtx.Err(); err != nil {
				producerErr = err
				return
			}
			chunkCtx := services.WithChunk(services.WithStage(prodCtx, "download"), chunk.Index)
			_ = s.deps.Recorder.ChunkDownloading(chunkCtx, runID, chunk.Index)
			artifact, err := downloader.Fetch(chunkCtx, source, chunk)
			if err != nil {
				_ = s.deps.Recorder.ChunkFailed(context.WithoutCancel(chunkCtx), runID, chunk.Index, err.Error())
				producerErr = err
				return
			}
			_ = s.deps.Recorder.ChunkDownloaded(chunkCtx, runID, chunk.Index, artifact.Path)
			if err := queue.Push(artifact); err != nil {
				producerErr = err
				return
			}
		}
	}()

	result, workerErr := worker.Run(ctx, queue)
	if workerErr != nil {
		cancelProducer()
	}
	<-prodDone

	// Artifacts the worker never claimed are removed here so aborted runs do
	// not leave audio files behind.
	for _, artifact := range queue.DrainArtifacts() {
		_ = fileutil.RemoveIfExists(artifact.Path)
	}

	report.Transcripts = result.Transcripts
	report.FailedChunks = result.FailedChunks
	report.Elapsed = time.Since(started)

	finishCtx := context.WithoutCancel(ctx)
	switch {
	case workerErr != nil:
		_ = s.deps.Recorder.FinishRun(finishCtx, runID, false, workerErr.Error())
		logger.Error("run failed", logging.Error(workerErr))
		return report, workerErr
	case producerErr != nil:
		_ = s.deps.Recorder.FinishRun(finishCtx, runID, false, producerErr.Error())
		logger.Error("run failed", logging.Error(producerErr))
		return report, producerErr
	default:
		_ = s.deps.Recorder.FinishRun(finishCtx, runID, true, "")
		logger.Info("run completed",
			logging.Int("transcripts", len(report.Transcripts)),
			logging.Int("failed_chunks", len(report.FailedChunks)),
			logging.Duration("elapsed", report.Elapsed))
		return report, nil
	}
}
