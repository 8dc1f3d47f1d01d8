package pipeline

import (
	"context"

	"vidscribe/internal/ledger"
)

// RunRecorder receives run and chunk state transitions for persistence. The
// producer reports download transitions, the consumer reports transcription
// transitions; artifact ownership is still handed over through the queue only.
type RunRecorder interface {
	BeginRun(ctx context.Context, runID, source string, chunkDurationSec int, chunks []Chunk) error
	ChunkDownloading(ctx context.Context, runID string, index int) error
	ChunkDownloaded(ctx context.Context, runID string, index int, artifactPath string) error
	ChunkTranscribing(ctx context.Context, runID string, index int) error
	ChunkCompleted(ctx context.Context, runID string, index int, transcriptPath string) error
	ChunkFailed(ctx context.Context, runID string, index int, detail string) error
	FinishRun(ctx context.Context, runID string, succeeded bool, detail string) error
}

// LedgerRecorder persists transitions to the SQLite run ledger.
type LedgerRecorder struct {
	store *ledger.Store
}

// NewLedgerRecorder wraps a ledger store.
func NewLedgerRecorder(store *ledger.Store) *LedgerRecorder {
	return &LedgerRecorder{store: store}
}

func (r *LedgerRecorder) BeginRun(ctx context.Context, runID, source string, chunkDurationSec int, chunks []Chunk) error {
	spans := make([]ledger.ChunkSpan, 0, len(chunks))
	for _, chunk := range chunks {
		spans = append(spans, ledger.ChunkSpan{Index: chunk.Index, StartSec: chunk.StartSec, EndSec: chunk.EndSec})
	}
	return r.store.BeginRun(ctx, runID, source, chunkDurationSec, spans)
}

func (r *LedgerRecorder) ChunkDownloading(ctx context.Context, runID string, index int) error {
	return r.store.MarkChunk(ctx, runID, index, ledger.ChunkDownloading, "")
}

func (r *LedgerRecorder) ChunkDownloaded(ctx context.Context, runID string, index int, artifactPath string) error {
	return r.store.MarkChunkDownloaded(ctx, runID, index, artifactPath)
}

func (r *LedgerRecorder) ChunkTranscribing(ctx context.Context, runID string, index int) error {
	return r.store.MarkChunk(ctx, runID, index, ledger.ChunkTranscribing, "")
}

func (r *LedgerRecorder) ChunkCompleted(ctx context.Context, runID string, index int, transcriptPath string) error {
	return r.store.MarkChunkCompleted(ctx, runID, index, transcriptPath)
}

func (r *LedgerRecorder) ChunkFailed(ctx context.Context, runID string, index int, detail string) error {
	return r.store.MarkChunk(ctx, runID, index, ledger.ChunkFailed, detail)
}

func (r *LedgerRecorder) FinishRun(ctx context.Context, runID string, succeeded bool, detail string) error {
	status := ledger.RunCompleted
	if !succeeded {
		status = ledger.RunFailed
	}
	return r.store.FinishRun(ctx, runID, status, detail)
}

// NopRecorder discards all transitions.
type NopRecorder struct{}

func (NopRecorder) BeginRun(context.Context, string, string, int, []Chunk) error { return nil }
func (NopRecorder) ChunkDownloading(context.Context, string, int) error          { return nil }
func (NopRecorder) ChunkDownloaded(context.Context, string, int, string) error   { return nil }
func (NopRecorder) ChunkTranscribing(context.Context, string, int) error         { return nil }
func (NopRecorder) ChunkCompleted(context.Context, string, int, string) error    { return nil }
func (NopRecorder) ChunkFailed(context.Context, string, int, string) error       { return nil }
func (NopRecorder) FinishRun(context.Context, string, bool, string) error        { return nil }
