package pipeline

import "errors"

var (
	// ErrInvalidPlan indicates chunk planning inputs were not usable.
	ErrInvalidPlan = errors.New("invalid chunk plan")
	// ErrDownloadFailed indicates the external fetch tool failed for a chunk.
	ErrDownloadFailed = errors.New("download failed")
	// ErrEmptyArtifact indicates a fetch reported success but produced a
	// missing or zero-byte artifact.
	ErrEmptyArtifact = errors.New("empty artifact")
	// ErrValidationFailed indicates the fetched artifact failed the
	// integrity check.
	ErrValidationFailed = errors.New("artifact validation failed")
	// ErrTranscriptionFailed indicates transcription of a chunk failed.
	ErrTranscriptionFailed = errors.New("transcription failed")
	// ErrQueueProtocol indicates the handoff queue was used after its
	// end-of-stream marker.
	ErrQueueProtocol = errors.New("queue protocol violation")
)
