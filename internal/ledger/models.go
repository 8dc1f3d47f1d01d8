package ledger

import "time"

// RunStatus represents the lifecycle of a pipeline run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// ChunkStatus represents the lifecycle of a single chunk within a run.
type ChunkStatus string

const (
	ChunkPlanned      ChunkStatus = "planned"
	ChunkDownloading  ChunkStatus = "downloading"
	ChunkDownloaded   ChunkStatus = "downloaded"
	ChunkTranscribing ChunkStatus = "transcribing"
	ChunkCompleted    ChunkStatus = "completed"
	ChunkFailed       ChunkStatus = "failed"
)

// Run is a persisted pipeline execution.
type Run struct {
	ID            string
	Source        string
	ChunkDuration int
	TotalChunks   int
	Status        RunStatus
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Chunk is the persisted state of one planned chunk.
type Chunk struct {
	RunID          string
	Index          int
	StartSec       float64
	EndSec         float64
	Status         ChunkStatus
	ArtifactPath   string
	TranscriptPath string
	ErrorMessage   string
	UpdatedAt      time.Time
}

// ChunkSpan describes a planned chunk time range for run registration.
type ChunkSpan struct {
	Index    int
	StartSec float64
	EndSec   float64
}
