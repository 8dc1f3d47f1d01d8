package pipeline

// AudioArtifact is a fetched and validated chunk ready for transcription.
type AudioArtifact struct {
	Chunk Chunk
	// Path is the location of the transient audio file on disk.
	Path string
	// Size is the artifact's byte size at validation time.
	Size int64
}

// MessageKind discriminates handoff queue messages.
type MessageKind int

const (
	// MessageArtifact carries a chunk artifact for transcription.
	MessageArtifact MessageKind = iota
	// MessageEndOfStream marks that no further artifacts will arrive.
	MessageEndOfStream
)

// Message is the unit passed from the downloader to the transcription worker.
type Message struct {
	Kind     MessageKind
	Artifact AudioArtifact
}
