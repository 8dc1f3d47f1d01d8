package whisper

// DefaultModel is used when no model is configured.
const DefaultModel = "base"

// Config holds whisper CLI transcription settings.
type Config struct {
	// Model selects the whisper model checkpoint (tiny, base, small, ...).
	Model string
	// Language forces a transcription language. Empty enables auto-detection.
	Language string
}
