package config

const (
	defaultWorkDir              = "~/.local/share/vidscribe/work"
	defaultLogDir               = "~/.local/share/vidscribe/logs"
	defaultChunkDuration        = 30
	defaultOnTranscriptionError = "continue"
	defaultFetchTimeout         = 600
	defaultTranscribeTimeout    = 900
	defaultYtDlpBinary          = "yt-dlp"
	defaultFFmpegBinary         = "ffmpeg"
	defaultWhisperBinary        = "whisper"
	defaultWhisperBackend       = "local"
	defaultWhisperModel         = "base"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLLMBaseURL           = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel             = "deepseek/deepseek-chat"
	defaultLLMReferer           = "https://github.com/vidscribe/vidscribe"
	defaultLLMTitle             = "Vidscribe Persona Generator"
	defaultLLMTimeoutSeconds    = 60
	defaultLinkedInBaseURL      = "https://api.linkedin.com/v2"
	defaultLinkedInTimeout      = 15
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
		},
		Pipeline: Pipeline{
			ChunkDuration:        defaultChunkDuration,
			OnTranscriptionError: defaultOnTranscriptionError,
			FetchTimeout:         defaultFetchTimeout,
			TranscribeTimeout:    defaultTranscribeTimeout,
		},
		Tools: Tools{
			YtDlp:   defaultYtDlpBinary,
			FFmpeg:  defaultFFmpegBinary,
			Whisper: defaultWhisperBinary,
		},
		Whisper: Whisper{
			Backend: defaultWhisperBackend,
			Model:   defaultWhisperModel,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		LinkedIn: LinkedIn{
			BaseURL:        defaultLinkedInBaseURL,
			TimeoutSeconds: defaultLinkedInTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
