package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"vidscribe/internal/config"
)

// Requirement defines an external dependency vidscribe relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements derives the external binary requirements from configuration.
// The whisper CLI is optional when the API backend is selected.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{Name: "yt-dlp", Command: cfg.Tools.YtDlp, Description: "Fetches and extracts per-chunk audio"},
		{Name: "FFmpeg", Command: cfg.Tools.FFmpeg, Description: "Audio extraction and integrity checks"},
	}
	whisper := Requirement{
		Name:        "Whisper",
		Command:     cfg.Tools.Whisper,
		Description: "Local speech-to-text transcription",
	}
	if cfg.Whisper.Backend == "api" {
		whisper.Optional = true
		whisper.Description = "Local speech-to-text transcription (unused with api backend)"
	}
	return append(reqs, whisper)
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of required dependencies that are unavailable.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if status.Optional || status.Available {
			continue
		}
		missing = append(missing, status.Name)
	}
	return missing
}
