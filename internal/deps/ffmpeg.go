package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// CheckFFmpegForYtDlp reports the FFmpeg binary yt-dlp will execute for audio
// extraction.
//
// yt-dlp prefers an ffmpeg binary sitting next to the yt-dlp executable
// (its --ffmpeg-location default) and falls back to resolving "ffmpeg" from
// PATH. This helper mirrors that lookup so status output matches what the
// fetch step actually runs.
func CheckFFmpegForYtDlp(ytdlpCommand string) Status {
	result := Status{
		Name:        "FFmpeg",
		Description: "Used by yt-dlp for audio extraction",
	}

	ytdlpBinary := strings.TrimSpace(ytdlpCommand)
	if ytdlpBinary != "" {
		if resolved, err := exec.LookPath(ytdlpBinary); err == nil {
			if candidate, ok := sidecarCandidate(resolved); ok {
				if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
					result.Command = candidate
					result.Available = true
					return result
				}
			}
		}
	}

	ffmpegName := "ffmpeg"
	if ffmpegPath, err := exec.LookPath(ffmpegName); err == nil {
		result.Command = ffmpegPath
		result.Available = true
		return result
	}

	result.Command = ffmpegName
	result.Available = false
	result.Detail = fmt.Sprintf("binary %q not found", ffmpegName)
	return result
}

func sidecarCandidate(ytdlpPath string) (string, bool) {
	if ytdlpPath == "" {
		return "", false
	}
	dir := filepath.Dir(ytdlpPath)
	name := "ffmpeg"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(dir, name), true
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
