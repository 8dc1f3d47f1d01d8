package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"vidscribe/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
}

func TestRequirementsMarkWhisperOptionalForAPIBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Whisper.Backend = "api"

	reqs := Requirements(&cfg)
	var whisper *Requirement
	for i := range reqs {
		if reqs[i].Name == "Whisper" {
			whisper = &reqs[i]
		}
	}
	if whisper == nil {
		t.Fatal("expected whisper requirement")
	}
	if !whisper.Optional {
		t.Fatal("expected whisper to be optional with api backend")
	}

	cfg.Whisper.Backend = "local"
	for _, req := range Requirements(&cfg) {
		if req.Name == "Whisper" && req.Optional {
			t.Fatal("expected whisper to be required with local backend")
		}
	}
}

func TestMissingRequired(t *testing.T) {
	statuses := []Status{
		{Name: "yt-dlp", Available: true},
		{Name: "FFmpeg", Available: false},
		{Name: "Whisper", Available: false, Optional: true},
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0] != "FFmpeg" {
		t.Fatalf("unexpected missing list: %v", missing)
	}
}

func TestCheckFFmpegForYtDlpSidecar(t *testing.T) {
	tmp := t.TempDir()
	ytdlpPath := filepath.Join(tmp, executableName("yt-dlp"))
	ffmpegPath := filepath.Join(tmp, executableName("ffmpeg"))
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(ytdlpPath, script, 0o755); err != nil {
		t.Fatalf("write yt-dlp stub: %v", err)
	}
	if err := os.WriteFile(ffmpegPath, script, 0o755); err != nil {
		t.Fatalf("write ffmpeg sidecar: %v", err)
	}

	status := CheckFFmpegForYtDlp(ytdlpPath)
	if !status.Available {
		t.Fatalf("expected ffmpeg sidecar to be available, got detail %q", status.Detail)
	}
	if status.Command != ffmpegPath {
		t.Fatalf("expected ffmpeg command %q, got %q", ffmpegPath, status.Command)
	}
}

func TestCheckFFmpegForYtDlpNotFound(t *testing.T) {
	tmp := t.TempDir()
	ytdlpPath := filepath.Join(tmp, executableName("yt-dlp"))
	t.Setenv("PATH", "")
	status := CheckFFmpegForYtDlp(ytdlpPath)
	if status.Available {
		t.Fatal("expected ffmpeg resolution to fail")
	}
	if status.Detail == "" {
		t.Fatal("expected detail message when ffmpeg is unavailable")
	}
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}
