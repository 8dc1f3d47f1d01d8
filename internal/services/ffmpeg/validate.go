package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"vidscribe/internal/services"
)

// Validator checks downloaded audio artifacts for corruption.
type Validator interface {
	ValidateAudio(ctx context.Context, path string) error
}

// Service wraps FFmpeg integrity checks on audio artifacts.
type Service struct {
	binary        string
	commandRunner func(ctx context.Context, name string, args ...string) (string, error)
}

// NewService creates an FFmpeg service using the given binary.
func NewService(binary string) *Service {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Service{binary: binary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) (string, error)) {
	s.commandRunner = runner
}

// ValidateAudio decodes the file with error-only logging and discards the
// output. Any decode diagnostic or non-zero exit marks the artifact corrupt.
func (s *Service) ValidateAudio(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("validate audio: path required")
	}

	args := []string{"-v", "error", "-i", path, "-f", "null", "-"}
	output, err := s.run(ctx, s.binary, args...)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "validate audio", path, err)
	}
	if diagnostics := strings.TrimSpace(output); diagnostics != "" {
		return services.Wrap(services.ErrValidation, "ffmpeg", "validate audio",
			fmt.Sprintf("%s: decoder reported: %s", path, firstLine(diagnostics)), nil)
	}
	return nil
}

func (s *Service) run(ctx context.Context, name string, args ...string) (string, error) {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return string(output), nil
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[:idx])
	}
	return text
}
