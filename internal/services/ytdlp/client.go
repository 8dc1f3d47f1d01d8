package ytdlp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"vidscribe/internal/services"
)

// Fetcher defines the behaviour required by the chunk downloader.
type Fetcher interface {
	FetchSegment(ctx context.Context, source string, startSec, endSec float64, basePath string) (string, error)
	Duration(ctx context.Context, source string) (float64, error)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps yt-dlp CLI interactions for per-chunk audio extraction.
type Client struct {
	binary       string
	fetchTimeout time.Duration
	exec         Executor
}

// New constructs a yt-dlp client.
func New(binary string, fetchTimeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{
		binary:       binary,
		fetchTimeout: time.Duration(fetchTimeoutSeconds) * time.Second,
		exec:         commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FetchSegment downloads the [startSec, endSec) audio range of source and
// extracts it to MP3. basePath is the destination path without extension; the
// resulting artifact path (basePath + ".mp3") is returned.
//
// The time range is applied during audio extraction, so only the requested
// window survives in the output even though yt-dlp may buffer more.
func (c *Client) FetchSegment(ctx context.Context, source string, startSec, endSec float64, basePath string) (string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", errors.New("source URL required")
	}
	if basePath == "" {
		return "", errors.New("destination path required")
	}
	if endSec <= startSec {
		return "", fmt.Errorf("invalid time range [%s, %s)", formatSeconds(startSec), formatSeconds(endSec))
	}

	fetchCtx := ctx
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()
	}

	dest := basePath + ".mp3"
	if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("prepare destination: %w", err)
	}

	args := buildFetchArgs(source, startSec, endSec, basePath)
	if err := c.exec.Run(fetchCtx, c.binary, args, nil); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "yt-dlp", "fetch segment", "", err)
	}
	return dest, nil
}

// Duration probes the source length in seconds without downloading media.
func (c *Client) Duration(ctx context.Context, source string) (float64, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return 0, errors.New("source URL required")
	}

	probeCtx := ctx
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()
	}

	args := []string{
		"--skip-download",
		"--no-playlist",
		"--print", "duration",
		source,
	}

	var lines []string
	if err := c.exec.Run(probeCtx, c.binary, args, func(line string) {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}); err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "yt-dlp", "probe", "", err)
	}

	for _, line := range lines {
		if seconds, err := strconv.ParseFloat(line, 64); err == nil && seconds > 0 {
			return seconds, nil
		}
	}
	return 0, services.Wrap(services.ErrExternalTool, "yt-dlp", "probe", "no duration reported for "+source, nil)
}

func buildFetchArgs(source string, startSec, endSec float64, basePath string) []string {
	return []string{
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", "mp3",
		"--postprocessor-args", fmt.Sprintf("ffmpeg:-ss %s -to %s", formatSeconds(startSec), formatSeconds(endSec)),
		"-o", basePath + ".%(ext)s",
		"--no-playlist",
		"--no-progress",
		source,
	}
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once
	var tail lineBuffer

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := scanner.Text()
			tail.append(line)
			if onLine != nil {
				onLine(line)
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		if detail := tail.String(); detail != "" {
			return fmt.Errorf("wait command: %w: %s", err, detail)
		}
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}

// lineBuffer keeps the last few output lines for error reporting.
type lineBuffer struct {
	mu    sync.Mutex
	lines []string
}

const lineBufferLimit = 5

func (b *lineBuffer) append(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
	if len(b.lines) > lineBufferLimit {
		b.lines = b.lines[len(b.lines)-lineBufferLimit:]
	}
}

func (b *lineBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.lines, "; ")
}
