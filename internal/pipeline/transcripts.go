package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// CollectTranscripts reads every transcript_chunk_<i>.txt in workDir and
// returns their contents joined in chunk order. Missing indices (failed
// chunks under the continue policy) are skipped.
func CollectTranscripts(workDir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(workDir, "transcript_chunk_*.txt"))
	if err != nil {
		return "", fmt.Errorf("scan transcripts: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no transcripts found in %s", workDir)
	}

	type indexed struct {
		index int
		path  string
	}
	files := make([]indexed, 0, len(matches))
	for _, path := range matches {
		name := filepath.Base(path)
		raw := strings.TrimSuffix(strings.TrimPrefix(name, "transcript_chunk_"), ".txt")
		index, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		files = append(files, indexed{index: index, path: path})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].index < files[j].index })

	parts := make([]string, 0, len(files))
	for _, file := range files {
		raw, err := os.ReadFile(file.path)
		if err != nil {
			return "", fmt.Errorf("read transcript %d: %w", file.index, err)
		}
		if text := strings.TrimSpace(string(raw)); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), nil
}
