package pipeline

import (
	"fmt"
	"math"
)

// Chunk is a planned time range of the source media. Ranges are half-open:
// [StartSec, EndSec).
type Chunk struct {
	Index    int
	StartSec float64
	EndSec   float64
}

// Duration returns the chunk length in seconds.
func (c Chunk) Duration() float64 {
	return c.EndSec - c.StartSec
}

// Plan splits a media length into consecutive gap-free chunks of at most
// chunkSeconds each. The final chunk is truncated to the media length, so the
// union of all ranges covers [0, totalSeconds) exactly.
func Plan(totalSeconds float64, chunkSeconds int) ([]Chunk, error) {
	if totalSeconds <= 0 {
		return nil, fmt.Errorf("%w: media length %v must be positive", ErrInvalidPlan, totalSeconds)
	}
	if chunkSeconds <= 0 {
		return nil, fmt.Errorf("%w: chunk duration %d must be positive", ErrInvalidPlan, chunkSeconds)
	}

	size := float64(chunkSeconds)
	count := int(math.Ceil(totalSeconds / size))
	chunks := make([]Chunk, 0, count)
	for i := 0; i < count; i++ {
		start := float64(i) * size
		end := start + size
		if end > totalSeconds {
			end = totalSeconds
		}
		chunks = append(chunks, Chunk{Index: i, StartSec: start, EndSec: end})
	}
	return chunks, nil
}
