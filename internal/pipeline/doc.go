// Package pipeline implements the chunked download/transcribe pipeline: a
// chunk planner, a downloader producing validated audio artifacts, an
// unbounded handoff queue, a transcription worker, and a supervisor that runs
// producer and consumer concurrently with a guaranteed end-of-stream handoff.
package pipeline
