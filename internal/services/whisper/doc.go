// Package whisper wraps the local whisper CLI for transcribing audio chunks.
// The CLI writes JSON output next to the artifact; the service reads the
// transcript text back from that file.
package whisper
