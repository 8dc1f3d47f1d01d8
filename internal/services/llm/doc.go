// Package llm provides a minimal client for OpenRouter-compatible chat
// completion APIs. It is used by persona generation to turn transcripts into
// structured JSON and retries transient HTTP failures with capped backoff.
package llm
