// Package persona derives speaker personas from pipeline transcripts using an
// LLM chat completion backend.
package persona
