// Package ledger persists pipeline run and chunk state in SQLite so runs can
// be inspected after the fact. The pipeline writes transitions as chunks move
// from planned through download and transcription to a terminal state.
package ledger
