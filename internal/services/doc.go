// Package services holds shared plumbing for external tool and API wrappers:
// the sentinel error taxonomy used for failure classification, and context
// annotation helpers that tag work with run, stage, and chunk identifiers for
// structured logging.
package services
