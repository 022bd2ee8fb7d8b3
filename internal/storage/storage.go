// Package storage provides the archive of debate transcripts.
package storage

import (
	"github.com/alienxp03/triad/internal/core"
)

// Storage defines the interface for the transcript archive.
// Archived transcripts are snapshots; live sessions are never restored from them.
type Storage interface {
	// Initialize sets up the storage (creates tables, etc.)
	Initialize() error

	// Close closes the storage connection.
	Close() error

	// SaveTranscript inserts the transcript or replaces a previous snapshot with the same ID.
	SaveTranscript(t *core.Transcript) error

	// GetTranscript returns nil, nil when no transcript has the given ID.
	GetTranscript(id string) (*core.Transcript, error)

	ListTranscripts(limit, offset int) ([]*core.TranscriptSummary, error)
	DeleteTranscript(id string) error
}
