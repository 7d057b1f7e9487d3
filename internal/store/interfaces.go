package store

import (
	"context"
	"errors"

	"tcsgo-engine/internal/model"
)

// LedgerStore persists the whole ledger document. Every operation loads the
// entire document, mutates it in memory and writes it back; the store gives
// document-granularity isolation, nothing finer.
type LedgerStore interface {
	// Load reads the current document. A store with no document yet
	// returns a fresh empty ledger, not an error.
	Load(ctx context.Context) (*model.Ledger, error)

	// Save writes the whole document, verifying the write where the
	// backend allows it. A failed Save leaves the stored document unchanged.
	Save(ctx context.Context, ledger *model.Ledger) error

	// Close releases backend resources.
	Close() error
}

var (
	// ErrVerifyMismatch means the read-back content did not match what was
	// written; the save is treated as failed.
	ErrVerifyMismatch = errors.New("write verification mismatch")

	// ErrCorruptDocument means the stored document exists but cannot be
	// parsed. Loads fail loudly on this unless reset-on-corrupt is enabled.
	ErrCorruptDocument = errors.New("ledger document is corrupt")

	// ErrUnsupportedSchema means the document declares a schema this
	// engine cannot read.
	ErrUnsupportedSchema = errors.New("unsupported ledger schema")
)
