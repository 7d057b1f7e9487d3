package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"tcsgo-engine/internal/model"
)

// FileStore persists the ledger as one JSON document on disk. Writes go to
// a temp file, get renamed into place, then the file is read back and
// compared to the intended bytes. No cross-process lock is taken; the
// engine serializes invocations itself.
type FileStore struct {
	path string

	// resetOnCorrupt restores the legacy behavior of loading an
	// unparsable file as a fresh empty document.
	resetOnCorrupt bool
}

// NewFileStore creates a file-backed ledger store at path.
func NewFileStore(path string, resetOnCorrupt bool) *FileStore {
	return &FileStore{path: path, resetOnCorrupt: resetOnCorrupt}
}

// Load reads the ledger file. An absent file yields a fresh empty document;
// a corrupt one fails with ErrCorruptDocument unless reset-on-corrupt is on.
func (s *FileStore) Load(ctx context.Context) (*model.Ledger, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewLedger(), nil
		}
		return nil, fmt.Errorf("failed to read ledger file: %w", err)
	}

	ledger, err := Decode(data)
	if err != nil {
		if errors.Is(err, ErrCorruptDocument) && s.resetOnCorrupt {
			log.Printf("[FileStore] WARNING: corrupt ledger at %s discarded, starting empty: %v", s.path, err)
			return model.NewLedger(), nil
		}
		return nil, err
	}
	return ledger, nil
}

// Save serializes the document, writes it atomically and verifies the
// on-disk content matches the intended bytes after newline normalization.
func (s *FileStore) Save(ctx context.Context, ledger *model.Ledger) error {
	data, err := Encode(ledger)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create ledger dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write ledger temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}

	written, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read back ledger file: %w", err)
	}
	if !bytes.Equal(normalizeNewlines(written), normalizeNewlines(data)) {
		return fmt.Errorf("%w: %s", ErrVerifyMismatch, s.path)
	}
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error { return nil }

// normalizeNewlines maps CRLF and bare CR to LF before comparison, so a
// filesystem or editor that rewrites line endings does not fail the verify.
func normalizeNewlines(data []byte) []byte {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(data, []byte("\r"), []byte("\n"))
}

var _ LedgerStore = (*FileStore)(nil)
