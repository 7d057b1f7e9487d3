package store

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log"

	"tcsgo-engine/internal/model"
)

// MySQLStore persists the ledger document as a single blob row in MySQL,
// for deployments that want the ledger off the streaming host entirely.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore creates a MySQL-backed ledger store over an open handle.
func NewMySQLStore(db *sql.DB) (*MySQLStore, error) {
	query := `
	CREATE TABLE IF NOT EXISTS ledger_document (
		id TINYINT PRIMARY KEY,
		schema_version VARCHAR(32) NOT NULL,
		document LONGTEXT NOT NULL,
		saved_at DATETIME NOT NULL
	)`
	if _, err := db.Exec(query); err != nil {
		return nil, fmt.Errorf("failed to create ledger table: %w", err)
	}

	log.Println("[MySQLStore] Initialized")
	return &MySQLStore{db: db}, nil
}

// Load reads the stored document, or returns a fresh ledger when none exists.
func (s *MySQLStore) Load(ctx context.Context) (*model.Ledger, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM ledger_document WHERE id = 1`).Scan(&doc)
	if err == sql.ErrNoRows {
		return model.NewLedger(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger document: %w", err)
	}
	return Decode([]byte(doc))
}

// Save upserts the document blob and reads it back to verify the write.
func (s *MySQLStore) Save(ctx context.Context, ledger *model.Ledger) error {
	data, err := Encode(ledger)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO ledger_document (id, schema_version, document, saved_at)
		VALUES (1, ?, ?, UTC_TIMESTAMP())
		ON DUPLICATE KEY UPDATE
			schema_version = VALUES(schema_version),
			document = VALUES(document),
			saved_at = VALUES(saved_at)`

	if _, err := s.db.ExecContext(ctx, query, ledger.SchemaVersion, string(data)); err != nil {
		return fmt.Errorf("failed to save ledger document: %w", err)
	}

	var stored string
	if err := s.db.QueryRowContext(ctx, `SELECT document FROM ledger_document WHERE id = 1`).Scan(&stored); err != nil {
		return fmt.Errorf("failed to read back ledger document: %w", err)
	}
	if !bytes.Equal(normalizeNewlines([]byte(stored)), normalizeNewlines(data)) {
		return fmt.Errorf("%w: mysql ledger_document", ErrVerifyMismatch)
	}
	return nil
}

// Close closes the database connection.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}

var _ LedgerStore = (*MySQLStore)(nil)
