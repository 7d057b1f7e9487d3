package store

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"

	"tcsgo-engine/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteStore persists the ledger document as a single blob row. It serves
// both as a selectable primary backend and as the fallback target when the
// file store's verified write fails.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (and initializes) a SQLite-backed ledger store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createLedgerTable(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteStore] Initialized with database: %s", dbPath)
	return &SQLiteStore{db: db}, nil
}

func createLedgerTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS ledger_document (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		schema_version TEXT NOT NULL,
		document TEXT NOT NULL,
		saved_at DATETIME NOT NULL
	);`
	_, err := db.Exec(query)
	return err
}

// Load reads the stored document, or returns a fresh ledger when the table
// is empty.
func (s *SQLiteStore) Load(ctx context.Context) (*model.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

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
func (s *SQLiteStore) Save(ctx context.Context, ledger *model.Ledger) error {
	data, err := Encode(ledger)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO ledger_document (id, schema_version, document, saved_at)
		VALUES (1, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			schema_version = excluded.schema_version,
			document = excluded.document,
			saved_at = excluded.saved_at`

	if _, err := s.db.ExecContext(ctx, query, ledger.SchemaVersion, string(data)); err != nil {
		return fmt.Errorf("failed to save ledger document: %w", err)
	}

	var stored string
	if err := s.db.QueryRowContext(ctx, `SELECT document FROM ledger_document WHERE id = 1`).Scan(&stored); err != nil {
		return fmt.Errorf("failed to read back ledger document: %w", err)
	}
	if !bytes.Equal(normalizeNewlines([]byte(stored)), normalizeNewlines(data)) {
		return fmt.Errorf("%w: sqlite ledger_document", ErrVerifyMismatch)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ LedgerStore = (*SQLiteStore)(nil)
