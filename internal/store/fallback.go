package store

import (
	"context"
	"fmt"
	"log"

	"tcsgo-engine/internal/model"
)

// FallbackStore wraps a primary store with a secondary write target. A save
// that fails on the primary (including verification failure) is retried on
// the secondary; exhausting both is a persistence error. Loads always come
// from the primary, which stays the source of truth.
type FallbackStore struct {
	primary   LedgerStore
	secondary LedgerStore
}

// NewFallbackStore creates a fallback chain. secondary may be nil, in which
// case the wrapper degrades to the primary alone.
func NewFallbackStore(primary, secondary LedgerStore) *FallbackStore {
	return &FallbackStore{primary: primary, secondary: secondary}
}

// Load reads from the primary store.
func (s *FallbackStore) Load(ctx context.Context) (*model.Ledger, error) {
	return s.primary.Load(ctx)
}

// Save writes to the primary, falling back to the secondary on failure.
func (s *FallbackStore) Save(ctx context.Context, ledger *model.Ledger) error {
	primaryErr := s.primary.Save(ctx, ledger)
	if primaryErr == nil {
		return nil
	}
	if s.secondary == nil {
		return primaryErr
	}

	log.Printf("[FallbackStore] primary save failed, trying secondary: %v", primaryErr)
	if err := s.secondary.Save(ctx, ledger); err != nil {
		return fmt.Errorf("all write mechanisms failed: primary: %v; secondary: %w", primaryErr, err)
	}
	return nil
}

// Close closes both stores, returning the first error.
func (s *FallbackStore) Close() error {
	err := s.primary.Close()
	if s.secondary != nil {
		if cerr := s.secondary.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

var _ LedgerStore = (*FallbackStore)(nil)
