package notify

import (
	"context"
	"log"
	"sync"
	"time"

	"tcsgo-engine/internal/model"
)

// MemoryNotifier delivers envelopes to an in-process subscriber channel.
// Use this for development/testing or single-instance deployments.
type MemoryNotifier struct {
	mu   sync.Mutex
	subs []chan *model.Envelope
}

// NewMemoryNotifier creates an in-process notifier.
func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{}
}

// Subscribe returns a channel receiving every future envelope. A slow
// subscriber drops envelopes rather than blocking the engine.
func (n *MemoryNotifier) Subscribe() <-chan *model.Envelope {
	ch := make(chan *model.Envelope, 64)
	n.mu.Lock()
	n.subs = append(n.subs, ch)
	n.mu.Unlock()
	return ch
}

// Notify fans the envelope out to all subscribers.
func (n *MemoryNotifier) Notify(ctx context.Context, env *model.Envelope) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- env:
		default:
			log.Printf("[MemoryNotifier] subscriber full, dropped result for event %s", env.EventID)
		}
	}
	return nil
}

type slotEntry struct {
	env       *model.Envelope
	expiresAt time.Time
}

// MemoryResultSlot stores envelopes by eventId with a TTL.
type MemoryResultSlot struct {
	mu      sync.RWMutex
	entries map[string]slotEntry
	ttl     time.Duration
}

// NewMemoryResultSlot creates an in-memory result slot.
func NewMemoryResultSlot(ttl time.Duration) *MemoryResultSlot {
	return &MemoryResultSlot{
		entries: make(map[string]slotEntry),
		ttl:     ttl,
	}
}

// Put stores the envelope under its eventId.
func (s *MemoryResultSlot) Put(ctx context.Context, env *model.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[env.EventID] = slotEntry{env: env, expiresAt: time.Now().Add(s.ttl)}

	// Opportunistic sweep keeps the map bounded without a background goroutine.
	for id, entry := range s.entries {
		if time.Now().After(entry.expiresAt) {
			delete(s.entries, id)
		}
	}
	return nil
}

// Get retrieves the envelope for an eventId, or ErrNoResult.
func (s *MemoryResultSlot) Get(ctx context.Context, eventID string) (*model.Envelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[eventID]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, ErrNoResult
	}
	return entry.env, nil
}

// MemoryDeduper tracks seen eventIds with a retention window.
type MemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
}

// NewMemoryDeduper creates an in-memory dedup hook.
func NewMemoryDeduper(ttl time.Duration) *MemoryDeduper {
	return &MemoryDeduper{seen: make(map[string]time.Time), ttl: ttl}
}

// Seen records the eventId, reporting whether it was already recorded.
func (d *MemoryDeduper) Seen(ctx context.Context, eventID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	for id, at := range d.seen {
		if now.Sub(at) > d.ttl {
			delete(d.seen, id)
		}
	}

	if at, ok := d.seen[eventID]; ok && now.Sub(at) <= d.ttl {
		return true, nil
	}
	d.seen[eventID] = now
	return false, nil
}

var (
	_ Notifier   = (*MemoryNotifier)(nil)
	_ ResultSlot = (*MemoryResultSlot)(nil)
	_ Deduper    = (*MemoryDeduper)(nil)
)
