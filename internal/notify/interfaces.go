package notify

import (
	"context"

	"tcsgo-engine/internal/model"
)

// Notifier is the push channel of the commit protocol: a completed result
// envelope is handed to it as soon as the operation finishes.
type Notifier interface {
	Notify(ctx context.Context, env *model.Envelope) error
}

// ResultSlot is the polled channel: the latest envelope per eventId stays
// readable for a bounded time. Together with the Notifier this gives
// at-least-once delivery to a caller using either channel.
type ResultSlot interface {
	Put(ctx context.Context, env *model.Envelope) error
	Get(ctx context.Context, eventID string) (*model.Envelope, error)
}

// Deduper is the pluggable idempotency hook. The engine itself never
// deduplicates by eventId; a caller that wants retry protection wires one
// of these in front of the commit cycle.
type Deduper interface {
	// Seen records the eventId and reports whether it was already seen.
	Seen(ctx context.Context, eventID string) (bool, error)
}

// Common notify errors
type NotifyError string

func (e NotifyError) Error() string { return string(e) }

const (
	// ErrNoResult indicates no envelope is stored for the eventId.
	ErrNoResult NotifyError = "no result for event"
)
