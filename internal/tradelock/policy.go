package tradelock

import (
	"time"

	"tcsgo-engine/internal/model"
)

// Policy computes and reads trade-lock expiry on owned items. The lock
// window is fixed at acquisition; LockedUntil is computed once and stored.
type Policy struct {
	duration time.Duration
}

// New creates a policy locking items for the given number of days.
func New(days int) Policy {
	return Policy{duration: time.Duration(days) * 24 * time.Hour}
}

// LockedUntil returns when an item acquired at the given time unlocks.
func (p Policy) LockedUntil(acquiredAt time.Time) time.Time {
	return acquiredAt.Add(p.duration)
}

// Status reports whether an item is still locked and for how long.
type Status struct {
	Locked    bool
	Remaining time.Duration
}

// Status reads an item's stored lock against now.
func (p Policy) Status(item *model.OwnedItem, now time.Time) Status {
	if now.Before(item.LockedUntil) {
		return Status{Locked: true, Remaining: item.LockedUntil.Sub(now)}
	}
	return Status{}
}
