package tradelock

import (
	"testing"
	"time"

	"tcsgo-engine/internal/model"
)

func TestLockedUntil(t *testing.T) {
	p := New(7)
	acquired := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got := p.LockedUntil(acquired)
	want := acquired.Add(7 * 24 * time.Hour)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestStatus(t *testing.T) {
	p := New(7)
	acquired := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	item := &model.OwnedItem{AcquiredAt: acquired, LockedUntil: p.LockedUntil(acquired)}

	tests := []struct {
		name          string
		now           time.Time
		wantLocked    bool
		wantRemaining time.Duration
	}{
		{name: "just_acquired", now: acquired, wantLocked: true, wantRemaining: 7 * 24 * time.Hour},
		{name: "one_second_left", now: item.LockedUntil.Add(-time.Second), wantLocked: true, wantRemaining: time.Second},
		{name: "exactly_unlocked", now: item.LockedUntil, wantLocked: false},
		{name: "long_unlocked", now: item.LockedUntil.Add(time.Hour), wantLocked: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st := p.Status(item, tc.now)
			if st.Locked != tc.wantLocked {
				t.Fatalf("locked: got %v want %v", st.Locked, tc.wantLocked)
			}
			if st.Remaining != tc.wantRemaining {
				t.Fatalf("remaining: got %v want %v", st.Remaining, tc.wantRemaining)
			}
		})
	}
}
