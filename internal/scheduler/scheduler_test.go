package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/olegiv/gameatlas/internal/store"
	"github.com/olegiv/gameatlas/internal/testutil"
)

func TestNew(t *testing.T) {
	logger := testutil.TestLoggerSilent()

	s := New(nil, logger, 30)
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.cron == nil {
		t.Error("New() scheduler has nil cron")
	}
	if s.retention != 30*24*time.Hour {
		t.Errorf("retention = %v, want 720h", s.retention)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(nil, testutil.TestLoggerSilent(), 30)

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := len(s.cron.Entries()); got != 1 {
		t.Errorf("entries = %d, want 1", got)
	}

	s.Stop()
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := New(nil, testutil.TestLoggerSilent(), 30)

	if err := s.StartWithSchedule("not a cron spec"); err == nil {
		t.Error("StartWithSchedule() expected error for invalid spec")
	}
}

func TestScheduler_PruneEvents(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	q := store.New(db)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for _, age := range []time.Duration{40 * 24 * time.Hour, 31 * 24 * time.Hour, 2 * time.Hour} {
		if err := q.CreateEvent(ctx, store.CreateEventParams{
			Level:     "warning",
			Category:  "system",
			Message:   "old",
			Metadata:  "{}",
			CreatedAt: now.Add(-age),
		}); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	s := New(db, testutil.TestLoggerSilent(), 30)
	s.now = func() time.Time { return now }

	removed, err := s.PruneEvents(ctx)
	if err != nil {
		t.Fatalf("PruneEvents: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	count, err := q.CountEvents(ctx)
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if count != 1 {
		t.Errorf("remaining = %d, want 1", count)
	}
}
