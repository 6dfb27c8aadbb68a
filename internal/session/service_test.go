package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sweatlock/sweatlock/internal/storage"
)

// memorySessionStore is an in-memory storage.SessionStore for tests.
type memorySessionStore struct {
	record  *storage.SessionRecord
	failAll bool
}

func (m *memorySessionStore) Get(ctx context.Context) (*storage.SessionRecord, error) {
	if m.failAll {
		return nil, errors.New("store down")
	}
	if m.record == nil {
		return nil, storage.ErrNotFound
	}
	record := *m.record
	return &record, nil
}

func (m *memorySessionStore) Put(ctx context.Context, record storage.SessionRecord) error {
	if m.failAll {
		return errors.New("store down")
	}
	m.record = &record
	return nil
}

func (m *memorySessionStore) Clear(ctx context.Context) error {
	if m.failAll {
		return errors.New("store down")
	}
	m.record = nil
	return nil
}

func TestRecordUnlockStart(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())
	now := time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC)

	sess, err := svc.RecordUnlockStart(120, "workout_completed", now)
	if err != nil {
		t.Fatalf("record unlock start: %v", err)
	}
	if sess.DurationSeconds != 120 || sess.Reason != "workout_completed" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	if !svc.IsActive(now) {
		t.Error("expected session to be active")
	}
	if got := svc.RemainingSeconds(now); got != 120 {
		t.Errorf("expected 120 remaining seconds, got %d", got)
	}
}

func TestRecordUnlockStartInvalidDuration(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())
	now := time.Now()

	for _, duration := range []int64{0, -60} {
		if _, err := svc.RecordUnlockStart(duration, "workout_completed", now); !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("duration %d: expected ErrInvalidDuration, got %v", duration, err)
		}
	}
	if svc.Current() != nil {
		t.Error("expected no session after rejected start")
	}
}

func TestLastWriteWinsReplacement(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())
	now := time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC)

	first, err := svc.RecordUnlockStart(600, "workout_completed", now)
	if err != nil {
		t.Fatalf("first unlock: %v", err)
	}

	second, err := svc.RecordUnlockStart(60, "workout_completed", now.Add(10*time.Second))
	if err != nil {
		t.Fatalf("second unlock: %v", err)
	}
	if second.ID == first.ID {
		t.Error("expected replacement session to have a new ID")
	}

	// Remaining time comes only from the replacement, not the discarded grant.
	if got := svc.RemainingSeconds(now.Add(10 * time.Second)); got != 60 {
		t.Errorf("expected 60 remaining seconds, got %d", got)
	}
}

func TestClearSession(t *testing.T) {
	store := &memorySessionStore{}
	svc := NewService(store, zerolog.Nop())
	now := time.Now()

	if _, err := svc.RecordUnlockStart(300, "workout_completed", now); err != nil {
		t.Fatalf("record unlock start: %v", err)
	}
	if store.record == nil {
		t.Fatal("expected session to be persisted")
	}

	svc.ClearSession()
	if svc.IsActive(now) {
		t.Error("expected session to be inactive after clear")
	}
	if store.record != nil {
		t.Error("expected persisted session to be cleared")
	}
}

func TestRestoreActiveSession(t *testing.T) {
	now := time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC)
	store := &memorySessionStore{record: &storage.SessionRecord{
		ID:              "persisted",
		StartedAt:       now.Add(-30 * time.Second),
		DurationSeconds: 120,
		Reason:          "workout_completed",
	}}

	svc := NewService(store, zerolog.Nop())
	if !svc.Restore(now) {
		t.Fatal("expected restore to resume active session")
	}
	if got := svc.RemainingSeconds(now); got != 90 {
		t.Errorf("expected 90 remaining seconds, got %d", got)
	}
}

func TestRestoreDiscardsExpiredSession(t *testing.T) {
	now := time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC)
	store := &memorySessionStore{record: &storage.SessionRecord{
		ID:              "stale",
		StartedAt:       now.Add(-time.Hour),
		DurationSeconds: 60,
		Reason:          "workout_completed",
	}}

	svc := NewService(store, zerolog.Nop())
	if svc.Restore(now) {
		t.Fatal("expected restore to discard expired session")
	}
	if store.record != nil {
		t.Error("expected stale persisted session to be cleared")
	}
}

func TestRestoreWithEmptyStore(t *testing.T) {
	svc := NewService(&memorySessionStore{}, zerolog.Nop())
	if svc.Restore(time.Now()) {
		t.Fatal("expected restore to find nothing")
	}
}

func TestPersistenceFailureDoesNotBlockUnlock(t *testing.T) {
	store := &memorySessionStore{failAll: true}
	svc := NewService(store, zerolog.Nop())
	now := time.Now()

	sess, err := svc.RecordUnlockStart(60, "workout_completed", now)
	if err != nil {
		t.Fatalf("unlock should succeed despite store failure: %v", err)
	}
	if !svc.IsActive(now) {
		t.Error("expected in-memory session to remain active")
	}
	if sess.DurationSeconds != 60 {
		t.Errorf("unexpected session: %+v", sess)
	}
}
