package bolt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sweatlock/sweatlock/internal/storage"
)

func TestUsageStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)
	defer func() { _ = store.Close() }()

	usageStore := store.Usage()
	record := storage.DayRecord{
		Date:            "2024-03-05",
		PlanTier:        "free",
		EarnedSeconds:   600,
		ConsumedSeconds: 120,
		LastUpdated:     time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
	}

	if err := usageStore.PutDay(context.Background(), record); err != nil {
		t.Fatalf("put day: %v", err)
	}

	got, err := usageStore.GetDay(context.Background(), "2024-03-05")
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	if got.EarnedSeconds != 600 || got.ConsumedSeconds != 120 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.PlanTier != "free" {
		t.Fatalf("expected plan tier free, got %q", got.PlanTier)
	}
}

func TestUsageStoreGetDayMissing(t *testing.T) {
	store := openTestStore(t)
	defer func() { _ = store.Close() }()

	_, err := store.Usage().GetDay(context.Background(), "2024-01-01")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUsageStoreListRange(t *testing.T) {
	store := openTestStore(t)
	defer func() { _ = store.Close() }()

	usageStore := store.Usage()
	dates := []string{"2024-03-01", "2024-03-02", "2024-03-04", "2024-03-08"}
	for _, date := range dates {
		if err := usageStore.PutDay(context.Background(), storage.DayRecord{Date: date, PlanTier: "standard"}); err != nil {
			t.Fatalf("put day %s: %v", date, err)
		}
	}

	records, err := usageStore.ListRange(context.Background(), "2024-03-02", "2024-03-07")
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Date != "2024-03-02" || records[1].Date != "2024-03-04" {
		t.Fatalf("unexpected dates: %s, %s", records[0].Date, records[1].Date)
	}
}

func TestUsageStoreDeleteDaysBefore(t *testing.T) {
	store := openTestStore(t)
	defer func() { _ = store.Close() }()

	usageStore := store.Usage()
	for _, date := range []string{"2024-02-27", "2024-02-28", "2024-03-01"} {
		if err := usageStore.PutDay(context.Background(), storage.DayRecord{Date: date}); err != nil {
			t.Fatalf("put day %s: %v", date, err)
		}
	}

	deleted, err := usageStore.DeleteDaysBefore(context.Background(), "2024-03-01")
	if err != nil {
		t.Fatalf("delete days before: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted records, got %d", deleted)
	}

	if _, err := usageStore.GetDay(context.Background(), "2024-03-01"); err != nil {
		t.Fatalf("surviving record missing: %v", err)
	}
}

func TestUsageStoreDeleteDaysBeforeInvalidCutoff(t *testing.T) {
	store := openTestStore(t)
	defer func() { _ = store.Close() }()

	if _, err := store.Usage().DeleteDaysBefore(context.Background(), "yesterday"); err == nil {
		t.Fatal("expected error for invalid cutoff date")
	}
}

func TestSessionStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)
	defer func() { _ = store.Close() }()

	sessions := store.Sessions()
	record := storage.SessionRecord{
		ID:              "abc123",
		StartedAt:       time.Date(2024, 3, 5, 18, 30, 0, 0, time.UTC),
		DurationSeconds: 900,
		Reason:          "workout_completed",
	}

	if err := sessions.Put(context.Background(), record); err != nil {
		t.Fatalf("put session: %v", err)
	}

	got, err := sessions.Get(context.Background())
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.ID != "abc123" || got.DurationSeconds != 900 {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := sessions.Clear(context.Background()); err != nil {
		t.Fatalf("clear session: %v", err)
	}
	if _, err := sessions.Get(context.Background()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
}

func TestSessionStoreClearIdempotent(t *testing.T) {
	store := openTestStore(t)
	defer func() { _ = store.Close() }()

	if err := store.Sessions().Clear(context.Background()); err != nil {
		t.Fatalf("clear empty session store: %v", err)
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sweatlock.bolt")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store
}
