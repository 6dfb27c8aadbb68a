package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/sweatlock/sweatlock/internal/config"
	"github.com/sweatlock/sweatlock/internal/storage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	mr := miniredis.RunT(t)

	cfg := config.RedisConfig{
		Host:         mr.Addr(), // full "host:port" address
		Port:         0,
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  "5s",
		ReadTimeout:  "3s",
		WriteTimeout: "3s",
	}

	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("open redis store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestUsageStorePutGetDay(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	record := storage.DayRecord{
		Date:            "2024-03-05",
		PlanTier:        "standard",
		EarnedSeconds:   1800,
		ConsumedSeconds: 300,
		LastUpdated:     time.Date(2024, 3, 5, 9, 15, 0, 0, time.UTC),
	}

	if err := store.Usage().PutDay(ctx, record); err != nil {
		t.Fatalf("put day: %v", err)
	}

	got, err := store.Usage().GetDay(ctx, "2024-03-05")
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	if got.EarnedSeconds != 1800 || got.ConsumedSeconds != 300 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if !got.LastUpdated.Equal(record.LastUpdated) {
		t.Fatalf("expected last updated %v, got %v", record.LastUpdated, got.LastUpdated)
	}
}

func TestUsageStoreGetDayMissing(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Usage().GetDay(context.Background(), "2024-01-01")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUsageStoreListRange(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, date := range []string{"2024-03-08", "2024-03-01", "2024-03-04"} {
		if err := store.Usage().PutDay(ctx, storage.DayRecord{
			Date:        date,
			PlanTier:    "free",
			LastUpdated: time.Now(),
		}); err != nil {
			t.Fatalf("put day %s: %v", date, err)
		}
	}

	records, err := store.Usage().ListRange(ctx, "2024-03-01", "2024-03-05")
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Date != "2024-03-01" || records[1].Date != "2024-03-04" {
		t.Fatalf("unexpected order: %s, %s", records[0].Date, records[1].Date)
	}
}

func TestUsageStoreDeleteDaysBefore(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, date := range []string{"2024-02-20", "2024-03-01", "2024-03-02"} {
		if err := store.Usage().PutDay(ctx, storage.DayRecord{
			Date:        date,
			LastUpdated: time.Now(),
		}); err != nil {
			t.Fatalf("put day %s: %v", date, err)
		}
	}

	deleted, err := store.Usage().DeleteDaysBefore(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("delete days before: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted record, got %d", deleted)
	}

	if _, err := store.Usage().GetDay(ctx, "2024-02-20"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected deleted record to be gone, got %v", err)
	}
}

func TestSessionStoreRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	record := storage.SessionRecord{
		ID:              "session-1",
		StartedAt:       time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC),
		DurationSeconds: 600,
		Reason:          "workout_completed",
	}

	if err := store.Sessions().Put(ctx, record); err != nil {
		t.Fatalf("put session: %v", err)
	}

	got, err := store.Sessions().Get(ctx)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.ID != "session-1" || got.Reason != "workout_completed" {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := store.Sessions().Clear(ctx); err != nil {
		t.Fatalf("clear session: %v", err)
	}
	if _, err := store.Sessions().Get(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
}
