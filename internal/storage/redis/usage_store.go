package redis

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sweatlock/sweatlock/internal/storage"
)

type usageStore struct {
	client *redis.Client
}

// GetDay retrieves the daily usage record for a date.
func (s *usageStore) GetDay(ctx context.Context, date string) (*storage.DayRecord, error) {
	data, err := s.client.HGetAll(ctx, dayKey(date)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, storage.ErrNotFound
	}
	return parseDayRecord(data)
}

// PutDay writes the whole record and registers the date atomically.
func (s *usageStore) PutDay(ctx context.Context, record storage.DayRecord) error {
	script := redis.NewScript(putDayScript)

	keys := []string{dayKey(record.Date), keyDaySet}
	args := []interface{}{
		record.Date,
		record.PlanTier,
		record.EarnedSeconds,
		record.ConsumedSeconds,
		record.LastUpdated.Format(time.RFC3339Nano),
	}

	return script.Run(ctx, s.client, keys, args...).Err()
}

// ListRange returns records for dates in [from, to], inclusive, ascending.
func (s *usageStore) ListRange(ctx context.Context, from, to string) ([]storage.DayRecord, error) {
	dates, err := s.client.SMembers(ctx, keyDaySet).Result()
	if err != nil {
		return nil, err
	}

	selected := make([]string, 0, len(dates))
	for _, date := range dates {
		if date >= from && date <= to {
			selected = append(selected, date)
		}
	}
	sort.Strings(selected)

	records := make([]storage.DayRecord, 0, len(selected))
	for _, date := range selected {
		record, err := s.GetDay(ctx, date)
		if err == storage.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

// DeleteDaysBefore removes records older than the cutoff date.
func (s *usageStore) DeleteDaysBefore(ctx context.Context, cutoffDate string) (int, error) {
	if _, err := time.Parse(storage.DateFormat, cutoffDate); err != nil {
		return 0, err
	}

	dates, err := s.client.SMembers(ctx, keyDaySet).Result()
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, date := range dates {
		if date >= cutoffDate {
			continue
		}
		if err := s.client.Del(ctx, dayKey(date)).Err(); err != nil {
			return deleted, err
		}
		if err := s.client.SRem(ctx, keyDaySet, date).Err(); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func parseDayRecord(data map[string]string) (*storage.DayRecord, error) {
	record := &storage.DayRecord{
		Date:     data["date"],
		PlanTier: data["plan_tier"],
	}

	var err error
	if record.EarnedSeconds, err = strconv.ParseInt(data["earned_seconds"], 10, 64); err != nil {
		return nil, err
	}
	if record.ConsumedSeconds, err = strconv.ParseInt(data["consumed_seconds"], 10, 64); err != nil {
		return nil, err
	}
	if record.LastUpdated, err = time.Parse(time.RFC3339Nano, data["last_updated"]); err != nil {
		return nil, err
	}

	return record, nil
}
