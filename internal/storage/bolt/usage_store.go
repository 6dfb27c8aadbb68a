package bolt

import (
	"context"
	"fmt"
	"time"

	"github.com/sweatlock/sweatlock/internal/storage"
	"go.etcd.io/bbolt"
)

type usageStore struct {
	db *bbolt.DB
}

func (s *usageStore) GetDay(ctx context.Context, date string) (*storage.DayRecord, error) {
	return getBucketValue[storage.DayRecord](ctx, s.db, bucketDailyUsage, date)
}

func (s *usageStore) PutDay(ctx context.Context, record storage.DayRecord) error {
	return putBucketValue(ctx, s.db, bucketDailyUsage, record.Date, record)
}

// ListRange returns records for dates in [from, to], inclusive, in ascending
// date order. Date keys sort lexically, so a cursor range scan is sufficient.
func (s *usageStore) ListRange(ctx context.Context, from, to string) ([]storage.DayRecord, error) {
	records := make([]storage.DayRecord, 0)
	return records, s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketDailyUsage))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Seek([]byte(from)); k != nil && string(k) <= to; k, v = c.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var record storage.DayRecord
			if err := unmarshal(v, &record); err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
}

func (s *usageStore) DeleteDaysBefore(ctx context.Context, cutoffDate string) (int, error) {
	if _, err := time.Parse(storage.DateFormat, cutoffDate); err != nil {
		return 0, fmt.Errorf("invalid cutoff date: %w", err)
	}
	deleted := 0
	return deleted, s.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucketDailyUsage))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.First(); k != nil && string(k) < cutoffDate; k, _ = c.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := c.Delete(); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
}
