package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sweatlock/sweatlock/internal/storage"
)

type sessionStore struct {
	client *redis.Client
}

// Get retrieves the current unlock session, if any.
func (s *sessionStore) Get(ctx context.Context) (*storage.SessionRecord, error) {
	data, err := s.client.HGetAll(ctx, keySession).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, storage.ErrNotFound
	}

	record := &storage.SessionRecord{
		ID:     data["id"],
		Reason: data["reason"],
	}
	if record.StartedAt, err = time.Parse(time.RFC3339Nano, data["started_at"]); err != nil {
		return nil, err
	}
	if record.DurationSeconds, err = strconv.ParseInt(data["duration_seconds"], 10, 64); err != nil {
		return nil, err
	}
	return record, nil
}

// Put replaces the current unlock session.
func (s *sessionStore) Put(ctx context.Context, record storage.SessionRecord) error {
	return s.client.HSet(ctx, keySession,
		"id", record.ID,
		"started_at", record.StartedAt.Format(time.RFC3339Nano),
		"duration_seconds", record.DurationSeconds,
		"reason", record.Reason,
	).Err()
}

// Clear drops the current unlock session.
func (s *sessionStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, keySession).Err()
}
