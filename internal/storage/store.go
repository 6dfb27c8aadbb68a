package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a record is missing from storage.
var ErrNotFound = errors.New("storage: record not found")

// Store represents the root storage interface.
type Store interface {
	Close() error
	Usage() UsageStore
	Sessions() SessionStore
}

// UsageStore manages daily usage records keyed by local date ("2006-01-02").
// Records are small and written whole; the ledger owns today's record in
// memory and writes it through on every mutation.
type UsageStore interface {
	GetDay(ctx context.Context, date string) (*DayRecord, error)
	PutDay(ctx context.Context, record DayRecord) error
	ListRange(ctx context.Context, from, to string) ([]DayRecord, error)
	DeleteDaysBefore(ctx context.Context, cutoffDate string) (int, error)
}

// SessionStore persists the single current unlock session. At most one
// session is held at a time; Put replaces any previous record.
type SessionStore interface {
	Get(ctx context.Context) (*SessionRecord, error)
	Put(ctx context.Context, record SessionRecord) error
	Clear(ctx context.Context) error
}
