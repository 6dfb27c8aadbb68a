package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/sweatlock/sweatlock/internal/storage"
)

// Tier is the subscription level determining the daily consumption cap.
type Tier string

const (
	TierFree     Tier = "free"
	TierStandard Tier = "standard"
	TierAdvanced Tier = "advanced"
)

// CapUnlimited is the daily cap sentinel for tiers without a cap.
const CapUnlimited int64 = -1

// DailyCapSeconds returns the consumption cap for the tier. Unknown tiers get
// the most restrictive cap.
func (t Tier) DailyCapSeconds() int64 {
	switch t {
	case TierFree:
		return 3600
	case TierStandard:
		return 10800
	case TierAdvanced:
		return CapUnlimited
	default:
		return 3600
	}
}

var (
	// ErrInvalidAmount is returned for non-positive ledger deltas.
	ErrInvalidAmount = errors.New("ledger: amount must be positive")

	// ErrStorageUnavailable is returned when the backing store cannot be
	// read or written. The in-memory ledger state remains valid.
	ErrStorageUnavailable = errors.New("ledger: storage unavailable")
)

// historyCacheSize bounds the cache of immutable past-day records.
const historyCacheSize = 64

// Ledger accounts earned versus consumed access seconds per local calendar
// day. Today's record is owned in memory and written through to the store on
// every mutation; past days are read-only history. The ledger never reads the
// wall clock, and it never enforces the cap itself — callers decide what a
// hit cap means.
type Ledger struct {
	store       storage.UsageStore
	tier        Tier
	today       *storage.DayRecord
	todaySynced bool
	history     *lru.Cache[string, storage.DayRecord]
	logger      zerolog.Logger
}

// New creates a ledger for the given plan tier.
func New(store storage.UsageStore, tier Tier, logger zerolog.Logger) *Ledger {
	history, err := lru.New[string, storage.DayRecord](historyCacheSize)
	if err != nil {
		// Only possible with a non-positive size
		panic(fmt.Sprintf("ledger history cache: %v", err))
	}

	return &Ledger{
		store:   store,
		tier:    tier,
		history: history,
		logger:  logger.With().Str("component", "ledger").Logger(),
	}
}

// DateKey derives the daily record key from a timestamp, using its location.
func DateKey(now time.Time) string {
	return now.Format(storage.DateFormat)
}

// Tier returns the configured plan tier.
func (l *Ledger) Tier() Tier {
	return l.tier
}

// Today returns a copy of today's record, creating it lazily. Storage
// failures degrade to a zeroed in-memory record.
func (l *Ledger) Today(now time.Time) storage.DayRecord {
	_ = l.ensureToday(now)
	return *l.today
}

// AddEarnedTime credits earned seconds to today's record.
func (l *Ledger) AddEarnedTime(seconds int64, now time.Time) error {
	if seconds <= 0 {
		return ErrInvalidAmount
	}
	return l.mutate(now, func(record *storage.DayRecord) {
		record.EarnedSeconds += seconds
	})
}

// ConsumeTime debits consumed seconds from today's record.
func (l *Ledger) ConsumeTime(seconds int64, now time.Time) error {
	if seconds <= 0 {
		return ErrInvalidAmount
	}
	return l.mutate(now, func(record *storage.DayRecord) {
		record.ConsumedSeconds += seconds
	})
}

// HasHitDailyCap reports whether today's consumption has reached the tier
// cap. Unlimited tiers never hit the cap, and a ledger that cannot reach
// storage assumes not capped rather than locking the user out.
func (l *Ledger) HasHitDailyCap(now time.Time) bool {
	capSeconds := l.tier.DailyCapSeconds()
	if capSeconds == CapUnlimited {
		return false
	}
	_ = l.ensureToday(now)
	return l.today.ConsumedSeconds >= capSeconds
}

// Progress returns consumption progress against the cap in [0, 1], 0 for
// unlimited tiers.
func (l *Ledger) Progress(now time.Time) float64 {
	capSeconds := l.tier.DailyCapSeconds()
	if capSeconds == CapUnlimited {
		return 0
	}
	_ = l.ensureToday(now)

	progress := float64(l.today.ConsumedSeconds) / float64(capSeconds)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

// RemainingSeconds returns earned minus consumed for today, clamped at zero.
func (l *Ledger) RemainingSeconds(now time.Time) int64 {
	_ = l.ensureToday(now)
	remaining := l.today.EarnedSeconds - l.today.ConsumedSeconds
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Week returns records for the seven days ending today, ascending by date.
// Days without activity are returned as zeroed records. Past days are served
// from an LRU cache once read; today always comes from memory.
func (l *Ledger) Week(now time.Time) ([]storage.DayRecord, error) {
	records := make([]storage.DayRecord, 0, 7)
	for offset := 6; offset >= 1; offset-- {
		day := now.AddDate(0, 0, -offset)
		record, err := l.pastDay(DateKey(day))
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	records = append(records, l.Today(now))
	return records, nil
}

// DeleteDaysBefore prunes records older than the retention window.
func (l *Ledger) DeleteDaysBefore(retentionDays int, now time.Time) (int, error) {
	cutoff := DateKey(now.AddDate(0, 0, -retentionDays))
	deleted, err := l.store.DeleteDaysBefore(context.Background(), cutoff)
	if err != nil {
		return deleted, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return deleted, nil
}

func (l *Ledger) pastDay(date string) (storage.DayRecord, error) {
	if record, ok := l.history.Get(date); ok {
		return record, nil
	}

	record, err := l.store.GetDay(context.Background(), date)
	if errors.Is(err, storage.ErrNotFound) {
		empty := storage.DayRecord{Date: date, PlanTier: string(l.tier)}
		l.history.Add(date, empty)
		return empty, nil
	}
	if err != nil {
		return storage.DayRecord{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	l.history.Add(date, *record)
	return *record, nil
}

// mutate applies a change to today's record in memory and writes it through.
func (l *Ledger) mutate(now time.Time, apply func(*storage.DayRecord)) error {
	loadErr := l.ensureToday(now)

	apply(l.today)
	l.today.LastUpdated = now

	if !l.todaySynced {
		// The initial load failed, so writing now could clobber counters
		// another process already persisted for today. Keep the mutation in
		// memory only until a re-read succeeds.
		if loadErr == nil {
			loadErr = fmt.Errorf("%w: today's record unsynced", ErrStorageUnavailable)
		}
		return loadErr
	}

	if err := l.store.PutDay(context.Background(), *l.today); err != nil {
		l.logger.Warn().Err(err).Str("date", l.today.Date).Msg("Failed to persist daily usage record")
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// ensureToday makes l.today point at the record for DateKey(now), handling
// the daily rollover and degraded loads. Counters are monotonically
// non-decreasing within a day, so when a deferred load finally succeeds the
// per-field maximum of memory and store is the safe union.
func (l *Ledger) ensureToday(now time.Time) error {
	key := DateKey(now)

	if l.today != nil && l.today.Date == key {
		if l.todaySynced {
			return nil
		}
		return l.resync()
	}

	// Rollover: yesterday's record becomes immutable history.
	if l.today != nil && l.todaySynced {
		l.history.Add(l.today.Date, *l.today)
	}

	record, err := l.store.GetDay(context.Background(), key)
	switch {
	case err == nil:
		l.today = record
		l.todaySynced = true
		return nil
	case errors.Is(err, storage.ErrNotFound):
		l.today = &storage.DayRecord{Date: key, PlanTier: string(l.tier)}
		l.todaySynced = true
		return nil
	default:
		l.logger.Warn().Err(err).Str("date", key).Msg("Failed to load daily usage record, starting degraded")
		l.today = &storage.DayRecord{Date: key, PlanTier: string(l.tier)}
		l.todaySynced = false
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
}

func (l *Ledger) resync() error {
	stored, err := l.store.GetDay(context.Background(), l.today.Date)
	switch {
	case err == nil:
		if stored.EarnedSeconds > l.today.EarnedSeconds {
			l.today.EarnedSeconds = stored.EarnedSeconds
		}
		if stored.ConsumedSeconds > l.today.ConsumedSeconds {
			l.today.ConsumedSeconds = stored.ConsumedSeconds
		}
	case errors.Is(err, storage.ErrNotFound):
		// Nothing persisted yet, safe to start writing.
	default:
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	l.todaySynced = true
	l.logger.Info().Str("date", l.today.Date).Msg("Daily usage record resynced with storage")
	return nil
}
