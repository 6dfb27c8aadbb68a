package storage

import "time"

// DateFormat is the key format for daily usage records.
const DateFormat = "2006-01-02"

// DayRecord aggregates earned and consumed access seconds for one local
// calendar day. Both counters are monotonically non-decreasing within a day.
type DayRecord struct {
	Date            string    `json:"date"`
	PlanTier        string    `json:"plan_tier"`
	EarnedSeconds   int64     `json:"earned_seconds"`
	ConsumedSeconds int64     `json:"consumed_seconds"`
	LastUpdated     time.Time `json:"last_updated"`
}

// SessionRecord is the persisted form of the current unlock session.
type SessionRecord struct {
	ID              string    `json:"id"`
	StartedAt       time.Time `json:"started_at"`
	DurationSeconds int64     `json:"duration_seconds"`
	Reason          string    `json:"reason"`
}
