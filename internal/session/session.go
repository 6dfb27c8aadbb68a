package session

import "time"

// UnlockSession is an immutable grant of access time. All expiry math is pure
// and parameterized by an explicit now.
type UnlockSession struct {
	ID              string    `json:"id"`
	StartTime       time.Time `json:"start_time"`
	DurationSeconds int64     `json:"duration_seconds"`
	Reason          string    `json:"reason"`
}

// EndTime returns the instant at which the session expires.
func (s UnlockSession) EndTime() time.Time {
	return s.StartTime.Add(time.Duration(s.DurationSeconds) * time.Second)
}

// RemainingSeconds returns the whole seconds of access left at now, clamped
// at zero.
func (s UnlockSession) RemainingSeconds(now time.Time) int64 {
	remaining := int64(s.EndTime().Sub(now) / time.Second)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsExpired reports whether now is strictly past the session's end.
func (s UnlockSession) IsExpired(now time.Time) bool {
	return now.After(s.EndTime())
}
