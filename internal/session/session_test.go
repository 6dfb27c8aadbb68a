package session

import (
	"testing"
	"time"
)

func TestUnlockSessionMath(t *testing.T) {
	start := time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC)
	sess := UnlockSession{
		ID:              "s1",
		StartTime:       start,
		DurationSeconds: 60,
		Reason:          "workout_completed",
	}

	if got := sess.EndTime(); !got.Equal(start.Add(60 * time.Second)) {
		t.Errorf("unexpected end time: %v", got)
	}

	tests := []struct {
		name          string
		now           time.Time
		wantRemaining int64
		wantExpired   bool
	}{
		{"at start", start, 60, false},
		{"halfway", start.Add(30 * time.Second), 30, false},
		{"one second left", start.Add(59 * time.Second), 1, false},
		{"exactly at end", start.Add(60 * time.Second), 0, false},
		{"past end", start.Add(61 * time.Second), 0, true},
		{"long past end", start.Add(time.Hour), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sess.RemainingSeconds(tt.now); got != tt.wantRemaining {
				t.Errorf("RemainingSeconds(%v) = %d, want %d", tt.now, got, tt.wantRemaining)
			}
			if got := sess.IsExpired(tt.now); got != tt.wantExpired {
				t.Errorf("IsExpired(%v) = %v, want %v", tt.now, got, tt.wantExpired)
			}
		})
	}
}
