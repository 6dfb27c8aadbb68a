package workout

import (
	"time"

	"github.com/rs/zerolog"
)

// Tracker holds the workout currently being performed and judges its
// completion from reported reps. At most one workout is tracked at a time.
// All time-dependent methods take an explicit now; the tracker never reads
// the wall clock.
type Tracker struct {
	current   *Workout
	repsDone  int
	startedAt time.Time
	logger    zerolog.Logger
}

// NewTracker creates an empty workout tracker.
func NewTracker(logger zerolog.Logger) *Tracker {
	return &Tracker{
		logger: logger.With().Str("component", "workout-tracker").Logger(),
	}
}

// RecordWorkoutStart begins tracking a workout, replacing any previous one.
func (t *Tracker) RecordWorkoutStart(w Workout, now time.Time) {
	t.current = &w
	t.repsDone = 0
	t.startedAt = now

	t.logger.Info().
		Str("workout_id", w.ID).
		Str("type", w.Type).
		Str("mode", w.Mode).
		Int("target_reps", w.TargetReps).
		Int64("earned_time_seconds", w.EarnedTimeSeconds).
		Msg("Workout started")
}

// RecordReps records the total reps completed so far. Counts are absolute and
// never go backwards; a stale lower report is ignored.
func (t *Tracker) RecordReps(completed int, now time.Time) {
	if t.current == nil {
		return
	}
	if completed <= t.repsDone {
		return
	}

	t.repsDone = completed
	t.logger.Debug().
		Str("workout_id", t.current.ID).
		Int("reps_done", t.repsDone).
		Int("target_reps", t.current.TargetReps).
		Msg("Reps recorded")
}

// IsCompleted reports whether the tracked workout has reached its rep target.
func (t *Tracker) IsCompleted(now time.Time) bool {
	return t.current != nil && t.repsDone >= t.current.TargetReps
}

// Current returns the tracked workout, or nil if none.
func (t *Tracker) Current() *Workout {
	return t.current
}

// RepsDone returns the reps recorded for the tracked workout.
func (t *Tracker) RepsDone() int {
	if t.current == nil {
		return 0
	}
	return t.repsDone
}

// Progress returns completion progress in [0, 1], 0 when nothing is tracked.
func (t *Tracker) Progress(now time.Time) float64 {
	if t.current == nil || t.current.TargetReps <= 0 {
		return 0
	}
	progress := float64(t.repsDone) / float64(t.current.TargetReps)
	if progress > 1 {
		return 1
	}
	return progress
}

// Clear drops the tracked workout.
func (t *Tracker) Clear() {
	if t.current != nil {
		t.logger.Debug().Str("workout_id", t.current.ID).Msg("Workout cleared")
	}
	t.current = nil
	t.repsDone = 0
	t.startedAt = time.Time{}
}
