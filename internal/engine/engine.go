package engine

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/sweatlock/sweatlock/internal/session"
	"github.com/sweatlock/sweatlock/internal/workout"
)

// UnlockReasonWorkout tags unlock sessions granted for completed workouts.
const UnlockReasonWorkout = "workout_completed"

// WorkoutTracker is the workout tracking collaborator. The engine never
// judges workout completion itself.
type WorkoutTracker interface {
	RecordWorkoutStart(w workout.Workout, now time.Time)
	IsCompleted(now time.Time) bool
	Current() *workout.Workout
	Progress(now time.Time) float64
	Clear()
}

// Engine is the access state machine: Locked -> Earning -> Unlocked ->
// Expired -> Locked. Every state-affecting call takes an explicit now and
// the engine never reads the wall clock, so replays are deterministic.
//
// The engine assumes single-threaded, serialized access; hosts embedding it
// in a concurrent environment must serialize calls externally. Invalid
// commands are silently ignored rather than erroring, because the UI layer
// may fire duplicate or stale commands.
type Engine struct {
	state       State
	tracker     WorkoutTracker
	unlock      *session.Service
	gracePeriod time.Duration
	expiredAt   time.Time
	logger      zerolog.Logger
}

// New creates an engine in the Locked state.
func New(tracker WorkoutTracker, unlock *session.Service, gracePeriod time.Duration, logger zerolog.Logger) *Engine {
	return &Engine{
		state:       StateLocked,
		tracker:     tracker,
		unlock:      unlock,
		gracePeriod: gracePeriod,
		logger:      logger.With().Str("component", "engine").Logger(),
	}
}

// Restore applies the cold-start recovery policy: if a persisted unlock
// session is still active at now the engine resumes Unlocked, otherwise it
// stays Locked. Earning and Expired are never resumed.
func (e *Engine) Restore(now time.Time) Event {
	if e.state != StateLocked {
		return noEvent(e.state, now)
	}
	if !e.unlock.Restore(now) {
		return noEvent(e.state, now)
	}

	e.state = StateUnlocked
	e.logger.Info().
		Int64("remaining_seconds", e.unlock.RemainingSeconds(now)).
		Msg("Resumed unlocked state from persisted session")
	return Event{Kind: EventUnlocked, From: StateLocked, To: StateUnlocked, At: now}
}

// State returns the current access state.
func (e *Engine) State() State {
	return e.state
}

// StartWorkout begins earning. Only valid from Locked; otherwise a no-op.
func (e *Engine) StartWorkout(w workout.Workout, now time.Time) Event {
	if e.state != StateLocked {
		e.logger.Debug().
			Stringer("state", e.state).
			Msg("Ignoring startWorkout outside Locked")
		return noEvent(e.state, now)
	}

	e.tracker.RecordWorkoutStart(w, now)
	e.state = StateEarning
	return Event{Kind: EventWorkoutStarted, From: StateLocked, To: StateEarning, At: now}
}

// CompleteWorkout transitions to Unlocked when the tracked workout is judged
// complete at now, starting an unlock session worth the workout's earned
// time. A no-op outside Earning or while the workout is incomplete.
func (e *Engine) CompleteWorkout(now time.Time) Event {
	if e.state != StateEarning {
		e.logger.Debug().
			Stringer("state", e.state).
			Msg("Ignoring completeWorkout outside Earning")
		return noEvent(e.state, now)
	}
	if !e.tracker.IsCompleted(now) {
		e.logger.Debug().
			Float64("progress", e.tracker.Progress(now)).
			Msg("Ignoring completeWorkout before rep target reached")
		return noEvent(e.state, now)
	}

	w := e.tracker.Current()
	if w == nil {
		// Earning without a tracked workout means a collaborator bug; fail
		// closed by locking.
		e.logger.Error().Msg("Earning state with no tracked workout, locking")
		return e.Lock(now)
	}

	if _, err := e.unlock.RecordUnlockStart(w.EarnedTimeSeconds, UnlockReasonWorkout, now); err != nil {
		e.logger.Error().Err(err).
			Int64("earned_time_seconds", w.EarnedTimeSeconds).
			Msg("Failed to start unlock session")
		return noEvent(e.state, now)
	}

	e.tracker.Clear()
	e.state = StateUnlocked
	return Event{Kind: EventUnlocked, From: StateEarning, To: StateUnlocked, At: now}
}

// CancelWorkout abandons the tracked workout. Only valid from Earning.
func (e *Engine) CancelWorkout(now time.Time) Event {
	if e.state != StateEarning {
		return noEvent(e.state, now)
	}

	e.tracker.Clear()
	e.state = StateLocked
	return Event{Kind: EventWorkoutCancelled, From: StateEarning, To: StateLocked, At: now}
}

// Lock forces Locked from any state, clearing the workout, the unlock
// session, and any pending grace period.
func (e *Engine) Lock(now time.Time) Event {
	from := e.state

	e.tracker.Clear()
	e.unlock.ClearSession()
	e.expiredAt = time.Time{}
	e.state = StateLocked

	if from == StateLocked {
		return noEvent(StateLocked, now)
	}
	return Event{Kind: EventLocked, From: from, To: StateLocked, At: now}
}

// Tick advances time-driven transitions. It is the only time-advancing
// operation and is idempotent: repeated calls with non-decreasing now apply
// each side effect at most once. Callers must supply monotonically
// non-decreasing now values.
func (e *Engine) Tick(now time.Time) Event {
	switch e.state {
	case StateUnlocked:
		if e.unlock.IsActive(now) {
			return noEvent(e.state, now)
		}
		e.expiredAt = now
		e.state = StateExpired
		e.logger.Info().Time("expired_at", now).Msg("Unlock session expired, grace period started")
		return Event{Kind: EventExpired, From: StateUnlocked, To: StateExpired, At: now}

	case StateExpired:
		if now.Sub(e.expiredAt) < e.gracePeriod {
			return noEvent(e.state, now)
		}
		e.unlock.ClearSession()
		e.expiredAt = time.Time{}
		e.state = StateLocked
		e.logger.Info().Msg("Grace period elapsed, locked")
		return Event{Kind: EventLocked, From: StateExpired, To: StateLocked, At: now}

	default:
		return noEvent(e.state, now)
	}
}

// WorkoutProgress returns the tracked workout's completion in [0, 1].
func (e *Engine) WorkoutProgress(now time.Time) float64 {
	return e.tracker.Progress(now)
}

// UnlockTimeRemaining returns the seconds left on the unlock session, 0 when
// none is active.
func (e *Engine) UnlockTimeRemaining(now time.Time) int64 {
	return e.unlock.RemainingSeconds(now)
}

// GracePeriodRemaining returns the seconds left in the grace window, 0
// outside Expired.
func (e *Engine) GracePeriodRemaining(now time.Time) int64 {
	if e.state != StateExpired {
		return 0
	}
	remaining := int64((e.gracePeriod - now.Sub(e.expiredAt)) / time.Second)
	if remaining < 0 {
		return 0
	}
	return remaining
}
