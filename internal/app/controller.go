// Package app wires the core components behind a single serialized
// controller. The controller is the only writer: the ticker loop and the API
// handlers all funnel through its mutex, which is the concurrency model the
// core components assume.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sweatlock/sweatlock/internal/access"
	"github.com/sweatlock/sweatlock/internal/config"
	"github.com/sweatlock/sweatlock/internal/enforce"
	"github.com/sweatlock/sweatlock/internal/engine"
	"github.com/sweatlock/sweatlock/internal/ledger"
	"github.com/sweatlock/sweatlock/internal/metrics"
	"github.com/sweatlock/sweatlock/internal/reward"
	"github.com/sweatlock/sweatlock/internal/session"
	"github.com/sweatlock/sweatlock/internal/storage"
	"github.com/sweatlock/sweatlock/internal/workout"
)

// Controller composes the state machine, ledger, reward calculator, target
// resolver and enforcement hook.
type Controller struct {
	mu sync.Mutex

	engine  *engine.Engine
	tracker *workout.Tracker
	unlock  *session.Service
	ledger  *ledger.Ledger
	calc    *reward.Calculator
	targets []access.Target
	blocker enforce.Blocker

	// lastTick marks where consumption accounting left off while Unlocked.
	lastTick time.Time

	retentionDays int
	logger        zerolog.Logger
}

// New builds a controller from configuration and an opened store.
func New(cfg *config.Config, store storage.Store, blocker enforce.Blocker, logger zerolog.Logger) *Controller {
	tracker := workout.NewTracker(logger)
	unlock := session.NewService(store.Sessions(), logger)

	return &Controller{
		engine:        engine.New(tracker, unlock, cfg.Engine.GracePeriodDuration(), logger),
		tracker:       tracker,
		unlock:        unlock,
		ledger:        ledger.New(store.Usage(), ledger.Tier(cfg.Plan.Tier), logger),
		calc:          reward.NewCalculator(cfg.Rewards),
		targets:       access.TargetsFromConfig(cfg.Targets),
		blocker:       blocker,
		retentionDays: cfg.Storage.RetentionDays,
		logger:        logger.With().Str("component", "controller").Logger(),
	}
}

// Restore applies the cold-start recovery policy and enforces the resulting
// state, whatever it is, so the platform is consistent from the first moment.
func (c *Controller) Restore(now time.Time) Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	ev := c.engine.Restore(now)
	if ev.Kind == engine.EventUnlocked {
		c.lastTick = now
	}

	metrics.SetState(c.engine.State().String())
	c.enforceLocked(c.engine.State())
	return c.statusLocked(now)
}

// StartWorkout creates a workout from the reward configuration and hands it
// to the state machine. The earned time is fixed here, at creation.
func (c *Controller) StartWorkout(workoutType, mode string, targetReps int, now time.Time) (Status, engine.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, err := workout.New(c.calc, workoutType, mode, targetReps)
	if err != nil {
		return c.statusLocked(now), engine.Event{Kind: engine.EventNone}, err
	}

	ev := c.engine.StartWorkout(w, now)
	c.reactLocked(ev)
	return c.statusLocked(now), ev, nil
}

// RecordReps reports workout progress. It never transitions state; completion
// is claimed explicitly via CompleteWorkout.
func (c *Controller) RecordReps(reps int, now time.Time) Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tracker.RecordReps(reps, now)
	return c.statusLocked(now)
}

// CompleteWorkout claims completion of the tracked workout. On success the
// earned seconds are credited to the ledger and an unlock session starts.
func (c *Controller) CompleteWorkout(now time.Time) (Status, engine.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Capture before the engine clears the tracker.
	w := c.tracker.Current()

	ev := c.engine.CompleteWorkout(now)
	if ev.Kind == engine.EventUnlocked && w != nil {
		if err := c.ledger.AddEarnedTime(w.EarnedTimeSeconds, now); err != nil {
			// The unlock already happened; ledger degradation must not
			// revoke it.
			c.logger.Warn().Err(err).Msg("Failed to credit earned time")
			metrics.StorageErrors.WithLabelValues("add_earned").Inc()
		}
		metrics.WorkoutsCompletedTotal.WithLabelValues(w.Type, w.Mode).Inc()
		metrics.SecondsEarnedTotal.Add(float64(w.EarnedTimeSeconds))
		c.lastTick = now
	}

	c.reactLocked(ev)
	return c.statusLocked(now), ev
}

// CancelWorkout abandons the tracked workout.
func (c *Controller) CancelWorkout(now time.Time) (Status, engine.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ev := c.engine.CancelWorkout(now)
	if ev.Kind == engine.EventWorkoutCancelled {
		metrics.WorkoutsCancelledTotal.Inc()
	}
	c.reactLocked(ev)
	return c.statusLocked(now), ev
}

// Lock forces the locked state immediately.
func (c *Controller) Lock(now time.Time) (Status, engine.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ev := c.lockLocked(now)
	return c.statusLocked(now), ev
}

// Tick advances time: consumption is accounted for the unlocked span since
// the previous tick, the daily cap is enforced, and the state machine runs
// its time-driven transitions.
func (c *Controller) Tick(now time.Time) engine.Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.engine.State() == engine.StateUnlocked && !c.lastTick.IsZero() {
		elapsed := int64(now.Sub(c.lastTick) / time.Second)
		// A late tick must not bill time past the session's end.
		if remaining := c.engine.UnlockTimeRemaining(c.lastTick); elapsed > remaining {
			elapsed = remaining
		}
		if elapsed > 0 {
			if err := c.ledger.ConsumeTime(elapsed, now); err != nil {
				c.logger.Warn().Err(err).Int64("seconds", elapsed).Msg("Failed to record consumed time")
				metrics.StorageErrors.WithLabelValues("consume").Inc()
			}
			metrics.SecondsConsumedTotal.Add(float64(elapsed))
			// Advance by whole seconds only; the fraction carries over.
			c.lastTick = c.lastTick.Add(time.Duration(elapsed) * time.Second)
		}

		if c.ledger.HasHitDailyCap(now) {
			c.logger.Info().
				Str("tier", string(c.ledger.Tier())).
				Msg("Daily cap reached, locking")
			metrics.DailyCapReached.Set(1)
			return c.lockLocked(now)
		}
	}

	ev := c.engine.Tick(now)
	if ev.Kind != engine.EventNone && ev.To != engine.StateUnlocked {
		c.lastTick = time.Time{}
	}
	c.reactLocked(ev)

	metrics.UnlockRemainingSeconds.Set(float64(c.engine.UnlockTimeRemaining(now)))
	return ev
}

// Status returns a consistent snapshot for the API and CLI.
func (c *Controller) Status(now time.Time) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked(now)
}

// Week returns the daily records for the seven days ending today.
func (c *Controller) Week(now time.Time) ([]storage.DayRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Week(now)
}

// PruneHistory deletes daily records older than the retention window.
func (c *Controller) PruneHistory(now time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.DeleteDaysBefore(c.retentionDays, now)
}

// RewardPreview returns the seconds a workout would earn without starting it.
func (c *Controller) RewardPreview(workoutType string, reps int, mode string) int64 {
	return c.calc.EarnedTime(workoutType, reps, mode)
}

func (c *Controller) lockLocked(now time.Time) engine.Event {
	ev := c.engine.Lock(now)
	c.lastTick = time.Time{}
	c.reactLocked(ev)
	return ev
}

// reactLocked pushes a state transition to metrics and the enforcement hook.
// Callers hold the mutex.
func (c *Controller) reactLocked(ev engine.Event) {
	if ev.Kind == engine.EventNone {
		return
	}

	c.logger.Info().
		Stringer("event", ev.Kind).
		Stringer("from", ev.From).
		Stringer("to", ev.To).
		Msg("State transition")

	metrics.StateTransitionsTotal.WithLabelValues(ev.From.String(), ev.To.String()).Inc()
	metrics.SetState(ev.To.String())

	if ev.From == engine.StateUnlocked || ev.To == engine.StateUnlocked {
		c.enforceLocked(ev.To)
	}
}

func (c *Controller) enforceLocked(state engine.State) {
	res := access.Resolve(state, c.targets)
	if err := c.blocker.Apply(context.Background(), res); err != nil {
		c.logger.Error().Err(err).Msg("Enforcement failed")
		metrics.EnforcementErrors.Inc()
	}
}

func (c *Controller) statusLocked(now time.Time) Status {
	state := c.engine.State()
	today := c.ledger.Today(now)
	res := access.Resolve(state, c.targets)

	return Status{
		State:                  state,
		Workout:                c.tracker.Current(),
		RepsDone:               c.tracker.RepsDone(),
		WorkoutProgress:        c.tracker.Progress(now),
		UnlockRemainingSeconds: c.engine.UnlockTimeRemaining(now),
		GraceRemainingSeconds:  c.engine.GracePeriodRemaining(now),
		PlanTier:               string(c.ledger.Tier()),
		DailyCapSeconds:        c.ledger.Tier().DailyCapSeconds(),
		DailyCapReached:        c.ledger.HasHitDailyCap(now),
		DailyProgress:          c.ledger.Progress(now),
		Today:                  today,
		Blocked:                res.Blocked,
		Accessible:             res.Accessible,
	}
}

// Status is a point-in-time snapshot of the whole system.
type Status struct {
	State                  engine.State      `json:"state"`
	Workout                *workout.Workout  `json:"workout,omitempty"`
	RepsDone               int               `json:"reps_done"`
	WorkoutProgress        float64           `json:"workout_progress"`
	UnlockRemainingSeconds int64             `json:"unlock_remaining_seconds"`
	GraceRemainingSeconds  int64             `json:"grace_remaining_seconds"`
	PlanTier               string            `json:"plan_tier"`
	DailyCapSeconds        int64             `json:"daily_cap_seconds"`
	DailyCapReached        bool              `json:"daily_cap_reached"`
	DailyProgress          float64           `json:"daily_progress"`
	Today                  storage.DayRecord `json:"today"`
	Blocked                []access.Target   `json:"blocked"`
	Accessible             []access.Target   `json:"accessible"`
}
