package workout

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sweatlock/sweatlock/internal/config"
	"github.com/sweatlock/sweatlock/internal/reward"
)

func testCalculator() *reward.Calculator {
	return reward.NewCalculator(config.RewardsConfig{
		Exercises: map[string]config.RewardCurve{
			"pushup": {BaseSeconds: 60, SecondsPerRep: 30, MaxSeconds: 1800},
		},
		Modes: map[string]float64{"standard": 1.0},
	})
}

func TestNewWorkout(t *testing.T) {
	calc := testCalculator()

	w, err := New(calc, "pushup", "standard", 10)
	if err != nil {
		t.Fatalf("new workout: %v", err)
	}
	if w.EarnedTimeSeconds != 360 {
		t.Errorf("expected earned time 360, got %d", w.EarnedTimeSeconds)
	}
	if w.ID == "" {
		t.Error("expected non-empty workout ID")
	}

	other, err := New(calc, "pushup", "standard", 10)
	if err != nil {
		t.Fatalf("new workout: %v", err)
	}
	if other.ID == w.ID {
		t.Error("expected unique workout IDs")
	}
}

func TestNewWorkoutRejectsInvalid(t *testing.T) {
	calc := testCalculator()

	if _, err := New(calc, "pushup", "standard", 0); err == nil {
		t.Error("expected error for zero target reps")
	}
	if _, err := New(calc, "pushup", "standard", -5); err == nil {
		t.Error("expected error for negative target reps")
	}
	if _, err := New(calc, "deadlift", "standard", 10); err == nil {
		t.Error("expected error for unknown workout type")
	}
}

func TestTrackerLifecycle(t *testing.T) {
	calc := testCalculator()
	tracker := NewTracker(zerolog.Nop())
	now := time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC)

	if tracker.IsCompleted(now) {
		t.Error("empty tracker should not be completed")
	}
	if tracker.Progress(now) != 0 {
		t.Error("empty tracker should report zero progress")
	}

	w, err := New(calc, "pushup", "standard", 10)
	if err != nil {
		t.Fatalf("new workout: %v", err)
	}
	tracker.RecordWorkoutStart(w, now)

	tracker.RecordReps(5, now.Add(30*time.Second))
	if tracker.IsCompleted(now.Add(30 * time.Second)) {
		t.Error("workout should not be completed at 5/10 reps")
	}
	if got := tracker.Progress(now.Add(30 * time.Second)); got != 0.5 {
		t.Errorf("expected progress 0.5, got %f", got)
	}

	tracker.RecordReps(10, now.Add(60*time.Second))
	if !tracker.IsCompleted(now.Add(60 * time.Second)) {
		t.Error("workout should be completed at 10/10 reps")
	}

	tracker.Clear()
	if tracker.Current() != nil {
		t.Error("expected no current workout after clear")
	}
	if tracker.RepsDone() != 0 {
		t.Error("expected zero reps after clear")
	}
}

func TestTrackerRepsNeverGoBackwards(t *testing.T) {
	calc := testCalculator()
	tracker := NewTracker(zerolog.Nop())
	now := time.Now()

	w, err := New(calc, "pushup", "standard", 20)
	if err != nil {
		t.Fatalf("new workout: %v", err)
	}
	tracker.RecordWorkoutStart(w, now)

	tracker.RecordReps(8, now)
	tracker.RecordReps(3, now) // stale report
	if tracker.RepsDone() != 8 {
		t.Errorf("expected 8 reps, got %d", tracker.RepsDone())
	}
}

func TestTrackerProgressClamped(t *testing.T) {
	calc := testCalculator()
	tracker := NewTracker(zerolog.Nop())
	now := time.Now()

	w, err := New(calc, "pushup", "standard", 10)
	if err != nil {
		t.Fatalf("new workout: %v", err)
	}
	tracker.RecordWorkoutStart(w, now)
	tracker.RecordReps(15, now)

	if got := tracker.Progress(now); got != 1 {
		t.Errorf("expected clamped progress 1, got %f", got)
	}
}
