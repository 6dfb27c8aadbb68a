package workout

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/sweatlock/sweatlock/internal/reward"
)

// Workout is an immutable description of one workout attempt. EarnedTimeSeconds
// is fixed at creation by the reward calculator; completing the workout grants
// exactly that many seconds of access.
type Workout struct {
	ID                string `json:"id"`
	Type              string `json:"type"`
	Mode              string `json:"mode"`
	TargetReps        int    `json:"target_reps"`
	EarnedTimeSeconds int64  `json:"earned_time_seconds"`
}

// New creates a workout for the given type, mode, and rep target. The earned
// time is computed up front so it cannot drift between start and completion.
func New(calc *reward.Calculator, workoutType, mode string, targetReps int) (Workout, error) {
	if targetReps <= 0 {
		return Workout{}, fmt.Errorf("target reps must be positive, got %d", targetReps)
	}
	if !calc.KnownType(workoutType) {
		return Workout{}, fmt.Errorf("unknown workout type: %q", workoutType)
	}

	earned := calc.EarnedTime(workoutType, targetReps, mode)
	if earned <= 0 {
		return Workout{}, fmt.Errorf("workout %q earns no time for %d reps", workoutType, targetReps)
	}

	return Workout{
		ID:                generateWorkoutID(),
		Type:              workoutType,
		Mode:              mode,
		TargetReps:        targetReps,
		EarnedTimeSeconds: earned,
	}, nil
}

func generateWorkoutID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// This should never happen with a working system RNG
		panic(fmt.Sprintf("failed to generate random workout ID: %v", err))
	}
	return hex.EncodeToString(bytes)
}
