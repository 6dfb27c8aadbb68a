package reward

import (
	"sort"

	"github.com/sweatlock/sweatlock/internal/config"
)

// Calculator converts workout performance into earned access seconds. It is a
// pure, deterministic mapping: for a fixed (type, mode) the result is
// monotonically non-decreasing in reps, and never negative. Curves are
// configuration, not logic.
type Calculator struct {
	curves map[string]config.RewardCurve
	modes  map[string]float64
}

// NewCalculator creates a calculator from the configured reward curves.
func NewCalculator(cfg config.RewardsConfig) *Calculator {
	curves := make(map[string]config.RewardCurve, len(cfg.Exercises))
	for name, curve := range cfg.Exercises {
		curves[name] = curve
	}

	modes := make(map[string]float64, len(cfg.Modes))
	for name, multiplier := range cfg.Modes {
		modes[name] = multiplier
	}

	return &Calculator{curves: curves, modes: modes}
}

// EarnedTime returns the seconds of access earned by completing repsCompleted
// reps of the given workout type in the given mode. Non-positive reps and
// unknown workout types earn zero, never an error.
func (c *Calculator) EarnedTime(workoutType string, repsCompleted int, mode string) int64 {
	if repsCompleted <= 0 {
		return 0
	}

	curve, ok := c.curves[workoutType]
	if !ok {
		return 0
	}

	seconds := curve.BaseSeconds + curve.SecondsPerRep*int64(repsCompleted)
	if curve.MaxSeconds > 0 && seconds > curve.MaxSeconds {
		seconds = curve.MaxSeconds
	}

	multiplier, ok := c.modes[mode]
	if !ok {
		multiplier = 1.0
	}

	earned := int64(float64(seconds) * multiplier)
	if earned < 0 {
		return 0
	}
	return earned
}

// KnownType reports whether a workout type has a configured reward curve.
func (c *Calculator) KnownType(workoutType string) bool {
	_, ok := c.curves[workoutType]
	return ok
}

// KnownMode reports whether a mode multiplier is configured.
func (c *Calculator) KnownMode(mode string) bool {
	_, ok := c.modes[mode]
	return ok
}

// Types returns the configured workout types in sorted order.
func (c *Calculator) Types() []string {
	types := make([]string, 0, len(c.curves))
	for name := range c.curves {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}
