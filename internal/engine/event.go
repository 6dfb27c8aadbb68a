package engine

import "time"

// EventKind identifies what a command or tick did.
type EventKind int

const (
	// EventNone means the call was a no-op: either nothing was due or the
	// command was invalid for the current state and silently ignored.
	EventNone EventKind = iota
	EventWorkoutStarted
	EventWorkoutCancelled
	EventUnlocked
	EventExpired
	EventLocked
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventNone:
		return "none"
	case EventWorkoutStarted:
		return "workout_started"
	case EventWorkoutCancelled:
		return "workout_cancelled"
	case EventUnlocked:
		return "unlocked"
	case EventExpired:
		return "expired"
	case EventLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// Event is the explicit result of a command or tick. It replaces observer
// broadcasts: the single embedding caller inspects the event and reacts.
type Event struct {
	Kind EventKind
	From State
	To   State
	At   time.Time
}

// noEvent reports a silently ignored call.
func noEvent(state State, at time.Time) Event {
	return Event{Kind: EventNone, From: state, To: state, At: at}
}
