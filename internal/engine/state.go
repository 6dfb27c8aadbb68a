package engine

import "fmt"

// State is the access control state. Exactly one state is current at any
// instant.
type State int

const (
	// StateLocked denies access; a workout must be started to earn time.
	StateLocked State = iota
	// StateEarning tracks an in-progress workout.
	StateEarning
	// StateUnlocked grants access while the unlock session has time left.
	StateUnlocked
	// StateExpired is the soft-lock buffer after session expiry, before the
	// grace period hard-locks.
	StateExpired
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateLocked:
		return "locked"
	case StateEarning:
		return "earning"
	case StateUnlocked:
		return "unlocked"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so states serialize as their
// names in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name produced by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "locked":
		*s = StateLocked
	case "earning":
		*s = StateEarning
	case "unlocked":
		*s = StateUnlocked
	case "expired":
		*s = StateExpired
	default:
		return fmt.Errorf("unknown access state: %q", text)
	}
	return nil
}
