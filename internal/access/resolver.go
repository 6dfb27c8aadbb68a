// Package access derives which block targets are reachable from the current
// access state. Consumers act on the resolved lists, never on the raw state,
// so target handling cannot drift out of sync with the state machine.
package access

import (
	"github.com/sweatlock/sweatlock/internal/config"
	"github.com/sweatlock/sweatlock/internal/engine"
)

// Target is an app or content category subject to blocking. The identifier is
// an opaque platform token; the core never interprets it.
type Target struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	SystemApp  bool   `json:"system_app"`
}

// TargetsFromConfig converts the configured target list.
func TargetsFromConfig(targets []config.TargetConfig) []Target {
	resolved := make([]Target, 0, len(targets))
	for _, t := range targets {
		resolved = append(resolved, Target{
			Identifier: t.Identifier,
			Name:       t.Name,
			SystemApp:  t.SystemApp,
		})
	}
	return resolved
}

// Resolution partitions the configured targets: every target appears in
// exactly one of the two lists.
type Resolution struct {
	Blocked    []Target `json:"blocked"`
	Accessible []Target `json:"accessible"`
}

// Resolve maps the access state over the configured targets. Only Unlocked
// grants access; Locked, Earning and Expired block everything. Both lists are
// always non-nil so JSON consumers see arrays rather than null.
func Resolve(state engine.State, targets []Target) Resolution {
	res := Resolution{
		Blocked:    make([]Target, 0, len(targets)),
		Accessible: make([]Target, 0, len(targets)),
	}
	if state == engine.StateUnlocked {
		res.Accessible = append(res.Accessible, targets...)
		return res
	}
	res.Blocked = append(res.Blocked, targets...)
	return res
}
