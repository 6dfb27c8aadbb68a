package access

import (
	"testing"

	"github.com/sweatlock/sweatlock/internal/config"
	"github.com/sweatlock/sweatlock/internal/engine"
)

var testTargets = []Target{
	{Identifier: "com.example.videos", Name: "Videos"},
	{Identifier: "com.example.games", Name: "Games"},
	{Identifier: "com.example.browser", Name: "Browser", SystemApp: true},
}

func TestResolve(t *testing.T) {
	tests := []struct {
		state          engine.State
		wantBlocked    int
		wantAccessible int
	}{
		{engine.StateLocked, 3, 0},
		{engine.StateEarning, 3, 0},
		{engine.StateUnlocked, 0, 3},
		{engine.StateExpired, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			res := Resolve(tt.state, testTargets)
			if len(res.Blocked) != tt.wantBlocked {
				t.Errorf("expected %d blocked, got %d", tt.wantBlocked, len(res.Blocked))
			}
			if len(res.Accessible) != tt.wantAccessible {
				t.Errorf("expected %d accessible, got %d", tt.wantAccessible, len(res.Accessible))
			}

			// The two lists partition the configured targets: disjoint, and
			// their union is exactly the input list.
			seen := make(map[string]int)
			for _, target := range res.Blocked {
				seen[target.Identifier]++
			}
			for _, target := range res.Accessible {
				seen[target.Identifier]++
			}
			if len(seen) != len(testTargets) {
				t.Errorf("expected %d distinct targets, got %d", len(testTargets), len(seen))
			}
			for id, count := range seen {
				if count != 1 {
					t.Errorf("target %s appears %d times across lists", id, count)
				}
			}
		})
	}
}

func TestResolveEmptyTargets(t *testing.T) {
	res := Resolve(engine.StateUnlocked, nil)
	if res.Blocked == nil || res.Accessible == nil {
		t.Fatal("expected non-nil lists for empty target set")
	}
	if len(res.Blocked) != 0 || len(res.Accessible) != 0 {
		t.Fatalf("expected empty lists, got %+v", res)
	}
}

func TestTargetsFromConfig(t *testing.T) {
	cfg := []config.TargetConfig{
		{Identifier: "com.example.videos", Name: "Videos"},
		{Identifier: "com.example.browser", Name: "Browser", SystemApp: true},
	}

	targets := TargetsFromConfig(cfg)
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(targets))
	}
	if targets[1].Identifier != "com.example.browser" || !targets[1].SystemApp {
		t.Errorf("unexpected target: %+v", targets[1])
	}
}
