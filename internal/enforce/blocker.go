// Package enforce hands resolved target lists to the host platform. The core
// never calls platform APIs itself; a Blocker is the single outbound seam.
package enforce

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sweatlock/sweatlock/internal/access"
	"github.com/sweatlock/sweatlock/internal/config"
)

// Blocker applies a target resolution on the host platform.
type Blocker interface {
	Apply(ctx context.Context, res access.Resolution) error
}

// FromConfig builds the configured blocker.
func FromConfig(cfg config.EnforceConfig, logger zerolog.Logger) (Blocker, error) {
	switch cfg.Mode {
	case "log":
		return NewLogBlocker(logger), nil
	case "exec":
		timeout, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid enforcement timeout: %w", err)
		}
		return NewExecBlocker(cfg.Command, timeout, logger), nil
	default:
		return nil, fmt.Errorf("invalid enforcement mode: %q", cfg.Mode)
	}
}

// LogBlocker records the resolution without acting on it. Useful on platforms
// where enforcement is wired up out of band, and as the default mode.
type LogBlocker struct {
	logger zerolog.Logger
}

func NewLogBlocker(logger zerolog.Logger) *LogBlocker {
	return &LogBlocker{logger: logger.With().Str("component", "enforcer").Logger()}
}

func (b *LogBlocker) Apply(ctx context.Context, res access.Resolution) error {
	b.logger.Info().
		Strs("blocked", identifiers(res.Blocked)).
		Strs("accessible", identifiers(res.Accessible)).
		Msg("Applied target resolution")
	return nil
}

// ExecBlocker invokes an external command with the blocked identifiers as
// arguments. The command owns the actual platform restriction; an empty
// argument list means everything is accessible.
type ExecBlocker struct {
	command string
	timeout time.Duration
	logger  zerolog.Logger
}

func NewExecBlocker(command string, timeout time.Duration, logger zerolog.Logger) *ExecBlocker {
	return &ExecBlocker{
		command: command,
		timeout: timeout,
		logger:  logger.With().Str("component", "enforcer").Logger(),
	}
}

func (b *ExecBlocker) Apply(ctx context.Context, res access.Resolution) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	blocked := identifiers(res.Blocked)
	cmd := exec.CommandContext(ctx, b.command, blocked...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		b.logger.Error().Err(err).
			Str("command", b.command).
			Str("output", strings.TrimSpace(string(output))).
			Msg("Enforcement command failed")
		return fmt.Errorf("enforcement command: %w", err)
	}

	b.logger.Debug().
		Str("command", b.command).
		Int("blocked_count", len(blocked)).
		Msg("Enforcement command applied")
	return nil
}

func identifiers(targets []access.Target) []string {
	ids := make([]string, 0, len(targets))
	for _, t := range targets {
		ids = append(ids, t.Identifier)
	}
	return ids
}
