package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sweatlock/sweatlock/internal/storage"
)

// ErrInvalidDuration is returned when an unlock is started with a
// non-positive duration.
var ErrInvalidDuration = errors.New("session: duration must be positive")

// Service owns the single current unlock session. Starting a new session
// while one is active replaces it (last-write-wins). The in-memory session is
// authoritative; the store is a write-through copy used only for cold-start
// recovery, so persistence failures are logged and never block the unlock.
type Service struct {
	current *UnlockSession
	store   storage.SessionStore
	logger  zerolog.Logger
}

// NewService creates an unlock service. store may be nil to disable
// persistence.
func NewService(store storage.SessionStore, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "unlock").Logger(),
	}
}

// RecordUnlockStart creates and stores a new unlock session starting at now.
func (s *Service) RecordUnlockStart(durationSeconds int64, reason string, now time.Time) (UnlockSession, error) {
	if durationSeconds <= 0 {
		return UnlockSession{}, ErrInvalidDuration
	}

	sess := UnlockSession{
		ID:              generateSessionID(),
		StartTime:       now,
		DurationSeconds: durationSeconds,
		Reason:          reason,
	}

	if s.current != nil && !s.current.IsExpired(now) {
		s.logger.Warn().
			Str("previous_id", s.current.ID).
			Int64("discarded_seconds", s.current.RemainingSeconds(now)).
			Msg("Replacing active unlock session")
	}

	s.current = &sess
	s.persist(sess)

	s.logger.Info().
		Str("session_id", sess.ID).
		Int64("duration_seconds", durationSeconds).
		Str("reason", reason).
		Msg("Unlock session started")

	return sess, nil
}

// IsActive reports whether a session is held and not expired at now.
func (s *Service) IsActive(now time.Time) bool {
	return s.current != nil && !s.current.IsExpired(now)
}

// RemainingSeconds returns the seconds left on the current session, 0 if none.
func (s *Service) RemainingSeconds(now time.Time) int64 {
	if s.current == nil {
		return 0
	}
	return s.current.RemainingSeconds(now)
}

// Current returns the held session, or nil if none. Expired sessions remain
// held until ClearSession; callers decide what expiry means.
func (s *Service) Current() *UnlockSession {
	return s.current
}

// ClearSession drops the current session unconditionally.
func (s *Service) ClearSession() {
	if s.current != nil {
		s.logger.Debug().Str("session_id", s.current.ID).Msg("Unlock session cleared")
	}
	s.current = nil

	if s.store != nil {
		if err := s.store.Clear(context.Background()); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to clear persisted unlock session")
		}
	}
}

// Restore loads a persisted session and adopts it if it is still active at
// now. It returns true when a session was resumed. A stale persisted session
// is discarded.
func (s *Service) Restore(now time.Time) bool {
	if s.store == nil {
		return false
	}

	record, err := s.store.Get(context.Background())
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("Failed to load persisted unlock session")
		}
		return false
	}

	sess := UnlockSession{
		ID:              record.ID,
		StartTime:       record.StartedAt,
		DurationSeconds: record.DurationSeconds,
		Reason:          record.Reason,
	}

	if sess.IsExpired(now) {
		s.logger.Info().
			Str("session_id", sess.ID).
			Time("ended_at", sess.EndTime()).
			Msg("Persisted unlock session already expired, discarding")
		if err := s.store.Clear(context.Background()); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to clear stale unlock session")
		}
		return false
	}

	s.current = &sess
	s.logger.Info().
		Str("session_id", sess.ID).
		Int64("remaining_seconds", sess.RemainingSeconds(now)).
		Msg("Resumed persisted unlock session")
	return true
}

func (s *Service) persist(sess UnlockSession) {
	if s.store == nil {
		return
	}

	record := storage.SessionRecord{
		ID:              sess.ID,
		StartedAt:       sess.StartTime,
		DurationSeconds: sess.DurationSeconds,
		Reason:          sess.Reason,
	}
	if err := s.store.Put(context.Background(), record); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("Failed to persist unlock session")
	}
}

func generateSessionID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// This should never happen with a working system RNG
		panic(fmt.Sprintf("failed to generate random session ID: %v", err))
	}
	return hex.EncodeToString(bytes)
}
