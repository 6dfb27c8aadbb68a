package api

import (
	"encoding/json"
	"net/http"

	"github.com/sweatlock/sweatlock/internal/engine"
)

// handleStatus returns the full system snapshot.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.Status(s.now()))
}

// handleStartWorkout begins a workout attempt. Only valid while locked.
func (s *Server) handleStartWorkout(w http.ResponseWriter, r *http.Request) {
	var req StartWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Type == "" {
		writeError(w, http.StatusBadRequest, "Workout type is required")
		return
	}
	if req.TargetReps <= 0 {
		writeError(w, http.StatusBadRequest, "Target reps must be positive")
		return
	}

	status, ev, err := s.controller.StartWorkout(req.Type, req.Mode, req.TargetReps, s.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if ev.Kind == engine.EventNone {
		writeError(w, http.StatusConflict, "A workout can only be started while locked")
		return
	}

	writeJSON(w, http.StatusCreated, status)
}

// handleRecordReps reports absolute rep progress for the tracked workout.
func (s *Server) handleRecordReps(w http.ResponseWriter, r *http.Request) {
	var req RepsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Reps < 0 {
		writeError(w, http.StatusBadRequest, "Reps must not be negative")
		return
	}

	writeJSON(w, http.StatusOK, s.controller.RecordReps(req.Reps, s.now()))
}

// handleCompleteWorkout claims completion of the tracked workout.
func (s *Server) handleCompleteWorkout(w http.ResponseWriter, r *http.Request) {
	status, ev := s.controller.CompleteWorkout(s.now())
	if ev.Kind != engine.EventUnlocked {
		writeError(w, http.StatusConflict, "No completed workout to claim")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handleCancelWorkout abandons the tracked workout.
func (s *Server) handleCancelWorkout(w http.ResponseWriter, r *http.Request) {
	status, ev := s.controller.CancelWorkout(s.now())
	if ev.Kind != engine.EventWorkoutCancelled {
		writeError(w, http.StatusConflict, "No workout in progress")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handleLock forces the locked state. Always succeeds; locking an already
// locked system is a no-op.
func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	status, _ := s.controller.Lock(s.now())
	writeJSON(w, http.StatusOK, status)
}

// handleToday returns today's usage record.
func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.Status(s.now()).Today)
}

// handleWeek returns the seven-day usage history.
func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	days, err := s.controller.Week(s.now())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load weekly usage")
		writeError(w, http.StatusServiceUnavailable, "Usage history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, WeekResponse{Days: days})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
