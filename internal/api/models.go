package api

import "github.com/sweatlock/sweatlock/internal/storage"

// StartWorkoutRequest begins a workout attempt.
type StartWorkoutRequest struct {
	Type       string `json:"type"`
	Mode       string `json:"mode"`
	TargetReps int    `json:"target_reps"`
}

// RepsRequest reports absolute workout progress.
type RepsRequest struct {
	Reps int `json:"reps"`
}

// WeekResponse is the seven-day usage history, oldest first.
type WeekResponse struct {
	Days []storage.DayRecord `json:"days"`
}

// ErrorResponse is the error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
