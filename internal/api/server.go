// Package api is the localhost JSON control surface: the UI drives the state
// machine through it and reads derived status, never the raw state internals.
package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/sweatlock/sweatlock/internal/app"
)

// Server is the control API HTTP server.
type Server struct {
	controller *app.Controller
	server     *http.Server
	router     *mux.Router
	listener   net.Listener // Optional pre-created listener (for systemd socket activation)
	now        func() time.Time
	logger     zerolog.Logger
}

// NewServer creates the control API server bound to addr.
func NewServer(addr string, controller *app.Controller, logger zerolog.Logger) *Server {
	router := mux.NewRouter()

	s := &Server{
		controller: controller,
		router:     router,
		now:        time.Now,
		logger:     logger.With().Str("component", "api").Logger(),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Use(LoggingMiddleware(s.logger))

	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	v1.HandleFunc("/workouts", s.handleStartWorkout).Methods(http.MethodPost)
	v1.HandleFunc("/workouts/reps", s.handleRecordReps).Methods(http.MethodPost)
	v1.HandleFunc("/workouts/complete", s.handleCompleteWorkout).Methods(http.MethodPost)
	v1.HandleFunc("/workouts/cancel", s.handleCancelWorkout).Methods(http.MethodPost)
	v1.HandleFunc("/lock", s.handleLock).Methods(http.MethodPost)
	v1.HandleFunc("/usage/today", s.handleToday).Methods(http.MethodGet)
	v1.HandleFunc("/usage/week", s.handleWeek).Methods(http.MethodGet)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
}

// SetListener sets a pre-created listener for systemd socket activation
func (s *Server) SetListener(ln net.Listener) {
	s.listener = ln
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting control API server")
	go func() {
		var err error
		if s.listener != nil {
			s.logger.Debug().Msg("Using systemd socket-activated API listener")
			err = s.server.Serve(s.listener)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Control API server error")
		}
	}()
	return nil
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("Stopping control API server")
	return s.server.Shutdown(ctx)
}
