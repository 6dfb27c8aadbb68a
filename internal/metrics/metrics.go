package metrics

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// State machine metrics
	StateTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweatlock_state_transitions_total",
			Help: "Total access state transitions",
		},
		[]string{"from", "to"},
	)

	CurrentState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sweatlock_state",
			Help: "Current access state (1 for the active state, 0 otherwise)",
		},
		[]string{"state"},
	)

	// Workout metrics
	WorkoutsCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweatlock_workouts_completed_total",
			Help: "Total workouts completed",
		},
		[]string{"type", "mode"},
	)

	WorkoutsCancelledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sweatlock_workouts_cancelled_total",
			Help: "Total workouts cancelled before completion",
		},
	)

	// Ledger metrics
	SecondsEarnedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sweatlock_seconds_earned_total",
			Help: "Total access seconds earned from workouts",
		},
	)

	SecondsConsumedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sweatlock_seconds_consumed_total",
			Help: "Total access seconds consumed",
		},
	)

	DailyCapReached = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sweatlock_daily_cap_reached",
			Help: "Whether today's consumption cap has been reached (0 or 1)",
		},
	)

	// Session metrics
	UnlockRemainingSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sweatlock_unlock_remaining_seconds",
			Help: "Seconds remaining on the active unlock session",
		},
	)

	// Enforcement metrics
	EnforcementErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sweatlock_enforcement_errors_total",
			Help: "Enforcement hook invocation errors",
		},
	)

	// Storage metrics
	StorageErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweatlock_storage_errors_total",
			Help: "Storage operation errors",
		},
		[]string{"operation"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(
		StateTransitionsTotal,
		CurrentState,
		WorkoutsCompletedTotal,
		WorkoutsCancelledTotal,
		SecondsEarnedTotal,
		SecondsConsumedTotal,
		DailyCapReached,
		UnlockRemainingSeconds,
		EnforcementErrors,
		StorageErrors,
	)
}

// SetState updates the per-state gauge so exactly one state reads 1.
func SetState(current string) {
	for _, state := range []string{"locked", "earning", "unlocked", "expired"} {
		value := 0.0
		if state == current {
			value = 1.0
		}
		CurrentState.WithLabelValues(state).Set(value)
	}
}

// Server is the metrics HTTP server
type Server struct {
	server   *http.Server
	logger   zerolog.Logger
	listener net.Listener // Optional pre-created listener (for systemd socket activation)
}

// NewServer creates a new metrics server
func NewServer(addr string, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// SetListener sets a pre-created listener for systemd socket activation
func (s *Server) SetListener(ln net.Listener) {
	s.listener = ln
}

// Start starts the metrics server
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting metrics server")
	go func() {
		var err error
		if s.listener != nil {
			s.logger.Debug().Msg("Using systemd socket-activated metrics listener")
			err = s.server.Serve(s.listener)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}

// Stop stops the metrics server
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping metrics server")
	return s.server.Close()
}
