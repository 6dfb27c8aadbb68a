package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Server  ServerConfig   `mapstructure:"server"`
	Engine  EngineConfig   `mapstructure:"engine"`
	Plan    PlanConfig     `mapstructure:"plan"`
	Rewards RewardsConfig  `mapstructure:"rewards"`
	Targets []TargetConfig `mapstructure:"targets"`
	Storage StorageConfig  `mapstructure:"storage"`
	Logging LoggingConfig  `mapstructure:"logging"`
	Enforce EnforceConfig  `mapstructure:"enforcement"`
}

// ServerConfig defines the control API and metrics listeners
type ServerConfig struct {
	APIPort     int    `mapstructure:"api_port"`
	MetricsPort int    `mapstructure:"metrics_port"`
	BindAddress string `mapstructure:"bind_address"`
}

// EngineConfig defines access state machine settings
type EngineConfig struct {
	GracePeriod  string `mapstructure:"grace_period"`  // soft-lock buffer after expiry
	TickInterval string `mapstructure:"tick_interval"` // scheduler period driving the engine
}

// GracePeriodDuration returns the parsed grace period. Validation has already
// rejected unparseable values.
func (c EngineConfig) GracePeriodDuration() time.Duration {
	d, _ := time.ParseDuration(c.GracePeriod)
	return d
}

// TickIntervalDuration returns the parsed tick interval.
func (c EngineConfig) TickIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.TickInterval)
	return d
}

// PlanConfig defines the subscription plan
type PlanConfig struct {
	Tier string `mapstructure:"tier"` // "free", "standard", or "advanced"
}

// RewardsConfig defines how workout performance converts to earned seconds
type RewardsConfig struct {
	Exercises map[string]RewardCurve `mapstructure:"exercises"`
	Modes     map[string]float64     `mapstructure:"modes"` // multiplier per workout mode
}

// RewardCurve defines the earning curve for one workout type
type RewardCurve struct {
	BaseSeconds   int64 `mapstructure:"base_seconds"`    // granted on completion regardless of reps
	SecondsPerRep int64 `mapstructure:"seconds_per_rep"` // linear growth with reps
	MaxSeconds    int64 `mapstructure:"max_seconds"`     // cap, 0 = uncapped
}

// TargetConfig defines one app or content category subject to blocking
type TargetConfig struct {
	Identifier string `mapstructure:"identifier"` // opaque platform identifier, e.g. bundle ID
	Name       string `mapstructure:"name"`
	SystemApp  bool   `mapstructure:"system_app"`
}

// StorageConfig defines storage backend settings
type StorageConfig struct {
	Type          string      `mapstructure:"type"` // "bolt" or "redis"
	Path          string      `mapstructure:"path"`
	RetentionDays int         `mapstructure:"retention_days"` // daily records older than this are pruned
	Redis         RedisConfig `mapstructure:"redis"`
}

// RedisConfig defines Redis connection settings
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	DialTimeout  string `mapstructure:"dial_timeout"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EnforceConfig defines how blocked/accessible target lists reach the host platform
type EnforceConfig struct {
	Mode    string `mapstructure:"mode"`    // "log" or "exec"
	Command string `mapstructure:"command"` // hook invoked with blocked identifiers when mode is "exec"
	Timeout string `mapstructure:"timeout"` // hook execution timeout
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetEnvPrefix("SWEATLOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.api_port", 7600)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.bind_address", "127.0.0.1")

	// Engine defaults
	v.SetDefault("engine.grace_period", "30s")
	v.SetDefault("engine.tick_interval", "1s")

	// Plan defaults
	v.SetDefault("plan.tier", "free")

	// Reward defaults
	v.SetDefault("rewards.exercises.pushup.base_seconds", 60)
	v.SetDefault("rewards.exercises.pushup.seconds_per_rep", 30)
	v.SetDefault("rewards.exercises.pushup.max_seconds", 1800)
	v.SetDefault("rewards.exercises.squat.base_seconds", 60)
	v.SetDefault("rewards.exercises.squat.seconds_per_rep", 20)
	v.SetDefault("rewards.exercises.squat.max_seconds", 1800)
	v.SetDefault("rewards.exercises.situp.base_seconds", 60)
	v.SetDefault("rewards.exercises.situp.seconds_per_rep", 20)
	v.SetDefault("rewards.exercises.situp.max_seconds", 1800)
	v.SetDefault("rewards.exercises.burpee.base_seconds", 90)
	v.SetDefault("rewards.exercises.burpee.seconds_per_rep", 45)
	v.SetDefault("rewards.exercises.burpee.max_seconds", 2700)
	v.SetDefault("rewards.modes.standard", 1.0)
	v.SetDefault("rewards.modes.challenge", 1.5)

	// Storage defaults
	v.SetDefault("storage.type", "bolt")
	v.SetDefault("storage.path", "/var/lib/sweatlock/sweatlock.bolt")
	v.SetDefault("storage.retention_days", 90)
	v.SetDefault("storage.redis.host", "localhost")
	v.SetDefault("storage.redis.port", 6379)
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.pool_size", 10)
	v.SetDefault("storage.redis.min_idle_conns", 5)
	v.SetDefault("storage.redis.dial_timeout", "5s")
	v.SetDefault("storage.redis.read_timeout", "3s")
	v.SetDefault("storage.redis.write_timeout", "3s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Enforcement defaults
	v.SetDefault("enforcement.mode", "log")
	v.SetDefault("enforcement.timeout", "10s")
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.Server.APIPort <= 0 || cfg.Server.APIPort > 65535 {
		return fmt.Errorf("invalid API port: %d", cfg.Server.APIPort)
	}
	if cfg.Server.MetricsPort <= 0 || cfg.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.Server.MetricsPort)
	}

	grace, err := time.ParseDuration(cfg.Engine.GracePeriod)
	if err != nil {
		return fmt.Errorf("invalid grace_period: %w", err)
	}
	if grace <= 0 {
		return fmt.Errorf("grace_period must be positive, got %s", cfg.Engine.GracePeriod)
	}

	tick, err := time.ParseDuration(cfg.Engine.TickInterval)
	if err != nil {
		return fmt.Errorf("invalid tick_interval: %w", err)
	}
	if tick <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", cfg.Engine.TickInterval)
	}

	switch cfg.Plan.Tier {
	case "free", "standard", "advanced":
	default:
		return fmt.Errorf("invalid plan tier: %q (must be free, standard, or advanced)", cfg.Plan.Tier)
	}

	for name, curve := range cfg.Rewards.Exercises {
		if curve.BaseSeconds < 0 || curve.SecondsPerRep < 0 || curve.MaxSeconds < 0 {
			return fmt.Errorf("reward curve for %q has negative values", name)
		}
	}
	for mode, multiplier := range cfg.Rewards.Modes {
		if multiplier <= 0 {
			return fmt.Errorf("mode multiplier for %q must be positive, got %f", mode, multiplier)
		}
	}

	seen := make(map[string]bool)
	for i, target := range cfg.Targets {
		if target.Identifier == "" {
			return fmt.Errorf("target %d has empty identifier", i)
		}
		if seen[target.Identifier] {
			return fmt.Errorf("duplicate target identifier: %s", target.Identifier)
		}
		seen[target.Identifier] = true
	}

	switch cfg.Storage.Type {
	case "bolt":
		if cfg.Storage.Path == "" {
			return fmt.Errorf("storage path is required for bolt storage")
		}
		storageDir := filepath.Dir(cfg.Storage.Path)
		if err := os.MkdirAll(storageDir, 0755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
	case "redis":
		if cfg.Storage.Redis.Host == "" {
			return fmt.Errorf("redis host is required for redis storage")
		}
	default:
		return fmt.Errorf("invalid storage type: %q (must be bolt or redis)", cfg.Storage.Type)
	}

	switch cfg.Enforce.Mode {
	case "log":
	case "exec":
		if cfg.Enforce.Command == "" {
			return fmt.Errorf("enforcement command is required for exec mode")
		}
	default:
		return fmt.Errorf("invalid enforcement mode: %q (must be log or exec)", cfg.Enforce.Mode)
	}

	return nil
}
