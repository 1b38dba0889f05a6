package config

import (
	"fmt"
	"time"
)

// AgentEngine holds the effective sync-engine timing settings after
// defaulting and clamping.
type AgentEngine struct {
	// IdleInterval is the maximum time between syncs even absent known
	// pending data. Always within [MinIdleInterval, MaxIdleInterval].
	IdleInterval time.Duration
	// GracePeriod is the background disconnect grace period.
	GracePeriod time.Duration
	// SettleDelay is the pause between account switch and re-evaluation.
	SettleDelay time.Duration
	// ConnectInBackground allows idle-triggered connects while the app is
	// backgrounded.
	ConnectInBackground bool
}

// AgentAdapter holds network settings used by the agent transport layer.
type AgentAdapter struct {
	// HTTPAddress is the remote sync endpoint used by the agent.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound requests.
	RequestTimeout time.Duration
	// HeartbeatInterval is the live-connection ping cadence.
	HeartbeatInterval time.Duration
}

// AgentDB contains local database connection settings for the agent.
type AgentDB struct {
	// DSN is the SQLite connection string used by the agent.
	DSN string
}

// AgentStorage groups agent storage backend settings.
type AgentStorage struct {
	// DB holds local database settings.
	DB AgentDB
}

// AgentReachability holds the effective connectivity probe settings.
type AgentReachability struct {
	ProbeURL      string
	ProbeInterval time.Duration
	ProbeTimeout  time.Duration
}

// AgentScheduler holds the effective background job settings.
type AgentScheduler struct {
	RedisAddr string
	// Period is the recurrence of the periodic sync-check job, already
	// raised to [MinSchedulerPeriod] when the requested value was below it.
	Period time.Duration
}

// AgentStatus holds the local status endpoint settings.
type AgentStatus struct {
	Address string
}

// AgentConfig is the top-level agent configuration assembled from
// [StructuredConfig].
type AgentConfig struct {
	// Engine contains sync-engine timing and policy settings.
	Engine AgentEngine
	// Adapter contains transport addresses and timeouts.
	Adapter AgentAdapter
	// Storage contains local storage settings.
	Storage AgentStorage
	// Reachability contains connectivity probe settings.
	Reachability AgentReachability
	// Scheduler contains background job settings.
	Scheduler AgentScheduler
	// Status contains local status endpoint settings.
	Status AgentStatus
}

// GetAgentConfig builds and validates an agent config view from the merged
// structured configuration.
//
// It merges env, flags and the optional JSON file via the builder chain,
// maps only the fields relevant to the agent runtime, applies defaults and
// clamps bounded values, and validates the resulting [AgentConfig].
func GetAgentConfig() (*AgentConfig, error) {
	structured, err := newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
	if err != nil {
		return nil, fmt.Errorf("error building agent config: %w", err)
	}

	cfg := mapAgentConfig(structured)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid agent config: %w", err)
	}

	return cfg, nil
}

func mapAgentConfig(structured *StructuredConfig) *AgentConfig {
	connectInBackground := true
	if structured.Engine.ConnectInBackground != nil {
		connectInBackground = *structured.Engine.ConnectInBackground
	}

	cfg := &AgentConfig{
		Engine: AgentEngine{
			IdleInterval:        ClampIdleInterval(time.Duration(structured.Engine.IdleIntervalMinutes) * time.Minute),
			GracePeriod:         structured.Engine.GracePeriod,
			SettleDelay:         structured.Engine.SettleDelay,
			ConnectInBackground: connectInBackground,
		},
		Adapter: AgentAdapter{
			HTTPAddress:       structured.Adapter.HTTPAddress,
			RequestTimeout:    structured.Adapter.RequestTimeout,
			HeartbeatInterval: structured.Adapter.HeartbeatInterval,
		},
		Storage: AgentStorage{
			DB: AgentDB{DSN: structured.Storage.DB.DSN},
		},
		Reachability: AgentReachability{
			ProbeURL:      structured.Reachability.ProbeURL,
			ProbeInterval: structured.Reachability.ProbeInterval,
			ProbeTimeout:  structured.Reachability.ProbeTimeout,
		},
		Scheduler: AgentScheduler{
			RedisAddr: structured.Scheduler.RedisAddr,
			Period:    structured.Scheduler.Period,
		},
		Status: AgentStatus{
			Address: structured.Status.Address,
		},
	}

	applyAgentDefaults(cfg)

	return cfg
}

func applyAgentDefaults(cfg *AgentConfig) {
	if cfg.Engine.GracePeriod <= 0 {
		cfg.Engine.GracePeriod = DefaultGracePeriod
	}
	if cfg.Engine.SettleDelay <= 0 {
		cfg.Engine.SettleDelay = 2 * time.Second
	}
	if cfg.Adapter.RequestTimeout <= 0 {
		cfg.Adapter.RequestTimeout = 30 * time.Second
	}
	if cfg.Adapter.HeartbeatInterval <= 0 {
		cfg.Adapter.HeartbeatInterval = 30 * time.Second
	}
	if cfg.Reachability.ProbeInterval <= 0 {
		cfg.Reachability.ProbeInterval = 15 * time.Second
	}
	if cfg.Reachability.ProbeTimeout <= 0 {
		cfg.Reachability.ProbeTimeout = 5 * time.Second
	}
	if cfg.Scheduler.Period < MinSchedulerPeriod {
		cfg.Scheduler.Period = MinSchedulerPeriod
	}
	if cfg.Status.Address == "" {
		cfg.Status.Address = "127.0.0.1:7411"
	}
}

// ClampIdleInterval forces interval into [MinIdleInterval, MaxIdleInterval].
// A zero or negative interval means "not set" and yields the default.
func ClampIdleInterval(interval time.Duration) time.Duration {
	if interval <= 0 {
		return DefaultIdleInterval
	}
	if interval < MinIdleInterval {
		return MinIdleInterval
	}
	if interval > MaxIdleInterval {
		return MaxIdleInterval
	}
	return interval
}
