package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── ClampIdleInterval ─────────────────────────────────────────────────────────

func TestClampIdleInterval(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		want     time.Duration
	}{
		{name: "zero means not set", interval: 0, want: DefaultIdleInterval},
		{name: "negative means not set", interval: -time.Minute, want: DefaultIdleInterval},
		{name: "below floor", interval: time.Minute, want: MinIdleInterval},
		{name: "at floor", interval: MinIdleInterval, want: MinIdleInterval},
		{name: "in range", interval: 30 * time.Minute, want: 30 * time.Minute},
		{name: "at ceiling", interval: MaxIdleInterval, want: MaxIdleInterval},
		{name: "above ceiling", interval: 5 * time.Hour, want: MaxIdleInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampIdleInterval(tt.interval))
		})
	}
}

// ── mapAgentConfig ────────────────────────────────────────────────────────────

// TestMapAgentConfig_Defaults verifies the defaults applied to an otherwise
// empty structured config.
func TestMapAgentConfig_Defaults(t *testing.T) {
	cfg := mapAgentConfig(&StructuredConfig{})

	assert.Equal(t, DefaultIdleInterval, cfg.Engine.IdleInterval)
	assert.Equal(t, DefaultGracePeriod, cfg.Engine.GracePeriod)
	assert.Equal(t, 2*time.Second, cfg.Engine.SettleDelay)
	assert.True(t, cfg.Engine.ConnectInBackground)
	assert.Equal(t, 30*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, 30*time.Second, cfg.Adapter.HeartbeatInterval)
	assert.Equal(t, 15*time.Second, cfg.Reachability.ProbeInterval)
	assert.Equal(t, 5*time.Second, cfg.Reachability.ProbeTimeout)
	assert.Equal(t, MinSchedulerPeriod, cfg.Scheduler.Period)
	assert.Equal(t, "127.0.0.1:7411", cfg.Status.Address)
}

// TestMapAgentConfig_IdleIntervalClamped verifies that the minutes knob goes
// through the clamp on the way in.
func TestMapAgentConfig_IdleIntervalClamped(t *testing.T) {
	cfg := mapAgentConfig(&StructuredConfig{
		Engine: Engine{IdleIntervalMinutes: 2},
	})
	assert.Equal(t, MinIdleInterval, cfg.Engine.IdleInterval)

	cfg = mapAgentConfig(&StructuredConfig{
		Engine: Engine{IdleIntervalMinutes: 600},
	})
	assert.Equal(t, MaxIdleInterval, cfg.Engine.IdleInterval)
}

// TestMapAgentConfig_ConnectInBackgroundExplicitFalse verifies the tri-state
// pointer: explicit false survives, absence defaults to true.
func TestMapAgentConfig_ConnectInBackgroundExplicitFalse(t *testing.T) {
	off := false
	cfg := mapAgentConfig(&StructuredConfig{
		Engine: Engine{ConnectInBackground: &off},
	})
	assert.False(t, cfg.Engine.ConnectInBackground)
}

// TestMapAgentConfig_SchedulerPeriodFloor verifies that a too-frequent
// requested period is raised to the floor rather than rejected.
func TestMapAgentConfig_SchedulerPeriodFloor(t *testing.T) {
	cfg := mapAgentConfig(&StructuredConfig{
		Scheduler: Scheduler{Period: time.Minute},
	})
	assert.Equal(t, MinSchedulerPeriod, cfg.Scheduler.Period)

	cfg = mapAgentConfig(&StructuredConfig{
		Scheduler: Scheduler{Period: time.Hour},
	})
	assert.Equal(t, time.Hour, cfg.Scheduler.Period)
}

// ── validate ──────────────────────────────────────────────────────────────────

func validAgentConfig() *AgentConfig {
	return &AgentConfig{
		Storage:      AgentStorage{DB: AgentDB{DSN: "fieldsync.db"}},
		Adapter:      AgentAdapter{HTTPAddress: "sync.example.com:443"},
		Reachability: AgentReachability{ProbeURL: "https://probe.example.com/generate_204"},
		Scheduler:    AgentScheduler{RedisAddr: "127.0.0.1:6379"},
	}
}

func TestAgentConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *AgentConfig)
		wantErr error
	}{
		{name: "valid", mutate: func(*AgentConfig) {}},
		{
			name:    "empty dsn",
			mutate:  func(cfg *AgentConfig) { cfg.Storage.DB.DSN = "" },
			wantErr: ErrInvalidStorageConfigs,
		},
		{
			name:    "in-memory dsn",
			mutate:  func(cfg *AgentConfig) { cfg.Storage.DB.DSN = "file::memory:?cache=shared" },
			wantErr: ErrInvalidStorageConfigs,
		},
		{
			name:    "missing adapter address",
			mutate:  func(cfg *AgentConfig) { cfg.Adapter.HTTPAddress = "" },
			wantErr: ErrInvalidAdapterConfigs,
		},
		{
			name:    "missing probe url",
			mutate:  func(cfg *AgentConfig) { cfg.Reachability.ProbeURL = "" },
			wantErr: ErrInvalidReachabilityConfigs,
		},
		{
			name:    "missing redis addr",
			mutate:  func(cfg *AgentConfig) { cfg.Scheduler.RedisAddr = "" },
			wantErr: ErrInvalidSchedulerConfigs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAgentConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
