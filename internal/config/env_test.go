// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseEnv_PopulatesStructuredConfig verifies the env tag wiring of every
// configuration group.
func TestParseEnv_PopulatesStructuredConfig(t *testing.T) {
	t.Setenv("ENGINE_IDLE_INTERVAL_MINUTES", "25")
	t.Setenv("ENGINE_GRACE_PERIOD", "4m")
	t.Setenv("ENGINE_CONNECT_IN_BACKGROUND", "false")
	t.Setenv("STORAGE_DB_DATABASE_URI", "fieldsync.db")
	t.Setenv("ADAPTER_ADDRESS", "sync.example.com:443")
	t.Setenv("ADAPTER_REQUEST_TIMEOUT", "1m")
	t.Setenv("REACHABILITY_PROBE_URL", "https://probe.example.com/generate_204")
	t.Setenv("SCHEDULER_REDIS_ADDR", "127.0.0.1:6379")
	t.Setenv("STATUS_ADDRESS", "127.0.0.1:7500")
	t.Setenv("CONFIG", "/etc/fieldsync/config.json")

	var cfg StructuredConfig
	require.NoError(t, parseEnv(&cfg))

	assert.Equal(t, 25, cfg.Engine.IdleIntervalMinutes)
	assert.Equal(t, 4*time.Minute, cfg.Engine.GracePeriod)
	require.NotNil(t, cfg.Engine.ConnectInBackground)
	assert.False(t, *cfg.Engine.ConnectInBackground)
	assert.Equal(t, "fieldsync.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "sync.example.com:443", cfg.Adapter.HTTPAddress)
	assert.Equal(t, time.Minute, cfg.Adapter.RequestTimeout)
	assert.Equal(t, "https://probe.example.com/generate_204", cfg.Reachability.ProbeURL)
	assert.Equal(t, "127.0.0.1:6379", cfg.Scheduler.RedisAddr)
	assert.Equal(t, "127.0.0.1:7500", cfg.Status.Address)
	assert.Equal(t, "/etc/fieldsync/config.json", cfg.JSONFilePath)
}

// TestParseEnv_UnsetLeavesZeroValues verifies that absent variables leave the
// struct untouched so later sources can fill the gaps.
func TestParseEnv_UnsetLeavesZeroValues(t *testing.T) {
	var cfg StructuredConfig
	require.NoError(t, parseEnv(&cfg))

	assert.Zero(t, cfg.Engine.IdleIntervalMinutes)
	assert.Nil(t, cfg.Engine.ConnectInBackground)
	assert.Empty(t, cfg.Storage.DB.DSN)
}

// TestParseEnv_InvalidValue verifies that an unparseable value surfaces as a
// wrapped error instead of a silent zero.
func TestParseEnv_InvalidValue(t *testing.T) {
	t.Setenv("ENGINE_GRACE_PERIOD", "whenever")

	var cfg StructuredConfig
	require.Error(t, parseEnv(&cfg))
}
