// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// Bounds for the idle interval between syncs. Values outside the range are
// clamped, not rejected, so a bad persisted setting can never brick the agent.
const (
	MinIdleInterval     = 5 * time.Minute
	MaxIdleInterval     = 60 * time.Minute
	DefaultIdleInterval = 10 * time.Minute
)

// DefaultGracePeriod is how long a live connection survives after the app
// leaves the foreground before the engine considers tearing it down.
const DefaultGracePeriod = 5 * time.Minute

// MinSchedulerPeriod is the floor the host imposes on the recurring
// background job. Requested periods below it are raised to the floor.
const MinSchedulerPeriod = 15 * time.Minute

// StructuredConfig is the top-level configuration container for the
// go-field-sync agent. It aggregates all sub-configurations and is populated
// by merging values from environment variables, command-line flags, and an
// optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Engine holds the sync-engine timing knobs: idle interval, grace
	// period, account settle delay, background-connect policy.
	Engine Engine `envPrefix:"ENGINE_"`

	// Storage holds configuration for the local persistence backend.
	Storage Storage `envPrefix:"STORAGE_"`

	// Adapter holds the remote endpoint address and timeouts used by the
	// HTTP transport.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Reachability holds the connectivity probe settings.
	Reachability Reachability `envPrefix:"REACHABILITY_"`

	// Scheduler holds the background job queue settings.
	Scheduler Scheduler `envPrefix:"SCHEDULER_"`

	// Status holds the local status endpoint settings.
	Status Status `envPrefix:"STATUS_"`

	// jsonFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Engine holds timing and policy settings for the connection lifecycle
// manager and the sync driver.
type Engine struct {
	// IdleIntervalMinutes is the maximum time between syncs even absent
	// known pending data, in minutes. Clamped into [5,60].
	// Env: ENGINE_IDLE_INTERVAL_MINUTES
	IdleIntervalMinutes int `env:"IDLE_INTERVAL_MINUTES"`

	// GracePeriod is the delay before a backgrounded app releases its live
	// connection (e.g. "5m").
	// Env: ENGINE_GRACE_PERIOD
	GracePeriod time.Duration `env:"GRACE_PERIOD"`

	// SettleDelay is the pause between disconnecting the previous account
	// and re-evaluating triggers for the new one (e.g. "2s").
	// Env: ENGINE_SETTLE_DELAY
	SettleDelay time.Duration `env:"SETTLE_DELAY"`

	// ConnectInBackground allows the idle-interval trigger to open a
	// connection while the app is backgrounded. Kept configurable because
	// the desirability of background wakeups depends on the fleet's data
	// plan; defaults to true (pure backstop behavior).
	// Env: ENGINE_CONNECT_IN_BACKGROUND
	ConnectInBackground *bool `env:"CONNECT_IN_BACKGROUND"`
}

// Storage groups the configuration for the local storage backend.
type Storage struct {
	// DB holds the local database connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the on-device SQLite database.
type DB struct {
	// DSN is the SQLite file path or connection string
	// (e.g. "file:fieldsync.db?_busy_timeout=5000").
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Adapter holds network settings used by the outbound transport layer.
type Adapter struct {
	// HTTPAddress is the remote sync endpoint base address,
	// in "host:port" or URL form.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the default timeout for outbound requests
	// (e.g. "30s", "1m").
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// HeartbeatInterval is how often the transport pings the server while
	// a live connection is held (e.g. "30s").
	// Env: ADAPTER_HEARTBEAT_INTERVAL
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL"`
}

// Reachability holds connectivity probe settings.
type Reachability struct {
	// ProbeURL is the validated-internet probe target. The probe counts as
	// reachable only when the endpoint answers with the expected status,
	// so captive portals report unavailable.
	// Env: REACHABILITY_PROBE_URL
	ProbeURL string `env:"PROBE_URL"`

	// ProbeInterval is how often the monitor re-checks connectivity
	// (e.g. "15s").
	// Env: REACHABILITY_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`

	// ProbeTimeout bounds a single probe request (e.g. "5s").
	// Env: REACHABILITY_PROBE_TIMEOUT
	ProbeTimeout time.Duration `env:"PROBE_TIMEOUT"`
}

// Scheduler holds settings for the OS-level recurring background job.
type Scheduler struct {
	// RedisAddr is the address of the redis instance backing the job queue.
	// Env: SCHEDULER_REDIS_ADDR
	RedisAddr string `env:"REDIS_ADDR"`

	// Period is the requested recurrence of the periodic sync-check job.
	// Raised to [MinSchedulerPeriod] when below the floor.
	// Env: SCHEDULER_PERIOD
	Period time.Duration `env:"PERIOD"`
}

// Status holds settings for the read-only local status endpoint the device
// UI shell polls.
type Status struct {
	// Address is the TCP address the status endpoint listens on. Should
	// stay on loopback.
	// Env: STATUS_ADDRESS
	Address string `env:"ADDRESS"`
}
