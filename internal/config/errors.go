package config

import "errors"

// Validation errors returned by [AgentConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAdapterConfigs indicates invalid transport settings
	// (for example, missing remote endpoint address).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidStorageConfigs indicates invalid local storage settings
	// (for example, empty DSN or unsupported in-memory DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidReachabilityConfigs indicates invalid probe settings
	// (for example, missing probe URL).
	ErrInvalidReachabilityConfigs = errors.New("invalid reachability configuration")
	// ErrInvalidSchedulerConfigs indicates invalid background job settings
	// (for example, missing redis address).
	ErrInvalidSchedulerConfigs = errors.New("invalid scheduler configuration")
)
