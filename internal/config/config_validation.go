// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "strings"

func (cfg *AgentConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Reachability.ProbeURL == "" {
		return ErrInvalidReachabilityConfigs
	}

	if cfg.Scheduler.RedisAddr == "" {
		return ErrInvalidSchedulerConfigs
	}

	return nil
}
