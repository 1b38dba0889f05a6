package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a remote sync endpoint address in format [host]:[port] or URL
//	-d local database DSN (SQLite path)
//	-c/-config json file path with configs
//	-idle-interval idle interval between syncs in minutes (clamped to [5,60])
//	-grace-period background disconnect grace period (e.g., "5m")
//	-request-timeout outbound request timeout (e.g., "30s", "1m")
//	-probe-url reachability probe URL
//	-redis-addr scheduler redis address
//	-scheduler-period periodic job recurrence (e.g., "30m")
//	-status-address local status endpoint address
func ParseFlags() *StructuredConfig {
	var adapterAddress string
	var databaseDSN string
	var jsonConfigPath string
	var idleIntervalMinutes int
	var gracePeriod time.Duration
	var requestTimeout time.Duration
	var probeURL string
	var redisAddr string
	var schedulerPeriod time.Duration
	var statusAddress string

	flag.StringVar(&adapterAddress, "a", "", "Remote sync endpoint address")
	flag.StringVar(&databaseDSN, "d", "", "Local database DSN")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.IntVar(&idleIntervalMinutes, "idle-interval", 0, "Idle interval between syncs in minutes")
	flag.DurationVar(&gracePeriod, "grace-period", 0, "Background disconnect grace period (e.g., 5m)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Outbound request timeout (e.g., 30s, 1m)")
	flag.StringVar(&probeURL, "probe-url", "", "Reachability probe URL")
	flag.StringVar(&redisAddr, "redis-addr", "", "Scheduler redis address")
	flag.DurationVar(&schedulerPeriod, "scheduler-period", 0, "Periodic job recurrence (e.g., 30m)")
	flag.StringVar(&statusAddress, "status-address", "", "Local status endpoint address")

	flag.Parse()

	return &StructuredConfig{
		Engine: Engine{
			IdleIntervalMinutes: idleIntervalMinutes,
			GracePeriod:         gracePeriod,
		},
		Storage: Storage{
			DB: DB{DSN: databaseDSN},
		},
		Adapter: Adapter{
			HTTPAddress:    adapterAddress,
			RequestTimeout: requestTimeout,
		},
		Reachability: Reachability{
			ProbeURL: probeURL,
		},
		Scheduler: Scheduler{
			RedisAddr: redisAddr,
			Period:    schedulerPeriod,
		},
		Status: Status{
			Address: statusAddress,
		},
		JSONFilePath: jsonConfigPath,
	}
}
