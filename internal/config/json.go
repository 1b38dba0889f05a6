package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	Engine struct {
		IdleIntervalMinutes int      `json:"idle_interval_minutes"`
		GracePeriod         Duration `json:"grace_period"`
		SettleDelay         Duration `json:"settle_delay"`
		ConnectInBackground *bool    `json:"connect_in_background"`
	} `json:"engine,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Adapter struct {
		HTTPAddress       string   `json:"http_address"`
		RequestTimeout    Duration `json:"request_timeout"`
		HeartbeatInterval Duration `json:"heartbeat_interval"`
	} `json:"adapter,omitempty"`

	Reachability struct {
		ProbeURL      string   `json:"probe_url"`
		ProbeInterval Duration `json:"probe_interval"`
		ProbeTimeout  Duration `json:"probe_timeout"`
	} `json:"reachability,omitempty"`

	Scheduler struct {
		RedisAddr string   `json:"redis_addr"`
		Period    Duration `json:"period"`
	} `json:"scheduler,omitempty"`

	Status struct {
		Address string `json:"address"`
	} `json:"status,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Engine: Engine{
			IdleIntervalMinutes: jsonCfg.Engine.IdleIntervalMinutes,
			GracePeriod:         time.Duration(jsonCfg.Engine.GracePeriod),
			SettleDelay:         time.Duration(jsonCfg.Engine.SettleDelay),
			ConnectInBackground: jsonCfg.Engine.ConnectInBackground,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		Adapter: Adapter{
			HTTPAddress:       jsonCfg.Adapter.HTTPAddress,
			RequestTimeout:    time.Duration(jsonCfg.Adapter.RequestTimeout),
			HeartbeatInterval: time.Duration(jsonCfg.Adapter.HeartbeatInterval),
		},
		Reachability: Reachability{
			ProbeURL:      jsonCfg.Reachability.ProbeURL,
			ProbeInterval: time.Duration(jsonCfg.Reachability.ProbeInterval),
			ProbeTimeout:  time.Duration(jsonCfg.Reachability.ProbeTimeout),
		},
		Scheduler: Scheduler{
			RedisAddr: jsonCfg.Scheduler.RedisAddr,
			Period:    time.Duration(jsonCfg.Scheduler.Period),
		},
		Status: Status{
			Address: jsonCfg.Status.Address,
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
