// Package config loads the gateway's YAML configuration and applies
// environment overrides. Every setting has a workable default; an
// empty path yields a config driven by defaults and environment alone.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
		// Diagnostics includes upstream error detail in responses.
		Diagnostics bool `yaml:"diagnostics"`
	} `yaml:"server"`
	Redis struct {
		// Address empty means no remote tier: the limiter and cache
		// run on their in-process fallbacks only.
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Backend struct {
		DataURL string `yaml:"data_url"`
		AuthURL string `yaml:"auth_url"`
		APIKey  string `yaml:"api_key"`
		Timeout string `yaml:"timeout"` // Go duration, e.g. "10s"
	} `yaml:"backend"`
	Sweep struct {
		Interval string `yaml:"interval"` // local-store maintenance cadence
	} `yaml:"sweep"`
}

// Load reads the file at path (skipped when path is empty), applies
// environment overrides, and fills in defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Backend.Timeout == "" {
		cfg.Backend.Timeout = "10s"
	}
	if cfg.Sweep.Interval == "" {
		cfg.Sweep.Interval = "60s"
	}
	if _, err := time.ParseDuration(cfg.Backend.Timeout); err != nil {
		return nil, fmt.Errorf("invalid backend timeout: %w", err)
	}
	if _, err := time.ParseDuration(cfg.Sweep.Interval); err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GATEWAY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GATEWAY_DIAGNOSTICS"); v != "" {
		cfg.Server.Diagnostics = v == "1" || v == "true"
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Address = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("BACKEND_DATA_URL"); v != "" {
		cfg.Backend.DataURL = v
	}
	if v := os.Getenv("BACKEND_AUTH_URL"); v != "" {
		cfg.Backend.AuthURL = v
	}
	if v := os.Getenv("BACKEND_API_KEY"); v != "" {
		cfg.Backend.APIKey = v
	}
}

// BackendTimeout returns the parsed per-call backend timeout.
func (c *Config) BackendTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Backend.Timeout)
	return d
}

// SweepInterval returns the parsed local-store maintenance cadence.
func (c *Config) SweepInterval() time.Duration {
	d, _ := time.ParseDuration(c.Sweep.Interval)
	return d
}
