// Package config manages accelbridge configuration: TOML file, environment
// overrides, defaults, and hot-reload via a file watcher.
package config

import (
	"time"

	"github.com/teranos/accelbridge/bridge"
)

// Config is the resolved accelbridge configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Backend BackendConfig `mapstructure:"backend"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Memory  MemoryConfig  `mapstructure:"memory"`
	Policy  PolicyConfig  `mapstructure:"policy"`
	Monitor MonitorConfig `mapstructure:"monitor"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// BackendConfig controls native backend discovery.
type BackendConfig struct {
	// Paths are probed in order before the built-in candidates.
	Paths []string `mapstructure:"paths"`
	// VersionConstraint is a semver range the module must satisfy.
	VersionConstraint string `mapstructure:"version_constraint"`
}

// CacheConfig bounds the freshness of memoized facade reads.
type CacheConfig struct {
	GPUInfoTTLSeconds int `mapstructure:"gpu_info_ttl_seconds"`
	StatusTTLSeconds  int `mapstructure:"status_ttl_seconds"`
}

// GPUInfoTTL returns the GPU-info cache TTL as a duration.
func (c CacheConfig) GPUInfoTTL() time.Duration {
	return time.Duration(c.GPUInfoTTLSeconds) * time.Second
}

// StatusTTL returns the status cache TTL as a duration.
func (c CacheConfig) StatusTTL() time.Duration {
	return time.Duration(c.StatusTTLSeconds) * time.Second
}

// MemoryConfig controls the memory endpoint's self-throttle.
type MemoryConfig struct {
	ThrottleIntervalMS int `mapstructure:"throttle_interval_ms"`
}

// ThrottleInterval returns the minimum inter-request interval.
func (m MemoryConfig) ThrottleInterval() time.Duration {
	return time.Duration(m.ThrottleIntervalMS) * time.Millisecond
}

// PolicyConfig holds the optimization policy pressure cut-offs (percent).
type PolicyConfig struct {
	Low      float64 `mapstructure:"low"`
	Medium   float64 `mapstructure:"medium"`
	High     float64 `mapstructure:"high"`
	Critical float64 `mapstructure:"critical"`
}

// Thresholds converts the config shape into the policy's own type.
func (p PolicyConfig) Thresholds() bridge.PolicyThresholds {
	return bridge.PolicyThresholds{
		Low:      p.Low,
		Medium:   p.Medium,
		High:     p.High,
		Critical: p.Critical,
	}
}

// MonitorConfig controls the optional auto-optimize loop.
type MonitorConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalSeconds int  `mapstructure:"interval_seconds"`
}

// Interval returns the sampling period.
func (m MonitorConfig) Interval() time.Duration {
	return time.Duration(m.IntervalSeconds) * time.Second
}
