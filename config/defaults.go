package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// HTTP surface defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8719)

	// Backend discovery defaults; built-in candidate paths are appended by
	// the locator, so the config list is empty out of the box
	v.SetDefault("backend.paths", []string{})
	v.SetDefault("backend.version_constraint", ">= 0.1.0")

	// Cache freshness bounds per category
	v.SetDefault("cache.gpu_info_ttl_seconds", 60)
	v.SetDefault("cache.status_ttl_seconds", 10)

	// Memory endpoint self-throttle window
	v.SetDefault("memory.throttle_interval_ms", 3000)

	// Optimization policy pressure cut-offs (percent used)
	v.SetDefault("policy.low", 40.0)
	v.SetDefault("policy.medium", 60.0)
	v.SetDefault("policy.high", 75.0)
	v.SetDefault("policy.critical", 90.0)

	// Auto-optimize monitor is opt-in
	v.SetDefault("monitor.enabled", false)
	v.SetDefault("monitor.interval_seconds", 30)
}
