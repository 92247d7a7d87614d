package config

import "go.uber.org/fx"

// NewLoggingConfigProvider extracts *LoggingConfig from *Config.
func NewLoggingConfigProvider(cfg *Config) *LoggingConfig {
	return &cfg.Surfin.System.Logging
}

// Module provides the loaded configuration and its sub-sections to Fx.
var Module = fx.Options(
	fx.Provide(NewConfigProvider),
	fx.Provide(NewLoggingConfigProvider),
	fx.Provide(func(cfg *Config) *MetricsConfig { return &cfg.Surfin.Metrics }),
	fx.Provide(func(cfg *Config) *TracingConfig { return &cfg.Surfin.Tracing }),
)
