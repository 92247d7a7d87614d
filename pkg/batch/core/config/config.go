// Package config provides the framework configuration structures and the loader
// that fills them from embedded YAML, a .env file and environment variables.
package config

// EmbeddedConfig holds the content of the configuration file, typically passed from main.go.
type EmbeddedConfig []byte

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level ("DEBUG", "INFO", "WARN", "ERROR").
	Level string `yaml:"level"`
	// Format selects the encoder, "console" or "json".
	Format string `yaml:"format"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	// Timezone is the application timezone (e.g., "UTC", "Asia/Seoul").
	Timezone string        `yaml:"timezone"`
	Logging  LoggingConfig `yaml:"logging"`
}

// BatchConfig holds configuration specific to the batch engine.
type BatchConfig struct {
	// JobName is the name of the job launched by the application.
	JobName string `yaml:"job_name"`
	// StopOnStepFailure ends the job at the first failed step.
	StopOnStepFailure bool `yaml:"stop_on_step_failure"`
}

// JobRepositoryConfig selects where execution history is kept.
type JobRepositoryConfig struct {
	// Type is "inmemory" or "sql".
	Type string `yaml:"type"`
	// DBRef names the entry under surfin.database used when Type is "sql".
	DBRef string `yaml:"db_ref"`
	// MigrationTable is the golang-migrate bookkeeping table.
	MigrationTable string `yaml:"migration_table"`
}

// InfrastructureConfig holds logical dependency settings for infrastructure components.
type InfrastructureConfig struct {
	JobRepository JobRepositoryConfig `yaml:"job_repository"`
}

// MetricsConfig controls the Prometheus recorder.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	// TextfilePath, when set, receives the registry in text exposition format at job end.
	TextfilePath string `yaml:"textfile_path"`
	Namespace    string `yaml:"namespace"`
}

// TracingConfig controls the OpenTelemetry tracer.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
	// Exporter is "otlphttp", "otlpgrpc" or "none". With "none" spans are kept in-process only.
	Exporter    string `yaml:"exporter"`
	Endpoint    string `yaml:"endpoint"`
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`
}

// SurfinConfig holds all configuration under the "surfin" top-level key.
type SurfinConfig struct {
	Batch          BatchConfig          `yaml:"batch"`
	System         SystemConfig         `yaml:"system"`
	Infrastructure InfrastructureConfig `yaml:"infrastructure"`
	Metrics        MetricsConfig        `yaml:"metrics"`
	Tracing        TracingConfig        `yaml:"tracing"`
	// AdaptorConfigs holds named database connection settings.
	AdaptorConfigs map[string]interface{} `yaml:"database"`
	// StorageConfigs holds named storage adapter settings.
	StorageConfigs map[string]interface{} `yaml:"storage"`
}

// Config is the root structure for the entire application configuration.
type Config struct {
	Surfin SurfinConfig `yaml:"surfin"`
	// Application holds the application's own section, decoded by the application.
	Application map[string]interface{} `yaml:"application"`
	// EmbeddedConfig holds the raw bytes the configuration was loaded from.
	EmbeddedConfig EmbeddedConfig `yaml:"-"`
}

// NewConfig returns a new instance of Config with default values.
func NewConfig() *Config {
	return &Config{
		Surfin: SurfinConfig{
			System: SystemConfig{
				Timezone: "UTC",
				Logging:  LoggingConfig{Level: "INFO", Format: "console"},
			},
			Batch: BatchConfig{
				StopOnStepFailure: true,
			},
			Infrastructure: InfrastructureConfig{
				JobRepository: JobRepositoryConfig{
					Type:           "inmemory",
					DBRef:          "metadata",
					MigrationTable: "schema_migrations",
				},
			},
			Metrics:        MetricsConfig{Namespace: "surfin"},
			Tracing:        TracingConfig{Exporter: "none", ServiceName: "surfin-energy"},
			AdaptorConfigs: map[string]interface{}{},
			StorageConfigs: map[string]interface{}{},
		},
		Application: map[string]interface{}{},
	}
}
