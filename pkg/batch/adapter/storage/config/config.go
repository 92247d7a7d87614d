// Package config holds the settings for a named storage connection.
package config

// StorageConfig holds configuration for a single storage connection.
type StorageConfig struct {
	Type            string `yaml:"type"`             // "local" or "gcs".
	BucketName      string `yaml:"bucket_name"`      // Default bucket when an operation passes "".
	CredentialsFile string `yaml:"credentials_file"` // Service account key for GCS; empty uses ADC.
	BaseDir         string `yaml:"base_dir"`         // Root directory for local storage.
	Endpoint        string `yaml:"endpoint"`         // Overrides the GCS endpoint (emulators).
}
