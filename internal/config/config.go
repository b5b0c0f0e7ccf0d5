// Package config loads the rojobs runtime configuration: built-in
// defaults, an optional rojobs.yaml, and ROJOBS_-prefixed environment
// overrides, in ascending precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Defaults.
const (
	DefaultRegion            = "us-east-1"
	DefaultDefinitionsBucket = "gnss-ro-processing-definitions"
	DefaultJobsPerFile       = 3000
	DefaultLogLevel          = "info"
)

// Config is the resolved runtime configuration.
type Config struct {
	// Region is the AWS region of the archive buckets.
	Region string `mapstructure:"region"`

	// DefinitionsBucket receives job-definition documents and batch
	// manifests when no explicit destination is given.
	DefinitionsBucket string `mapstructure:"definitions_bucket"`

	// JobsPerFile caps the files per batch manifest.
	JobsPerFile int `mapstructure:"jobs_per_file"`

	// LogLevel names the zap level for command diagnostics.
	LogLevel string `mapstructure:"log_level"`
}

// Load resolves the configuration. A missing config file is fine;
// a malformed one is not.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("region", DefaultRegion)
	v.SetDefault("definitions_bucket", DefaultDefinitionsBucket)
	v.SetDefault("jobs_per_file", DefaultJobsPerFile)
	v.SetDefault("log_level", DefaultLogLevel)

	v.SetConfigName("rojobs")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.rojobs")

	v.SetEnvPrefix("ROJOBS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.JobsPerFile <= 0 {
		return nil, fmt.Errorf("jobs_per_file must be positive, got %d", cfg.JobsPerFile)
	}
	return &cfg, nil
}
