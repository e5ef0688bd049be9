package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config but uses strings for durations to keep files friendly.
// The same keys are used for TOML and YAML. MaxRetries is a pointer so an
// explicit zero can be told apart from an absent key.
type FileConfig struct {
	MaxRecordSizeMB   float64 `toml:"max_record_size_in_mb" yaml:"max_record_size_in_mb"`
	MaxBatchSizeMB    float64 `toml:"max_batch_size_in_mb" yaml:"max_batch_size_in_mb"`
	MaxRecordsInBatch int     `toml:"max_records_in_batch" yaml:"max_records_in_batch"`
	Input             string  `toml:"input" yaml:"input"`
	Format            string  `toml:"format" yaml:"format"`
	Sink              string  `toml:"sink" yaml:"sink"`
	Output            string  `toml:"output" yaml:"output"`
	ServiceURL        string  `toml:"service_url" yaml:"service_url"`
	AuthKey           string  `toml:"auth_key" yaml:"auth_key"`
	AMQPURL           string  `toml:"amqp_url" yaml:"amqp_url"`
	AMQPQueue         string  `toml:"amqp_queue" yaml:"amqp_queue"`
	DeadLetter        string  `toml:"dlq" yaml:"dlq"`
	HTTPTimeout       string  `toml:"http_timeout" yaml:"http_timeout"`
	MaxRetries        *int    `toml:"max_retries" yaml:"max_retries"`
	Watch             string  `toml:"watch" yaml:"watch"`
	WatchPattern      string  `toml:"watch_pattern" yaml:"watch_pattern"`
	Debounce          string  `toml:"debounce" yaml:"debounce"`
	LogLevel          string  `toml:"log_level" yaml:"log_level"`
}

// LoadFileConfig reads a config file. Files ending in .yaml or .yml are parsed
// as YAML, anything else as TOML.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		if err := toml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse toml: %w", err)
		}
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.recbatch/config.toml, or "" if the home
// directory cannot be determined.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".recbatch", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setFloat("max-record-size-mb", fc.MaxRecordSizeMB, &cfg.Policy.MaxRecordSizeMB)
	s.setFloat("max-batch-size-mb", fc.MaxBatchSizeMB, &cfg.Policy.MaxBatchSizeMB)
	s.setInt("max-records-in-batch", fc.MaxRecordsInBatch, &cfg.Policy.MaxRecordsInBatch)

	s.setString("input", fc.Input, &cfg.Input)
	s.setString("format", fc.Format, &cfg.Format)
	s.setString("sink", fc.Sink, &cfg.Sink)
	s.setString("output", fc.Output, &cfg.Output)
	s.setString("service-url", fc.ServiceURL, &cfg.ServiceURL)
	s.setString("auth-key", fc.AuthKey, &cfg.AuthKey)
	s.setString("amqp-url", fc.AMQPURL, &cfg.AMQPURL)
	s.setString("amqp-queue", fc.AMQPQueue, &cfg.AMQPQueue)
	s.setString("dlq", fc.DeadLetter, &cfg.DeadLetter)
	s.setString("watch", fc.Watch, &cfg.Watch)
	s.setString("watch-pattern", fc.WatchPattern, &cfg.WatchPattern)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setIntPtr("max-retries", fc.MaxRetries, &cfg.MaxRetries)

	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("debounce", fc.Debounce, &cfg.Debounce); err != nil {
		return err
	}
	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
