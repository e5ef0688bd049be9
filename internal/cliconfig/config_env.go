package cliconfig

import "os"

// EnvPrefix prefixes every environment variable recbatch reads.
const EnvPrefix = "RECBATCH_"

// ApplyEnvConfig applies RECBATCH_* environment variables to cfg. They
// override file config but not explicitly set flags.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)
	env := func(key string) string { return os.Getenv(EnvPrefix + key) }

	if err := s.setFloatFromString("max-record-size-mb", env("MAX_RECORD_SIZE_IN_MB"), &cfg.Policy.MaxRecordSizeMB); err != nil {
		return err
	}
	if err := s.setFloatFromString("max-batch-size-mb", env("MAX_BATCH_SIZE_IN_MB"), &cfg.Policy.MaxBatchSizeMB); err != nil {
		return err
	}
	if err := s.setIntFromString("max-records-in-batch", env("MAX_RECORDS_IN_BATCH"), &cfg.Policy.MaxRecordsInBatch); err != nil {
		return err
	}
	if err := s.setIntFromString("max-retries", env("MAX_RETRIES"), &cfg.MaxRetries); err != nil {
		return err
	}

	s.setString("input", env("INPUT"), &cfg.Input)
	s.setString("format", env("FORMAT"), &cfg.Format)
	s.setString("sink", env("SINK"), &cfg.Sink)
	s.setString("output", env("OUTPUT"), &cfg.Output)
	s.setString("service-url", env("SERVICE_URL"), &cfg.ServiceURL)
	s.setString("auth-key", env("AUTH_KEY"), &cfg.AuthKey)
	s.setString("amqp-url", env("AMQP_URL"), &cfg.AMQPURL)
	s.setString("amqp-queue", env("AMQP_QUEUE"), &cfg.AMQPQueue)
	s.setString("dlq", env("DLQ"), &cfg.DeadLetter)
	s.setString("watch", env("WATCH"), &cfg.Watch)
	s.setString("watch-pattern", env("WATCH_PATTERN"), &cfg.WatchPattern)
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("timeout", env("HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("debounce", env("DEBOUNCE"), &cfg.Debounce); err != nil {
		return err
	}
	return nil
}
