package scheduler

import (
	"time"

	"github.com/kwachapos/fiscalgate/internal/config"
)

// Config controls sweep intervals and batch sizes.
type Config struct {
	RunInterval time.Duration
	BatchSize   int
	JobTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunInterval: time.Minute,
		BatchSize:   50,
		JobTimeout:  30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}

// ProvideConfig derives scheduler settings from application config.
func ProvideConfig(cfg config.Config) Config {
	return Config{
		RunInterval: cfg.ResubmitInterval,
		BatchSize:   cfg.ResubmitBatchSize,
		JobTimeout:  cfg.ResubmitJobTimeout,
	}.withDefaults()
}
