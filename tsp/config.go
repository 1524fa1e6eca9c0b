package tsp

import (
	"errors"
	"time"

	"github.com/instrlab/go-tsp/logger"
	"github.com/instrlab/go-tsp/tspcmd"
)

// Default configuration values.
const (
	// DefaultQueryTimeout is the per-query transport read timeout.
	DefaultQueryTimeout = 2 * time.Second

	// DefaultPollInterval is the delay between sweep status polls.
	DefaultPollInterval = 20 * time.Millisecond

	// DefaultSweepTimeout of zero polls the sweep status without an overall
	// bound, matching the instrument's own behavior of running the trigger
	// model to completion.
	DefaultSweepTimeout = 0 * time.Second
)

// Config holds configuration for an instrument handle.
type Config struct {
	commands     CommandSet
	logger       logger.Logger
	queryTimeout time.Duration
	pollInterval time.Duration
	sweepTimeout time.Duration
}

// ConfigOption applies an option to a Config.
type ConfigOption func(*Config)

// NewConfig creates an instrument configuration with the 2600-series command
// tables and default timings, then applies the given options in order.
func NewConfig(opts ...ConfigOption) (*Config, error) {
	cfg := &Config{
		commands:     tspcmd.Default(),
		logger:       logger.GetLogger(),
		queryTimeout: DefaultQueryTimeout,
		pollInterval: DefaultPollInterval,
		sweepTimeout: DefaultSweepTimeout,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.commands == nil {
		return nil, errors.New("tsp: command set is nil")
	}
	if cfg.logger == nil {
		return nil, errors.New("tsp: logger is nil")
	}
	if cfg.queryTimeout <= 0 {
		return nil, errors.New("tsp: query timeout must be positive")
	}
	if cfg.pollInterval <= 0 {
		return nil, errors.New("tsp: poll interval must be positive")
	}
	if cfg.sweepTimeout < 0 {
		return nil, errors.New("tsp: sweep timeout must not be negative")
	}

	return cfg, nil
}

// WithCommandSet replaces the classification tables, e.g. for a different
// firmware revision built with tspcmd.New.
func WithCommandSet(cs CommandSet) ConfigOption {
	return func(cfg *Config) { cfg.commands = cs }
}

// WithLogger sets the logger used by the instrument handle.
func WithLogger(l logger.Logger) ConfigOption {
	return func(cfg *Config) { cfg.logger = l }
}

// WithQueryTimeout sets the per-query transport read timeout.
func WithQueryTimeout(d time.Duration) ConfigOption {
	return func(cfg *Config) { cfg.queryTimeout = d }
}

// WithPollInterval sets the delay between sweep status polls.
func WithPollInterval(d time.Duration) ConfigOption {
	return func(cfg *Config) { cfg.pollInterval = d }
}

// WithSweepTimeout bounds the total time a sweep may spend in the status
// poll. Zero disables the bound. An instrument fault during an unbounded
// sweep leaves the poll spinning forever, so long-running deployments should
// set a generous non-zero value.
func WithSweepTimeout(d time.Duration) ConfigOption {
	return func(cfg *Config) { cfg.sweepTimeout = d }
}
