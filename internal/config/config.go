// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load() layers an optional YAML file and env vars on top of defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Zone is the IANA time zone all period boundaries are computed in.
	Zone string `koanf:"zone"`

	// QueueSize bounds the in-memory score event queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of score-writing workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the event deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// RedisAddr, when set, switches the leaderboard store from the in-memory
	// board to a Redis sorted-set board at this address.
	RedisAddr string `koanf:"redis_addr"`

	// TopListSize caps how many entries a rankings response lists.
	TopListSize int `koanf:"top_list_size"`

	// FetchWindow is how many raw entries are read per rankings request
	// before frozen accounts are filtered out.
	FetchWindow int `koanf:"fetch_window"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		Addr:        ":9080",
		Zone:        "Asia/Tokyo",
		QueueSize:   100_000,
		WorkerCount: runtime.NumCPU() * 4,
		DedupeSize:  500_000,
		RedisAddr:   "",
		TopListSize: 99,
		FetchWindow: 121,
	}
}
