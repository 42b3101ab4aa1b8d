// Package dedupe defines the interface for idempotency tracking.
package dedupe

// Option applies a configuration option to the ring deduper.
type Option func(*ringDeduper)

// WithMaxSize bounds the number of IDs kept in memory. The oldest id is
// evicted once the bound is reached. maxSize <= 0 disables eviction.
func WithMaxSize(maxSize int) Option {
	return func(d *ringDeduper) {
		d.maxSize = maxSize
	}
}
