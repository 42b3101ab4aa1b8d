// Package directory provides the user-directory adapter: profile lookups for
// ranking hydration and the frozen-account set used to filter leaderboards.
package directory

import (
	"context"
	"sync"

	"github.com/pixelarc/rankboard/internal/domain/model"
)

// InMemoryDirectory is a concurrency-safe directory backed by maps. It serves
// as the local stand-in for the platform's account service.
type InMemoryDirectory struct {
	mu       sync.RWMutex
	profiles map[string]model.Profile
	frozen   map[string]struct{}
}

// Option applies a configuration option to the InMemoryDirectory.
type Option func(*InMemoryDirectory)

// WithProfiles seeds the directory with initial profiles.
func WithProfiles(profiles []model.Profile) Option {
	return func(d *InMemoryDirectory) {
		for _, p := range profiles {
			d.profiles[p.UserID] = p
		}
	}
}

// WithFrozen seeds the directory with initially frozen account ids.
func WithFrozen(ids []string) Option {
	return func(d *InMemoryDirectory) {
		for _, id := range ids {
			d.frozen[id] = struct{}{}
		}
	}
}

// NewInMemoryDirectory creates a directory with configuration options.
func NewInMemoryDirectory(opts ...Option) *InMemoryDirectory {
	d := &InMemoryDirectory{
		profiles: make(map[string]model.Profile),
		frozen:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Profiles returns display fields for the given users. Unknown ids are
// simply absent from the result.
func (d *InMemoryDirectory) Profiles(ctx context.Context, ids []string) (map[string]model.Profile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]model.Profile, len(ids))
	for _, id := range ids {
		if p, ok := d.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// LockedIDs returns a copy of the currently frozen account ids.
func (d *InMemoryDirectory) LockedIDs(ctx context.Context) (map[string]struct{}, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]struct{}, len(d.frozen))
	for id := range d.frozen {
		out[id] = struct{}{}
	}
	return out, nil
}

// PutProfile inserts or replaces a profile.
func (d *InMemoryDirectory) PutProfile(p model.Profile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.profiles[p.UserID] = p
}

// Freeze marks an account as frozen. Frozen accounts are hidden from
// leaderboard views but keep their stored scores.
func (d *InMemoryDirectory) Freeze(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frozen[id] = struct{}{}
}

// Unfreeze clears the frozen mark from an account.
func (d *InMemoryDirectory) Unfreeze(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.frozen, id)
}

// ProfileCount returns the number of known profiles.
func (d *InMemoryDirectory) ProfileCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.profiles)
}
