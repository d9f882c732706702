// Package dedupe tracks the identities a sync run has already resolved, so
// the run can observe (and log) repeat encounters of the same (club, email)
// pair. The upsert engine's duplicate recovery keeps the at-most-one-contact
// invariant on its own; this registry exists to make violations visible.
package dedupe

import (
	"strings"
	"sync"
)

// Registry records (club, email) pairs seen during one run. A Registry is
// created per run and discarded with it.
type Registry struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewRegistry creates an empty per-run registry.
func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]struct{})}
}

// SeenAndRecord atomically checks whether the (club, email) pair was already
// resolved this run and records it if not. Returns true if it was already
// seen. Email comparison is case-insensitive.
func (r *Registry) SeenAndRecord(club, email string) bool {
	key := club + "|" + strings.ToLower(strings.TrimSpace(email))

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[key]; ok {
		return true
	}
	r.seen[key] = struct{}{}
	return false
}

// Size returns the number of distinct identities resolved so far.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}
