// Package registry holds every claim produced by scanning or verification
// for the lifetime of the process.
package registry

import (
	"sync"

	"github.com/esachdev28/truth-weaver/internal/model"
)

// Registry is an append-only, concurrency-safe claim store. Stored claims
// are copies; neither writers nor readers can mutate history.
type Registry struct {
	mu     sync.RWMutex
	claims []model.Claim
}

// New creates an empty registry
func New() *Registry {
	return &Registry{}
}

// Append stores copies of claims in the given order
func (r *Registry) Append(claims ...model.Claim) {
	if len(claims) == 0 {
		return
	}
	copies := make([]model.Claim, len(claims))
	for i, c := range claims {
		copies[i] = c.Clone()
	}

	r.mu.Lock()
	r.claims = append(r.claims, copies...)
	r.mu.Unlock()
}

// Snapshot returns a deep copy of the current contents. The result is
// never nil.
func (r *Registry) Snapshot() []model.Claim {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Claim, len(r.claims))
	for i, c := range r.claims {
		out[i] = c.Clone()
	}
	return out
}

// Len returns the number of stored claims
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.claims)
}

// CountByStatus tallies stored claims per status
func (r *Registry) CountByStatus() map[model.ClaimStatus]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[model.ClaimStatus]int)
	for _, c := range r.claims {
		counts[c.Status]++
	}
	return counts
}
