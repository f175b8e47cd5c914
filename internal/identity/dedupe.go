package identity

import (
	"sync"

	"github.com/jonathan/talent-sourcing/internal/types"
)

// Deduplicator remembers identity keys seen during one run. It is safe for concurrent use.
type Deduplicator struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewDeduplicator creates a Deduplicator pre-populated with known identities.
func NewDeduplicator(known ...string) *Deduplicator {
	d := &Deduplicator{seen: make(map[string]struct{}, len(known))}
	d.Seed(known...)
	return d
}

// Seed remembers every given identity.
func (d *Deduplicator) Seed(known ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, raw := range known {
		if k := CanonicalKey(raw); k != "" {
			d.seen[k] = struct{}{}
		}
	}
}

// SeedProfiles remembers every identity key of the given profiles.
func (d *Deduplicator) SeedProfiles(profiles []types.CandidateProfile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range profiles {
		for _, k := range Keys(p) {
			d.seen[k] = struct{}{}
		}
	}
}

// IsNew reports whether the identity has not been remembered. Empty identities are always new.
func (d *Deduplicator) IsNew(identity string) bool {
	k := CanonicalKey(identity)
	if k == "" {
		return true
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.seen[k]
	return !ok
}

// Remember records an identity.
func (d *Deduplicator) Remember(identity string) {
	k := CanonicalKey(identity)
	if k == "" {
		return
	}
	d.mu.Lock()
	d.seen[k] = struct{}{}
	d.mu.Unlock()
}

// Len returns the number of remembered keys.
func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// Accept checks a profile against every remembered key and, if none match,
// remembers all of its keys. A profile without any usable key is accepted and flagged.
func (d *Deduplicator) Accept(p types.CandidateProfile) (accepted, flagged bool) {
	keys := Keys(p)
	if len(keys) == 0 {
		return true, true
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, k := range keys {
		if _, ok := d.seen[k]; ok {
			return false, false
		}
	}
	for _, k := range keys {
		d.seen[k] = struct{}{}
	}
	return true, false
}
