package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/firewatch/firewatch/pkg/types"
)

// Entry is a site's latest sweep together with the time it was received.
type Entry struct {
	Sweep     *types.Sweep
	UpdatedAt time.Time
}

// Store is a thread-safe in-memory sweep store keyed by site ID. Only the
// latest sweep per site is kept. Run evicts sites that have not published
// within the TTL.
type Store struct {
	mu   sync.RWMutex
	data map[string]*Entry
	ttl  time.Duration
	now  func() time.Time
}

// New creates a Store with the given TTL.
func New(ttl time.Duration) *Store {
	return &Store{
		data: make(map[string]*Entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Put stores or replaces the sweep for sw.SiteID.
// Callers must not modify sw after calling Put.
func (s *Store) Put(sw *types.Sweep) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sw.SiteID] = &Entry{
		Sweep:     sw,
		UpdatedAt: s.now(),
	}
}

// Get returns the entry for siteID. The entry may be stale if the TTL has
// elapsed and it has not been evicted yet; use Live to exclude those.
func (s *Store) Get(siteID string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[siteID]
	return e, ok
}

// Live is Get restricted to entries within the TTL.
func (s *Store) Live(siteID string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[siteID]
	if !ok || !e.UpdatedAt.After(s.now().Add(-s.ttl)) {
		return nil, false
	}
	return e, true
}

// List returns all entries within the TTL, sorted by site ID.
func (s *Store) List() []*Entry {
	s.mu.RLock()
	cutoff := s.now().Add(-s.ttl)
	out := make([]*Entry, 0, len(s.data))
	for _, e := range s.data {
		if e.UpdatedAt.After(cutoff) {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Sweep.SiteID < out[j].Sweep.SiteID })
	return out
}

// Count returns the number of entries held, including stale ones.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Evict removes entries older than now minus TTL and returns how many were
// removed.
func (s *Store) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.ttl)
	removed := 0
	for id, e := range s.data {
		if !e.UpdatedAt.After(cutoff) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// Run evicts stale entries every half TTL (at least once a second) until ctx
// is cancelled.
func (s *Store) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Info("store: evicted stale sites", "count", n)
			}
		}
	}
}
