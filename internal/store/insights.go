package store

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/soundlens/soundlens/internal/models"
)

// Kind names an insight artifact type.
type Kind string

const (
	KindHabits  Kind = "habits"
	KindPersona Kind = "persona"
)

const (
	// DefaultMaxEntries bounds the number of cached users.
	DefaultMaxEntries = 1000
	// DefaultEntryTTL is how long an idle cache entry survives sweeps.
	DefaultEntryTTL = 7 * 24 * time.Hour
)

// entry is the per-user cache record. Both artifact kinds share a single
// fingerprint: any fingerprint change invalidates both at once.
type entry struct {
	fingerprint string
	habits      []models.HabitInsight
	persona     *models.PersonaInsight
	updatedAt   time.Time
}

// InsightStore caches generated insight artifacts per durable user identity,
// keyed by the fingerprint of the summary they were generated from. A
// single-flight group serializes generation per (user, fingerprint, kind) so
// concurrent misses invoke the generator once.
type InsightStore struct {
	mu         sync.RWMutex
	entries    map[string]*entry
	maxEntries int
	ttl        time.Duration
	group      singleflight.Group
	now        func() time.Time
}

// NewInsightStore creates a bounded insight cache. Non-positive limits fall
// back to the defaults.
func NewInsightStore(maxEntries int, ttl time.Duration) *InsightStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultEntryTTL
	}
	return &InsightStore{
		entries:    make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// HabitsFor returns the cached habits artifact when the stored fingerprint
// matches, otherwise generates, caches, and returns a fresh one. Generation
// failures are returned to the caller and never cached.
func (s *InsightStore) HabitsFor(ctx context.Context, userID, fingerprint string, generate func(context.Context) ([]models.HabitInsight, error)) ([]models.HabitInsight, error) {
	if habits, ok := s.getHabits(userID, fingerprint); ok {
		return habits, nil
	}

	v, err, _ := s.group.Do(userID+"|"+fingerprint+"|"+string(KindHabits), func() (any, error) {
		// Re-check under the flight: a concurrent caller may have filled
		// the cache while this one waited.
		if habits, ok := s.getHabits(userID, fingerprint); ok {
			return habits, nil
		}
		habits, err := generate(ctx)
		if err != nil {
			return nil, err
		}
		s.putHabits(userID, fingerprint, habits)
		return habits, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.HabitInsight), nil
}

// PersonaFor mirrors HabitsFor for the persona artifact kind.
func (s *InsightStore) PersonaFor(ctx context.Context, userID, fingerprint string, generate func(context.Context) (*models.PersonaInsight, error)) (*models.PersonaInsight, error) {
	if persona, ok := s.getPersona(userID, fingerprint); ok {
		return persona, nil
	}

	v, err, _ := s.group.Do(userID+"|"+fingerprint+"|"+string(KindPersona), func() (any, error) {
		if persona, ok := s.getPersona(userID, fingerprint); ok {
			return persona, nil
		}
		persona, err := generate(ctx)
		if err != nil {
			return nil, err
		}
		s.putPersona(userID, fingerprint, persona)
		return persona, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.PersonaInsight), nil
}

func (s *InsightStore) getHabits(userID, fingerprint string) ([]models.HabitInsight, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[userID]
	if !ok || e.fingerprint != fingerprint || e.habits == nil {
		return nil, false
	}
	return e.habits, true
}

func (s *InsightStore) getPersona(userID, fingerprint string) (*models.PersonaInsight, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[userID]
	if !ok || e.fingerprint != fingerprint || e.persona == nil {
		return nil, false
	}
	return e.persona, true
}

func (s *InsightStore) putHabits(userID, fingerprint string, habits []models.HabitInsight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.rotate(userID, fingerprint)
	e.habits = habits
	e.updatedAt = s.now()
}

func (s *InsightStore) putPersona(userID, fingerprint string, persona *models.PersonaInsight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.rotate(userID, fingerprint)
	e.persona = persona
	e.updatedAt = s.now()
}

// rotate returns the user's entry, clearing both artifacts when the
// fingerprint moved. Caller must hold the write lock.
func (s *InsightStore) rotate(userID, fingerprint string) *entry {
	e, ok := s.entries[userID]
	if !ok {
		s.evictOldestLocked()
		e = &entry{fingerprint: fingerprint}
		s.entries[userID] = e
		return e
	}
	if e.fingerprint != fingerprint {
		e.fingerprint = fingerprint
		e.habits = nil
		e.persona = nil
	}
	return e
}

// evictOldestLocked drops the least recently updated entries until the store
// has room for one more. Caller must hold the write lock.
func (s *InsightStore) evictOldestLocked() {
	for len(s.entries) >= s.maxEntries {
		oldestID := ""
		var oldestAt time.Time
		for id, e := range s.entries {
			if oldestID == "" || e.updatedAt.Before(oldestAt) {
				oldestID = id
				oldestAt = e.updatedAt
			}
		}
		delete(s.entries, oldestID)
	}
}

// Sweep removes entries idle past the TTL and reports how many were evicted.
func (s *InsightStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	evicted := 0
	for id, e := range s.entries {
		if e.updatedAt.Before(cutoff) {
			delete(s.entries, id)
			evicted++
		}
	}
	return evicted
}

// Len reports the number of cached users.
func (s *InsightStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
