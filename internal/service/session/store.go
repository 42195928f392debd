package session

import (
	"context"
	"sync"
	"time"

	"ecobot/internal/logger"
)

// ResultsKey holds the most recent detection result of a session.
const ResultsKey = "detectionResults"

// SweepInterval defines how often expired entries are dropped.
const SweepInterval = time.Minute

type entry struct {
	value   []byte
	expires time.Time
}

// Store keeps short-lived per-session values in memory. Nothing survives a
// restart, and entries expire after the configured TTL.
type Store struct {
	ttl     time.Duration
	entries map[string]map[string]entry
	now     func() time.Time
	mu      sync.Mutex
	logger  *logger.Logger
}

// NewStore creates a session store whose entries live for ttl.
func NewStore(ttl time.Duration, logger *logger.Logger) *Store {
	return &Store{
		ttl:     ttl,
		entries: make(map[string]map[string]entry),
		now:     time.Now,
		logger:  logger,
	}
}

// Run starts a ticker loop that periodically drops expired entries.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Info("Expired %d session entries", n)
			}
		}
	}
}

// Put stores value under key for the session, replacing any previous value.
func (s *Store) Put(sessionID, key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, ok := s.entries[sessionID]
	if !ok {
		values = make(map[string]entry)
		s.entries[sessionID] = values
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	values[key] = entry{value: stored, expires: s.now().Add(s.ttl)}
}

// Peek returns the value without consuming it.
func (s *Store) Peek(sessionID, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(sessionID, key)
	return e.value, ok
}

// Take returns the value and removes it, so it is handed over at most once.
func (s *Store) Take(sessionID, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(sessionID, key)
	if ok {
		s.remove(sessionID, key)
	}
	return e.value, ok
}

// Sweep removes expired entries and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	dropped := 0
	for sessionID, values := range s.entries {
		for key, e := range values {
			if !now.Before(e.expires) {
				delete(values, key)
				dropped++
			}
		}
		if len(values) == 0 {
			delete(s.entries, sessionID)
		}
	}
	return dropped
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, values := range s.entries {
		n += len(values)
	}
	return n
}

func (s *Store) lookup(sessionID, key string) (entry, bool) {
	e, ok := s.entries[sessionID][key]
	if !ok {
		return entry{}, false
	}
	if !s.now().Before(e.expires) {
		s.remove(sessionID, key)
		return entry{}, false
	}
	return e, true
}

func (s *Store) remove(sessionID, key string) {
	values := s.entries[sessionID]
	delete(values, key)
	if len(values) == 0 {
		delete(s.entries, sessionID)
	}
}
