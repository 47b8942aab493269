// Package sessions keeps the live login sessions in memory.
//
// Each username maps to one opaque key plus the time it was last used. An
// entry is trusted only while now - lastActivity < ttl; older entries are
// dropped either when they are next looked at or by the periodic sweep.
// Capacity is bounded: when it is reached the least recently used session
// is evicted.
package sessions

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/apparel/internal/common"
	"github.com/dmitrijs2005/apparel/internal/logging"
	lru "github.com/hashicorp/golang-lru/v2"
)

// KeySize is the number of random bytes in a session key (hex encoded).
const KeySize = 32

type entry struct {
	key          string
	lastActivity time.Time
}

// Store is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	entries  *lru.Cache[string, entry]
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	newKey   func() (string, error)
	logger   logging.Logger
}

type Option func(*Store)

// WithClock replaces time.Now. Tests use it to move time by hand.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSweepInterval sets how often Run sweeps. Default is 2s.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Store) { s.interval = d }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New builds a store holding at most capacity sessions that expire after
// ttl of inactivity.
func New(ttl time.Duration, capacity int, opts ...Option) (*Store, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	c, err := lru.New[string, entry](capacity)
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	s := &Store{
		entries:  c,
		ttl:      ttl,
		interval: 2 * time.Second,
		now:      time.Now,
		newKey:   func() (string, error) { return common.MakeRandHexString(KeySize) },
		logger:   logging.Nop{},
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Create issues a fresh key for username, replacing any previous session.
func (s *Store) Create(username string) (string, error) {
	key, err := s.newKey()
	if err != nil {
		return "", fmt.Errorf("session key: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries.Add(username, entry{key: key, lastActivity: s.now()})
	return key, nil
}

// Validate reports whether key is the live session key of username. A
// successful check counts as activity and restarts the idle timer.
func (s *Store) Validate(username, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries.Get(username)
	if !ok {
		return false
	}

	now := s.now()
	if s.expired(e, now) {
		s.entries.Remove(username)
		return false
	}
	if subtle.ConstantTimeCompare([]byte(e.key), []byte(key)) != 1 {
		return false
	}

	e.lastActivity = now
	s.entries.Add(username, e)
	return true
}

// Revoke ends the session of username, if any.
func (s *Store) Revoke(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries.Remove(username)
}

// RevokeKey ends the session of username only while key is still its live
// key. A session issued later under the same name is left alone.
func (s *Store) RevokeKey(username, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries.Peek(username)
	if !ok || subtle.ConstantTimeCompare([]byte(e.key), []byte(key)) != 1 {
		return false
	}
	s.entries.Remove(username)
	return true
}

// Sweep removes every entry whose age at now is ttl or more and returns
// how many were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	// Keys returns a copy, so removing while ranging is safe.
	for _, username := range s.entries.Keys() {
		e, ok := s.entries.Peek(username)
		if ok && s.expired(e, now) {
			s.entries.Remove(username)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, including stale ones not yet
// swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries.Len()
}

// Run sweeps on the configured interval until ctx is done.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.now()); n > 0 {
				s.logger.Debug(ctx, "sessions swept", "removed", n, "remaining", s.Len())
			}
		}
	}
}

func (s *Store) expired(e entry, now time.Time) bool {
	return now.Sub(e.lastActivity) >= s.ttl
}
