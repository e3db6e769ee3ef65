// Package cache provides a small thread-safe TTL store with LRU eviction.
//
// It models the process-wide state that external collaborators lean on,
// such as provider cooldowns and short-lived memo entries, as an explicitly
// injected object passed by reference, never a package-global singleton, so
// the engine and its collaborators stay independently testable.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Store is a bounded TTL cache. Expired entries are treated as misses and
// removed lazily on access.
type Store struct {
	maxEntries int
	clock      clockwork.Clock

	mu      sync.Mutex
	entries map[string]*entry
	head    *entry // most recently used
	tail    *entry // least recently used
}

type entry struct {
	key       string
	value     any
	expiresAt time.Time
	prev      *entry
	next      *entry
}

// New creates a Store holding at most maxEntries live entries.
func New(maxEntries int) *Store {
	return NewWithClock(maxEntries, clockwork.NewRealClock())
}

// NewWithClock creates a Store with an injected time source for tests.
func NewWithClock(maxEntries int, clock clockwork.Clock) *Store {
	return &Store{
		maxEntries: maxEntries,
		clock:      clock,
		entries:    make(map[string]*entry),
	}
}

// Put stores a value under key for the given TTL. A non-positive TTL is a
// no-op.
func (s *Store) Put(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		e.value = value
		e.expiresAt = s.clock.Now().Add(ttl)
		s.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expiresAt: s.clock.Now().Add(ttl)}
	s.entries[key] = e
	s.addToFront(e)

	if len(s.entries) > s.maxEntries {
		s.evictTail()
	}
}

// Get returns the live value under key, if any.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if !s.clock.Now().Before(e.expiresAt) {
		delete(s.entries, key)
		s.remove(e)
		return nil, false
	}
	s.moveToFront(e)
	return e.value, true
}

// MarkCooldown records that the named collaborator should not be called
// again until the cooldown elapses.
func (s *Store) MarkCooldown(name string, d time.Duration) {
	s.Put("cooldown:"+name, struct{}{}, d)
}

// Cooling reports whether the named collaborator is still inside a
// recorded cooldown window.
func (s *Store) Cooling(name string) bool {
	_, ok := s.Get("cooldown:" + name)
	return ok
}

// Len returns the number of entries currently held, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) moveToFront(e *entry) {
	if e == s.head {
		return
	}
	s.remove(e)
	s.addToFront(e)
}

func (s *Store) addToFront(e *entry) {
	e.next = s.head
	e.prev = nil
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

func (s *Store) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
}

func (s *Store) evictTail() {
	if s.tail == nil {
		return
	}
	delete(s.entries, s.tail.key)
	s.remove(s.tail)
}
