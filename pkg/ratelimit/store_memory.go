package ratelimit

import (
	"context"
	"sync"
	"time"
)

// InMemoryRateLimitStore is a thread-safe in-memory RateLimitStore keyed by
// IP or user ID. Memory is bounded: when the key count reaches MaxKeys the
// least recently used keys are evicted, and Cleanup sweeps expired
// timestamps.
type InMemoryRateLimitStore struct {
	mu       sync.RWMutex
	requests map[string]*timestampList
	maxKeys  int
	clock    Clock

	lruList *lruList
}

type timestampList struct {
	timestamps []time.Time
	lastAccess time.Time
}

// lruList is a doubly-linked list of keys ordered by last access.
type lruList struct {
	head *lruNode
	tail *lruNode
	keys map[string]*lruNode
}

type lruNode struct {
	key  string
	prev *lruNode
	next *lruNode
}

// InMemoryStoreConfig configures InMemoryRateLimitStore.
type InMemoryStoreConfig struct {
	// MaxKeys caps the number of keys held in memory. Default 10000.
	MaxKeys int

	// Clock abstracts time for tests. Default SystemClock.
	Clock Clock
}

// DefaultInMemoryStoreConfig returns the default store configuration.
func DefaultInMemoryStoreConfig() InMemoryStoreConfig {
	return InMemoryStoreConfig{
		MaxKeys: 10000,
		Clock:   &SystemClock{},
	}
}

// NewInMemoryRateLimitStore creates an in-memory store.
func NewInMemoryRateLimitStore(config InMemoryStoreConfig) *InMemoryRateLimitStore {
	if config.MaxKeys <= 0 {
		config.MaxKeys = 10000
	}
	if config.Clock == nil {
		config.Clock = &SystemClock{}
	}

	return &InMemoryRateLimitStore{
		requests: make(map[string]*timestampList),
		maxKeys:  config.MaxKeys,
		clock:    config.Clock,
		lruList:  newLRUList(),
	}
}

func newLRUList() *lruList {
	return &lruList{
		keys: make(map[string]*lruNode),
	}
}

// AddRequest records a request timestamp, evicting LRU keys first when the
// store is at capacity and the key is new.
func (s *InMemoryRateLimitStore) AddRequest(ctx context.Context, key string, timestamp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.addLocked(key, timestamp)
	return nil
}

// addLocked does the insert. Callers must hold the write lock.
func (s *InMemoryRateLimitStore) addLocked(key string, timestamp time.Time) {
	tsList, exists := s.requests[key]

	if !exists && len(s.requests) >= s.maxKeys {
		s.evictLRU()
	}

	if !exists {
		tsList = &timestampList{
			timestamps: make([]time.Time, 0, 100),
			lastAccess: timestamp,
		}
		s.requests[key] = tsList
	} else {
		tsList.lastAccess = timestamp
	}

	tsList.timestamps = append(tsList.timestamps, timestamp)
	s.lruList.touch(key)
}

// GetRequests returns the key's timestamps that are after cutoff.
func (s *InMemoryRateLimitStore) GetRequests(ctx context.Context, key string, cutoff time.Time) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tsList, exists := s.requests[key]
	if !exists {
		return []time.Time{}, nil
	}

	result := make([]time.Time, 0, len(tsList.timestamps))
	for _, ts := range tsList.timestamps {
		if ts.After(cutoff) {
			result = append(result, ts)
		}
	}

	return result, nil
}

// GetRequestCount counts the key's timestamps after cutoff.
func (s *InMemoryRateLimitStore) GetRequestCount(ctx context.Context, key string, cutoff time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.countLocked(key, cutoff), nil
}

// countLocked counts timestamps after cutoff. Callers must hold a lock.
func (s *InMemoryRateLimitStore) countLocked(key string, cutoff time.Time) int {
	tsList, exists := s.requests[key]
	if !exists {
		return 0
	}

	count := 0
	for _, ts := range tsList.timestamps {
		if ts.After(cutoff) {
			count++
		}
	}
	return count
}

// CheckAndAddRequest atomically counts the key's requests in the window and
// records the new one when it fits. Check and add happen under one lock so
// concurrent requests cannot both claim the last slot.
func (s *InMemoryRateLimitStore) CheckAndAddRequest(ctx context.Context, key string, timestamp time.Time, cutoff time.Time, limit int) (allowed bool, count int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	currentCount := s.countLocked(key, cutoff)
	if currentCount >= limit {
		return false, currentCount, nil
	}

	s.addLocked(key, timestamp)
	return true, currentCount + 1, nil
}

// Cleanup drops timestamps older than cutoff and removes keys left empty.
func (s *InMemoryRateLimitStore) Cleanup(ctx context.Context, cutoff time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keysToRemove := make([]string, 0)

	for key, tsList := range s.requests {
		valid := make([]time.Time, 0, len(tsList.timestamps))
		for _, ts := range tsList.timestamps {
			if ts.After(cutoff) {
				valid = append(valid, ts)
			}
		}

		if len(valid) == 0 {
			keysToRemove = append(keysToRemove, key)
		} else {
			tsList.timestamps = valid
		}
	}

	for _, key := range keysToRemove {
		delete(s.requests, key)
		s.lruList.remove(key)
	}

	return nil
}

// KeyCount returns the number of keys currently tracked.
func (s *InMemoryRateLimitStore) KeyCount(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.requests), nil
}

// MemoryUsage estimates the store's footprint in bytes from per-entry
// overheads and the timestamp count. Used by the cleanup loop's logging.
func (s *InMemoryRateLimitStore) MemoryUsage(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const (
		mapEntryOverhead      = 48
		timestampSize         = 24
		timestampListOverhead = 32
		lruNodeSize           = 48
	)

	var totalBytes int64
	for _, tsList := range s.requests {
		totalBytes += mapEntryOverhead + timestampListOverhead
		totalBytes += int64(len(tsList.timestamps) * timestampSize)
	}
	totalBytes += int64(len(s.lruList.keys) * lruNodeSize)

	return totalBytes, nil
}

// evictLRU removes the least recently used 10% of keys (at least one).
// Callers must hold the write lock.
func (s *InMemoryRateLimitStore) evictLRU() {
	evictCount := s.maxKeys / 10
	if evictCount < 1 {
		evictCount = 1
	}

	evicted := 0
	for evicted < evictCount && s.lruList.tail != nil {
		key := s.lruList.tail.key
		delete(s.requests, key)
		s.lruList.remove(key)
		evicted++
	}
}

// touch moves a key to the most recently used position, inserting it if
// absent. Callers must hold the write lock.
func (l *lruList) touch(key string) {
	if _, exists := l.keys[key]; exists {
		l.remove(key)
	}

	newNode := &lruNode{
		key:  key,
		next: l.head,
	}

	if l.head != nil {
		l.head.prev = newNode
	}
	l.head = newNode

	if l.tail == nil {
		l.tail = newNode
	}

	l.keys[key] = newNode
}

// remove unlinks a key. Callers must hold the write lock.
func (l *lruList) remove(key string) {
	node, exists := l.keys[key]
	if !exists {
		return
	}

	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}

	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}

	delete(l.keys, key)
}
