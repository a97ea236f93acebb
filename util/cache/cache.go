// Package cache holds the three independent TTL maps used by the name
// service: forward (name -> resolution), reverse (address -> name) and
// records (name -> records).
//
// Each map is bounded. When a map is full the entry that was inserted first
// is dropped, regardless of how often it was read since: reads never touch
// the eviction order. Expiry is lazy on read, plus an optional background
// sweep that removes dead entries nobody reads anymore.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/lru"
	"github.com/ethereum/go-ethereum/common/mclock"

	unscommon "github.com/tranvictor/uns/common"
)

const (
	DEFAULT_MAX_SIZE         int           = 1000
	DEFAULT_FORWARD_TTL      time.Duration = 5 * time.Minute
	DEFAULT_REVERSE_TTL      time.Duration = 5 * time.Minute
	DEFAULT_RECORDS_TTL      time.Duration = 10 * time.Minute
	DEFAULT_CLEANUP_INTERVAL time.Duration = time.Minute
)

type Config struct {
	MaxSize         int
	ForwardTTL      time.Duration
	ReverseTTL      time.Duration
	RecordsTTL      time.Duration
	CleanupInterval time.Duration
	// Clock defaults to mclock.System.
	Clock mclock.Clock
}

func DefaultConfig() Config {
	return Config{
		MaxSize:         DEFAULT_MAX_SIZE,
		ForwardTTL:      DEFAULT_FORWARD_TTL,
		ReverseTTL:      DEFAULT_REVERSE_TTL,
		RecordsTTL:      DEFAULT_RECORDS_TTL,
		CleanupInterval: DEFAULT_CLEANUP_INTERVAL,
	}
}

type entry[T any] struct {
	value      T
	insertedAt mclock.AbsTime
	ttl        time.Duration
}

func (e entry[T]) expired(now mclock.AbsTime) bool {
	return now.Sub(e.insertedAt) > e.ttl
}

// subCache wraps a BasicLRU that is only ever read with Peek, so its
// recency order is the insertion order.
type subCache[T any] struct {
	entries lru.BasicLRU[string, entry[T]]
	ttl     time.Duration
}

func newSubCache[T any](maxSize int, ttl time.Duration) *subCache[T] {
	return &subCache[T]{
		entries: lru.NewBasicLRU[string, entry[T]](maxSize),
		ttl:     ttl,
	}
}

func (s *subCache[T]) get(key string, now mclock.AbsTime) (value T, found bool, expired bool) {
	e, ok := s.entries.Peek(key)
	if !ok {
		return value, false, false
	}
	if e.expired(now) {
		s.entries.Remove(key)
		return value, false, true
	}
	return e.value, true, false
}

func (s *subCache[T]) set(key string, value T, ttl time.Duration, now mclock.AbsTime) (evicted bool) {
	if ttl < 0 {
		ttl = s.ttl
	}
	return s.entries.Add(key, entry[T]{value: value, insertedAt: now, ttl: ttl})
}

func (s *subCache[T]) sweep(now mclock.AbsTime) int {
	removed := 0
	for _, key := range s.entries.Keys() {
		if e, ok := s.entries.Peek(key); ok && e.expired(now) {
			s.entries.Remove(key)
			removed++
		}
	}
	return removed
}

// NameCache is safe for concurrent use. Every get/set runs under one lock so
// the check-evict-insert sequence of a map is atomic.
type NameCache struct {
	mu      sync.Mutex
	clock   mclock.Clock
	forward *subCache[unscommon.ResolutionResult]
	reverse *subCache[string]
	records *subCache[unscommon.NameRecords]
	stats   Stats

	cleanupInterval time.Duration
	startOnce       sync.Once
	closeOnce       sync.Once
	quit            chan struct{}
	wg              sync.WaitGroup
}

func NewNameCache(cfg Config) *NameCache {
	def := DefaultConfig()
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = def.MaxSize
	}
	if cfg.ForwardTTL <= 0 {
		cfg.ForwardTTL = def.ForwardTTL
	}
	if cfg.ReverseTTL <= 0 {
		cfg.ReverseTTL = def.ReverseTTL
	}
	if cfg.RecordsTTL <= 0 {
		cfg.RecordsTTL = def.RecordsTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = mclock.System{}
	}
	return &NameCache{
		clock:           cfg.Clock,
		forward:         newSubCache[unscommon.ResolutionResult](cfg.MaxSize, cfg.ForwardTTL),
		reverse:         newSubCache[string](cfg.MaxSize, cfg.ReverseTTL),
		records:         newSubCache[unscommon.NameRecords](cfg.MaxSize, cfg.RecordsTTL),
		cleanupInterval: cfg.CleanupInterval,
		quit:            make(chan struct{}),
	}
}

// NameKey is the key of the forward and records maps.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// AddressKey is the key of the reverse map, "0xABC" and "abc" share a key.
func AddressKey(address string) string {
	return unscommon.AddressKey(address)
}

func (c *NameCache) record(found, expired bool) {
	if found {
		c.stats.Hits++
		return
	}
	c.stats.Misses++
	if expired {
		c.stats.Expirations++
	}
}

func (c *NameCache) evicted(evicted bool) {
	if evicted {
		c.stats.Evictions++
	}
}

// GetForward returns a copy of the cached resolution of name.
func (c *NameCache) GetForward(name string) (unscommon.ResolutionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, found, expired := c.forward.get(NameKey(name), c.clock.Now())
	c.record(found, expired)
	if !found {
		return unscommon.ResolutionResult{}, false
	}
	return v.Clone(), true
}

func (c *NameCache) SetForward(name string, result unscommon.ResolutionResult) {
	c.SetForwardWithTTL(name, result, -1)
}

// SetForwardWithTTL stores result with a custom ttl, a negative ttl means
// the map default.
func (c *NameCache) SetForwardWithTTL(name string, result unscommon.ResolutionResult, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evicted(c.forward.set(NameKey(name), result.Clone(), ttl, c.clock.Now()))
}

func (c *NameCache) GetReverse(address string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, found, expired := c.reverse.get(AddressKey(address), c.clock.Now())
	c.record(found, expired)
	return v, found
}

func (c *NameCache) SetReverse(address, name string) {
	c.SetReverseWithTTL(address, name, -1)
}

func (c *NameCache) SetReverseWithTTL(address, name string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evicted(c.reverse.set(AddressKey(address), name, ttl, c.clock.Now()))
}

func (c *NameCache) GetRecords(name string) (unscommon.NameRecords, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, found, expired := c.records.get(NameKey(name), c.clock.Now())
	c.record(found, expired)
	if !found {
		return unscommon.NameRecords{}, false
	}
	return v.Clone(), true
}

func (c *NameCache) SetRecords(name string, records unscommon.NameRecords) {
	c.SetRecordsWithTTL(name, records, -1)
}

func (c *NameCache) SetRecordsWithTTL(name string, records unscommon.NameRecords, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evicted(c.records.set(NameKey(name), records.Clone(), ttl, c.clock.Now()))
}

func (c *NameCache) ClearForward() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forward.entries.Purge()
}

func (c *NameCache) ClearReverse() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reverse.entries.Purge()
}

func (c *NameCache) ClearRecords() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records.entries.Purge()
}

func (c *NameCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forward.entries.Purge()
	c.reverse.entries.Purge()
	c.records.entries.Purge()
}

// Sweep removes every expired entry of the three maps and returns how many
// were dropped.
func (c *NameCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	removed := c.forward.sweep(now) + c.reverse.sweep(now) + c.records.sweep(now)
	c.stats.Expirations += uint64(removed)
	return removed
}

// Stats returns a snapshot of the counters and the current map sizes.
func (c *NameCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.ForwardSize = c.forward.entries.Len()
	s.ReverseSize = c.reverse.entries.Len()
	s.RecordsSize = c.records.entries.Len()
	return s
}

func (c *NameCache) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = Stats{}
}

// Start launches the periodic sweep. A sweep never overlaps the previous
// one since the single loop only rearms its timer after sweeping.
func (c *NameCache) Start() {
	c.startOnce.Do(func() {
		c.wg.Add(1)
		go c.loop()
	})
}

func (c *NameCache) loop() {
	defer c.wg.Done()
	timer := c.clock.NewTimer(c.cleanupInterval)
	defer timer.Stop()
	for {
		select {
		case <-timer.C():
			c.Sweep()
			timer.Reset(c.cleanupInterval)
		case <-c.quit:
			return
		}
	}
}

// Close stops the background sweep. It is safe to call more than once.
func (c *NameCache) Close() {
	c.closeOnce.Do(func() {
		close(c.quit)
	})
	c.wg.Wait()
}
