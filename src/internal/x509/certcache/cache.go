// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package certcache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"sync/atomic"

	x509cert "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/cert"
)

// DefaultMaxSize is the entry cap used when a Cache is created with a
// non-positive size.
const DefaultMaxSize = 256

// Metrics tracks cache performance and usage.
type Metrics struct {
	Size      int64 // Current number of cached certificates
	Hits      int64 // Number of cache hits
	Misses    int64 // Number of cache misses
	Evictions int64 // Number of LRU evictions
}

// Cache is an LRU cache of parsed certificates keyed by the SHA-256 of
// their DER encoding. Strict parsing is deterministic, so a hit can skip
// the full decode; the MCP server sees the same leaf or intermediate
// repeatedly across tool calls.
//
// Cache is safe for concurrent use by multiple goroutines.
type Cache struct {
	mu      sync.Mutex
	entries map[[sha256.Size]byte]*x509cert.Certificate
	order   [][sha256.Size]byte // access order, least recently used first
	maxSize int

	hits      int64
	misses    int64
	evictions int64
}

// New creates a certificate cache holding at most maxSize entries.
func New(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Cache{
		entries: make(map[[sha256.Size]byte]*x509cert.Certificate),
		maxSize: maxSize,
	}
}

// Parse returns the parsed certificate for der, consulting the cache
// first. Parse failures are not cached; a corrupt input is rare and
// re-parsing it is cheap compared to poisoning the map.
func (c *Cache) Parse(der []byte) (*x509cert.Certificate, error) {
	key := sha256.Sum256(der)

	c.mu.Lock()
	if cert, ok := c.entries[key]; ok {
		atomic.AddInt64(&c.hits, 1)
		c.touch(key)
		c.mu.Unlock()
		return cert, nil
	}
	atomic.AddInt64(&c.misses, 1)
	c.mu.Unlock()

	// Parsing happens outside the lock; the certificate model is
	// immutable so a racing double-parse just wastes one decode.
	cert, err := x509cert.ParseCertificate(der)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.store(key, cert)
	c.mu.Unlock()
	return cert, nil
}

// Get returns the cached certificate for der without parsing on a miss.
func (c *Cache) Get(der []byte) (*x509cert.Certificate, bool) {
	key := sha256.Sum256(der)

	c.mu.Lock()
	defer c.mu.Unlock()

	cert, ok := c.entries[key]
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	atomic.AddInt64(&c.hits, 1)
	c.touch(key)
	return cert, true
}

// store inserts under the LRU cap. Caller holds c.mu.
func (c *Cache) store(key [sha256.Size]byte, cert *x509cert.Certificate) {
	if _, ok := c.entries[key]; ok {
		c.touch(key)
		return
	}

	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		lru := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, lru)
		atomic.AddInt64(&c.evictions, 1)
	}

	c.entries[key] = cert
	c.order = append(c.order, key)
}

// touch moves key to the most-recently-used end. Caller holds c.mu.
func (c *Cache) touch(key [sha256.Size]byte) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.order = append(c.order, key)
}

// Clear drops all entries and resets metrics (useful for testing).
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[[sha256.Size]byte]*x509cert.Certificate)
	c.order = nil
	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
	atomic.StoreInt64(&c.evictions, 0)
}

// Len returns the current number of cached certificates.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetMetrics returns current cache metrics.
func (c *Cache) GetMetrics() Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Metrics{
		Size:      int64(len(c.entries)),
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Evictions: atomic.LoadInt64(&c.evictions),
	}
}

// Stats returns a formatted string with cache statistics.
func (c *Cache) Stats() string {
	m := c.GetMetrics()

	hitRate := float64(0)
	if total := m.Hits + m.Misses; total > 0 {
		hitRate = float64(m.Hits) / float64(total) * 100
	}

	return fmt.Sprintf("Certificate Cache Statistics:\n"+
		"  Size: %d/%d entries\n"+
		"  Hit Rate: %.1f%% (%d hits, %d misses)\n"+
		"  Evictions: %d",
		m.Size, c.maxSize,
		hitRate, m.Hits, m.Misses,
		m.Evictions)
}
