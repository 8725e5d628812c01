// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package certcache_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certcache"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCachesResult(t *testing.T) {
	root := certtest.SelfSigned(t, certtest.CATemplate("Test Root"))
	cache := certcache.New(4)

	first, err := cache.Parse(root.DER)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := cache.Parse(root.DER)
	require.NoError(t, err)
	assert.Same(t, first, second, "second parse should return the cached certificate")

	m := cache.GetMetrics()
	assert.Equal(t, int64(1), m.Hits)
	assert.Equal(t, int64(1), m.Misses)
	assert.Equal(t, int64(1), m.Size)
}

func TestParseRejectsGarbage(t *testing.T) {
	cache := certcache.New(4)

	_, err := cache.Parse([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len(), "parse failures must not be cached")
}

func TestGetWithoutParse(t *testing.T) {
	root := certtest.SelfSigned(t, certtest.CATemplate("Test Root"))
	cache := certcache.New(4)

	_, ok := cache.Get(root.DER)
	assert.False(t, ok)

	_, err := cache.Parse(root.DER)
	require.NoError(t, err)

	got, ok := cache.Get(root.DER)
	require.True(t, ok)
	assert.True(t, got.Equal(root.Cert))
}

func TestLRUEviction(t *testing.T) {
	cache := certcache.New(2)

	var ents []*certtest.Entity
	for i := range 3 {
		ents = append(ents, certtest.SelfSigned(t, certtest.CATemplate(fmt.Sprintf("CA %d", i))))
	}

	_, err := cache.Parse(ents[0].DER)
	require.NoError(t, err)
	_, err = cache.Parse(ents[1].DER)
	require.NoError(t, err)

	// Touch the first entry so the second becomes least recently used.
	_, ok := cache.Get(ents[0].DER)
	require.True(t, ok)

	_, err = cache.Parse(ents[2].DER)
	require.NoError(t, err)

	assert.Equal(t, 2, cache.Len())
	_, ok = cache.Get(ents[1].DER)
	assert.False(t, ok, "least recently used entry should have been evicted")
	_, ok = cache.Get(ents[0].DER)
	assert.True(t, ok)

	m := cache.GetMetrics()
	assert.Equal(t, int64(1), m.Evictions)
}

func TestClearResetsEverything(t *testing.T) {
	root := certtest.SelfSigned(t, certtest.CATemplate("Test Root"))
	cache := certcache.New(4)

	_, err := cache.Parse(root.DER)
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	cache.Clear()

	assert.Equal(t, 0, cache.Len())
	m := cache.GetMetrics()
	assert.Zero(t, m.Hits)
	assert.Zero(t, m.Misses)
	assert.Zero(t, m.Evictions)
}

func TestStatsFormat(t *testing.T) {
	root := certtest.SelfSigned(t, certtest.CATemplate("Test Root"))
	cache := certcache.New(4)

	_, err := cache.Parse(root.DER)
	require.NoError(t, err)
	_, err = cache.Parse(root.DER)
	require.NoError(t, err)

	stats := cache.Stats()
	assert.Contains(t, stats, "Certificate Cache Statistics")
	assert.Contains(t, stats, "1/4 entries")
	assert.Contains(t, stats, "50.0%")
}

func TestConcurrentAccess(t *testing.T) {
	root := certtest.SelfSigned(t, certtest.CATemplate("Test Root"))
	inter := certtest.Issue(t, certtest.CATemplate("Test Intermediate"), root)
	cache := certcache.New(8)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				if _, err := cache.Parse(root.DER); err != nil {
					t.Error(err)
					return
				}
				if _, err := cache.Parse(inter.DER); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, cache.Len())
}
