// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectResourceUsage(t *testing.T) {
	t.Run("WithCache", func(t *testing.T) {
		data := CollectResourceUsage(false, sharedCache())
		require.NotNil(t, data)
		assert.NotEmpty(t, data.Timestamp)
		assert.Contains(t, data.MemoryUsage, "heap_alloc_mb")
		assert.Contains(t, data.SystemInfo, "go_version")
		assert.Contains(t, data.CertCache, "hit_rate_percent")
		assert.Nil(t, data.DetailedMemory)
	})

	t.Run("Detailed", func(t *testing.T) {
		data := CollectResourceUsage(true, sharedCache())
		require.NotNil(t, data.DetailedMemory)
		assert.Contains(t, data.DetailedMemory, "total_alloc_mb")
		assert.Contains(t, data.DetailedMemory, "gc_pause_total_ns")
	})

	t.Run("NilCache", func(t *testing.T) {
		data := CollectResourceUsage(false, nil)
		assert.Nil(t, data.CertCache)
	})
}

func TestResourceUsageMarkdown(t *testing.T) {
	data := CollectResourceUsage(true, sharedCache())
	md := data.Markdown()

	for _, heading := range []string{
		"# Resource Usage Report",
		"## System Information",
		"## Memory Usage",
		"## Garbage Collection",
		"## Certificate Cache",
		"## Detailed Memory Statistics",
	} {
		assert.Contains(t, md, heading)
	}
}

func TestCalculateHitRate(t *testing.T) {
	assert.Equal(t, float64(0), calculateHitRate(0, 0))
	assert.Equal(t, float64(100), calculateHitRate(5, 0))
	assert.Equal(t, float64(50), calculateHitRate(3, 3))
	assert.InDelta(t, 75.0, calculateHitRate(3, 1), 0.01)
}
