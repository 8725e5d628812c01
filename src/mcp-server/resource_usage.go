// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certcache"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// ResourceUsageData represents the complete resource usage information
// reported by the get_resource_usage tool.
type ResourceUsageData struct {
	Timestamp      string         `json:"timestamp"`
	MemoryUsage    map[string]any `json:"memory_usage"`
	GCStats        map[string]any `json:"gc_stats"`
	SystemInfo     map[string]any `json:"system_info"`
	CertCache      map[string]any `json:"cert_cache"`
	DetailedMemory map[string]any `json:"detailed_memory,omitempty"`
}

// CollectResourceUsage gathers current resource usage statistics,
// including the parsed-certificate cache counters.
func CollectResourceUsage(detailed bool, cache *certcache.Cache) *ResourceUsageData {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	gcStats := map[string]any{
		"num_gc":          memStats.NumGC,
		"num_forced_gc":   memStats.NumForcedGC,
		"gc_cpu_fraction": memStats.GCCPUFraction,
		"enable_gc":       memStats.EnableGC,
	}

	memoryUsage := map[string]any{
		"heap_alloc_mb":    float64(memStats.HeapAlloc) / (1024 * 1024),
		"heap_sys_mb":      float64(memStats.HeapSys) / (1024 * 1024),
		"heap_idle_mb":     float64(memStats.HeapIdle) / (1024 * 1024),
		"heap_inuse_mb":    float64(memStats.HeapInuse) / (1024 * 1024),
		"heap_released_mb": float64(memStats.HeapReleased) / (1024 * 1024),
		"heap_objects":     memStats.HeapObjects,
		"stack_inuse_mb":   float64(memStats.StackInuse) / (1024 * 1024),
		"stack_sys_mb":     float64(memStats.StackSys) / (1024 * 1024),
	}

	systemInfo := map[string]any{
		"go_version":    runtime.Version(),
		"go_os":         runtime.GOOS,
		"go_arch":       runtime.GOARCH,
		"num_cpu":       runtime.NumCPU(),
		"num_goroutine": runtime.NumGoroutine(),
	}

	data := &ResourceUsageData{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		MemoryUsage: memoryUsage,
		GCStats:     gcStats,
		SystemInfo:  systemInfo,
	}

	if cache != nil {
		metrics := cache.GetMetrics()
		data.CertCache = map[string]any{
			"size":             metrics.Size,
			"hits":             metrics.Hits,
			"misses":           metrics.Misses,
			"evictions":        metrics.Evictions,
			"hit_rate_percent": calculateHitRate(metrics.Hits, metrics.Misses),
		}
	}

	if detailed {
		data.DetailedMemory = map[string]any{
			"alloc_mb":          float64(memStats.Alloc) / (1024 * 1024),
			"total_alloc_mb":    float64(memStats.TotalAlloc) / (1024 * 1024),
			"sys_mb":            float64(memStats.Sys) / (1024 * 1024),
			"lookups":           memStats.Lookups,
			"mallocs":           memStats.Mallocs,
			"frees":             memStats.Frees,
			"heap_live_objects": memStats.HeapObjects,
			"gc_pause_total_ns": memStats.PauseTotalNs,
			"next_gc_mb":        float64(memStats.NextGC) / (1024 * 1024),
		}
	}

	return data
}

// Markdown renders the resource usage report as markdown tables.
func (d *ResourceUsageData) Markdown() string {
	var buf strings.Builder

	buf.WriteString("# Resource Usage Report\n\n")
	if parsedTime, err := time.Parse(time.RFC3339, d.Timestamp); err == nil {
		fmt.Fprintf(&buf, "**Generated:** %s\n\n", parsedTime.Format("January 2, 2006 at 3:04 PM MST"))
	} else {
		fmt.Fprintf(&buf, "**Generated:** %s\n\n", d.Timestamp)
	}

	buf.WriteString("## System Information\n\n")
	buf.WriteString(formatMarkdownTable(d.SystemInfo, []string{
		"Go Version", "go_version",
		"Operating System", "go_os",
		"Architecture", "go_arch",
		"CPU Count", "num_cpu",
		"Goroutines", "num_goroutine",
	}))

	buf.WriteString("## Memory Usage\n\n")
	buf.WriteString(formatMarkdownTable(d.MemoryUsage, []string{
		"Heap Allocated", "heap_alloc_mb",
		"Heap System", "heap_sys_mb",
		"Heap In Use", "heap_inuse_mb",
		"Heap Idle", "heap_idle_mb",
		"Heap Released", "heap_released_mb",
		"Heap Objects", "heap_objects",
		"Stack In Use", "stack_inuse_mb",
		"Stack System", "stack_sys_mb",
	}))

	buf.WriteString("## Garbage Collection\n\n")
	buf.WriteString(formatMarkdownTable(d.GCStats, []string{
		"GC Cycles", "num_gc",
		"Forced GC", "num_forced_gc",
		"GC CPU Fraction", "gc_cpu_fraction",
		"GC Enabled", "enable_gc",
	}))

	if d.CertCache != nil {
		buf.WriteString("## Certificate Cache\n\n")
		buf.WriteString(formatMarkdownTable(d.CertCache, []string{
			"Cached Certificates", "size",
			"Cache Hits", "hits",
			"Cache Misses", "misses",
			"Evictions", "evictions",
			"Hit Rate", "hit_rate_percent",
		}))
	}

	if d.DetailedMemory != nil {
		buf.WriteString("## Detailed Memory Statistics\n\n")
		buf.WriteString(formatMarkdownTable(d.DetailedMemory, []string{
			"Current Alloc", "alloc_mb",
			"Total Alloc", "total_alloc_mb",
			"System Memory", "sys_mb",
			"Lookups", "lookups",
			"Mallocs", "mallocs",
			"Frees", "frees",
			"Live Objects", "heap_live_objects",
			"GC Pause Total", "gc_pause_total_ns",
			"Next GC", "next_gc_mb",
		}))
	}

	return buf.String()
}

// formatMarkdownTable renders label/key pairs from a data map as a
// two-column markdown table.
func formatMarkdownTable(data map[string]any, fieldPairs []string) string {
	var rows [][]string
	for i := 0; i+1 < len(fieldPairs); i += 2 {
		label := fieldPairs[i]
		key := fieldPairs[i+1]
		if value, ok := data[key]; ok {
			rows = append(rows, []string{label, formatValueForMarkdown(value, key)})
		}
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)
	table.Header([]string{"Metric", "Value"})
	table.Bulk(rows)
	table.Render()
	buf.WriteString("\n")
	return buf.String()
}

// formatValueForMarkdown formats a single metric value for display.
func formatValueForMarkdown(value any, key string) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		if key == "size" {
			return fmt.Sprintf("%d entries", v)
		}
		return fmt.Sprintf("%d", v)
	case uint32:
		return fmt.Sprintf("%d", v)
	case uint64:
		return fmt.Sprintf("%d", v)
	case float64:
		if key == "gc_cpu_fraction" || key == "hit_rate_percent" {
			return fmt.Sprintf("%.2f%%", v)
		}
		if strings.Contains(key, "mb") {
			return fmt.Sprintf("%.2f MB", v)
		}
		return fmt.Sprintf("%.2f", v)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// calculateHitRate calculates the cache hit rate as a percentage.
func calculateHitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total) * 100.0
}
