// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package jsonrpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	tests := []struct {
		name     string
		input    map[string]any
		expected map[string]any
	}{
		{
			name: "folds keys and injects version",
			input: map[string]any{
				"Method": "tools/call",
				"Params": map[string]any{"name": "verify_certificate"},
			},
			expected: map[string]any{
				"method":  "tools/call",
				"params":  map[string]any{"name": "verify_certificate"},
				"jsonrpc": "2.0",
			},
		},
		{
			name: "preserves existing version",
			input: map[string]any{
				"jsonrpc": "2.0",
				"method":  "initialize",
			},
			expected: map[string]any{
				"jsonrpc": "2.0",
				"method":  "initialize",
			},
		},
		{
			name: "empty id object means notification",
			input: map[string]any{
				"id":     map[string]any{},
				"method": "notifications/initialized",
			},
			expected: map[string]any{
				"id":      nil,
				"method":  "notifications/initialized",
				"jsonrpc": "2.0",
			},
		},
		{
			name: "whole float id becomes int64",
			input: map[string]any{
				"ID":     float64(3),
				"method": "tools/list",
			},
			expected: map[string]any{
				"id":      int64(3),
				"method":  "tools/list",
				"jsonrpc": "2.0",
			},
		},
		{
			name: "fractional and string ids pass through",
			input: map[string]any{
				"id":     "req-7",
				"method": "resources/read",
			},
			expected: map[string]any{
				"id":      "req-7",
				"method":  "resources/read",
				"jsonrpc": "2.0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Map(tt.input))
		})
	}
}

func TestMapDecodedRequest(t *testing.T) {
	// json.Unmarshal hands ids over as float64; after Map the id must be
	// an int64 ready to echo back verbatim.
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"Id":42,"Method":"tools/list"}`), &decoded))

	fixed := Map(decoded)
	assert.Equal(t, int64(42), fixed["id"])
	assert.Equal(t, "tools/list", fixed["method"])
	assert.Equal(t, "2.0", fixed["jsonrpc"])
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, int64(5), normalizeID(float64(5)))
	assert.Equal(t, 2.5, normalizeID(2.5))
	assert.Equal(t, "abc", normalizeID("abc"))
	assert.Nil(t, normalizeID(map[string]any{}))
	assert.Equal(t, map[string]any{"x": 1}, normalizeID(map[string]any{"x": 1}))
}

func TestUnmarshalFromMap(t *testing.T) {
	type caps struct {
		Sampling map[string]any `json:"sampling"`
		Roots    *struct {
			ListChanged bool `json:"listChanged"`
		} `json:"roots"`
	}

	src := map[string]any{
		"sampling": map[string]any{},
		"roots":    map[string]any{"listChanged": true},
	}

	var dst caps
	require.NoError(t, UnmarshalFromMap(src, &dst))
	assert.NotNil(t, dst.Sampling)
	require.NotNil(t, dst.Roots)
	assert.True(t, dst.Roots.ListChanged)

	// Unmarshalable source must surface the marshal error.
	assert.Error(t, UnmarshalFromMap(func() {}, &dst))
}
