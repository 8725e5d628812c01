// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readResourceText(t *testing.T, contents []mcp.ResourceContents) mcp.TextResourceContents {
	t.Helper()
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok, "expected text resource contents, got %T", contents[0])
	return text
}

func TestHandleConfigResource(t *testing.T) {
	contents, err := handleConfigResource(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)

	text := readResourceText(t, contents)
	assert.Equal(t, "config://template", text.URI)
	assert.Equal(t, "application/json", text.MIMEType)

	var cfg map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &cfg))

	defaults, ok := cfg["defaults"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(30), defaults["warnDays"])
	assert.Equal(t, "tree", defaults["reportFormat"])

	ai, ok := cfg["ai"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://api.x.ai", ai["endpoint"])
	assert.Equal(t, "grok-4-1-fast-non-reasoning", ai["model"])
}

func TestHandleVersionResource(t *testing.T) {
	tools, toolsWithConfig := createTools()
	populateCapabilityCache(tools, toolsWithConfig, createPrompts(), createResources())

	contents, err := handleVersionResource(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)

	text := readResourceText(t, contents)
	assert.Equal(t, "info://version", text.URI)
	assert.Equal(t, "application/json", text.MIMEType)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &info))

	assert.Equal(t, "X509 Chain Verifier", info["name"])
	assert.Equal(t, "MCP Server", info["type"])

	formats, ok := info["supportedInputFormats"].([]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []any{"pem", "der", "pkcs7", "pkcs12"}, formats)

	caps, ok := info["capabilities"].(map[string]any)
	require.True(t, ok)
	capTools, ok := caps["tools"].([]any)
	require.True(t, ok)
	assert.Len(t, capTools, len(tools)+len(toolsWithConfig))
}

func TestHandleCertificateFormatsResource(t *testing.T) {
	contents, err := handleCertificateFormatsResource(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)

	text := readResourceText(t, contents)
	assert.Equal(t, "docs://certificate-formats", text.URI)
	assert.Equal(t, "text/markdown", text.MIMEType)
	assert.Contains(t, text.Text, "PEM")
	assert.Contains(t, text.Text, "DER")
}

func TestHandleErrorKindsResource(t *testing.T) {
	contents, err := handleErrorKindsResource(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)

	text := readResourceText(t, contents)
	assert.Equal(t, "docs://error-kinds", text.URI)
	assert.Equal(t, "application/json", text.MIMEType)

	var doc struct {
		ErrorKinds []struct {
			Kind        string `json:"kind"`
			Description string `json:"description"`
		} `json:"errorKinds"`
	}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &doc))
	require.NotEmpty(t, doc.ErrorKinds)

	kinds := make([]string, 0, len(doc.ErrorKinds))
	for _, entry := range doc.ErrorKinds {
		assert.NotEmpty(t, entry.Description)
		kinds = append(kinds, entry.Kind)
	}
	assert.Contains(t, kinds, "expired")
	assert.Contains(t, kinds, "signature_invalid")
	assert.Contains(t, kinds, "name_constraint_violation")
	assert.Contains(t, kinds, "other")
}

func TestHandleStatusResource(t *testing.T) {
	tools, toolsWithConfig := createTools()
	populateCapabilityCache(tools, toolsWithConfig, createPrompts(), createResources())

	contents, err := handleStatusResource(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)

	text := readResourceText(t, contents)
	assert.Equal(t, "status://server-status", text.URI)

	var status map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &status))

	assert.Equal(t, "healthy", status["status"])
	assert.NotEmpty(t, status["timestamp"])

	cache, ok := status["certCache"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"size", "hits", "misses", "evictions"} {
		assert.Contains(t, cache, key)
	}
}
