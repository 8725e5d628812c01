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

// buildTestTransport builds an in-memory transport with the default tool
// set and registers cleanup.
func buildTestTransport(t *testing.T) *InMemoryTransport {
	t.Helper()
	t.Setenv("MCP_X509_CONFIG_FILE", "")
	t.Setenv("X509_AI_APIKEY", "")

	built, err := NewTransportBuilder().
		WithVersion("test").
		WithDefaultTools().
		BuildInMemoryTransport(context.Background())
	require.NoError(t, err)

	transport, ok := built.(*InMemoryTransport)
	require.True(t, ok, "expected *InMemoryTransport, got %T", built)
	t.Cleanup(func() { _ = transport.Close() })
	return transport
}

// roundTrip writes a JSON-RPC request and decodes the next response.
func roundTrip(t *testing.T, transport *InMemoryTransport, request map[string]any) map[string]any {
	t.Helper()
	data, err := json.Marshal(request)
	require.NoError(t, err)
	require.NoError(t, transport.WriteMessage(data))

	respData, err := transport.ReadMessage()
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(respData, &resp))
	return resp
}

func initializeTransport(t *testing.T, transport *InMemoryTransport) map[string]any {
	t.Helper()
	return roundTrip(t, transport, map[string]any{
		"jsonrpc": mcp.JSONRPC_VERSION,
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
			"capabilities":    map[string]any{},
		},
	})
}

func TestInMemoryTransportInitialize(t *testing.T) {
	transport := buildTestTransport(t)

	resp := initializeTransport(t, transport)
	assert.Equal(t, mcp.JSONRPC_VERSION, resp["jsonrpc"])
	assert.Equal(t, float64(1), resp["id"])
	require.Nil(t, resp["error"])

	result, ok := resp["result"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, result["protocolVersion"])
}

func TestInMemoryTransportToolsList(t *testing.T) {
	transport := buildTestTransport(t)
	initializeTransport(t, transport)

	resp := roundTrip(t, transport, map[string]any{
		"jsonrpc": mcp.JSONRPC_VERSION,
		"id":      2,
		"method":  "tools/list",
	})
	require.Nil(t, resp["error"])

	result, ok := resp["result"].(map[string]any)
	require.True(t, ok)
	tools, ok := result["tools"].([]any)
	require.True(t, ok)
	assert.Len(t, tools, 6)

	names := make([]string, 0, len(tools))
	for _, raw := range tools {
		tool, ok := raw.(map[string]any)
		require.True(t, ok)
		name, _ := tool["name"].(string)
		names = append(names, name)
	}
	assert.Contains(t, names, "verify_cert_chain")
	assert.Contains(t, names, "decode_certificate")
	assert.Contains(t, names, "check_cert_expiry")
}

func TestInMemoryTransportToolsCall(t *testing.T) {
	transport := buildTestTransport(t)
	initializeTransport(t, transport)

	resp := roundTrip(t, transport, map[string]any{
		"jsonrpc": mcp.JSONRPC_VERSION,
		"id":      3,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      "get_resource_usage",
			"arguments": map[string]any{},
		},
	})
	require.Nil(t, resp["error"])

	result, ok := resp["result"].(map[string]any)
	require.True(t, ok)
	content, ok := result["content"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, content)
}

func TestInMemoryTransportResourcesAndPrompts(t *testing.T) {
	transport := buildTestTransport(t)
	initializeTransport(t, transport)

	t.Run("ResourcesList", func(t *testing.T) {
		resp := roundTrip(t, transport, map[string]any{
			"jsonrpc": mcp.JSONRPC_VERSION,
			"id":      4,
			"method":  "resources/list",
		})
		require.Nil(t, resp["error"])
		result, ok := resp["result"].(map[string]any)
		require.True(t, ok)
		resources, ok := result["resources"].([]any)
		require.True(t, ok)
		assert.NotEmpty(t, resources)
	})

	t.Run("ResourcesRead", func(t *testing.T) {
		resp := roundTrip(t, transport, map[string]any{
			"jsonrpc": mcp.JSONRPC_VERSION,
			"id":      5,
			"method":  "resources/read",
			"params":  map[string]any{"uri": "config://template"},
		})
		require.Nil(t, resp["error"])
		result, ok := resp["result"].(map[string]any)
		require.True(t, ok)
		contents, ok := result["contents"].([]any)
		require.True(t, ok)
		require.NotEmpty(t, contents)
	})

	t.Run("PromptsList", func(t *testing.T) {
		resp := roundTrip(t, transport, map[string]any{
			"jsonrpc": mcp.JSONRPC_VERSION,
			"id":      6,
			"method":  "prompts/list",
		})
		require.Nil(t, resp["error"])
		result, ok := resp["result"].(map[string]any)
		require.True(t, ok)
		prompts, ok := result["prompts"].([]any)
		require.True(t, ok)
		assert.Len(t, prompts, 3)
	})

	t.Run("PromptsGet", func(t *testing.T) {
		resp := roundTrip(t, transport, map[string]any{
			"jsonrpc": mcp.JSONRPC_VERSION,
			"id":      7,
			"method":  "prompts/get",
			"params": map[string]any{
				"name":      "troubleshooting",
				"arguments": map[string]any{"issue_type": "untrusted"},
			},
		})
		require.Nil(t, resp["error"])
		result, ok := resp["result"].(map[string]any)
		require.True(t, ok)
		messages, ok := result["messages"].([]any)
		require.True(t, ok)
		assert.NotEmpty(t, messages)
	})
}

func TestInMemoryTransportErrors(t *testing.T) {
	transport := buildTestTransport(t)
	initializeTransport(t, transport)

	t.Run("ParseError", func(t *testing.T) {
		require.NoError(t, transport.WriteMessage([]byte("{not json")))
		respData, err := transport.ReadMessage()
		require.NoError(t, err)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(respData, &resp))
		errObj, ok := resp["error"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(-32700), errObj["code"])
	})

	t.Run("UnknownMethod", func(t *testing.T) {
		resp := roundTrip(t, transport, map[string]any{
			"jsonrpc": mcp.JSONRPC_VERSION,
			"id":      8,
			"method":  "certificates/teleport",
		})
		errObj, ok := resp["error"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(-32603), errObj["code"])
		assert.Contains(t, errObj["message"], "method not supported")
	})

	t.Run("MissingParams", func(t *testing.T) {
		resp := roundTrip(t, transport, map[string]any{
			"jsonrpc": mcp.JSONRPC_VERSION,
			"id":      9,
			"method":  "resources/read",
		})
		errObj, ok := resp["error"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(-32602), errObj["code"])
	})
}

func TestInMemoryTransportNotificationsGetNoReply(t *testing.T) {
	transport := buildTestTransport(t)
	initializeTransport(t, transport)

	// A notification must not produce a response; the next read must be
	// the reply to the ping that follows it.
	notification, err := json.Marshal(map[string]any{
		"jsonrpc": mcp.JSONRPC_VERSION,
		"method":  "notifications/initialized",
	})
	require.NoError(t, err)
	require.NoError(t, transport.WriteMessage(notification))

	resp := roundTrip(t, transport, map[string]any{
		"jsonrpc": mcp.JSONRPC_VERSION,
		"id":      10,
		"method":  "ping",
	})
	assert.Equal(t, float64(10), resp["id"])
	require.Nil(t, resp["error"])
}

func TestInMemoryTransportDoubleConnect(t *testing.T) {
	t.Setenv("MCP_X509_CONFIG_FILE", "")
	t.Setenv("X509_AI_APIKEY", "")

	srv, err := NewServerBuilder().WithVersion("test").WithDefaultTools().Build()
	require.NoError(t, err)

	transport := NewInMemoryTransport(context.Background())
	t.Cleanup(func() { _ = transport.Close() })

	require.NoError(t, transport.ConnectServer(context.Background(), srv))
	err = transport.ConnectServer(context.Background(), srv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already connected")
}

func TestADKTransportConnectionSessionID(t *testing.T) {
	transport := buildTestTransport(t)

	conn, err := transport.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "in-memory-transport", conn.SessionID())
}
