// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// getParams extracts the parameters object from a normalized JSON-RPC
// request map. Used by the in-memory transport dispatch.
func getParams(req map[string]any, method string) (map[string]any, error) {
	p, ok := req["params"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid params for %s", method)
	}
	return p, nil
}

// getArguments extracts the arguments map from a tool call request.
//
// Parameters:
//   - request: Incoming tool call request
//
// Returns:
//   - map[string]any: Tool arguments (never nil)
//   - error: Error when the arguments are not a JSON object
func getArguments(request mcp.CallToolRequest) (map[string]any, error) {
	if request.Params.Arguments == nil {
		return map[string]any{}, nil
	}
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid arguments: expected an object, got %T", request.Params.Arguments)
	}
	return args, nil
}

// getStringParam returns a required string argument.
func getStringParam(params map[string]any, key string) (string, error) {
	v, ok := params[key]
	if !ok {
		return "", fmt.Errorf("missing required parameter %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q must be a string, got %T", key, v)
	}
	if s == "" {
		return "", fmt.Errorf("parameter %q must not be empty", key)
	}
	return s, nil
}

// getOptionalStringParam returns a string argument or the fallback when the
// key is absent or empty. A present value of the wrong type is still an
// error.
func getOptionalStringParam(params map[string]any, key, fallback string) (string, error) {
	v, ok := params[key]
	if !ok {
		return fallback, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q must be a string, got %T", key, v)
	}
	if s == "" {
		return fallback, nil
	}
	return s, nil
}

// getMapParam returns an object argument as a map. An absent key yields an
// empty map.
func getMapParam(params map[string]any, key string) (map[string]any, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return map[string]any{}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parameter %q must be an object, got %T", key, v)
	}
	return m, nil
}

// getOptionalBoolParam returns a boolean argument or the fallback when the
// key is absent.
func getOptionalBoolParam(params map[string]any, key string, fallback bool) (bool, error) {
	v, ok := params[key]
	if !ok {
		return fallback, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("parameter %q must be a boolean, got %T", key, v)
	}
	return b, nil
}

// getOptionalNumberParam returns a numeric argument or the fallback when
// the key is absent. JSON numbers arrive as float64.
func getOptionalNumberParam(params map[string]any, key string, fallback float64) (float64, error) {
	v, ok := params[key]
	if !ok {
		return fallback, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("parameter %q must be a number, got %T", key, v)
	}
	return f, nil
}
