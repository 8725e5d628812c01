// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package jsonrpc

import (
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Map canonicalizes a decoded JSON-RPC request before it enters the
// in-memory transport's dispatch table: keys fold to lowercase, a missing
// "jsonrpc" field gets the protocol version, and "id" is normalized so
// the verifier echoes back the identifier the client actually sent.
//
// Agent harnesses are loose about casing ("Method", "Params"); dispatch
// matches exact lowercase names, so everything is folded first.
func Map(temp map[string]any) map[string]any {
	fixed := make(map[string]any, len(temp)+1)
	for k, v := range temp {
		key := strings.ToLower(k)
		if key == "id" {
			fixed["id"] = normalizeID(v)
			continue
		}
		fixed[key] = v
	}

	if _, ok := fixed["jsonrpc"]; !ok {
		fixed["jsonrpc"] = mcp.JSONRPC_VERSION
	}

	return fixed
}

// normalizeID keeps request identifiers round-trippable: an empty object
// counts as absent (a notification), and whole-number floats from
// json.Unmarshal become int64 so the echoed id is "3", not "3.000000".
func normalizeID(v any) any {
	if idMap, ok := v.(map[string]any); ok && len(idMap) == 0 {
		return nil
	}
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return int64(f)
	}
	return v
}

// UnmarshalFromMap converts loosely-typed JSON-RPC parameters (e.g., the
// capabilities object of an initialize request) into a typed struct via a
// JSON round-trip.
func UnmarshalFromMap(src any, dest any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
