// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package jsonrpc normalizes [JSON-RPC 2.0] messages crossing the
// verifier's in-memory agent bridge: lowercase key folding, id
// normalization, and conversion of loose parameter maps into typed
// structs.
//
// [JSON-RPC 2.0]: https://www.jsonrpc.org/specification
package jsonrpc
