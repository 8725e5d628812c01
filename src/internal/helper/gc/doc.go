// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package gc pools byte buffers over [bytebufferpool] so the verifier's
// hot read paths (chain files, anchor bundles, MCP tool payloads) reuse
// allocations instead of churning the garbage collector.
//
// [bytebufferpool]: https://github.com/valyala/bytebufferpool
package gc
