// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package certcache provides an LRU cache of strictly parsed certificates
// keyed by the SHA-256 digest of their DER encoding.
//
// Long-running callers such as the MCP server decode the same anchors and
// intermediates over and over; caching the parsed model skips the repeat
// DER walk. Because the strict parser is deterministic, a digest hit is
// always safe to serve.
//
// References:
//   - LRU: https://grokipedia.com/page/Cache_replacement_policies
//   - SHA-256: https://grokipedia.com/page/SHA-2
package certcache
