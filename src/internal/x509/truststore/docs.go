// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package truststore holds the set of trust anchors ([Anchor]) that chain
// verification terminates at. Anchors are certificates designated as
// trusted roots; an anchor may additionally carry its own extended key
// usage restrictions or name constraints that apply to every path ending
// at it, regardless of what the certificate itself encodes.
//
// The [Store] preserves insertion order and lookups return anchors in that
// order, which keeps path building deterministic when several anchors
// share a subject name (e.g., a root and its cross-signed reissue).
//
// Reference:
//   - RFC 5280 Section 6.1.1 (trust anchor information): https://www.rfc-editor.org/rfc/rfc5280
package truststore
