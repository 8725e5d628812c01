// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package pathbuilder enumerates candidate certification paths from a
// target certificate to a trust anchor, walking issuer/subject name links
// through a pool of untrusted intermediates.
//
// Building is separate from verification: the [Builder] only asks "whose
// subject matches this issuer name", never whether signatures or validity
// actually hold, and produces paths lazily as an iter.Seq so the verifier
// stops pulling the moment one path validates. Cross-signed hierarchies
// make the issuer graph a real graph (including cycles), which is why the
// walk keeps a per-branch visited set and a depth cap instead of assuming
// a tree.
//
// Reference:
//   - Cross-signed certificates: https://grokipedia.com/page/X.509
//   - RFC 5280 Section 6 (path validation preconditions): https://www.rfc-editor.org/rfc/rfc5280
package pathbuilder
