// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package verify implements X.509 certification path verification per
// RFC 5280 section 6: signature chaining, validity windows, CA authority
// (basicConstraints, keyCertSign, pathLenConstraint), extended key usage,
// name constraints, certificate policies, and rejection of unrecognized
// critical extensions.
//
// [VerifyPath] checks a single candidate path produced by the pathbuilder
// package; [VerifyChain] drives the builder and verifier together,
// returning the first path that validates. Every rejection is a
// [*ChainError] naming the offending certificate by index and subject,
// and when all candidates fail the chain verdict keeps the failure from
// the path that got furthest, which is almost always the one the caller
// actually meant to present.
//
// Revocation (CRL/OCSP) is out of scope here; a path that verifies is
// cryptographically and structurally valid at the chosen time, nothing
// more.
//
// Reference:
//   - RFC 5280 Section 6 (certification path validation): https://www.rfc-editor.org/rfc/rfc5280
//   - Certification path validation: https://grokipedia.com/page/Certification_path_validation_algorithm
package verify
