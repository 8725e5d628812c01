// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509cert implements the certificate model used by the chain
// verifier: a strict DER decoder producing immutable [Certificate] values,
// typed views over the standard extensions, [X.501] name comparison, and
// signature verification over the exact signed byte range.
//
// Unlike the standard library parser, decoding here is uncompromisingly
// [DER]: indefinite lengths, non-minimal encodings, explicitly encoded
// defaults, and trailing bytes are all typed decode failures. The original
// encoding is retained verbatim so re-serialization can never drift from
// the bytes the signature covers.
//
// [X.501]: https://grokipedia.com/page/X.500
// [DER]: https://grokipedia.com/page/X.690#der-distinguished-encoding-rules
package x509cert
