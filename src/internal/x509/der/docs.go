// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509der provides strict [DER] reading primitives on top of
// [cryptobyte]. The certificate decoder is built on these helpers so that
// every encoding it accepts is canonical: indefinite lengths, non-minimal
// length octets, padded integers, and trailing bytes are all rejected
// rather than tolerated.
//
// [DER]: https://grokipedia.com/page/X.690#der-distinguished-encoding-rules
// [cryptobyte]: https://pkg.go.dev/golang.org/x/crypto/cryptobyte
package x509der
