// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package verify

import (
	encoding_asn1 "encoding/asn1"
	"time"

	x509cert "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/cert"
	"github.com/jmhodges/clock"
)

// Options configures path verification. The zero value verifies at the
// current time, for any purpose, with the default signature algorithm
// allowlist.
type Options struct {
	// Time is the verification time. When zero, Clock.Now() is used.
	Time time.Time

	// Clock supplies the current time when Time is zero. When nil, a
	// real-time clock is used; tests substitute a fake.
	Clock clock.Clock

	// RequiredEKU is the purpose the chain must be valid for (e.g.,
	// id-kp-serverAuth). Nil means any purpose. A certificate without an
	// extendedKeyUsage extension is valid for all purposes, and
	// anyExtendedKeyUsage satisfies every requirement.
	RequiredEKU encoding_asn1.ObjectIdentifier

	// RequireEndEntity rejects paths whose target is itself a CA
	// certificate. Off by default: verifying a CA certificate as the
	// target is a legitimate operation.
	RequireEndEntity bool

	// AllowedSignatureSchemes restricts the signature algorithms accepted
	// along the path. Nil means every supported scheme except the SHA-1
	// variants.
	AllowedSignatureSchemes []x509cert.SignatureScheme

	// InitialPolicies is the user initial policy set. When non-empty, a
	// path that requires explicit policy must end with at least one of
	// these in its valid policy set.
	InitialPolicies []encoding_asn1.ObjectIdentifier

	// MaxDepth caps candidate path length during building. Zero means
	// pathbuilder.DefaultMaxDepth.
	MaxDepth int
}

// verificationTime resolves the effective verification time.
func (o *Options) verificationTime() time.Time {
	if !o.Time.IsZero() {
		return o.Time
	}
	clk := o.Clock
	if clk == nil {
		clk = clock.New()
	}
	return clk.Now()
}

// schemeAllowed reports whether a signature scheme passes the allowlist.
func (o *Options) schemeAllowed(s x509cert.SignatureScheme) bool {
	if s == x509cert.UnknownScheme {
		return false
	}
	if o.AllowedSignatureSchemes == nil {
		return !s.Insecure()
	}
	for _, allowed := range o.AllowedSignatureSchemes {
		if s == allowed {
			return true
		}
	}
	return false
}
