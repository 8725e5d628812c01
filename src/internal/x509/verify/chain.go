// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package verify

import (
	encoding_asn1 "encoding/asn1"

	x509cert "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/cert"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/pathbuilder"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/truststore"
)

// Result is a successful chain verification.
type Result struct {
	// Path is the first candidate path that validated, target first,
	// trust anchor last.
	Path *pathbuilder.Path

	// Policies is the effective certificate policy set for the path.
	// [x509cert.OIDAnyPolicy] alone means no certificate restricted
	// policies anywhere on the path.
	Policies []encoding_asn1.ObjectIdentifier

	// PathsTried counts candidate paths checked before this one
	// succeeded.
	PathsTried int

	// PoolErrors holds decode errors from intermediate pool entries that
	// were skipped during building. They did not affect the outcome.
	PoolErrors []error
}

// VerifyChain builds and verifies certification paths for the target until
// one validates. Candidate paths come from the builder in its deterministic
// order and the first fully valid one wins; there is no partial success.
//
// When every candidate fails, the returned error is the *ChainError from
// the path that progressed furthest before failing (ties go to the
// earliest path), so the diagnostic names the most plausible chain rather
// than an arbitrary one.
func VerifyChain(target *x509cert.Certificate, pool *pathbuilder.Pool, store *truststore.Store, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}

	builder := pathbuilder.New(target, pool, store)
	builder.MaxDepth = opts.MaxDepth

	var (
		tried int
		best  *ChainError
	)
	for path := range builder.Paths() {
		tried++
		policies, err := VerifyPath(path, opts)
		if err == nil {
			return &Result{
				Path:       path,
				Policies:   policies,
				PathsTried: tried - 1,
				PoolErrors: poolErrors(pool),
			}, nil
		}
		ce := err.(*ChainError)
		if best == nil || ce.progress > best.progress {
			best = ce
		}
	}

	if best != nil {
		return nil, best
	}

	subject := ""
	if target != nil {
		subject = target.Subject.String()
	}
	return nil, &ChainError{
		Kind:      KindOther,
		CertIndex: 0,
		Subject:   subject,
		Detail:    "no path to a trust anchor",
	}
}

func poolErrors(pool *pathbuilder.Pool) []error {
	if pool == nil {
		return nil
	}
	return pool.Errors()
}
