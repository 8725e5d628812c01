// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package verify

import (
	encoding_asn1 "encoding/asn1"

	x509cert "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/cert"
)

// updatePolicies narrows the valid policy set with the certificate at
// index i and advances the explicit-policy countdown. The set starts
// universal (anyPolicy); a certificate asserting anyPolicy leaves the set
// unchanged, and a certificate with no certificatePolicies extension
// empties it. An empty set is only fatal once explicit policy is armed.
func (v *pathVerifier) updatePolicies(i int, isTarget bool) *ChainError {
	cert := v.path.Certs[i]

	certPolicies, present, err := cert.CertificatePolicies()
	if err != nil {
		return v.fail(KindOther, i, "certificatePolicies: %v", err)
	}

	switch {
	case !present:
		v.policies = nil
		v.anyPolicyValid = false
	case containsOID(certPolicies, x509cert.OIDAnyPolicy):
		// anyPolicy asserts everything; the running set is unchanged.
	case v.anyPolicyValid:
		v.policies = withoutAnyPolicy(certPolicies)
		v.anyPolicyValid = false
	default:
		v.policies = intersectOIDs(v.policies, certPolicies)
	}

	// The emptiness check uses the countdown as it stood before this
	// certificate: a requireExplicitPolicy asserted here binds the
	// certificates that follow, not the asserting certificate itself.
	if v.explicitPolicy == 0 && !v.anyPolicyValid && len(v.policies) == 0 {
		return v.fail(KindPolicyRejected, i, "explicit policy required but the valid policy set is empty")
	}
	v.pass()

	// Countdown and re-arming per RFC 5280 6.1.3/6.1.4. Self-issued
	// intermediates do not consume the counter.
	if isTarget || !cert.IsSelfIssued() {
		if v.explicitPolicy > 0 {
			v.explicitPolicy--
		}
	}
	pc, err := cert.PolicyConstraints()
	if err != nil {
		return v.fail(KindOther, i, "policyConstraints: %v", err)
	}
	if pc != nil && pc.RequireExplicitPolicyPresent && pc.RequireExplicitPolicy < v.explicitPolicy {
		v.explicitPolicy = pc.RequireExplicitPolicy
	}
	return nil
}

// wrapUpPolicies intersects the valid policy set with the user initial
// policy set and returns the effective policies for the result. With no
// initial policies the running set is returned as is (anyPolicy stands in
// for the universal set).
func (v *pathVerifier) wrapUpPolicies() ([]encoding_asn1.ObjectIdentifier, *ChainError) {
	effective := v.policies
	if v.anyPolicyValid {
		effective = []encoding_asn1.ObjectIdentifier{x509cert.OIDAnyPolicy}
	}

	if len(v.opts.InitialPolicies) > 0 {
		if v.anyPolicyValid {
			effective = v.opts.InitialPolicies
		} else {
			effective = intersectOIDs(effective, v.opts.InitialPolicies)
		}
		if v.explicitPolicy == 0 && len(effective) == 0 {
			return nil, v.fail(KindPolicyRejected, 0, "no certificate policy matches the initial policy set")
		}
	}
	v.pass()
	return effective, nil
}

func containsOID(set []encoding_asn1.ObjectIdentifier, oid encoding_asn1.ObjectIdentifier) bool {
	for _, member := range set {
		if member.Equal(oid) {
			return true
		}
	}
	return false
}

func withoutAnyPolicy(set []encoding_asn1.ObjectIdentifier) []encoding_asn1.ObjectIdentifier {
	out := make([]encoding_asn1.ObjectIdentifier, 0, len(set))
	for _, member := range set {
		if !member.Equal(x509cert.OIDAnyPolicy) {
			out = append(out, member)
		}
	}
	return out
}

func intersectOIDs(a, b []encoding_asn1.ObjectIdentifier) []encoding_asn1.ObjectIdentifier {
	var out []encoding_asn1.ObjectIdentifier
	for _, member := range a {
		if containsOID(b, member) {
			out = append(out, member)
		}
	}
	return out
}
