// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package verify

import "fmt"

// ErrorKind classifies why a candidate path was rejected.
type ErrorKind int

const (
	// KindOther covers failures with no more specific classification,
	// including "no path to a trust anchor" and extension decode errors
	// surfaced during checking.
	KindOther ErrorKind = iota

	// KindExpired means notAfter is before the verification time.
	KindExpired

	// KindNotYetValid means notBefore is after the verification time.
	KindNotYetValid

	// KindSignatureInvalid means a certificate's signature did not verify
	// under its issuer's public key.
	KindSignatureInvalid

	// KindNotCA means a certificate does not have the role its position
	// requires: an issuer missing basicConstraints cA or keyCertSign in
	// keyUsage, or a CA certificate as the target when the end-entity
	// requirement is on.
	KindNotCA

	// KindPathLenExceeded means a pathLenConstraint along the path was
	// violated.
	KindPathLenExceeded

	// KindEKUMismatch means the required purpose is not in a certificate's
	// extendedKeyUsage, or the trust anchor does not permit it.
	KindEKUMismatch

	// KindNameConstraintViolation means a subject or subject alternative
	// name fell outside the permitted subtrees or inside the excluded
	// subtrees imposed by an issuer, or a critical nameConstraints
	// extension used a name form that cannot be evaluated.
	KindNameConstraintViolation

	// KindUnhandledCriticalExtension means a certificate carries a
	// critical extension this verifier does not process.
	KindUnhandledCriticalExtension

	// KindPolicyRejected means explicit policy was required and the valid
	// policy set became empty.
	KindPolicyRejected

	// KindAlgorithmDisallowed means a certificate's signature algorithm is
	// outside the configured allowlist (by default, SHA-1 schemes and
	// unrecognized algorithms).
	KindAlgorithmDisallowed
)

// String returns the kind as a short stable token, suitable for JSON
// output and log fields.
func (k ErrorKind) String() string {
	switch k {
	case KindExpired:
		return "expired"
	case KindNotYetValid:
		return "not_yet_valid"
	case KindSignatureInvalid:
		return "signature_invalid"
	case KindNotCA:
		return "not_ca"
	case KindPathLenExceeded:
		return "path_len_exceeded"
	case KindEKUMismatch:
		return "eku_mismatch"
	case KindNameConstraintViolation:
		return "name_constraint_violation"
	case KindUnhandledCriticalExtension:
		return "unhandled_critical_extension"
	case KindPolicyRejected:
		return "policy_rejected"
	case KindAlgorithmDisallowed:
		return "algorithm_disallowed"
	default:
		return "other"
	}
}

// ChainError is a path rejection attributed to one certificate.
type ChainError struct {
	Kind ErrorKind

	// CertIndex is the offending certificate's position in the path,
	// target first (index 0 is always the certificate being verified).
	CertIndex int

	// Subject is the offending certificate's subject, rendered for
	// diagnostics.
	Subject string

	// Detail describes the specific failure.
	Detail string

	// progress is the number of checks that passed before this failure,
	// used to rank failures across candidate paths.
	progress int
}

// Error implements the error interface.
func (e *ChainError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("x509 verify: certificate %d: %s: %s", e.CertIndex, e.Kind, e.Detail)
	}
	return fmt.Sprintf("x509 verify: certificate %d (%s): %s: %s", e.CertIndex, e.Subject, e.Kind, e.Detail)
}
