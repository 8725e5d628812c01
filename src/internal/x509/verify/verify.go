// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package verify

import (
	encoding_asn1 "encoding/asn1"
	"fmt"
	"time"

	x509cert "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/cert"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/pathbuilder"
)

// VerifyPath checks one candidate path (target first, anchor last) against
// the options. On success it returns the effective certificate policy set;
// an empty set means no policy survived but none was required. On failure
// the error is a *ChainError attributing the rejection to one certificate.
func VerifyPath(path *pathbuilder.Path, opts *Options) ([]encoding_asn1.ObjectIdentifier, error) {
	if opts == nil {
		opts = &Options{}
	}
	v := &pathVerifier{
		path: path,
		opts: opts,
		now:  opts.verificationTime(),
	}
	policies, err := v.run()
	if err != nil {
		return nil, err
	}
	return policies, nil
}

// pathVerifier walks a path from the anchor toward the target, narrowing
// constraint state as it goes. The progress counter counts passed checks
// so that failures on different candidate paths can be ranked.
type pathVerifier struct {
	path *pathbuilder.Path
	opts *Options
	now  time.Time

	progress int

	// Accumulated name constraints from certificates closer to the anchor.
	constraints []*x509cert.NameConstraints

	// maxPathLen is the remaining number of non-self-issued intermediates
	// allowed below the current point.
	maxPathLen int

	// explicitPolicy is the countdown after which the valid policy set
	// must be non-empty. It starts above the path length so that only a
	// policyConstraints extension (or the caller) can arm it.
	explicitPolicy int

	// policies is the current valid policy set; anyPolicyValid means the
	// set is still universal.
	policies       []encoding_asn1.ObjectIdentifier
	anyPolicyValid bool
}

func (v *pathVerifier) fail(kind ErrorKind, index int, format string, args ...any) *ChainError {
	subject := ""
	if index >= 0 && index < len(v.path.Certs) {
		subject = v.path.Certs[index].Subject.String()
	}
	return &ChainError{
		Kind:      kind,
		CertIndex: index,
		Subject:   subject,
		Detail:    fmt.Sprintf(format, args...),
		progress:  v.progress,
	}
}

func (v *pathVerifier) pass() { v.progress++ }

func (v *pathVerifier) run() ([]encoding_asn1.ObjectIdentifier, *ChainError) {
	certs := v.path.Certs
	n := len(certs)
	anchorIdx := n - 1

	v.maxPathLen = n
	v.explicitPolicy = n + 1
	v.anyPolicyValid = true

	if err := v.processAnchor(anchorIdx); err != nil {
		return nil, err
	}

	for i := anchorIdx - 1; i >= 0; i-- {
		if err := v.processCert(i); err != nil {
			return nil, err
		}
	}

	if n == 1 {
		// The target is itself a trust anchor; it was handled as the
		// anchor above, but the target-side checks still apply.
		if err := v.checkValidity(0); err != nil {
			return nil, err
		}
		if err := v.checkEKU(0); err != nil {
			return nil, err
		}
		if unh := certs[0].UnhandledCriticalExtensions(); len(unh) > 0 {
			return nil, v.fail(KindUnhandledCriticalExtension, 0, "unhandled critical extension %v", unh[0])
		}
		v.pass()
	}

	if err := v.checkTargetRole(); err != nil {
		return nil, err
	}

	return v.wrapUpPolicies()
}

// processAnchor seeds constraint state from the trust anchor. The anchor
// itself is trusted by fiat, so its signature and validity are not
// checked, but anchor-level restrictions still bind the rest of the path.
func (v *pathVerifier) processAnchor(idx int) *ChainError {
	anchor := v.path.Anchor
	cert := v.path.Certs[idx]

	if anchor != nil && v.opts.RequiredEKU != nil && !anchor.PermitsEKU(v.opts.RequiredEKU) {
		return v.fail(KindEKUMismatch, idx, "trust anchor does not permit purpose %v", v.opts.RequiredEKU)
	}
	v.pass()

	switch {
	case anchor != nil && anchor.NameConstraints != nil:
		v.constraints = append(v.constraints, anchor.NameConstraints)
	default:
		nc, err := cert.NameConstraints()
		if err != nil {
			return v.fail(KindOther, idx, "nameConstraints: %v", err)
		}
		if nc != nil {
			v.constraints = append(v.constraints, nc)
		}
	}

	bc, err := cert.BasicConstraints()
	if err != nil {
		return v.fail(KindOther, idx, "basicConstraints: %v", err)
	}
	if bc != nil && bc.MaxPathLenPresent && bc.MaxPathLen < v.maxPathLen {
		v.maxPathLen = bc.MaxPathLen
	}
	return nil
}

// processCert runs the per-certificate checks for a non-anchor certificate
// at index i, whose issuer is at index i+1.
func (v *pathVerifier) processCert(i int) *ChainError {
	cert := v.path.Certs[i]
	issuer := v.path.Certs[i+1]
	isTarget := i == 0

	// Signature algorithm policy, then the signature itself.
	scheme := cert.SignatureScheme()
	if !v.opts.schemeAllowed(scheme) {
		return v.fail(KindAlgorithmDisallowed, i, "signature algorithm %s is not allowed", scheme)
	}
	v.pass()

	if err := cert.CheckSignatureFrom(issuer); err != nil {
		return v.fail(KindSignatureInvalid, i, "signature by %s does not verify: %v", issuer.Subject, err)
	}
	v.pass()

	if err := v.checkValidity(i); err != nil {
		return err
	}

	// The issuer must actually be a CA able to sign this certificate.
	if err := v.checkIssuerAuthority(i); err != nil {
		return err
	}

	// Name constraints accumulated so far apply to this certificate,
	// except to self-issued intermediates (RFC 5280 gives CAs a pass when
	// reissuing their own certificate).
	if isTarget || !cert.IsSelfIssued() {
		if err := v.checkNameConstraints(i); err != nil {
			return err
		}
	}
	v.pass()

	if err := v.checkEKU(i); err != nil {
		return err
	}

	if err := v.updatePolicies(i, isTarget); err != nil {
		return err
	}

	if unh := cert.UnhandledCriticalExtensions(); len(unh) > 0 {
		return v.fail(KindUnhandledCriticalExtension, i, "unhandled critical extension %v", unh[0])
	}
	v.pass()

	if !isTarget {
		if err := v.absorbCAConstraints(i); err != nil {
			return err
		}
	}
	return nil
}

func (v *pathVerifier) checkValidity(i int) *ChainError {
	cert := v.path.Certs[i]
	if v.now.Before(cert.NotBefore) {
		return v.fail(KindNotYetValid, i, "not valid before %s", cert.NotBefore.Format(time.RFC3339))
	}
	if v.now.After(cert.NotAfter) {
		return v.fail(KindExpired, i, "expired at %s", cert.NotAfter.Format(time.RFC3339))
	}
	v.pass()
	return nil
}

// checkIssuerAuthority verifies the certificate at i+1 is entitled to
// issue the certificate at i: basicConstraints cA, keyCertSign when
// keyUsage is present, and the remaining path length budget.
func (v *pathVerifier) checkIssuerAuthority(i int) *ChainError {
	issuerIdx := i + 1
	issuer := v.path.Certs[issuerIdx]

	bc, err := issuer.BasicConstraints()
	if err != nil {
		return v.fail(KindOther, issuerIdx, "basicConstraints: %v", err)
	}
	if bc == nil || !bc.IsCA {
		return v.fail(KindNotCA, issuerIdx, "issuer is not a CA")
	}
	v.pass()

	ku, present, err := issuer.KeyUsage()
	if err != nil {
		return v.fail(KindOther, issuerIdx, "keyUsage: %v", err)
	}
	if present && ku&x509cert.KeyUsageCertSign == 0 {
		return v.fail(KindNotCA, issuerIdx, "issuer keyUsage lacks keyCertSign")
	}
	v.pass()
	return nil
}

// absorbCAConstraints consumes path length budget for a non-target
// certificate and merges its own constraints into the state that will
// apply to everything closer to the target.
func (v *pathVerifier) absorbCAConstraints(i int) *ChainError {
	cert := v.path.Certs[i]

	if !cert.IsSelfIssued() {
		if v.maxPathLen <= 0 {
			return v.fail(KindPathLenExceeded, i, "pathLenConstraint exhausted")
		}
		v.maxPathLen--
	}
	v.pass()

	bc, err := cert.BasicConstraints()
	if err != nil {
		return v.fail(KindOther, i, "basicConstraints: %v", err)
	}
	if bc != nil && bc.MaxPathLenPresent && bc.MaxPathLen < v.maxPathLen {
		v.maxPathLen = bc.MaxPathLen
	}

	nc, err := cert.NameConstraints()
	if err != nil {
		return v.fail(KindOther, i, "nameConstraints: %v", err)
	}
	if nc != nil {
		ext, _ := cert.Extension(x509cert.OIDExtensionNameConstraints)
		if ext.Critical && constraintsUnsupported(nc) {
			return v.fail(KindNameConstraintViolation, i, "critical nameConstraints uses an unsupported name form")
		}
		v.constraints = append(v.constraints, nc)
	}
	return nil
}

func constraintsUnsupported(nc *x509cert.NameConstraints) bool {
	if nc.Permitted != nil && nc.Permitted.HasUnsupportedConstraintTypes() {
		return true
	}
	if nc.Excluded != nil && nc.Excluded.HasUnsupportedConstraintTypes() {
		return true
	}
	return false
}

func (v *pathVerifier) checkEKU(i int) *ChainError {
	if v.opts.RequiredEKU == nil {
		return nil
	}
	cert := v.path.Certs[i]
	ekus, present, err := cert.ExtendedKeyUsage()
	if err != nil {
		return v.fail(KindOther, i, "extKeyUsage: %v", err)
	}
	if !present {
		// Absence means valid for any purpose.
		v.pass()
		return nil
	}
	for _, eku := range ekus {
		if eku.Equal(v.opts.RequiredEKU) || eku.Equal(x509cert.OIDAnyExtendedKeyUsage) {
			v.pass()
			return nil
		}
	}
	return v.fail(KindEKUMismatch, i, "purpose %v not in extKeyUsage", v.opts.RequiredEKU)
}

// checkTargetRole applies the optional end-entity requirement to the
// target certificate.
func (v *pathVerifier) checkTargetRole() *ChainError {
	if !v.opts.RequireEndEntity {
		return nil
	}
	target := v.path.Certs[0]
	bc, err := target.BasicConstraints()
	if err != nil {
		return v.fail(KindOther, 0, "basicConstraints: %v", err)
	}
	if bc != nil && bc.IsCA {
		return v.fail(KindNotCA, 0, "target is a CA certificate, end entity required")
	}
	v.pass()
	return nil
}
