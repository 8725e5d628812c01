// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package truststore

import (
	encoding_asn1 "encoding/asn1"
	"sync"

	x509cert "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/cert"
)

// Anchor is one trust anchor: a certificate designated as an unconditionally
// trusted root, plus optional anchor-level constraints that override or
// augment what the certificate itself declares.
type Anchor struct {
	Cert *x509cert.Certificate

	// AllowedEKUs, when non-empty, restricts the purposes any path
	// terminating at this anchor may be validated for.
	AllowedEKUs []encoding_asn1.ObjectIdentifier

	// NameConstraints, when non-nil, applies as if the anchor certificate
	// carried this nameConstraints extension.
	NameConstraints *x509cert.NameConstraints
}

// PermitsEKU reports whether the anchor allows validation for the given
// purpose. An anchor without EKU restrictions permits everything.
func (a *Anchor) PermitsEKU(eku encoding_asn1.ObjectIdentifier) bool {
	if len(a.AllowedEKUs) == 0 || eku == nil {
		return true
	}
	for _, allowed := range a.AllowedEKUs {
		if allowed.Equal(eku) || allowed.Equal(x509cert.OIDAnyExtendedKeyUsage) {
			return true
		}
	}
	return false
}

// Store holds the trust anchors available to path building. Anchors keep
// their insertion order, which is the order FindAnchors returns them in;
// path-building determinism depends on it.
//
// A Store is safe for concurrent readers. It must not be mutated while a
// verification that references it is in flight; callers serialize updates
// externally.
type Store struct {
	mu      sync.RWMutex
	anchors []*Anchor
}

// New creates an empty trust store.
func New() *Store {
	return &Store{}
}

// Add appends an anchor to the store. A nil anchor or one without a
// certificate is ignored. Duplicates (same encoded certificate) are
// ignored so re-loading a root bundle is harmless.
func (s *Store) Add(anchor *Anchor) {
	if anchor == nil || anchor.Cert == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.anchors {
		if existing.Cert.Equal(anchor.Cert) {
			return
		}
	}
	s.anchors = append(s.anchors, anchor)
}

// AddCertificate appends a plain certificate as an unconstrained anchor.
func (s *Store) AddCertificate(cert *x509cert.Certificate) {
	if cert == nil {
		return
	}
	s.Add(&Anchor{Cert: cert})
}

// FindAnchors returns the anchors whose subject matches the given issuer
// name, in insertion order.
func (s *Store) FindAnchors(issuer x509cert.Name) []*Anchor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*Anchor
	for _, anchor := range s.anchors {
		if anchor.Cert.Subject.Equal(issuer) {
			matches = append(matches, anchor)
		}
	}
	return matches
}

// Anchor returns the anchor for the exact certificate, or nil.
func (s *Store) Anchor(cert *x509cert.Certificate) *Anchor {
	if cert == nil {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, anchor := range s.anchors {
		if anchor.Cert.Equal(cert) {
			return anchor
		}
	}
	return nil
}

// Contains reports whether the exact certificate is a trust anchor.
// Matching is by encoded bytes, so a cross-signed variant of a root is not
// confused with the root itself.
func (s *Store) Contains(cert *x509cert.Certificate) bool {
	return s.Anchor(cert) != nil
}

// Len returns the number of anchors in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.anchors)
}

// All returns a snapshot of the anchors in insertion order.
func (s *Store) All() []*Anchor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Anchor, len(s.anchors))
	copy(out, s.anchors)
	return out
}
