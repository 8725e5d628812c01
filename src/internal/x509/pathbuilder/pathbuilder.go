// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package pathbuilder

import (
	"fmt"
	"iter"

	x509cert "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/cert"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/truststore"
)

// DefaultMaxDepth is the maximum number of certificates in a candidate
// path (target and anchor included) when the caller does not set one.
const DefaultMaxDepth = 10

// Path is one candidate certification path, ordered target first, trust
// anchor last. Certs[0] is always the target certificate and the final
// element is Anchor.Cert.
type Path struct {
	Certs  []*x509cert.Certificate
	Anchor *truststore.Anchor
}

// Len returns the number of certificates in the path.
func (p *Path) Len() int { return len(p.Certs) }

// Target returns the end of the path furthest from the anchor.
func (p *Path) Target() *x509cert.Certificate { return p.Certs[0] }

// String renders the path as subject names joined by " <- ", target first.
func (p *Path) String() string {
	s := ""
	for i, c := range p.Certs {
		if i > 0 {
			s += " <- "
		}
		s += c.Subject.String()
	}
	return s
}

// Pool is the set of untrusted intermediate certificates available to
// path building. Entries that fail to decode are recorded and skipped
// rather than failing the pool as a whole; a chain file often carries a
// stray or corrupt block that a usable path never needs.
type Pool struct {
	certs []*x509cert.Certificate
	errs  []error
}

// NewPool creates an empty intermediate pool.
func NewPool() *Pool {
	return &Pool{}
}

// Add appends a parsed certificate to the pool, preserving insertion
// order. Exact duplicates are dropped.
func (p *Pool) Add(cert *x509cert.Certificate) {
	if cert == nil {
		return
	}
	for _, existing := range p.certs {
		if existing.Equal(cert) {
			return
		}
	}
	p.certs = append(p.certs, cert)
}

// AddDER decodes one DER certificate into the pool. On decode failure the
// error is retained (see [Pool.Errors]) and the entry is skipped.
func (p *Pool) AddDER(der []byte) {
	cert, err := x509cert.ParseCertificate(der)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("pool entry %d: %w", len(p.certs)+len(p.errs), err))
		return
	}
	p.Add(cert)
}

// Certs returns the decoded pool entries in insertion order.
func (p *Pool) Certs() []*x509cert.Certificate { return p.certs }

// Errors returns the decode errors from skipped pool entries.
func (p *Pool) Errors() []error { return p.errs }

// Len returns the number of usable certificates in the pool.
func (p *Pool) Len() int { return len(p.certs) }

// Builder enumerates candidate certification paths from a target
// certificate to an anchor in the trust store, using the pool for
// intermediates.
type Builder struct {
	target *x509cert.Certificate
	pool   *Pool
	store  *truststore.Store

	// MaxDepth caps the path length in certificates, trust anchor
	// included. A branch that would exceed it is pruned; other branches
	// are still explored. Zero means [DefaultMaxDepth].
	MaxDepth int
}

// New creates a path builder for the target. A nil pool is treated as
// empty.
func New(target *x509cert.Certificate, pool *Pool, store *truststore.Store) *Builder {
	if pool == nil {
		pool = NewPool()
	}
	return &Builder{target: target, pool: pool, store: store}
}

// Paths returns the candidate paths as a lazy sequence. Paths are produced
// depth-first over issuer name matches: for each certificate, trust
// anchors with a matching subject are tried before pool intermediates, and
// within each class candidates come in insertion order. A certificate
// already on the current branch is never revisited, so loops in the issuer
// graph (e.g., cross-signed roots) terminate.
//
// Ranging over the sequence may be abandoned early; no goroutine is
// involved and nothing leaks.
func (b *Builder) Paths() iter.Seq[*Path] {
	maxDepth := b.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	return func(yield func(*Path) bool) {
		if b.target == nil || b.store == nil {
			return
		}
		branch := []*x509cert.Certificate{b.target}
		b.extend(branch, maxDepth, yield)
	}
}

// extend grows the current branch by one issuer and recurses. It returns
// false once the consumer stops taking paths.
func (b *Builder) extend(branch []*x509cert.Certificate, maxDepth int, yield func(*Path) bool) bool {
	tip := branch[len(branch)-1]

	// Anchors first: a matching anchor completes a candidate path.
	for _, anchor := range b.store.FindAnchors(tip.Issuer) {
		path := &Path{
			Certs:  append(append([]*x509cert.Certificate(nil), branch...), anchor.Cert),
			Anchor: anchor,
		}
		// A self-signed anchor that is itself the branch tip would
		// duplicate the tip; collapse instead of appending.
		if anchor.Cert.Equal(tip) {
			path.Certs = path.Certs[:len(path.Certs)-1]
		}
		// The cap counts the anchor too.
		if len(path.Certs) > maxDepth {
			continue
		}
		if !yield(path) {
			return false
		}
	}

	if len(branch) >= maxDepth {
		return true
	}

	for _, candidate := range b.pool.certs {
		if !candidate.Subject.Equal(tip.Issuer) {
			continue
		}
		if onBranch(branch, candidate) {
			continue
		}
		if !b.extend(append(branch, candidate), maxDepth, yield) {
			return false
		}
	}
	return true
}

func onBranch(branch []*x509cert.Certificate, cert *x509cert.Certificate) bool {
	for _, c := range branch {
		if c.Equal(cert) {
			return true
		}
	}
	return false
}
