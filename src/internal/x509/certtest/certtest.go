// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package certtest mints throwaway certificate hierarchies for tests. The
// standard library's generator is used on purpose: fixtures signed by a
// different implementation exercise the strict decoder and the verifier
// against encodings this module did not produce itself.
package certtest

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"net"
	"testing"
	"time"

	x509cert "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/cert"
)

// Fixed validity window shared by all minted certificates, so tests pin
// the verification time instead of depending on the wall clock.
var (
	NotBefore = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	NotAfter  = time.Date(2036, 1, 1, 0, 0, 0, 0, time.UTC)

	// ValidTime falls inside every minted certificate's window.
	ValidTime = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
)

var serialCounter int64 = 1000

// Entity is a minted certificate together with its private key and both
// parsed forms: the stdlib template view used for issuing, and this
// module's strict parse of the emitted DER.
type Entity struct {
	Template *x509.Certificate
	Key      *ecdsa.PrivateKey
	DER      []byte
	Cert     *x509cert.Certificate
}

// Signer returns the entity's private key for issuing children.
func (e *Entity) Signer() crypto.Signer { return e.Key }

// Template returns a baseline certificate template with the given common
// name. Callers flip CA fields or add extensions before minting.
func Template(cn string) *x509.Certificate {
	serialCounter++
	return &x509.Certificate{
		SerialNumber: big.NewInt(serialCounter),
		Subject:      pkix.Name{CommonName: cn, Organization: []string{"Test PKI"}},
		NotBefore:    NotBefore,
		NotAfter:     NotAfter,
	}
}

// CATemplate returns a template for a CA certificate.
func CATemplate(cn string) *x509.Certificate {
	tmpl := Template(cn)
	tmpl.IsCA = true
	tmpl.BasicConstraintsValid = true
	tmpl.KeyUsage = x509.KeyUsageCertSign | x509.KeyUsageCRLSign
	return tmpl
}

// LeafTemplate returns a template for an end-entity certificate with one
// DNS subject alternative name.
func LeafTemplate(cn, dnsName string) *x509.Certificate {
	tmpl := Template(cn)
	tmpl.KeyUsage = x509.KeyUsageDigitalSignature
	if dnsName != "" {
		tmpl.DNSNames = []string{dnsName}
	}
	return tmpl
}

// SelfSigned mints a self-signed certificate from the template.
func SelfSigned(t testing.TB, tmpl *x509.Certificate) *Entity {
	t.Helper()
	key := newKey(t)
	return mint(t, tmpl, tmpl, &key.PublicKey, key, key)
}

// Issue mints a certificate from the template, signed by the parent.
func Issue(t testing.TB, tmpl *x509.Certificate, parent *Entity) *Entity {
	t.Helper()
	key := newKey(t)
	return mint(t, tmpl, parent.Template, &key.PublicKey, parent.Key, key)
}

// Chain mints root -> intermediates -> leaf in one call and returns the
// entities leaf first, root last (path order).
func Chain(t testing.TB, leafCN string, intermediateCNs ...string) []*Entity {
	t.Helper()
	root := SelfSigned(t, CATemplate("Test Root"))
	entities := []*Entity{root}
	parent := root
	for _, cn := range intermediateCNs {
		child := Issue(t, CATemplate(cn), parent)
		entities = append(entities, child)
		parent = child
	}
	leaf := Issue(t, LeafTemplate(leafCN, leafCN), parent)
	entities = append(entities, leaf)

	// Reverse into leaf-first path order.
	for left, right := 0, len(entities)-1; left < right; left, right = left+1, right-1 {
		entities[left], entities[right] = entities[right], entities[left]
	}
	return entities
}

func newKey(t testing.TB) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

func mint(t testing.TB, tmpl, parent *x509.Certificate, pub *ecdsa.PublicKey, signer crypto.Signer, key *ecdsa.PrivateKey) *Entity {
	t.Helper()
	der, err := x509.CreateCertificate(rand.Reader, tmpl, parent, pub, signer)
	if err != nil {
		t.Fatalf("create certificate %q: %v", tmpl.Subject.CommonName, err)
	}
	cert, err := x509cert.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parse minted certificate %q: %v", tmpl.Subject.CommonName, err)
	}
	return &Entity{Template: tmpl, Key: key, DER: der, Cert: cert}
}

// WithPolicies asserts certificatePolicies on the template. Both policy
// fields are populated: CreateCertificate marshals Policies on current
// toolchains and fell back to PolicyIdentifiers on older ones.
func WithPolicies(t testing.TB, tmpl *x509.Certificate, oids ...asn1.ObjectIdentifier) *x509.Certificate {
	t.Helper()
	for _, oid := range oids {
		ints := make([]uint64, len(oid))
		for i, arc := range oid {
			ints[i] = uint64(arc)
		}
		parsed, err := x509.OIDFromInts(ints)
		if err != nil {
			t.Fatalf("policy OID %v: %v", oid, err)
		}
		tmpl.Policies = append(tmpl.Policies, parsed)
		tmpl.PolicyIdentifiers = append(tmpl.PolicyIdentifiers, oid)
	}
	return tmpl
}

// PolicyConstraintsExt encodes a policyConstraints extension that requires
// explicit policy after skipCerts certificates.
func PolicyConstraintsExt(skipCerts int) pkix.Extension {
	// SEQUENCE { [0] IMPLICIT INTEGER }
	value := []byte{0x30, 0x03, 0x80, 0x01, byte(skipCerts)}
	return pkix.Extension{
		Id:    asn1.ObjectIdentifier{2, 5, 29, 36},
		Value: value,
	}
}

// WithIPSAN adds an IP subject alternative name to the template.
func WithIPSAN(tmpl *x509.Certificate, ip string) *x509.Certificate {
	tmpl.IPAddresses = append(tmpl.IPAddresses, net.ParseIP(ip))
	return tmpl
}
