// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509cert

import (
	encoding_asn1 "encoding/asn1"
	"errors"
	"fmt"

	x509der "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/der"
	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// Extension OIDs from RFC 5280 section 4.2.
var (
	OIDExtensionSubjectKeyID         = encoding_asn1.ObjectIdentifier{2, 5, 29, 14}
	OIDExtensionKeyUsage             = encoding_asn1.ObjectIdentifier{2, 5, 29, 15}
	OIDExtensionSubjectAltName       = encoding_asn1.ObjectIdentifier{2, 5, 29, 17}
	OIDExtensionBasicConstraints     = encoding_asn1.ObjectIdentifier{2, 5, 29, 19}
	OIDExtensionNameConstraints      = encoding_asn1.ObjectIdentifier{2, 5, 29, 30}
	OIDExtensionCertificatePolicies  = encoding_asn1.ObjectIdentifier{2, 5, 29, 32}
	OIDExtensionPolicyConstraints    = encoding_asn1.ObjectIdentifier{2, 5, 29, 36}
	OIDExtensionAuthorityKeyID       = encoding_asn1.ObjectIdentifier{2, 5, 29, 35}
	OIDExtensionExtendedKeyUsage     = encoding_asn1.ObjectIdentifier{2, 5, 29, 37}
	OIDExtensionAuthorityInformation = encoding_asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 1, 1}
)

// Extended key usage purpose OIDs.
var (
	OIDAnyExtendedKeyUsage = encoding_asn1.ObjectIdentifier{2, 5, 29, 37, 0}
	OIDServerAuth          = encoding_asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 1}
	OIDClientAuth          = encoding_asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 2}
	OIDCodeSigning         = encoding_asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 3}
	OIDEmailProtection     = encoding_asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 4}
	OIDTimeStamping        = encoding_asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 8}
	OIDOCSPSigning         = encoding_asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 9}
)

// OIDAnyPolicy is the anyPolicy certificate policy identifier.
var OIDAnyPolicy = encoding_asn1.ObjectIdentifier{2, 5, 29, 32, 0}

// Extension is one raw extension entry, in certificate order.
type Extension struct {
	ID       encoding_asn1.ObjectIdentifier
	Critical bool
	Value    []byte
}

// KeyUsage is the keyUsage extension bitset, with bit positions as assigned
// by RFC 5280.
type KeyUsage int

const (
	KeyUsageDigitalSignature KeyUsage = 1 << iota
	KeyUsageContentCommitment
	KeyUsageKeyEncipherment
	KeyUsageDataEncipherment
	KeyUsageKeyAgreement
	KeyUsageCertSign
	KeyUsageCRLSign
	KeyUsageEncipherOnly
	KeyUsageDecipherOnly
)

// BasicConstraints is the decoded basicConstraints extension.
type BasicConstraints struct {
	IsCA bool

	// MaxPathLen is the pathLenConstraint value; valid only when
	// MaxPathLenPresent is true.
	MaxPathLen        int
	MaxPathLenPresent bool
}

// NameConstraints is the decoded nameConstraints extension.
type NameConstraints struct {
	Permitted *GeneralNames // nil when the permittedSubtrees field is absent
	Excluded  *GeneralNames // nil when the excludedSubtrees field is absent
}

// PolicyConstraints is the decoded policyConstraints extension.
type PolicyConstraints struct {
	RequireExplicitPolicy        int
	RequireExplicitPolicyPresent bool
	InhibitPolicyMapping         int
	InhibitPolicyMappingPresent  bool
}

// Extension returns the raw extension with the given OID, if present.
func (c *Certificate) Extension(oid encoding_asn1.ObjectIdentifier) (Extension, bool) {
	for _, ext := range c.Extensions {
		if ext.ID.Equal(oid) {
			return ext, true
		}
	}
	return Extension{}, false
}

// BasicConstraints decodes the basicConstraints extension.
// It returns nil, nil when the extension is absent.
func (c *Certificate) BasicConstraints() (*BasicConstraints, error) {
	ext, ok := c.Extension(OIDExtensionBasicConstraints)
	if !ok {
		return nil, nil
	}

	body := cryptobyte.String(ext.Value)
	var seq cryptobyte.String
	if err := x509der.ReadElement(&body, &seq, x509der.TagSequence); err != nil {
		return nil, err
	}
	if err := x509der.CheckEmpty(body); err != nil {
		return nil, err
	}

	bc := &BasicConstraints{}
	if seq.PeekASN1Tag(x509der.TagBoolean) {
		isCA, err := x509der.ReadBool(&seq)
		if err != nil {
			return nil, err
		}
		if !isCA {
			// cA defaults to FALSE, so DER forbids encoding it explicitly.
			return nil, errors.New("x509cert: basicConstraints encodes default cA value")
		}
		bc.IsCA = true
	}
	if seq.PeekASN1Tag(x509der.TagInteger) {
		n, err := x509der.ReadBigInt(&seq)
		if err != nil {
			return nil, err
		}
		if !n.IsInt64() || n.Sign() < 0 {
			return nil, fmt.Errorf("x509cert: invalid pathLenConstraint %v", n)
		}
		bc.MaxPathLen = int(n.Int64())
		bc.MaxPathLenPresent = true
	}
	if err := x509der.CheckEmpty(seq); err != nil {
		return nil, err
	}
	return bc, nil
}

// KeyUsage decodes the keyUsage extension. The second result reports
// whether the extension is present.
func (c *Certificate) KeyUsage() (KeyUsage, bool, error) {
	ext, ok := c.Extension(OIDExtensionKeyUsage)
	if !ok {
		return 0, false, nil
	}

	body := cryptobyte.String(ext.Value)
	bits, err := x509der.ReadBitString(&body)
	if err != nil {
		return 0, true, err
	}
	if err := x509der.CheckEmpty(body); err != nil {
		return 0, true, err
	}

	var usage KeyUsage
	for i := 0; i < 9; i++ {
		if bits.At(i) != 0 {
			usage |= 1 << uint(i)
		}
	}
	if usage == 0 {
		return 0, true, errors.New("x509cert: keyUsage with no bits set")
	}
	return usage, true, nil
}

// ExtendedKeyUsage decodes the extKeyUsage extension as a list of purpose
// OIDs. The second result reports whether the extension is present.
func (c *Certificate) ExtendedKeyUsage() ([]encoding_asn1.ObjectIdentifier, bool, error) {
	ext, ok := c.Extension(OIDExtensionExtendedKeyUsage)
	if !ok {
		return nil, false, nil
	}

	body := cryptobyte.String(ext.Value)
	var seq cryptobyte.String
	if err := x509der.ReadElement(&body, &seq, x509der.TagSequence); err != nil {
		return nil, true, err
	}
	if err := x509der.CheckEmpty(body); err != nil {
		return nil, true, err
	}

	var purposes []encoding_asn1.ObjectIdentifier
	for !seq.Empty() {
		oid, err := x509der.ReadOID(&seq)
		if err != nil {
			return nil, true, err
		}
		purposes = append(purposes, oid)
	}
	if len(purposes) == 0 {
		return nil, true, errors.New("x509cert: empty extKeyUsage")
	}
	return purposes, true, nil
}

// SubjectAltName decodes the subjectAltName extension.
// It returns nil, nil when the extension is absent.
func (c *Certificate) SubjectAltName() (*GeneralNames, error) {
	ext, ok := c.Extension(OIDExtensionSubjectAltName)
	if !ok {
		return nil, nil
	}
	return parseGeneralNames(cryptobyte.String(ext.Value), ipAddressOnly)
}

// NameConstraints decodes the nameConstraints extension.
// It returns nil, nil when the extension is absent.
func (c *Certificate) NameConstraints() (*NameConstraints, error) {
	ext, ok := c.Extension(OIDExtensionNameConstraints)
	if !ok {
		return nil, nil
	}

	body := cryptobyte.String(ext.Value)
	var seq cryptobyte.String
	if err := x509der.ReadElement(&body, &seq, x509der.TagSequence); err != nil {
		return nil, err
	}
	if err := x509der.CheckEmpty(body); err != nil {
		return nil, err
	}

	nc := &NameConstraints{}
	var err error
	if nc.Permitted, err = parseSubtrees(&seq, 0); err != nil {
		return nil, err
	}
	if nc.Excluded, err = parseSubtrees(&seq, 1); err != nil {
		return nil, err
	}
	if err := x509der.CheckEmpty(seq); err != nil {
		return nil, err
	}
	if nc.Permitted == nil && nc.Excluded == nil {
		return nil, errors.New("x509cert: nameConstraints with no subtrees")
	}
	return nc, nil
}

// parseSubtrees decodes a GeneralSubtrees field tagged [n] IMPLICIT.
// Each GeneralSubtree wraps a GeneralName; the minimum and maximum fields
// must be absent per RFC 5280.
func parseSubtrees(s *cryptobyte.String, contextTag uint8) (*GeneralNames, error) {
	tag := cryptobyte_asn1.Tag(contextTag).ContextSpecific().Constructed()
	var field cryptobyte.String
	present, err := x509der.ReadOptional(s, &field, tag)
	if err != nil || !present {
		return nil, err
	}

	names := &GeneralNames{}
	for !field.Empty() {
		var subtree cryptobyte.String
		if err := x509der.ReadElement(&field, &subtree, x509der.TagSequence); err != nil {
			return nil, err
		}
		if err := names.parseOne(&subtree, ipAddressAndNetmask); err != nil {
			return nil, err
		}
		if !subtree.Empty() {
			return nil, errors.New("x509cert: GeneralSubtree minimum/maximum fields not supported")
		}
	}
	return names, nil
}

// CertificatePolicies decodes the certificatePolicies extension as the set
// of asserted policy OIDs; qualifiers are ignored. The second result reports
// whether the extension is present.
func (c *Certificate) CertificatePolicies() ([]encoding_asn1.ObjectIdentifier, bool, error) {
	ext, ok := c.Extension(OIDExtensionCertificatePolicies)
	if !ok {
		return nil, false, nil
	}

	body := cryptobyte.String(ext.Value)
	var seq cryptobyte.String
	if err := x509der.ReadElement(&body, &seq, x509der.TagSequence); err != nil {
		return nil, true, err
	}
	if err := x509der.CheckEmpty(body); err != nil {
		return nil, true, err
	}

	var policies []encoding_asn1.ObjectIdentifier
	for !seq.Empty() {
		var info cryptobyte.String
		if err := x509der.ReadElement(&seq, &info, x509der.TagSequence); err != nil {
			return nil, true, err
		}
		oid, err := x509der.ReadOID(&info)
		if err != nil {
			return nil, true, err
		}
		policies = append(policies, oid)
	}
	if len(policies) == 0 {
		return nil, true, errors.New("x509cert: empty certificatePolicies")
	}
	return policies, true, nil
}

// PolicyConstraints decodes the policyConstraints extension.
// It returns nil, nil when the extension is absent.
func (c *Certificate) PolicyConstraints() (*PolicyConstraints, error) {
	ext, ok := c.Extension(OIDExtensionPolicyConstraints)
	if !ok {
		return nil, nil
	}

	body := cryptobyte.String(ext.Value)
	var seq cryptobyte.String
	if err := x509der.ReadElement(&body, &seq, x509der.TagSequence); err != nil {
		return nil, err
	}
	if err := x509der.CheckEmpty(body); err != nil {
		return nil, err
	}

	pc := &PolicyConstraints{}
	for _, field := range []struct {
		tag     uint8
		value   *int
		present *bool
	}{
		{0, &pc.RequireExplicitPolicy, &pc.RequireExplicitPolicyPresent},
		{1, &pc.InhibitPolicyMapping, &pc.InhibitPolicyMappingPresent},
	} {
		tag := cryptobyte_asn1.Tag(field.tag).ContextSpecific()
		if !seq.PeekASN1Tag(tag) {
			continue
		}
		var n int64
		if !seq.ReadASN1Int64WithTag(&n, tag) || n < 0 {
			return nil, errors.New("x509cert: malformed policyConstraints field")
		}
		*field.value = int(n)
		*field.present = true
	}
	if err := x509der.CheckEmpty(seq); err != nil {
		return nil, err
	}
	if !pc.RequireExplicitPolicyPresent && !pc.InhibitPolicyMappingPresent {
		return nil, errors.New("x509cert: empty policyConstraints")
	}
	return pc, nil
}

// UnhandledCriticalExtensions returns the OIDs of critical extensions this
// package does not recognize. Whether their presence is fatal is the
// verifier's decision, not the decoder's.
func (c *Certificate) UnhandledCriticalExtensions() []encoding_asn1.ObjectIdentifier {
	var unhandled []encoding_asn1.ObjectIdentifier
	for _, ext := range c.Extensions {
		if !ext.Critical {
			continue
		}
		if !recognizedExtension(ext.ID) {
			unhandled = append(unhandled, ext.ID)
		}
	}
	return unhandled
}

func recognizedExtension(oid encoding_asn1.ObjectIdentifier) bool {
	for _, known := range []encoding_asn1.ObjectIdentifier{
		OIDExtensionBasicConstraints,
		OIDExtensionKeyUsage,
		OIDExtensionExtendedKeyUsage,
		OIDExtensionSubjectAltName,
		OIDExtensionNameConstraints,
		OIDExtensionCertificatePolicies,
		OIDExtensionPolicyConstraints,
		OIDExtensionSubjectKeyID,
		OIDExtensionAuthorityKeyID,
	} {
		if oid.Equal(known) {
			return true
		}
	}
	return false
}

// SubjectKeyID returns the subjectKeyIdentifier value, or nil when absent.
func (c *Certificate) SubjectKeyID() ([]byte, error) {
	ext, ok := c.Extension(OIDExtensionSubjectKeyID)
	if !ok {
		return nil, nil
	}
	body := cryptobyte.String(ext.Value)
	var id cryptobyte.String
	if err := x509der.ReadElement(&body, &id, x509der.TagOctetString); err != nil {
		return nil, err
	}
	if err := x509der.CheckEmpty(body); err != nil {
		return nil, err
	}
	return []byte(id), nil
}

// AuthorityKeyID returns the keyIdentifier field of authorityKeyIdentifier,
// or nil when the extension or the field is absent.
func (c *Certificate) AuthorityKeyID() ([]byte, error) {
	ext, ok := c.Extension(OIDExtensionAuthorityKeyID)
	if !ok {
		return nil, nil
	}
	body := cryptobyte.String(ext.Value)
	var seq cryptobyte.String
	if err := x509der.ReadElement(&body, &seq, x509der.TagSequence); err != nil {
		return nil, err
	}
	var id cryptobyte.String
	present, err := x509der.ReadOptional(&seq, &id, cryptobyte_asn1.Tag(0).ContextSpecific())
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	return []byte(id), nil
}
