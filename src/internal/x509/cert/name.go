// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509cert

import (
	"bytes"
	encoding_asn1 "encoding/asn1"
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"

	x509der "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/der"
	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
	"golang.org/x/text/cases"
)

// Attribute type OIDs that commonly appear in distinguished names.
var (
	oidAttributeCommonName         = encoding_asn1.ObjectIdentifier{2, 5, 4, 3}
	oidAttributeSerialNumber       = encoding_asn1.ObjectIdentifier{2, 5, 4, 5}
	oidAttributeCountry            = encoding_asn1.ObjectIdentifier{2, 5, 4, 6}
	oidAttributeLocality           = encoding_asn1.ObjectIdentifier{2, 5, 4, 7}
	oidAttributeProvince           = encoding_asn1.ObjectIdentifier{2, 5, 4, 8}
	oidAttributeOrganization       = encoding_asn1.ObjectIdentifier{2, 5, 4, 10}
	oidAttributeOrganizationalUnit = encoding_asn1.ObjectIdentifier{2, 5, 4, 11}
	oidAttributeEmail              = encoding_asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 1}
)

// AttributeTypeAndValue is one attribute inside a relative distinguished name.
// RawValue keeps the exact value TLV so unrecognized value types survive
// round-tripping and byte-wise comparison.
type AttributeTypeAndValue struct {
	Type     encoding_asn1.ObjectIdentifier
	Tag      cryptobyte_asn1.Tag
	RawValue []byte
	Value    string // decoded text for string value types, empty otherwise
	isString bool
}

// RDN is one RelativeDistinguishedName: an unordered set of attributes,
// kept in encoded order.
type RDN []AttributeTypeAndValue

// Name is a decoded X.501 distinguished name. Raw holds the complete
// RDNSequence element including its header, which is the form used for
// byte-wise comparison and for directoryName constraint matching.
type Name struct {
	Raw  []byte
	RDNs []RDN
}

// parseName decodes an RDNSequence from s, consuming the full element.
func parseName(s *cryptobyte.String) (Name, error) {
	var raw cryptobyte.String
	if err := x509der.ReadElementRaw(s, &raw, x509der.TagSequence); err != nil {
		return Name{}, err
	}
	return parseNameElement(raw)
}

// parseNameElement decodes a complete RDNSequence element (header included).
func parseNameElement(raw cryptobyte.String) (Name, error) {
	name := Name{Raw: bytes.Clone(raw)}

	var body cryptobyte.String
	if err := x509der.ReadElement(&raw, &body, x509der.TagSequence); err != nil {
		return Name{}, err
	}

	for !body.Empty() {
		var set cryptobyte.String
		if err := x509der.ReadElement(&body, &set, x509der.TagSet); err != nil {
			return Name{}, err
		}
		if set.Empty() {
			return Name{}, errors.New("x509cert: empty RDN set")
		}

		var rdn RDN
		for !set.Empty() {
			var atv cryptobyte.String
			if err := x509der.ReadElement(&set, &atv, x509der.TagSequence); err != nil {
				return Name{}, err
			}

			oid, err := x509der.ReadOID(&atv)
			if err != nil {
				return Name{}, err
			}

			var value cryptobyte.String
			var tag cryptobyte_asn1.Tag
			if !atv.ReadAnyASN1Element(&value, &tag) {
				return Name{}, errors.New("x509cert: malformed attribute value")
			}
			if err := x509der.CheckEmpty(atv); err != nil {
				return Name{}, err
			}

			attr := AttributeTypeAndValue{
				Type:     oid,
				Tag:      tag,
				RawValue: bytes.Clone(value),
			}
			if text, ok := decodeNameString(tag, value); ok {
				attr.Value = text
				attr.isString = true
			}
			rdn = append(rdn, attr)
		}
		name.RDNs = append(name.RDNs, rdn)
	}

	return name, nil
}

// decodeNameString decodes the text of a string-typed attribute value.
// The second result is false for non-string value types.
func decodeNameString(tag cryptobyte_asn1.Tag, element cryptobyte.String) (string, bool) {
	var body cryptobyte.String
	if !element.ReadASN1(&body, tag) {
		return "", false
	}
	switch tag {
	case x509der.TagPrintableString, x509der.TagUTF8String, x509der.TagIA5String, x509der.TagT61String:
		return string(body), true
	case x509der.TagBMPString:
		if len(body)%2 != 0 {
			return "", false
		}
		units := make([]uint16, 0, len(body)/2)
		for i := 0; i < len(body); i += 2 {
			units = append(units, uint16(body[i])<<8|uint16(body[i+1]))
		}
		return string(utf16.Decode(units)), true
	}
	return "", false
}

// Empty reports whether the name has no RDNs (an empty RDNSequence).
func (n Name) Empty() bool { return len(n.RDNs) == 0 }

// Equal reports whether two names match under RFC 5280 name comparison:
// byte-for-byte equality of the encoded form, or attribute-wise equality
// with caseIgnoreMatch semantics for string-typed values.
func (n Name) Equal(other Name) bool {
	if bytes.Equal(n.Raw, other.Raw) {
		return true
	}
	if len(n.RDNs) != len(other.RDNs) {
		return false
	}
	for i := range n.RDNs {
		if !n.RDNs[i].equal(other.RDNs[i]) {
			return false
		}
	}
	return true
}

func (r RDN) equal(other RDN) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		a, b := r[i], other[i]
		if !a.Type.Equal(b.Type) {
			return false
		}
		if a.isString && b.isString {
			if !caseIgnoreEqual(a.Value, b.Value) {
				return false
			}
			continue
		}
		if !bytes.Equal(a.RawValue, b.RawValue) {
			return false
		}
	}
	return true
}

// caseIgnoreEqual applies the X.520 caseIgnoreMatch rule: leading and
// trailing whitespace is ignored, internal whitespace runs collapse to one
// space, and comparison is case-insensitive via Unicode case folding.
func caseIgnoreEqual(a, b string) bool {
	return foldValue(a) == foldValue(b)
}

func foldValue(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}

// WithinSubtree reports whether the name falls inside a directoryName
// subtree: every RDN of base must match the corresponding leading RDN of n.
// An empty base matches every name.
func (n Name) WithinSubtree(base Name) bool {
	if len(base.RDNs) > len(n.RDNs) {
		return false
	}
	for i := range base.RDNs {
		if !base.RDNs[i].equal(n.RDNs[i]) {
			return false
		}
	}
	return true
}

// CommonName returns the first commonName attribute value, or the empty string.
func (n Name) CommonName() string {
	for _, rdn := range n.RDNs {
		for _, attr := range rdn {
			if attr.Type.Equal(oidAttributeCommonName) && attr.isString {
				return attr.Value
			}
		}
	}
	return ""
}

// String renders the name in the usual "CN=..., O=..., C=..." form.
// Unrecognized attribute types are shown by dotted OID.
func (n Name) String() string {
	var parts []string
	for _, rdn := range n.RDNs {
		for _, attr := range rdn {
			value := attr.Value
			if !attr.isString {
				value = fmt.Sprintf("#%x", attr.RawValue)
			}
			parts = append(parts, attributeShortName(attr.Type)+"="+value)
		}
	}
	return strings.Join(parts, ", ")
}

func attributeShortName(oid encoding_asn1.ObjectIdentifier) string {
	switch {
	case oid.Equal(oidAttributeCommonName):
		return "CN"
	case oid.Equal(oidAttributeSerialNumber):
		return "SERIALNUMBER"
	case oid.Equal(oidAttributeCountry):
		return "C"
	case oid.Equal(oidAttributeLocality):
		return "L"
	case oid.Equal(oidAttributeProvince):
		return "ST"
	case oid.Equal(oidAttributeOrganization):
		return "O"
	case oid.Equal(oidAttributeOrganizationalUnit):
		return "OU"
	case oid.Equal(oidAttributeEmail):
		return "emailAddress"
	default:
		return oid.String()
	}
}
