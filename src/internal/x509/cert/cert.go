// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509cert

import (
	"bytes"
	"crypto"
	"crypto/sha256"
	"crypto/x509"
	encoding_asn1 "encoding/asn1"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	x509der "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/der"
	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// AlgorithmIdentifier is a decoded AlgorithmIdentifier with its exact
// encoding retained for byte-wise comparison.
type AlgorithmIdentifier struct {
	OID    encoding_asn1.ObjectIdentifier
	Params []byte // parameters element including header, nil when absent
	Raw    []byte // complete AlgorithmIdentifier element
}

// Certificate is the immutable in-memory form of one decoded X.509v3
// certificate. RawTBS is exactly the byte range covered by the signature;
// Raw is the complete original encoding, so re-serialization is always
// byte-identical to the input.
type Certificate struct {
	Raw    []byte
	RawTBS []byte

	Version            int // 1, 2, or 3
	SerialNumber       *big.Int
	SignatureAlgorithm AlgorithmIdentifier
	Issuer             Name
	Subject            Name
	NotBefore          time.Time
	NotAfter           time.Time

	// RawSPKI is the complete SubjectPublicKeyInfo element.
	RawSPKI         []byte
	PublicKeyAlgOID encoding_asn1.ObjectIdentifier
	SignatureValue  []byte
	Extensions      []Extension

	pubKeyOnce sync.Once
	pubKey     crypto.PublicKey
	pubKeyErr  error

	fpOnce      sync.Once
	fingerprint [sha256.Size]byte
}

// ParseCertificate decodes a single DER-encoded X.509v3 certificate.
// The input must be exactly one Certificate SEQUENCE with nothing after it.
// All failures are *DecodeError values; this function never panics.
func ParseCertificate(der []byte) (*Certificate, error) {
	input := cryptobyte.String(der)

	var outer cryptobyte.String
	if err := x509der.ReadElementRaw(&input, &outer, x509der.TagSequence); err != nil {
		return nil, decodeError(DecodeMalformedASN1, "certificate", err)
	}
	if err := x509der.CheckEmpty(input); err != nil {
		return nil, decodeError(DecodeTrailingData, "certificate", err)
	}

	c := &Certificate{Raw: bytes.Clone(outer)}

	var body cryptobyte.String
	if err := x509der.ReadElement(&outer, &body, x509der.TagSequence); err != nil {
		return nil, decodeError(DecodeMalformedASN1, "certificate", err)
	}

	var rawTBS cryptobyte.String
	if err := x509der.ReadElementRaw(&body, &rawTBS, x509der.TagSequence); err != nil {
		return nil, decodeError(DecodeMalformedASN1, "tbsCertificate", err)
	}
	c.RawTBS = bytes.Clone(rawTBS)

	if err := c.parseTBS(rawTBS); err != nil {
		return nil, err
	}

	// The outer signature algorithm must repeat the TBS one byte for byte.
	outerAlg, err := parseAlgorithmIdentifier(&body)
	if err != nil {
		return nil, decodeError(DecodeInvalidSignature, "signatureAlgorithm", err)
	}
	if !bytes.Equal(outerAlg.Raw, c.SignatureAlgorithm.Raw) {
		return nil, decodeError(DecodeInvalidSignature, "signatureAlgorithm",
			errors.New("x509cert: TBS and outer signature algorithms differ"))
	}

	sig, err := x509der.ReadBitString(&body)
	if err != nil {
		return nil, decodeError(DecodeInvalidSignature, "signatureValue", err)
	}
	if sig.BitLength%8 != 0 {
		return nil, decodeError(DecodeInvalidSignature, "signatureValue",
			errors.New("x509cert: signature bit length not a whole number of bytes"))
	}
	c.SignatureValue = bytes.Clone(sig.Bytes)

	if err := x509der.CheckEmpty(body); err != nil {
		return nil, decodeError(DecodeTrailingData, "certificate", err)
	}

	return c, nil
}

// parseTBS decodes the TBSCertificate fields from the full TBS element.
func (c *Certificate) parseTBS(rawTBS cryptobyte.String) error {
	var tbs cryptobyte.String
	if err := x509der.ReadElement(&rawTBS, &tbs, x509der.TagSequence); err != nil {
		return decodeError(DecodeMalformedASN1, "tbsCertificate", err)
	}

	// version [0] EXPLICIT INTEGER DEFAULT v1
	c.Version = 1
	versionTag := cryptobyte_asn1.Tag(0).Constructed().ContextSpecific()
	var versionField cryptobyte.String
	versionPresent, err := x509der.ReadOptional(&tbs, &versionField, versionTag)
	if err != nil {
		return decodeError(DecodeMalformedASN1, "version", err)
	}
	if versionPresent {
		n, err := x509der.ReadBigInt(&versionField)
		if err != nil {
			return decodeError(DecodeUnsupportedVersion, "version", err)
		}
		if err := x509der.CheckEmpty(versionField); err != nil {
			return decodeError(DecodeUnsupportedVersion, "version", err)
		}
		if !n.IsInt64() || n.Int64() < 0 || n.Int64() > 2 {
			return decodeError(DecodeUnsupportedVersion, "version",
				fmt.Errorf("x509cert: version value %v", n))
		}
		if n.Int64() == 0 {
			// DEFAULT v1 must be omitted, not encoded.
			return decodeError(DecodeUnsupportedVersion, "version",
				errors.New("x509cert: explicit default version"))
		}
		c.Version = int(n.Int64()) + 1
	}

	serial, err := x509der.ReadBigInt(&tbs)
	if err != nil {
		return decodeError(DecodeInvalidSerial, "serialNumber", err)
	}
	if serial.Sign() < 0 {
		return decodeError(DecodeInvalidSerial, "serialNumber",
			errors.New("x509cert: negative serial number"))
	}
	c.SerialNumber = serial

	c.SignatureAlgorithm, err = parseAlgorithmIdentifier(&tbs)
	if err != nil {
		return decodeError(DecodeInvalidSignature, "signature", err)
	}

	c.Issuer, err = parseName(&tbs)
	if err != nil {
		return decodeError(DecodeInvalidName, "issuer", err)
	}

	var validity cryptobyte.String
	if err := x509der.ReadElement(&tbs, &validity, x509der.TagSequence); err != nil {
		return decodeError(DecodeInvalidValidity, "validity", err)
	}
	if c.NotBefore, err = x509der.ReadTime(&validity); err != nil {
		return decodeError(DecodeInvalidValidity, "notBefore", err)
	}
	if c.NotAfter, err = x509der.ReadTime(&validity); err != nil {
		return decodeError(DecodeInvalidValidity, "notAfter", err)
	}
	if err := x509der.CheckEmpty(validity); err != nil {
		return decodeError(DecodeInvalidValidity, "validity", err)
	}

	c.Subject, err = parseName(&tbs)
	if err != nil {
		return decodeError(DecodeInvalidName, "subject", err)
	}

	var rawSPKI cryptobyte.String
	if err := x509der.ReadElementRaw(&tbs, &rawSPKI, x509der.TagSequence); err != nil {
		return decodeError(DecodeInvalidPublicKey, "subjectPublicKeyInfo", err)
	}
	c.RawSPKI = bytes.Clone(rawSPKI)
	if err := c.parseSPKI(rawSPKI); err != nil {
		return err
	}

	// issuerUniqueID [1] and subjectUniqueID [2] IMPLICIT BIT STRING: legal
	// only for v2/v3, retained but otherwise ignored.
	for _, tag := range []cryptobyte_asn1.Tag{
		cryptobyte_asn1.Tag(1).ContextSpecific(),
		cryptobyte_asn1.Tag(2).ContextSpecific(),
	} {
		var unused cryptobyte.String
		present, err := x509der.ReadOptional(&tbs, &unused, tag)
		if err != nil {
			return decodeError(DecodeMalformedASN1, "uniqueID", err)
		}
		if present && c.Version < 2 {
			return decodeError(DecodeUnsupportedVersion, "uniqueID",
				errors.New("x509cert: uniqueID on v1 certificate"))
		}
	}

	// extensions [3] EXPLICIT SEQUENCE OF Extension, v3 only.
	extsTag := cryptobyte_asn1.Tag(3).Constructed().ContextSpecific()
	var extsField cryptobyte.String
	extsPresent, err := x509der.ReadOptional(&tbs, &extsField, extsTag)
	if err != nil {
		return decodeError(DecodeInvalidExtension, "extensions", err)
	}
	if extsPresent {
		if c.Version != 3 {
			return decodeError(DecodeUnsupportedVersion, "extensions",
				errors.New("x509cert: extensions on pre-v3 certificate"))
		}
		if err := c.parseExtensions(extsField); err != nil {
			return err
		}
	}

	if err := x509der.CheckEmpty(tbs); err != nil {
		return decodeError(DecodeTrailingData, "tbsCertificate", err)
	}
	return nil
}

// parseSPKI validates the SubjectPublicKeyInfo structure and records the
// algorithm OID. The key itself is parsed lazily by PublicKey.
func (c *Certificate) parseSPKI(rawSPKI cryptobyte.String) error {
	var spki cryptobyte.String
	if err := x509der.ReadElement(&rawSPKI, &spki, x509der.TagSequence); err != nil {
		return decodeError(DecodeInvalidPublicKey, "subjectPublicKeyInfo", err)
	}
	alg, err := parseAlgorithmIdentifier(&spki)
	if err != nil {
		return decodeError(DecodeInvalidPublicKey, "subjectPublicKeyInfo", err)
	}
	c.PublicKeyAlgOID = alg.OID
	if _, err := x509der.ReadBitString(&spki); err != nil {
		return decodeError(DecodeInvalidPublicKey, "subjectPublicKey", err)
	}
	if err := x509der.CheckEmpty(spki); err != nil {
		return decodeError(DecodeInvalidPublicKey, "subjectPublicKeyInfo", err)
	}
	return nil
}

// parseExtensions decodes the extension list, preserving order and
// rejecting duplicate OIDs.
func (c *Certificate) parseExtensions(field cryptobyte.String) error {
	var list cryptobyte.String
	if err := x509der.ReadElement(&field, &list, x509der.TagSequence); err != nil {
		return decodeError(DecodeInvalidExtension, "extensions", err)
	}
	if err := x509der.CheckEmpty(field); err != nil {
		return decodeError(DecodeInvalidExtension, "extensions", err)
	}

	seen := make(map[string]bool)
	for !list.Empty() {
		var entry cryptobyte.String
		if err := x509der.ReadElement(&list, &entry, x509der.TagSequence); err != nil {
			return decodeError(DecodeInvalidExtension, "extensions", err)
		}

		oid, err := x509der.ReadOID(&entry)
		if err != nil {
			return decodeError(DecodeInvalidExtension, "extensions", err)
		}
		if seen[oid.String()] {
			return decodeError(DecodeDuplicateExtension, "extensions",
				fmt.Errorf("x509cert: duplicate extension %v", oid))
		}
		seen[oid.String()] = true

		ext := Extension{ID: oid}
		if entry.PeekASN1Tag(x509der.TagBoolean) {
			critical, err := x509der.ReadBool(&entry)
			if err != nil {
				return decodeError(DecodeInvalidExtension, "extensions", err)
			}
			if !critical {
				// critical defaults to FALSE; DER forbids encoding it.
				return decodeError(DecodeInvalidExtension, "extensions",
					errors.New("x509cert: extension encodes default critical value"))
			}
			ext.Critical = true
		}

		var value cryptobyte.String
		if err := x509der.ReadElement(&entry, &value, x509der.TagOctetString); err != nil {
			return decodeError(DecodeInvalidExtension, "extensions", err)
		}
		if err := x509der.CheckEmpty(entry); err != nil {
			return decodeError(DecodeInvalidExtension, "extensions", err)
		}
		ext.Value = bytes.Clone(value)
		c.Extensions = append(c.Extensions, ext)
	}
	return nil
}

// parseAlgorithmIdentifier decodes an AlgorithmIdentifier, keeping the raw
// element and the raw parameters for exact comparison.
func parseAlgorithmIdentifier(s *cryptobyte.String) (AlgorithmIdentifier, error) {
	var raw cryptobyte.String
	if err := x509der.ReadElementRaw(s, &raw, x509der.TagSequence); err != nil {
		return AlgorithmIdentifier{}, err
	}
	alg := AlgorithmIdentifier{Raw: bytes.Clone(raw)}

	var body cryptobyte.String
	if err := x509der.ReadElement(&raw, &body, x509der.TagSequence); err != nil {
		return AlgorithmIdentifier{}, err
	}
	oid, err := x509der.ReadOID(&body)
	if err != nil {
		return AlgorithmIdentifier{}, err
	}
	alg.OID = oid
	if !body.Empty() {
		var params cryptobyte.String
		var tag cryptobyte_asn1.Tag
		if !body.ReadAnyASN1Element(&params, &tag) {
			return AlgorithmIdentifier{}, errors.New("x509cert: malformed algorithm parameters")
		}
		alg.Params = bytes.Clone(params)
	}
	if err := x509der.CheckEmpty(body); err != nil {
		return AlgorithmIdentifier{}, err
	}
	return alg, nil
}

// PublicKey parses and caches the subject public key. Supported key types
// are RSA, ECDSA, and Ed25519.
func (c *Certificate) PublicKey() (crypto.PublicKey, error) {
	c.pubKeyOnce.Do(func() {
		c.pubKey, c.pubKeyErr = x509.ParsePKIXPublicKey(c.RawSPKI)
	})
	return c.pubKey, c.pubKeyErr
}

// Fingerprint returns the SHA-256 digest of the full certificate encoding.
func (c *Certificate) Fingerprint() [sha256.Size]byte {
	c.fpOnce.Do(func() {
		c.fingerprint = sha256.Sum256(c.Raw)
	})
	return c.fingerprint
}

// Equal reports whether two certificates have identical encodings.
func (c *Certificate) Equal(other *Certificate) bool {
	if c == nil || other == nil {
		return c == other
	}
	return bytes.Equal(c.Raw, other.Raw)
}

// IsSelfIssued reports whether subject and issuer name match.
func (c *Certificate) IsSelfIssued() bool {
	return c.Subject.Equal(c.Issuer)
}

// IsSelfSigned reports whether the certificate is self-issued and its
// signature verifies under its own public key.
func (c *Certificate) IsSelfSigned() bool {
	return c.IsSelfIssued() && c.CheckSignatureFrom(c) == nil
}

// ValidAt reports whether t falls inside the certificate's validity window.
func (c *Certificate) ValidAt(t time.Time) bool {
	return !t.Before(c.NotBefore) && !t.After(c.NotAfter)
}
