// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509cert

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	encoding_asn1 "encoding/asn1"
	"errors"
	"fmt"
)

// SignatureScheme identifies a supported certificate signature algorithm.
type SignatureScheme int

const (
	UnknownScheme SignatureScheme = iota
	SHA256WithRSA
	SHA384WithRSA
	SHA512WithRSA
	ECDSAWithSHA256
	ECDSAWithSHA384
	ECDSAWithSHA512
	PureEd25519

	// Legacy schemes: still recognized so the verifier's algorithm policy
	// can name them in rejections, rather than reporting "unknown".
	SHA1WithRSA
	ECDSAWithSHA1
)

// String returns the conventional name of the scheme.
func (s SignatureScheme) String() string {
	switch s {
	case SHA256WithRSA:
		return "SHA256-RSA"
	case SHA384WithRSA:
		return "SHA384-RSA"
	case SHA512WithRSA:
		return "SHA512-RSA"
	case ECDSAWithSHA256:
		return "ECDSA-SHA256"
	case ECDSAWithSHA384:
		return "ECDSA-SHA384"
	case ECDSAWithSHA512:
		return "ECDSA-SHA512"
	case PureEd25519:
		return "Ed25519"
	case SHA1WithRSA:
		return "SHA1-RSA"
	case ECDSAWithSHA1:
		return "ECDSA-SHA1"
	default:
		return "unknown"
	}
}

// Insecure reports whether the scheme is considered broken and is rejected
// by the verifier's default algorithm policy.
func (s SignatureScheme) Insecure() bool {
	return s == SHA1WithRSA || s == ECDSAWithSHA1
}

var (
	oidSigSHA1WithRSA     = encoding_asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 5}
	oidSigSHA256WithRSA   = encoding_asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 11}
	oidSigSHA384WithRSA   = encoding_asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 12}
	oidSigSHA512WithRSA   = encoding_asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 13}
	oidSigECDSAWithSHA1   = encoding_asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 1}
	oidSigECDSAWithSHA256 = encoding_asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 2}
	oidSigECDSAWithSHA384 = encoding_asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 3}
	oidSigECDSAWithSHA512 = encoding_asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 4}
	oidSigEd25519         = encoding_asn1.ObjectIdentifier{1, 3, 101, 112}
)

// ErrUnsupportedAlgorithm indicates a signature algorithm this package
// cannot verify.
var ErrUnsupportedAlgorithm = errors.New("x509cert: unsupported signature algorithm")

// signatureSchemeFromOID maps an AlgorithmIdentifier OID to a scheme.
func signatureSchemeFromOID(oid encoding_asn1.ObjectIdentifier) SignatureScheme {
	switch {
	case oid.Equal(oidSigSHA256WithRSA):
		return SHA256WithRSA
	case oid.Equal(oidSigSHA384WithRSA):
		return SHA384WithRSA
	case oid.Equal(oidSigSHA512WithRSA):
		return SHA512WithRSA
	case oid.Equal(oidSigECDSAWithSHA256):
		return ECDSAWithSHA256
	case oid.Equal(oidSigECDSAWithSHA384):
		return ECDSAWithSHA384
	case oid.Equal(oidSigECDSAWithSHA512):
		return ECDSAWithSHA512
	case oid.Equal(oidSigEd25519):
		return PureEd25519
	case oid.Equal(oidSigSHA1WithRSA):
		return SHA1WithRSA
	case oid.Equal(oidSigECDSAWithSHA1):
		return ECDSAWithSHA1
	default:
		return UnknownScheme
	}
}

// SignatureScheme returns the scheme declared by the certificate's
// signature algorithm identifier.
func (c *Certificate) SignatureScheme() SignatureScheme {
	return signatureSchemeFromOID(c.SignatureAlgorithm.OID)
}

func (s SignatureScheme) hash() (crypto.Hash, bool) {
	switch s {
	case SHA256WithRSA, ECDSAWithSHA256:
		return crypto.SHA256, true
	case SHA384WithRSA, ECDSAWithSHA384:
		return crypto.SHA384, true
	case SHA512WithRSA, ECDSAWithSHA512:
		return crypto.SHA512, true
	case PureEd25519:
		return 0, true
	default:
		return 0, false
	}
}

// CheckSignatureFrom verifies that the certificate's signature over its
// exact TBS bytes is valid under issuer's public key. Algorithm policy
// (rejecting weak-but-verifiable schemes) is the caller's concern; this
// only answers whether the signature is cryptographically valid.
func (c *Certificate) CheckSignatureFrom(issuer *Certificate) error {
	pub, err := issuer.PublicKey()
	if err != nil {
		return fmt.Errorf("x509cert: issuer public key: %w", err)
	}
	return checkSignature(c.SignatureScheme(), c.RawTBS, c.SignatureValue, pub)
}

// checkSignature verifies signature over signed with the given scheme.
func checkSignature(scheme SignatureScheme, signed, signature []byte, pub crypto.PublicKey) error {
	hash, ok := scheme.hash()
	if !ok {
		return ErrUnsupportedAlgorithm
	}

	var digest []byte
	if hash != 0 {
		h := hash.New()
		h.Write(signed)
		digest = h.Sum(nil)
	}

	switch key := pub.(type) {
	case *rsa.PublicKey:
		switch scheme {
		case SHA256WithRSA, SHA384WithRSA, SHA512WithRSA:
			return rsa.VerifyPKCS1v15(key, hash, digest, signature)
		}
	case *ecdsa.PublicKey:
		switch scheme {
		case ECDSAWithSHA256, ECDSAWithSHA384, ECDSAWithSHA512:
			if !ecdsa.VerifyASN1(key, digest, signature) {
				return errors.New("x509cert: ECDSA verification failure")
			}
			return nil
		}
	case ed25519.PublicKey:
		if scheme == PureEd25519 {
			if !ed25519.Verify(key, signed, signature) {
				return errors.New("x509cert: Ed25519 verification failure")
			}
			return nil
		}
	}
	return ErrUnsupportedAlgorithm
}
