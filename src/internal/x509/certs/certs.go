// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"bytes"
	"encoding/pem"
	"errors"
	"strings"

	"github.com/cloudflare/cfssl/crypto/pkcs7"
	"golang.org/x/crypto/cryptobyte"

	x509cert "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/cert"
	x509der "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/der"
)

var (
	// ErrInvalidPEMBlock indicates that the provided data does not contain a valid PEM block.
	ErrInvalidPEMBlock = errors.New("x509certs: invalid PEM block")

	// ErrInvalidBlockType indicates that the PEM block type is not the expected certificate type.
	ErrInvalidBlockType = errors.New("x509certs: invalid block type")

	// ErrParsePKCS7 indicates a failure to parse PKCS7 formatted data.
	ErrParsePKCS7 = errors.New("x509certs: failed to parse PKCS7 data")

	// ErrNoCertificatesInPKCS indicates that no certificates were found in the PKCS7 data.
	ErrNoCertificatesInPKCS = errors.New("x509certs: no certificates found in PKCS7 data")

	// ErrNoCertificates indicates that the input contained no certificates at all.
	ErrNoCertificates = errors.New("x509certs: no certificates found")
)

// Codec decodes and encodes [X.509] certificates between the wire formats
// accepted as input (PEM, raw DER, PKCS7 bundles) and the verifier's
// certificate model. It maintains internal configuration such as the
// certificate block type.
//
// [X.509]: https://grokipedia.com/page/X.509
type Codec struct {
	certBlockType string
}

// New creates a new Codec with default settings.
func New() *Codec {
	return &Codec{
		certBlockType: "CERTIFICATE",
	}
}

// IsPEM checks if the data is in PEM format.
func (c *Codec) IsPEM(data []byte) bool {
	block, _ := pem.Decode(data)
	return block != nil
}

// decodePEMBlock decodes a PEM block and checks its type.
func (c *Codec) decodePEMBlock(data []byte) (*pem.Block, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEMBlock
	}
	if block.Type != c.certBlockType {
		return nil, ErrInvalidBlockType
	}
	return block, nil
}

// DecodeMultiple decodes one or more certificates from data.
//
// PEM input may contain any number of CERTIFICATE blocks; DER input may be
// a single certificate or a PKCS7 bundle. Decode failures are the typed
// [*x509cert.DecodeError] values from the certificate parser.
func (c *Codec) DecodeMultiple(data []byte) ([]*x509cert.Certificate, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNoCertificates
	}
	if c.IsPEM(data) {
		var certs []*x509cert.Certificate

		for len(data) > 0 {
			block, rest := pem.Decode(data)
			if block == nil {
				break
			}
			if block.Type != c.certBlockType {
				return nil, ErrInvalidBlockType
			}

			cert, err := x509cert.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, err
			}

			certs = append(certs, cert)
			data = rest
		}

		if len(certs) == 0 {
			return nil, ErrNoCertificates
		}
		return certs, nil
	}

	if certs, err := c.decodeConcatenatedDER(data); err == nil {
		return certs, nil
	}

	return c.decodePKCS7(data)
}

// decodeConcatenatedDER splits raw input into consecutive DER SEQUENCE
// elements and parses each as a certificate. Bare DER chain dumps are one
// certificate after another with no framing.
func (c *Codec) decodeConcatenatedDER(data []byte) ([]*x509cert.Certificate, error) {
	input := cryptobyte.String(data)
	var certs []*x509cert.Certificate

	for !input.Empty() {
		var element cryptobyte.String
		if err := x509der.ReadElementRaw(&input, &element, x509der.TagSequence); err != nil {
			return nil, err
		}
		cert, err := x509cert.ParseCertificate([]byte(element))
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}

	if len(certs) == 0 {
		return nil, ErrNoCertificates
	}
	return certs, nil
}

// Decode decodes a single certificate from data.
func (c *Codec) Decode(data []byte) (*x509cert.Certificate, error) {
	if c.IsPEM(data) {
		block, err := c.decodePEMBlock(data)
		if err != nil {
			return nil, err
		}

		data = block.Bytes
	}

	cert, err := x509cert.ParseCertificate(data)
	if err == nil {
		return cert, nil
	}

	// Attempt to parse as PKCS7 using Cloudflare's library
	certs, pkcsErr := c.decodePKCS7(data)
	if pkcsErr != nil {
		// The input was neither a certificate nor a PKCS7 bundle; the
		// certificate parser's error is the more useful diagnostic.
		return nil, err
	}
	return certs[0], nil
}

// decodePKCS7 extracts certificates from a DER PKCS7 SignedData bundle.
// Each embedded certificate is re-decoded through the strict parser so a
// bundle cannot smuggle in encodings the engine would otherwise reject.
func (c *Codec) decodePKCS7(data []byte) ([]*x509cert.Certificate, error) {
	p, err := pkcs7.ParsePKCS7(data)
	if err != nil {
		return nil, ErrParsePKCS7
	}
	if len(p.Content.SignedData.Certificates) == 0 {
		return nil, ErrNoCertificatesInPKCS
	}

	certs := make([]*x509cert.Certificate, 0, len(p.Content.SignedData.Certificates))
	for _, embedded := range p.Content.SignedData.Certificates {
		cert, err := x509cert.ParseCertificate(embedded.Raw)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

// ChainFile is a decoded test-chain file: a documentation header describing
// the chain's intent, followed by the certificates in leaf-to-root order.
type ChainFile struct {
	Comment string
	Certs   []*x509cert.Certificate
}

// DecodeChainFile decodes the fixture format produced by chain generators:
// free-form comment text, then concatenated PEM CERTIFICATE blocks ordered
// leaf first and root last.
func (c *Codec) DecodeChainFile(data []byte) (*ChainFile, error) {
	text := string(data)
	idx := strings.Index(text, "-----BEGIN ")
	if idx < 0 {
		return nil, ErrInvalidPEMBlock
	}

	comment := strings.TrimSpace(text[:idx])
	certs, err := c.DecodeMultiple([]byte(text[idx:]))
	if err != nil {
		return nil, err
	}

	return &ChainFile{Comment: comment, Certs: certs}, nil
}

// EncodePEM encodes a certificate to PEM format. The stored raw encoding is
// emitted verbatim; certificates are never re-encoded.
func (c *Codec) EncodePEM(cert *x509cert.Certificate) []byte {
	block := pem.Block{
		Type:  c.certBlockType,
		Bytes: cert.Raw,
	}
	return pem.EncodeToMemory(&block)
}

// EncodeDER encodes a certificate to DER format.
func (c *Codec) EncodeDER(cert *x509cert.Certificate) []byte { return cert.Raw }

// EncodeMultiplePEM encodes multiple certificates to PEM format.
func (c *Codec) EncodeMultiplePEM(certs []*x509cert.Certificate) []byte {
	var data []byte

	for _, cert := range certs {
		data = append(data, c.EncodePEM(cert)...)
	}

	return data
}

// EncodeMultipleDER encodes multiple certificates to DER format.
func (c *Codec) EncodeMultipleDER(certs []*x509cert.Certificate) []byte {
	var data []byte

	for _, cert := range certs {
		data = append(data, c.EncodeDER(cert)...)
	}

	return data
}
