// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509cert_test

import (
	encoding_asn1 "encoding/asn1"
	"errors"
	"testing"

	x509cert "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/cert"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// OIDs from the private enterprise arc, safe for fake test extensions.
var (
	privateTestOID  = encoding_asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 99999, 1}
	privateTestOID2 = encoding_asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 99999, 2}
)

func TestParseCertificateFields(t *testing.T) {
	chain := certtest.Chain(t, "leaf.example.com", "Test Intermediate")
	leaf, intermediate, root := chain[0], chain[1], chain[2]

	assert.Equal(t, 3, leaf.Cert.Version)
	assert.Equal(t, "leaf.example.com", leaf.Cert.Subject.CommonName())
	assert.Equal(t, "Test Intermediate", leaf.Cert.Issuer.CommonName())
	assert.Equal(t, 1, leaf.Cert.SerialNumber.Sign(), "serial must be positive")

	assert.True(t, leaf.Cert.NotBefore.Equal(certtest.NotBefore))
	assert.True(t, leaf.Cert.NotAfter.Equal(certtest.NotAfter))

	// Decoding retains the exact input bytes; encoding is always the
	// original DER, never a re-serialization.
	assert.Equal(t, leaf.DER, leaf.Cert.Raw)

	assert.True(t, leaf.Cert.Issuer.Equal(intermediate.Cert.Subject))
	assert.True(t, intermediate.Cert.Issuer.Equal(root.Cert.Subject))
}

func TestParseCertificateRejectsTrailingData(t *testing.T) {
	root := certtest.SelfSigned(t, certtest.CATemplate("Trailing Root"))

	_, err := x509cert.ParseCertificate(append(root.DER[:len(root.DER):len(root.DER)], 0x00))
	require.Error(t, err)

	var decodeErr *x509cert.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, x509cert.DecodeTrailingData, decodeErr.Kind)
}

func TestParseCertificateRejectsGarbage(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{name: "empty input", input: nil},
		{name: "not a sequence", input: []byte{0x02, 0x01, 0x01}},
		{name: "truncated sequence", input: []byte{0x30, 0x10, 0x30, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := x509cert.ParseCertificate(tt.input)
			var decodeErr *x509cert.DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.Equal(t, x509cert.DecodeMalformedASN1, decodeErr.Kind)
		})
	}
}

func TestSelfSignedDetection(t *testing.T) {
	chain := certtest.Chain(t, "leaf.example.com")
	leaf, root := chain[0], chain[1]

	assert.True(t, root.Cert.IsSelfIssued())
	assert.True(t, root.Cert.IsSelfSigned())
	assert.False(t, leaf.Cert.IsSelfIssued())
	assert.False(t, leaf.Cert.IsSelfSigned())
}

func TestCheckSignatureFrom(t *testing.T) {
	chain := certtest.Chain(t, "leaf.example.com", "Test Intermediate")
	leaf, intermediate, root := chain[0], chain[1], chain[2]

	assert.NoError(t, leaf.Cert.CheckSignatureFrom(intermediate.Cert))
	assert.NoError(t, intermediate.Cert.CheckSignatureFrom(root.Cert))

	// Skipping a level must fail: the leaf was not signed by the root.
	assert.Error(t, leaf.Cert.CheckSignatureFrom(root.Cert))
}

func TestTamperedCertificateFailsSignature(t *testing.T) {
	chain := certtest.Chain(t, "leaf.example.com")
	leaf, root := chain[0], chain[1]

	tampered := append([]byte(nil), leaf.DER...)
	tampered[len(tampered)-1] ^= 0x01

	cert, err := x509cert.ParseCertificate(tampered)
	if err != nil {
		// Bit flips in the signature value can break its inner DER, which
		// the strict parser may reject outright. Either outcome is a
		// detected tamper.
		var decodeErr *x509cert.DecodeError
		assert.True(t, errors.As(err, &decodeErr))
		return
	}
	assert.Error(t, cert.CheckSignatureFrom(root.Cert))
}

func TestNameComparisonCaseFolding(t *testing.T) {
	upper := certtest.SelfSigned(t, certtest.CATemplate("Example CA"))
	lower := certtest.SelfSigned(t, certtest.CATemplate("example ca"))
	other := certtest.SelfSigned(t, certtest.CATemplate("Different CA"))

	// caseIgnoreMatch: differing case compares equal even though the
	// encoded bytes differ.
	assert.True(t, upper.Cert.Subject.Equal(lower.Cert.Subject))
	assert.False(t, upper.Cert.Subject.Equal(other.Cert.Subject))
}

func TestNameString(t *testing.T) {
	root := certtest.SelfSigned(t, certtest.CATemplate("Render Me"))
	assert.Equal(t, "O=Test PKI, CN=Render Me", root.Cert.Subject.String())
}

func TestBasicConstraintsDecoding(t *testing.T) {
	tests := []struct {
		name        string
		value       []byte
		wantErr     bool
		wantCA      bool
		wantPathLen int
		wantPresent bool
	}{
		{
			name:        "ca with pathlen zero",
			value:       []byte{0x30, 0x06, 0x01, 0x01, 0xFF, 0x02, 0x01, 0x00},
			wantCA:      true,
			wantPathLen: 0,
			wantPresent: true,
		},
		{
			name:   "ca without pathlen",
			value:  []byte{0x30, 0x03, 0x01, 0x01, 0xFF},
			wantCA: true,
		},
		{
			name:  "empty sequence means not a ca",
			value: []byte{0x30, 0x00},
		},
		{
			name: "explicitly encoded default rejected",
			// cA FALSE is the DEFAULT and must be omitted in DER.
			value:   []byte{0x30, 0x03, 0x01, 0x01, 0x00},
			wantErr: true,
		},
		{
			name:    "negative pathlen rejected",
			value:   []byte{0x30, 0x06, 0x01, 0x01, 0xFF, 0x02, 0x01, 0xFF},
			wantErr: true,
		},
		{
			name:    "trailing data in value rejected",
			value:   []byte{0x30, 0x00, 0x00},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cert := &x509cert.Certificate{
				Extensions: []x509cert.Extension{
					{ID: x509cert.OIDExtensionBasicConstraints, Critical: true, Value: tt.value},
				},
			}
			bc, err := cert.BasicConstraints()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, bc)
			assert.Equal(t, tt.wantCA, bc.IsCA)
			assert.Equal(t, tt.wantPresent, bc.MaxPathLenPresent)
			if tt.wantPresent {
				assert.Equal(t, tt.wantPathLen, bc.MaxPathLen)
			}
		})
	}
}

func TestBasicConstraintsAbsent(t *testing.T) {
	cert := &x509cert.Certificate{}
	bc, err := cert.BasicConstraints()
	require.NoError(t, err)
	assert.Nil(t, bc)
}

func TestKeyUsageFromMintedCA(t *testing.T) {
	root := certtest.SelfSigned(t, certtest.CATemplate("Usage Root"))

	ku, present, err := root.Cert.KeyUsage()
	require.NoError(t, err)
	require.True(t, present)
	assert.NotZero(t, ku&x509cert.KeyUsageCertSign)
}

func TestSubjectAltName(t *testing.T) {
	tmpl := certtest.LeafTemplate("san.example.com", "san.example.com")
	tmpl.DNSNames = append(tmpl.DNSNames, "alt.example.com")
	tmpl.EmailAddresses = []string{"admin@example.com"}
	certtest.WithIPSAN(tmpl, "192.0.2.1")

	root := certtest.SelfSigned(t, certtest.CATemplate("SAN Root"))
	leaf := certtest.Issue(t, tmpl, root)

	san, err := leaf.Cert.SubjectAltName()
	require.NoError(t, err)
	require.NotNil(t, san)
	assert.Equal(t, []string{"san.example.com", "alt.example.com"}, san.DNSNames)
	assert.Equal(t, []string{"admin@example.com"}, san.EmailAddresses)
	require.Len(t, san.IPAddresses, 1)
	assert.Equal(t, "192.0.2.1", san.IPAddresses[0].String())
}

func TestNameConstraintsFromMintedCA(t *testing.T) {
	tmpl := certtest.CATemplate("Constrained CA")
	tmpl.PermittedDNSDomains = []string{"example.com"}
	tmpl.ExcludedDNSDomains = []string{"forbidden.example.com"}
	tmpl.PermittedDNSDomainsCritical = true

	ca := certtest.SelfSigned(t, tmpl)

	nc, err := ca.Cert.NameConstraints()
	require.NoError(t, err)
	require.NotNil(t, nc)
	require.NotNil(t, nc.Permitted)
	assert.Equal(t, []string{"example.com"}, nc.Permitted.DNSNames)
	require.NotNil(t, nc.Excluded)
	assert.Equal(t, []string{"forbidden.example.com"}, nc.Excluded.DNSNames)
	assert.False(t, nc.Permitted.HasUnsupportedConstraintTypes())
}

func TestUnhandledCriticalExtensions(t *testing.T) {
	chain := certtest.Chain(t, "leaf.example.com")
	assert.Empty(t, chain[0].Cert.UnhandledCriticalExtensions())

	cert := &x509cert.Certificate{
		Extensions: []x509cert.Extension{
			{ID: x509cert.OIDExtensionBasicConstraints, Critical: true, Value: []byte{0x30, 0x00}},
			{ID: privateTestOID, Critical: true, Value: []byte{0x04, 0x00}},
			{ID: privateTestOID2, Critical: false, Value: []byte{0x04, 0x00}},
		},
	}
	unhandled := cert.UnhandledCriticalExtensions()
	require.Len(t, unhandled, 1)
	assert.True(t, unhandled[0].Equal(privateTestOID))
}

func TestFingerprintStable(t *testing.T) {
	root := certtest.SelfSigned(t, certtest.CATemplate("Fingerprint Root"))
	reparsed, err := x509cert.ParseCertificate(root.DER)
	require.NoError(t, err)

	assert.Equal(t, root.Cert.Fingerprint(), reparsed.Fingerprint())
	assert.True(t, root.Cert.Equal(reparsed))
}
