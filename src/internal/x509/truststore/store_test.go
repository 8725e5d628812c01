// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package truststore_test

import (
	encoding_asn1 "encoding/asn1"
	"testing"

	x509cert "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/cert"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certtest"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/truststore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAddAndContains(t *testing.T) {
	store := truststore.New()
	root := certtest.SelfSigned(t, certtest.CATemplate("Root A"))
	other := certtest.SelfSigned(t, certtest.CATemplate("Root B"))

	store.AddCertificate(root.Cert)
	assert.Equal(t, 1, store.Len())
	assert.True(t, store.Contains(root.Cert))
	assert.False(t, store.Contains(other.Cert))

	// Re-adding the same encoded certificate is a no-op.
	store.AddCertificate(root.Cert)
	assert.Equal(t, 1, store.Len())

	store.AddCertificate(nil)
	store.Add(nil)
	store.Add(&truststore.Anchor{})
	assert.Equal(t, 1, store.Len())
}

func TestFindAnchorsInsertionOrder(t *testing.T) {
	store := truststore.New()

	// Two distinct roots sharing one subject, as with a cross-signed
	// reissue: lookups must return them in the order they were added.
	first := certtest.SelfSigned(t, certtest.CATemplate("Shared Root"))
	second := certtest.SelfSigned(t, certtest.CATemplate("Shared Root"))
	unrelated := certtest.SelfSigned(t, certtest.CATemplate("Other Root"))

	store.AddCertificate(first.Cert)
	store.AddCertificate(unrelated.Cert)
	store.AddCertificate(second.Cert)

	anchors := store.FindAnchors(first.Cert.Subject)
	require.Len(t, anchors, 2)
	assert.True(t, anchors[0].Cert.Equal(first.Cert))
	assert.True(t, anchors[1].Cert.Equal(second.Cert))

	assert.Empty(t, store.FindAnchors(x509cert.Name{}))
}

func TestAnchorLookupIsByExactBytes(t *testing.T) {
	store := truststore.New()
	root := certtest.SelfSigned(t, certtest.CATemplate("Exact Root"))
	lookalike := certtest.SelfSigned(t, certtest.CATemplate("Exact Root"))

	store.AddCertificate(root.Cert)

	assert.NotNil(t, store.Anchor(root.Cert))
	assert.Nil(t, store.Anchor(lookalike.Cert), "same subject, different key is a different anchor")
}

func TestAnchorPermitsEKU(t *testing.T) {
	root := certtest.SelfSigned(t, certtest.CATemplate("EKU Root"))

	unrestricted := &truststore.Anchor{Cert: root.Cert}
	assert.True(t, unrestricted.PermitsEKU(x509cert.OIDServerAuth))

	serverOnly := &truststore.Anchor{
		Cert:        root.Cert,
		AllowedEKUs: []encoding_asn1.ObjectIdentifier{x509cert.OIDServerAuth},
	}
	assert.True(t, serverOnly.PermitsEKU(x509cert.OIDServerAuth))
	assert.False(t, serverOnly.PermitsEKU(x509cert.OIDClientAuth))
	assert.True(t, serverOnly.PermitsEKU(nil), "no required purpose means no restriction applies")

	anything := &truststore.Anchor{
		Cert:        root.Cert,
		AllowedEKUs: []encoding_asn1.ObjectIdentifier{x509cert.OIDAnyExtendedKeyUsage},
	}
	assert.True(t, anything.PermitsEKU(x509cert.OIDClientAuth))
}
