// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"testing"

	x509cert "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/cert"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certtest"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerBuilderBuild(t *testing.T) {
	t.Setenv("MCP_X509_CONFIG_FILE", "")
	t.Setenv("X509_AI_APIKEY", "")

	s, err := NewServerBuilder().
		WithVersion("test").
		WithDefaultTools().
		Build()
	require.NoError(t, err)
	require.NotNil(t, s)

	// Build populates the capability cache from the registered set.
	tools := loadToolsConfig()
	assert.Len(t, tools.AllTools, 6)
	assert.Len(t, loadPromptsConfig(), 3)
	assert.NotEmpty(t, loadResourcesConfig())
}

func TestServerBuilderCustomInstructions(t *testing.T) {
	t.Setenv("MCP_X509_CONFIG_FILE", "")
	t.Setenv("X509_AI_APIKEY", "")

	s, err := NewServerBuilder().
		WithVersion("test").
		WithInstructions("custom instructions").
		WithDefaultTools().
		Build()
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestDefaultVerifier(t *testing.T) {
	chain := certtest.Chain(t, "leaf.example.com", "Test Intermediate")
	leaf, intermediate, root := chain[0], chain[1], chain[2]

	verifier := DefaultVerifier{}

	t.Run("ValidChain", func(t *testing.T) {
		rep, err := verifier.Verify(leaf.Cert,
			[]*x509cert.Certificate{intermediate.Cert},
			[]*x509cert.Certificate{root.Cert},
			&verify.Options{Time: certtest.ValidTime})
		require.NoError(t, err)
		require.NotNil(t, rep)
		assert.True(t, rep.OK())
	})

	t.Run("UntrustedChain", func(t *testing.T) {
		otherRoot := certtest.SelfSigned(t, certtest.CATemplate("Unrelated Root"))
		rep, err := verifier.Verify(leaf.Cert,
			[]*x509cert.Certificate{intermediate.Cert},
			[]*x509cert.Certificate{otherRoot.Cert},
			&verify.Options{Time: certtest.ValidTime})
		require.NoError(t, err)
		require.NotNil(t, rep)
		assert.False(t, rep.OK())
	})

	t.Run("NilTarget", func(t *testing.T) {
		_, err := verifier.Verify(nil, nil, []*x509cert.Certificate{root.Cert}, nil)
		assert.Error(t, err)
	})

	t.Run("NoAnchors", func(t *testing.T) {
		_, err := verifier.Verify(leaf.Cert, nil, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no trust anchors")
	})
}

func TestDefaultCertManager(t *testing.T) {
	chain := certtest.Chain(t, "manager.example.com", "Manager Intermediate")
	leaf := chain[0]

	manager := NewCertificateManager(sharedCache())

	t.Run("DecodeDER", func(t *testing.T) {
		decoded, err := manager.Decode(leaf.DER)
		require.NoError(t, err)
		assert.Contains(t, decoded.Subject.String(), "CN=manager.example.com")
	})

	t.Run("DecodePEM", func(t *testing.T) {
		pemData := manager.EncodePEM(leaf.Cert)
		decoded, err := manager.Decode(pemData)
		require.NoError(t, err)
		assert.Equal(t, leaf.Cert.Raw, decoded.Raw)
	})

	t.Run("DecodeMultiple", func(t *testing.T) {
		certs := make([]*x509cert.Certificate, 0, len(chain))
		for _, entity := range chain {
			certs = append(certs, entity.Cert)
		}
		pemData := manager.EncodeMultiplePEM(certs)

		decoded, err := manager.DecodeMultiple(pemData)
		require.NoError(t, err)
		require.Len(t, decoded, 3)
		assert.Contains(t, decoded[0].Subject.String(), "CN=manager.example.com")
	})

	t.Run("DecodeGarbage", func(t *testing.T) {
		_, err := manager.Decode([]byte("not a certificate"))
		assert.Error(t, err)
	})
}

func TestNewDefaultSamplingHandler(t *testing.T) {
	t.Setenv("MCP_X509_CONFIG_FILE", "")
	t.Setenv("X509_AI_APIKEY", "")

	config, err := loadConfig("")
	require.NoError(t, err)

	handler := NewDefaultSamplingHandler(config, "test")
	require.NotNil(t, handler)
	assert.Equal(t, "https://api.x.ai", handler.endpoint)
	assert.Equal(t, "grok-4-1-fast-non-reasoning", handler.model)
}
