// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package report_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certtest"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/pathbuilder"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/report"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/truststore"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verifiedReport(t *testing.T) *report.Report {
	t.Helper()
	chain := certtest.Chain(t, "leaf.example.com", "Intermediate")

	store := truststore.New()
	store.AddCertificate(chain[2].Cert)
	pool := pathbuilder.NewPool()
	pool.Add(chain[1].Cert)

	opts := &verify.Options{Time: certtest.ValidTime}
	result, err := verify.VerifyChain(chain[0].Cert, pool, store, opts)
	require.NoError(t, err)

	return report.New(chain[0].Cert, result, nil, certtest.ValidTime)
}

func failedReport(t *testing.T) *report.Report {
	t.Helper()
	chain := certtest.Chain(t, "leaf.example.com", "Intermediate")

	// Empty trust store: verification cannot find a path.
	result, err := verify.VerifyChain(chain[0].Cert, nil, truststore.New(), &verify.Options{Time: certtest.ValidTime})
	require.Error(t, err)

	return report.New(chain[0].Cert, result, err, certtest.ValidTime)
}

func TestRenderASCIITree(t *testing.T) {
	r := verifiedReport(t)
	tree := r.RenderASCIITree()

	assert.Contains(t, tree, "leaf.example.com")
	assert.Contains(t, tree, "Target Certificate")
	assert.Contains(t, tree, "Trust Anchor")
	assert.Contains(t, tree, "└──")
	assert.NotContains(t, tree, "✗")
}

func TestRenderASCIITreeFailure(t *testing.T) {
	r := failedReport(t)
	tree := r.RenderASCIITree()

	assert.Contains(t, tree, "✗")
	assert.Contains(t, tree, "verification failed")
}

func TestRenderTable(t *testing.T) {
	r := verifiedReport(t)
	table := r.RenderTable()

	assert.Contains(t, table, "leaf.example.com")
	assert.Contains(t, table, "Intermediate CA Certificate")
	assert.Contains(t, table, "ECDSA")
	// Markdown table framing.
	assert.True(t, strings.Contains(table, "|"))
}

func TestToJSON(t *testing.T) {
	r := verifiedReport(t)
	data, err := r.ToJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, true, decoded["valid"])
	assert.EqualValues(t, 3, decoded["pathLength"])

	certs, ok := decoded["certificates"].([]any)
	require.True(t, ok)
	assert.Len(t, certs, 3)
}

func TestToJSONFailure(t *testing.T) {
	r := failedReport(t)
	data, err := r.ToJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, false, decoded["valid"])

	failure, ok := decoded["failure"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "other", failure["kind"])
}
