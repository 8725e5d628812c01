// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/cli"
	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certtest"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const version = "1.3.3.7-testing"

// writePEM writes the given entities as a concatenated PEM file and returns
// its path.
func writePEM(t *testing.T, dir, name string, entities ...*certtest.Entity) string {
	t.Helper()

	codec := x509certs.New()
	var data []byte
	for _, e := range entities {
		data = append(data, codec.EncodePEM(e.Cert)...)
	}

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func validTime() string {
	return certtest.ValidTime.Format(time.RFC3339)
}

func TestExecute_NoInputFile(t *testing.T) {
	os.Args = []string{"cmd"}
	err := cli.Execute(context.Background(), version, logger.NewCLILogger())
	if !errors.Is(err, cli.ErrInputFileRequired) {
		t.Errorf("expected ErrInputFileRequired, got %v", err)
	}
}

func TestExecute_NonExistentFile(t *testing.T) {
	os.Args = []string{"cmd", "-f", "/tmp/nonexistent-file-12345.cer"}
	err := cli.Execute(context.Background(), version, logger.NewCLILogger())
	assert.Error(t, err)
}

func TestExecute_InvalidFile(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "invalid.cer")
	require.NoError(t, os.WriteFile(tmpFile, []byte("invalid data"), 0644))

	os.Args = []string{"cmd", "-f", tmpFile}
	err := cli.Execute(context.Background(), version, logger.NewCLILogger())
	assert.Error(t, err)
}

func TestExecute_NoAnchors(t *testing.T) {
	dir := t.TempDir()
	entities := certtest.Chain(t, "leaf.example.com", "Test Intermediate")
	chainFile := writePEM(t, dir, "chain.pem", entities[0], entities[1])

	os.Args = []string{"cmd", "-f", chainFile}
	err := cli.Execute(context.Background(), version, logger.NewCLILogger())
	if !errors.Is(err, cli.ErrAnchorsRequired) {
		t.Errorf("expected ErrAnchorsRequired, got %v", err)
	}
}

func TestExecute_ValidChain(t *testing.T) {
	dir := t.TempDir()
	entities := certtest.Chain(t, "leaf.example.com", "Test Intermediate")
	chainFile := writePEM(t, dir, "chain.pem", entities[0], entities[1])
	anchorFile := writePEM(t, dir, "anchors.pem", entities[2])
	outFile := filepath.Join(dir, "report.json")

	os.Args = []string{"cmd",
		"-f", chainFile,
		"-a", anchorFile,
		"--time", validTime(),
		"--json",
		"-o", outFile,
	}
	err := cli.Execute(context.Background(), version, logger.NewCLILogger())
	require.NoError(t, err)
	assert.True(t, cli.OperationPerformedSuccessfully)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"valid": true`)
	assert.Contains(t, string(data), "leaf.example.com")
}

func TestExecute_TrustLast(t *testing.T) {
	dir := t.TempDir()
	entities := certtest.Chain(t, "leaf.example.com", "Test Intermediate")
	chainFile := writePEM(t, dir, "chain.pem", entities...)
	outFile := filepath.Join(dir, "report.txt")

	os.Args = []string{"cmd",
		"-f", chainFile,
		"--trust-last",
		"--time", validTime(),
		"--tree",
		"-o", outFile,
	}
	err := cli.Execute(context.Background(), version, logger.NewCLILogger())
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "leaf.example.com")
	assert.Contains(t, string(data), "Test Root")
}

func TestExecute_UntrustedChain(t *testing.T) {
	dir := t.TempDir()
	entities := certtest.Chain(t, "leaf.example.com", "Test Intermediate")
	otherRoot := certtest.SelfSigned(t, certtest.CATemplate("Other Root"))
	chainFile := writePEM(t, dir, "chain.pem", entities[0], entities[1])
	anchorFile := writePEM(t, dir, "anchors.pem", otherRoot)
	outFile := filepath.Join(dir, "report.txt")

	os.Args = []string{"cmd",
		"-f", chainFile,
		"-a", anchorFile,
		"--time", validTime(),
		"-o", outFile,
	}
	err := cli.Execute(context.Background(), version, logger.NewCLILogger())
	if !errors.Is(err, cli.ErrVerificationFailed) {
		t.Errorf("expected ErrVerificationFailed, got %v", err)
	}
	assert.False(t, cli.OperationPerformedSuccessfully)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "verification failed")
}

func TestExecute_RequiredEKU(t *testing.T) {
	dir := t.TempDir()
	entities := certtest.Chain(t, "leaf.example.com", "Test Intermediate")
	chainFile := writePEM(t, dir, "chain.pem", entities[0], entities[1])
	anchorFile := writePEM(t, dir, "anchors.pem", entities[2])

	// The minted leaf carries no extKeyUsage extension, so any purpose is
	// acceptable.
	os.Args = []string{"cmd",
		"-f", chainFile,
		"-a", anchorFile,
		"--time", validTime(),
		"--eku", "serverAuth",
		"-o", filepath.Join(dir, "out.txt"),
	}
	err := cli.Execute(context.Background(), version, logger.NewCLILogger())
	assert.NoError(t, err)
}

func TestExecute_BadFlagValues(t *testing.T) {
	dir := t.TempDir()
	entities := certtest.Chain(t, "leaf.example.com")
	chainFile := writePEM(t, dir, "chain.pem", entities[0])
	anchorFile := writePEM(t, dir, "anchors.pem", entities[1])

	tests := []struct {
		name string
		args []string
	}{
		{"bad time", []string{"--time", "not-a-time"}},
		{"bad eku", []string{"--eku", "not.an.oid!"}},
		{"bad policy", []string{"--policy", "1"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			os.Args = append([]string{"cmd", "-f", chainFile, "-a", anchorFile}, tc.args...)
			err := cli.Execute(context.Background(), version, logger.NewCLILogger())
			assert.Error(t, err)
		})
	}
}

func TestExecute_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	entities := certtest.Chain(t, "leaf.example.com")
	chainFile := writePEM(t, dir, "chain.pem", entities[0])
	anchorFile := writePEM(t, dir, "anchors.pem", entities[1])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	os.Args = []string{"cmd", "-f", chainFile, "-a", anchorFile}
	err := cli.Execute(ctx, version, logger.NewCLILogger())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
