// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"fmt"
	"os"
)

// ADKTransportBuilder wires the verifier's MCP server into a transport an
// agent runtime can consume. The only transport today is "inmemory": the
// agent and the verification tools share a process, so chain material
// never crosses a pipe or socket.
//
// Usage with [Google ADK]:
//
//	transport, err := NewADKTransportBuilder().BuildTransport(ctx)
//	mcpToolSet, err := mcptoolset.New(mcptoolset.Config{Transport: transport.(mcp.Transport)})
//
// See cmd/adk-go for a complete agent that drives verify_cert_chain and
// inspect_chain through this path.
//
// [Google ADK]: https://pkg.go.dev/google.golang.org/adk
type ADKTransportBuilder struct {
	configFile    string
	version       string
	transportType string
}

// NewADKTransportBuilder returns a builder preconfigured for the
// in-memory transport. The server configuration file defaults to
// $MCP_X509_CONFIG_FILE and may be empty, in which case built-in
// defaults apply.
func NewADKTransportBuilder() *ADKTransportBuilder {
	return &ADKTransportBuilder{
		configFile:    os.Getenv("MCP_X509_CONFIG_FILE"),
		version:       "1.0.0",
		transportType: "inmemory",
	}
}

// WithMCPConfig overrides the server configuration file path.
func (b *ADKTransportBuilder) WithMCPConfig(configFile string) *ADKTransportBuilder {
	b.configFile = configFile
	return b
}

// WithVersion sets the version the server reports during initialize.
func (b *ADKTransportBuilder) WithVersion(version string) *ADKTransportBuilder {
	b.version = version
	return b
}

// WithInMemoryTransport selects the in-memory transport.
func (b *ADKTransportBuilder) WithInMemoryTransport() *ADKTransportBuilder {
	b.transportType = "inmemory"
	return b
}

// ValidateConfig rejects transport types the verifier does not serve.
func (b *ADKTransportBuilder) ValidateConfig() error {
	if b.transportType != "inmemory" {
		return fmt.Errorf("unsupported transport type: %s", b.transportType)
	}
	return nil
}

// BuildTransport loads the server configuration and stands up the MCP
// server with the full verification tool set behind an in-memory
// transport. The result is returned as [any] so this file stays free of
// a hard dependency on the transport's concrete type; callers assert to
// the mcp.Transport they integrate with.
func (b *ADKTransportBuilder) BuildTransport(ctx context.Context) (any, error) {
	if err := b.ValidateConfig(); err != nil {
		return nil, err
	}

	config, err := loadConfig(b.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load MCP config: %w", err)
	}

	return NewTransportBuilder().
		WithConfig(config).
		WithVersion(b.version).
		WithDefaultTools().
		BuildInMemoryTransport(ctx)
}
