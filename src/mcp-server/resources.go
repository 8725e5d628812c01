// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// createResources creates all static and dynamic MCP resource
// definitions with their handlers.
//
// The server exposes:
//   - config://template: Example configuration in JSON
//   - info://version: Server version and capability metadata
//   - docs://certificate-formats: Supported input format documentation
//   - docs://error-kinds: Verification failure taxonomy
//   - status://server-status: Live server status with cache statistics
func createResources() []server.ServerResource {
	return []server.ServerResource{
		{
			Resource: mcp.NewResource(
				"config://template",
				"Configuration Template",
				mcp.WithResourceDescription("Example MCP server configuration showing all supported fields"),
				mcp.WithMIMEType("application/json"),
			),
			Handler: handleConfigResource,
		},
		{
			Resource: mcp.NewResource(
				"info://version",
				"Server Version",
				mcp.WithResourceDescription("Server version and capability metadata"),
				mcp.WithMIMEType("application/json"),
			),
			Handler: handleVersionResource,
		},
		{
			Resource: mcp.NewResource(
				"docs://certificate-formats",
				"Certificate Formats",
				mcp.WithResourceDescription("Documentation for supported certificate input formats"),
				mcp.WithMIMEType("text/markdown"),
			),
			Handler: handleCertificateFormatsResource,
		},
		{
			Resource: mcp.NewResource(
				"docs://error-kinds",
				"Verification Error Kinds",
				mcp.WithResourceDescription("Taxonomy of verification failure kinds used in reports"),
				mcp.WithMIMEType("application/json"),
			),
			Handler: handleErrorKindsResource,
		},
		{
			Resource: mcp.NewResource(
				"status://server-status",
				"Server Status",
				mcp.WithResourceDescription("Current server health, capabilities, and cache statistics"),
				mcp.WithMIMEType("application/json"),
			),
			Handler: handleStatusResource,
		},
	}
}
