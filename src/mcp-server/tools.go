// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createTools creates and returns all MCP tool definitions with their handlers.
// It organizes tools into two categories: those that don't require configuration
// and those that need access to the server configuration (e.g., for AI integration
// or expiry warning thresholds).
//
// Returns:
//   - A slice of ToolDefinition for tools without config dependencies
//   - A slice of ToolDefinitionWithConfig for tools that require server configuration
//
// The function defines the following tools:
//   - verify_cert_chain: Verifies a certificate chain against supplied trust anchors
//   - decode_certificate: Decodes a single certificate and reports its fields
//   - inspect_chain: Renders a verification report as a tree, table, or JSON
//   - get_resource_usage: Provides server resource usage statistics
//   - check_cert_expiry: Checks certificate expiry dates with configurable warnings
//   - analyze_certificate_with_ai: Performs AI-powered certificate analysis
//
// Each tool includes proper parameter definitions, descriptions, and default values
// as required by the MCP specification. Tool arguments are additionally validated
// against JSON Schemas before the handlers run.
func createTools() ([]ToolDefinition, []ToolDefinitionWithConfig) {
	// Tools that don't need config
	tools := []ToolDefinition{
		{
			Tool: mcp.NewTool("verify_cert_chain",
				mcp.WithDescription("Verify an X509 certificate chain against explicit trust anchors"),
				mcp.WithString("certificate",
					mcp.Required(),
					mcp.Description("Chain file path or base64-encoded certificate data, target certificate first"),
				),
				mcp.WithString("anchors",
					mcp.Description("Trust anchor file path or base64-encoded certificate data (required unless trust_last is set)"),
				),
				mcp.WithBoolean("trust_last",
					mcp.Description("Treat the last certificate of the chain as the trust anchor (default: false)"),
					mcp.DefaultBool(false),
				),
				mcp.WithString("eku",
					mcp.Description("Required extended key usage: a named purpose like 'serverAuth' or a dotted OID"),
				),
				mcp.WithString("time",
					mcp.Description("Verification time in RFC 3339 format (default: now)"),
				),
				mcp.WithNumber("max_depth",
					mcp.Description("Maximum candidate path length (default: built-in limit)"),
				),
				mcp.WithBoolean("require_end_entity",
					mcp.Description("Reject chains whose target certificate is itself a CA (default: false)"),
					mcp.DefaultBool(false),
				),
			),
			Handler: withValidation("verify_cert_chain", handleVerifyCertChain),
			Role:    "chainVerifier",
		},
		{
			Tool: mcp.NewTool("decode_certificate",
				mcp.WithDescription("Decode a single X509 certificate and report its subject, issuer, validity, key, and extensions"),
				mcp.WithString("certificate",
					mcp.Required(),
					mcp.Description("Certificate file path or base64-encoded certificate data"),
				),
				mcp.WithString("format",
					mcp.Description("Output format: 'text' or 'json' (default: text)"),
					mcp.DefaultString("text"),
				),
			),
			Handler: withValidation("decode_certificate", handleDecodeCertificate),
			Role:    "certificateDecoder",
		},
		{
			Tool: mcp.NewTool("inspect_chain",
				mcp.WithDescription("Verify a certificate chain and render the full report as a tree, table, or JSON"),
				mcp.WithString("certificate",
					mcp.Required(),
					mcp.Description("Chain file path or base64-encoded certificate data, target certificate first"),
				),
				mcp.WithString("anchors",
					mcp.Description("Trust anchor file path or base64-encoded certificate data (required unless trust_last is set)"),
				),
				mcp.WithBoolean("trust_last",
					mcp.Description("Treat the last certificate of the chain as the trust anchor (default: false)"),
					mcp.DefaultBool(false),
				),
				mcp.WithString("format",
					mcp.Description("Report format: 'tree', 'table', or 'json' (default: tree)"),
					mcp.DefaultString("tree"),
				),
				mcp.WithString("time",
					mcp.Description("Verification time in RFC 3339 format (default: now)"),
				),
			),
			Handler: withValidation("inspect_chain", handleInspectChain),
			Role:    "chainInspector",
		},
		{
			Tool: mcp.NewTool("get_resource_usage",
				mcp.WithDescription("Get current resource usage statistics including memory, GC, and certificate cache information"),
				mcp.WithBoolean("detailed",
					mcp.Description("Include detailed memory breakdown (default: false)"),
					mcp.DefaultBool(false),
				),
				mcp.WithString("format",
					mcp.Description("Output format: 'json' or 'markdown' (default: 'json')"),
					mcp.DefaultString("json"),
				),
			),
			Handler: withValidation("get_resource_usage", handleGetResourceUsage),
			Role:    "resourceMonitor",
		},
	}

	// Tools that need config
	toolsWithConfig := []ToolDefinitionWithConfig{
		{
			Tool: mcp.NewTool("check_cert_expiry",
				mcp.WithDescription("Check certificate expiry dates and warn about upcoming expirations"),
				mcp.WithString("certificate",
					mcp.Required(),
					mcp.Description("Certificate file path or base64-encoded certificate data"),
				),
				mcp.WithNumber("warn_days",
					mcp.Description("Number of days before expiry to show warning (default: 30)"),
					mcp.DefaultNumber(30),
				),
			),
			Handler: withValidationConfig("check_cert_expiry", handleCheckCertExpiry),
			Role:    "expiryChecker",
		},
		{
			Tool: mcp.NewTool("analyze_certificate_with_ai",
				mcp.WithDescription("Analyze certificate data using AI collaboration (requires bidirectional communication)"),
				mcp.WithString("certificate",
					mcp.Required(),
					mcp.Description("Certificate file path or base64-encoded certificate data to analyze"),
				),
				mcp.WithString("analysis_type",
					mcp.Required(),
					mcp.Description("Type of analysis (required): 'security', 'compliance', 'general'"),
				),
			),
			Handler: withValidationConfig("analyze_certificate_with_ai", handleAnalyzeCertificateWithAI),
			Role:    "aiAnalyzer",
		},
	}

	return tools, toolsWithConfig
}
