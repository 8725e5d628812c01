// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/verify"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/mcp-server/templates"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/version"
	"github.com/mark3labs/mcp-go/mcp"
)

// handleConfigResource serves the configuration template resource: a JSON
// document showing the expected configuration structure with defaults.
func handleConfigResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	exampleConfig := map[string]any{
		"defaults": map[string]any{
			"warnDays":         30,
			"timeoutSeconds":   30,
			"maxDepth":         0,
			"requireEndEntity": false,
			"reportFormat":     "tree",
		},
		"ai": map[string]any{
			"apiKey":      "",
			"endpoint":    "https://api.x.ai",
			"model":       "grok-4-1-fast-non-reasoning",
			"timeout":     30,
			"maxTokens":   4096,
			"temperature": 0.3,
		},
	}

	jsonData, err := json.MarshalIndent(exampleConfig, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config template: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "config://template",
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

// handleVersionResource serves the server version and capability metadata.
// Capabilities are taken from the populated capability cache, so the
// listing always matches what the builder actually registered.
func handleVersionResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	tools := loadToolsConfig()

	versionInfo := map[string]any{
		"name":    "X509 Chain Verifier",
		"version": version.Version,
		"type":    "MCP Server",
		"capabilities": map[string]any{
			"tools":     tools.AllTools,
			"resources": loadResourcesConfig(),
			"prompts":   loadPromptsConfig(),
		},
		"supportedInputFormats": []string{"pem", "der", "pkcs7", "pkcs12"},
	}

	jsonData, err := json.MarshalIndent(versionInfo, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal version info: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "info://version",
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

// handleErrorKindsResource serves the verification failure taxonomy:
// every ErrorKind token the verifier can attribute to a certificate,
// with a short description. Tokens match the "kind" field in JSON
// verification reports.
func handleErrorKindsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	kinds := []struct {
		Kind        verify.ErrorKind
		Description string
	}{
		{verify.KindExpired, "notAfter is before the verification time"},
		{verify.KindNotYetValid, "notBefore is after the verification time"},
		{verify.KindSignatureInvalid, "certificate signature did not verify under the issuer's public key"},
		{verify.KindNotCA, "certificate lacks the required role: non-CA issuer, or CA target under end-entity enforcement"},
		{verify.KindPathLenExceeded, "a pathLenConstraint along the path was violated"},
		{verify.KindEKUMismatch, "required extended key usage is not permitted along the path"},
		{verify.KindNameConstraintViolation, "a name fell outside the permitted subtrees or inside the excluded subtrees"},
		{verify.KindUnhandledCriticalExtension, "certificate carries a critical extension the verifier does not process"},
		{verify.KindPolicyRejected, "explicit policy was required and the valid policy set became empty"},
		{verify.KindAlgorithmDisallowed, "signature algorithm is outside the configured allowlist"},
		{verify.KindOther, "failures with no more specific classification, including no path to a trust anchor"},
	}

	entries := make([]map[string]any, 0, len(kinds))
	for _, k := range kinds {
		entries = append(entries, map[string]any{
			"kind":        k.Kind.String(),
			"description": k.Description,
		})
	}

	jsonData, err := json.MarshalIndent(map[string]any{
		"note":       "Failures are attributed to one certificate; index 0 is the verification target.",
		"errorKinds": entries,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal error kinds: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "docs://error-kinds",
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

// handleCertificateFormatsResource serves the embedded documentation for
// supported certificate input formats.
func handleCertificateFormatsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	content, err := templates.MagicEmbed.ReadFile("certificate-formats.md")
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate formats template: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "docs://certificate-formats",
			MIMEType: "text/markdown",
			Text:     string(content),
		},
	}, nil
}

// handleStatusResource serves live server status: health, registered
// capabilities, and parsed-certificate cache statistics.
func handleStatusResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	tools := loadToolsConfig()
	cacheMetrics := sharedCache().GetMetrics()

	statusInfo := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"server":    "X.509 Chain Verifier MCP Server",
		"version":   version.Version,
		"capabilities": map[string]any{
			"tools":     tools.AllTools,
			"resources": loadResourcesConfig(),
			"prompts":   loadPromptsConfig(),
		},
		"certCache": map[string]any{
			"size":      cacheMetrics.Size,
			"hits":      cacheMetrics.Hits,
			"misses":    cacheMetrics.Misses,
			"evictions": cacheMetrics.Evictions,
		},
	}

	jsonData, err := json.MarshalIndent(statusInfo, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal status info: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "status://server-status",
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
