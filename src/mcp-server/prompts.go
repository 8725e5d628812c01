// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// createPrompts creates and returns all MCP prompt definitions with their
// handlers. Prompts are guided workflows composed from the verification
// tool set.
func createPrompts() []server.ServerPrompt {
	return []server.ServerPrompt{
		{
			Prompt: mcp.NewPrompt("chain-verification",
				mcp.WithPromptDescription("Guided certificate chain verification workflow"),
				mcp.WithArgument("certificate_path",
					mcp.ArgumentDescription("Path to chain file or base64-encoded certificate data, target first"),
				),
				mcp.WithArgument("anchors_path",
					mcp.ArgumentDescription("Path to trust anchor file or base64-encoded anchor data"),
				),
			),
			Handler: handleChainVerificationPrompt,
		},
		{
			Prompt: mcp.NewPrompt("expiry-monitoring",
				mcp.WithPromptDescription("Monitor certificate expiration dates and generate renewal alerts"),
				mcp.WithArgument("certificate_path",
					mcp.ArgumentDescription("Path to certificate file or base64-encoded certificate data"),
				),
				mcp.WithArgument("alert_days",
					mcp.ArgumentDescription("Number of days before expiry to alert (default: 30)"),
				),
			),
			Handler: handleExpiryMonitoringPrompt,
		},
		{
			Prompt: mcp.NewPrompt("troubleshooting",
				mcp.WithPromptDescription("Troubleshoot common certificate chain verification failures"),
				mcp.WithArgument("issue_type",
					mcp.ArgumentDescription("Type of issue: 'untrusted', 'expired', 'constraints', 'parsing'"),
				),
				mcp.WithArgument("certificate_path",
					mcp.ArgumentDescription("Path to chain file or base64-encoded certificate data"),
				),
			),
			Handler: handleTroubleshootingPrompt,
		},
	}
}

// handleChainVerificationPrompt handles the guided verification workflow.
func handleChainVerificationPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	certPath := request.Params.Arguments["certificate_path"]
	anchorsPath := request.Params.Arguments["anchors_path"]

	messages := []mcp.PromptMessage{
		mcp.NewPromptMessage(
			mcp.RoleAssistant,
			mcp.NewTextContent(fmt.Sprintf(`I'll help you verify the certificate chain for: %s against the trust anchors in: %s

Let's work through the verification step by step:`, certPath, anchorsPath)),
		),
		mcp.NewPromptMessage(
			mcp.RoleUser,
			mcp.NewTextContent(`1. First, decode the target certificate to confirm it is what we expect.`),
		),
		mcp.NewPromptMessage(
			mcp.RoleUser,
			mcp.NewTextContent(`Use the "decode_certificate" tool to inspect the target's subject, issuer, validity window, and extensions.`),
		),
		mcp.NewPromptMessage(
			mcp.RoleUser,
			mcp.NewTextContent(`2. Next, verify the full chain against the supplied trust anchors.`),
		),
		mcp.NewPromptMessage(
			mcp.RoleUser,
			mcp.NewTextContent(`Use the "verify_cert_chain" tool with the certificate and anchors arguments. Add an eku argument if the chain must be valid for a specific purpose such as serverAuth.`),
		),
		mcp.NewPromptMessage(
			mcp.RoleUser,
			mcp.NewTextContent(`3. If the verdict needs more detail, render the full report.`),
		),
		mcp.NewPromptMessage(
			mcp.RoleUser,
			mcp.NewTextContent(`Use the "inspect_chain" tool with format "table" or "json" to see per-certificate status along the path.`),
		),
		mcp.NewPromptMessage(
			mcp.RoleAssistant,
			mcp.NewTextContent(`4. I'll then interpret the verdict: which path validated, or which certificate caused the most plausible failure and what to do about it.`),
		),
	}

	return mcp.NewGetPromptResult(
		"Certificate Chain Verification Workflow",
		messages,
	), nil
}

// handleExpiryMonitoringPrompt handles the expiry monitoring prompt.
func handleExpiryMonitoringPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	certPath := request.Params.Arguments["certificate_path"]
	alertDays := request.Params.Arguments["alert_days"]
	if alertDays == "" {
		alertDays = "30"
	}

	messages := []mcp.PromptMessage{
		mcp.NewPromptMessage(
			mcp.RoleAssistant,
			mcp.NewTextContent(fmt.Sprintf(`I'll help you monitor certificate expiration for: %s with a %s-day alert threshold.`, certPath, alertDays)),
		),
		mcp.NewPromptMessage(
			mcp.RoleUser,
			mcp.NewTextContent(`Use the "check_cert_expiry" tool to analyze expiration dates and identify certificates requiring attention.`),
		),
		mcp.NewPromptMessage(
			mcp.RoleAssistant,
			mcp.NewTextContent(`Key things to look for:
• Certificates that have already expired
• Certificates expiring within the alert window
• Certificates that are still valid
• Recommended renewal timelines based on the results`),
		),
		mcp.NewPromptMessage(
			mcp.RoleAssistant,
			mcp.NewTextContent(`Based on the results, I'll provide specific recommendations for certificate renewal and monitoring.`),
		),
	}

	return mcp.NewGetPromptResult(
		"Certificate Expiry Monitoring",
		messages,
	), nil
}

// handleTroubleshootingPrompt handles the verification troubleshooting prompt.
func handleTroubleshootingPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	issueType := request.Params.Arguments["issue_type"]
	certPath := request.Params.Arguments["certificate_path"]

	var messages []mcp.PromptMessage

	switch issueType {
	case "untrusted":
		messages = []mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(fmt.Sprintf(`Troubleshooting untrusted chain issues for: %s`, certPath)),
			),
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(`Common causes when no path reaches a trust anchor:
• Missing intermediate certificates in the supplied chain
• The issuing CA is not among the supplied anchors
• Issuer/subject name mismatch between chain links
• A cross-signed intermediate pointing at a different root`),
			),
			mcp.NewPromptMessage(
				mcp.RoleUser,
				mcp.NewTextContent(`Let's run "inspect_chain" with format "table" to see which link breaks.`),
			),
		}
	case "expired":
		messages = []mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(fmt.Sprintf(`Troubleshooting validity period issues for: %s`, certPath)),
			),
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(`Common causes:
• A certificate on the path has expired
• A certificate is not yet valid (clock skew or premature deployment)
• Renewal completed but the old certificate is still being served`),
			),
			mcp.NewPromptMessage(
				mcp.RoleUser,
				mcp.NewTextContent(`Let's run "check_cert_expiry" to pinpoint the offending certificate, then re-verify with the "time" argument to confirm.`),
			),
		}
	case "constraints":
		messages = []mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(fmt.Sprintf(`Troubleshooting constraint violations for: %s`, certPath)),
			),
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(`Constraint failures to check:
• basicConstraints: an issuer on the path is not marked as a CA
• pathLenConstraint: the chain is longer than a CA allows
• keyUsage: an issuer lacks keyCertSign
• extendedKeyUsage: an intermediate does not permit the required purpose
• nameConstraints: the target's names fall outside a permitted subtree
• certificate policies: requireExplicitPolicy with an empty valid policy set`),
			),
			mcp.NewPromptMessage(
				mcp.RoleUser,
				mcp.NewTextContent(`Let's run "verify_cert_chain" and read the failure reason, then "decode_certificate" on the certificate it names.`),
			),
		}
	case "parsing":
		messages = []mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(fmt.Sprintf(`Troubleshooting certificate parsing issues for: %s`, certPath)),
			),
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(`Parsing here is strict DER. Common causes:
• The file is not PEM, DER, PKCS#7, or PKCS#12
• Truncated or corrupted certificate data
• Non-minimal DER encodings that lenient tools accept
• A PEM block with a mangled base64 body`),
			),
			mcp.NewPromptMessage(
				mcp.RoleUser,
				mcp.NewTextContent(`Let's run "decode_certificate" on the input and read the exact parse error.`),
			),
		}
	default:
		messages = []mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(`Please specify a valid issue type: 'untrusted', 'expired', 'constraints', or 'parsing'.`),
			),
		}
	}

	return mcp.NewGetPromptResult(
		"Chain Verification Troubleshooting Guide",
		messages,
	), nil
}
