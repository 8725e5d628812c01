// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	encoding_asn1 "encoding/asn1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/helper/gc"
	x509cert "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/cert"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certcache"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/verify"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/mcp-server/templates"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

var (
	parsedCertCache     *certcache.Cache
	parsedCertCacheOnce sync.Once
)

// sharedCache returns the process-wide parsed-certificate cache used by
// the default certificate manager and reported by get_resource_usage.
func sharedCache() *certcache.Cache {
	parsedCertCacheOnce.Do(func() {
		parsedCertCache = certcache.New(certcache.DefaultMaxSize)
	})
	return parsedCertCache
}

// defaultManager is the certificate manager used by the tool handlers.
func defaultManager() CertificateManager {
	return NewCertificateManager(sharedCache())
}

// readCertificateInput resolves a tool certificate argument to raw bytes.
// The argument is either a filesystem path or base64-encoded data; file
// reads go through the pooled buffer to avoid per-call allocations.
func readCertificateInput(input string) ([]byte, error) {
	if info, err := os.Stat(input); err == nil && !info.IsDir() {
		f, err := os.Open(input)
		if err != nil {
			return nil, fmt.Errorf("failed to open certificate file: %w", err)
		}
		defer f.Close()

		buf := gc.Default.Get()
		defer func() {
			buf.Reset()
			gc.Default.Put(buf)
		}()
		if _, err := buf.ReadFrom(f); err != nil {
			return nil, fmt.Errorf("failed to read certificate file: %w", err)
		}
		data := make([]byte, len(buf.Bytes()))
		copy(data, buf.Bytes())
		return data, nil
	}

	data, err := base64.StdEncoding.DecodeString(input)
	if err != nil {
		return nil, fmt.Errorf("certificate input is neither a readable file nor valid base64 data: %w", err)
	}
	return data, nil
}

// decodeChainInput reads and parses a chain argument, target first.
func decodeChainInput(manager CertificateManager, input string) ([]*x509cert.Certificate, error) {
	data, err := readCertificateInput(input)
	if err != nil {
		return nil, err
	}
	chain, err := manager.DecodeMultiple(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate data: %w", err)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("no certificates found in input")
	}
	return chain, nil
}

// chainInputs is the resolved verification input set: the target, the
// candidate intermediates, and the trust anchors.
type chainInputs struct {
	target        *x509cert.Certificate
	intermediates []*x509cert.Certificate
	anchors       []*x509cert.Certificate
}

// resolveChainInputs decodes the certificate and anchors arguments shared
// by verify_cert_chain and inspect_chain. With trust_last set and no
// explicit anchors, the last certificate of the chain becomes the anchor.
func resolveChainInputs(manager CertificateManager, params map[string]any) (*chainInputs, error) {
	certArg, err := getStringParam(params, "certificate")
	if err != nil {
		return nil, err
	}
	chain, err := decodeChainInput(manager, certArg)
	if err != nil {
		return nil, err
	}

	in := &chainInputs{target: chain[0], intermediates: chain[1:]}

	anchorsArg, err := getOptionalStringParam(params, "anchors", "")
	if err != nil {
		return nil, err
	}
	if anchorsArg != "" {
		anchors, err := decodeChainInput(manager, anchorsArg)
		if err != nil {
			return nil, fmt.Errorf("anchors: %w", err)
		}
		in.anchors = anchors
	}

	trustLast, err := getOptionalBoolParam(params, "trust_last", false)
	if err != nil {
		return nil, err
	}
	if trustLast && len(in.anchors) == 0 {
		if len(chain) < 2 {
			return nil, fmt.Errorf("trust_last requires at least two certificates in the chain")
		}
		in.anchors = chain[len(chain)-1:]
		in.intermediates = chain[1 : len(chain)-1]
	}

	if len(in.anchors) == 0 {
		return nil, fmt.Errorf("no trust anchors: supply the anchors argument or set trust_last")
	}
	return in, nil
}

// ekuByName maps friendly purpose names to their RFC 5280 OIDs.
var ekuByName = map[string]encoding_asn1.ObjectIdentifier{
	"any":             x509cert.OIDAnyExtendedKeyUsage,
	"serverauth":      x509cert.OIDServerAuth,
	"clientauth":      x509cert.OIDClientAuth,
	"codesigning":     x509cert.OIDCodeSigning,
	"emailprotection": x509cert.OIDEmailProtection,
	"timestamping":    x509cert.OIDTimeStamping,
	"ocspsigning":     x509cert.OIDOCSPSigning,
}

// parseEKUArg accepts a named purpose (e.g. "serverAuth") or a dotted OID.
func parseEKUArg(s string) (encoding_asn1.ObjectIdentifier, error) {
	if oid, ok := ekuByName[strings.ToLower(s)]; ok {
		return oid, nil
	}
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid eku %q: not a known purpose name or dotted OID", s)
	}
	oid := make(encoding_asn1.ObjectIdentifier, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid eku %q: bad OID arc %q", s, p)
		}
		oid = append(oid, n)
	}
	return oid, nil
}

// verifyOptionsFromParams builds verification options from tool arguments.
func verifyOptionsFromParams(params map[string]any) (*verify.Options, error) {
	opts := &verify.Options{}

	if timeArg, err := getOptionalStringParam(params, "time", ""); err != nil {
		return nil, err
	} else if timeArg != "" {
		at, err := time.Parse(time.RFC3339, timeArg)
		if err != nil {
			return nil, fmt.Errorf("invalid time %q: expected RFC 3339", timeArg)
		}
		opts.Time = at
	}

	if ekuArg, err := getOptionalStringParam(params, "eku", ""); err != nil {
		return nil, err
	} else if ekuArg != "" {
		eku, err := parseEKUArg(ekuArg)
		if err != nil {
			return nil, err
		}
		opts.RequiredEKU = eku
	}

	if depth, err := getOptionalNumberParam(params, "max_depth", 0); err != nil {
		return nil, err
	} else if depth > 0 {
		opts.MaxDepth = int(depth)
	}

	ree, err := getOptionalBoolParam(params, "require_end_entity", false)
	if err != nil {
		return nil, err
	}
	opts.RequireEndEntity = ree

	return opts, nil
}

// handleVerifyCertChain verifies a chain against explicit trust anchors
// and returns a concise verdict with the validated path or best failure.
func handleVerifyCertChain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params, err := getArguments(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	manager := defaultManager()
	in, err := resolveChainInputs(manager, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts, err := verifyOptionsFromParams(params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rep, err := DefaultVerifier{}.Verify(in.target, in.intermediates, in.anchors, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	if rep.OK() {
		fmt.Fprintf(&sb, "VALID: %s\n\n", in.target.Subject.String())
		fmt.Fprintf(&sb, "Path (%d certificates, %d candidate path(s) tried):\n",
			rep.Result.Path.Len(), rep.Result.PathsTried)
		for i, cert := range rep.Result.Path.Certs {
			fmt.Fprintf(&sb, "  %d: %s\n", i, cert.Subject.String())
		}
		if policies := rep.Result.Policies; len(policies) > 0 {
			names := make([]string, len(policies))
			for i, p := range policies {
				names[i] = p.String()
			}
			fmt.Fprintf(&sb, "Policies: %s\n", strings.Join(names, ", "))
		}
	} else {
		fmt.Fprintf(&sb, "INVALID: %s\n\n", in.target.Subject.String())
		if rep.Err != nil {
			fmt.Fprintf(&sb, "Reason: %s\n", rep.Err.Error())
		} else {
			sb.WriteString("Reason: no candidate path reached a trust anchor\n")
		}
	}
	fmt.Fprintf(&sb, "Verified at: %s\n", rep.VerifiedAt.UTC().Format(time.RFC3339))

	return mcp.NewToolResultText(sb.String()), nil
}

// handleInspectChain verifies a chain and renders the full report.
func handleInspectChain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params, err := getArguments(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	manager := defaultManager()
	in, err := resolveChainInputs(manager, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts, err := verifyOptionsFromParams(params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rep, err := DefaultVerifier{}.Verify(in.target, in.intermediates, in.anchors, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	format, err := getOptionalStringParam(params, "format", "tree")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	switch format {
	case "json":
		out, err := rep.ToJSON()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to render report: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	case "table":
		return mcp.NewToolResultText(rep.RenderTable()), nil
	default:
		return mcp.NewToolResultText(rep.RenderASCIITree()), nil
	}
}

// handleDecodeCertificate decodes a single certificate and reports its
// fields without performing any chain verification.
func handleDecodeCertificate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params, err := getArguments(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	certArg, err := getStringParam(params, "certificate")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := readCertificateInput(certArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cert, err := defaultManager().Decode(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to parse certificate: %v", err)), nil
	}

	format, err := getOptionalStringParam(params, "format", "text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if format == "json" {
		out, err := formatJSON(certificateDetails(cert))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	}
	return mcp.NewToolResultText(describeCertificate(cert)), nil
}

// handleGetResourceUsage reports process memory, GC, and certificate
// cache statistics.
func handleGetResourceUsage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params, err := getArguments(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	detailed, err := getOptionalBoolParam(params, "detailed", false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := getOptionalStringParam(params, "format", "json")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	usage := CollectResourceUsage(detailed, sharedCache())
	if format == "markdown" {
		return mcp.NewToolResultText(usage.Markdown()), nil
	}
	out, err := formatJSON(usage)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

// handleCheckCertExpiry checks validity windows for every certificate in
// the input and warns about upcoming expirations.
func handleCheckCertExpiry(ctx context.Context, request mcp.CallToolRequest, config *Config) (*mcp.CallToolResult, error) {
	params, err := getArguments(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	certArg, err := getStringParam(params, "certificate")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	chain, err := decodeChainInput(defaultManager(), certArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	warnDays := float64(30)
	if config != nil && config.Defaults.WarnDays > 0 {
		warnDays = float64(config.Defaults.WarnDays)
	}
	warnDays, err = getOptionalNumberParam(params, "warn_days", warnDays)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	now := time.Now()
	warnBefore := time.Duration(warnDays) * 24 * time.Hour

	var sb strings.Builder
	fmt.Fprintf(&sb, "Expiry check for %d certificate(s), warning window %d days:\n\n", len(chain), int(warnDays))
	for i, cert := range chain {
		fmt.Fprintf(&sb, "%d: %s\n", i, cert.Subject.String())
		fmt.Fprintf(&sb, "   Not before: %s\n", cert.NotBefore.UTC().Format(time.RFC3339))
		fmt.Fprintf(&sb, "   Not after:  %s\n", cert.NotAfter.UTC().Format(time.RFC3339))

		switch {
		case now.Before(cert.NotBefore):
			fmt.Fprintf(&sb, "   STATUS: not yet valid (becomes valid in %s)\n", cert.NotBefore.Sub(now).Round(time.Hour))
		case now.After(cert.NotAfter):
			fmt.Fprintf(&sb, "   STATUS: EXPIRED %s ago\n", now.Sub(cert.NotAfter).Round(time.Hour))
		case now.Add(warnBefore).After(cert.NotAfter):
			days := int(cert.NotAfter.Sub(now).Hours() / 24)
			fmt.Fprintf(&sb, "   STATUS: WARNING, expires in %d day(s)\n", days)
		default:
			days := int(cert.NotAfter.Sub(now).Hours() / 24)
			fmt.Fprintf(&sb, "   STATUS: ok, %d day(s) remaining\n", days)
		}
		sb.WriteString("\n")
	}

	return mcp.NewToolResultText(sb.String()), nil
}

// handleAnalyzeCertificateWithAI decodes the certificate, builds an
// analysis context, and requests AI sampling from the connected client.
// Without a sampling-capable client the decoded context is returned with
// static guidance instead.
func handleAnalyzeCertificateWithAI(ctx context.Context, request mcp.CallToolRequest, config *Config) (*mcp.CallToolResult, error) {
	params, err := getArguments(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	certArg, err := getStringParam(params, "certificate")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	analysisType, err := getStringParam(params, "analysis_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	chain, err := decodeChainInput(defaultManager(), certArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	certContext := buildCertificateContext(chain)
	systemPrompt := analysisSystemPrompt()

	maxTokens := 4096
	temperature := 0.3
	if config != nil {
		if config.AI.MaxTokens > 0 {
			maxTokens = config.AI.MaxTokens
		}
		if config.AI.Temperature > 0 {
			temperature = config.AI.Temperature
		}
	}

	samplingRequest := mcp.CreateMessageRequest{
		CreateMessageParams: mcp.CreateMessageParams{
			Messages: []mcp.SamplingMessage{
				{
					Role: mcp.RoleUser,
					Content: mcp.NewTextContent(fmt.Sprintf(
						"Perform a %s analysis of the following certificate data:\n\n%s\n\n%s",
						analysisType, certContext, analysisInstruction(analysisType))),
				},
			},
			SystemPrompt: systemPrompt,
			MaxTokens:    maxTokens,
			Temperature:  temperature,
		},
	}

	if mcpServer := server.ServerFromContext(ctx); mcpServer != nil {
		result, err := mcpServer.RequestSampling(ctx, samplingRequest)
		if err == nil {
			if text, ok := result.Content.(mcp.TextContent); ok {
				return mcp.NewToolResultText(text.Text), nil
			}
			return mcp.NewToolResultText(fmt.Sprintf("%v", result.Content)), nil
		}
		// Fall through to static output when the client cannot sample.
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"AI sampling is not available on this connection. Decoded certificate context for %s analysis:\n\n%s",
		analysisType, certContext)), nil
}

// analysisSystemPrompt loads the embedded system prompt for AI analysis.
func analysisSystemPrompt() string {
	prompt, err := templates.MagicEmbed.ReadFile("certificate-analysis-system-prompt.md")
	if err != nil {
		return "You are an X.509 certificate analysis assistant. Ground every statement in the supplied certificate data."
	}
	return string(prompt)
}

// analysisInstruction returns the closing instruction for an analysis type.
func analysisInstruction(analysisType string) string {
	switch analysisType {
	case "security":
		return "Focus on key strength, signature algorithms, constraint extensions, and exploitable weaknesses."
	case "compliance":
		return "Focus on RFC 5280 conformance: required extensions, validity encoding, and name forms."
	default:
		return "Provide a general assessment covering validity, identity, key parameters, and notable extensions."
	}
}

// buildCertificateContext renders the decoded chain as text for the AI
// sampling request.
func buildCertificateContext(chain []*x509cert.Certificate) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Certificate chain (%d certificate(s), target first):\n\n", len(chain))
	for i, cert := range chain {
		fmt.Fprintf(&sb, "=== Certificate %d (%s) ===\n", i, chainPosition(i, len(chain)))
		sb.WriteString(describeCertificate(cert))
		sb.WriteString("\n")
	}
	return sb.String()
}

// chainPosition names a certificate's position in a target-first chain.
func chainPosition(index, total int) string {
	switch {
	case index == 0:
		return "target"
	case index == total-1:
		return "last supplied"
	default:
		return "intermediate"
	}
}

// describeCertificate renders one certificate's fields as readable text.
func describeCertificate(cert *x509cert.Certificate) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Subject: %s\n", cert.Subject.String())
	fmt.Fprintf(&sb, "Issuer: %s\n", cert.Issuer.String())
	fmt.Fprintf(&sb, "Serial: %s\n", cert.SerialNumber.Text(16))
	fmt.Fprintf(&sb, "Version: %d\n", cert.Version)
	fmt.Fprintf(&sb, "Not before: %s\n", cert.NotBefore.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "Not after:  %s\n", cert.NotAfter.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "Signature scheme: %s\n", cert.SignatureScheme().String())
	fmt.Fprintf(&sb, "SHA-256 fingerprint: %x\n", cert.Fingerprint())

	if bc, err := cert.BasicConstraints(); err == nil && bc != nil {
		switch {
		case bc.IsCA && bc.MaxPathLenPresent:
			fmt.Fprintf(&sb, "Basic constraints: CA, pathLenConstraint=%d\n", bc.MaxPathLen)
		case bc.IsCA:
			sb.WriteString("Basic constraints: CA\n")
		default:
			sb.WriteString("Basic constraints: not a CA\n")
		}
	}

	if ku, present, err := cert.KeyUsage(); err == nil && present {
		fmt.Fprintf(&sb, "Key usage: %s\n", formatKeyUsage(ku))
	}
	if ekus, present, err := cert.ExtendedKeyUsage(); err == nil && present {
		fmt.Fprintf(&sb, "Extended key usage: %s\n", formatExtKeyUsage(ekus))
	}
	if san, err := cert.SubjectAltName(); err == nil && san != nil {
		if len(san.DNSNames) > 0 {
			fmt.Fprintf(&sb, "DNS names: %s\n", strings.Join(san.DNSNames, ", "))
		}
		if len(san.EmailAddresses) > 0 {
			fmt.Fprintf(&sb, "Email addresses: %s\n", strings.Join(san.EmailAddresses, ", "))
		}
	}
	if policies, present, err := cert.CertificatePolicies(); err == nil && present {
		names := make([]string, len(policies))
		for i, p := range policies {
			names[i] = p.String()
		}
		fmt.Fprintf(&sb, "Certificate policies: %s\n", strings.Join(names, ", "))
	}
	if cert.IsSelfSigned() {
		sb.WriteString("Self-signed\n")
	}
	return sb.String()
}

// certificateDetails builds the JSON representation used by
// decode_certificate's json format.
func certificateDetails(cert *x509cert.Certificate) map[string]any {
	details := map[string]any{
		"subject":           cert.Subject.String(),
		"issuer":            cert.Issuer.String(),
		"serialNumber":      cert.SerialNumber.Text(16),
		"version":           cert.Version,
		"notBefore":         cert.NotBefore.UTC().Format(time.RFC3339),
		"notAfter":          cert.NotAfter.UTC().Format(time.RFC3339),
		"signatureScheme":   cert.SignatureScheme().String(),
		"sha256Fingerprint": fmt.Sprintf("%x", cert.Fingerprint()),
		"selfSigned":        cert.IsSelfSigned(),
	}

	if bc, err := cert.BasicConstraints(); err == nil && bc != nil {
		entry := map[string]any{"isCA": bc.IsCA}
		if bc.IsCA && bc.MaxPathLenPresent {
			entry["pathLenConstraint"] = bc.MaxPathLen
		}
		details["basicConstraints"] = entry
	}
	if ku, present, err := cert.KeyUsage(); err == nil && present {
		details["keyUsage"] = formatKeyUsage(ku)
	}
	if ekus, present, err := cert.ExtendedKeyUsage(); err == nil && present {
		details["extendedKeyUsage"] = formatExtKeyUsage(ekus)
	}
	if san, err := cert.SubjectAltName(); err == nil && san != nil {
		if len(san.DNSNames) > 0 {
			details["dnsNames"] = san.DNSNames
		}
		if len(san.EmailAddresses) > 0 {
			details["emailAddresses"] = san.EmailAddresses
		}
	}
	return details
}

// formatKeyUsage renders key usage bits as a comma-separated list.
func formatKeyUsage(ku x509cert.KeyUsage) string {
	names := []struct {
		bit  x509cert.KeyUsage
		name string
	}{
		{x509cert.KeyUsageDigitalSignature, "digitalSignature"},
		{x509cert.KeyUsageContentCommitment, "contentCommitment"},
		{x509cert.KeyUsageKeyEncipherment, "keyEncipherment"},
		{x509cert.KeyUsageDataEncipherment, "dataEncipherment"},
		{x509cert.KeyUsageKeyAgreement, "keyAgreement"},
		{x509cert.KeyUsageCertSign, "keyCertSign"},
		{x509cert.KeyUsageCRLSign, "cRLSign"},
		{x509cert.KeyUsageEncipherOnly, "encipherOnly"},
		{x509cert.KeyUsageDecipherOnly, "decipherOnly"},
	}
	var set []string
	for _, n := range names {
		if ku&n.bit != 0 {
			set = append(set, n.name)
		}
	}
	if len(set) == 0 {
		return "none"
	}
	return strings.Join(set, ", ")
}

// formatExtKeyUsage renders EKU OIDs with friendly names where known.
func formatExtKeyUsage(ekus []encoding_asn1.ObjectIdentifier) string {
	names := make([]string, len(ekus))
	for i, oid := range ekus {
		names[i] = ekuName(oid)
	}
	return strings.Join(names, ", ")
}

// ekuName maps a purpose OID back to its friendly name.
func ekuName(oid encoding_asn1.ObjectIdentifier) string {
	switch {
	case oid.Equal(x509cert.OIDAnyExtendedKeyUsage):
		return "any"
	case oid.Equal(x509cert.OIDServerAuth):
		return "serverAuth"
	case oid.Equal(x509cert.OIDClientAuth):
		return "clientAuth"
	case oid.Equal(x509cert.OIDCodeSigning):
		return "codeSigning"
	case oid.Equal(x509cert.OIDEmailProtection):
		return "emailProtection"
	case oid.Equal(x509cert.OIDTimeStamping):
		return "timeStamping"
	case oid.Equal(x509cert.OIDOCSPSigning):
		return "OCSPSigning"
	default:
		return oid.String()
	}
}

// formatJSON marshals a value with indentation for tool output.
func formatJSON(v any) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON output: %w", err)
	}
	return string(out), nil
}
