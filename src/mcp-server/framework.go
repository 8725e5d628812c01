// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/helper/gc"
	x509cert "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/cert"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certcache"
	certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/pathbuilder"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/report"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/truststore"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/verify"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/mcp-server/templates"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ServerConfig holds configuration for the [MCP] server, including version,
// config, and the embedded template filesystem.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type ServerConfig struct {
	Version string
	Config  *Config
	Embed   templates.EmbedFS
}

// CertificateManager defines the interface for certificate parsing and
// encoding operations used by the tool handlers.
//
// Methods:
//   - Decode: Parses a single certificate from PEM, DER, PKCS#7, or PKCS#12 data
//   - DecodeMultiple: Parses a chain of certificates from concatenated data
//   - EncodePEM: Encodes a certificate to PEM format
//   - EncodeMultiplePEM: Encodes multiple certificates to concatenated PEM format
type CertificateManager interface {
	Decode(data []byte) (*x509cert.Certificate, error)
	DecodeMultiple(data []byte) ([]*x509cert.Certificate, error)
	EncodePEM(cert *x509cert.Certificate) []byte
	EncodeMultiplePEM(certs []*x509cert.Certificate) []byte
}

// Verifier defines the interface for certificate chain verification.
// Implementations build candidate paths from the target and intermediates
// and check them against the supplied trust anchors.
//
// Verify returns a rendered-ready report in all cases: a failed
// verification verdict goes into the report, not the error. The error
// return is reserved for malformed inputs.
type Verifier interface {
	Verify(target *x509cert.Certificate, intermediates, anchors []*x509cert.Certificate, opts *verify.Options) (*report.Report, error)
}

// defaultCertManager implements CertificateManager over the strict codec,
// routing bare DER through the parsed-certificate cache.
type defaultCertManager struct {
	codec *certs.Codec
	cache *certcache.Cache
}

// NewCertificateManager creates the default certificate manager backed by
// the given parsed-certificate cache. A nil cache disables caching.
func NewCertificateManager(cache *certcache.Cache) CertificateManager {
	return &defaultCertManager{codec: certs.New(), cache: cache}
}

func (m *defaultCertManager) Decode(data []byte) (*x509cert.Certificate, error) {
	if m.cache != nil && !m.codec.IsPEM(data) {
		if cert, err := m.cache.Parse(data); err == nil {
			return cert, nil
		}
		// Not a single DER certificate; fall through for PKCS#7/PKCS#12.
	}
	return m.codec.Decode(data)
}

func (m *defaultCertManager) DecodeMultiple(data []byte) ([]*x509cert.Certificate, error) {
	return m.codec.DecodeMultiple(data)
}

func (m *defaultCertManager) EncodePEM(cert *x509cert.Certificate) []byte {
	return m.codec.EncodePEM(cert)
}

func (m *defaultCertManager) EncodeMultiplePEM(list []*x509cert.Certificate) []byte {
	return m.codec.EncodeMultiplePEM(list)
}

// DefaultVerifier implements Verifier using the internal path building and
// verification engine.
type DefaultVerifier struct{}

// Verify builds candidate paths for the target from the intermediates and
// verifies them against the anchors. The outcome, success or best failure,
// is captured in the returned report.
func (DefaultVerifier) Verify(target *x509cert.Certificate, intermediates, anchors []*x509cert.Certificate, opts *verify.Options) (*report.Report, error) {
	if target == nil {
		return nil, fmt.Errorf("no target certificate")
	}
	if len(anchors) == 0 {
		return nil, fmt.Errorf("no trust anchors supplied")
	}

	pool := pathbuilder.NewPool()
	for _, cert := range intermediates {
		pool.Add(cert)
	}
	store := truststore.New()
	for _, anchor := range anchors {
		store.AddCertificate(anchor)
	}

	if opts == nil {
		opts = &verify.Options{}
	}
	at := opts.Time
	if at.IsZero() {
		at = time.Now()
	}

	result, err := verify.VerifyChain(target, pool, store, opts)
	return report.New(target, result, err, at), nil
}

// ToolHandler defines the signature for tool handlers that matches [MCP]
// server expectations.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// ToolHandlerWithConfig defines tool handlers that require access to the
// server configuration, such as AI settings or expiry warning thresholds.
type ToolHandlerWithConfig func(ctx context.Context, request mcp.CallToolRequest, config *Config) (*mcp.CallToolResult, error)

// ResourceHandler defines the signature for resource read handlers.
type ResourceHandler = func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error)

// PromptHandler defines the signature for prompt handlers.
type PromptHandler = func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error)

// ToolDefinition pairs an MCP tool specification with its handler and a
// short role description used in the rendered server instructions.
type ToolDefinition struct {
	Tool    mcp.Tool
	Handler ToolHandler
	Role    string
}

// ToolDefinitionWithConfig pairs a tool specification with a handler that
// receives the server configuration.
type ToolDefinitionWithConfig struct {
	Tool    mcp.Tool
	Handler ToolHandlerWithConfig
	Role    string
}

// ServerDependencies holds all dependencies needed to create the MCP
// server. It is populated by ServerBuilder and should not be instantiated
// directly.
type ServerDependencies struct {
	Config          *Config
	Embed           templates.EmbedFS
	Version         string
	Instructions    string
	CertManager     CertificateManager
	Verifier        Verifier
	Tools           []ToolDefinition
	ToolsWithConfig []ToolDefinitionWithConfig
	Resources       []server.ServerResource
	Prompts         []server.ServerPrompt
	SamplingHandler client.SamplingHandler
}

// ServerBuilder constructs the [MCP] server with proper dependencies using
// a fluent interface.
//
// Example:
//
//	builder := NewServerBuilder().
//	    WithConfig(config).
//	    WithVersion("1.0.0").
//	    WithDefaultTools().
//	    WithSampling(samplingHandler)
//	server, err := builder.Build()
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type ServerBuilder struct{ deps ServerDependencies }

// NewServerBuilder creates a new server builder with empty dependencies.
func NewServerBuilder() *ServerBuilder { return &ServerBuilder{} }

// WithConfig sets the server configuration.
func (b *ServerBuilder) WithConfig(config *Config) *ServerBuilder {
	b.deps.Config = config
	return b
}

// WithEmbed sets the embedded filesystem serving templates and
// documentation resources. Defaults to [templates.MagicEmbed].
func (b *ServerBuilder) WithEmbed(embed templates.EmbedFS) *ServerBuilder {
	b.deps.Embed = embed
	return b
}

// WithVersion sets the server version string used for identification and
// User-Agent headers.
func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.deps.Version = version
	return b
}

// WithInstructions sets the instructions text advertised to MCP clients
// during initialization. When empty, Build renders the embedded
// instructions template.
func (b *ServerBuilder) WithInstructions(instructions string) *ServerBuilder {
	b.deps.Instructions = instructions
	return b
}

// WithCertManager sets the certificate manager for parsing and encoding
// operations.
func (b *ServerBuilder) WithCertManager(cm CertificateManager) *ServerBuilder {
	b.deps.CertManager = cm
	return b
}

// WithVerifier sets the chain verifier implementation.
func (b *ServerBuilder) WithVerifier(v Verifier) *ServerBuilder {
	b.deps.Verifier = v
	return b
}

// WithTools adds tool definitions that don't require configuration access.
func (b *ServerBuilder) WithTools(tools ...ToolDefinition) *ServerBuilder {
	b.deps.Tools = append(b.deps.Tools, tools...)
	return b
}

// WithToolsWithConfig adds tool definitions whose handlers receive the
// server configuration.
func (b *ServerBuilder) WithToolsWithConfig(tools ...ToolDefinitionWithConfig) *ServerBuilder {
	b.deps.ToolsWithConfig = append(b.deps.ToolsWithConfig, tools...)
	return b
}

// WithResources adds static and dynamic resources to the MCP server.
// Clients access resources using URIs like "info://version".
func (b *ServerBuilder) WithResources(resources ...server.ServerResource) *ServerBuilder {
	b.deps.Resources = append(b.deps.Resources, resources...)
	return b
}

// WithPrompts adds predefined prompts for guided workflows such as chain
// troubleshooting or expiry monitoring.
func (b *ServerBuilder) WithPrompts(prompts ...server.ServerPrompt) *ServerBuilder {
	b.deps.Prompts = append(b.deps.Prompts, prompts...)
	return b
}

// WithSampling adds a sampling handler for bidirectional AI communication.
// The handler enables AI-powered analysis tools with streaming responses;
// without it, those tools return static guidance messages.
func (b *ServerBuilder) WithSampling(handler client.SamplingHandler) *ServerBuilder {
	b.deps.SamplingHandler = handler
	return b
}

// WithDefaultTools registers the standard certificate verification tools
// via createTools, plus the default resources and prompts.
func (b *ServerBuilder) WithDefaultTools() *ServerBuilder {
	tools, toolsWithConfig := createTools()
	b.deps.Tools = append(b.deps.Tools, tools...)
	b.deps.ToolsWithConfig = append(b.deps.ToolsWithConfig, toolsWithConfig...)
	b.deps.Resources = append(b.deps.Resources, createResources()...)
	b.deps.Prompts = append(b.deps.Prompts, createPrompts()...)
	return b
}

// Build creates the [MCP] server with all configured dependencies.
// Missing pieces get defaults: the shared certificate manager, the
// built-in verifier, the embedded template filesystem, and instructions
// rendered from the registered tool set.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
func (b *ServerBuilder) Build() (*server.MCPServer, error) {
	if b.deps.Embed == nil {
		b.deps.Embed = templates.MagicEmbed
	}
	if b.deps.CertManager == nil {
		b.deps.CertManager = NewCertificateManager(sharedCache())
	}
	if b.deps.Verifier == nil {
		b.deps.Verifier = DefaultVerifier{}
	}
	if b.deps.Config == nil {
		config, err := loadConfig("")
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		b.deps.Config = config
	}

	instructions := b.deps.Instructions
	if instructions == "" {
		rendered, err := loadInstructions(b.deps.Embed, b.deps.Tools, b.deps.ToolsWithConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to render server instructions: %w", err)
		}
		instructions = rendered
	}

	s := server.NewMCPServer(
		"X509 Chain Verifier",
		b.deps.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
		server.WithPromptCapabilities(true),
		server.WithInstructions(instructions),
	)

	// Sampling is serviced by the connected client; the in-memory
	// transport routes sampling/createMessage to the configured handler.
	if b.deps.SamplingHandler != nil {
		s.EnableSampling()
	}

	for _, tool := range b.deps.Tools {
		s.AddTool(tool.Tool, tool.Handler)
	}

	for _, tool := range b.deps.ToolsWithConfig {
		handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return tool.Handler(ctx, request, b.deps.Config)
		}
		s.AddTool(tool.Tool, handler)
	}

	for _, resource := range b.deps.Resources {
		s.AddResource(resource.Resource, resource.Handler)
	}

	for _, prompt := range b.deps.Prompts {
		s.AddPrompt(prompt.Prompt, prompt.Handler)
	}

	populateCapabilityCache(b.deps.Tools, b.deps.ToolsWithConfig, b.deps.Prompts, b.deps.Resources)

	return s, nil
}

// DefaultSamplingHandler provides configurable AI API integration for
// bidirectional communication. It speaks the OpenAI-compatible streaming
// chat completions protocol.
type DefaultSamplingHandler struct {
	apiKey        string
	endpoint      string
	model         string
	timeout       time.Duration
	client        *http.Client
	version       string
	TokenCallback func(string) // Callback for streaming tokens
}

// NewDefaultSamplingHandler creates a new sampling handler from the AI
// section of the server configuration.
func NewDefaultSamplingHandler(config *Config, version string) *DefaultSamplingHandler {
	return &DefaultSamplingHandler{
		apiKey:   config.AI.APIKey,
		endpoint: config.AI.Endpoint,
		model:    config.AI.Model,
		version:  version,
		timeout:  time.Duration(config.AI.Timeout) * time.Second,
		client:   &http.Client{Timeout: time.Duration(config.AI.Timeout) * time.Second},
	}
}

// CreateMessage handles sampling requests by calling the configured AI API.
func (h *DefaultSamplingHandler) CreateMessage(ctx context.Context, request mcp.CreateMessageRequest) (*mcp.CreateMessageResult, error) {
	// The pooled buffer is used for error response reading; during
	// successful streaming it stays allocated but idle.
	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	if h.apiKey == "" {
		return h.handleNoAPIKey()
	}

	messages := h.convertMessages(request.Messages)
	model := h.selectModel(request.ModelPreferences)
	requestMessages := h.prepareMessages(messages, request.SystemPrompt)
	apiRequest := h.buildAPIRequest(model, requestMessages, request)

	resp, err := h.sendAPIRequest(ctx, apiRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, h.handleAPIError(resp, buf)
	}

	content, modelName, stopReason, err := h.parseStreamingResponse(resp.Body, model)
	if err != nil {
		return nil, fmt.Errorf("error reading streaming response: %w", err)
	}

	return h.buildSamplingResult(content, modelName, stopReason), nil
}

// handleNoAPIKey returns a helpful message when no API key is configured.
func (h *DefaultSamplingHandler) handleNoAPIKey() (*mcp.CreateMessageResult, error) {
	response := "AI API key not configured. Set X509_AI_APIKEY or configure the ai.apiKey field in the config file to enable certificate analysis. " +
		"Until then, the server will return static information only."

	return &mcp.CreateMessageResult{
		SamplingMessage: mcp.SamplingMessage{
			Role:    mcp.RoleAssistant,
			Content: mcp.NewTextContent(response),
		},
		Model:      "not-configured",
		StopReason: "end",
	}, nil
}

// convertMessages converts MCP messages to OpenAI-compatible format.
func (h *DefaultSamplingHandler) convertMessages(mcpMessages []mcp.SamplingMessage) []map[string]any {
	var messages []map[string]any
	for _, msg := range mcpMessages {
		message := map[string]any{
			"role": string(msg.Role),
		}

		if textContent, ok := msg.Content.(mcp.TextContent); ok {
			message["content"] = textContent.Text
		} else {
			message["content"] = fmt.Sprintf("%v", msg.Content)
		}

		messages = append(messages, message)
	}
	return messages
}

// selectModel chooses the model based on client preferences, falling back
// to the configured default.
func (h *DefaultSamplingHandler) selectModel(preferences *mcp.ModelPreferences) string {
	model := h.model
	if preferences != nil && len(preferences.Hints) > 0 {
		model = preferences.Hints[0].Name
	}
	return model
}

// prepareMessages prepends the system prompt when provided.
func (h *DefaultSamplingHandler) prepareMessages(messages []map[string]any, systemPrompt string) []map[string]any {
	if systemPrompt == "" {
		return messages
	}

	systemMessage := map[string]any{
		"role":    "system",
		"content": systemPrompt,
	}
	return append([]map[string]any{systemMessage}, messages...)
}

// buildAPIRequest creates the API request payload.
func (h *DefaultSamplingHandler) buildAPIRequest(model string, messages []map[string]any, request mcp.CreateMessageRequest) map[string]any {
	apiRequest := map[string]any{
		"model":       model,
		"messages":    messages,
		"max_tokens":  request.MaxTokens,
		"temperature": request.Temperature,
		"stream":      true,
	}

	if len(request.StopSequences) > 0 {
		apiRequest["stop"] = request.StopSequences
	}

	return apiRequest
}

// sendAPIRequest creates and sends the HTTP request.
func (h *DefaultSamplingHandler) sendAPIRequest(ctx context.Context, apiRequest map[string]any) (*http.Response, error) {
	reqBody, err := json.Marshal(apiRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal API request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", h.endpoint+"/v1/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.apiKey)
	req.Header.Set("User-Agent", "X.509-Chain-Verifier-MCP/"+h.version+" (+https://github.com/H0llyW00dzZ/x509-chain-verifier)")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call AI API: %w", err)
	}

	return resp, nil
}

// handleAPIError processes API error responses.
func (h *DefaultSamplingHandler) handleAPIError(resp *http.Response, buf gc.Buffer) error {
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return fmt.Errorf("AI API error (status %d): failed to read error response: %w", resp.StatusCode, err)
	}
	return fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(buf.Bytes()))
}

// parseStreamingResponse consumes the Server-Sent Events stream and
// accumulates the assistant content.
func (h *DefaultSamplingHandler) parseStreamingResponse(body io.Reader, defaultModel string) (string, string, string, error) {
	var fullContent strings.Builder
	modelName := defaultModel
	stopReason := "stop"

	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := scanner.Text()

		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		if data, found := strings.CutPrefix(line, "data: "); found {
			if data == "[DONE]" {
				break
			}

			var chunk map[string]any
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue // Skip malformed chunks
			}

			if modelFromChunk, ok := chunk["model"].(string); ok && modelName == defaultModel {
				modelName = modelFromChunk
			}

			if choices, ok := chunk["choices"].([]any); ok && len(choices) > 0 {
				if choice, ok := choices[0].(map[string]any); ok {
					if delta, ok := choice["delta"].(map[string]any); ok {
						if content, ok := delta["content"].(string); ok {
							fullContent.WriteString(content)
							if h.TokenCallback != nil {
								h.TokenCallback(content)
							}
						}
					}

					if finishReason, ok := choice["finish_reason"].(string); ok && finishReason != "" {
						stopReason = finishReason
					}
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return "", "", "", err
	}

	return fullContent.String(), modelName, stopReason, nil
}

// buildSamplingResult creates the final sampling result.
func (h *DefaultSamplingHandler) buildSamplingResult(content, modelName, stopReason string) *mcp.CreateMessageResult {
	return &mcp.CreateMessageResult{
		SamplingMessage: mcp.SamplingMessage{
			Role:    mcp.RoleAssistant,
			Content: mcp.NewTextContent(content),
		},
		Model:      modelName,
		StopReason: stopReason,
	}
}
