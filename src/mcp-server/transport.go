// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	jsonrpcInternal "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/helper/jsonrpc"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	mcptransport "github.com/modelcontextprotocol/go-sdk/mcp"
)

// jsonRPCError is the error member of a JSON-RPC 2.0 response.
type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// jsonRPCResponse is a JSON-RPC 2.0 response object.
type jsonRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      any           `json:"id"`
	Result  any           `json:"result,omitempty"`
	Error   *jsonRPCError `json:"error,omitempty"`
}

// InMemoryTransport bridges an agent runtime speaking the [Official MCP
// SDK] transport interface to the verifier's [mark3labs/mcp-go] server,
// entirely in process. Requests written by the agent are normalized,
// dispatched against an in-process client, and the responses surface on
// the read side as raw JSON-RPC bytes.
//
// [mark3labs/mcp-go]: https://pkg.go.dev/github.com/mark3labs/mcp-go
// [Official MCP SDK]: https://pkg.go.dev/github.com/modelcontextprotocol/go-sdk
type InMemoryTransport struct {
	client          *client.Client
	started         bool
	mu              sync.Mutex
	recvCh          chan []byte // agent-facing read side
	sendCh          chan []byte // agent-facing write side
	ctx             context.Context
	cancel          context.CancelFunc
	samplingHandler client.SamplingHandler
	sem             chan struct{}  // caps concurrent in-flight requests
	shutdownWg      sync.WaitGroup // active request handlers
	processWg       sync.WaitGroup // dispatch loop
}

// NewInMemoryTransport creates a transport ready for ConnectServer. The
// channels are shallow on purpose: backpressure belongs to the caller,
// not a hidden queue.
func NewInMemoryTransport(ctx context.Context) *InMemoryTransport {
	ctx, cancel := context.WithCancel(ctx)
	return &InMemoryTransport{
		recvCh: make(chan []byte, 1),
		sendCh: make(chan []byte, 1),
		ctx:    ctx,
		cancel: cancel,
		sem:    make(chan struct{}, 100),
	}
}

// SetSamplingHandler installs the handler used for AI sampling requests.
// Must be called before ConnectServer to take effect.
func (t *InMemoryTransport) SetSamplingHandler(handler client.SamplingHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samplingHandler = handler
}

// SendJSONRPCNotification pushes a server-initiated notification onto the
// agent's read side, e.g. progress while walking a long chain.
func (t *InMemoryTransport) SendJSONRPCNotification(method string, params any) {
	t.sendResponse(map[string]any{
		"jsonrpc": mcp.JSONRPC_VERSION,
		"method":  method,
		"params":  params,
	})
}

// ReadMessage blocks until a response or notification is available, or
// the transport shuts down (io.EOF).
func (t *InMemoryTransport) ReadMessage() ([]byte, error) {
	select {
	case msg := <-t.recvCh:
		return msg, nil
	case <-t.ctx.Done():
		return nil, io.EOF
	}
}

// WriteMessage queues a JSON-RPC request for dispatch.
func (t *InMemoryTransport) WriteMessage(data []byte) error {
	if err := t.ctx.Err(); err != nil {
		return err
	}
	select {
	case t.sendCh <- data:
		return nil
	case <-t.ctx.Done():
		return t.ctx.Err()
	}
}

// Close cancels the transport context and waits for the dispatch loop and
// all in-flight handlers to drain. Channels stay open; cancellation is
// what unblocks readers.
func (t *InMemoryTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}
	t.processWg.Wait()
	t.shutdownWg.Wait()
	t.started = false
	return nil
}

// Connect returns the connection wrapper the official SDK expects.
func (t *InMemoryTransport) Connect(ctx context.Context) (mcptransport.Connection, error) {
	return &ADKTransportConnection{transport: t}, nil
}

// ConnectServer binds the verifier's MCP server to this transport through
// an in-process client and starts the dispatch loop. Server notifications
// are forwarded to the agent's read side so bidirectional features (AI
// sampling, progress streaming) work across the bridge.
func (t *InMemoryTransport) ConnectServer(ctx context.Context, srv *server.MCPServer) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return fmt.Errorf("transport already connected")
	}

	var err error
	if t.samplingHandler != nil {
		t.client, err = client.NewInProcessClientWithSamplingHandler(srv, t.samplingHandler)
	} else {
		t.client, err = client.NewInProcessClient(srv)
	}
	if err != nil {
		return fmt.Errorf("failed to create in-process client: %w", err)
	}

	t.client.OnNotification(func(n mcp.JSONRPCNotification) {
		t.SendJSONRPCNotification(n.Method, n.Params)
	})

	if err := t.client.Start(t.ctx); err != nil {
		return fmt.Errorf("failed to start client: %w", err)
	}

	t.processWg.Add(1)
	go t.processMessages()

	t.started = true
	return nil
}

// processMessages drains the write side, handing each request to its own
// goroutine so a slow chain verification never blocks notifications or
// concurrent calls. The semaphore bounds the fan-out.
func (t *InMemoryTransport) processMessages() {
	defer t.processWg.Done()

	for {
		select {
		case <-t.ctx.Done():
			return
		case data := <-t.sendCh:
			select {
			case t.sem <- struct{}{}:
				t.shutdownWg.Add(1)
				go func(data []byte) {
					defer func() {
						<-t.sem
						t.shutdownWg.Done()
					}()
					t.handleMessage(data)
				}(data)
			case <-t.ctx.Done():
				return
			}
		}
	}
}

// handleMessage parses, normalizes, and dispatches one JSON-RPC message,
// then writes the response. Notifications (no id) never get a reply.
func (t *InMemoryTransport) handleMessage(data []byte) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.sendResponse(jsonRPCResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      nil,
			Error:   &jsonRPCError{Code: -32700, Message: "Parse error"},
		})
		return
	}

	req := jsonrpcInternal.Map(raw)
	id := req["id"]

	method, ok := req["method"].(string)
	if !ok {
		if id != nil {
			t.sendResponse(jsonRPCResponse{
				JSONRPC: mcp.JSONRPC_VERSION,
				ID:      id,
				Error: &jsonRPCError{
					Code:    -32600,
					Message: fmt.Sprintf("invalid method: expected string, got %T", req["method"]),
				},
			})
		}
		return
	}

	// Client lifecycle notification, nothing to forward.
	if method == "notifications/initialized" {
		return
	}

	result, err := t.dispatch(method, req)

	if id == nil {
		return
	}

	resp := jsonRPCResponse{JSONRPC: mcp.JSONRPC_VERSION, ID: id}
	if err != nil {
		resp.Error = &jsonRPCError{Code: errorCode(err), Message: err.Error()}
	} else {
		resp.Result = result
	}
	t.sendResponse(resp)
}

// errorCode maps a dispatch error to its JSON-RPC code. Parameter shape
// problems are "Invalid params"; everything else is an internal error.
func errorCode(err error) int {
	msg := err.Error()
	if strings.Contains(msg, "invalid params") || strings.Contains(msg, "missing params") {
		return -32602
	}
	return -32603
}

// dispatch routes a normalized request to the in-process client.
func (t *InMemoryTransport) dispatch(method string, req map[string]any) (any, error) {
	if t.client == nil {
		return nil, fmt.Errorf("transport not connected")
	}

	switch method {
	case string(mcp.MethodInitialize):
		return t.initialize(req)
	case string(mcp.MethodPing):
		if err := t.client.Ping(t.ctx); err != nil {
			return nil, err
		}
		return map[string]any{}, nil
	case string(mcp.MethodToolsList):
		return t.client.ListTools(t.ctx, mcp.ListToolsRequest{})
	case string(mcp.MethodToolsCall):
		return t.callTool(req)
	case string(mcp.MethodResourcesList):
		listReq := mcp.ListResourcesRequest{}
		listReq.Params.Cursor = mcp.Cursor(cursorParam(req))
		return t.client.ListResources(t.ctx, listReq)
	case string(mcp.MethodResourcesRead):
		return t.readResource(req)
	case string(mcp.MethodPromptsList):
		listReq := mcp.ListPromptsRequest{}
		listReq.Params.Cursor = mcp.Cursor(cursorParam(req))
		return t.client.ListPrompts(t.ctx, listReq)
	case string(mcp.MethodPromptsGet):
		return t.getPrompt(req)
	default:
		return nil, fmt.Errorf("method not supported: %s", method)
	}
}

// cursorParam pulls an optional pagination cursor from a list request.
func cursorParam(req map[string]any) string {
	params, ok := req["params"].(map[string]any)
	if !ok {
		return ""
	}
	cursor, err := getOptionalStringParam(params, "cursor", "")
	if err != nil {
		return ""
	}
	return cursor
}

func (t *InMemoryTransport) initialize(req map[string]any) (any, error) {
	params, err := getParams(req, string(mcp.MethodInitialize))
	if err != nil {
		return nil, err
	}
	protocolVersion, err := getStringParam(params, "protocolVersion")
	if err != nil {
		return nil, err
	}

	var capabilities mcp.ClientCapabilities
	if caps, ok := params["capabilities"]; ok {
		_ = jsonrpcInternal.UnmarshalFromMap(caps, &capabilities)
	}

	resp, err := t.client.Initialize(t.ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: protocolVersion,
			Capabilities:    capabilities,
		},
	})
	if err != nil {
		if mcp.IsUnsupportedProtocolVersion(err) {
			return nil, fmt.Errorf("unsupported protocol version: %w", err)
		}
		return nil, err
	}
	return resp, nil
}

func (t *InMemoryTransport) callTool(req map[string]any) (any, error) {
	params, err := getParams(req, string(mcp.MethodToolsCall))
	if err != nil {
		return nil, err
	}
	name, err := getStringParam(params, "name")
	if err != nil {
		return nil, err
	}
	args, err := getMapParam(params, "arguments")
	if err != nil {
		return nil, err
	}

	return t.client.CallTool(t.ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
}

func (t *InMemoryTransport) readResource(req map[string]any) (any, error) {
	params, err := getParams(req, string(mcp.MethodResourcesRead))
	if err != nil {
		return nil, err
	}
	uri, err := getStringParam(params, "uri")
	if err != nil {
		return nil, err
	}

	return t.client.ReadResource(t.ctx, mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: uri},
	})
}

func (t *InMemoryTransport) getPrompt(req map[string]any) (any, error) {
	params, err := getParams(req, string(mcp.MethodPromptsGet))
	if err != nil {
		return nil, err
	}
	name, err := getStringParam(params, "name")
	if err != nil {
		return nil, err
	}

	var arguments map[string]string
	if args, ok := params["arguments"].(map[string]any); ok {
		arguments = make(map[string]string, len(args))
		for k, v := range args {
			arguments[k] = fmt.Sprint(v)
		}
	}

	return t.client.GetPrompt(t.ctx, mcp.GetPromptRequest{
		Params: mcp.GetPromptParams{Name: name, Arguments: arguments},
	})
}

// sendResponse marshals and delivers a message to the agent's read side,
// dropping it if the transport is shutting down.
func (t *InMemoryTransport) sendResponse(resp any) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	select {
	case t.recvCh <- data:
	case <-t.ctx.Done():
	}
}

// ADKTransportConnection adapts InMemoryTransport to the official SDK's
// Connection interface.
type ADKTransportConnection struct {
	transport *InMemoryTransport
}

// Read implements [mcptransport.Connection].
func (c *ADKTransportConnection) Read(ctx context.Context) (jsonrpc.Message, error) {
	data, err := c.transport.ReadMessage()
	if err != nil {
		return nil, err
	}

	msg, err := jsonrpc.DecodeMessage(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode JSON-RPC message: %w", err)
	}
	return msg, nil
}

// Write implements [mcptransport.Connection].
func (c *ADKTransportConnection) Write(ctx context.Context, msg jsonrpc.Message) error {
	data, err := jsonrpc.EncodeMessage(msg)
	if err != nil {
		return err
	}
	return c.transport.WriteMessage(data)
}

// Close implements [mcptransport.Connection].
func (c *ADKTransportConnection) Close() error {
	return c.transport.Close()
}

// SessionID implements [mcptransport.Connection]. There is exactly one
// session per in-memory transport.
func (c *ADKTransportConnection) SessionID() string {
	return "in-memory-transport"
}

// TransportBuilder assembles the verifier's MCP server and hands back a
// transport for a given integration (the ADK agent, the CLI's serve
// mode). In-memory is the only mechanism; the server and its consumer
// always share a process.
type TransportBuilder struct {
	serverBuilder *ServerBuilder
}

// NewTransportBuilder creates a transport builder around a fresh
// ServerBuilder.
func NewTransportBuilder() *TransportBuilder {
	return &TransportBuilder{serverBuilder: NewServerBuilder()}
}

// WithConfig sets the server configuration.
func (tb *TransportBuilder) WithConfig(config *Config) *TransportBuilder {
	tb.serverBuilder.WithConfig(config)
	return tb
}

// WithVersion sets the server version.
func (tb *TransportBuilder) WithVersion(version string) *TransportBuilder {
	tb.serverBuilder.WithVersion(version)
	return tb
}

// WithDefaultTools registers the full verification tool set.
func (tb *TransportBuilder) WithDefaultTools() *TransportBuilder {
	tb.serverBuilder.WithDefaultTools()
	return tb
}

// BuildInMemoryTransport builds the server and connects it to a new
// in-memory transport. The result is typed [any] so callers assert to
// the transport interface of the SDK they integrate with.
func (tb *TransportBuilder) BuildInMemoryTransport(ctx context.Context) (any, error) {
	srv, err := tb.serverBuilder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build server: %w", err)
	}

	transport := NewInMemoryTransport(ctx)
	if err := transport.ConnectServer(ctx, srv); err != nil {
		return nil, fmt.Errorf("failed to connect server to transport: %w", err)
	}

	return transport, nil
}
