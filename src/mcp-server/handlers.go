// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/mcp-server/templates"
	"github.com/mark3labs/mcp-go/server"
)

// instructionData holds the data used to populate the MCP server
// instructions template.
type instructionData struct {
	ToolCount int
	Tools     []toolInfo
}

// toolInfo represents information about an MCP tool for template rendering.
type toolInfo struct {
	Name        string
	Description string
	Role        string
}

// loadInstructions renders the embedded instructions template with the
// registered tool set and returns the text for MCP client initialization.
//
// Parameters:
//   - embed: Filesystem holding the instructions template
//   - tools: Tool definitions without config requirements
//   - toolsWithConfig: Tool definitions that require configuration access
//
// Returns:
//   - string: The rendered instruction text describing server capabilities
//   - error: If the embedded file cannot be read or template rendering fails
func loadInstructions(embed templates.EmbedFS, tools []ToolDefinition, toolsWithConfig []ToolDefinitionWithConfig) (string, error) {
	templateBytes, err := embed.ReadFile("X509_instructions.md")
	if err != nil {
		return "", fmt.Errorf("failed to load MCP server instructions template: %w", err)
	}

	var toolInfos []toolInfo
	for _, tool := range tools {
		toolInfos = append(toolInfos, toolInfo{
			Name:        string(tool.Tool.Name),
			Description: tool.Tool.Description,
			Role:        tool.Role,
		})
	}
	for _, tool := range toolsWithConfig {
		toolInfos = append(toolInfos, toolInfo{
			Name:        string(tool.Tool.Name),
			Description: tool.Tool.Description,
			Role:        tool.Role,
		})
	}

	data := instructionData{
		ToolCount: len(toolInfos),
		Tools:     toolInfos,
	}

	tmpl, err := template.New("instructions").Parse(string(templateBytes))
	if err != nil {
		return "", fmt.Errorf("failed to parse instructions template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute instructions template: %w", err)
	}

	return buf.String(), nil
}

// serverCache holds server capability metadata for the status and
// documentation resources.
type serverCache struct {
	mu              sync.Mutex
	prompts         []map[string]any
	tools           []map[string]any
	toolsWithConfig []map[string]any
	resources       []map[string]any
}

var (
	capabilityCache     *serverCache
	capabilityCacheOnce sync.Once
)

// getServerCache returns the lazily initialized capability cache. It is
// populated by ServerBuilder.Build and read by the resource handlers.
func getServerCache() *serverCache {
	capabilityCacheOnce.Do(func() {
		capabilityCache = &serverCache{}
	})
	return capabilityCache
}

// loadPromptsConfig returns the cached prompt metadata.
func loadPromptsConfig() []map[string]any {
	cache := getServerCache()
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return cache.prompts
}

// toolsConfig holds the cached tool metadata, split by configuration
// requirement with a merged view for listing.
type toolsConfig struct {
	Tools           []map[string]any
	ToolsWithConfig []map[string]any
	AllTools        []map[string]any
}

// loadToolsConfig returns the cached tool metadata.
func loadToolsConfig() *toolsConfig {
	cache := getServerCache()
	cache.mu.Lock()
	defer cache.mu.Unlock()

	all := make([]map[string]any, 0, len(cache.tools)+len(cache.toolsWithConfig))
	all = append(all, cache.tools...)
	all = append(all, cache.toolsWithConfig...)
	return &toolsConfig{
		Tools:           cache.tools,
		ToolsWithConfig: cache.toolsWithConfig,
		AllTools:        all,
	}
}

// loadResourcesConfig returns the cached resource metadata.
func loadResourcesConfig() []map[string]any {
	cache := getServerCache()
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return cache.resources
}

// populateCapabilityCache records the registered tools, prompts, and
// resources so the status and documentation resources can report them.
// Called from ServerBuilder.Build.
func populateCapabilityCache(tools []ToolDefinition, toolsWithConfig []ToolDefinitionWithConfig, prompts []server.ServerPrompt, resources []server.ServerResource) {
	cache := getServerCache()
	cache.mu.Lock()
	defer cache.mu.Unlock()

	cache.tools = make([]map[string]any, 0, len(tools))
	for _, toolDef := range tools {
		cache.tools = append(cache.tools, map[string]any{
			"name":        toolDef.Tool.Name,
			"description": toolDef.Tool.Description,
			"role":        toolDef.Role,
		})
	}

	cache.toolsWithConfig = make([]map[string]any, 0, len(toolsWithConfig))
	for _, toolDef := range toolsWithConfig {
		cache.toolsWithConfig = append(cache.toolsWithConfig, map[string]any{
			"name":        toolDef.Tool.Name,
			"description": toolDef.Tool.Description,
			"role":        toolDef.Role,
		})
	}

	cache.prompts = make([]map[string]any, 0, len(prompts))
	for _, promptDef := range prompts {
		prompt := promptDef.Prompt
		metadata := map[string]any{
			"name":        prompt.Name,
			"description": prompt.Description,
		}
		if len(prompt.Arguments) > 0 {
			args := make([]map[string]any, 0, len(prompt.Arguments))
			for _, arg := range prompt.Arguments {
				args = append(args, map[string]any{
					"name":        arg.Name,
					"description": arg.Description,
					"required":    arg.Required,
				})
			}
			metadata["arguments"] = args
		}
		cache.prompts = append(cache.prompts, metadata)
	}

	cache.resources = make([]map[string]any, 0, len(resources))
	for _, resourceDef := range resources {
		resource := resourceDef.Resource
		cache.resources = append(cache.resources, map[string]any{
			"uri":         resource.URI,
			"name":        resource.Name,
			"description": resource.Description,
			"mimeType":    resource.MIMEType,
		})
	}
}
