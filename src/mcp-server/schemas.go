// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/xeipuuv/gojsonschema"
)

// toolArgumentSchemas holds the JSON Schema for each tool's arguments.
// The schemas mirror the mcp.NewTool declarations in createTools and
// reject unknown argument names before the handler runs, so a typo like
// "trustlast" fails loudly instead of being silently ignored.
var toolArgumentSchemas = map[string]string{
	"verify_cert_chain": `{
		"type": "object",
		"properties": {
			"certificate": {"type": "string", "minLength": 1},
			"anchors": {"type": "string"},
			"trust_last": {"type": "boolean"},
			"eku": {"type": "string"},
			"time": {"type": "string"},
			"max_depth": {"type": "number", "minimum": 0},
			"require_end_entity": {"type": "boolean"}
		},
		"required": ["certificate"],
		"additionalProperties": false
	}`,
	"decode_certificate": `{
		"type": "object",
		"properties": {
			"certificate": {"type": "string", "minLength": 1},
			"format": {"enum": ["text", "json"]}
		},
		"required": ["certificate"],
		"additionalProperties": false
	}`,
	"inspect_chain": `{
		"type": "object",
		"properties": {
			"certificate": {"type": "string", "minLength": 1},
			"anchors": {"type": "string"},
			"trust_last": {"type": "boolean"},
			"format": {"enum": ["tree", "table", "json"]},
			"time": {"type": "string"}
		},
		"required": ["certificate"],
		"additionalProperties": false
	}`,
	"get_resource_usage": `{
		"type": "object",
		"properties": {
			"detailed": {"type": "boolean"},
			"format": {"enum": ["json", "markdown"]}
		},
		"additionalProperties": false
	}`,
	"check_cert_expiry": `{
		"type": "object",
		"properties": {
			"certificate": {"type": "string", "minLength": 1},
			"warn_days": {"type": "number", "minimum": 1}
		},
		"required": ["certificate"],
		"additionalProperties": false
	}`,
	"analyze_certificate_with_ai": `{
		"type": "object",
		"properties": {
			"certificate": {"type": "string", "minLength": 1},
			"analysis_type": {"enum": ["security", "compliance", "general"]}
		},
		"required": ["certificate", "analysis_type"],
		"additionalProperties": false
	}`,
}

var (
	compiledSchemas     map[string]*gojsonschema.Schema
	compileSchemasOnce  sync.Once
	compileSchemasError error
)

// compiledSchema returns the compiled JSON Schema for a tool, compiling
// all schemas on first use.
func compiledSchema(tool string) (*gojsonschema.Schema, error) {
	compileSchemasOnce.Do(func() {
		compiledSchemas = make(map[string]*gojsonschema.Schema, len(toolArgumentSchemas))
		for name, raw := range toolArgumentSchemas {
			schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
			if err != nil {
				compileSchemasError = fmt.Errorf("invalid argument schema for tool %s: %w", name, err)
				return
			}
			compiledSchemas[name] = schema
		}
	})
	if compileSchemasError != nil {
		return nil, compileSchemasError
	}
	schema, ok := compiledSchemas[tool]
	if !ok {
		return nil, fmt.Errorf("no argument schema registered for tool %s", tool)
	}
	return schema, nil
}

// validateToolArguments checks tool call arguments against the tool's JSON
// Schema and returns a descriptive error listing every violation.
func validateToolArguments(tool string, args map[string]any) error {
	schema, err := compiledSchema(tool)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("argument validation failed for %s: %w", tool, err)
	}
	if result.Valid() {
		return nil
	}

	var problems []string
	for _, violation := range result.Errors() {
		problems = append(problems, violation.String())
	}
	return fmt.Errorf("invalid arguments for %s: %s", tool, strings.Join(problems, "; "))
}

// withValidation wraps a tool handler with JSON Schema argument validation.
// Validation failures surface as tool errors, not protocol errors, so the
// client sees the schema violation text.
func withValidation(tool string, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := getArguments(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := validateToolArguments(tool, args); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return handler(ctx, request)
	}
}

// withValidationConfig is withValidation for handlers that receive the
// server configuration.
func withValidationConfig(tool string, handler ToolHandlerWithConfig) ToolHandlerWithConfig {
	return func(ctx context.Context, request mcp.CallToolRequest, config *Config) (*mcp.CallToolResult, error) {
		args, err := getArguments(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := validateToolArguments(tool, args); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return handler(ctx, request, config)
	}
}
