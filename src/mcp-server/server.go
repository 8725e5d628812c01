// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"fmt"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/mcp-server/templates"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/version"
)

var appVersion = version.Version // default version

// GetVersion returns the current version of the MCP server.
//
// The version is initially the default from the version package and is
// overridden when Run is called with a specific version string. Other
// components use it for logging and User-Agent headers.
func GetVersion() string {
	return appVersion
}

// Run starts the MCP server with the X.509 certificate chain verification
// tools.
//
// Run wires the default tool set, resources, prompts, and the AI sampling
// handler into the CLI framework and executes the root command. With no
// CLI arguments the command serves MCP over stdio until interrupted;
// --instructions and --config behave as documented on the root command.
//
// Parameters:
//   - version: Version string reported by the server (e.g., "0.1.0")
//
// Returns:
//   - error: Configuration, build, or runtime error
//
// Configuration is loaded from the --config flag, then the
// MCP_X509_CONFIG_FILE environment variable, then built-in defaults.
func Run(version string) error {
	// Set the version for GetVersion
	appVersion = version

	config, err := loadConfig("")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Created once and shared between the instructions template and the
	// server registration.
	tools, toolsWithConfig := createTools()

	instructions, err := loadInstructions(templates.MagicEmbed, tools, toolsWithConfig)
	if err != nil {
		return fmt.Errorf("failed to load instructions: %w", err)
	}

	deps := ServerDependencies{
		Config:          config,
		Embed:           templates.MagicEmbed,
		Version:         version,
		Instructions:    instructions,
		CertManager:     NewCertificateManager(sharedCache()),
		Verifier:        DefaultVerifier{},
		Tools:           tools,
		ToolsWithConfig: toolsWithConfig,
		Resources:       createResources(),
		Prompts:         createPrompts(),
		SamplingHandler: NewDefaultSamplingHandler(config, version),
	}

	framework := NewCLIFramework("", deps)
	return framework.BuildRootCommand().Execute()
}
