// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/template"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/helper/posix"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/logger"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/mcp-server/templates"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

// cliHelpData holds the values substituted into the embedded cli_help.md
// template when building the root command's help text.
type cliHelpData struct {
	// ExecutableName: binary name used in command examples
	ExecutableName string
}

// CLIFramework integrates Cobra CLI with the MCP server.
//
// The framework provides a single binary that works both ways: run with no
// arguments it starts the MCP server on stdio; run with flags it behaves
// like a conventional CLI. Key behaviors:
//   - Dynamic executable naming based on the actual binary path
//   - [Gopls-style] --instructions flag printing the rendered server
//     instructions
//   - Configuration file support via --config or the MCP_X509_CONFIG_FILE
//     environment variable
//   - Graceful shutdown on SIGINT/SIGTERM
//
// [Gopls-style]: https://tip.golang.org/gopls/features/mcp#instructions-to-the-model
type CLIFramework struct {
	configFile string
	deps       ServerDependencies
}

// NewCLIFramework creates a CLI framework instance wrapping the given
// server dependencies.
//
// Parameters:
//   - configFile: Path to the server configuration file. Pass an empty
//     string to fall back to MCP_X509_CONFIG_FILE or defaults.
//   - deps: Server dependencies used to build the MCP server. Zero-value
//     fields are filled with defaults by ServerBuilder.Build.
//
// Returns:
//   - *CLIFramework: Framework ready for BuildRootCommand.
func NewCLIFramework(configFile string, deps ServerDependencies) *CLIFramework {
	return &CLIFramework{
		configFile: configFile,
		deps:       deps,
	}
}

// BuildRootCommand creates the root Cobra command.
//
// Command behavior:
//   - With --instructions: prints the rendered server instructions and exits
//   - Without arguments: starts the MCP server on stdio
//   - With unknown arguments: returns an error
//
// Returns:
//   - *cobra.Command: Root command ready for Execute.
func (cf *CLIFramework) BuildRootCommand() *cobra.Command {
	// Cross-platform executable name so help examples match the actual
	// binary (handles .exe on Windows).
	exeName := posix.GetExecutableName()

	rootCmd := &cobra.Command{
		Use:     exeName,
		Short:   "Strict X.509 certificate chain verifier with MCP server integration",
		Version: cf.deps.Version,
	}

	// Cobra normally adds the help flag during Execute; register it early
	// so the description can carry the actual binary name.
	rootCmd.Flags().BoolP("help", "h", false, "help for "+exeName)

	var showInstructions bool
	rootCmd.PersistentFlags().BoolVar(&showInstructions, "instructions", false, "print the server instructions for certificate operations")
	rootCmd.PersistentFlags().StringVar(&cf.configFile, "config", cf.configFile, "path to MCP server configuration file")

	if cf.deps.Embed == nil {
		cf.deps.Embed = templates.MagicEmbed
	}

	longDesc, examples, err := cf.loadAndExecuteCLIHelpTemplate(exeName)
	if err != nil {
		// The help template is embedded at build time, so a processing
		// failure is a packaging bug rather than a runtime condition.
		panic(fmt.Sprintf("failed to process CLI help template: %v", err))
	}

	rootCmd.Long = longDesc
	rootCmd.Example = examples

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if showInstructions {
			return cf.printInstructions()
		}
		if len(args) > 0 {
			return fmt.Errorf("unexpected arguments: %s for %q", strings.Join(args, " "), exeName)
		}
		return cf.startMCPServer()
	}

	return rootCmd
}

// loadAndExecuteCLIHelpTemplate renders the embedded cli_help.md template
// and splits the result into the Long description and the Examples section.
//
// Returns:
//   - longDesc: Text before the "## Examples" marker
//   - examples: Text after the marker
//   - err: Template loading, parsing, execution, or format errors
func (cf *CLIFramework) loadAndExecuteCLIHelpTemplate(exeName string) (longDesc, examples string, err error) {
	templateBytes, err := cf.deps.Embed.ReadFile("cli_help.md")
	if err != nil {
		return "", "", fmt.Errorf("failed to load CLI help template: %w", err)
	}

	tmpl, err := template.New("cli_help").Parse(string(templateBytes))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse CLI help template: %w", err)
	}

	var result strings.Builder
	if err := tmpl.Execute(&result, cliHelpData{ExecutableName: exeName}); err != nil {
		return "", "", fmt.Errorf("failed to execute CLI help template: %w", err)
	}

	return cf.parseTemplateResult(result.String())
}

// parseTemplateResult splits rendered help text on the "## Examples"
// marker. The marker line itself is dropped from both sections.
func (cf *CLIFramework) parseTemplateResult(templateResult string) (longDesc, examples string, err error) {
	examplesMarker := "## Examples"
	markerIndex := strings.Index(templateResult, examplesMarker)
	if markerIndex == -1 {
		return "", "", fmt.Errorf("CLI help template has invalid format - missing '## Examples' section")
	}

	// Start of the line containing the marker.
	lineStart := strings.LastIndex(templateResult[:markerIndex], "\n")
	if lineStart == -1 {
		lineStart = 0
	} else {
		lineStart++
	}

	// End of the line containing the marker.
	lineEnd := strings.Index(templateResult[markerIndex:], "\n")
	if lineEnd == -1 {
		lineEnd = len(templateResult) - markerIndex
	} else {
		lineEnd += markerIndex
	}

	longDesc = strings.TrimSpace(templateResult[:lineStart])
	examples = strings.TrimSpace(templateResult[lineEnd:])

	return longDesc, examples, nil
}

// startMCPServer builds the MCP server from the framework dependencies and
// serves it over stdio until interrupted.
//
// Configuration loading order: the --config flag, then the
// MCP_X509_CONFIG_FILE environment variable, then built-in defaults.
// SIGINT and SIGTERM cancel the serving context; signal-initiated
// cancellation is treated as a clean exit.
func (cf *CLIFramework) startMCPServer() error {
	// Server messages go to stderr so stdout stays clean for the MCP
	// protocol stream.
	l := logger.NewCLILogger()
	l.SetOutput(os.Stderr)

	config, err := loadConfig(cf.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	builder := NewServerBuilder().
		WithConfig(config).
		WithEmbed(cf.deps.Embed).
		WithVersion(cf.deps.Version).
		WithCertManager(cf.deps.CertManager).
		WithVerifier(cf.deps.Verifier).
		WithTools(cf.deps.Tools...).
		WithToolsWithConfig(cf.deps.ToolsWithConfig...).
		WithResources(cf.deps.Resources...).
		WithPrompts(cf.deps.Prompts...).
		WithSampling(cf.deps.SamplingHandler).
		WithInstructions(cf.deps.Instructions)

	mcpServer, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to build MCP server: %w", err)
	}

	// Stdio transport: JSON-RPC messages on stdin, responses on stdout.
	stdioServer := server.NewStdioServer(mcpServer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigChan
		// Clear the line (including any ^C) before the shutdown message.
		l.Printf("\rReceived signal %s, initiating graceful shutdown...", sig)
		cancel()
	}()

	l.Printf("X.509 Chain Verifier MCP server started.")

	// Signal-initiated cancellation is a clean exit; anything else
	// (including deadline errors) is reported.
	if err = stdioServer.Listen(ctx, os.Stdin, os.Stdout); err != nil && err == context.Canceled {
		return nil
	}

	return err
}

// printInstructions writes the rendered server instructions to stdout,
// mirroring what MCP clients receive during the initialization handshake.
func (cf *CLIFramework) printInstructions() error {
	instructions := cf.deps.Instructions
	if instructions == "" {
		tools := cf.deps.Tools
		toolsWithConfig := cf.deps.ToolsWithConfig
		if len(tools) == 0 && len(toolsWithConfig) == 0 {
			tools, toolsWithConfig = createTools()
		}
		rendered, err := loadInstructions(cf.deps.Embed, tools, toolsWithConfig)
		if err != nil {
			return fmt.Errorf("failed to render instructions: %w", err)
		}
		instructions = rendered
	}

	fmt.Print(instructions)
	return nil
}
