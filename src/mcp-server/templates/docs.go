// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package templates embeds the markdown the MCP server ships with: the
// server instruction sheet, the certificate-format reference, the AI
// analysis system prompt, and the CLI help text. [MagicEmbed] is the
// shared access point; the [EmbedFS] interface behind it keeps callers
// decoupled from [embed.FS] so tests can substitute their own
// filesystem.
package templates
