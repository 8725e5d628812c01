// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package templates

import (
	"embed"
	"io/fs"
)

//go:embed *.md
var embeddedFS embed.FS

// EmbedFS is the read surface the server components use for embedded
// templates. Abstracting [embed.FS] behind an interface lets tests swap
// in a failing or partial filesystem when exercising template loading.
type EmbedFS interface {
	// ReadFile returns the contents of the named embedded file.
	ReadFile(name string) ([]byte, error)

	// ReadDir lists the entries of the named embedded directory.
	ReadDir(name string) ([]fs.DirEntry, error)

	// Open opens the named embedded file for reading.
	Open(name string) (fs.File, error)
}

type embedFS struct{ fs embed.FS }

func (e *embedFS) ReadFile(name string) ([]byte, error)      { return e.fs.ReadFile(name) }
func (e *embedFS) ReadDir(name string) ([]fs.DirEntry, error) { return e.fs.ReadDir(name) }
func (e *embedFS) Open(name string) (fs.File, error)         { return e.fs.Open(name) }

// MagicEmbed exposes the embedded markdown templates: the server's
// instruction sheet (X509_instructions.md), the certificate-format
// reference served as a resource (certificate-formats.md), the AI
// analysis system prompt, and the CLI help text.
//
//	content, err := templates.MagicEmbed.ReadFile("certificate-formats.md")
var MagicEmbed EmbedFS = &embedFS{fs: embeddedFS}
