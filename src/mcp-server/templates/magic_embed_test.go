// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package templates

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every template a server component loads at runtime must be embedded
// and carry the content that component depends on.
func TestEmbeddedTemplates(t *testing.T) {
	tests := []struct {
		filename string
		contains []string
	}{
		{"certificate-formats.md", []string{"#", "PEM", "DER"}},
		{"X509_instructions.md", []string{"#", "certificate"}},
		{"certificate-analysis-system-prompt.md", []string{"certificate", "chain", "notBefore"}},
		{"cli_help.md", []string{"## Examples", "MCP_X509_CONFIG_FILE"}},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			data, err := MagicEmbed.ReadFile(tt.filename)
			require.NoError(t, err)
			require.NotEmpty(t, data)
			for _, want := range tt.contains {
				assert.Contains(t, string(data), want)
			}
		})
	}
}

func TestMagicEmbedMissingFile(t *testing.T) {
	_, err := MagicEmbed.ReadFile("non-existent.md")
	assert.Error(t, err)

	_, err = MagicEmbed.ReadFile("../invalid.md")
	assert.Error(t, err)

	_, err = MagicEmbed.Open("non-existent.md")
	assert.Error(t, err)
}

func TestMagicEmbedReadDir(t *testing.T) {
	entries, err := MagicEmbed.ReadDir(".")
	require.NoError(t, err)

	names := make(map[string]bool, len(entries))
	for _, entry := range entries {
		assert.False(t, entry.IsDir(), "unexpected directory %s", entry.Name())
		names[entry.Name()] = true
	}
	for _, want := range []string{
		"certificate-formats.md",
		"X509_instructions.md",
		"certificate-analysis-system-prompt.md",
		"cli_help.md",
	} {
		assert.True(t, names[want], "missing embedded file %s", want)
	}

	_, err = MagicEmbed.ReadDir("non-existent")
	assert.Error(t, err)
}

func TestMagicEmbedOpen(t *testing.T) {
	file, err := MagicEmbed.Open("certificate-formats.md")
	require.NoError(t, err)
	defer file.Close()

	info, err := file.Stat()
	require.NoError(t, err)
	assert.False(t, info.IsDir())
	assert.Positive(t, info.Size())
}

func TestMagicEmbedConcurrentReads(t *testing.T) {
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				if _, err := MagicEmbed.ReadFile("X509_instructions.md"); err != nil {
					t.Errorf("concurrent read: %v", err)
				}
			}
		}()
	}
	wg.Wait()
}
