// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface for the X.509 chain verifier.
// It implements a Cobra-based CLI that loads a target certificate plus its
// candidate intermediates, builds certification paths against a configured set
// of trust anchors, verifies them, and renders the verdict as an ASCII tree,
// markdown table, or JSON report. The package handles file I/O, context
// cancellation, and integrates with the logger package for error reporting.
package cli
