// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package report renders chain verification outcomes for people and
// machines: an ASCII tree of the path, a markdown table with
// per-certificate details, and structured JSON for external tooling.
// Rendering never re-runs verification; a [Report] is a snapshot of one
// outcome.
package report
