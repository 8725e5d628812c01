// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

// x509-chain-verifier is a command-line tool for building and verifying
// X.509 certification paths against a configured set of trust anchors.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/H0llyW00dzZ/x509-chain-verifier/cmd/x509-chain-verifier@latest
//
// # Usage
//
//	x509-chain-verifier -f CHAIN_FILE -a ANCHOR_FILE [FLAGS]
//
// # Flags
//
//	-f, --file               Input chain file, target certificate first (PEM or DER) [required]
//	-a, --anchors            Trust anchor file (repeatable)
//	    --intermediates      Additional intermediate certificates file
//	    --trust-last         Treat the last certificate in the input file as a trust anchor
//	-o, --output             Destination file (default: stdout)
//	    --time               Verification time in RFC 3339 format (default: now)
//	-e, --eku                Required extended key usage (name or dotted OID)
//	    --policy             Initial certificate policy OID (repeatable)
//	    --max-depth          Maximum path length in certificates (default: 10)
//	    --require-end-entity Reject CA certificates as verification targets
//	-j, --json               Emit JSON verification report
//	    --table              Display verification result as markdown table
//	-t, --tree               Display certification path as ASCII tree (default)
//
// # Examples
//
// Verify a server chain against a local anchor bundle:
//
//	x509-chain-verifier -f chain.pem -a roots.pem
//
// Verify for a specific purpose at a specific time:
//
//	x509-chain-verifier -f chain.pem -a roots.pem \
//	  --eku serverAuth --time 2026-06-01T00:00:00Z
//
// Produce a JSON report:
//
//	x509-chain-verifier -f chain.pem -a roots.pem --json > report.json
package main
