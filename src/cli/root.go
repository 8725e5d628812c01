// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	encoding_asn1 "encoding/asn1"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/helper/gc"
	x509cert "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/cert"
	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/pathbuilder"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/report"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/truststore"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/verify"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/logger"
	"github.com/spf13/cobra"
)

// ErrInputFileRequired is returned when no input certificate file is provided.
var ErrInputFileRequired = errors.New("input certificate file is required (use -f flag)")

// ErrAnchorsRequired is returned when neither an anchor file nor --trust-last
// is provided, leaving the verifier with an empty trust store.
var ErrAnchorsRequired = errors.New("trust anchors are required (use -a or --trust-last)")

// ErrVerificationFailed wraps the chain error produced by the verifier so the
// caller can distinguish a verdict from an I/O or usage problem.
var ErrVerificationFailed = errors.New("certificate chain verification failed")

// OperationPerformed indicates whether a verification operation was attempted.
var OperationPerformed bool

// OperationPerformedSuccessfully indicates whether the chain verified cleanly.
var OperationPerformedSuccessfully bool

// cliOptions holds the flag values for a single Execute invocation.
type cliOptions struct {
	inputFile        string
	anchorFiles      []string
	intermediateFile string
	trustLast        bool
	outputFile       string
	verifyAt         string
	requiredEKU      string
	policies         []string
	maxDepth         int
	requireEndEntity bool
	jsonOutput       bool
	tableOutput      bool
	treeOutput       bool
}

// Execute runs the root command and returns any error encountered. The context
// is threaded through so callers can cancel on signals.
func Execute(ctx context.Context, version string, log logger.Logger) error {
	OperationPerformed = false
	OperationPerformedSuccessfully = false

	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:           "x509-chain-verifier",
		Short:         "X.509 certificate chain verifier",
		Long:          "Builds and verifies X.509 certification paths from a target certificate to a configured set of trust anchors.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execCli(cmd.Context(), opts, log)
		},
	}

	rootCmd.Flags().StringVarP(&opts.inputFile, "file", "f", "", "input chain file, target certificate first (PEM or DER)")
	rootCmd.Flags().StringArrayVarP(&opts.anchorFiles, "anchors", "a", nil, "trust anchor file (repeatable)")
	rootCmd.Flags().StringVar(&opts.intermediateFile, "intermediates", "", "additional intermediate certificates file")
	rootCmd.Flags().BoolVar(&opts.trustLast, "trust-last", false, "treat the last certificate in the input file as a trust anchor")
	rootCmd.Flags().StringVarP(&opts.outputFile, "output", "o", "", "output to OUTPUT_FILE (default: stdout)")
	rootCmd.Flags().StringVar(&opts.verifyAt, "time", "", "verification time in RFC 3339 format (default: now)")
	rootCmd.Flags().StringVarP(&opts.requiredEKU, "eku", "e", "", "required extended key usage (name or dotted OID)")
	rootCmd.Flags().StringArrayVar(&opts.policies, "policy", nil, "initial certificate policy OID (repeatable)")
	rootCmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "maximum path length in certificates (default: 10)")
	rootCmd.Flags().BoolVar(&opts.requireEndEntity, "require-end-entity", false, "reject CA certificates as verification targets")
	rootCmd.Flags().BoolVarP(&opts.jsonOutput, "json", "j", false, "emit JSON verification report")
	rootCmd.Flags().BoolVar(&opts.tableOutput, "table", false, "display verification result as markdown table")
	rootCmd.Flags().BoolVarP(&opts.treeOutput, "tree", "t", false, "display certification path as ASCII tree (default)")

	return rootCmd.ExecuteContext(ctx)
}

// execCli loads the input material, runs path building and verification, and
// renders the resulting report in the requested format.
func execCli(ctx context.Context, opts *cliOptions, log logger.Logger) error {
	if opts.inputFile == "" {
		return ErrInputFileRequired
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	codec := x509certs.New()

	chainCerts, err := readCertificates(codec, opts.inputFile)
	if err != nil {
		return fmt.Errorf("reading input file: %w", err)
	}
	target := chainCerts[0]
	intermediates := chainCerts[1:]

	store := truststore.New()
	if opts.trustLast && len(chainCerts) > 1 {
		last := chainCerts[len(chainCerts)-1]
		store.AddCertificate(last)
		intermediates = chainCerts[1 : len(chainCerts)-1]
	}
	for _, file := range opts.anchorFiles {
		anchors, err := readCertificates(codec, file)
		if err != nil {
			return fmt.Errorf("reading anchor file %s: %w", file, err)
		}
		for _, a := range anchors {
			store.AddCertificate(a)
		}
	}
	if store.Len() == 0 {
		return ErrAnchorsRequired
	}

	pool := pathbuilder.NewPool()
	for _, c := range intermediates {
		pool.Add(c)
	}
	if opts.intermediateFile != "" {
		extra, err := readCertificates(codec, opts.intermediateFile)
		if err != nil {
			return fmt.Errorf("reading intermediates file %s: %w", opts.intermediateFile, err)
		}
		for _, c := range extra {
			pool.Add(c)
		}
	}

	verifyOpts, err := buildVerifyOptions(opts)
	if err != nil {
		return err
	}

	OperationPerformed = true

	result, verr := verify.VerifyChain(target, pool, store, verifyOpts)
	rep := report.New(target, result, verr, verifyOpts.Time)

	output, err := renderReport(rep, opts)
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	if opts.outputFile != "" {
		if err := os.WriteFile(opts.outputFile, output, 0644); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
	} else {
		fmt.Print(string(output))
	}

	if verr != nil {
		log.Printf("Verification failed: %v", verr)
		return fmt.Errorf("%w: %v", ErrVerificationFailed, verr)
	}

	OperationPerformedSuccessfully = true
	return nil
}

// readCertificates reads a file through the shared buffer pool and decodes
// every certificate it contains.
func readCertificates(codec *x509certs.Codec, path string) ([]*x509cert.Certificate, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	if _, err := buf.ReadFrom(file); err != nil {
		return nil, err
	}
	return codec.DecodeMultiple(buf.Bytes())
}

// buildVerifyOptions translates CLI flags into verifier options.
func buildVerifyOptions(opts *cliOptions) (*verify.Options, error) {
	vo := &verify.Options{
		MaxDepth:         opts.maxDepth,
		RequireEndEntity: opts.requireEndEntity,
		Time:             time.Now(),
	}

	if opts.verifyAt != "" {
		at, err := time.Parse(time.RFC3339, opts.verifyAt)
		if err != nil {
			return nil, fmt.Errorf("invalid --time value %q: %w", opts.verifyAt, err)
		}
		vo.Time = at
	}

	if opts.requiredEKU != "" {
		eku, err := parseEKU(opts.requiredEKU)
		if err != nil {
			return nil, err
		}
		vo.RequiredEKU = eku
	}

	for _, p := range opts.policies {
		oid, err := parseOID(p)
		if err != nil {
			return nil, fmt.Errorf("invalid --policy value %q: %w", p, err)
		}
		vo.InitialPolicies = append(vo.InitialPolicies, oid)
	}

	return vo, nil
}

// namedEKUs maps friendly flag values to their RFC 5280 purpose OIDs.
var namedEKUs = map[string]encoding_asn1.ObjectIdentifier{
	"any":             x509cert.OIDAnyExtendedKeyUsage,
	"serverauth":      x509cert.OIDServerAuth,
	"clientauth":      x509cert.OIDClientAuth,
	"codesigning":     x509cert.OIDCodeSigning,
	"emailprotection": x509cert.OIDEmailProtection,
	"timestamping":    x509cert.OIDTimeStamping,
	"ocspsigning":     x509cert.OIDOCSPSigning,
}

// parseEKU accepts either a named purpose (e.g. "serverAuth") or a dotted OID.
func parseEKU(s string) (encoding_asn1.ObjectIdentifier, error) {
	if oid, ok := namedEKUs[strings.ToLower(s)]; ok {
		return oid, nil
	}
	oid, err := parseOID(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --eku value %q: %w", s, err)
	}
	return oid, nil
}

// parseOID parses a dotted-decimal OID string.
func parseOID(s string) (encoding_asn1.ObjectIdentifier, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return nil, errors.New("an OID needs at least two arcs")
	}
	oid := make(encoding_asn1.ObjectIdentifier, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("bad OID arc %q", p)
		}
		oid = append(oid, n)
	}
	return oid, nil
}

// renderReport picks the output format. JSON wins over table, table over tree,
// and tree is the default when nothing is requested.
func renderReport(rep *report.Report, opts *cliOptions) ([]byte, error) {
	switch {
	case opts.jsonOutput:
		data, err := rep.ToJSON()
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case opts.tableOutput:
		return []byte(rep.RenderTable()), nil
	default:
		return []byte(rep.RenderASCIITree() + "\n"), nil
	}
}
