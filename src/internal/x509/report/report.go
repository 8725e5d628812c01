// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package report

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	x509cert "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/cert"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/verify"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// Report is one verification outcome prepared for rendering: either a
// validated path or the best rejection, never both.
type Report struct {
	// Target is the certificate that was verified.
	Target *x509cert.Certificate

	// Result is the successful outcome; nil when verification failed.
	Result *verify.Result

	// Err is the best failure across candidate paths; nil on success.
	Err *verify.ChainError

	// VerifiedAt is the verification time the outcome refers to.
	VerifiedAt time.Time
}

// New builds a report from a chain verification outcome.
func New(target *x509cert.Certificate, result *verify.Result, err error, at time.Time) *Report {
	r := &Report{Target: target, Result: result, VerifiedAt: at}
	if ce, ok := err.(*verify.ChainError); ok {
		r.Err = ce
	}
	return r
}

// OK reports whether the verification succeeded.
func (r *Report) OK() bool { return r.Result != nil }

func (r *Report) pathCerts() []*x509cert.Certificate {
	if r.Result != nil {
		return r.Result.Path.Certs
	}
	if r.Target != nil {
		return []*x509cert.Certificate{r.Target}
	}
	return nil
}

// RenderASCIITree renders the verified (or attempted) path as an ASCII
// tree, target first, trust anchor last. On failure the offending
// certificate is marked and the rejection appended.
func (r *Report) RenderASCIITree() string {
	certs := r.pathCerts()
	if len(certs) == 0 {
		return "No certificates to display"
	}

	var result strings.Builder
	for i, cert := range certs {
		connector := "├── "
		if i == len(certs)-1 {
			connector = "└── "
		}

		statusIcon := "✓"
		if r.Err != nil && r.Err.CertIndex == i {
			statusIcon = "✗"
		}

		info := fmt.Sprintf("[%s] %s (%s)", statusIcon, cert.Subject.CommonName(), certificateRole(i, len(certs)))
		result.WriteString(connector + info + "\n")
	}

	if r.Err != nil {
		result.WriteString(fmt.Sprintf("\nverification failed: %s: %s\n", r.Err.Kind, r.Err.Detail))
	}
	return result.String()
}

// RenderTable renders the path as a markdown table with per-certificate
// details and the verification verdict.
func (r *Report) RenderTable() string {
	certs := r.pathCerts()
	if len(certs) == 0 {
		return "No certificates to display"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)

	table.Header([]string{"#", "Role", "Subject", "Issuer", "Valid Until", "Key", "Status"})

	var rows [][]string
	for i, cert := range certs {
		status := "valid"
		if r.Err != nil {
			status = "not checked"
			if r.Err.CertIndex == i {
				status = r.Err.Kind.String()
			}
		}

		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			certificateRole(i, len(certs)),
			cert.Subject.CommonName(),
			cert.Issuer.CommonName(),
			cert.NotAfter.Format("2006-01-02"),
			describeKey(cert),
			status,
		})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// ToJSON converts the outcome to structured JSON for external tooling.
func (r *Report) ToJSON() ([]byte, error) {
	type certData struct {
		Index              int       `json:"index"`
		Role               string    `json:"role"`
		Subject            string    `json:"subject"`
		Issuer             string    `json:"issuer"`
		SerialNumber       string    `json:"serialNumber"`
		SignatureAlgorithm string    `json:"signatureAlgorithm"`
		Key                string    `json:"key"`
		NotBefore          time.Time `json:"notBefore"`
		NotAfter           time.Time `json:"notAfter"`
		SHA256Fingerprint  string    `json:"sha256Fingerprint"`
	}

	type failureData struct {
		Kind      string `json:"kind"`
		CertIndex int    `json:"certIndex"`
		Subject   string `json:"subject"`
		Detail    string `json:"detail"`
	}

	type reportData struct {
		Valid        bool         `json:"valid"`
		VerifiedAt   string       `json:"verifiedAt"`
		PathLength   int          `json:"pathLength"`
		Certificates []certData   `json:"certificates"`
		Policies     []string     `json:"policies,omitempty"`
		PathsTried   int          `json:"pathsTried,omitempty"`
		PoolErrors   []string     `json:"poolErrors,omitempty"`
		Failure      *failureData `json:"failure,omitempty"`
	}

	certs := r.pathCerts()
	data := reportData{
		Valid:        r.OK(),
		VerifiedAt:   r.VerifiedAt.UTC().Format(time.RFC3339),
		PathLength:   len(certs),
		Certificates: make([]certData, len(certs)),
	}

	for i, cert := range certs {
		fp := cert.Fingerprint()
		data.Certificates[i] = certData{
			Index:              i,
			Role:               certificateRole(i, len(certs)),
			Subject:            cert.Subject.String(),
			Issuer:             cert.Issuer.String(),
			SerialNumber:       cert.SerialNumber.String(),
			SignatureAlgorithm: cert.SignatureScheme().String(),
			Key:                describeKey(cert),
			NotBefore:          cert.NotBefore,
			NotAfter:           cert.NotAfter,
			SHA256Fingerprint:  fmt.Sprintf("%x", fp),
		}
	}

	if r.Result != nil {
		for _, oid := range r.Result.Policies {
			data.Policies = append(data.Policies, oid.String())
		}
		data.PathsTried = r.Result.PathsTried
		for _, err := range r.Result.PoolErrors {
			data.PoolErrors = append(data.PoolErrors, err.Error())
		}
	}
	if r.Err != nil {
		data.Failure = &failureData{
			Kind:      r.Err.Kind.String(),
			CertIndex: r.Err.CertIndex,
			Subject:   r.Err.Subject,
			Detail:    r.Err.Detail,
		}
	}

	return json.MarshalIndent(data, "", "  ")
}

// describeKey summarizes the certificate's public key type and size.
func describeKey(cert *x509cert.Certificate) string {
	pub, err := cert.PublicKey()
	if err != nil {
		return "unknown"
	}
	switch key := pub.(type) {
	case *rsa.PublicKey:
		return fmt.Sprintf("%d-bit RSA", key.Size()*8)
	case *ecdsa.PublicKey:
		return fmt.Sprintf("%d-bit ECDSA", key.Curve.Params().BitSize)
	case ed25519.PublicKey:
		return "Ed25519"
	default:
		return "unknown"
	}
}

// certificateRole describes a certificate's position in a path, target
// first, anchor last.
func certificateRole(index, total int) string {
	switch {
	case total == 1:
		return "Trusted Self-Signed Certificate"
	case index == 0:
		return "Target Certificate"
	case index == total-1:
		return "Trust Anchor"
	default:
		return "Intermediate CA Certificate"
	}
}
