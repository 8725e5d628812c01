// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package verify

import (
	"net"
	"strings"

	x509cert "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/cert"
)

// checkNameConstraints tests the certificate at index i against every
// constraint set accumulated from certificates closer to the anchor. The
// names checked are the subject distinguished name and all supported
// subjectAltName entries.
func (v *pathVerifier) checkNameConstraints(i int) *ChainError {
	if len(v.constraints) == 0 {
		return nil
	}
	cert := v.path.Certs[i]

	san, err := cert.SubjectAltName()
	if err != nil {
		return v.fail(KindOther, i, "subjectAltName: %v", err)
	}

	for _, nc := range v.constraints {
		if detail := checkAgainst(cert, san, nc); detail != "" {
			return v.fail(KindNameConstraintViolation, i, "%s", detail)
		}
	}
	return nil
}

// checkAgainst evaluates one nameConstraints set. It returns an empty
// string when every name is acceptable, otherwise a description of the
// first violation.
func checkAgainst(cert *x509cert.Certificate, san *x509cert.GeneralNames, nc *x509cert.NameConstraints) string {
	if san != nil {
		for _, dns := range san.DNSNames {
			if d := checkOne(dns, "dNSName", nc,
				func(g *x509cert.GeneralNames) bool { return len(g.DNSNames) > 0 },
				func(g *x509cert.GeneralNames) bool { return matchAnyDNS(dns, g.DNSNames) },
			); d != "" {
				return d
			}
		}
		for _, email := range san.EmailAddresses {
			if d := checkOne(email, "rfc822Name", nc,
				func(g *x509cert.GeneralNames) bool { return len(g.EmailAddresses) > 0 },
				func(g *x509cert.GeneralNames) bool { return matchAnyEmail(email, g.EmailAddresses) },
			); d != "" {
				return d
			}
		}
		for _, ip := range san.IPAddresses {
			if d := checkOne(ip.String(), "iPAddress", nc,
				func(g *x509cert.GeneralNames) bool { return len(g.IPRanges) > 0 },
				func(g *x509cert.GeneralNames) bool { return matchAnyIP(ip, g.IPRanges) },
			); d != "" {
				return d
			}
		}
	}

	if !cert.Subject.Empty() {
		if d := checkOne(cert.Subject.String(), "directoryName", nc,
			func(g *x509cert.GeneralNames) bool { return len(g.DirectoryNames) > 0 },
			func(g *x509cert.GeneralNames) bool { return matchAnyDirectory(cert.Subject, g.DirectoryNames) },
		); d != "" {
			return d
		}
	}
	return ""
}

// checkOne applies the permitted/excluded logic for a single name. A
// permitted list only constrains a name form it actually mentions; an
// excluded match always loses.
func checkOne(display, form string, nc *x509cert.NameConstraints, hasForm, matches func(*x509cert.GeneralNames) bool) string {
	if nc.Excluded != nil && hasForm(nc.Excluded) && matches(nc.Excluded) {
		return form + " " + display + " is excluded"
	}
	if nc.Permitted != nil && hasForm(nc.Permitted) && !matches(nc.Permitted) {
		return form + " " + display + " is not permitted"
	}
	return ""
}

func matchAnyDNS(name string, constraints []string) bool {
	for _, c := range constraints {
		if matchDNSConstraint(name, c) {
			return true
		}
	}
	return false
}

// matchDNSConstraint implements RFC 5280 dNSName subtree matching: the
// constraint "example.com" covers the host itself and every subdomain,
// and an empty constraint covers everything.
func matchDNSConstraint(name, constraint string) bool {
	if constraint == "" {
		return true
	}
	name = strings.ToLower(strings.TrimSuffix(name, "."))
	constraint = strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(constraint, "."), "."))
	if name == constraint {
		return true
	}
	return strings.HasSuffix(name, "."+constraint)
}

func matchAnyEmail(email string, constraints []string) bool {
	for _, c := range constraints {
		if matchEmailConstraint(email, c) {
			return true
		}
	}
	return false
}

// matchEmailConstraint matches a mailbox against a constraint that is
// either a complete address (exact, local part case-sensitive per RFC) or
// a host name covering every mailbox at that host.
func matchEmailConstraint(email, constraint string) bool {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return false
	}
	host := email[at+1:]
	if strings.ContainsRune(constraint, '@') {
		cAt := strings.LastIndexByte(constraint, '@')
		return email[:at] == constraint[:cAt] && strings.EqualFold(host, constraint[cAt+1:])
	}
	return matchDNSConstraint(host, constraint)
}

func matchAnyIP(ip net.IP, ranges []*net.IPNet) bool {
	for _, r := range ranges {
		// An IPv4 range never covers an IPv6 address and vice versa.
		if len(r.IP) == net.IPv4len && ip.To4() == nil {
			continue
		}
		if len(r.IP) == net.IPv6len && ip.To4() != nil {
			continue
		}
		if r.Contains(ip) {
			return true
		}
	}
	return false
}

func matchAnyDirectory(name x509cert.Name, bases []x509cert.Name) bool {
	for _, base := range bases {
		if name.WithinSubtree(base) {
			return true
		}
	}
	return false
}
