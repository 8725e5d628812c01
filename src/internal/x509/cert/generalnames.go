// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509cert

import (
	"bytes"
	"errors"
	"fmt"
	"net"

	x509der "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/der"
	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// GeneralNameType is a bitfield of the GeneralName choices defined in
// RFC 5280, in the order the RFC lists them. Keeping a bitfield of every
// type seen (supported or not) lets the verifier detect constraints it
// cannot evaluate.
type GeneralNameType int

const (
	GeneralNameOtherName GeneralNameType = 1 << iota
	GeneralNameRFC822Name
	GeneralNameDNSName
	GeneralNameX400Address
	GeneralNameDirectoryName
	GeneralNameEDIPartyName
	GeneralNameURI
	GeneralNameIPAddress
	GeneralNameRegisteredID
)

// supportedConstraintTypes are the name forms this package can evaluate
// inside name-constraint subtrees.
const supportedConstraintTypes = GeneralNameRFC822Name |
	GeneralNameDNSName |
	GeneralNameDirectoryName |
	GeneralNameIPAddress

// GeneralNames is a decoded GeneralNames structure. Only the name forms the
// verifier understands are split into members; every form encountered is
// still recorded in PresentTypes.
type GeneralNames struct {
	DNSNames       []string
	EmailAddresses []string
	URIs           []string
	DirectoryNames []Name

	// IPAddresses is populated for subjectAltName values.
	IPAddresses []net.IP

	// IPRanges is populated for name-constraint subtrees, where an
	// iPAddress carries an address plus netmask.
	IPRanges []*net.IPNet

	PresentTypes GeneralNameType
}

// HasUnsupportedConstraintTypes reports whether any present name form cannot
// be evaluated as a constraint subtree.
func (g *GeneralNames) HasUnsupportedConstraintTypes() bool {
	return g.PresentTypes&^supportedConstraintTypes != 0
}

// ipAddressMode controls how iPAddress names decode: a bare address for
// subjectAltName, or address-plus-netmask for name constraints.
type ipAddressMode int

const (
	ipAddressOnly ipAddressMode = iota
	ipAddressAndNetmask
)

// parseGeneralNames decodes a SEQUENCE OF GeneralName from a complete element.
func parseGeneralNames(raw cryptobyte.String, mode ipAddressMode) (*GeneralNames, error) {
	var body cryptobyte.String
	if err := x509der.ReadElement(&raw, &body, x509der.TagSequence); err != nil {
		return nil, err
	}
	if err := x509der.CheckEmpty(raw); err != nil {
		return nil, err
	}

	names := &GeneralNames{}
	for !body.Empty() {
		if err := names.parseOne(&body, mode); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// parseOne decodes a single GeneralName choice and records it.
func (g *GeneralNames) parseOne(s *cryptobyte.String, mode ipAddressMode) error {
	var value cryptobyte.String
	var tag cryptobyte_asn1.Tag
	if !s.ReadAnyASN1(&value, &tag) {
		return errors.New("x509cert: malformed GeneralName")
	}

	// GeneralName choices are context-specific tags 0 through 8.
	const contextSpecific = 0x80
	const constructed = 0x20
	choice := int(tag) &^ (contextSpecific | constructed)
	if int(tag)&contextSpecific == 0 || choice > 8 {
		return fmt.Errorf("x509cert: unexpected GeneralName tag %d", tag)
	}

	switch choice {
	case 1: // rfc822Name
		g.EmailAddresses = append(g.EmailAddresses, string(value))
		g.PresentTypes |= GeneralNameRFC822Name
	case 2: // dNSName
		g.DNSNames = append(g.DNSNames, string(value))
		g.PresentTypes |= GeneralNameDNSName
	case 4: // directoryName, EXPLICIT so the Name element is nested
		name, err := parseName(&value)
		if err != nil {
			return fmt.Errorf("x509cert: malformed directoryName: %w", err)
		}
		if err := x509der.CheckEmpty(value); err != nil {
			return err
		}
		g.DirectoryNames = append(g.DirectoryNames, name)
		g.PresentTypes |= GeneralNameDirectoryName
	case 6: // uniformResourceIdentifier
		g.URIs = append(g.URIs, string(value))
		g.PresentTypes |= GeneralNameURI
	case 7: // iPAddress
		if err := g.parseIPAddress(value, mode); err != nil {
			return err
		}
		g.PresentTypes |= GeneralNameIPAddress
	case 0:
		g.PresentTypes |= GeneralNameOtherName
	case 3:
		g.PresentTypes |= GeneralNameX400Address
	case 5:
		g.PresentTypes |= GeneralNameEDIPartyName
	case 8:
		g.PresentTypes |= GeneralNameRegisteredID
	}
	return nil
}

func (g *GeneralNames) parseIPAddress(value cryptobyte.String, mode ipAddressMode) error {
	switch mode {
	case ipAddressOnly:
		if len(value) != net.IPv4len && len(value) != net.IPv6len {
			return fmt.Errorf("x509cert: iPAddress with %d bytes", len(value))
		}
		g.IPAddresses = append(g.IPAddresses, net.IP(bytes.Clone(value)))
	case ipAddressAndNetmask:
		if len(value) != 2*net.IPv4len && len(value) != 2*net.IPv6len {
			return fmt.Errorf("x509cert: iPAddress constraint with %d bytes", len(value))
		}
		half := len(value) / 2
		g.IPRanges = append(g.IPRanges, &net.IPNet{
			IP:   net.IP(bytes.Clone(value[:half])),
			Mask: net.IPMask(bytes.Clone(value[half:])),
		})
	}
	return nil
}
