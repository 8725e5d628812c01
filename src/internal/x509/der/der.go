// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509der

import (
	encoding_asn1 "encoding/asn1"
	"errors"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// Tag aliases re-exported so callers don't need a second cryptobyte import.
const (
	TagBoolean         = cryptobyte_asn1.BOOLEAN
	TagInteger         = cryptobyte_asn1.INTEGER
	TagBitString       = cryptobyte_asn1.BIT_STRING
	TagOctetString     = cryptobyte_asn1.OCTET_STRING
	TagOID             = cryptobyte_asn1.OBJECT_IDENTIFIER
	TagSequence        = cryptobyte_asn1.SEQUENCE
	TagSet             = cryptobyte_asn1.SET
	TagUTCTime         = cryptobyte_asn1.UTCTime
	TagGeneralizedTime = cryptobyte_asn1.GeneralizedTime
	TagPrintableString = cryptobyte_asn1.PrintableString
	TagUTF8String      = cryptobyte_asn1.UTF8String
	TagIA5String       = cryptobyte_asn1.IA5String
)

// TagT61String and TagBMPString are legacy string tags that still show up in
// older certificate subjects. cryptobyte has no named constants for them.
const (
	TagT61String cryptobyte_asn1.Tag = 20
	TagBMPString cryptobyte_asn1.Tag = 30
)

var (
	// ErrTrailingData indicates bytes remain after a complete DER element.
	ErrTrailingData = errors.New("x509der: trailing data after DER element")

	// ErrNonMinimalInteger indicates an INTEGER with padding bytes, which DER forbids.
	ErrNonMinimalInteger = errors.New("x509der: non-minimal integer encoding")
)

// ReadElement reads the next element with the expected tag into out,
// excluding the tag and length header.
//
// cryptobyte enforces DER strictness here: indefinite lengths and
// non-minimal length encodings are rejected.
func ReadElement(s *cryptobyte.String, out *cryptobyte.String, tag cryptobyte_asn1.Tag) error {
	if !s.ReadASN1(out, tag) {
		return fmt.Errorf("x509der: malformed element (expected tag %d)", tag)
	}
	return nil
}

// ReadElementRaw reads the next element with the expected tag into out,
// including the tag and length header. Callers use this to retain the exact
// signed byte range of a TBSCertificate.
func ReadElementRaw(s *cryptobyte.String, out *cryptobyte.String, tag cryptobyte_asn1.Tag) error {
	if !s.ReadASN1Element(out, tag) {
		return fmt.Errorf("x509der: malformed element (expected tag %d)", tag)
	}
	return nil
}

// ReadOptional reads an element with the given tag if it is present.
func ReadOptional(s *cryptobyte.String, out *cryptobyte.String, tag cryptobyte_asn1.Tag) (present bool, err error) {
	var ok bool
	if !s.ReadOptionalASN1(out, &ok, tag) {
		return false, fmt.Errorf("x509der: malformed optional element (tag %d)", tag)
	}
	return ok, nil
}

// ReadBigInt reads a DER INTEGER of arbitrary precision.
// Non-minimal encodings are rejected.
func ReadBigInt(s *cryptobyte.String) (*big.Int, error) {
	n := new(big.Int)
	if !s.ReadASN1Integer(n) {
		return nil, ErrNonMinimalInteger
	}
	return n, nil
}

// ReadBool reads a DER BOOLEAN. DER requires 0x00 or 0xFF contents,
// which cryptobyte enforces.
func ReadBool(s *cryptobyte.String) (bool, error) {
	var b bool
	if !s.ReadASN1Boolean(&b) {
		return false, errors.New("x509der: malformed boolean")
	}
	return b, nil
}

// ReadOID reads a DER OBJECT IDENTIFIER.
func ReadOID(s *cryptobyte.String) (encoding_asn1.ObjectIdentifier, error) {
	var oid encoding_asn1.ObjectIdentifier
	if !s.ReadASN1ObjectIdentifier(&oid) {
		return nil, errors.New("x509der: malformed object identifier")
	}
	return oid, nil
}

// BitString holds the contents of a DER BIT STRING.
type BitString struct {
	Bytes     []byte
	BitLength int
}

// RightAlign returns the bits as a right-aligned byte slice, used when the
// bit string carries a key-usage style bitset.
func (b BitString) RightAlign() []byte {
	shift := uint(8 - b.BitLength%8)
	if shift == 8 || len(b.Bytes) == 0 {
		return b.Bytes
	}
	aligned := make([]byte, len(b.Bytes))
	aligned[0] = b.Bytes[0] >> shift
	for i := 1; i < len(b.Bytes); i++ {
		aligned[i] = b.Bytes[i-1]<<(8-shift) | b.Bytes[i]>>shift
	}
	return aligned
}

// At returns the bit at index i, or 0 when out of range.
func (b BitString) At(i int) int {
	if i < 0 || i >= b.BitLength {
		return 0
	}
	x := i / 8
	y := 7 - uint(i%8)
	return int(b.Bytes[x]>>y) & 1
}

// ReadBitString reads a DER BIT STRING.
func ReadBitString(s *cryptobyte.String) (BitString, error) {
	var body cryptobyte.String
	if !s.ReadASN1(&body, cryptobyte_asn1.BIT_STRING) {
		return BitString{}, errors.New("x509der: malformed bit string")
	}
	if len(body) == 0 {
		return BitString{}, errors.New("x509der: empty bit string")
	}
	padding := body[0]
	if padding > 7 || (len(body) == 1 && padding != 0) {
		return BitString{}, errors.New("x509der: invalid bit string padding")
	}
	bits := body[1:]
	if len(bits) > 0 && bits[len(bits)-1]&(1<<padding-1) != 0 {
		// DER requires unused bits to be zero.
		return BitString{}, errors.New("x509der: bit string has set padding bits")
	}
	return BitString{
		Bytes:     []byte(bits),
		BitLength: len(bits)*8 - int(padding),
	}, nil
}

// ReadTime reads a Time value, accepting the UTCTime and GeneralizedTime
// forms permitted by RFC 5280 (seconds required, Zulu offset only).
func ReadTime(s *cryptobyte.String) (time.Time, error) {
	var body cryptobyte.String
	switch {
	case s.PeekASN1Tag(cryptobyte_asn1.UTCTime):
		if !s.ReadASN1(&body, cryptobyte_asn1.UTCTime) {
			return time.Time{}, errors.New("x509der: malformed UTCTime")
		}
		return parseTimestamp(string(body), true)
	case s.PeekASN1Tag(cryptobyte_asn1.GeneralizedTime):
		if !s.ReadASN1(&body, cryptobyte_asn1.GeneralizedTime) {
			return time.Time{}, errors.New("x509der: malformed GeneralizedTime")
		}
		return parseTimestamp(string(body), false)
	}
	return time.Time{}, errors.New("x509der: expected UTCTime or GeneralizedTime")
}

// parseTimestamp enforces the RFC 5280 profile: fixed width, seconds present,
// no fractional seconds, and a literal trailing Z.
func parseTimestamp(value string, utc bool) (time.Time, error) {
	layout := "20060102150405Z"
	if utc {
		layout = "060102150405Z"
	}
	if len(value) != len(layout) {
		return time.Time{}, fmt.Errorf("x509der: timestamp %q has wrong length", value)
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("x509der: timestamp %q: %w", value, err)
	}
	if utc && t.Year() >= 2050 {
		// UTCTime two-digit years 00-49 map to 20xx, 50-99 to 19xx.
		t = t.AddDate(-100, 0, 0)
	}
	return t, nil
}

// CheckEmpty verifies that a fully consumed element has no leftover bytes.
func CheckEmpty(s cryptobyte.String) error {
	if !s.Empty() {
		return ErrTrailingData
	}
	return nil
}
