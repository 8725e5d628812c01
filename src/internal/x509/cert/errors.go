// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509cert

import "fmt"

// DecodeErrorKind classifies certificate decoding failures.
type DecodeErrorKind int

const (
	// DecodeMalformedASN1 indicates the input is not well-formed DER.
	DecodeMalformedASN1 DecodeErrorKind = iota
	// DecodeTrailingData indicates bytes remain after the outer Certificate SEQUENCE.
	DecodeTrailingData
	// DecodeUnsupportedVersion indicates a version outside v1 through v3,
	// or v3-only fields on an older version.
	DecodeUnsupportedVersion
	// DecodeInvalidSerial indicates a malformed or negative serial number.
	DecodeInvalidSerial
	// DecodeInvalidValidity indicates a malformed validity interval.
	DecodeInvalidValidity
	// DecodeInvalidName indicates a malformed issuer or subject name.
	DecodeInvalidName
	// DecodeInvalidPublicKey indicates a malformed SubjectPublicKeyInfo.
	DecodeInvalidPublicKey
	// DecodeInvalidSignature indicates a malformed signature algorithm or value,
	// including a mismatch between the TBS and outer algorithm identifiers.
	DecodeInvalidSignature
	// DecodeInvalidExtension indicates a malformed extension entry.
	DecodeInvalidExtension
	// DecodeDuplicateExtension indicates the same extension OID appears twice.
	DecodeDuplicateExtension
)

// String returns a short identifier for the decode error kind.
func (k DecodeErrorKind) String() string {
	switch k {
	case DecodeMalformedASN1:
		return "MalformedASN1"
	case DecodeTrailingData:
		return "TrailingData"
	case DecodeUnsupportedVersion:
		return "UnsupportedVersion"
	case DecodeInvalidSerial:
		return "InvalidSerial"
	case DecodeInvalidValidity:
		return "InvalidValidity"
	case DecodeInvalidName:
		return "InvalidName"
	case DecodeInvalidPublicKey:
		return "InvalidPublicKey"
	case DecodeInvalidSignature:
		return "InvalidSignature"
	case DecodeInvalidExtension:
		return "InvalidExtension"
	case DecodeDuplicateExtension:
		return "DuplicateExtension"
	default:
		return fmt.Sprintf("DecodeErrorKind(%d)", int(k))
	}
}

// DecodeError is the typed failure returned for any certificate that cannot
// be decoded. Decoding never panics; every malformed input maps to one of
// these values.
type DecodeError struct {
	Kind  DecodeErrorKind
	Field string // TBSCertificate field being decoded when the failure occurred
	Err   error  // underlying parse error, may be nil
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("x509cert: %s: %s: %v", e.Field, e.Kind, e.Err)
	}
	return fmt.Sprintf("x509cert: %s: %s", e.Field, e.Kind)
}

// Unwrap returns the underlying parse error, if any.
func (e *DecodeError) Unwrap() error { return e.Err }

// decodeError builds a *DecodeError for the given field.
func decodeError(kind DecodeErrorKind, field string, err error) *DecodeError {
	return &DecodeError{Kind: kind, Field: field, Err: err}
}
