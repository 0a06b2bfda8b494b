// Copyright 2020 Adam Chalkley
//
// https://github.com/atc0005/check-cert
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package hx509

import "errors"

// ErrorKind identifies the class of failure behind an error returned by this
// package. Callers should compare against these values (or use Kind) rather
// than matching on error message text, which is advisory only.
type ErrorKind int

// Error kinds returned by the path builder and path verifier. Names mirror
// the hx509 error table this package is derived from.
const (
	// ErrKindNone indicates success; no error occurred.
	ErrKindNone ErrorKind = iota

	// ErrKindExtensionNotFound indicates a requested certificate extension
	// is absent. Treated as success by callers for which the extension is
	// optional.
	ErrKindExtensionNotFound

	// ErrKindCertificateMalformed indicates a certificate violates a
	// structural assumption this package depends on (e.g. a subjectless
	// certificate missing a usable AuthorityKeyIdentifier).
	ErrKindCertificateMalformed

	// ErrKindExtraDataAfterStructure indicates trailing bytes were found
	// after decoding an extension value.
	ErrKindExtraDataAfterStructure

	// ErrKindKeyUsageCertMissing indicates a required keyUsage bit is
	// absent from a certificate.
	ErrKindKeyUsageCertMissing

	// ErrKindParentIsCA indicates a proxy certificate's issuer carries
	// basicConstraints.cA, which RFC 3820 forbids.
	ErrKindParentIsCA

	// ErrKindParentNotCA indicates a CA-position certificate lacks
	// basicConstraints.cA.
	ErrKindParentNotCA

	// ErrKindCAPathTooDeep indicates a CA certificate's pathLenConstraint
	// was violated by the remaining chain depth.
	ErrKindCAPathTooDeep

	// ErrKindPathTooLong indicates the chain exceeds the configured
	// maximum depth.
	ErrKindPathTooLong

	// ErrKindIssuerNotFound indicates no candidate parent certificate could
	// be located in the pool or trust anchors.
	ErrKindIssuerNotFound

	// ErrKindCertUsedBeforeTime indicates the current time precedes a
	// certificate's notBefore.
	ErrKindCertUsedBeforeTime

	// ErrKindCertUsedAfterTime indicates the current time follows a
	// certificate's notAfter.
	ErrKindCertUsedAfterTime

	// ErrKindVerifyConstraints indicates a name constraint was violated.
	ErrKindVerifyConstraints

	// ErrKindNameConstraintError indicates a name-constraint comparison
	// could not be completed (mismatched RDN shape, unsupported variant
	// pairing).
	ErrKindNameConstraintError

	// ErrKindRange indicates a GeneralSubtree carries an unsupported
	// non-zero minimum/maximum distance.
	ErrKindRange

	// ErrKindProxyCertInvalid indicates a structural problem with a proxy
	// certificate (forbidden SAN/IAN, bad path length).
	ErrKindProxyCertInvalid

	// ErrKindProxyCertNameWrong indicates a proxy certificate's subject or
	// issuer name does not follow the expected "issuer + single CN" form.
	ErrKindProxyCertNameWrong

	// ErrKindProxyCertificateNotCanonicalized indicates BaseSubject was
	// requested on a proxy certificate that has not yet been through
	// VerifyPath.
	ErrKindProxyCertificateNotCanonicalized

	// ErrKindPrivateKeyMissing indicates an operation requiring a private
	// key was attempted on a certificate without one attached.
	ErrKindPrivateKeyMissing

	// ErrKindCertificateMissingEKU indicates a requested Extended Key
	// Usage OID is absent from a certificate's EKU list.
	ErrKindCertificateMissingEKU

	// ErrKindPathAlgorithmChanged is retained for fidelity with the source
	// this package is derived from. It corresponds to a check
	// (signature-algorithm consistency across the chain) whose original
	// intent is unclear; this package defines the kind but never returns
	// it, matching the upstream dead code path.
	ErrKindPathAlgorithmChanged

	// ErrKindSignatureVerificationFailed indicates a certificate's
	// signature failed verification under its issuer's public key.
	ErrKindSignatureVerificationFailed

	// ErrKindRevoked indicates a revocation check reported the certificate
	// as revoked or otherwise untrusted.
	ErrKindRevoked

	// ErrKindDecode indicates a generic ASN.1 decode failure.
	ErrKindDecode
)

var errorKindStrings = map[ErrorKind]string{
	ErrKindNone:                              "no error",
	ErrKindExtensionNotFound:                 "extension not found",
	ErrKindCertificateMalformed:              "certificate malformed",
	ErrKindExtraDataAfterStructure:           "extra data after structure",
	ErrKindKeyUsageCertMissing:               "required key usage missing from certificate",
	ErrKindParentIsCA:                        "parent is a CA",
	ErrKindParentNotCA:                       "parent is not a CA",
	ErrKindCAPathTooDeep:                     "CA path too deep",
	ErrKindPathTooLong:                       "path too long",
	ErrKindIssuerNotFound:                    "issuer not found",
	ErrKindCertUsedBeforeTime:                "certificate used before its notBefore time",
	ErrKindCertUsedAfterTime:                 "certificate used after its notAfter time",
	ErrKindVerifyConstraints:                 "name constraints violated",
	ErrKindNameConstraintError:               "name constraint comparison error",
	ErrKindRange:                             "unsupported name constraint range",
	ErrKindProxyCertInvalid:                  "proxy certificate invalid",
	ErrKindProxyCertNameWrong:                "proxy certificate name wrong",
	ErrKindProxyCertificateNotCanonicalized:  "proxy certificate not canonicalized",
	ErrKindPrivateKeyMissing:                 "private key missing",
	ErrKindCertificateMissingEKU:             "certificate missing requested EKU",
	ErrKindPathAlgorithmChanged:              "path algorithm changed",
	ErrKindSignatureVerificationFailed:       "signature verification failed",
	ErrKindRevoked:                           "certificate revoked",
	ErrKindDecode:                            "decode error",
}

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	if s, ok := errorKindStrings[k]; ok {
		return s
	}
	return "unknown error kind"
}

// Error is the concrete error type returned by this package. It carries a
// stable Kind for callers to switch on plus a human-readable message which
// is advisory only.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Kind.String()
}

// Unwrap supports errors.Is/errors.As against a wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// newErr constructs an *Error with the given kind and formatted message.
func newErr(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func wrapErr(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// Kind returns the ErrorKind carried by err, or ErrKindNone if err is nil,
// and ErrKindDecode if err does not originate from this package.
func Kind(err error) ErrorKind {
	if err == nil {
		return ErrKindNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindDecode
}

// Sentinel errors exposed for errors.Is comparisons against common,
// well-known failure kinds. Every sentinel below is an *Error carrying the
// matching Kind so that both errors.Is(err, ErrIssuerNotFound) and
// hx509.Kind(err) == hx509.ErrKindIssuerNotFound work.
var (
	ErrExtensionNotFound                = newErr(ErrKindExtensionNotFound, "extension not found")
	ErrCertificateMalformed             = newErr(ErrKindCertificateMalformed, "certificate malformed")
	ErrExtraDataAfterStructure          = newErr(ErrKindExtraDataAfterStructure, "extra data after structure")
	ErrKeyUsageCertMissing              = newErr(ErrKindKeyUsageCertMissing, "required key usage missing from certificate")
	ErrParentIsCA                       = newErr(ErrKindParentIsCA, "parent is a CA")
	ErrParentNotCA                      = newErr(ErrKindParentNotCA, "parent is not a CA")
	ErrCAPathTooDeep                    = newErr(ErrKindCAPathTooDeep, "CA path too deep")
	ErrPathTooLong                      = newErr(ErrKindPathTooLong, "path too long")
	ErrIssuerNotFound                   = newErr(ErrKindIssuerNotFound, "issuer not found")
	ErrCertUsedBeforeTime               = newErr(ErrKindCertUsedBeforeTime, "certificate used before its notBefore time")
	ErrCertUsedAfterTime                = newErr(ErrKindCertUsedAfterTime, "certificate used after its notAfter time")
	ErrVerifyConstraints                = newErr(ErrKindVerifyConstraints, "name constraints violated")
	ErrNameConstraintError              = newErr(ErrKindNameConstraintError, "name constraint comparison error")
	ErrRange                            = newErr(ErrKindRange, "unsupported name constraint range")
	ErrProxyCertInvalid                 = newErr(ErrKindProxyCertInvalid, "proxy certificate invalid")
	ErrProxyCertNameWrong               = newErr(ErrKindProxyCertNameWrong, "proxy certificate name wrong")
	ErrProxyCertificateNotCanonicalized = newErr(ErrKindProxyCertificateNotCanonicalized, "proxy certificate not canonicalized")
	ErrPrivateKeyMissing                = newErr(ErrKindPrivateKeyMissing, "private key missing")
	ErrCertificateMissingEKU            = newErr(ErrKindCertificateMissingEKU, "certificate missing requested EKU")
	ErrPathAlgorithmChanged             = newErr(ErrKindPathAlgorithmChanged, "path algorithm changed")
	ErrSignatureVerificationFailed      = newErr(ErrKindSignatureVerificationFailed, "signature verification failed")
	ErrRevoked                          = newErr(ErrKindRevoked, "certificate revoked")
)
