// Copyright 2020 Adam Chalkley
//
// https://github.com/atc0005/check-cert
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package hx509

import (
	"crypto/x509"
	"time"
)

// RevocationStatus is the three-valued answer a RevocationVerifier gives
// for a single certificate, matching hx509_revoke_verify's tri-state
// result (good / revoked / unknown).
type RevocationStatus int

const (
	// RevocationGood indicates the certificate is known not to be
	// revoked.
	RevocationGood RevocationStatus = iota
	// RevocationRevoked indicates the certificate has been revoked.
	RevocationRevoked
	// RevocationUnknown indicates no revocation data (CRL or OCSP
	// response) was available to answer the question.
	RevocationUnknown
)

// RevocationVerifier is the external revocation-checking collaborator
// named in spec §1/§6 (CRL and OCSP handling are out of scope for this
// package; only the interface boundary is defined), matching
// revoke_verify(ctx, pool, time, cert, issuer)'s full parameter set.
// VerifyPath calls Check once per certificate in the chain except the
// final trust anchor, passing a working set built from the path plus the
// pool supplied to VerifyPath and the effective verification time.
type RevocationVerifier interface {
	Check(working Store, atTime time.Time, cert, issuer *x509.Certificate) (RevocationStatus, error)
}
