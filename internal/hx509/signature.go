// Copyright 2020 Adam Chalkley
//
// https://github.com/atc0005/check-cert
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package hx509

import "crypto/x509"

// SignatureVerifier checks that child was signed by parent, per spec §1's
// external signature-verification collaborator contract: a single
// verify(signer, child) call, with no opinion on algorithm policy beyond
// what the implementation itself enforces.
type SignatureVerifier interface {
	Verify(parent, child *x509.Certificate) error
}

// defaultSignatureVerifier checks child's signatureValue over its raw TBS
// bytes with child's signatureAlgorithm and parent's public key, via
// crypto/x509.Certificate.CheckSignature. It applies no basicConstraints or
// keyUsage policy to parent (VerifyPath's forward pass does that), so a
// proxy certificate signed by an end-entity key verifies too.
type defaultSignatureVerifier struct{}

func (defaultSignatureVerifier) Verify(parent, child *x509.Certificate) error {
	if err := parent.CheckSignature(child.SignatureAlgorithm, child.RawTBSCertificate, child.Signature); err != nil {
		return wrapErr(ErrKindSignatureVerificationFailed, "signature verification failed", err)
	}
	return nil
}
