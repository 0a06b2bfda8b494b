// Copyright 2020 Adam Chalkley
//
// https://github.com/atc0005/check-cert
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package hx509

import (
	"crypto/x509"
	"crypto/x509/pkix"

	"github.com/rs/zerolog/log"
)

// pathPosition classifies each certificate in a path during VerifyPath's
// forward pass, mirroring the type-state machine hx509_verify_path walks:
// a chain is zero or more proxy certificates, then exactly one end-entity
// certificate, then zero or more CA certificates.
type pathPosition int

const (
	positionProxy pathPosition = iota
	positionEndEntity
	positionCA
)

// VerifyPath is the top-level operation, implementing hx509_verify_path:
// it builds a chain from leaf toward ctx's attached trust anchors through
// pool, then runs the full forward/backward validation sequence against
// it:
//
//  1. build the path (CalculatePath), using ctx's anchors, clock and max
//     depth; any failure here propagates immediately;
//  2. forward pass: classify each certificate's position (proxy chain,
//     end-entity, CA chain), checking basicConstraints/keyUsage and
//     canonicalizing proxy base subjects as it goes;
//  3. validity window check at ctx's clock for every certificate except
//     the trust anchor, unless CHECK_TRUST_ANCHORS is set;
//  4. backward name-constraint pass, accumulating constraints from the
//     anchor down to the leaf;
//  5. revocation check for every non-anchor certificate;
//  6. backward signature-verification pass, including the anchor itself
//     when it is self-signed.
//
// On success it returns the built path, now owned by the caller (free it
// with FreePath). On failure it returns the first error encountered,
// carrying an ErrorKind callers should switch on; any partially built path
// is freed internally and never exposed.
func VerifyPath(ctx *VerifyContext, leaf *Certificate, pool Store) (Path, error) {
	now := ctx.clock()

	path, err := CalculatePath(leaf, pool, ctx.anchors, now, ctx.maxDepth, 0)
	if err != nil {
		return nil, err
	}

	if err := verifyForwardPass(ctx, path); err != nil {
		FreePath(path)
		return nil, err
	}
	if err := verifyValidityWindows(ctx, path); err != nil {
		FreePath(path)
		return nil, err
	}
	if err := verifyNameConstraints(path); err != nil {
		FreePath(path)
		return nil, err
	}
	if err := verifyRevocation(ctx, path, pool); err != nil {
		FreePath(path)
		return nil, err
	}
	if err := verifySignatures(ctx, path); err != nil {
		FreePath(path)
		return nil, err
	}
	return path, nil
}

// verifyForwardPass walks path leaf-to-root classifying each certificate's
// position and checking position-appropriate constraints, implementing
// hx509_verify_path's forward loop plus check_basic_constraints.
func verifyForwardPass(ctx *VerifyContext, path Path) error {
	state := positionProxy
	proxyCount := 0
	var endEntitySubject *pkix.Name

	for i, c := range path {
		raw := c.Raw()

		switch state {
		case positionProxy:
			if isProxyCert(raw) {
				if !ctx.allowProxyCertificate {
					return ErrProxyCertInvalid
				}
				info, err := findProxyCertInfo(raw)
				if err != nil {
					return wrapErr(ErrKindProxyCertInvalid, "missing proxyCertInfo", err)
				}
				if !proxyPathLenOK(info, proxyCount) {
					return ErrProxyCertInvalid
				}
				if hasExtension(raw, oidSubjectAltName) || hasExtension(raw, oidIssuerAltName) {
					return ErrProxyCertInvalid
				}
				if i+1 < len(path) {
					if err := checkProxyCertSubject(path[i+1].Raw().Subject, raw.Subject); err != nil {
						return err
					}
				}
				proxyCount++
				log.Debug().Int("index", i).Msg("hx509: verified proxy certificate")
				continue
			}
			state = positionEndEntity
			fallthrough

		case positionEndEntity:
			endEntitySubject = &raw.Subject
			state = positionCA
			log.Debug().Int("index", i).Str("subject", raw.Subject.String()).Msg("hx509: end-entity certificate")

		case positionCA:
			if err := checkBasicConstraints(raw, i-proxyCount-1); err != nil {
				return err
			}
			if err := checkCAKeyUsage(ctx, raw); err != nil {
				return err
			}
		}
	}

	if proxyCount > 0 && endEntitySubject != nil {
		base := *endEntitySubject
		for _, c := range path {
			if isProxyCert(c.Raw()) {
				c.setBaseSubject(base)
			}
		}
	}

	return nil
}

// checkCAKeyUsage enforces that a CA-position certificate's keyUsage
// extension, when present, carries keyCertSign. When the extension is
// absent, it is tolerated unless ctx.strictRFC3280 (REQUIRE_RFC3280) is
// set, matching check_basic_constraints' handling of missing keyUsage.
// Certificates below v3 are not checked.
func checkCAKeyUsage(ctx *VerifyContext, cert *x509.Certificate) error {
	if cert.Version < 3 {
		return nil
	}
	if !hasExtension(cert, oidKeyUsage) {
		if ctx.strictRFC3280 {
			return ErrKeyUsageCertMissing
		}
		return nil
	}
	if cert.KeyUsage&x509.KeyUsageCertSign == 0 {
		return ErrKeyUsageCertMissing
	}
	return nil
}

// checkBasicConstraints enforces that a CA-position certificate actually
// carries basicConstraints.cA, and that its pathLenConstraint (if any)
// isn't violated by the number of CA certificates beneath it in the chain,
// i.e. between it and the end-entity certificate (proxy certificates are
// not counted), implementing check_basic_constraints. A v3 certificate in CA
// position that carries no basicConstraints extension at all is rejected
// with ErrExtensionNotFound, matching check_basic_constraints' explicit
// CA_CERT branch in cert.c; only PROXY_CERT/EE_CERT tolerate an absent
// extension.
func checkBasicConstraints(cert *x509.Certificate, remaining int) error {
	if cert.Version < 3 {
		return nil
	}
	if !cert.BasicConstraintsValid {
		return ErrExtensionNotFound
	}
	if !cert.IsCA {
		return ErrParentNotCA
	}
	if cert.MaxPathLen == 0 && cert.MaxPathLenZero {
		if remaining > 0 {
			return ErrCAPathTooDeep
		}
	} else if cert.MaxPathLen > 0 && remaining > cert.MaxPathLen {
		return ErrCAPathTooDeep
	}
	return nil
}

// verifyValidityWindows checks every certificate's notBefore/notAfter
// against ctx's clock, except the trust anchor terminating the path,
// which is exempt unless CHECK_TRUST_ANCHORS is set.
func verifyValidityWindows(ctx *VerifyContext, path Path) error {
	now := ctx.clock()
	last := len(path) - 1
	for i, c := range path {
		if i == last && !ctx.checkTrustAnchors {
			continue
		}
		raw := c.Raw()
		if now.Before(raw.NotBefore) {
			return ErrCertUsedBeforeTime
		}
		if now.After(raw.NotAfter) {
			return ErrCertUsedAfterTime
		}
	}
	return nil
}

// verifyNameConstraints walks path root-to-leaf (backward relative to
// CalculatePath's leaf-first order), accumulating each CA certificate's
// nameConstraints and checking every subsequent certificate's names
// against the running accumulator, implementing check_name_constraints'
// use from hx509_verify_path.
func verifyNameConstraints(path Path) error {
	set := NewNameConstraintSet()

	for i := len(path) - 1; i >= 0; i-- {
		raw := path[i].Raw()

		if i < len(path)-1 {
			names, err := subjectGeneralNames(raw)
			if err != nil {
				return err
			}
			if err := set.Check(names); err != nil {
				return err
			}
		}

		nc, err := findNameConstraints(raw)
		if err != nil && Kind(err) != ErrKindExtensionNotFound {
			return err
		}
		if nc != nil {
			if err := set.Add(nc); err != nil {
				return err
			}
		}
	}
	return nil
}

// subjectGeneralNames builds the set of GeneralName values a certificate's
// own identity presents for constraint checking: its directoryName plus
// every name in its subjectAltName, if any.
func subjectGeneralNames(cert *x509.Certificate) ([]GeneralName, error) {
	names := []GeneralName{{Tag: generalNameDirectoryName, DirectoryName: cert.Subject}}

	i := 0
	san, err := findSubjectAltName(cert, &i)
	if err != nil {
		if Kind(err) == ErrKindExtensionNotFound {
			return names, nil
		}
		return nil, err
	}
	return append(names, san...), nil
}

// verifyRevocation checks every non-anchor certificate in path against
// ctx's revocation verifier, if one is attached. A nil verifier means
// revocation is never checked, matching a context that never called
// hx509_verify_attach_revoke. Per spec §4.F step 7, the verifier is
// offered a working set containing the path plus pool, so a CRL/OCSP
// implementation can locate the issuing CA's own certificate or a
// delegated responder certificate alongside the chain being verified.
func verifyRevocation(ctx *VerifyContext, path Path, pool Store) error {
	if ctx.revoke == nil {
		return nil
	}

	working := NewMemoryStore("MEMORY:revoke-certs")
	for _, c := range path {
		working.Add(c)
	}
	if pool != nil {
		working.Merge(pool)
	}

	now := ctx.clock()
	for i := 0; i < len(path)-1; i++ {
		status, err := ctx.revoke.Check(working, now, path[i].Raw(), path[i+1].Raw())
		if err != nil {
			return wrapErr(ErrKindRevoked, "revocation check failed", err)
		}
		switch status {
		case RevocationRevoked:
			return ErrRevoked
		case RevocationUnknown:
			if !ctx.allowMissingRevoke {
				return ErrRevoked
			}
		}
	}
	return nil
}

// verifySignatures walks path from the trust anchor back to the leaf,
// checking that each certificate was signed by its successor (its issuer
// in the chain), implementing hx509_verify_path's trailing
// signature-verification pass. The anchor itself is verified only if it
// is self-signed, matching spec §4.F step 8.
func verifySignatures(ctx *VerifyContext, path Path) error {
	last := len(path) - 1
	if isSelfSigned(path[last].Raw()) {
		anchor := path[last].Raw()
		if err := ctx.sig.Verify(anchor, anchor); err != nil {
			return err
		}
	}
	for i := last - 1; i >= 0; i-- {
		if err := ctx.sig.Verify(path[i+1].Raw(), path[i].Raw()); err != nil {
			return err
		}
	}
	return nil
}
