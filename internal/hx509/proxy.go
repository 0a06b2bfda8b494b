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
	"encoding/asn1"
)

// ProxyCertInfo is the decoded RFC 3820 id-pe-proxyCertInfo extension
// value. crypto/x509 has no knowledge of this extension; it is decoded by
// hand the same way the rest of this package hand-decodes extensions
// stdlib doesn't cover.
type ProxyCertInfo struct {
	// PathLenConstraint is the maximum number of proxy certificates that
	// may follow this one in a chain. Absent is represented as -1
	// (unlimited).
	PathLenConstraint int

	// Policy is the raw proxyPolicy policyLanguage OID; its policy field
	// content is opaque to this package.
	Policy asn1.ObjectIdentifier
}

type rawProxyCertInfo struct {
	PathLenConstraint int `asn1:"optional,default:-1"`
	Policy            struct {
		PolicyLanguage asn1.ObjectIdentifier
		Policy         []byte `asn1:"optional"`
	}
}

// isProxyCert reports whether cert carries the id-pe-proxyCertInfo
// extension, i.e. whether it is an RFC 3820 proxy certificate.
func isProxyCert(cert *x509.Certificate) bool {
	i := 0
	_, err := findExtension(cert, oidProxyCertInfo, &i)
	return err == nil
}

// findProxyCertInfo locates and decodes cert's proxyCertInfo extension, if
// present.
func findProxyCertInfo(cert *x509.Certificate) (*ProxyCertInfo, error) {
	i := 0
	ext, err := findExtension(cert, oidProxyCertInfo, &i)
	if err != nil {
		return nil, err
	}

	var raw rawProxyCertInfo
	if _, err := asn1.Unmarshal(ext.Value, &raw); err != nil {
		return nil, wrapErr(ErrKindDecode, "decoding ProxyCertInfo", err)
	}

	return &ProxyCertInfo{
		PathLenConstraint: raw.PathLenConstraint,
		Policy:            raw.Policy.PolicyLanguage,
	}, nil
}

// checkProxyCertSubject verifies that a proxy certificate's subject is
// exactly its issuer's subject plus one trailing RDN containing a single
// commonName attribute, per RFC 3820 §3.4. issuerSubject is the issuing
// certificate's subject name.
func checkProxyCertSubject(issuerSubject, proxySubject pkix.Name) error {
	issuerRDN := issuerSubject.ToRDNSequence()
	proxyRDN := proxySubject.ToRDNSequence()

	if len(proxyRDN) != len(issuerRDN)+1 {
		return ErrProxyCertNameWrong
	}

	for i := range issuerRDN {
		if rdnCmp(issuerRDN[i], proxyRDN[i]) != 0 {
			return ErrProxyCertNameWrong
		}
	}

	trailing := proxyRDN[len(proxyRDN)-1]
	if len(trailing) != 1 || !trailing[0].Type.Equal(oidCommonName) {
		return ErrProxyCertNameWrong
	}

	return nil
}

// proxyPathLenOK reports whether a proxy certificate chain of the given
// remaining proxy-certificate count satisfies info's pathLenConstraint.
// remaining counts the proxy certificates that precede this one in the
// leaf-first path (the proxies issued beneath it), not including this
// certificate itself.
func proxyPathLenOK(info *ProxyCertInfo, remaining int) bool {
	if info.PathLenConstraint < 0 {
		return true
	}
	return remaining <= info.PathLenConstraint
}
