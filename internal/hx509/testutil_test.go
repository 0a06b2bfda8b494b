// Copyright 2020 Adam Chalkley
//
// https://github.com/atc0005/check-cert
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package hx509

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // test fixture key identifiers only, not a signature scheme
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"testing"
	"time"
)

// testSerial hands out small, distinct serial numbers to generated test
// certificates. Tests in this package run sequentially, so a plain counter
// is sufficient.
var testSerial int64

func nextTestSerial() *big.Int {
	testSerial++
	return big.NewInt(testSerial)
}

// certOpt customizes a certificate template before it is signed by newCert.
type certOpt func(*x509.Certificate)

func withValidity(notBefore, notAfter time.Time) certOpt {
	return func(c *x509.Certificate) {
		c.NotBefore = notBefore
		c.NotAfter = notAfter
	}
}

func withKeyUsage(ku x509.KeyUsage) certOpt {
	return func(c *x509.Certificate) { c.KeyUsage = ku }
}

func withCA(maxPathLen int, maxPathLenSet bool) certOpt {
	return func(c *x509.Certificate) {
		c.IsCA = true
		c.BasicConstraintsValid = true
		if maxPathLenSet {
			c.MaxPathLen = maxPathLen
			c.MaxPathLenZero = maxPathLen == 0
		}
	}
}

// withExplicitNotCA sets basicConstraints.cA to false explicitly, as
// opposed to simply omitting the extension (the zero value).
func withExplicitNotCA() certOpt {
	return func(c *x509.Certificate) {
		c.BasicConstraintsValid = true
		c.IsCA = false
	}
}

func withDNSNames(names ...string) certOpt {
	return func(c *x509.Certificate) { c.DNSNames = names }
}

func withNameConstraints(permittedDNS, excludedDNS []string) certOpt {
	return func(c *x509.Certificate) {
		c.PermittedDNSDomains = permittedDNS
		c.ExcludedDNSDomains = excludedDNS
		c.PermittedDNSDomainsCritical = true
	}
}

func withExtraExtension(ext pkix.Extension) certOpt {
	return func(c *x509.Certificate) {
		c.ExtraExtensions = append(c.ExtraExtensions, ext)
	}
}

// withSubject overrides the template's default CommonName-only subject,
// applied after newCert has already derived the issuer linkage from the
// parent's actual subject, so it never disturbs chain building.
func withSubject(name pkix.Name) certOpt {
	return func(c *x509.Certificate) { c.Subject = name }
}

func withExtKeyUsage(ekus ...x509.ExtKeyUsage) certOpt {
	return func(c *x509.Certificate) { c.ExtKeyUsage = ekus }
}

// proxyPolicyLanguageOID is RFC 3820's id-ppl-inheritAll, used as filler
// policyLanguage content for test ProxyCertInfo extensions.
var proxyPolicyLanguageOID = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 21, 1}

// withProxyCertInfo attaches an RFC 3820 id-pe-proxyCertInfo extension with
// the given pathLenConstraint (-1 for unlimited), matching rawProxyCertInfo
// in proxy.go.
func withProxyCertInfo(pathLenConstraint int) certOpt {
	return func(c *x509.Certificate) {
		type policy struct {
			PolicyLanguage asn1.ObjectIdentifier
			Policy         []byte `asn1:"optional"`
		}
		raw := struct {
			PathLenConstraint int `asn1:"optional,default:-1"`
			Policy            policy
		}{
			PathLenConstraint: pathLenConstraint,
			Policy:            policy{PolicyLanguage: proxyPolicyLanguageOID},
		}

		val, err := asn1.Marshal(raw)
		if err != nil {
			panic(err)
		}
		c.ExtraExtensions = append(c.ExtraExtensions, pkix.Extension{Id: oidProxyCertInfo, Value: val})
	}
}

func skiOf(pub *ecdsa.PublicKey) []byte {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		panic(err)
	}
	sum := sha1.Sum(der)
	return sum[:]
}

// newCert mints a certificate signed by parent/parentKey (self-signed when
// parent is nil), applying opts over sensible end-entity defaults. It
// returns the fully parsed certificate (so Extensions/RawTBSCertificate/etc
// are populated the way a real decoded certificate would be) plus its
// private key, for use as a signing parent in turn.
func newCert(t *testing.T, commonName string, parent *x509.Certificate, parentKey *ecdsa.PrivateKey, opts ...certOpt) (*x509.Certificate, *ecdsa.PrivateKey) {
	t.Helper()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generating test key: %v", err)
	}

	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber: nextTestSerial(),
		Subject:      pkix.Name{CommonName: commonName},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		SubjectKeyId: skiOf(&priv.PublicKey),
	}

	var signParent *x509.Certificate
	var signKey *ecdsa.PrivateKey
	if parent == nil {
		tmpl.Issuer = tmpl.Subject
		tmpl.AuthorityKeyId = tmpl.SubjectKeyId
		signParent = tmpl
		signKey = priv
	} else {
		tmpl.Issuer = parent.Subject
		tmpl.AuthorityKeyId = parent.SubjectKeyId
		signParent = parent
		signKey = parentKey
	}

	for _, opt := range opts {
		opt(tmpl)
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, signParent, &priv.PublicKey, signKey)
	if err != nil {
		t.Fatalf("creating test certificate %q: %v", commonName, err)
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parsing test certificate %q: %v", commonName, err)
	}

	return cert, priv
}

// newMemoryStoreWith returns an in-memory Store pre-populated with certs.
func newMemoryStoreWith(certs ...*x509.Certificate) Store {
	s := NewMemoryStore("MEMORY:test")
	for _, raw := range certs {
		c := NewCertificate(raw)
		s.Add(c)
		c.Free()
	}
	return s
}
