// Copyright 2020 Adam Chalkley
//
// https://github.com/atc0005/check-cert
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package hx509

import (
	"bytes"
	"crypto"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"sync/atomic"
	"time"
)

// ReleaseFunc is invoked exactly once, immediately before a Certificate's
// backing resources are freed, when its reference count drops to zero. It
// gives a certificate store a chance to release anything it lent alongside
// the certificate (e.g. a private key handle).
type ReleaseFunc func(c *Certificate)

// attribute is a single OID-keyed opaque attribute attached to a
// Certificate, used for friendly names, local key IDs, and similar
// PKCS#9/PKCS#12 side-channel data.
type attribute struct {
	oid   asn1.ObjectIdentifier
	value []byte
}

// Certificate is an immutable, reference-counted wrapper around a decoded
// certificate plus the side attributes this package tracks across its
// lifetime (friendly name, base subject, ad-hoc attributes).
//
// A Certificate is created with a reference count of one. Callers that want
// to retain it beyond a single call must Ref it and Free their own
// reference when finished. Calling Ref or Free once the count has already
// reached zero is a programming error and panics.
type Certificate struct {
	ref int32

	cert *x509.Certificate

	friendlyName string
	attrs        []attribute

	// baseSubject is the distinguished name of the first non-proxy
	// ancestor in the chain that produced this certificate. It is set by
	// VerifyPath when an end-entity certificate is preceded by one or more
	// proxy certificates; see BaseSubject.
	baseSubject *pkix.Name

	// privateKey is the optional owned private-key handle spec §3
	// describes, shared ownership with whatever store lent this
	// Certificate alongside it.
	privateKey crypto.Signer

	release ReleaseFunc
}

// NewCertificate wraps a decoded certificate, returning a Certificate with
// a reference count of one. decoded is retained, not copied; callers must
// not mutate it afterward.
func NewCertificate(decoded *x509.Certificate) *Certificate {
	return &Certificate{
		ref:  1,
		cert: decoded,
	}
}

// SetRelease attaches a release callback, invoked exactly once when the
// reference count reaches zero. Intended for use by certificate stores
// that lend a Certificate alongside another owned resource.
func (c *Certificate) SetRelease(fn ReleaseFunc) {
	c.release = fn
}

// Ref increments the reference count and returns c for convenient chaining,
// e.g. `stored := cert.Ref()`.
func (c *Certificate) Ref() *Certificate {
	if atomic.LoadInt32(&c.ref) <= 0 {
		panic("hx509: Certificate refcount <= 0 in Ref")
	}
	atomic.AddInt32(&c.ref, 1)
	return c
}

// Free decrements the reference count. When it reaches zero the release
// callback (if any) runs and the Certificate's resources become eligible
// for garbage collection. Free is a no-op on a nil Certificate.
func (c *Certificate) Free() {
	if c == nil {
		return
	}
	if atomic.LoadInt32(&c.ref) <= 0 {
		panic("hx509: Certificate refcount <= 0 in Free")
	}
	if atomic.AddInt32(&c.ref, -1) > 0 {
		return
	}
	if c.release != nil {
		c.release(c)
	}
}

// Raw returns the wrapped decoded certificate. The returned value must not
// be mutated.
func (c *Certificate) Raw() *x509.Certificate {
	return c.cert
}

// Version returns the certificate's X.509 version (1, 2, or 3).
func (c *Certificate) Version() int {
	return c.cert.Version
}

// Subject returns the certificate's subject distinguished name.
func (c *Certificate) Subject() pkix.Name {
	return c.cert.Subject
}

// Issuer returns the certificate's issuer distinguished name.
func (c *Certificate) Issuer() pkix.Name {
	return c.cert.Issuer
}

// SerialNumber returns the certificate's serial number.
func (c *Certificate) SerialNumber() *big.Int {
	return c.cert.SerialNumber
}

// NotBefore returns the start of the certificate's validity window.
func (c *Certificate) NotBefore() time.Time {
	return c.cert.NotBefore
}

// NotAfter returns the end of the certificate's validity window.
func (c *Certificate) NotAfter() time.Time {
	return c.cert.NotAfter
}

// SubjectKeyID returns the certificate's subjectKeyIdentifier extension
// value and whether it was present.
func (c *Certificate) SubjectKeyID() ([]byte, bool) {
	if len(c.cert.SubjectKeyId) == 0 {
		return nil, false
	}
	return c.cert.SubjectKeyId, true
}

// SPKI returns the certificate's raw, DER-encoded SubjectPublicKeyInfo
// (algorithm identifier plus public key bits), matching get_SPKI.
func (c *Certificate) SPKI() []byte {
	return c.cert.RawSubjectPublicKeyInfo
}

// SetPrivateKey attaches an owned private-key handle to the certificate,
// matching spec §3's optional private-key field. Stores that lend a
// Certificate alongside a decoded key (PKCS#11, PKCS#12) call this before
// handing the Certificate to a caller.
func (c *Certificate) SetPrivateKey(key crypto.Signer) {
	c.privateKey = key
}

// PrivateKey returns the certificate's attached private key, if any.
func (c *Certificate) PrivateKey() (crypto.Signer, bool) {
	return c.privateKey, c.privateKey != nil
}

// HasPrivateKey reports whether a private key is attached, used by
// Query's "must have private key" match option.
func (c *Certificate) HasPrivateKey() bool {
	return c.privateKey != nil
}

// RequirePrivateKey returns c's attached private key, or
// ErrPrivateKeyMissing if none was ever attached via SetPrivateKey.
func (c *Certificate) RequirePrivateKey() (crypto.Signer, error) {
	if c.privateKey == nil {
		return nil, ErrPrivateKeyMissing
	}
	return c.privateKey, nil
}

// CheckEKU reports whether the certificate's extKeyUsage extension lists
// oid, implementing cert_check_eku. An absent extKeyUsage extension is
// treated the same as one that doesn't list oid: ErrCertificateMissingEKU.
func (c *Certificate) CheckEKU(oid asn1.ObjectIdentifier) error {
	ekus, err := findExtKeyUsage(c.cert)
	if err != nil {
		if Kind(err) == ErrKindExtensionNotFound {
			return ErrCertificateMissingEKU
		}
		return err
	}
	for _, e := range ekus {
		if e.Equal(oid) {
			return nil
		}
	}
	return ErrCertificateMissingEKU
}

// FindSubjectAltNameOtherName searches the certificate's subjectAltName
// extension for an otherName entry whose type-id equals oid, implementing
// cert_find_subjectAltName_otherName. It returns the otherName's raw
// DER-encoded value field. ErrExtensionNotFound is returned both when the
// certificate carries no subjectAltName at all and when it carries one but
// no otherName of that type.
func (c *Certificate) FindSubjectAltNameOtherName(oid asn1.ObjectIdentifier) ([]byte, error) {
	i := 0
	names, err := findSubjectAltName(c.cert, &i)
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		if n.Tag == generalNameOtherName && n.OtherNameTypeID.Equal(oid) {
			return n.OtherNameValue, nil
		}
	}
	return nil, ErrExtensionNotFound
}

// subjectNull reports whether the certificate's subject is the empty RDN
// sequence (a "subjectless" certificate, linked only via
// subjectKeyIdentifier per spec §4.D).
func (c *Certificate) subjectNull() bool {
	return len(c.cert.Subject.ToRDNSequence()) == 0
}

// Binary re-encodes the certificate to its original DER bytes.
func (c *Certificate) Binary() []byte {
	return c.cert.Raw
}

// SetFriendlyName explicitly sets the certificate's friendly name,
// overriding any PKCS#9 friendlyName attribute fallback in
// FriendlyName.
func (c *Certificate) SetFriendlyName(name string) {
	c.friendlyName = name
}

var oidPKCS9FriendlyName = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 20}

// FriendlyName returns the certificate's friendly name. If none was
// explicitly set, it falls back to decoding a PKCS#9 friendlyName
// attribute, if one was attached via SetAttribute. A decoded attribute
// sequence of length other than one is treated as absent. Any rune in the
// decoded BMPString-style value wider than a byte is replaced with 'X'.
func (c *Certificate) FriendlyName() (string, bool) {
	if c.friendlyName != "" {
		return c.friendlyName, true
	}

	attr, ok := c.Attribute(oidPKCS9FriendlyName)
	if !ok {
		return "", false
	}

	var values [][]byte
	if _, err := asn1.Unmarshal(attr, &values); err != nil {
		return "", false
	}
	if len(values) != 1 {
		return "", false
	}

	// PKCS#9 friendlyName is a BMPString (UCS-2BE); each two-byte code unit
	// wider than a single byte collapses to 'X', matching the upstream
	// decode this package is derived from.
	raw := values[0]
	out := make([]byte, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		unit := uint16(raw[i])<<8 | uint16(raw[i+1])
		if unit > 0xFF {
			out = append(out, 'X')
		} else {
			out = append(out, byte(unit))
		}
	}
	return string(out), true
}

// SetAttribute records an opaque OID-keyed attribute on the certificate.
// Only the first attribute for a given OID is kept, matching the original
// "doesn't make a copy / first wins" semantics.
func (c *Certificate) SetAttribute(oid asn1.ObjectIdentifier, value []byte) {
	if _, ok := c.Attribute(oid); ok {
		return
	}
	c.attrs = append(c.attrs, attribute{oid: oid, value: value})
}

// Attribute returns the raw bytes of the attribute registered under oid, if
// any.
func (c *Certificate) Attribute(oid asn1.ObjectIdentifier) ([]byte, bool) {
	for _, a := range c.attrs {
		if a.oid.Equal(oid) {
			return a.value, true
		}
	}
	return nil, false
}

// BaseSubject returns the distinguished name of the non-proxy ancestor that
// ultimately issued this certificate's proxy chain, per
// hx509_cert_get_base_subject. If this Certificate was never touched by
// VerifyPath's proxy canonicalization it is either:
//
//   - not a proxy certificate: its own subject is returned, or
//   - a proxy certificate that has not been through VerifyPath:
//     ErrProxyCertificateNotCanonicalized is returned.
func (c *Certificate) BaseSubject() (pkix.Name, error) {
	if c.baseSubject != nil {
		return *c.baseSubject, nil
	}
	if isProxyCert(c.cert) {
		return pkix.Name{}, ErrProxyCertificateNotCanonicalized
	}
	return c.cert.Subject, nil
}

// setBaseSubject is called by VerifyPath once a proxy chain has been
// canonicalized against its originating end-entity certificate.
func (c *Certificate) setBaseSubject(name pkix.Name) {
	c.baseSubject = &name
}

// Cmp imposes a total order over certificates: signature value, then
// signature algorithm (see algorithmIdentifierCmp), then raw TBS bytes.
func Cmp(a, b *Certificate) int {
	if d := bytes.Compare(a.cert.Signature, b.cert.Signature); d != 0 {
		return d
	}
	if d := algorithmIdentifierCmp(a.cert, b.cert); d != 0 {
		return d
	}
	return bytes.Compare(tbsBytes(a.cert), tbsBytes(b.cert))
}

// Equal reports whether a and b compare equal under Cmp.
func Equal(a, b *Certificate) bool {
	return Cmp(a, b) == 0
}

// algorithmIdentifierCmp compares two certificates' signature algorithm
// identifiers. crypto/x509 exposes the parsed SignatureAlgorithm enum
// rather than the raw AlgorithmIdentifier (OID + parameters), and only that
// enum is compared: the algorithm OID and its parameters are not compared
// separately, so two encodings that parse to the same enum value compare
// equal here.
func algorithmIdentifierCmp(a, b *x509.Certificate) int {
	if a.SignatureAlgorithm != b.SignatureAlgorithm {
		if a.SignatureAlgorithm < b.SignatureAlgorithm {
			return -1
		}
		return 1
	}
	return 0
}

// tbsBytes returns the raw encoded TBSCertificate bytes used both for
// total ordering and for signature verification.
func tbsBytes(c *x509.Certificate) []byte {
	return c.RawTBSCertificate
}
