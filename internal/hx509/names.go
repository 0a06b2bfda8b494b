// Copyright 2020 Adam Chalkley
//
// https://github.com/atc0005/check-cert
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package hx509

import (
	"bytes"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"math/big"
	"strings"
)

// Extension OIDs this package decodes by hand because crypto/x509 either
// doesn't expose their full structure (AuthorityKeyIdentifier's
// authorityCertIssuer/authorityCertSerialNumber fallback, NameConstraints'
// non-DNS/email/IP/URI variants and minimum/maximum fields) or doesn't know
// about them at all (ProxyCertInfo).
var (
	oidAuthorityKeyIdentifier = asn1.ObjectIdentifier{2, 5, 29, 35}
	oidSubjectKeyIdentifier   = asn1.ObjectIdentifier{2, 5, 29, 14}
	oidNameConstraints        = asn1.ObjectIdentifier{2, 5, 29, 30}
	oidSubjectAltName         = asn1.ObjectIdentifier{2, 5, 29, 17}
	oidIssuerAltName          = asn1.ObjectIdentifier{2, 5, 29, 18}
	oidExtKeyUsage            = asn1.ObjectIdentifier{2, 5, 29, 37}
	oidKeyUsage               = asn1.ObjectIdentifier{2, 5, 29, 15}
	oidProxyCertInfo          = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 1, 14}
	oidCommonName             = asn1.ObjectIdentifier{2, 5, 4, 3}
)

// findExtension performs a linear scan of cert's extensions starting at
// *cursor looking for oid, advancing *cursor past a match. It returns
// ErrExtensionNotFound if the certificate predates v3 or carries no
// matching extension, mirroring find_extension's version gate.
func findExtension(cert *x509.Certificate, oid asn1.ObjectIdentifier, cursor *int) (*pkix.Extension, error) {
	if cert.Version < 3 {
		return nil, ErrExtensionNotFound
	}
	for ; *cursor < len(cert.Extensions); *cursor++ {
		if cert.Extensions[*cursor].Id.Equal(oid) {
			ext := &cert.Extensions[*cursor]
			*cursor++
			return ext, nil
		}
	}
	return nil, ErrExtensionNotFound
}

// AuthorityKeyIdentifier is the fully decoded form of RFC 5280's
// authorityKeyIdentifier extension, including the rarely-used
// authorityCertIssuer/authorityCertSerialNumber fallback pair that
// crypto/x509 does not expose.
type AuthorityKeyIdentifier struct {
	KeyIdentifier         []byte
	AuthorityCertIssuer    *pkix.Name
	AuthorityCertSerialNumber *big.Int
}

type rawAuthorityKeyIdentifier struct {
	KeyIdentifier []byte        `asn1:"optional,tag:0"`
	CertIssuer    asn1.RawValue `asn1:"optional,tag:1"`
	CertSerial    *big.Int      `asn1:"optional,tag:2"`
}

// findAuthorityKeyID locates and decodes the authorityKeyIdentifier
// extension on cert, if present.
func findAuthorityKeyID(cert *x509.Certificate) (*AuthorityKeyIdentifier, error) {
	i := 0
	ext, err := findExtension(cert, oidAuthorityKeyIdentifier, &i)
	if err != nil {
		return nil, err
	}

	var raw rawAuthorityKeyIdentifier
	if _, err := asn1.Unmarshal(ext.Value, &raw); err != nil {
		return nil, wrapErr(ErrKindDecode, "decoding AuthorityKeyIdentifier", err)
	}

	aki := &AuthorityKeyIdentifier{
		KeyIdentifier:             raw.KeyIdentifier,
		AuthorityCertSerialNumber: raw.CertSerial,
	}

	if len(raw.CertIssuer.Bytes) > 0 {
		names, err := decodeGeneralNames(raw.CertIssuer.Bytes)
		if err != nil {
			return nil, wrapErr(ErrKindDecode, "decoding AuthorityKeyIdentifier.authorityCertIssuer", err)
		}
		if len(names) == 1 && names[0].Tag == generalNameDirectoryName {
			name := names[0].DirectoryName
			aki.AuthorityCertIssuer = &name
		}
	}

	return aki, nil
}

// subjectKeyID returns cert's subjectKeyIdentifier extension value.
// crypto/x509 already decodes this extension (it requires no CHOICE
// handling), so we read it directly rather than re-scanning extensions by
// hand.
func subjectKeyID(cert *x509.Certificate) ([]byte, bool) {
	if len(cert.SubjectKeyId) == 0 {
		return nil, false
	}
	return cert.SubjectKeyId, true
}

type rawNameConstraints struct {
	Permitted asn1.RawValue `asn1:"optional,tag:0"`
	Excluded  asn1.RawValue `asn1:"optional,tag:1"`
}

type rawGeneralSubtree struct {
	Base    asn1.RawValue
	Minimum int `asn1:"optional,tag:0,default:0"`
	Maximum int `asn1:"optional,tag:1,default:-1"`
}

// GeneralSubtree is a single entry of a permittedSubtrees/excludedSubtrees
// list: a base GeneralName plus the (almost always zero/absent) minimum
// and maximum base distance.
type GeneralSubtree struct {
	Base    GeneralName
	Minimum int
	Maximum int // -1 means absent
}

// NameConstraints is the fully decoded nameConstraints extension value.
type NameConstraints struct {
	Permitted []GeneralSubtree
	Excluded  []GeneralSubtree
}

// findNameConstraints locates and decodes the nameConstraints extension on
// cert, if present.
func findNameConstraints(cert *x509.Certificate) (*NameConstraints, error) {
	i := 0
	ext, err := findExtension(cert, oidNameConstraints, &i)
	if err != nil {
		return nil, err
	}

	var raw rawNameConstraints
	if _, err := asn1.Unmarshal(ext.Value, &raw); err != nil {
		return nil, wrapErr(ErrKindDecode, "decoding NameConstraints", err)
	}

	nc := &NameConstraints{}
	if len(raw.Permitted.Bytes) > 0 {
		subtrees, err := decodeGeneralSubtrees(raw.Permitted.Bytes)
		if err != nil {
			return nil, err
		}
		nc.Permitted = subtrees
	}
	if len(raw.Excluded.Bytes) > 0 {
		subtrees, err := decodeGeneralSubtrees(raw.Excluded.Bytes)
		if err != nil {
			return nil, err
		}
		nc.Excluded = subtrees
	}
	return nc, nil
}

// decodeGeneralSubtrees decodes the IMPLICIT-tagged content of a
// GeneralSubtrees SEQUENCE OF. The caller has already stripped the [0]/[1]
// context tag; we re-tag the content as an ordinary universal SEQUENCE so
// encoding/asn1 can walk it as a slice of rawGeneralSubtree.
func decodeGeneralSubtrees(content []byte) ([]GeneralSubtree, error) {
	wrapped, err := reTagAsUniversalSequence(content)
	if err != nil {
		return nil, wrapErr(ErrKindDecode, "re-tagging GeneralSubtrees", err)
	}

	var raws []rawGeneralSubtree
	if _, err := asn1.Unmarshal(wrapped, &raws); err != nil {
		return nil, wrapErr(ErrKindDecode, "decoding GeneralSubtrees", err)
	}

	out := make([]GeneralSubtree, 0, len(raws))
	for _, r := range raws {
		gn, err := decodeGeneralName(r.Base)
		if err != nil {
			return nil, err
		}
		maximum := r.Maximum
		out = append(out, GeneralSubtree{Base: gn, Minimum: r.Minimum, Maximum: maximum})
	}
	return out, nil
}

// reTagAsUniversalSequence rebuilds content (the already-stripped inner
// bytes of an IMPLICIT-tagged SEQUENCE) as a standalone universal SEQUENCE
// TLV, so it can be unmarshaled with an ordinary slice target.
func reTagAsUniversalSequence(content []byte) ([]byte, error) {
	return asn1.Marshal(asn1.RawValue{
		Class:      asn1.ClassUniversal,
		Tag:        asn1.TagSequence,
		IsCompound: true,
		Bytes:      content,
	})
}

// GeneralName tag values, matching the seven alternatives this package
// understands (otherName, rfc822Name, dNSName, directoryName,
// uniformResourceIdentifier, iPAddress, registeredID). x400Address and
// ediPartyName are never produced by decodeGeneralName and are rejected as
// unsupported, matching match_general_name's default case.
const (
	generalNameOtherName = 0
	generalNameRFC822Name = 1
	generalNameDNSName    = 2
	generalNameDirectoryName = 4
	generalNameURI           = 6
	generalNameIPAddress     = 7
	generalNameRegisteredID  = 8
)

// GeneralName is a decoded RFC 5280 GeneralName CHOICE value. Only the
// field matching Tag is meaningful.
type GeneralName struct {
	Tag int

	OtherNameTypeID asn1.ObjectIdentifier
	OtherNameValue  []byte

	RFC822Name string
	DNSName    string

	DirectoryName pkix.Name

	URI          string
	IPAddress    []byte
	RegisteredID asn1.ObjectIdentifier
}

// decodeGeneralNames decodes a GeneralNames SEQUENCE OF (the ordinary,
// explicitly-tagged top-level extension content of subjectAltName,
// issuerAltName, or an authorityCertIssuer field).
func decodeGeneralNames(value []byte) ([]GeneralName, error) {
	var raws []asn1.RawValue
	if _, err := asn1.Unmarshal(value, &raws); err != nil {
		return nil, err
	}
	out := make([]GeneralName, 0, len(raws))
	for _, raw := range raws {
		gn, err := decodeGeneralName(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, gn)
	}
	return out, nil
}

// decodeGeneralName decodes a single context-tagged GeneralName
// alternative.
func decodeGeneralName(raw asn1.RawValue) (GeneralName, error) {
	if raw.Class != asn1.ClassContextSpecific {
		return GeneralName{}, wrapErr(ErrKindDecode, "GeneralName: unexpected class", nil)
	}

	switch raw.Tag {
	case generalNameOtherName:
		wrapped, err := reTagAsUniversalSequence(raw.Bytes)
		if err != nil {
			return GeneralName{}, err
		}
		var on struct {
			TypeID asn1.ObjectIdentifier
			Value  asn1.RawValue `asn1:"explicit,tag:0"`
		}
		if _, err := asn1.Unmarshal(wrapped, &on); err != nil {
			return GeneralName{}, wrapErr(ErrKindDecode, "decoding otherName", err)
		}
		return GeneralName{Tag: generalNameOtherName, OtherNameTypeID: on.TypeID, OtherNameValue: on.Value.FullBytes}, nil

	case generalNameRFC822Name:
		return GeneralName{Tag: generalNameRFC822Name, RFC822Name: string(raw.Bytes)}, nil

	case generalNameDNSName:
		return GeneralName{Tag: generalNameDNSName, DNSName: string(raw.Bytes)}, nil

	case generalNameDirectoryName:
		var rdn pkix.RDNSequence
		if _, err := asn1.Unmarshal(raw.Bytes, &rdn); err != nil {
			return GeneralName{}, wrapErr(ErrKindDecode, "decoding directoryName", err)
		}
		var name pkix.Name
		name.FillFromRDNSequence(&rdn)
		return GeneralName{Tag: generalNameDirectoryName, DirectoryName: name}, nil

	case generalNameURI:
		return GeneralName{Tag: generalNameURI, URI: string(raw.Bytes)}, nil

	case generalNameIPAddress:
		return GeneralName{Tag: generalNameIPAddress, IPAddress: raw.Bytes}, nil

	case generalNameRegisteredID:
		oid, err := parseOIDContent(raw.Bytes)
		if err != nil {
			return GeneralName{}, wrapErr(ErrKindDecode, "decoding registeredID", err)
		}
		return GeneralName{Tag: generalNameRegisteredID, RegisteredID: oid}, nil

	default:
		// x400Address, ediPartyName, or anything else: unsupported.
		return GeneralName{}, ErrNameConstraintError
	}
}

// parseOIDContent decodes the content octets of an OBJECT IDENTIFIER
// (i.e. without its tag/length header), using DER's base-128 arc
// encoding. Needed for registeredID, whose context tag [8] replaces the
// universal OID tag that encoding/asn1 expects.
func parseOIDContent(data []byte) (asn1.ObjectIdentifier, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty OID content")
	}
	arcs := []int{int(data[0] / 40), int(data[0] % 40)}
	val := 0
	for _, b := range data[1:] {
		val = val<<7 | int(b&0x7f)
		if b&0x80 == 0 {
			arcs = append(arcs, val)
			val = 0
		}
	}
	return asn1.ObjectIdentifier(arcs), nil
}

// findSubjectAltName locates the i-th subjectAltName extension occurrence
// (certificates are not expected to carry more than one, but the cursor
// lets callers mirror the original's repeated-scan pattern) and decodes
// it.
func findSubjectAltName(cert *x509.Certificate, cursor *int) ([]GeneralName, error) {
	ext, err := findExtension(cert, oidSubjectAltName, cursor)
	if err != nil {
		return nil, err
	}
	return decodeGeneralNames(ext.Value)
}

// hasExtension reports whether cert carries oid at all, without decoding
// its value; used where only presence (not content) matters, e.g. the
// REQUIRE_RFC3280 keyUsage-presence check and a proxy certificate's
// required absence of subjectAltName/issuerAltName.
func hasExtension(cert *x509.Certificate, oid asn1.ObjectIdentifier) bool {
	i := 0
	_, err := findExtension(cert, oid, &i)
	return err == nil
}

// findExtKeyUsage locates and decodes the extKeyUsage extension, if
// present.
func findExtKeyUsage(cert *x509.Certificate) ([]asn1.ObjectIdentifier, error) {
	i := 0
	ext, err := findExtension(cert, oidExtKeyUsage, &i)
	if err != nil {
		return nil, err
	}
	var ekus []asn1.ObjectIdentifier
	if _, err := asn1.Unmarshal(ext.Value, &ekus); err != nil {
		return nil, wrapErr(ErrKindDecode, "decoding ExtKeyUsage", err)
	}
	return ekus, nil
}

// nameCmp provides a deterministic total order over two distinguished
// names, comparing RDN sequences positionally the way
// _hx509_name_cmp/match_RDN do: attribute-set length first, then each
// (type OID, value) pair in order, using directory-string normalization
// (case-fold plus whitespace-collapse) for the value comparison.
func nameCmp(a, b pkix.Name) int {
	ra, rb := a.ToRDNSequence(), b.ToRDNSequence()
	if d := len(ra) - len(rb); d != 0 {
		return d
	}
	for i := range ra {
		if d := rdnCmp(ra[i], rb[i]); d != 0 {
			return d
		}
	}
	return 0
}

func rdnCmp(a, b pkix.RelativeDistinguishedNameSET) int {
	if d := len(a) - len(b); d != 0 {
		return d
	}
	for i := range a {
		if d := a[i].Type.String(); d != b[i].Type.String() {
			if d < b[i].Type.String() {
				return -1
			}
			return 1
		}
		as, aok := a[i].Value.(string)
		bs, bok := b[i].Value.(string)
		if aok && bok {
			if d := strings.Compare(normalizeDirectoryString(as), normalizeDirectoryString(bs)); d != 0 {
				return d
			}
			continue
		}
		af, bf := fmt.Sprintf("%v", a[i].Value), fmt.Sprintf("%v", b[i].Value)
		if d := strings.Compare(af, bf); d != 0 {
			return d
		}
	}
	return 0
}

// normalizeDirectoryString applies the case-fold, whitespace-collapsing
// normalization RFC 5280 calls for when comparing directory string
// attribute values.
func normalizeDirectoryString(s string) string {
	fields := strings.Fields(s)
	return strings.ToLower(strings.Join(fields, " "))
}

// IsParent returns 0 when issuer is a plausible issuer of subject, a
// non-zero signed value otherwise (usable as a stable store-index
// ordering key). See spec §4.B for the full rule set; this implements
// _hx509_cert_is_parent_cmp.
func IsParent(subject, issuer *x509.Certificate, allowSelfSigned bool) int {
	if d := nameCmp(issuer.Subject, subject.Issuer); d != 0 {
		return d
	}

	aki, akiErr := findAuthorityKeyID(subject)
	if akiErr != nil && Kind(akiErr) != ErrKindExtensionNotFound {
		return 1
	}
	ski, skiFound := subjectKeyID(issuer)

	akiAbsent := akiErr != nil
	skiAbsent := !skiFound

	switch {
	case akiAbsent && skiAbsent:
		return 0
	case akiAbsent:
		return 0
	case skiAbsent:
		if allowSelfSigned && Equal(NewCertificate(subject), NewCertificate(issuer)) {
			return 0
		}
		if aki.KeyIdentifier == nil {
			// fall through to name/serial match below
		} else {
			return -1
		}
	}

	if aki.KeyIdentifier == nil {
		if aki.AuthorityCertIssuer == nil || aki.AuthorityCertSerialNumber == nil {
			return -1
		}
		if d := aki.AuthorityCertSerialNumber.Cmp(issuer.SerialNumber); d != 0 {
			return d
		}
		return nameCmp(issuer.Subject, *aki.AuthorityCertIssuer)
	}

	return bytes.Compare(aki.KeyIdentifier, ski)
}

