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
	"testing"
)

func TestNameCmp(t *testing.T) {
	a := pkix.Name{Organization: []string{"Example Corp"}, CommonName: "root"}
	b := pkix.Name{Organization: []string{"example corp"}, CommonName: "ROOT"}
	c := pkix.Name{Organization: []string{"Other Corp"}, CommonName: "root"}

	if d := nameCmp(a, b); d != 0 {
		t.Errorf("want: case/whitespace-insensitive equality; got: %d", d)
	}
	if d := nameCmp(a, c); d == 0 {
		t.Error("want: differing organization to compare unequal")
	}
}

func TestNormalizeDirectoryString(t *testing.T) {
	tests := []struct{ a, b string }{
		{"Example  Corp", "example corp"},
		{"  Leading", "leading"},
		{"Trailing  ", "trailing"},
	}
	for _, tt := range tests {
		if got := normalizeDirectoryString(tt.a); got != normalizeDirectoryString(tt.b) {
			t.Errorf("normalizeDirectoryString(%q)=%q, normalizeDirectoryString(%q)=%q: want equal", tt.a, got, tt.b, normalizeDirectoryString(tt.b))
		}
	}
}

func TestIsParent_MatchingNameAndKeyIdentifiers(t *testing.T) {
	subject := &x509.Certificate{
		Version: 3,
		Issuer:  pkix.Name{CommonName: "root"},
		Extensions: []pkix.Extension{
			mustMarshalAKI(t, []byte{0x01, 0x02, 0x03}),
		},
	}
	issuer := &x509.Certificate{
		Subject:      pkix.Name{CommonName: "root"},
		SubjectKeyId: []byte{0x01, 0x02, 0x03},
	}

	if got := IsParent(subject, issuer, false); got != 0 {
		t.Errorf("want: 0 (issuer plausible); got: %d", got)
	}
}

func TestIsParent_MismatchedKeyIdentifiersRejected(t *testing.T) {
	subject := &x509.Certificate{
		Version: 3,
		Issuer:  pkix.Name{CommonName: "root"},
		Extensions: []pkix.Extension{
			mustMarshalAKI(t, []byte{0xaa, 0xbb}),
		},
	}
	issuer := &x509.Certificate{
		Subject:      pkix.Name{CommonName: "root"},
		SubjectKeyId: []byte{0xcc, 0xdd},
	}

	if got := IsParent(subject, issuer, false); got == 0 {
		t.Error("want: non-zero for mismatched authorityKeyIdentifier/subjectKeyIdentifier")
	}
}

func TestIsParent_NameMismatchRejected(t *testing.T) {
	subject := &x509.Certificate{Issuer: pkix.Name{CommonName: "root"}}
	issuer := &x509.Certificate{Subject: pkix.Name{CommonName: "someone-else"}}

	if got := IsParent(subject, issuer, false); got == 0 {
		t.Error("want: non-zero when issuer subject does not match subject's issuer name")
	}
}

func TestIsParent_NoKeyIdentifiersFallsBackToNameMatch(t *testing.T) {
	subject := &x509.Certificate{Issuer: pkix.Name{CommonName: "root"}}
	issuer := &x509.Certificate{Subject: pkix.Name{CommonName: "root"}}

	if got := IsParent(subject, issuer, false); got != 0 {
		t.Errorf("want: 0 when neither certificate carries a key identifier and names match; got: %d", got)
	}
}

// mustMarshalAKI builds a minimal authorityKeyIdentifier extension carrying
// only keyIdentifier, for tests that need to control IsParent's key
// identifier comparison without a full signed certificate.
func mustMarshalAKI(t *testing.T, keyID []byte) pkix.Extension {
	t.Helper()
	raw := rawAuthorityKeyIdentifier{KeyIdentifier: keyID}
	val, err := asn1.Marshal(raw)
	if err != nil {
		t.Fatalf("marshaling test AuthorityKeyIdentifier: %v", err)
	}
	return pkix.Extension{Id: oidAuthorityKeyIdentifier, Value: val}
}
