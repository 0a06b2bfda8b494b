// Copyright 2020 Adam Chalkley
//
// https://github.com/atc0005/check-cert
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package hx509

import (
	"crypto/x509/pkix"
	"testing"
)

func TestMatchTree_DNSName(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		subject string
		want    bool
	}{
		{name: "ExactMatch", base: "example.com", subject: "example.com", want: true},
		{name: "Subdomain", base: "example.com", subject: "www.example.com", want: true},
		{name: "LeadingDotBase", base: ".example.com", subject: "www.example.com", want: true},
		{name: "UnrelatedDomain", base: "example.com", subject: "example.net", want: false},
		{name: "SuffixButNotSubdomain", base: "example.com", subject: "notexample.com", want: false},
		{name: "CaseInsensitive", base: "Example.COM", subject: "www.EXAMPLE.com", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := GeneralName{Tag: generalNameDNSName, DNSName: tt.base}
			name := GeneralName{Tag: generalNameDNSName, DNSName: tt.subject}

			got, err := MatchTree(base, name)
			if err != nil {
				t.Fatalf("want: no error; got: %v", err)
			}
			if got != tt.want {
				t.Errorf("want: %v; got: %v", tt.want, got)
			}
		})
	}
}

func TestMatchTree_RFC822Name(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		subject string
		want    bool
	}{
		{name: "ExactAddress", base: "user@example.com", subject: "user@example.com", want: true},
		{name: "DifferentMailbox", base: "user@example.com", subject: "other@example.com", want: false},
		{name: "HostConstraint", base: "example.com", subject: "anyone@example.com", want: true},
		{name: "HostConstraintSubdomain", base: "example.com", subject: "anyone@mail.example.com", want: true},
		{name: "HostConstraintUnrelated", base: "example.com", subject: "anyone@example.net", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := GeneralName{Tag: generalNameRFC822Name, RFC822Name: tt.base}
			name := GeneralName{Tag: generalNameRFC822Name, RFC822Name: tt.subject}

			got, err := MatchTree(base, name)
			if err != nil {
				t.Fatalf("want: no error; got: %v", err)
			}
			if got != tt.want {
				t.Errorf("want: %v; got: %v", tt.want, got)
			}
		})
	}
}

func TestMatchTree_DirectoryName(t *testing.T) {
	base := GeneralName{Tag: generalNameDirectoryName, DirectoryName: pkix.Name{
		Organization: []string{"Example Corp"},
		Country:      []string{"US"},
	}}
	beneath := GeneralName{Tag: generalNameDirectoryName, DirectoryName: pkix.Name{
		Organization:       []string{"Example Corp"},
		Country:            []string{"US"},
		OrganizationalUnit: []string{"Engineering"},
	}}
	unrelated := GeneralName{Tag: generalNameDirectoryName, DirectoryName: pkix.Name{
		Organization: []string{"Other Corp"},
		Country:      []string{"US"},
	}}

	if matched, err := MatchTree(base, beneath); err != nil || !matched {
		t.Errorf("want: beneath to match base; got matched=%v err=%v", matched, err)
	}
	if matched, err := MatchTree(base, unrelated); err != nil || matched {
		t.Errorf("want: unrelated not to match base; got matched=%v err=%v", matched, err)
	}
}

func TestMatchTree_MismatchedTagsNeverMatch(t *testing.T) {
	base := GeneralName{Tag: generalNameDNSName, DNSName: "example.com"}
	name := GeneralName{Tag: generalNameRFC822Name, RFC822Name: "user@example.com"}

	matched, err := MatchTree(base, name)
	if err != nil {
		t.Fatalf("want: no error; got: %v", err)
	}
	if matched {
		t.Error("want: false for mismatched GeneralName variants")
	}
}

func TestMatchTree_UnsupportedVariantErrors(t *testing.T) {
	base := GeneralName{Tag: generalNameURI, URI: "https://example.com"}
	name := GeneralName{Tag: generalNameURI, URI: "https://example.com"}

	_, err := MatchTree(base, name)
	if Kind(err) != ErrKindNameConstraintError {
		t.Fatalf("want: %v; got: %v", ErrKindNameConstraintError, Kind(err))
	}
}

func TestNameConstraintSet_EmptyAcceptsEverything(t *testing.T) {
	set := NewNameConstraintSet()
	names := []GeneralName{
		{Tag: generalNameDNSName, DNSName: "anything.example.com"},
		{Tag: generalNameRFC822Name, RFC822Name: "someone@example.com"},
	}
	if err := set.Check(names); err != nil {
		t.Fatalf("want: no error against an empty constraint set; got: %v", err)
	}
}

func TestNameConstraintSet_ExcludedWins(t *testing.T) {
	set := NewNameConstraintSet()
	if err := set.Add(&NameConstraints{
		Permitted: []GeneralSubtree{{Base: GeneralName{Tag: generalNameDNSName, DNSName: "example.com"}, Maximum: -1}},
		Excluded:  []GeneralSubtree{{Base: GeneralName{Tag: generalNameDNSName, DNSName: "internal.example.com"}, Maximum: -1}},
	}); err != nil {
		t.Fatalf("want: no error adding constraints; got: %v", err)
	}

	// Permitted, and not excluded.
	if err := set.Check([]GeneralName{{Tag: generalNameDNSName, DNSName: "www.example.com"}}); err != nil {
		t.Errorf("want: no error for permitted non-excluded name; got: %v", err)
	}

	// Falls within the permitted tree but also within the excluded one.
	if err := set.Check([]GeneralName{{Tag: generalNameDNSName, DNSName: "host.internal.example.com"}}); Kind(err) != ErrKindVerifyConstraints {
		t.Errorf("want: %v; got: %v", ErrKindVerifyConstraints, Kind(err))
	}
}

func TestNameConstraintSet_RejectsUnsupportedRange(t *testing.T) {
	set := NewNameConstraintSet()
	err := set.Add(&NameConstraints{
		Permitted: []GeneralSubtree{{Base: GeneralName{Tag: generalNameDNSName, DNSName: "example.com"}, Minimum: 1, Maximum: -1}},
	})
	if Kind(err) != ErrKindRange {
		t.Fatalf("want: %v; got: %v", ErrKindRange, Kind(err))
	}
}

func TestNameConstraintSet_AddNilIsNoOp(t *testing.T) {
	set := NewNameConstraintSet()
	if err := set.Add(nil); err != nil {
		t.Fatalf("want: no error adding nil constraints; got: %v", err)
	}
	if err := set.Check([]GeneralName{{Tag: generalNameDNSName, DNSName: "example.com"}}); err != nil {
		t.Fatalf("want: no error; got: %v", err)
	}
}
