// Copyright 2020 Adam Chalkley
//
// https://github.com/atc0005/check-cert
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package hx509

import (
	"crypto/x509/pkix"
	"strings"
)

// NameConstraintSet accumulates permitted/excluded subtrees collected while
// walking a chain from leaf toward anchor, implementing
// init_name_constraints/add_name_constraints/free_name_constraints.
type NameConstraintSet struct {
	permitted []GeneralSubtree
	excluded  []GeneralSubtree
}

// NewNameConstraintSet returns an empty accumulator.
func NewNameConstraintSet() *NameConstraintSet {
	return &NameConstraintSet{}
}

// Add folds nc (a single certificate's nameConstraints extension, if any)
// into the accumulator. GeneralSubtrees with a non-zero minimum or any
// maximum set are rejected with ErrRange, matching check_name_constraints'
// refusal to support the rarely-used distance fields.
func (s *NameConstraintSet) Add(nc *NameConstraints) error {
	if nc == nil {
		return nil
	}
	for _, st := range nc.Permitted {
		if st.Minimum != 0 || st.Maximum != -1 {
			return ErrRange
		}
	}
	for _, st := range nc.Excluded {
		if st.Minimum != 0 || st.Maximum != -1 {
			return ErrRange
		}
	}
	s.permitted = append(s.permitted, nc.Permitted...)
	s.excluded = append(s.excluded, nc.Excluded...)
	return nil
}

// Check evaluates every GeneralName in subject's subjectAltName (plus its
// directoryName, if non-empty) against the accumulated constraints,
// implementing check_name_constraints' top-level loop: every name must
// match at least one permitted subtree (when any are set) of the same
// variant, and no name may match any excluded subtree.
func (s *NameConstraintSet) Check(subjectNames []GeneralName) error {
	for _, name := range subjectNames {
		if err := s.checkOne(name); err != nil {
			return err
		}
	}
	return nil
}

func (s *NameConstraintSet) checkOne(name GeneralName) error {
	for _, ex := range s.excluded {
		if ex.Base.Tag != name.Tag {
			continue
		}
		matched, err := MatchTree(ex.Base, name)
		if err != nil {
			return err
		}
		if matched {
			return ErrVerifyConstraints
		}
	}

	haveApplicable := false
	for _, pm := range s.permitted {
		if pm.Base.Tag != name.Tag {
			continue
		}
		haveApplicable = true
		matched, err := MatchTree(pm.Base, name)
		if err != nil {
			return err
		}
		if matched {
			return nil
		}
	}
	if haveApplicable {
		return ErrVerifyConstraints
	}
	return nil
}

// MatchTree reports whether name falls within the subtree rooted at base,
// implementing match_tree/match_general_name/match_alt_name. Names of a
// different variant than base never match. Only the otherName, rfc822Name,
// dNSName and directoryName variants are supported; any other tag
// (URI, iPAddress, registeredID included) returns ErrNameConstraintError,
// matching match_general_name's explicit rejection of those variants.
func MatchTree(base, name GeneralName) (bool, error) {
	if base.Tag != name.Tag {
		return false, nil
	}

	switch base.Tag {
	case generalNameRFC822Name:
		return matchRFC822(base.RFC822Name, name.RFC822Name), nil

	case generalNameDNSName:
		return matchDNSName(base.DNSName, name.DNSName), nil

	case generalNameDirectoryName:
		return matchDirectoryName(base.DirectoryName, name.DirectoryName), nil

	case generalNameOtherName:
		if !base.OtherNameTypeID.Equal(name.OtherNameTypeID) {
			return false, nil
		}
		return string(base.OtherNameValue) == string(name.OtherNameValue), nil

	default:
		// URI, iPAddress, registeredID: the original explicitly rejects
		// these with an error rather than silently accepting or rejecting
		// the name.
		return false, ErrNameConstraintError
	}
}

// matchRFC822 implements rfc822Name subtree matching: an exact
// (case-insensitive) address match when base contains '@', or otherwise
// (base is a host or domain with no '@') a matching host/subdomain suffix
// of name's domain part, per RFC 5280 §4.2.1.10.
func matchRFC822(base, name string) bool {
	base = strings.ToLower(base)
	name = strings.ToLower(name)

	if strings.Contains(base, "@") {
		return base == name
	}

	// base is a host or subdomain constraint ("example.com" or
	// ".example.com"); it must match name's domain part or a suffix of
	// it.
	at := strings.LastIndex(name, "@")
	if at < 0 {
		return false
	}
	domain := name[at+1:]
	base = strings.TrimPrefix(base, ".")
	return domain == base || strings.HasSuffix(domain, "."+base)
}

// matchDNSName implements dNSName subtree matching: name must equal base
// or be a subdomain of it.
func matchDNSName(base, name string) bool {
	base = strings.ToLower(strings.TrimPrefix(base, "."))
	name = strings.ToLower(name)
	return name == base || strings.HasSuffix(name, "."+base)
}

// matchDirectoryName implements directoryName subtree matching:
// name must equal base, or have base as a prefix of its RDN sequence
// (i.e. name is "beneath" base in the DIT), per match_X501Name.
func matchDirectoryName(base, name pkix.Name) bool {
	baseRDN := base.ToRDNSequence()
	nameRDN := name.ToRDNSequence()
	if len(nameRDN) < len(baseRDN) {
		return false
	}
	for i := range baseRDN {
		if rdnCmp(baseRDN[i], nameRDN[i]) != 0 {
			return false
		}
	}
	return true
}
