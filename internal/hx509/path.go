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
	"time"

	"github.com/rs/zerolog/log"
)

// PathFlags controls CalculatePath's termination behavior.
type PathFlags int

const (
	// NoAnchor allows CalculatePath to return a path that does not
	// terminate in a trust anchor, e.g. for inspecting a chain a caller
	// will verify against anchors separately. Without this flag,
	// CalculatePath requires the final certificate to be found among
	// anchors.
	NoAnchor PathFlags = 1 << iota
)

// Path is an ordered certificate chain, leaf first, as built by
// CalculatePath. Every element holds a reference that the caller must Free
// (FreePath does this for the whole slice).
type Path []*Certificate

// FreePath releases every reference held by path, matching
// _hx509_path_free.
func FreePath(path Path) {
	for _, c := range path {
		c.Free()
	}
}

// CalculatePath builds a certificate chain starting at leaf, walking
// parent links through pool and, if the chain is not completed from pool
// alone, through anchors. It implements _hx509_calculate_path: at each
// step it first searches for a time-valid parent, falling back to a
// time-invalid one if none is valid (mirroring the original's two-pass
// find_parent so an expired intermediate doesn't spuriously abort path
// construction before VerifyPath gets a chance to report the real
// problem). maxDepth bounds the number of certificates considered,
// independent of any VerifyContext max-depth check performed later.
func CalculatePath(leaf *Certificate, pool, anchors Store, atTime time.Time, maxDepth int, flags PathFlags) (Path, error) {
	path := Path{leaf.Ref()}
	current := leaf

	for {
		if len(path) > maxDepth {
			FreePath(path)
			return nil, ErrPathTooLong
		}

		if certificateIsAnchor(current, anchors) {
			log.Debug().Int("depth", len(path)).Msg("hx509: path terminated at trust anchor")
			return path, nil
		}

		if isSelfSigned(current.Raw()) {
			if flags&NoAnchor != 0 {
				return path, nil
			}
			FreePath(path)
			return nil, ErrIssuerNotFound
		}

		parent, err := findParent(current, pool, atTime, path)
		if err != nil {
			parent, err = findParent(current, anchors, atTime, path)
		}
		if err != nil {
			if flags&NoAnchor != 0 {
				log.Debug().Err(err).Msg("hx509: no further parent, returning partial path under NoAnchor")
				return path, nil
			}
			FreePath(path)
			return nil, err
		}

		if pathContainsEqual(path, parent) {
			parent.Free()
			FreePath(path)
			return nil, ErrCertificateMalformed
		}

		path = append(path, parent)
		current = parent
	}
}

// findParent looks up a plausible issuer of cert in pool, preferring a
// time-valid candidate (at atTime) over an expired one, and preferring a
// subjectKeyIdentifier-based match when cert is subjectless. Implements
// find_parent's two-pass (valid-then-any) search. path carries the chain
// built so far; the query excludes every certificate already in it, per
// spec §4.D's "the query carries NO_MATCH_PATH against the current path".
func findParent(cert *Certificate, pool Store, atTime time.Time, path Path) (*Certificate, error) {
	if pool == nil {
		return nil, ErrIssuerNotFound
	}
	raw := cert.Raw()

	q := NewQuery()
	if cert.subjectNull() {
		aki, err := findAuthorityKeyID(raw)
		if err != nil || aki.KeyIdentifier == nil {
			return nil, ErrCertificateMalformed
		}
		q.MatchOption(func(c *Certificate) bool {
			ski, ok := subjectKeyID(c.Raw())
			return ok && bytes.Equal(ski, aki.KeyIdentifier)
		})
	} else {
		q.MatchOption(func(c *Certificate) bool {
			return nameCmp(c.Raw().Subject, raw.Issuer) == 0
		})
	}
	q.MatchExcludePath(path)

	candidates := pool.Find(q)
	if len(candidates) == 0 {
		return nil, ErrIssuerNotFound
	}

	var validMatch, anyMatch *Certificate
	for _, cand := range candidates {
		if IsParent(raw, cand.Raw(), false) != 0 {
			cand.Free()
			continue
		}
		if anyMatch == nil {
			anyMatch = cand.Ref()
		}
		if validMatch == nil && !atTime.Before(cand.Raw().NotBefore) && !atTime.After(cand.Raw().NotAfter) {
			validMatch = cand.Ref()
		}
		cand.Free()
	}

	switch {
	case validMatch != nil:
		if anyMatch != nil {
			anyMatch.Free()
		}
		return validMatch, nil
	case anyMatch != nil:
		return anyMatch, nil
	default:
		return nil, ErrIssuerNotFound
	}
}

// certificateIsAnchor reports whether cert is present (by Cmp equality)
// among anchors, implementing certificate_is_anchor. A nil anchors store
// never matches.
func certificateIsAnchor(cert *Certificate, anchors Store) bool {
	if anchors == nil {
		return false
	}
	found := false
	anchors.Iterate(func(c *Certificate) {
		if found {
			return
		}
		if Equal(cert, c) {
			found = true
		}
	})
	return found
}

// isSelfSigned reports whether cert's issuer equals its own subject and
// (when both are present) its authorityKeyIdentifier equals its own
// subjectKeyIdentifier, a cheap pre-check used to stop path building before
// an expensive anchor-store miss is reported.
func isSelfSigned(cert *x509.Certificate) bool {
	if nameCmp(cert.Subject, cert.Issuer) != 0 {
		return false
	}
	aki, err := findAuthorityKeyID(cert)
	ski, skiOK := subjectKeyID(cert)
	if err == nil && aki.KeyIdentifier != nil && skiOK {
		return bytes.Equal(aki.KeyIdentifier, ski)
	}
	return true
}

func pathContainsEqual(path Path, cert *Certificate) bool {
	for _, c := range path {
		if Equal(c, cert) {
			return true
		}
	}
	return false
}
