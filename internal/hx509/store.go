// Copyright 2020 Adam Chalkley
//
// https://github.com/atc0005/check-cert
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package hx509

import "sync"

// Store is the certificate-collection capability set path building and
// verification operate against: find, add, iterate, and merge. Concrete
// backends (PKCS#11 tokens, PKCS#12 bundles, directory-backed stores,
// Windows/Keychain system stores) are external collaborators per spec §1;
// this package ships only the in-memory "MEMORY:<tag>" backend, which
// VerifyPath's revocation step also uses for its working set.
type Store interface {
	// Find returns every certificate in the store matching q. Each
	// returned Certificate carries an additional reference the caller must
	// Free.
	Find(q *Query) []*Certificate

	// Add inserts cert into the store, taking a reference. Safe to call
	// concurrently with Find/Iterate from other goroutines.
	Add(cert *Certificate)

	// Iterate calls fn once per certificate currently in the store. fn
	// must not call back into the store.
	Iterate(fn func(*Certificate))

	// Merge copies every certificate from other into the store.
	Merge(other Store)

	// Len returns the number of certificates currently held.
	Len() int
}

// memoryStore is the "MEMORY:<tag>" backend: a simple mutex-guarded slice,
// matching hx509_certs_init("MEMORY:...")'s in-process, non-persistent
// semantics.
type memoryStore struct {
	mu    sync.RWMutex
	tag   string
	certs []*Certificate
}

// NewMemoryStore returns a new empty in-memory store identified by tag
// (purely descriptive: it is stored but not otherwise used; matches the "MEMORY:tag" URI
// convention the original uses for its scratch stores, e.g.
// "MEMORY:revoke-certs").
func NewMemoryStore(tag string) Store {
	return &memoryStore{tag: tag}
}

func (s *memoryStore) Find(q *Query) []*Certificate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Certificate
	for _, c := range s.certs {
		if MatchCert(q, c) {
			out = append(out, c.Ref())
		}
	}
	return out
}

func (s *memoryStore) Add(cert *Certificate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.certs = append(s.certs, cert.Ref())
}

func (s *memoryStore) Iterate(fn func(*Certificate)) {
	s.mu.RLock()
	snapshot := make([]*Certificate, len(s.certs))
	copy(snapshot, s.certs)
	s.mu.RUnlock()

	for _, c := range snapshot {
		fn(c)
	}
}

func (s *memoryStore) Merge(other Store) {
	other.Iterate(func(c *Certificate) {
		s.Add(c)
	})
}

func (s *memoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.certs)
}
