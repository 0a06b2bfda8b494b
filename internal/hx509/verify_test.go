// Copyright 2020 Adam Chalkley
//
// https://github.com/atc0005/check-cert
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package hx509

import (
	"crypto/x509"
	"testing"
	"time"
)

func TestVerifyPath_Success(t *testing.T) {
	root, rootKey := newCert(t, "root", nil, nil, withCA(-1, false), withKeyUsage(x509.KeyUsageCertSign|x509.KeyUsageCRLSign))
	intermediateRaw, intermediateKey := newCert(t, "intermediate", root, rootKey, withCA(-1, false), withKeyUsage(x509.KeyUsageCertSign|x509.KeyUsageCRLSign))
	leafRaw, _ := newCert(t, "leaf", intermediateRaw, intermediateKey)

	leaf := NewCertificate(leafRaw)
	defer leaf.Free()

	pool := newMemoryStoreWith(intermediateRaw)
	anchors := newMemoryStoreWith(root)

	ctx := NewVerifyContext()
	ctx.SetAnchors(anchors)

	path, err := VerifyPath(ctx, leaf, pool)
	if err != nil {
		t.Fatalf("want: no error; got: %v", err)
	}
	defer FreePath(path)

	if len(path) != 3 {
		t.Fatalf("want: path length 3; got: %d", len(path))
	}
}

func TestVerifyPath_ExpiredLeaf(t *testing.T) {
	root, rootKey := newCert(t, "root", nil, nil, withCA(-1, false), withKeyUsage(x509.KeyUsageCertSign|x509.KeyUsageCRLSign))

	past := time.Now().Add(-48 * time.Hour)
	leafRaw, _ := newCert(t, "leaf", root, rootKey, withValidity(past.Add(-time.Hour), past))

	leaf := NewCertificate(leafRaw)
	defer leaf.Free()

	anchors := newMemoryStoreWith(root)

	ctx := NewVerifyContext()
	ctx.SetAnchors(anchors)

	_, err := VerifyPath(ctx, leaf, nil)
	if Kind(err) != ErrKindCertUsedAfterTime {
		t.Fatalf("want: %v; got: %v", ErrKindCertUsedAfterTime, Kind(err))
	}
}

func TestVerifyPath_NotYetValidLeaf(t *testing.T) {
	root, rootKey := newCert(t, "root", nil, nil, withCA(-1, false), withKeyUsage(x509.KeyUsageCertSign|x509.KeyUsageCRLSign))

	future := time.Now().Add(48 * time.Hour)
	leafRaw, _ := newCert(t, "leaf", root, rootKey, withValidity(future, future.Add(time.Hour)))

	leaf := NewCertificate(leafRaw)
	defer leaf.Free()

	anchors := newMemoryStoreWith(root)

	ctx := NewVerifyContext()
	ctx.SetAnchors(anchors)

	_, err := VerifyPath(ctx, leaf, nil)
	if Kind(err) != ErrKindCertUsedBeforeTime {
		t.Fatalf("want: %v; got: %v", ErrKindCertUsedBeforeTime, Kind(err))
	}
}

func TestVerifyPath_MissingIssuer(t *testing.T) {
	other, otherKey := newCert(t, "other-root", nil, nil, withCA(-1, false), withKeyUsage(x509.KeyUsageCertSign|x509.KeyUsageCRLSign))
	leafRaw, _ := newCert(t, "leaf", other, otherKey)

	leaf := NewCertificate(leafRaw)
	defer leaf.Free()

	ctx := NewVerifyContext()

	_, err := VerifyPath(ctx, leaf, nil)
	if Kind(err) != ErrKindIssuerNotFound {
		t.Fatalf("want: %v; got: %v", ErrKindIssuerNotFound, Kind(err))
	}
}

func TestVerifyPath_CheckTrustAnchorsFlag(t *testing.T) {
	past := time.Now().Add(-48 * time.Hour)
	expiredRoot, rootKey := newCert(
		t, "expired-root", nil, nil,
		withCA(-1, false),
		withKeyUsage(x509.KeyUsageCertSign|x509.KeyUsageCRLSign),
		withValidity(past.Add(-time.Hour), past),
	)
	leafRaw, _ := newCert(t, "leaf", expiredRoot, rootKey)

	leaf := NewCertificate(leafRaw)
	defer leaf.Free()

	anchors := newMemoryStoreWith(expiredRoot)

	// Default: the expired anchor's own validity window is not checked.
	ctxDefault := NewVerifyContext()
	ctxDefault.SetAnchors(anchors)
	path, err := VerifyPath(ctxDefault, leaf, nil)
	if err != nil {
		t.Fatalf("want: no error with CHECK_TRUST_ANCHORS off; got: %v", err)
	}
	FreePath(path)

	// With CHECK_TRUST_ANCHORS on, the expired anchor now fails its own
	// validity window check.
	ctxStrict := NewVerifyContext()
	ctxStrict.SetAnchors(anchors)
	ctxStrict.SetCheckTrustAnchors(true)
	_, err = VerifyPath(ctxStrict, leaf, nil)
	if Kind(err) != ErrKindCertUsedAfterTime {
		t.Fatalf("want: %v; got: %v", ErrKindCertUsedAfterTime, Kind(err))
	}
}

func TestVerifyPath_NameConstraintExcluded(t *testing.T) {
	root, rootKey := newCert(
		t, "root", nil, nil,
		withCA(-1, false),
		withKeyUsage(x509.KeyUsageCertSign|x509.KeyUsageCRLSign),
		withNameConstraints(nil, []string{"evil.example"}),
	)
	leafRaw, _ := newCert(t, "leaf", root, rootKey, withDNSNames("host.evil.example"))

	leaf := NewCertificate(leafRaw)
	defer leaf.Free()

	anchors := newMemoryStoreWith(root)
	ctx := NewVerifyContext()
	ctx.SetAnchors(anchors)

	_, err := VerifyPath(ctx, leaf, nil)
	if Kind(err) != ErrKindVerifyConstraints {
		t.Fatalf("want: %v; got: %v", ErrKindVerifyConstraints, Kind(err))
	}
}

func TestVerifyPath_NameConstraintPermittedAllowsMatchingName(t *testing.T) {
	root, rootKey := newCert(
		t, "root", nil, nil,
		withCA(-1, false),
		withKeyUsage(x509.KeyUsageCertSign|x509.KeyUsageCRLSign),
		withNameConstraints([]string{"good.example"}, nil),
	)
	leafRaw, _ := newCert(t, "leaf", root, rootKey, withDNSNames("host.good.example"))

	leaf := NewCertificate(leafRaw)
	defer leaf.Free()

	anchors := newMemoryStoreWith(root)
	ctx := NewVerifyContext()
	ctx.SetAnchors(anchors)

	path, err := VerifyPath(ctx, leaf, nil)
	if err != nil {
		t.Fatalf("want: no error; got: %v", err)
	}
	FreePath(path)
}

func TestVerifyPath_NameConstraintPermittedRejectsNonMatchingName(t *testing.T) {
	root, rootKey := newCert(
		t, "root", nil, nil,
		withCA(-1, false),
		withKeyUsage(x509.KeyUsageCertSign|x509.KeyUsageCRLSign),
		withNameConstraints([]string{"good.example"}, nil),
	)
	leafRaw, _ := newCert(t, "leaf", root, rootKey, withDNSNames("host.other.example"))

	leaf := NewCertificate(leafRaw)
	defer leaf.Free()

	anchors := newMemoryStoreWith(root)
	ctx := NewVerifyContext()
	ctx.SetAnchors(anchors)

	_, err := VerifyPath(ctx, leaf, nil)
	if Kind(err) != ErrKindVerifyConstraints {
		t.Fatalf("want: %v; got: %v", ErrKindVerifyConstraints, Kind(err))
	}
}

func TestVerifyPath_CAExplicitNotCARejected(t *testing.T) {
	// A certificate carrying basicConstraints.cA=false cannot issue
	// further certificates, mirroring checkBasicConstraints.
	root, rootKey := newCert(t, "root", nil, nil, withExplicitNotCA(), withKeyUsage(x509.KeyUsageCertSign|x509.KeyUsageCRLSign))
	leafRaw, _ := newCert(t, "leaf", root, rootKey)

	leaf := NewCertificate(leafRaw)
	defer leaf.Free()

	anchors := newMemoryStoreWith(root)
	ctx := NewVerifyContext()
	ctx.SetAnchors(anchors)

	_, err := VerifyPath(ctx, leaf, nil)
	if Kind(err) != ErrKindParentNotCA {
		t.Fatalf("want: %v; got: %v", ErrKindParentNotCA, Kind(err))
	}
}

// TestVerifyPath_CAMissingBasicConstraintsExtensionRejected covers the
// distinct case of a CA-position v3 certificate that carries no
// basicConstraints extension at all, as opposed to one carrying an explicit
// cA=false. Only PROXY_CERT/EE_CERT tolerate the extension's absence;
// CA_CERT does not.
func TestVerifyPath_CAMissingBasicConstraintsExtensionRejected(t *testing.T) {
	root, rootKey := newCert(t, "root", nil, nil, withKeyUsage(x509.KeyUsageCertSign|x509.KeyUsageCRLSign))
	leafRaw, _ := newCert(t, "leaf", root, rootKey)

	leaf := NewCertificate(leafRaw)
	defer leaf.Free()

	anchors := newMemoryStoreWith(root)
	ctx := NewVerifyContext()
	ctx.SetAnchors(anchors)

	_, err := VerifyPath(ctx, leaf, nil)
	if Kind(err) != ErrKindExtensionNotFound {
		t.Fatalf("want: %v; got: %v", ErrKindExtensionNotFound, Kind(err))
	}
}

func TestVerifyPath_CAPathLenConstraintViolated(t *testing.T) {
	root, rootKey := newCert(t, "root", nil, nil, withCA(-1, false), withKeyUsage(x509.KeyUsageCertSign|x509.KeyUsageCRLSign))
	// A path length constraint of zero on the intermediate forbids any
	// further CA certificate from appearing between it and the end-entity
	// certificate; the sub-intermediate issued beneath it violates that.
	intermediateRaw, intermediateKey := newCert(t, "intermediate", root, rootKey, withCA(0, true), withKeyUsage(x509.KeyUsageCertSign|x509.KeyUsageCRLSign))
	subRaw, subKey := newCert(t, "sub-intermediate", intermediateRaw, intermediateKey, withCA(-1, false), withKeyUsage(x509.KeyUsageCertSign|x509.KeyUsageCRLSign))
	leafRaw, _ := newCert(t, "leaf", subRaw, subKey)

	leaf := NewCertificate(leafRaw)
	defer leaf.Free()

	pool := newMemoryStoreWith(intermediateRaw, subRaw)
	anchors := newMemoryStoreWith(root)
	ctx := NewVerifyContext()
	ctx.SetAnchors(anchors)

	_, err := VerifyPath(ctx, leaf, pool)
	if Kind(err) != ErrKindCAPathTooDeep {
		t.Fatalf("want: %v; got: %v", ErrKindCAPathTooDeep, Kind(err))
	}
}
