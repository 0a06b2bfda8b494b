// Copyright 2020 Adam Chalkley
//
// https://github.com/atc0005/check-cert
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package hx509

import "time"

// defaultMaxDepth bounds how many certificates VerifyPath will walk before
// giving up, matching hx509_verify_init_ctx's built-in default.
const defaultMaxDepth = 30

// VerifyContext carries the configuration VerifyPath consults: trust
// anchors, an optional revocation verifier, clock override, and the set of
// behavioral flags hx509_verify_init_ctx/hx509_verify_attach_anchors/etc.
// expose. A VerifyContext is not safe for concurrent mutation, but
// VerifyPath itself only reads it and is safe to call concurrently from
// multiple goroutines against the same, no-longer-mutated VerifyContext.
type VerifyContext struct {
	anchors Store
	revoke  RevocationVerifier
	sig     SignatureVerifier

	maxDepth int

	now       time.Time
	haveNow   bool

	allowProxyCertificate bool
	strictRFC3280         bool
	allowMissingRevoke    bool
	checkTrustAnchors     bool
}

// NewVerifyContext returns a VerifyContext with hx509's defaults: max depth
// 30, no anchors attached, the default crypto/x509-backed signature
// verifier, proxy certificates disallowed, and RFC 3280 strictness off.
func NewVerifyContext() *VerifyContext {
	return &VerifyContext{
		maxDepth: defaultMaxDepth,
		sig:      defaultSignatureVerifier{},
	}
}

// SetAnchors attaches the trust anchor store, matching
// hx509_verify_attach_anchors.
func (ctx *VerifyContext) SetAnchors(anchors Store) {
	ctx.anchors = anchors
}

// SetRevocationVerifier attaches a revocation verifier, matching
// hx509_verify_attach_revoke. A nil verifier (the default) means
// revocation is never checked.
func (ctx *VerifyContext) SetRevocationVerifier(rv RevocationVerifier) {
	ctx.revoke = rv
}

// SetSignatureVerifier overrides the default crypto/x509-backed signature
// verifier.
func (ctx *VerifyContext) SetSignatureVerifier(sv SignatureVerifier) {
	ctx.sig = sv
}

// SetMaxDepth overrides the default maximum chain depth (30), matching
// hx509_verify_set_max_depth.
func (ctx *VerifyContext) SetMaxDepth(n int) {
	ctx.maxDepth = n
}

// SetTime overrides the clock VerifyPath validates certificate validity
// windows against, matching hx509_verify_set_time. Without a call to
// SetTime, VerifyPath uses time.Now().
func (ctx *VerifyContext) SetTime(t time.Time) {
	ctx.now = t
	ctx.haveNow = true
}

// clock returns the effective verification time.
func (ctx *VerifyContext) clock() time.Time {
	if ctx.haveNow {
		return ctx.now
	}
	return time.Now()
}

// SetProxyCertificateOK allows (true) or forbids (false, the default)
// RFC 3820 proxy certificates at the head of a verified chain, matching
// hx509_verify_set_proxy_certificate.
func (ctx *VerifyContext) SetProxyCertificateOK(ok bool) {
	ctx.allowProxyCertificate = ok
}

// SetStrictRFC3280 toggles strict RFC 3280 key usage enforcement: when set,
// a CA-position certificate without a keyUsage extension is rejected,
// matching hx509_verify_set_strict_rfc3280_verification.
func (ctx *VerifyContext) SetStrictRFC3280(strict bool) {
	ctx.strictRFC3280 = strict
}

// SetMissingRevokeOK downgrades a revocation verifier's "unknown" answer to
// a pass rather than a failure, matching hx509_context_set_missing_revoke.
func (ctx *VerifyContext) SetMissingRevokeOK(ok bool) {
	ctx.allowMissingRevoke = ok
}

// SetCheckTrustAnchors toggles the CHECK_TRUST_ANCHORS flag: whether the
// trust anchor terminating a built path must itself satisfy the validity
// window check. Without it (the default) an anchor's own notBefore/notAfter
// is not consulted, matching hx509's rationale that an operator-installed
// root's validity window is not itself a trust decision.
func (ctx *VerifyContext) SetCheckTrustAnchors(ok bool) {
	ctx.checkTrustAnchors = ok
}
