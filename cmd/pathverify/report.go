// Copyright 2020 Adam Chalkley
//
// https://github.com/atc0005/check-cert
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package main

import (
	"fmt"
	"strings"

	"github.com/atc0005/go-nagios"
	"github.com/atc0005/hx509path/internal/hx509"
)

// exitCodeForKind maps a path validation failure to a Nagios exit code.
// Structural/configuration-shaped failures (malformed input, missing
// issuer, path too long/deep) are reported as CRITICAL since they represent
// a chain that will never validate without operator intervention; a
// revoked or time-invalid certificate is likewise CRITICAL. Anything this
// package cannot classify confidently falls back to UNKNOWN.
func exitCodeForKind(kind hx509.ErrorKind) int {
	switch kind {
	case hx509.ErrKindCertUsedBeforeTime,
		hx509.ErrKindCertUsedAfterTime,
		hx509.ErrKindRevoked,
		hx509.ErrKindIssuerNotFound,
		hx509.ErrKindPathTooLong,
		hx509.ErrKindCAPathTooDeep,
		hx509.ErrKindParentNotCA,
		hx509.ErrKindParentIsCA,
		hx509.ErrKindKeyUsageCertMissing,
		hx509.ErrKindVerifyConstraints,
		hx509.ErrKindProxyCertInvalid,
		hx509.ErrKindProxyCertNameWrong,
		hx509.ErrKindSignatureVerificationFailed,
		hx509.ErrKindCertificateMalformed:
		return nagios.StateCRITICALExitCode
	default:
		return nagios.StateUNKNOWNExitCode
	}
}

// exitLabelForKind returns the Nagios state label matching exitCodeForKind.
func exitLabelForKind(kind hx509.ErrorKind) string {
	if exitCodeForKind(kind) == nagios.StateCRITICALExitCode {
		return nagios.StateCRITICALLabel
	}
	return nagios.StateUNKNOWNLabel
}

// pathSummary renders one line per certificate in a validated path, leaf
// first, for use as detailed plugin output.
func pathSummary(path hx509.Path) string {
	var b strings.Builder
	for i, c := range path {
		raw := c.Raw()
		fmt.Fprintf(&b, "%d: %s%s", i, raw.Subject.String(), nagios.CheckOutputEOL)
	}
	return b.String()
}
