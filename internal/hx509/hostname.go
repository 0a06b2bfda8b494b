// Copyright 2020 Adam Chalkley
//
// https://github.com/atc0005/check-cert
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package hx509

import "crypto/x509"

// VerifyHostname is a deliberately permissive stub matching
// hx509_verify_hostname: the original accepts any non-empty address and
// leaves real RFC 6125 service-identity matching to the caller. cert is
// unused; it is accepted so a future, stricter replacement can keep this
// signature without breaking callers (see spec §9 Open Question: do not
// silently change this behavior without caller opt-in).
func VerifyHostname(cert *x509.Certificate, hostname string) bool {
	_ = cert
	return hostname != ""
}
