/*

This repo contains tools that build and verify X.509 certificate paths from
certificate files.

PROJECT HOME

See our GitHub repo (https://github.com/atc0005/hx509path) for the latest
code, to file an issue or submit improvements for review and potential
inclusion into the project.

PURPOSE

Build a certificate path from a leaf certificate through a pool of
intermediates to a trust anchor, and verify it.

FEATURES

• pathverify: Nagios plugin that builds and verifies the path for a leaf
certificate file and reports OK, CRITICAL or UNKNOWN

• pathinfo: CLI tool that builds the path for a leaf certificate file and
prints it, followed by each certificate in an OpenSSL-inspired text format

USAGE - pathverify Nagios plugin

    hx509path x.y.z (https://github.com/atc0005/hx509path)

    Usage of pathverify:
    -allow-proxy
            Whether RFC 3820 proxy certificates are permitted at the head of the validated chain.
    -anchors string
            Path to a PEM file containing trusted root certificates.
    -check-trust-anchors
            Whether the trust anchor terminating the built path must itself be within its validity window. (default true)
    -leaf string
            Path to a PEM file containing the end-entity (leaf) certificate to validate.
    -ll string
            Log message priority filter. Log messages with a lower level are ignored. (default "info")
    -log-level string
            Log message priority filter. Log messages with a lower level are ignored. (default "info")
    -max-depth int
            Maximum number of certificates permitted in a built path, leaf inclusive. (default 30)
    -missing-revoke-ok
            Whether a revocation verifier's "unknown" answer is treated as a pass rather than a failure. (default true)
    -pool string
            Path to a PEM file containing zero or more intermediate certificates available for path building.
    -strict-rfc3280
            Whether to reject CA certificates that lack a key usage extension (strict RFC 3280).
    -time string
            RFC 3339 timestamp to use instead of the current time when checking certificate validity windows.
    -v    Whether to display application version and then immediately exit application.
    -version
            Whether to display application version and then immediately exit application.

USAGE - pathinfo CLI tool

pathinfo accepts the same flags as pathverify except -check-trust-anchors
and -missing-revoke-ok.

*/
package main
