// Copyright 2020 Adam Chalkley
//
// https://github.com/atc0005/check-cert
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package config

const myAppName string = "hx509path"
const myAppURL string = "https://github.com/atc0005/hx509path"

// ExitCodeCatchall indicates a general or miscellaneous error has occurred.
// See https://tldp.org/LDP/abs/html/exitcodes.html for additional details.
const ExitCodeCatchall int = 1

const (
	defaultLeafFile             string = ""
	defaultPoolFile             string = ""
	defaultAnchorsFile          string = ""
	defaultMaxDepth             int    = 30
	defaultAllowProxy           bool   = false
	defaultStrictRFC3280        bool   = false
	defaultMissingRevokeOK      bool   = true
	defaultCheckTrustAnchors    bool   = true
	defaultLogLevel             string = LogLevelInfo
	defaultDisplayVersionAndExit bool  = false
	defaultTimeOverride         string = ""
)

const (
	versionFlagHelp string = "Whether to display application version and then immediately exit application."

	leafFileFlagHelp string = "Path to a PEM file containing the end-entity (leaf) certificate to validate."

	poolFileFlagHelp string = "Path to a PEM file containing zero or more intermediate certificates available for path building."

	anchorsFileFlagHelp string = "Path to a PEM file containing trusted root certificates."

	maxDepthFlagHelp string = "Maximum number of certificates permitted in a built path, leaf inclusive."

	allowProxyFlagHelp string = "Whether RFC 3820 proxy certificates are permitted at the head of the validated chain."

	strictRFC3280FlagHelp string = "Whether to reject CA certificates that lack a key usage extension (strict RFC 3280)."

	missingRevokeOKFlagHelp string = "Whether a revocation verifier's \"unknown\" answer is treated as a pass rather than a failure."

	checkTrustAnchorsFlagHelp string = "Whether the trust anchor terminating the built path must itself be within its validity window."

	logLevelFlagHelp string = "Log message priority filter. Log messages with a lower level are ignored."

	timeOverrideFlagHelp string = "RFC 3339 timestamp to use instead of the current time when checking certificate validity windows."
)
