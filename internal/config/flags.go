// Copyright 2020 Adam Chalkley
//
// https://github.com/atc0005/check-cert
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package config

import "flag"

// handleFlagsConfig defines and parses the command-line flags applicable
// to appType. A smaller set of flags is exposed to the pathinfo CLI
// (Inspecter) than to the pathverify Nagios plugin (Plugin); flags common
// to both are always registered.
func (c *Config) handleFlagsConfig(appType AppType) {

	switch {
	case appType.Plugin:
		flag.BoolVar(&c.CheckTrustAnchors, "check-trust-anchors", defaultCheckTrustAnchors, checkTrustAnchorsFlagHelp)
		flag.BoolVar(&c.MissingRevokeOK, "missing-revoke-ok", defaultMissingRevokeOK, missingRevokeOKFlagHelp)

	case appType.Inspecter:
		// pathinfo has no additional flags of its own beyond the shared set.
	}

	flag.StringVar(&c.LeafFile, "leaf", defaultLeafFile, leafFileFlagHelp)
	flag.StringVar(&c.PoolFile, "pool", defaultPoolFile, poolFileFlagHelp)
	flag.StringVar(&c.AnchorsFile, "anchors", defaultAnchorsFile, anchorsFileFlagHelp)

	flag.IntVar(&c.MaxDepth, "max-depth", defaultMaxDepth, maxDepthFlagHelp)

	flag.BoolVar(&c.AllowProxy, "allow-proxy", defaultAllowProxy, allowProxyFlagHelp)
	flag.BoolVar(&c.StrictRFC3280, "strict-rfc3280", defaultStrictRFC3280, strictRFC3280FlagHelp)

	flag.StringVar(&c.TimeOverride, "time", defaultTimeOverride, timeOverrideFlagHelp)

	flag.StringVar(&c.LoggingLevel, "ll", defaultLogLevel, logLevelFlagHelp)
	flag.StringVar(&c.LoggingLevel, "log-level", defaultLogLevel, logLevelFlagHelp)

	flag.BoolVar(&c.ShowVersion, "v", defaultDisplayVersionAndExit, versionFlagHelp)
	flag.BoolVar(&c.ShowVersion, "version", defaultDisplayVersionAndExit, versionFlagHelp)

	flag.Usage = Usage

	flag.Parse()
}
