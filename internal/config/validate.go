// Copyright 2020 Adam Chalkley
//
// https://github.com/atc0005/check-cert
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package config

import (
	"fmt"
	"strings"
	"time"
)

// validate verifies all Config struct fields have been provided acceptable
// values.
func (c Config) validate(appType AppType) error {

	if c.LeafFile == "" {
		return fmt.Errorf("leaf certificate file not provided")
	}

	switch {
	case appType.Plugin:
		if c.CheckTrustAnchors && c.AnchorsFile == "" {
			return fmt.Errorf("trust anchors file required when check-trust-anchors is enabled")
		}
	case appType.Inspecter:
		// pathinfo only ever inspects; no anchors requirement.
	}

	if c.MaxDepth < 1 {
		return fmt.Errorf("invalid max depth value: %d", c.MaxDepth)
	}

	if c.TimeOverride != "" {
		if _, err := time.Parse(time.RFC3339, c.TimeOverride); err != nil {
			return fmt.Errorf("invalid time override value %q: %w", c.TimeOverride, err)
		}
	}

	requestedLoggingLevel := strings.ToLower(c.LoggingLevel)
	if _, ok := loggingLevels[requestedLoggingLevel]; !ok {
		return fmt.Errorf("invalid logging level %q", c.LoggingLevel)
	}

	return nil
}

// EffectiveTime returns the time certificate validity windows should be
// checked against: the parsed TimeOverride, if one was provided, or the
// current time otherwise.
func (c Config) EffectiveTime() time.Time {
	if c.TimeOverride == "" {
		return time.Now()
	}
	t, err := time.Parse(time.RFC3339, c.TimeOverride)
	if err != nil {
		return time.Now()
	}
	return t
}
