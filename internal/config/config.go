// Copyright 2020 Adam Chalkley
//
// https://github.com/atc0005/check-cert
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Updated via Makefile builds. Setting placeholder value here so that
// something resembling a version string will be provided for non-Makefile
// builds.
var version string = "x.y.z"

// ErrVersionRequested indicates that the user requested application version
// information.
var ErrVersionRequested = errors.New("version information requested")

// AppType represents the type of application that is being
// configured/initialized. Not all application types will use the same
// features and as a result will not accept the same flags.
type AppType struct {

	// Plugin represents an application used as a Nagios plugin (pathverify).
	Plugin bool

	// Inspecter represents an application used for one-off certificate
	// inspection (pathinfo).
	Inspecter bool
}

// Config represents the application configuration as specified via
// command-line flags.
type Config struct {

	// LeafFile is the path to a PEM file containing the end-entity
	// certificate to validate.
	LeafFile string

	// PoolFile is the path to a PEM file containing zero or more
	// intermediate certificates available for path building.
	PoolFile string

	// AnchorsFile is the path to a PEM file containing trusted root
	// certificates.
	AnchorsFile string

	// MaxDepth is the maximum number of certificates permitted in a built
	// path, leaf inclusive.
	MaxDepth int

	// AllowProxy controls whether RFC 3820 proxy certificates are permitted
	// at the head of the validated chain.
	AllowProxy bool

	// StrictRFC3280 controls whether a CA certificate lacking a keyUsage
	// extension is rejected rather than tolerated.
	StrictRFC3280 bool

	// MissingRevokeOK controls whether a revocation verifier's "unknown"
	// answer is treated as a pass.
	MissingRevokeOK bool

	// CheckTrustAnchors controls whether the trust anchor terminating the
	// built path must itself be within its validity window.
	CheckTrustAnchors bool

	// TimeOverride is an optional RFC 3339 timestamp used instead of the
	// current time when checking certificate validity windows.
	TimeOverride string

	// LoggingLevel is the supported logging level for this application.
	LoggingLevel string

	// ShowVersion is a flag indicating whether the user opted to display
	// only the version string and then immediately exit the application.
	ShowVersion bool

	// Log is an embedded zerolog Logger initialized via config.New().
	Log zerolog.Logger
}

// Usage is a custom override for the default Help text provided by the flag
// package. Here we prepend some additional metadata to the existing output.
var Usage = func() {
	fmt.Fprintln(flag.CommandLine.Output(), "\n"+Version()+"\n")
	fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
	flag.PrintDefaults()
}

// Version emits application name, version and repo location.
func Version() string {
	return fmt.Sprintf("%s %s (%s)", myAppName, version, myAppURL)
}

// Branding accepts a message and returns a function that concatenates that
// message with version information. This function is intended to be called
// as a final step before application exit after any other output has
// already been emitted.
func Branding(msg string) func() string {
	return func() string {
		return strings.Join([]string{msg, Version()}, "")
	}
}

// New is a factory function that produces a new Config object based on
// user-provided flag values. It is responsible for validating those values
// and initializing the logging settings used by this application.
func New(appType AppType) (*Config, error) {
	var config Config

	config.handleFlagsConfig(appType)

	if config.ShowVersion {
		return nil, ErrVersionRequested
	}

	if err := config.validate(appType); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := config.setupLogging(appType); err != nil {
		return nil, fmt.Errorf("failed to set logging configuration: %w", err)
	}

	return &config, nil
}
