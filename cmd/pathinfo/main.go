// Copyright 2020 Adam Chalkley
//
// https://github.com/atc0005/check-cert
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package main

import (
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"github.com/grantae/certinfo"
	"github.com/rs/zerolog"

	"github.com/atc0005/hx509path/internal/config"
	"github.com/atc0005/hx509path/internal/hx509"
	"github.com/atc0005/hx509path/internal/textutils"
)

// Lead-in prefix markers for summary lines, matching the visual vocabulary
// used elsewhere in this project's CLI output.
const (
	prefixOK      string = "✅"
	prefixWarning string = "⚠️"
	prefixFailed  string = "❌"
)

func main() {
	cfg, cfgErr := config.New(config.AppType{Inspecter: true})
	switch {
	case errors.Is(cfgErr, config.ErrVersionRequested):
		fmt.Println(config.Version())

		return

	case cfgErr != nil:
		consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
		logger := zerolog.New(consoleWriter).With().Timestamp().Caller().Logger()

		logger.Err(cfgErr).Msg("Error initializing application")
		os.Exit(config.ExitCodeCatchall)
	}

	log := cfg.Log.With().Logger()

	leafCerts, err := hx509.LoadCertificatesFile(cfg.LeafFile)
	if err != nil {
		log.Error().Err(err).Msg("Error parsing leaf certificate file")
		os.Exit(config.ExitCodeCatchall)
	}
	if len(leafCerts) == 0 {
		log.Error().Msg("No certificates found in leaf file")
		os.Exit(config.ExitCodeCatchall)
	}
	leaf := hx509.NewCertificate(leafCerts[0])
	defer leaf.Free()

	pool := hx509.NewMemoryStore("MEMORY:pool")
	if cfg.PoolFile != "" {
		poolCerts, err := hx509.LoadCertificatesFile(cfg.PoolFile)
		if err != nil {
			log.Error().Err(err).Msg("Error parsing intermediate pool certificate file")
			os.Exit(config.ExitCodeCatchall)
		}
		for _, c := range poolCerts {
			wrapped := hx509.NewCertificate(c)
			pool.Add(wrapped)
			wrapped.Free()
		}
	}

	var anchors hx509.Store
	if cfg.AnchorsFile != "" {
		anchorCerts, err := hx509.LoadCertificatesFile(cfg.AnchorsFile)
		if err != nil {
			log.Error().Err(err).Msg("Error parsing trust anchors file")
			os.Exit(config.ExitCodeCatchall)
		}
		anchors = hx509.NewMemoryStoreFromCertificates("MEMORY:anchors", anchorCerts)
	}

	textutils.PrintHeader("CERTIFICATE PATH | SUMMARY")

	// Path building never requires a trust anchor here (NoAnchor): pathinfo
	// is an inspection tool, not a verifier, so a chain that simply runs out
	// of parents is still worth displaying.
	path, pathErr := hx509.CalculatePath(leaf, pool, anchors, cfg.EffectiveTime(), cfg.MaxDepth, hx509.NoAnchor)

	displayCerts := leafCerts
	if pathErr != nil {
		fmt.Printf("\n%s path building failed: %s\n", prefixFailed, pathErr)
		log.Error().Err(pathErr).Msg("path building failed")
	} else {
		defer hx509.FreePath(path)
		fmt.Printf("\n%s %d certificates in built path\n", prefixOK, len(path))

		displayCerts = make([]*x509.Certificate, 0, len(path))
		for i, c := range path {
			raw := c.Raw()
			displayCerts = append(displayCerts, raw)

			anchored := ""
			if i == len(path)-1 {
				anchored = " (unterminated)"
				if anchors != nil {
					anchors.Iterate(func(a *hx509.Certificate) {
						if hx509.Equal(a, c) {
							anchored = " (trust anchor)"
						}
					})
				}
			}
			fmt.Printf("  %d: %s%s\n", i, raw.Subject.String(), anchored)
		}
	}

	textutils.PrintHeader("CERTIFICATE CHAIN | OpenSSL Text Format")

	for idx, certificate := range displayCerts {
		certText, err := certinfo.CertificateText(certificate)
		if err != nil {
			certText = err.Error()
		}

		fmt.Printf(
			"\nCertificate %d of %d:\n%s\n",
			idx+1,
			len(displayCerts),
			certText,
		)
	}
}
