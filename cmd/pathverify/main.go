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

	"github.com/rs/zerolog"

	"github.com/atc0005/hx509path/internal/config"
	"github.com/atc0005/hx509path/internal/hx509"
	"github.com/atc0005/go-nagios"
)

func main() {

	plugin := nagios.NewPlugin()

	plugin.SetErrorsLabel("VALIDATION ERRORS")
	plugin.SetDetailedInfoLabel("PATH VALIDATION REPORT")

	// defer this from the start so it is the last deferred function to run
	defer plugin.ReturnCheckResults()

	cfg, cfgErr := config.New(config.AppType{Plugin: true})
	switch {
	case errors.Is(cfgErr, config.ErrVersionRequested):
		fmt.Println(config.Version())

		return

	case cfgErr != nil:
		consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
		logger := zerolog.New(consoleWriter).With().Timestamp().Caller().Logger()

		logger.Err(cfgErr).Msg("Error initializing application")

		plugin.ServiceOutput = fmt.Sprintf(
			"%s: Error initializing application",
			nagios.StateUNKNOWNLabel,
		)
		plugin.AddError(cfgErr)
		plugin.ExitStatusCode = nagios.StateUNKNOWNExitCode

		return
	}

	plugin.BrandingCallback = config.Branding("Notification generated by ")

	log := cfg.Log.With().
		Str("leaf_file", cfg.LeafFile).
		Str("pool_file", cfg.PoolFile).
		Str("anchors_file", cfg.AnchorsFile).
		Logger()

	leafCerts, err := hx509.LoadCertificatesFile(cfg.LeafFile)
	if err != nil {
		log.Error().Err(err).Msg("Error parsing leaf certificate file")

		plugin.AddError(err)
		plugin.ServiceOutput = fmt.Sprintf(
			"%s: Error parsing leaf certificate file %q",
			nagios.StateUNKNOWNLabel,
			cfg.LeafFile,
		)
		plugin.ExitStatusCode = nagios.StateUNKNOWNExitCode

		return
	}
	if len(leafCerts) == 0 {
		noCertsErr := fmt.Errorf("no certificates found in %s", cfg.LeafFile)
		plugin.AddError(noCertsErr)
		plugin.ServiceOutput = fmt.Sprintf(
			"%s: 0 certificates found in leaf file %q",
			nagios.StateUNKNOWNLabel,
			cfg.LeafFile,
		)
		plugin.ExitStatusCode = nagios.StateUNKNOWNExitCode

		return
	}
	leaf := hx509.NewCertificate(leafCerts[0])
	defer leaf.Free()

	pool := hx509.NewMemoryStore("MEMORY:pool")
	if cfg.PoolFile != "" {
		poolCerts, err := hx509.LoadCertificatesFile(cfg.PoolFile)
		if err != nil {
			log.Error().Err(err).Msg("Error parsing intermediate pool certificate file")

			plugin.AddError(err)
			plugin.ServiceOutput = fmt.Sprintf(
				"%s: Error parsing intermediate pool certificate file %q",
				nagios.StateUNKNOWNLabel,
				cfg.PoolFile,
			)
			plugin.ExitStatusCode = nagios.StateUNKNOWNExitCode

			return
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

			plugin.AddError(err)
			plugin.ServiceOutput = fmt.Sprintf(
				"%s: Error parsing trust anchors file %q",
				nagios.StateUNKNOWNLabel,
				cfg.AnchorsFile,
			)
			plugin.ExitStatusCode = nagios.StateUNKNOWNExitCode

			return
		}
		anchors = hx509.NewMemoryStoreFromCertificates("MEMORY:anchors", anchorCerts)
	}

	ctx := hx509.NewVerifyContext()
	ctx.SetAnchors(anchors)
	ctx.SetMaxDepth(cfg.MaxDepth)
	ctx.SetProxyCertificateOK(cfg.AllowProxy)
	ctx.SetStrictRFC3280(cfg.StrictRFC3280)
	ctx.SetMissingRevokeOK(cfg.MissingRevokeOK)
	ctx.SetCheckTrustAnchors(cfg.CheckTrustAnchors)
	ctx.SetTime(cfg.EffectiveTime())

	path, verr := hx509.VerifyPath(ctx, leaf, pool)
	if verr != nil {
		kind := hx509.Kind(verr)

		log.Error().Err(verr).Str("error_kind", kind.String()).Msg("Path validation failed")

		plugin.AddError(verr)
		plugin.ServiceOutput = fmt.Sprintf(
			"%s: Path validation failed: %s",
			exitLabelForKind(kind),
			kind.String(),
		)
		plugin.LongServiceOutput = verr.Error()
		plugin.ExitStatusCode = exitCodeForKind(kind)

		if payloadErr := addCertChainPayload(nil, plugin); payloadErr != nil {
			log.Error().Err(payloadErr).Msg("failed to attach JSON payload")
		}

		return
	}
	defer hx509.FreePath(path)

	chain := make([]*x509.Certificate, 0, len(path))
	for _, c := range path {
		chain = append(chain, c.Raw())
	}

	plugin.ServiceOutput = fmt.Sprintf(
		"%s: Certificate path validated (%d certificates)",
		nagios.StateOKLabel,
		len(path),
	)
	plugin.LongServiceOutput = pathSummary(path)
	plugin.ExitStatusCode = nagios.StateOKExitCode

	if payloadErr := addCertChainPayload(chain, plugin); payloadErr != nil {
		log.Error().Err(payloadErr).Msg("failed to attach JSON payload")
	}
}
