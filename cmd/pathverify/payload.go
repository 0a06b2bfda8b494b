// Copyright 2024 Adam Chalkley
//
// https://github.com/atc0005/check-cert
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package main

import (
	"crypto/x509"

	payload "github.com/atc0005/cert-payload"
	"github.com/atc0005/cert-payload/input"
	"github.com/atc0005/go-nagios"
)

// addCertChainPayload appends a JSON-encoded payload describing chain (the
// validated path, or nil on failure) to plugin output, using the latest
// stable cert-payload format.
func addCertChainPayload(chain []*x509.Certificate, plugin *nagios.Plugin) error {
	serviceState := nagios.ExitCodeToStateLabel(plugin.ExitStatusCode)

	inputData := input.Values{
		CertChain:    chain,
		Errors:       plugin.Errors,
		ServiceState: serviceState,
	}

	encoded, err := payload.EncodeLatest(inputData)
	if err != nil {
		return err
	}

	// AddPayloadBytes does not return an error for empty input.
	_, err = plugin.AddPayloadBytes(encoded)
	return err
}
