// Copyright 2020 Adam Chalkley
//
// https://github.com/atc0005/check-cert
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package hx509

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atc0005/hx509path/internal/textutils"
)

// ErrEmptyCertificateFile indicates a certificate file was present but
// contained no bytes.
var ErrEmptyCertificateFile = errors.New("certificate file is empty")

// ErrPEMParseFailureMalformedCertificate indicates PEM decoding failed to
// find any block at all in otherwise PEM-looking input.
var ErrPEMParseFailureMalformedCertificate = errors.New("potentially malformed certificate")

// ErrPEMParseFailureEmptyCertificateBlock indicates a decoded PEM block
// carried no payload bytes.
var ErrPEMParseFailureEmptyCertificateBlock = errors.New("potentially empty certificate block")

const pemBlockTypeCertificateBegin = "-----BEGIN CERTIFICATE-----"

// LoadCertificatesFile reads filename and parses it as a PEM-encoded
// certificate bundle (one or more concatenated "BEGIN CERTIFICATE" blocks)
// or, when no "BEGIN CERTIFICATE" marker is present, as binary ASN.1 DER
// (one or more concatenated certificates), mirroring
// GetCertsFromFile's file-type detection. It is the on-disk front door to
// this package's Store-backed path building: callers wrap the result with
// NewCertificate and feed it into a Store or CalculatePath directly.
func LoadCertificatesFile(filename string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(filepath.Clean(filename))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, ErrEmptyCertificateFile)
	}

	data = textutils.StripBlankLines(data)

	if !bytes.Contains(data, []byte(pemBlockTypeCertificateBegin)) {
		certs, err := x509.ParseCertificates(data)
		if err != nil {
			return nil, fmt.Errorf("%s: decoding as DER certificate file: %w", filename, err)
		}
		return certs, nil
	}

	certs, leftovers, err := ParsePEMCertificates(data)
	if err != nil {
		return nil, fmt.Errorf("%s: decoding as PEM certificate file: %w", filename, err)
	}
	if len(leftovers) > 0 {
		return nil, fmt.Errorf(
			"%s: %d unparsed bytes remaining after decoding PEM certificate file",
			filename, len(leftovers),
		)
	}
	return certs, nil
}

// ParsePEMCertificates decodes pemData as a sequence of PEM
// "BEGIN CERTIFICATE" blocks, returning every certificate parsed plus any
// trailing bytes that failed to decode as a further PEM block.
func ParsePEMCertificates(pemData []byte) ([]*x509.Certificate, []byte, error) {
	pemData = textutils.NormalizeNewlines(pemData)

	var certs []*x509.Certificate

	block, rest := pem.Decode(pemData)
	switch {
	case block == nil:
		return nil, nil, ErrPEMParseFailureMalformedCertificate
	case len(block.Bytes) == 0:
		return nil, nil, ErrPEMParseFailureEmptyCertificateBlock
	}

	for block != nil {
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, nil, err
		}
		certs = append(certs, cert)

		if len(rest) == 0 {
			break
		}
		block, rest = pem.Decode(rest)
	}

	return certs, rest, nil
}

// NewMemoryStoreFromCertificates builds a Store populated with one
// Certificate per entry in certs, each holding a single starting
// reference owned by the store.
func NewMemoryStoreFromCertificates(tag string, certs []*x509.Certificate) Store {
	store := NewMemoryStore(tag)
	for _, c := range certs {
		wrapped := NewCertificate(c)
		store.Add(wrapped)
		wrapped.Free()
	}
	return store
}
