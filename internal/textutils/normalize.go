// Copyright 2020 Adam Chalkley
//
// https://github.com/atc0005/check-cert
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package textutils

import "bytes"

// Confirmed newline/EOL values.
const (
	WindowsEOL = "\r\n"
	MacEOL     = "\r"
	UnixEOL    = "\n"
)

// NormalizeNewlines replaces all Windows and Mac newlines with Unix newlines.
//
// Use this with caution if applying directly to binary files (e.g., it can
// break parsing of DER binary certificate files).
func NormalizeNewlines(input []byte) []byte {
	input = bytes.ReplaceAll(input, []byte(WindowsEOL), []byte(UnixEOL))
	input = bytes.ReplaceAll(input, []byte(MacEOL), []byte(UnixEOL))

	return input
}

// StripBlankLines collapses each pair of consecutive identical line endings
// (Windows, then Mac, then Unix) into one, in a single non-overlapping pass
// per kind. A run of three or more line endings is shortened but not
// always reduced to one, and lines holding only whitespace are kept.
// Newlines are not normalized.
func StripBlankLines(input []byte) []byte {
	input = bytes.ReplaceAll(input, []byte(WindowsEOL+WindowsEOL), []byte(WindowsEOL))
	input = bytes.ReplaceAll(input, []byte(MacEOL+MacEOL), []byte(MacEOL))
	input = bytes.ReplaceAll(input, []byte(UnixEOL+UnixEOL), []byte(UnixEOL))

	return input
}
