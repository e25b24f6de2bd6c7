// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package niferr

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestSentinelClassification(t *testing.T) {
	require.True(t, IsTruncated(Truncatedf("need %d bytes", 4)))
	require.False(t, IsTruncated(IOErrorf("disk on fire")))

	require.True(t, IsIOError(IOErrorf("short write")))
	require.True(t, IsLengthError(LengthErrorf("string too long")))
	require.True(t, IsInvariantViolated(InvariantViolatedf("dangling ref")))

	wrapped := errors.Wrapf(Truncatedf("need %d bytes", 8), "reading header")
	require.True(t, IsTruncated(wrapped), "errors.Is sees through Wrapf")
}

func TestUntrustedRedaction(t *testing.T) {
	r := Untrusted("attacker-controlled\x00payload")
	require.Contains(t, r.StripMarkers(), "attacker-controlled")
}
