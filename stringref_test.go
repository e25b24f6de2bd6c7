// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package nif

import (
	"strings"
	"testing"

	"github.com/nifgo/nif/internal/stream"
	"github.com/stretchr/testify/require"
)

func TestNiStringRefInlineBeforeVersionCutoff(t *testing.T) {
	w := stream.NewWriter(stream.LittleEndian)
	w.SetVersion(V20_1_0_1, false)
	ref := NiStringRef{Cached: "inline value"}
	require.NoError(t, ref.Write(w))

	var got NiStringRef
	r := stream.NewReader(w.Bytes(), stream.LittleEndian)
	r.SetVersion(V20_1_0_1, false)
	require.NoError(t, got.Read(r))
	require.Equal(t, "inline value", got.Cached)
	require.Equal(t, NPOS, got.Index)
}

func TestNiStringRefIndexAtVersionCutoff(t *testing.T) {
	w := stream.NewWriter(stream.LittleEndian)
	w.SetVersion(V20_1_0_3, false)
	ref := NiStringRef{Index: 5}
	require.NoError(t, ref.Write(w))

	var got NiStringRef
	r := stream.NewReader(w.Bytes(), stream.LittleEndian)
	r.SetVersion(V20_1_0_3, false)
	require.NoError(t, got.Read(r))
	require.Equal(t, uint32(5), got.Index)
}

func TestNiStringRefInlineTruncatesOversizedValue(t *testing.T) {
	huge := strings.Repeat("x", inlineStringCap+100)
	w := stream.NewWriter(stream.LittleEndian)
	w.SetVersion(V20_1_0_1, false)
	ref := NiStringRef{Cached: huge}
	require.NoError(t, ref.Write(w))
	require.NoError(t, w.WriteU32(0xcafef00d)) // sentinel to prove the cursor lands correctly

	var got NiStringRef
	r := stream.NewReader(w.Bytes(), stream.LittleEndian)
	r.SetVersion(V20_1_0_1, false)
	require.NoError(t, got.Read(r))
	require.Len(t, got.Cached, inlineStringCap)

	sentinel, err := r.ReadU32()
	require.NoError(t, err)
	require.Equal(t, uint32(0xcafef00d), sentinel)
}

func TestNiStringRefIndexOverLimitRejected(t *testing.T) {
	ref := NiStringRef{Index: NIFStringIndexLimit + 1}
	w := stream.NewWriter(stream.LittleEndian)
	w.SetVersion(V20_1_0_3, false)
	err := ref.Write(w)
	require.Error(t, err)
}

func TestNiStringRefNPOSIndexAlwaysAllowed(t *testing.T) {
	ref := NiStringRef{Index: NPOS}
	w := stream.NewWriter(stream.LittleEndian)
	w.SetVersion(V20_1_0_3, false)
	require.NoError(t, ref.Write(w))
}
