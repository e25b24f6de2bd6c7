// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package nif

import (
	"testing"

	"github.com/nifgo/nif/internal/stream"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTripPre31Copyright(t *testing.T) {
	h := &Header{
		Version:    Version{file: ToFile(3, 0, 0, 0)},
		Copyright1: "Copyright (c) 2001",
		Copyright2: "NetImmerse",
		Copyright3: "All rights reserved",
		NumBlocks:  0,
	}
	w := stream.NewWriter(stream.LittleEndian)
	require.NoError(t, h.Put(w))

	var got Header
	r := stream.NewReader(w.Bytes(), stream.LittleEndian)
	require.NoError(t, got.Get(r))
	require.True(t, got.Valid)
	require.Equal(t, h.Copyright1, got.Copyright1)
	require.Equal(t, h.Copyright2, got.Copyright2)
	require.Equal(t, h.Copyright3, got.Copyright3)
	require.Equal(t, stream.LittleEndian, got.Endian, "endian byte absent before 20.0.0.3: default is little")
	require.Equal(t, uint32(0), got.Version.User(), "user version absent before 10.0.1.8")
}

func TestHeaderRoundTripMinimalFileVersion(t *testing.T) {
	h := &Header{
		Version:   Version{file: ToFile(4, 0, 0, 2)},
		NumBlocks: 3,
	}
	w := stream.NewWriter(stream.LittleEndian)
	require.NoError(t, h.Put(w))

	var got Header
	r := stream.NewReader(w.Bytes(), stream.LittleEndian)
	require.NoError(t, got.Get(r))
	require.True(t, got.Valid)
	require.Equal(t, h.Version.File(), got.Version.File())
	require.Equal(t, uint32(3), got.NumBlocks)
	require.Nil(t, got.BlockTypes, "block-type table absent before 5.0.0.1")
}

func TestHeaderRoundTripBethesdaModern(t *testing.T) {
	h := &Header{
		Version:          Version{file: ToFile(20, 2, 0, 7)},
		NumBlocks:        2,
		BlockTypes:       []string{"NiNode", "NiTriShape"},
		BlockTypeIndices: []uint16{0, 1},
		BlockSizes:       []uint32{10, 20},
		Strings:          []string{"Root", "Mesh"},
		GroupSizes:       []uint32{2},
		Endian:           stream.LittleEndian,
		Creator:          NiString{Value: "NifGo"},
		ExportInfo1:      NiString{Value: "exported by test"},
		ExportInfo2:      NiString{Value: "second line"},
	}
	h.Version.SetUser(11)
	h.Version.SetStream(34)
	h.recomputeMaxStringLen()
	require.True(t, h.Version.IsBethesda())

	w := stream.NewWriter(stream.LittleEndian)
	require.NoError(t, h.Put(w))
	require.NotZero(t, h.BlockSizePos(), "block-size table is reserved at >= 20.2.0.5")
	// Patch the reserved block-size table, as Graph.Write would after
	// measuring each block's serialized span.
	for i, size := range h.BlockSizes {
		require.NoError(t, w.PatchU32(h.BlockSizePos()+int64(i)*4, size))
	}

	var got Header
	r := stream.NewReader(w.Bytes(), stream.LittleEndian)
	require.NoError(t, got.Get(r))
	require.True(t, got.Valid)
	require.Equal(t, h.Version.File(), got.Version.File())
	require.Equal(t, uint32(11), got.Version.User())
	require.Equal(t, uint32(34), got.Version.Stream())
	require.True(t, got.Version.IsBethesda())
	require.Equal(t, h.Creator.Value, got.Creator.Value)
	require.Equal(t, h.ExportInfo1.Value, got.ExportInfo1.Value)
	require.Equal(t, h.ExportInfo2.Value, got.ExportInfo2.Value)
	require.Equal(t, h.BlockTypes, got.BlockTypes)
	require.Equal(t, h.BlockTypeIndices, got.BlockTypeIndices)
	require.Equal(t, h.BlockSizes, got.BlockSizes)
	require.Equal(t, h.Strings, got.Strings)
	require.Equal(t, h.MaxStringLen, got.MaxStringLen)
	require.Equal(t, h.GroupSizes, got.GroupSizes)
	require.NoError(t, got.checkInvariants())
}

func TestHeaderRoundTripStreamAbove130(t *testing.T) {
	h := &Header{
		Version:     Version{file: ToFile(20, 2, 0, 7)},
		NumBlocks:   0,
		Creator:     NiString{Value: "NifGo"},
		ExportInfo1: NiString{Value: "a"},
		ExportInfo2: NiString{Value: "b"},
	}
	h.Version.SetUser(12)
	h.Version.SetStream(155)
	h.unkInt1 = 0xdeadbeef
	h.haveUnkInt1 = true

	w := stream.NewWriter(stream.LittleEndian)
	require.NoError(t, h.Put(w))

	var got Header
	r := stream.NewReader(w.Bytes(), stream.LittleEndian)
	require.NoError(t, got.Get(r))
	require.True(t, got.Valid)
	require.True(t, got.haveUnkInt1)
	require.Equal(t, uint32(0xdeadbeef), got.unkInt1)
}

func TestHeaderRoundTripStreamExactly130(t *testing.T) {
	h := &Header{
		Version:     Version{file: ToFile(20, 2, 0, 7)},
		NumBlocks:   0,
		Creator:     NiString{Value: "NifGo"},
		ExportInfo1: NiString{Value: "a"},
		ExportInfo2: NiString{Value: "b"},
		ExportInfo3: NiString{Value: "c"},
	}
	h.Version.SetUser(12)
	h.Version.SetStream(130)

	w := stream.NewWriter(stream.LittleEndian)
	require.NoError(t, h.Put(w))

	var got Header
	r := stream.NewReader(w.Bytes(), stream.LittleEndian)
	require.NoError(t, got.Get(r))
	require.True(t, got.Valid)
	require.Equal(t, "c", got.ExportInfo3.Value)
	require.False(t, got.haveUnkInt1)
}

func TestHeaderRoundTripEmbedData(t *testing.T) {
	h := &Header{
		Version:   Version{file: V30_0_0_2},
		NumBlocks: 0,
		EmbedData: []byte{1, 2, 3, 4, 5},
	}
	w := stream.NewWriter(stream.LittleEndian)
	require.NoError(t, h.Put(w))

	var got Header
	r := stream.NewReader(w.Bytes(), stream.LittleEndian)
	require.NoError(t, got.Get(r))
	require.True(t, got.Valid)
	require.Equal(t, h.EmbedData, got.EmbedData)
}

func TestHeaderGetBadSignature(t *testing.T) {
	r := stream.NewReader([]byte("garbage\n"), stream.LittleEndian)
	var got Header
	require.NoError(t, got.Get(r))
	require.False(t, got.Valid)
}

func TestHeaderCheckInvariantsCatchesTypeTableMismatch(t *testing.T) {
	h := &Header{
		NumBlocks:        1,
		BlockTypes:       []string{"NiNode"},
		BlockTypeIndices: []uint16{5},
	}
	err := h.checkInvariants()
	require.Error(t, err)
}

func TestHeaderCheckInvariantsCatchesUnusedType(t *testing.T) {
	h := &Header{
		NumBlocks:        1,
		BlockTypes:       []string{"NiNode", "NiTriShape"},
		BlockTypeIndices: []uint16{0},
	}
	err := h.checkInvariants()
	require.Error(t, err)
}

func TestHeaderCheckInvariantsCatchesStaleMaxStringLen(t *testing.T) {
	h := &Header{
		NumBlocks:        0,
		BlockTypeIndices: []uint16{},
		Strings:          []string{"short", "much longer string"},
		MaxStringLen:     5,
	}
	err := h.checkInvariants()
	require.Error(t, err)
}

func TestHeaderBlockTypeRefCount(t *testing.T) {
	h := &Header{
		BlockTypes:       []string{"NiNode", "NiTriShape"},
		BlockTypeIndices: []uint16{0, 0, 1},
	}
	require.Equal(t, 2, h.BlockTypeRefCount("NiNode"))
	require.Equal(t, 1, h.BlockTypeRefCount("NiTriShape"))
	require.Equal(t, 0, h.BlockTypeRefCount("NiUnknownType"))
}
