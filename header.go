// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package nif

import (
	"github.com/nifgo/nif/internal/niferr"
	"github.com/nifgo/nif/internal/stream"
)

// Header parses and serializes the version-dependent preamble described in
// the container format's field-layout table, and owns the block-type
// registry, block-type-index table, block-size table, central string pool,
// group-size table and export metadata that every block in a Graph shares.
// Header never owns the block payloads themselves; see Graph.
type Header struct {
	Version Version

	// Bethesda branch.
	Creator     NiString
	ExportInfo1 NiString
	ExportInfo2 NiString
	ExportInfo3 NiString
	unkInt1     uint32
	haveUnkInt1 bool

	// Non-Bethesda branch, file >= 30.0.0.2.
	EmbedData []byte

	// Pre-3.1 branch.
	Copyright1 string
	Copyright2 string
	Copyright3 string

	Endian stream.Endian

	NumBlocks uint32

	BlockTypes       []string
	BlockTypeIndices []uint16
	BlockSizes       []uint32

	Strings      []string
	MaxStringLen uint32

	GroupSizes []uint32

	// Valid is false when Get couldn't recognize the version-string
	// signature; every other field is then meaningless.
	Valid bool

	// blockSizePos is the stream offset of the reserved block-size table,
	// recorded during Put and patched in once each block's serialized
	// length is known (see Graph.Write).
	blockSizePos int64
}

// recomputeMaxStringLen sets h.MaxStringLen to the longest string currently
// in the pool (0 if the pool is empty), restoring invariant 5.
func (h *Header) recomputeMaxStringLen() {
	var max uint32
	for _, s := range h.Strings {
		if n := uint32(len(s)); n > max {
			max = n
		}
	}
	h.MaxStringLen = max
}

// BlockTypeRefCount reports how many blocks currently use the block type
// named name, or 0 if name isn't in the block-type table.
func (h *Header) BlockTypeRefCount(name string) int {
	idx := -1
	for i, t := range h.BlockTypes {
		if t == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0
	}
	count := 0
	for _, t := range h.BlockTypeIndices {
		if int(t) == idx {
			count++
		}
	}
	return count
}

// Get parses the preamble from s in the canonical field order: version
// string, file/nds/copyright branch, endian byte, user version, numBlocks,
// Bethesda fields or embedded data, block-type table, block-size table,
// string pool, group sizes. On success h.Valid is true. If the version
// string signature is unrecognized, Get sets h.Valid = false and returns
// nil without consuming further bytes meaningfully (per the format's
// BadSignature policy: this is a recognized non-NIF input, not an error).
func (h *Header) Get(s *stream.Stream) error {
	valid, err := h.Version.Get(s)
	if err != nil {
		return err
	}
	if !valid {
		h.Valid = false
		return nil
	}

	fileVer := h.Version.File()
	s.SetVersion(fileVer, false) // IsBethesda needs user version, set below once known; re-set after.

	switch {
	case h.Version.Family() != FamilyNDS && fileVer > V3_1:
		f, err := s.ReadU32()
		if err != nil {
			return err
		}
		if f != fileVer {
			// The NetImmerse string carries only A.B, so for that family the
			// binary field supplies C.D and only A.B are compared.
			if h.Version.Family() != FamilyNetImmerse || f>>16 != fileVer>>16 {
				return niferr.InvariantViolatedf("nif: header file version %#x disagrees with string-encoded %#x", f, fileVer)
			}
			fileVer = f
			h.Version.SetFile(f)
		}
	case h.Version.Family() == FamilyNDS:
		nds, err := s.ReadU32()
		if err != nil {
			return err
		}
		h.Version.SetNDS(nds)
	default:
		for _, dst := range []*string{&h.Copyright1, &h.Copyright2, &h.Copyright3} {
			line, err := s.ReadLine(128)
			if err != nil {
				return err
			}
			*dst = line
		}
	}

	if fileVer >= V20_0_0_3 {
		e, err := s.ReadU8()
		if err != nil {
			return err
		}
		if e == 0 {
			h.Endian = stream.BigEndian
		} else {
			h.Endian = stream.LittleEndian
		}
		s.SetEndian(h.Endian)
	} else {
		h.Endian = stream.LittleEndian
	}

	if fileVer >= V10_0_1_8 {
		u, err := s.ReadU32()
		if err != nil {
			return err
		}
		h.Version.SetUser(u)
	}
	s.SetVersion(fileVer, h.Version.IsBethesda())

	numBlocks, err := s.ReadU32()
	if err != nil {
		return err
	}
	h.NumBlocks = numBlocks

	if h.Version.IsBethesda() {
		st, err := s.ReadU32()
		if err != nil {
			return err
		}
		h.Version.SetStream(st)
		if err := h.Creator.Read(s, 1); err != nil {
			return err
		}
		if st > 130 {
			u1, err := s.ReadU32()
			if err != nil {
				return err
			}
			h.unkInt1 = u1
			h.haveUnkInt1 = true
		}
		if err := h.ExportInfo1.Read(s, 1); err != nil {
			return err
		}
		if err := h.ExportInfo2.Read(s, 1); err != nil {
			return err
		}
		if st == 130 {
			if err := h.ExportInfo3.Read(s, 1); err != nil {
				return err
			}
		}
	} else if fileVer >= V30_0_0_2 {
		n, err := s.ReadU32()
		if err != nil {
			return err
		}
		b, err := s.ReadBytes(int(n))
		if err != nil {
			return err
		}
		h.EmbedData = b
	}

	if fileVer >= V5_0_0_1 {
		numTypes, err := s.ReadU32()
		if err != nil {
			return err
		}
		h.BlockTypes = make([]string, numTypes)
		for i := range h.BlockTypes {
			var ns NiString
			if err := ns.Read(s, 4); err != nil {
				return err
			}
			h.BlockTypes[i] = ns.Value
		}
		h.BlockTypeIndices = make([]uint16, numBlocks)
		for i := range h.BlockTypeIndices {
			v, err := s.ReadU16()
			if err != nil {
				return err
			}
			h.BlockTypeIndices[i] = v
		}
	}

	if fileVer >= V20_2_0_5 {
		h.BlockSizes = make([]uint32, numBlocks)
		for i := range h.BlockSizes {
			v, err := s.ReadU32()
			if err != nil {
				return err
			}
			h.BlockSizes[i] = v
		}
	}

	if fileVer >= V20_1_0_1 {
		numStrings, err := s.ReadU32()
		if err != nil {
			return err
		}
		maxLen, err := s.ReadU32()
		if err != nil {
			return err
		}
		h.MaxStringLen = maxLen
		h.Strings = make([]string, numStrings)
		for i := range h.Strings {
			var ns NiString
			if err := ns.Read(s, 4); err != nil {
				return err
			}
			h.Strings[i] = ns.Value
		}
	}

	if fileVer >= V5_0_0_6 {
		numGroups, err := s.ReadU32()
		if err != nil {
			return err
		}
		h.GroupSizes = make([]uint32, numGroups)
		for i := range h.GroupSizes {
			v, err := s.ReadU32()
			if err != nil {
				return err
			}
			h.GroupSizes[i] = v
		}
	}

	h.Valid = true
	return nil
}

// Put serializes the preamble in the same field order Get reads it in. When
// the active version is >= 20.2.0.5, Put reserves (but does not yet know
// the contents of) the block-size table and records its offset in
// h.blockSizePos; the caller (Graph.Write) must patch it in via
// s.PatchU32 once every block has been serialized.
func (h *Header) Put(s *stream.Stream) error {
	fileVer := h.Version.File()
	s.SetVersion(fileVer, h.Version.IsBethesda())

	if err := h.Version.Put(s); err != nil {
		return err
	}

	switch {
	case h.Version.Family() != FamilyNDS && fileVer > V3_1:
		if err := s.WriteU32(fileVer); err != nil {
			return err
		}
	case h.Version.Family() == FamilyNDS:
		if err := s.WriteU32(h.Version.NDS()); err != nil {
			return err
		}
	default:
		for _, line := range []string{h.Copyright1, h.Copyright2, h.Copyright3} {
			if err := s.WriteLine(line); err != nil {
				return err
			}
		}
	}

	if fileVer >= V20_0_0_3 {
		e := uint8(1)
		if h.Endian == stream.BigEndian {
			e = 0
		}
		if err := s.WriteU8(e); err != nil {
			return err
		}
		s.SetEndian(h.Endian)
	}

	if fileVer >= V10_0_1_8 {
		if err := s.WriteU32(h.Version.User()); err != nil {
			return err
		}
	}

	if err := s.WriteU32(h.NumBlocks); err != nil {
		return err
	}

	if h.Version.IsBethesda() {
		if err := s.WriteU32(h.Version.Stream()); err != nil {
			return err
		}
		if err := h.Creator.Write(s, 1, true); err != nil {
			return err
		}
		if h.Version.Stream() > 130 {
			if err := s.WriteU32(h.unkInt1); err != nil {
				return err
			}
		}
		if err := h.ExportInfo1.Write(s, 1, true); err != nil {
			return err
		}
		if err := h.ExportInfo2.Write(s, 1, true); err != nil {
			return err
		}
		if h.Version.Stream() == 130 {
			if err := h.ExportInfo3.Write(s, 1, true); err != nil {
				return err
			}
		}
	} else if fileVer >= V30_0_0_2 {
		if err := s.WriteU32(uint32(len(h.EmbedData))); err != nil {
			return err
		}
		if err := s.WriteBytes(h.EmbedData); err != nil {
			return err
		}
	}

	if fileVer >= V5_0_0_1 {
		if err := s.WriteU32(uint32(len(h.BlockTypes))); err != nil {
			return err
		}
		for _, t := range h.BlockTypes {
			ns := NiString{Value: t}
			if err := ns.Write(s, 4, false); err != nil {
				return err
			}
		}
		for _, idx := range h.BlockTypeIndices {
			if err := s.WriteU16(idx); err != nil {
				return err
			}
		}
	}

	if fileVer >= V20_2_0_5 {
		off, err := s.ReserveU32Array(len(h.BlockSizes))
		if err != nil {
			return err
		}
		h.blockSizePos = off
	}

	if fileVer >= V20_1_0_1 {
		if err := s.WriteU32(uint32(len(h.Strings))); err != nil {
			return err
		}
		if err := s.WriteU32(h.MaxStringLen); err != nil {
			return err
		}
		for _, str := range h.Strings {
			ns := NiString{Value: str}
			if err := ns.Write(s, 4, false); err != nil {
				return err
			}
		}
	}

	if fileVer >= V5_0_0_6 {
		if err := s.WriteU32(uint32(len(h.GroupSizes))); err != nil {
			return err
		}
		for _, g := range h.GroupSizes {
			if err := s.WriteU32(g); err != nil {
				return err
			}
		}
	}

	return nil
}

// BlockSizePos returns the stream offset reserved for the block-size table
// by the most recent Put call, or 0 if the active version has no such
// table (file < 20.2.0.5).
func (h *Header) BlockSizePos() int64 { return h.blockSizePos }

// checkInvariants validates invariants 1, 2 and 5 from the container format
// (invariant 3, block-ref bounds, and invariant 4, string-ref cache
// agreement, are checked by the Graph, which owns the blocks the refs and
// string refs live inside). It never mutates h.
func (h *Header) checkInvariants() error {
	n := int(h.NumBlocks)
	if len(h.BlockTypeIndices) != n {
		return niferr.InvariantViolatedf("nif: len(blockTypeIndices)=%d != numBlocks=%d", len(h.BlockTypeIndices), n)
	}
	if h.BlockSizes != nil && len(h.BlockSizes) != n {
		return niferr.InvariantViolatedf("nif: len(blockSizes)=%d != numBlocks=%d", len(h.BlockSizes), n)
	}
	used := make([]bool, len(h.BlockTypes))
	for i, t := range h.BlockTypeIndices {
		if int(t) >= len(h.BlockTypes) {
			return niferr.InvariantViolatedf("nif: block %d has out-of-range type index %d", i, t)
		}
		used[t] = true
	}
	for i, u := range used {
		if !u {
			return niferr.InvariantViolatedf("nif: block type %s registered but unused", niferr.Untrusted(h.BlockTypes[i]))
		}
	}
	var maxLen uint32
	for _, str := range h.Strings {
		if l := uint32(len(str)); l > maxLen {
			maxLen = l
		}
	}
	if maxLen != h.MaxStringLen {
		return niferr.InvariantViolatedf("nif: maxStringLen=%d, computed=%d", h.MaxStringLen, maxLen)
	}
	return nil
}
