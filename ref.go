// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package nif

import "github.com/nifgo/nif/internal/stream"

// NPOS is the sentinel meaning "no index" for both NiRef and NiPtr. It is
// never a valid block ordinal.
const NPOS uint32 = 0xFFFFFFFF

// NiRef is a nullable ordinal index into a Graph's block array, denoting an
// owning child edge (a scene-tree parent-to-child reference). NiRef and
// NiPtr are both pure indices: neither is ever dereferenced directly, only
// resolved through the owning Graph's block array, and both are rewritten
// identically by DeleteBlock/SetBlockOrder. The core distinguishes them only
// so reference-rewriting never inverts ownership when it matters to a
// payload layer built on top of this package.
type NiRef struct {
	Index uint32
}

// IsNull reports whether r is the null reference.
func (r NiRef) IsNull() bool { return r.Index == NPOS }

// IndexPtr satisfies block.Ref, letting the graph editor rewrite this
// reference in place during Delete/Reorder without needing to know it's a
// NiRef rather than a NiPtr.
func (r *NiRef) IndexPtr() *uint32 { return &r.Index }

// Read reads a 4-byte ordinal.
func (r *NiRef) Read(s *stream.Stream) error {
	v, err := s.ReadU32()
	if err != nil {
		return err
	}
	r.Index = v
	return nil
}

// Write writes the 4-byte ordinal.
func (r NiRef) Write(s *stream.Stream) error { return s.WriteU32(r.Index) }

// NiPtr is a nullable ordinal index denoting a non-owning back-reference
// edge (e.g. a bone pointing at its skeleton root, or a controller pointing
// at its target). See NiRef for the shared index semantics.
type NiPtr struct {
	Index uint32
}

// IsNull reports whether p is the null reference.
func (p NiPtr) IsNull() bool { return p.Index == NPOS }

// IndexPtr satisfies block.Ref. See NiRef.IndexPtr.
func (p *NiPtr) IndexPtr() *uint32 { return &p.Index }

// Read reads a 4-byte ordinal.
func (p *NiPtr) Read(s *stream.Stream) error {
	v, err := s.ReadU32()
	if err != nil {
		return err
	}
	p.Index = v
	return nil
}

// Write writes the 4-byte ordinal.
func (p NiPtr) Write(s *stream.Stream) error { return s.WriteU32(p.Index) }
