// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package block defines the opaque block-payload contract the container
// core edits and serializes without ever understanding payload semantics,
// plus the name-to-constructor registry that lets the core instantiate
// payloads it has never heard of (NiNode, NiTriShape, BSLightingShaderProperty,
// ...) by type name alone.
package block

import "github.com/nifgo/nif/internal/stream"

// Ref is the minimal capability a reference field (NiRef or NiPtr) must
// expose to the graph editor: a mutable ordinal index. Both nif.NiRef and
// nif.NiPtr satisfy this through pointer receivers on their Index field;
// Payload.ChildRefs/Payload.Ptrs return pointers so the editor can rewrite
// the index in place.
type Ref interface {
	// IndexPtr returns a pointer to the underlying ordinal, so the caller
	// can read or rewrite it without knowing whether it's a NiRef or NiPtr.
	IndexPtr() *uint32
}

// StringRef is the minimal capability a string-reference field must expose
// to the string-pool maintenance routines (Graph.FillStringRefs,
// Graph.UpdateHeaderStrings).
type StringRef interface {
	// Get returns the cached string value and current pool index.
	Get() (cached string, index uint32)
	// Set overwrites the cached string value and pool index.
	Set(cached string, index uint32)
}

// Payload is the capability set every block type must implement: report its
// own type name, serialize/deserialize itself, and enumerate every field
// that the graph editor must rewrite on Delete/Reorder (child refs, pointer
// refs, string refs). This is the registry-extensible alternative to a
// closed, exhaustively-matched variant: payload schemas live outside this
// module entirely and register themselves by name.
type Payload interface {
	// TypeName reports the block's registered type name, e.g. "NiNode".
	TypeName() string
	// Read deserializes the payload's fields from s. The stream's version
	// is available via s.FileVersion()/s.IsBethesda() for edge cases a
	// payload may need to gate on, mirroring the header's own
	// version-gated field layout.
	Read(s *stream.Stream) error
	// Write serializes the payload's fields to s.
	Write(s *stream.Stream) error
	// ChildRefs enumerates owning child-reference fields (NiRef).
	ChildRefs() []Ref
	// Ptrs enumerates non-owning pointer fields (NiPtr).
	Ptrs() []Ref
	// StringRefs enumerates string-reference fields (NiStringRef).
	StringRefs() []StringRef
}

// Constructor builds a zero-value Payload for a registered type name, ready
// to have Read called on it. The registry maps names to constructors rather
// than to pre-built instances so every block gets its own payload value.
type Constructor func() Payload
