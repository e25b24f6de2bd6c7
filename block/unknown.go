// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package block

import "github.com/nifgo/nif/internal/stream"

// Unknown is the fallback payload for a block type the registry doesn't
// recognize: it stores its declared size in bytes verbatim and serializes
// them unchanged, so a graph can round-trip a file containing block types
// nobody has registered a schema for. Its type name comes from the header's
// block-type table at construction time, not from the bytes themselves.
type Unknown struct {
	name string
	Data []byte
}

// NewUnknown constructs an Unknown payload that will read exactly size
// bytes on Read, reporting typeName as its TypeName.
func NewUnknown(typeName string, size uint32) *Unknown {
	return &Unknown{name: typeName, Data: make([]byte, 0, size)}
}

// TypeName returns the type name recorded in the header's block-type table.
func (u *Unknown) TypeName() string { return u.name }

// Read consumes exactly cap(u.Data) bytes (the declared block size) and
// stores them verbatim.
func (u *Unknown) Read(s *stream.Stream) error {
	n := cap(u.Data)
	b, err := s.ReadBytes(n)
	if err != nil {
		return err
	}
	u.Data = b
	return nil
}

// Write serializes the stored bytes unchanged.
func (u *Unknown) Write(s *stream.Stream) error { return s.WriteBytes(u.Data) }

// ChildRefs always returns nil: an unrecognized payload can't know which of
// its raw bytes encode references, so it enumerates none. A block that
// round-trips as Unknown is never a participant in reference rewriting; any
// ordinal it happens to embed is opaque to the editor.
func (u *Unknown) ChildRefs() []Ref { return nil }

// Ptrs always returns nil, for the same reason as ChildRefs.
func (u *Unknown) Ptrs() []Ref { return nil }

// StringRefs always returns nil, for the same reason as ChildRefs.
func (u *Unknown) StringRefs() []StringRef { return nil }
