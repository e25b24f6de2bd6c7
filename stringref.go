// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package nif

import (
	"github.com/cockroachdb/errors"
	"github.com/nifgo/nif/internal/niferr"
	"github.com/nifgo/nif/internal/stream"
)

// NIFStringIndexLimit bounds valid NiStringRef pool indices. The reference
// format doesn't publish a documented constant for this; nifgo uses the
// largest index that cannot collide with NPOS while leaving room for the
// legacy overflow convention in FillStringRefs (see Graph.FillStringRefs).
const NIFStringIndexLimit uint32 = 0x7FFFFFFF

// inlineStringCap is the maximum number of bytes read into an inline
// (pre-20.1.0.3) string reference; longer values are truncated rather than
// rejected.
const inlineStringCap = 2048

// NiStringRef is a value that is either an inline string (file <
// 20.1.0.3) or an index into the header's central string pool (file >=
// 20.1.0.3). Cached always holds the resolved string value; Index is the
// pool index when one applies, and NPOS otherwise. The pool is the
// authoritative store once indices are in play: Cached is a read-through
// copy maintained by Graph.FillStringRefs (on read) and
// Graph.UpdateHeaderStrings (on write), never edited independently.
type NiStringRef struct {
	Cached string
	Index  uint32
}

// Get satisfies block.StringRef.
func (r *NiStringRef) Get() (cached string, index uint32) { return r.Cached, r.Index }

// Set satisfies block.StringRef.
func (r *NiStringRef) Set(cached string, index uint32) { r.Cached = cached; r.Index = index }

// Read reads either an inline string or a pool index, depending on the
// stream's active file version.
func (r *NiStringRef) Read(s *stream.Stream) error {
	if s.FileVersion() < V20_1_0_3 {
		length, err := s.ReadU32()
		if err != nil {
			return err
		}
		n := int(length)
		if n > inlineStringCap {
			n = inlineStringCap
		}
		b, err := s.ReadBytes(n)
		if err != nil {
			return err
		}
		// Any remaining declared-but-uncapped bytes must still be consumed
		// so the stream cursor lands correctly for the next field.
		if int(length) > n {
			if _, err := s.Next(int(length) - n); err != nil {
				return err
			}
		}
		r.Cached = string(b)
		r.Index = NPOS
		return nil
	}
	idx, err := s.ReadU32()
	if err != nil {
		return err
	}
	if idx != NPOS && idx > NIFStringIndexLimit {
		return errors.Mark(errors.Newf("nif: string ref index %d exceeds limit %d", idx, NIFStringIndexLimit), niferr.LengthError)
	}
	r.Index = idx
	return nil
}

// Write writes either the inline string or the pool index, depending on the
// stream's active file version.
func (r NiStringRef) Write(s *stream.Stream) error {
	if s.FileVersion() < V20_1_0_3 {
		b := []byte(r.Cached)
		if err := s.WriteU32(uint32(len(b))); err != nil {
			return err
		}
		return s.WriteBytes(b)
	}
	if r.Index != NPOS && r.Index > NIFStringIndexLimit {
		return errors.Mark(errors.Newf("nif: string ref index %d exceeds limit %d", r.Index, NIFStringIndexLimit), niferr.LengthError)
	}
	return s.WriteU32(r.Index)
}
