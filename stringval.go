// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package nif

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/nifgo/nif/internal/niferr"
	"github.com/nifgo/nif/internal/stream"
)

// NiString is a variable-width length-prefixed byte string: a 1, 2, or
// 4-byte length followed by that many bytes, used for the header's creator
// and exportInfo fields, block-type names and string-pool entries.
type NiString struct {
	Value string
}

// Read reads a length of the given width (szSize must be 1, 2, or 4) and
// that many following bytes, discarding a single trailing NUL from the
// value if the read bytes end with one. A szSize outside {1,2,4} is a no-op,
// matching the reference implementation's silent tolerance for that case.
func (n *NiString) Read(s *stream.Stream, szSize int) error {
	var length int
	switch szSize {
	case 1:
		v, err := s.ReadU8()
		if err != nil {
			return err
		}
		length = int(v)
	case 2:
		v, err := s.ReadU16()
		if err != nil {
			return err
		}
		length = int(v)
	case 4:
		v, err := s.ReadU32()
		if err != nil {
			return err
		}
		length = int(v)
	default:
		return nil
	}
	if length == 0 {
		n.Value = ""
		return nil
	}
	b, err := s.ReadBytes(length)
	if err != nil {
		return err
	}
	n.Value = strings.TrimSuffix(string(b), "\x00")
	return nil
}

// Write writes the length-prefixed string. If nullOutput is set, the
// serialized length is len(Value)+1 and a trailing 0x00 is appended; the
// length field never itself counts that NUL when nullOutput is false.
func (n NiString) Write(s *stream.Stream, szSize int, nullOutput bool) error {
	b := []byte(n.Value)
	length := len(b)
	if nullOutput {
		length++
	}
	switch szSize {
	case 1:
		if length > 0xFF {
			return errors.Mark(errors.Newf("nif: string length %d exceeds 1-byte field", length), niferr.LengthError)
		}
		if err := s.WriteU8(uint8(length)); err != nil {
			return err
		}
	case 2:
		if length > 0xFFFF {
			return errors.Mark(errors.Newf("nif: string length %d exceeds 2-byte field", length), niferr.LengthError)
		}
		if err := s.WriteU16(uint16(length)); err != nil {
			return err
		}
	case 4:
		if err := s.WriteU32(uint32(length)); err != nil {
			return err
		}
	default:
		return nil
	}
	if err := s.WriteBytes(b); err != nil {
		return err
	}
	if nullOutput {
		return s.WriteU8(0)
	}
	return nil
}
