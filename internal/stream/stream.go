// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package stream provides the typed, endian-aware byte stream that every NIF
// field is read from or written to. A Stream is not thread-safe; it is owned
// by exactly one Header/Graph read or write call.
package stream

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/nifgo/nif/internal/niferr"
)

// Endian selects the byte order a Stream uses for multi-byte scalars.
// Endian defaults to whatever NewReader/NewWriter was constructed with, but
// a reader must call SetEndian once the header's own endian byte has been
// read (little by default; big only for file >= 20.0.0.3 with the endian
// byte set to 0), since every multi-byte field after that byte is encoded
// in the endianness it names, not the stream's construction-time default.
type Endian uint8

const (
	LittleEndian Endian = iota
	BigEndian
)

func (e Endian) byteOrder() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// lineTerminator is the newline byte that terminates the header version
// string and, on older file versions, the copyright lines.
const lineTerminator = 0x0A

// Stream is a flat byte buffer with a single read/write cursor, matching the
// C++ std::stringstream semantics the container format was designed around:
// tellp/seekp move the cursor, Next consumes forward, and writes always
// append at the end; Write fails if Seek has moved the cursor elsewhere.
// Backpatching (e.g. the block-size table, whose entries aren't known until
// each block has been serialized) goes through PatchU32, which overwrites in
// place without moving the cursor.
type Stream struct {
	buf    []byte
	pos    int
	endian Endian

	// fileVersion and bethesda mirror the active nif.Version just enough
	// for version-gated fields (NiStringRef's inline-vs-index split, a
	// payload's own conditional fields) to query without this package
	// importing the nif package that owns the full Version type.
	fileVersion uint32
	bethesda    bool
}

// NewReader wraps data for sequential typed reads.
func NewReader(data []byte, endian Endian) *Stream {
	return &Stream{buf: data, endian: endian}
}

// NewWriter creates an empty Stream for sequential typed writes.
func NewWriter(endian Endian) *Stream {
	return &Stream{endian: endian}
}

// Endian returns the byte order this stream reads/writes scalars with.
func (s *Stream) Endian() Endian { return s.endian }

// SetEndian changes the byte order used for every scalar read or written
// after this call. It exists because the NIF wire format names its own
// byte order in-band (the header's endian byte at file >= 20.0.0.3): the
// stream's construction-time endianness is only a default for the bytes
// that precede that marker.
func (s *Stream) SetEndian(e Endian) { s.endian = e }

// SetVersion records the active file version and Bethesda-branch flag, so
// that version-gated reads/writes performed through this Stream (by
// NiStringRef or by a payload's own Read/Write) see the same answer the
// header used to decide its own field layout.
func (s *Stream) SetVersion(fileVersion uint32, bethesda bool) {
	s.fileVersion = fileVersion
	s.bethesda = bethesda
}

// FileVersion returns the packed file version set via SetVersion.
func (s *Stream) FileVersion() uint32 { return s.fileVersion }

// IsBethesda returns the Bethesda-branch flag set via SetVersion.
func (s *Stream) IsBethesda() bool { return s.bethesda }

// Bytes returns the accumulated buffer. Valid after writes; for a reader it
// returns the original source slice.
func (s *Stream) Bytes() []byte { return s.buf }

// Len returns the total number of bytes currently in the stream.
func (s *Stream) Len() int { return len(s.buf) }

// Tell returns the current cursor position (tellp in the original design).
func (s *Stream) Tell() int64 { return int64(s.pos) }

// Seek moves the cursor to an absolute offset (seekp). It does not truncate
// or extend the buffer; writes past the end still append.
func (s *Stream) Seek(pos int64) error {
	if pos < 0 || pos > int64(len(s.buf)) {
		return errors.Mark(errors.Newf("nif: seek to %d out of range [0,%d]", pos, len(s.buf)), niferr.IOError)
	}
	s.pos = int(pos)
	return nil
}

// Unread returns the number of bytes remaining between the cursor and the
// end of the buffer.
func (s *Stream) Unread() int { return len(s.buf) - s.pos }

func (s *Stream) need(n int) error {
	if s.Unread() < n {
		return niferr.Truncatedf("nif: need %d bytes, have %d", n, s.Unread())
	}
	return nil
}

// Next returns the next n bytes and advances the cursor, or fails with
// niferr.Truncated if fewer than n bytes remain.
func (s *Stream) Next(n int) ([]byte, error) {
	if err := s.need(n); err != nil {
		return nil, err
	}
	b := s.buf[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

// Write appends b at the cursor. A Stream built with NewWriter always has
// cursor == len(buf), so this is equivalent to append; a Stream being used
// to backpatch (see PatchU32) must not call Write after Seek-ing backward.
func (s *Stream) Write(b []byte) error {
	if s.pos != len(s.buf) {
		return errors.Mark(errors.New("nif: Write called after Seek; use PatchU32 for in-place overwrite"), niferr.IOError)
	}
	s.buf = append(s.buf, b...)
	s.pos = len(s.buf)
	return nil
}

// ReadU8 reads one byte.
func (s *Stream) ReadU8() (uint8, error) {
	b, err := s.Next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// WriteU8 writes one byte.
func (s *Stream) WriteU8(v uint8) error { return s.Write([]byte{v}) }

// ReadU16 reads a 2-byte unsigned integer in the stream's endianness.
func (s *Stream) ReadU16() (uint16, error) {
	b, err := s.Next(2)
	if err != nil {
		return 0, err
	}
	return s.endian.byteOrder().Uint16(b), nil
}

// WriteU16 writes a 2-byte unsigned integer in the stream's endianness.
func (s *Stream) WriteU16(v uint16) error {
	b := make([]byte, 2)
	s.endian.byteOrder().PutUint16(b, v)
	return s.Write(b)
}

// ReadU32 reads a 4-byte unsigned integer in the stream's endianness.
func (s *Stream) ReadU32() (uint32, error) {
	b, err := s.Next(4)
	if err != nil {
		return 0, err
	}
	return s.endian.byteOrder().Uint32(b), nil
}

// WriteU32 writes a 4-byte unsigned integer in the stream's endianness.
func (s *Stream) WriteU32(v uint32) error {
	b := make([]byte, 4)
	s.endian.byteOrder().PutUint32(b, v)
	return s.Write(b)
}

// ReadU64 reads an 8-byte unsigned integer in the stream's endianness.
func (s *Stream) ReadU64() (uint64, error) {
	b, err := s.Next(8)
	if err != nil {
		return 0, err
	}
	return s.endian.byteOrder().Uint64(b), nil
}

// WriteU64 writes an 8-byte unsigned integer in the stream's endianness.
func (s *Stream) WriteU64(v uint64) error {
	b := make([]byte, 8)
	s.endian.byteOrder().PutUint64(b, v)
	return s.Write(b)
}

// ReadF32 reads a 4-byte IEEE-754 float.
func (s *Stream) ReadF32() (float32, error) {
	u, err := s.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

// WriteF32 writes a 4-byte IEEE-754 float.
func (s *Stream) WriteF32(v float32) error { return s.WriteU32(math.Float32bits(v)) }

// ReadF64 reads an 8-byte IEEE-754 float.
func (s *Stream) ReadF64() (float64, error) {
	u, err := s.ReadU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}

// WriteF64 writes an 8-byte IEEE-754 float.
func (s *Stream) WriteF64(v float64) error { return s.WriteU64(math.Float64bits(v)) }

// ReadBytes reads n raw bytes verbatim (used for fixed arrays, embedded
// data, and opaque block payloads).
func (s *Stream) ReadBytes(n int) ([]byte, error) {
	b, err := s.Next(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// WriteBytes writes raw bytes verbatim.
func (s *Stream) WriteBytes(b []byte) error { return s.Write(b) }

// ReadLine reads up to maxLen bytes terminated by 0x0A (exclusive), failing
// with niferr.Truncated if no terminator is found within maxLen bytes. Used
// for the header version-string line and pre-3.1 copyright lines.
func (s *Stream) ReadLine(maxLen int) (string, error) {
	start := s.pos
	limit := start + maxLen
	if limit > len(s.buf) {
		limit = len(s.buf)
	}
	for i := start; i < limit; i++ {
		if s.buf[i] == lineTerminator {
			line := string(s.buf[start:i])
			s.pos = i + 1
			return line, nil
		}
	}
	return "", niferr.Truncatedf("nif: no line terminator within %d bytes", maxLen)
}

// WriteLine writes line followed by the 0x0A terminator.
func (s *Stream) WriteLine(line string) error {
	if err := s.Write([]byte(line)); err != nil {
		return err
	}
	return s.WriteU8(lineTerminator)
}

// PatchU32 overwrites the 4-byte unsigned integer at absolute offset off
// without disturbing the write cursor. Used to backpatch the block-size
// table once each block's serialized length is known.
func (s *Stream) PatchU32(off int64, v uint32) error {
	o := int(off)
	if o < 0 || o+4 > len(s.buf) {
		return errors.Mark(errors.Newf("nif: patch offset %d out of range", off), niferr.IOError)
	}
	s.endian.byteOrder().PutUint32(s.buf[o:o+4], v)
	return nil
}

// ReserveU32Array appends count zeroed u32 slots and returns the offset of
// the first one, for later patching via PatchU32.
func (s *Stream) ReserveU32Array(count int) (int64, error) {
	off := s.Tell()
	if err := s.Write(make([]byte, 4*count)); err != nil {
		return 0, err
	}
	return off, nil
}
