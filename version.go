// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package nif

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/nifgo/nif/internal/stream"
)

// Version encodes the four-part version quadruple stamped in every NIF
// header: the file format version (the one that gates field presence
// throughout this package), the user/application version, the stream
// version, and the NDS (NetImmerse Developer's Kit) variant marker.
type Version struct {
	file   uint32
	user   uint32
	stream uint32
	nds    uint32
	family Family
}

// Family identifies which of the three recognized version-string prefixes a
// header was stamped with. Get records it so Header.Get can decide
// between the file/nds/copyright preamble branches before the numeric nds
// field (itself gated on family == FamilyNDS) has been read.
type Family int

const (
	FamilyNetImmerse Family = iota
	FamilyGamebryo
	FamilyNDS
)

// Family reports which version-string family this Version was parsed from.
// A zero-value Version defaults to FamilyNetImmerse; callers constructing a
// Version by hand for an NDS file must call SetFamily. Only the NDS family
// changes the header's preamble branch, and String does not consult it.
func (v Version) Family() Family { return v.family }

// SetFamily overrides the branch-selecting family. Only needed when
// constructing a Version by hand (e.g. to author an NDS file) rather than
// by reading one.
func (v *Version) SetFamily(f Family) { v.family = f }

// Known file-version boundaries. Every version-gated field in Header and
// NiStringRef is predicated on one of these, centralized here rather than
// scattered across read and write paths so Get and Put can never disagree.
var (
	V3_1      = ToFile(3, 1, 0, 0)
	V5_0_0_1  = ToFile(5, 0, 0, 1)
	V5_0_0_6  = ToFile(5, 0, 0, 6)
	V10_0_0_0 = ToFile(10, 0, 0, 0)
	V10_0_1_8 = ToFile(10, 0, 1, 8)
	V20_0_0_3 = ToFile(20, 0, 0, 3)
	V20_1_0_1 = ToFile(20, 1, 0, 1)
	V20_1_0_3 = ToFile(20, 1, 0, 3)
	V20_2_0_5 = ToFile(20, 2, 0, 5)
	V30_0_0_2 = ToFile(30, 0, 0, 2)
)

// ToFile packs a four-byte A.B.C.D version into the big-endian-nibble u32
// the file version field is compared numerically against.
func ToFile(a, b, c, d byte) uint32 {
	return uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d)
}

// bethesdaFileRange is the closed file-version range that, together with a
// non-zero user version, unlocks the Bethesda-branch header fields (stream
// version, creator, export info). Bethesda titles from Oblivion through
// Fallout 4 all fall in file range [10.0.1.2, 20.2.0.7]; a file outside
// this range is never treated as Bethesda.
var bethesdaFileRange = [2]uint32{ToFile(10, 0, 1, 2), ToFile(20, 2, 0, 7)}

// IsBethesda reports whether this version's (file, user) pair enables the
// Bethesda-branch header fields.
func (v Version) IsBethesda() bool {
	return v.file >= bethesdaFileRange[0] && v.file <= bethesdaFileRange[1] && v.user > 0
}

// File returns the packed file version.
func (v Version) File() uint32 { return v.file }

// User returns the user version.
func (v Version) User() uint32 { return v.user }

// Stream returns the Bethesda stream version.
func (v Version) Stream() uint32 { return v.stream }

// NDS returns the NDS variant marker (0 if this is not an NDS file).
func (v Version) NDS() uint32 { return v.nds }

// SetFile sets the packed file version.
func (v *Version) SetFile(f uint32) { v.file = f }

// SetUser sets the user version.
func (v *Version) SetUser(u uint32) { v.user = u }

// SetStream sets the Bethesda stream version.
func (v *Version) SetStream(s uint32) { v.stream = s }

// SetNDS sets the NDS variant marker.
func (v *Version) SetNDS(n uint32) { v.nds = n }

func unpackFile(f uint32) (a, b, c, d byte) {
	return byte(f >> 24), byte(f >> 16), byte(f >> 8), byte(f)
}

// String renders the header version-string line: family name followed by
// ", Version A.B.C.D" (or "A.B" for the NetImmerse/NDS families).
func (v Version) String() string {
	a, b, c, d := unpackFile(v.file)
	switch {
	case v.nds != 0:
		return fmt.Sprintf("NDSNIF....@....@...., Version %d.%d", a, b)
	case v.file < V10_0_0_0:
		return fmt.Sprintf("NetImmerse File Format, Version %d.%d", a, b)
	default:
		return fmt.Sprintf("Gamebryo File Format, Version %d.%d.%d.%d", a, b, c, d)
	}
}

var versionNumberRE = regexp.MustCompile(`\d+`)

// familyPrefixes lists the three recognized version-string prefixes, in the
// order they're tried; the file format never uses more than one per file,
// so the first match wins.
var familyPrefixes = []string{
	"NetImmerse File Format",
	"Gamebryo File Format",
	"NDSNIF....@....@....",
}

// Get parses the header version-string line from s. It reads at most 128
// bytes looking for the 0x0A terminator, matches the three known family
// prefixes, and numerically scans up to four decimal components (each
// clamped to [0,255]) out of the suffix. If no family prefix matches, Get
// returns (false, nil): a bad signature is a recognized "this isn't a NIF"
// outcome, not a propagated error.
func (v *Version) Get(s *stream.Stream) (valid bool, err error) {
	line, err := s.ReadLine(128)
	if err != nil {
		return false, err
	}
	matchedIdx := -1
	for i, prefix := range familyPrefixes {
		if len(line) >= len(prefix) && line[:len(prefix)] == prefix {
			matchedIdx = i
			break
		}
	}
	if matchedIdx < 0 {
		return false, nil
	}
	v.family = Family(matchedIdx)
	nums := versionNumberRE.FindAllString(line, 4)
	var parts [4]byte
	for i, n := range nums {
		if i >= 4 {
			break
		}
		x, convErr := strconv.Atoi(n)
		if convErr != nil {
			continue
		}
		if x > 255 {
			x = 255
		}
		parts[i] = byte(x)
	}
	v.file = ToFile(parts[0], parts[1], parts[2], parts[3])
	return true, nil
}

// Put renders and writes the version-string line.
func (v Version) Put(s *stream.Stream) error {
	return s.WriteLine(v.String())
}
