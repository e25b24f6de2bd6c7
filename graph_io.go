// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package nif

import (
	"time"

	"github.com/nifgo/nif/block"
	"github.com/nifgo/nif/internal/niferr"
	"github.com/nifgo/nif/internal/stream"
)

// Read parses a full NIF file from s: the header preamble, then each
// block's payload (looked up by registered type name, falling back to
// block.Unknown), then the footer's root-block index list. If the header's
// version signature is unrecognized, Read returns nil with g.Header.Valid
// == false and no blocks.
func (g *Graph) Read(s *stream.Stream) error {
	start := time.Now()
	defer func() { g.Metrics.ObserveRead(time.Since(start)) }()

	if g.Header == nil {
		g.Header = &Header{}
	}
	if err := g.Header.Get(s); err != nil {
		return err
	}
	if !g.Header.Valid {
		return nil
	}
	h := g.Header

	g.Blocks = make([]block.Payload, 0, h.NumBlocks)
	for i := uint32(0); i < h.NumBlocks; i++ {
		typeIdx := h.BlockTypeIndices[i]
		if int(typeIdx) >= len(h.BlockTypes) {
			return niferr.InvariantViolatedf("nif: block %d has out-of-range type index %d", i, typeIdx)
		}
		name := h.BlockTypes[typeIdx]
		var payload block.Payload
		if ctor, ok := g.reg().Lookup(name); ok {
			payload = ctor()
		} else {
			if h.BlockSizes == nil {
				return niferr.VersionUnsupportedf("nif: unrecognized block type %s and no block-size table to skip it (file version too old)", niferr.Untrusted(name))
			}
			payload = block.NewUnknown(name, h.BlockSizes[i])
		}
		if err := payload.Read(s); err != nil {
			return err
		}
		g.Blocks = append(g.Blocks, payload)
		if g.Metrics != nil {
			g.Metrics.BlocksRead.Inc()
		}
	}

	if h.Version.File() >= V20_1_0_1 {
		if err := g.FillStringRefs(); err != nil {
			return err
		}
		if g.Metrics != nil {
			g.Metrics.StringPoolLen.Set(float64(len(h.Strings)))
		}
	}

	numRoots, err := s.ReadU32()
	if err != nil {
		return err
	}
	g.Roots = make([]NiRef, numRoots)
	for i := range g.Roots {
		if err := g.Roots[i].Read(s); err != nil {
			return err
		}
	}
	return nil
}

// hasUnknownBlock reports whether any block is a block.Unknown fallback
// payload, whose raw bytes may embed string-pool indices the graph can't
// enumerate. Write passes this to UpdateHeaderStrings to decide whether
// clearing and rebuilding the pool from scratch is safe.
func (g *Graph) hasUnknownBlock() bool {
	for _, b := range g.Blocks {
		if _, ok := b.(*block.Unknown); ok {
			return true
		}
	}
	return false
}

// Write rebuilds the string pool, serializes the header preamble
// (reserving the block-size table position when the version calls for
// one), serializes each block while measuring its byte span, patches the
// block-size table with the measured sizes, and finally writes the footer
// root-index list.
func (g *Graph) Write(s *stream.Stream) error {
	start := time.Now()
	defer func() { g.Metrics.ObserveWrite(time.Since(start)) }()

	h := g.Header
	if h.Version.File() >= V20_1_0_1 {
		g.UpdateHeaderStrings(g.hasUnknownBlock())
		if g.Metrics != nil {
			g.Metrics.StringPoolLen.Set(float64(len(h.Strings)))
		}
	}
	h.NumBlocks = uint32(len(g.Blocks))

	if err := h.Put(s); err != nil {
		return err
	}

	haveSizes := h.Version.File() >= V20_2_0_5
	for i, b := range g.Blocks {
		blockStart := s.Tell()
		if err := b.Write(s); err != nil {
			return err
		}
		if haveSizes {
			size := uint32(s.Tell() - blockStart)
			h.BlockSizes[i] = size
		}
		if g.Metrics != nil {
			g.Metrics.BlocksWritten.Inc()
		}
	}

	if haveSizes {
		for i, size := range h.BlockSizes {
			if err := s.PatchU32(h.blockSizePos+int64(i)*4, size); err != nil {
				return err
			}
		}
	}

	if err := s.WriteU32(uint32(len(g.Roots))); err != nil {
		return err
	}
	for _, r := range g.Roots {
		if err := r.Write(s); err != nil {
			return err
		}
	}
	return nil
}
