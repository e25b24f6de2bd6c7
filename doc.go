// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package nif reads, edits, and writes the versioned binary container used
// by the Gamebryo/NetImmerse Interchange Format (NIF): a directed graph of
// typed blocks (scene objects, meshes, skeletons, shaders, animation
// controllers, collision primitives, ...) addressed by ordinal index.
//
// This package implements the container layer only: the header
// parser/serializer, the block-graph model (blocks, typed references, the
// string pool), and the invariant-preserving edit operations (add/delete/
// replace/reorder blocks, reference rewriting, string-pool maintenance).
// Concrete block payload schemas (NiNode, NiTriShape,
// BSLightingShaderProperty, ...), geometry math, and CLI tooling are
// external collaborators: this package treats each block payload as an
// opaque object that can report its type name, enumerate its reference
// fields, and serialize/deserialize itself (see package block).
//
// A typical read:
//
//	g := nif.NewGraph()
//	if err := g.Read(stream.NewReader(data, stream.LittleEndian)); err != nil {
//		return err
//	}
//	if !g.Header.Valid {
//		return errors.New("not a NIF file")
//	}
//
// A typical edit-and-write:
//
//	g.DeleteBlock(id)
//	out := stream.NewWriter(g.Header.Endian)
//	if err := g.Write(out); err != nil {
//		return err
//	}
//	return os.WriteFile(path, out.Bytes(), 0644)
package nif
