// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package nif

import (
	"github.com/nifgo/nif/block"
	"github.com/nifgo/nif/internal/stream"
)

// testNode is a minimal stand-in for a real schema package's NiNode: a name
// string reference, a list of owned children and a non-owning parent
// pointer. It exists only so editor_test.go, editor_datadriven_test.go and
// roundtrip_test.go can exercise Graph against something resembling a real
// scene-graph block without depending on an external schema package.
type testNode struct {
	Name     NiStringRef
	Children []NiRef
	Parent   NiPtr
}

func newTestNode() block.Payload {
	return &testNode{Name: NiStringRef{Index: NPOS}, Parent: NiPtr{Index: NPOS}}
}

func (n *testNode) TypeName() string { return "NiNode" }

func (n *testNode) Read(s *stream.Stream) error {
	if err := n.Name.Read(s); err != nil {
		return err
	}
	count, err := s.ReadU32()
	if err != nil {
		return err
	}
	n.Children = make([]NiRef, count)
	for i := range n.Children {
		if err := n.Children[i].Read(s); err != nil {
			return err
		}
	}
	return n.Parent.Read(s)
}

func (n *testNode) Write(s *stream.Stream) error {
	if err := n.Name.Write(s); err != nil {
		return err
	}
	if err := s.WriteU32(uint32(len(n.Children))); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := c.Write(s); err != nil {
			return err
		}
	}
	return n.Parent.Write(s)
}

func (n *testNode) ChildRefs() []block.Ref {
	out := make([]block.Ref, len(n.Children))
	for i := range n.Children {
		out[i] = &n.Children[i]
	}
	return out
}

func (n *testNode) Ptrs() []block.Ref { return []block.Ref{&n.Parent} }

func (n *testNode) StringRefs() []block.StringRef { return []block.StringRef{&n.Name} }

// testLeaf is a stand-in for a block type with no references at all (e.g. a
// raw data block), used to exercise block-type-table bookkeeping when a
// second type is mixed in alongside testNode.
type testLeaf struct {
	Value uint32
}

func newTestLeaf() block.Payload { return &testLeaf{} }

func (l *testLeaf) TypeName() string { return "NiLeafData" }

func (l *testLeaf) Read(s *stream.Stream) error {
	v, err := s.ReadU32()
	if err != nil {
		return err
	}
	l.Value = v
	return nil
}

func (l *testLeaf) Write(s *stream.Stream) error { return s.WriteU32(l.Value) }

func (l *testLeaf) ChildRefs() []block.Ref { return nil }

func (l *testLeaf) Ptrs() []block.Ref { return nil }

func (l *testLeaf) StringRefs() []block.StringRef { return nil }

// newTestRegistry returns a Registry with testNode and testLeaf registered,
// isolated from the process-wide default so tests never leak state into
// each other via block.Register.
func newTestRegistry() *block.Registry {
	reg := block.NewRegistry()
	reg.Register("NiNode", newTestNode)
	reg.Register("NiLeafData", newTestLeaf)
	return reg
}
