// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package block

import (
	"testing"

	"github.com/nifgo/nif/internal/stream"
	"github.com/stretchr/testify/require"
)

// stubPayload is a trivial Payload used only to exercise the registry's
// name-to-constructor bookkeeping; it performs no actual serialization.
type stubPayload struct{}

func newStub() Payload { return stubPayload{} }

func (stubPayload) TypeName() string           { return "Stub" }
func (stubPayload) Read(*stream.Stream) error  { return nil }
func (stubPayload) Write(*stream.Stream) error { return nil }
func (stubPayload) ChildRefs() []Ref           { return nil }
func (stubPayload) Ptrs() []Ref                { return nil }
func (stubPayload) StringRefs() []StringRef    { return nil }

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	require.Equal(t, 0, r.Len())

	r.Register("NiNode", newStub)
	require.Equal(t, 1, r.Len())

	ctor, ok := r.Lookup("NiNode")
	require.True(t, ok)
	require.Equal(t, "Stub", ctor().TypeName())

	_, ok = r.Lookup("NiUnknownType")
	require.False(t, ok)
}

func TestRegistryReRegisterOverwrites(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.Register("NiNode", func() Payload {
		calls++
		return newStub()
	})
	r.Register("NiNode", func() Payload {
		calls += 100
		return newStub()
	})
	require.Equal(t, 1, r.Len())
	ctor, ok := r.Lookup("NiNode")
	require.True(t, ok)
	ctor()
	require.Equal(t, 100, calls, "the second Register call replaces the first constructor")
}

func TestDefaultRegistryIsProcessWide(t *testing.T) {
	Register("NiTestOnlyType", newStub)
	ctor, ok := Lookup("NiTestOnlyType")
	require.True(t, ok)
	require.NotNil(t, ctor)
	require.Same(t, Default(), Default())
}
