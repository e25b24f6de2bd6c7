// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package block

import (
	"sync"

	"github.com/cockroachdb/swiss"
)

// Registry maps block type names to constructors. A process typically has
// one global Registry (see Register/Lookup below), populated by whichever
// payload-schema package an embedder links in; the container core never
// hardcodes a type name.
type Registry struct {
	mu    sync.RWMutex
	types *swiss.Map[string, Constructor]
}

// NewRegistry returns an empty Registry sized for a typical schema package
// (a few hundred block types across the supported game titles).
func NewRegistry() *Registry {
	return &Registry{types: swiss.New[string, Constructor](256)}
}

// Register associates name with a constructor. Re-registering the same name
// overwrites the previous constructor, matching the byte-exact, last-writer
// semantics block type names use elsewhere in this package.
func (r *Registry) Register(name string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types.Put(name, ctor)
}

// Lookup returns the constructor registered for name, or ok=false if name
// is unrecognized. Callers fall back to Unknown in the false case.
func (r *Registry) Lookup(name string) (ctor Constructor, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.types.Get(name)
}

// Len reports how many type names are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.types.Len()
}

// global is the process-wide registry used by Register/Lookup below. A
// Graph may instead be constructed with its own *Registry (see
// nif.NewGraphWithRegistry) when an embedder wants isolation between
// independently loaded payload-schema sets.
var global = NewRegistry()

// Register adds name to the process-wide default registry.
func Register(name string, ctor Constructor) { global.Register(name, ctor) }

// Lookup looks up name in the process-wide default registry.
func Lookup(name string) (Constructor, bool) { return global.Lookup(name) }

// Default returns the process-wide default registry.
func Default() *Registry { return global }
