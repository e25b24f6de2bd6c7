// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/nifgo/nif"
	"github.com/nifgo/nif/internal/stream"
	"github.com/spf13/cobra"
)

func newFingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint <file.nif>",
		Short: "Print a content-addressed hash per block, plus a digest over all block payloads (header excluded)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFingerprint(cmd.OutOrStdout(), args[0])
		},
	}
}

func runFingerprint(out io.Writer, path string) error {
	b, err := readFile(path)
	if err != nil {
		return err
	}
	g := nif.NewGraph()
	r := stream.NewReader(b, stream.LittleEndian)
	if err := g.Read(r); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if !g.Header.Valid {
		return fmt.Errorf("%s: unrecognized version signature", path)
	}

	digest := xxhash.New()
	for id, blk := range g.Blocks {
		w := stream.NewWriter(r.Endian())
		w.SetVersion(g.Header.Version.File(), g.Header.Version.IsBethesda())
		if err := blk.Write(w); err != nil {
			return fmt.Errorf("re-serializing block %d (%s) to fingerprint it: %w", id, blk.TypeName(), err)
		}
		h := xxhash.Sum64(w.Bytes())
		fmt.Fprintf(out, "%-24s %016x\n", fmt.Sprintf("%d:%s", id, blk.TypeName()), h)
		_, _ = digest.Write(w.Bytes())
	}
	fmt.Fprintf(out, "%-24s %016x\n", "(file)", digest.Sum64())
	return nil
}
