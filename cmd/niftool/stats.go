// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/guptarohit/asciigraph"
	"github.com/nifgo/nif"
	"github.com/nifgo/nif/internal/stream"
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <file.nif>",
		Short: "Plot the sorted block-size distribution of a NIF file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.OutOrStdout(), args[0])
		},
	}
}

func runStats(out io.Writer, path string) error {
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
	if g.Header.BlockSizes == nil {
		return fmt.Errorf("%s: file version %s has no per-block size table to plot", path, g.Header.Version)
	}

	sizes := float64Slice(g.Header.BlockSizes)
	sort.Float64s(sizes)

	caption := fmt.Sprintf("%s: %d blocks, sorted by size (bytes)", path, len(sizes))
	plot := asciigraph.Plot(sizes, asciigraph.Height(12), asciigraph.Caption(caption))
	fmt.Fprintln(out, plot)
	return nil
}

func float64Slice(u []uint32) []float64 {
	out := make([]float64, len(u))
	for i, v := range u {
		out[i] = float64(v)
	}
	return out
}
