// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nifgo/nif"
	"github.com/nifgo/nif/internal/stream"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file.nif>",
		Short: "Print the header summary and block table of a NIF file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd.OutOrStdout(), args[0])
		},
	}
}

func runDump(out io.Writer, path string) error {
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

	fmt.Fprintf(out, "version:   %s\n", g.Header.Version.String())
	fmt.Fprintf(out, "creator:   %s\n", g.Header.Creator.Value)
	fmt.Fprintf(out, "blocks:    %d\n", g.Header.NumBlocks)
	fmt.Fprintf(out, "strings:   %d\n", len(g.Header.Strings))
	fmt.Fprintf(out, "roots:     %d\n", len(g.Roots))

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Type", "Size", "Children", "Pointers", "Strings"})
	for id, blk := range g.Blocks {
		size := "n/a"
		if g.Header.BlockSizes != nil {
			size = strconv.FormatUint(uint64(g.Header.BlockSizes[id]), 10)
		}
		table.Append([]string{
			strconv.Itoa(id),
			blk.TypeName(),
			size,
			strconv.Itoa(len(blk.ChildRefs())),
			strconv.Itoa(len(blk.Ptrs())),
			strconv.Itoa(len(blk.StringRefs())),
		})
	}
	table.Render()
	return nil
}
