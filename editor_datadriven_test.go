// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package nif

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
)

// runEditorCmd dispatches one datadriven command against g, mirroring the
// command-per-line convention the container format's test fixtures use:
// each line of testdata names an op and its arguments, and the test prints
// enough of the graph's post-op state to catch a regression in the diff.
func runEditorCmd(t *testing.T, g *Graph, d *datadriven.TestData) string {
	switch d.Cmd {
	case "add-node":
		id := g.AddBlock(&testNode{Name: NiStringRef{Index: NPOS}, Parent: NiPtr{Index: NPOS}})
		return fmt.Sprintf("added id=%d\n", id)

	case "add-leaf":
		id := g.AddBlock(&testLeaf{})
		return fmt.Sprintf("added id=%d\n", id)

	case "link":
		var parent, child int
		d.ScanArgs(t, "parent", &parent)
		d.ScanArgs(t, "child", &child)
		n := g.Blocks[parent].(*testNode)
		n.Children = append(n.Children, NiRef{Index: uint32(child)})
		return dumpGraph(g)

	case "delete":
		var id int
		d.ScanArgs(t, "id", &id)
		g.DeleteBlock(uint32(id))
		return dumpGraph(g)

	case "delete-by-type":
		var typeName string
		d.ScanArgs(t, "type", &typeName)
		orphanedOnly := d.HasArg("orphaned-only")
		g.DeleteBlockByType(typeName, orphanedOnly)
		return dumpGraph(g)

	case "set-order":
		fields := strings.Fields(d.Input)
		order := make([]uint32, len(fields))
		for i, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil {
				return fmt.Sprintf("error: %s\n", err)
			}
			order[i] = uint32(n)
		}
		if err := g.SetBlockOrder(order); err != nil {
			return fmt.Sprintf("error: %s\n", err)
		}
		return dumpGraph(g)

	case "dump":
		return dumpGraph(g)

	case "check-invariants":
		if err := g.CheckInvariants(); err != nil {
			return fmt.Sprintf("error: %s\n", err)
		}
		return "ok\n"

	default:
		t.Fatalf("unknown command %q", d.Cmd)
		return ""
	}
}

func dumpGraph(g *Graph) string {
	var buf strings.Builder
	for i, b := range g.Blocks {
		fmt.Fprintf(&buf, "%d: %s", i, b.TypeName())
		if n, ok := b.(*testNode); ok {
			var refs []string
			for _, c := range n.Children {
				refs = append(refs, fmt.Sprintf("%d", c.Index))
			}
			fmt.Fprintf(&buf, " children=[%s]", strings.Join(refs, ","))
		}
		buf.WriteString("\n")
	}
	fmt.Fprintf(&buf, "types=%v\n", g.Header.BlockTypes)
	return buf.String()
}

func TestEditorDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata/editor", func(t *testing.T, path string) {
		g := newTestGraph()
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			return runEditorCmd(t, g, d)
		})
	})
}
