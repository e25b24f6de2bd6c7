// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/tokenbucket"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// waitForToken blocks until limiter has a token to spend, or ctx is done.
// tokenbucket.TokenBucket has no context-aware Wait; TryToFulfill reports
// how long to sleep before retrying when it can't fulfill immediately.
func waitForToken(ctx context.Context, limiter *tokenbucket.TokenBucket) error {
	for {
		ok, tryAgainAfter := limiter.TryToFulfill(tokenbucket.Tokens(1))
		if ok {
			return nil
		}
		timer := time.NewTimer(tryAgainAfter)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func newBatchCmd() *cobra.Command {
	var concurrency int
	var ratePerSecond float64
	var grep string

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Validate every *.nif file under dir concurrently, rate-limited",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(context.Background(), cmd.OutOrStdout(), args[0], concurrency, ratePerSecond, grep)
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "maximum concurrent file validations")
	cmd.Flags().Float64Var(&ratePerSecond, "rate", 50, "maximum file opens per second")
	cmd.Flags().StringVar(&grep, "grep", "", "only report lines matching this regexp")
	return cmd
}

func runBatch(ctx context.Context, out io.Writer, dir string, concurrency int, ratePerSecond float64, grep string) error {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".nif") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(paths)

	var limiter tokenbucket.TokenBucket
	limiter.Init(tokenbucket.Rate(ratePerSecond), tokenbucket.Tokens(ratePerSecond))

	var mu sync.Mutex
	var lines []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := waitForToken(gctx, &limiter); err != nil {
				return err
			}
			line := fmt.Sprintf("%s: OK", path)
			if err := validateOne(path); err != nil {
				line = fmt.Sprintf("%s: FAIL: %v", path, err)
			}
			mu.Lock()
			lines = append(lines, line)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Strings(lines)
	if grep != "" {
		lines, err = filterLines(grep, lines)
		if err != nil {
			return err
		}
	}
	for _, l := range lines {
		fmt.Fprintln(out, l)
	}
	fmt.Fprintf(out, "%d files scanned\n", len(paths))
	return nil
}
