// Copyright 2021 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/grailbio/base/file"
	"github.com/spf13/cobra"

	"github.com/halfdecomp/rebgzf/internal/bitio"
	"github.com/halfdecomp/rebgzf/internal/deflate"
	"github.com/halfdecomp/rebgzf/internal/gzi"
	"github.com/halfdecomp/rebgzf/internal/gzipframe"
)

// newIndexCommand builds the "rebgzf index" sub-command. It is built
// directly on cobra rather than cloudeng.io/cmdutil/subcmd (see
// SPEC_FULL.md's DOMAIN STACK note), giving both CLI idioms present in
// the teacher's own dependency graph a home.
func newIndexCommand() *cobra.Command {
	var rebuild string

	root := &cobra.Command{
		Use:   "index",
		Short: "inspect or rebuild a .gzi sidecar index",
	}

	show := &cobra.Command{
		Use:   "show <path.gzi>",
		Short: "print the entries of an existing .gzi file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showIndex(cmd.Context(), args[0])
		},
	}

	build := &cobra.Command{
		Use:   "build <bgzf-file> <out.gzi>",
		Short: "rebuild a .gzi index by walking a BGZF file's member headers",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if rebuild == "skip" {
				if _, err := file.Stat(cmd.Context(), args[1]); err == nil {
					return nil
				}
			}
			return buildIndex(cmd.Context(), args[0], args[1])
		},
	}
	build.Flags().StringVar(&rebuild, "if-exists", "skip", "skip|overwrite an existing output file")

	root.AddCommand(show, build)
	return root
}

func showIndex(ctx context.Context, path string) error {
	rd, _, cleanup, err := openFileOrURL(ctx, path)
	if err != nil {
		return err
	}
	defer cleanup(ctx)

	var countBuf [8]byte
	if _, err := io.ReadFull(rd, countBuf[:]); err != nil {
		return fmt.Errorf("reading gzi count: %w", err)
	}
	count := binary.LittleEndian.Uint64(countBuf[:])
	fmt.Printf("%v entries\n", count)
	fmt.Printf("%-6s %16s %16s\n", "entry", "compressed ofs", "uncompressed ofs")

	var pair [16]byte
	for i := uint64(0); i < count; i++ {
		if _, err := io.ReadFull(rd, pair[:]); err != nil {
			return fmt.Errorf("reading gzi entry %v: %w", i, err)
		}
		co := binary.LittleEndian.Uint64(pair[0:8])
		uo := binary.LittleEndian.Uint64(pair[8:16])
		fmt.Printf("%-6d %16d %16d\n", i, co, uo)
	}
	return nil
}

// buildIndex walks a BGZF file member by member, parsing each member's
// DEFLATE payload to reach its trailer, and recovers the (compressed
// offset, uncompressed offset) pairs a .gzi index needs from each
// member's start position and the trailers' ISIZE values, without
// re-running the transcoder.
func buildIndex(ctx context.Context, bgzfPath, outPath string) error {
	rd, _, cleanup, err := openFileOrURL(ctx, bgzfPath)
	if err != nil {
		return err
	}
	defer cleanup(ctx)

	w := gzi.New()
	br := bitio.NewReader(rd)
	var uncompressedOfs uint64
	first := true
	for {
		startBit := br.BitPos()
		if _, err := gzipframe.ReadHeader(br); err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		parser := deflate.NewParser(br)
		for {
			blk, err := parser.Next()
			if err != nil {
				return err
			}
			if blk.Final {
				break
			}
		}
		trailer, err := gzipframe.ReadTrailer(br)
		if err != nil {
			return err
		}

		// Matches the engine's convention (see engine.go/parallel.go):
		// the first member's (0,0) entry is implicit and omitted.
		if !first {
			w.Add(uint64(startBit)/8, uncompressedOfs)
		}
		first = false
		uncompressedOfs += uint64(trailer.ISIZE)
	}

	out, writerCleanup, err := createFile(ctx, outPath)
	if err != nil {
		return err
	}
	if _, err := w.WriteTo(out); err != nil {
		return err
	}
	return writerCleanup(ctx)
}
