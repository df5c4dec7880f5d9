// Copyright 2021 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/halfdecomp/rebgzf/internal/bitio"
	"github.com/halfdecomp/rebgzf/internal/deflate"
	"github.com/halfdecomp/rebgzf/internal/gzipframe"
)

// inspect walks a BGZF/gzip file and prints per-member (compressed
// offset, uncompressed size, BC subfield size if present, CRC32),
// mirroring the teacher's bz2-stats/scan debug commands but for
// BGZF/gzip structure instead of bzip2 blocks.
func inspect(ctx context.Context, values interface{}, args []string) error {
	rd, _, cleanup, err := openFileOrURL(ctx, args[0])
	if err != nil {
		return err
	}
	defer cleanup(ctx)

	br := bitio.NewReader(rd)
	fmt.Printf("%v\n", args[0])
	fmt.Printf("%-8s %14s %16s %10s %10s\n", "member", "compressed ofs", "uncompressed sz", "BC size", "CRC32")

	var n uint64
	for {
		startBit := br.BitPos()
		hdr, err := gzipframe.ReadHeader(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		n++
		bcSize, hasBC := bcSubfieldSize(hdr)

		parser := deflate.NewParser(br)
		for {
			blk, err := parser.Next()
			if err != nil {
				return fmt.Errorf("member %v: %v", n, err)
			}
			if blk.Final {
				break
			}
		}
		trailer, err := gzipframe.ReadTrailer(br)
		if err != nil {
			return fmt.Errorf("member %v trailer: %v", n, err)
		}

		compressedOfs := startBit / 8
		bcStr := "-"
		if hasBC {
			bcStr = fmt.Sprintf("%v", bcSize)
		}
		fmt.Printf("%-8d %14d %16d %10s %#08x\n", n, compressedOfs, trailer.ISIZE, bcStr, trailer.CRC32)
	}
	return nil
}

func bcSubfieldSize(hdr *gzipframe.Header) (int, bool) {
	for _, sub := range hdr.ExtraSubfields {
		if sub.SI1 == 'B' && sub.SI2 == 'C' && len(sub.Data) == 2 {
			return int(sub.Data[0]) | int(sub.Data[1])<<8, true
		}
	}
	return 0, false
}
