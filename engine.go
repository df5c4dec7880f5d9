// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package rebgzf

import (
	"io"
	"time"

	"v.io/x/lib/vlog"

	"github.com/halfdecomp/rebgzf/internal/bgzfio"
)

// runSingleThreaded drives the pipeline synchronously (spec.md §4.9):
// for each finalized OutputBlock, re-encode and write immediately, with
// no worker pool or reordering needed since blocks are already in
// order.
func runSingleThreaded(r io.Reader, w io.Writer, o *transcodeOpts) error {
	var compressedOffset, uncompressedOffset uint64
	first := true

	emit := func(blk *OutputBlock) error {
		start := time.Now()
		payload := bgzfio.EncodeBlock(blk.Tokens, o.level)
		n, err := bgzfio.WriteBlock(w, payload, blk.CRC32, uint32(blk.UncompressedSize))
		if err != nil {
			return newError(kindFor(err), err)
		}
		if o.verbose {
			vlog.VI(1).Infof("wrote block seq %v: %v bytes compressed -> %v bytes", blk.Seq, n, blk.UncompressedSize)
		}
		if o.index != nil && !first {
			o.index.Add(compressedOffset, uncompressedOffset)
		}
		first = false
		compressedOffset += uint64(n)
		uncompressedOffset += uint64(blk.UncompressedSize)
		if o.progressCh != nil {
			o.progressCh <- Progress{
				Duration:         time.Since(start),
				Block:            blk.Seq,
				CRC32:            blk.CRC32,
				CompressedSize:   n,
				UncompressedSize: blk.UncompressedSize,
			}
		}
		return nil
	}

	p := newProducer(o, emit)
	if err := p.run(r); err != nil {
		return err
	}
	if _, err := bgzfio.WriteTerminator(w); err != nil {
		return newError(KindIO, err)
	}
	return nil
}

func kindFor(err error) ErrorKind {
	switch err {
	case bgzfio.ErrBlockTooLarge, bgzfio.ErrSizeTooLarge:
		return KindBlockTooLarge
	default:
		return KindIO
	}
}
