// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package rebgzf

import (
	"container/heap"
	"context"
	"io"
	"runtime"
	"sync"
	"time"

	"v.io/x/lib/vlog"

	"github.com/halfdecomp/rebgzf/internal/bgzfio"
)

// encodedBlock is one re-encoded, BGZF-framed OutputBlock awaiting
// in-order assembly, grounded on the teacher's blockDesc.
type encodedBlock struct {
	seq              uint64
	payload          []byte
	crc32            uint32
	uncompressedSize int
	err              error
	duration         time.Duration
}

type blockHeap []*encodedBlock

func (h blockHeap) Len() int            { return len(h) }
func (h blockHeap) Less(i, j int) bool  { return h[i].seq < h[j].seq }
func (h blockHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *blockHeap) Push(x interface{}) { *h = append(*h, x.(*encodedBlock)) }
func (h *blockHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// runParallel implements spec.md §4.10: a single-threaded producer
// (stage A, this package's producer type) feeds OutputBlocks to a pool
// of re-encoding workers (stage B); a single assembler goroutine (stage
// C) reorders their output by sequence number with a min-heap and
// writes it in order, exactly the way the teacher's Decompressor
// reassembles concurrently decompressed bzip2 blocks.
func runParallel(ctx context.Context, r io.Reader, w io.Writer, o *transcodeOpts) error {
	concurrency := o.concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(-1)
	}
	if o.verbose {
		vlog.VI(1).Infof("runParallel: %v workers", concurrency)
	}

	workCh := make(chan *OutputBlock, concurrency)
	doneCh := make(chan *encodedBlock, concurrency)

	var workWg sync.WaitGroup
	workWg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer workWg.Done()
			for blk := range workCh {
				eb := &encodedBlock{seq: blk.Seq, crc32: blk.CRC32, uncompressedSize: blk.UncompressedSize}
				start := time.Now()
				eb.payload = bgzfio.EncodeBlock(blk.Tokens, o.level)
				eb.duration = time.Since(start)
				if o.verbose {
					vlog.VI(1).Infof("encoded block seq %v in %v", eb.seq, eb.duration)
				}
				select {
				case doneCh <- eb:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	assembleErrCh := make(chan error, 1)
	go func() {
		assembleErrCh <- assemble(ctx, doneCh, w, o)
	}()

	emit := func(blk *OutputBlock) error {
		select {
		case workCh <- blk:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	p := newProducer(o, emit)
	perr := p.run(r)
	close(workCh)
	workWg.Wait()
	close(doneCh)
	aerr := <-assembleErrCh

	if perr != nil {
		return perr
	}
	return aerr
}

func assemble(ctx context.Context, ch <-chan *encodedBlock, w io.Writer, o *transcodeOpts) error {
	h := &blockHeap{}
	heap.Init(h)
	expected := uint64(1)
	var compressedOffset, uncompressedOffset uint64
	first := true

	write := func(eb *encodedBlock) error {
		n, err := bgzfio.WriteBlock(w, eb.payload, eb.crc32, uint32(eb.uncompressedSize))
		if err != nil {
			return newError(kindFor(err), err)
		}
		if o.index != nil && !first {
			o.index.Add(compressedOffset, uncompressedOffset)
		}
		first = false
		compressedOffset += uint64(n)
		uncompressedOffset += uint64(eb.uncompressedSize)
		if o.progressCh != nil {
			select {
			case o.progressCh <- Progress{
				Duration:         eb.duration,
				Block:            eb.seq,
				CRC32:            eb.crc32,
				CompressedSize:   n,
				UncompressedSize: eb.uncompressedSize,
			}:
			case <-ctx.Done():
			}
		}
		return nil
	}

	for {
		select {
		case eb, ok := <-ch:
			if !ok {
				goto done
			}
			heap.Push(h, eb)
			for h.Len() > 0 && (*h)[0].seq == expected {
				next := heap.Pop(h).(*encodedBlock)
				if err := write(next); err != nil {
					return err
				}
				expected++
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
done:
	if _, err := bgzfio.WriteTerminator(w); err != nil {
		return newError(KindIO, err)
	}
	return nil
}
