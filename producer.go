// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package rebgzf

import (
	"hash/crc32"
	"io"

	"v.io/x/lib/vlog"

	"github.com/halfdecomp/rebgzf/internal/bitio"
	"github.com/halfdecomp/rebgzf/internal/deflate"
	"github.com/halfdecomp/rebgzf/internal/gzipframe"
	"github.com/halfdecomp/rebgzf/internal/window"
)

// producer does the serial work of spec.md §§4.3-4.7: parse gzip
// members into DEFLATE blocks, resolve each token against the sliding
// window (literalizing cross-boundary references), and feed the
// splitter to decide OutputBlock cuts. It is shared by the
// single-threaded and parallel engines; only what happens to a
// finalized OutputBlock (re-encode inline vs. hand off to a worker
// pool) differs between them.
type producer struct {
	opts   *transcodeOpts
	win    *window.Window
	split  *splitter
	seq    uint64
	block  *OutputBlock
	emit   func(*OutputBlock) error

	// verify-mode member-level accumulators
	memberCRC  uint32
	memberSize uint32
}

func newProducer(o *transcodeOpts, emit func(*OutputBlock) error) *producer {
	return &producer{
		opts:  o,
		win:   window.New(),
		split: newSplitter(o.level, o.format, o.blockSize),
		block: &OutputBlock{},
		emit:  emit,
	}
}

// run drains r, which must hold one or more concatenated gzip members,
// producing and emitting OutputBlocks in order.
func (p *producer) run(r io.Reader) error {
	br := bitio.NewReader(r)
	for {
		hdr, err := gzipframe.ReadHeader(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return newError(KindMalformedGzip, err)
		}
		_ = hdr
		if err := p.runMember(br); err != nil {
			return err
		}
	}
	if len(p.block.Tokens) > 0 {
		if err := p.cut(); err != nil {
			return err
		}
	}
	return nil
}

func (p *producer) runMember(br *bitio.Reader) error {
	p.memberCRC = 0
	p.memberSize = 0
	parser := deflate.NewParser(br)
	for {
		blk, err := parser.Next()
		if err == io.ErrUnexpectedEOF {
			return newError(KindTruncated, err)
		}
		if err == deflate.ErrMalformed {
			return newError(KindMalformedDeflate, err)
		}
		if err != nil {
			return newError(KindIO, err)
		}
		if blk.Type == deflate.Stored {
			for _, b := range blk.StoredData {
				if err := p.processLiteral(b); err != nil {
					return err
				}
			}
		} else {
			for _, t := range blk.Tokens {
				if t.Kind == deflate.Literal {
					if err := p.processLiteral(t.Literal); err != nil {
						return err
					}
				} else if err := p.processReference(t.Length, t.Distance); err != nil {
					return err
				}
			}
		}
		if blk.Final {
			break
		}
	}
	if p.opts.verify {
		trailer, err := gzipframe.ReadTrailer(br)
		if err != nil {
			return newError(KindMalformedGzip, err)
		}
		if trailer.CRC32 != p.memberCRC {
			return newError(KindCrcMismatch, nil)
		}
		if trailer.ISIZE != p.memberSize {
			return newError(KindSizeMismatch, nil)
		}
	} else if _, err := gzipframe.ReadTrailer(br); err != nil {
		return newError(KindMalformedGzip, err)
	}
	return nil
}

func (p *producer) processLiteral(b byte) error {
	if !p.split.willFit(p.block.UncompressedSize, 1) {
		if err := p.cut(); err != nil {
			return err
		}
	}
	p.win.AppendLiteral(b)
	p.block.appendLiteral(b)
	p.memberCRC = crc32.Update(p.memberCRC, crc32.IEEETable, []byte{b})
	p.memberSize++
	if p.split.shouldCutAfter(p.block.UncompressedSize, b, b == '\n') {
		return p.cut()
	}
	return nil
}

func (p *producer) processReference(length, distance int) error {
	if length > p.split.ceiling {
		return newError(KindBlockTooLarge, ErrBlockTooLarge)
	}
	if !p.split.willFit(p.block.UncompressedSize, length) {
		if err := p.cut(); err != nil {
			return err
		}
	}

	// Cross-boundary resolution (spec.md §4.7): a reference is only
	// valid within this OutputBlock if its distance does not reach
	// past what this block has produced so far. Resolve bytes via the
	// window either way (it holds the full output-side history, not
	// just this block's), but only keep the compact Reference token
	// when it is block-local; otherwise literalize the resolved bytes.
	local := distance <= p.block.UncompressedSize
	resolved, err := p.win.AppendReference(distance, length)
	if err != nil {
		return newError(KindMalformedDeflate, err)
	}
	p.memberCRC = crc32.Update(p.memberCRC, crc32.IEEETable, resolved)
	p.memberSize += uint32(length)

	if local {
		p.block.appendReference(length, distance, resolved)
		// Show the splitter every copied byte so it keeps its newline
		// count; only the decision after the last byte can cut, since a
		// Reference token is never split.
		base := p.block.UncompressedSize - length
		cut := false
		for i, b := range resolved {
			cut = p.split.shouldCutAfter(base+i+1, b, b == '\n')
		}
		if cut {
			return p.cut()
		}
		return nil
	}

	for _, b := range resolved {
		p.block.appendLiteral(b)
		if p.split.shouldCutAfter(p.block.UncompressedSize, b, b == '\n') {
			if err := p.cut(); err != nil {
				return err
			}
		}
	}
	return nil
}

// cut finalizes the current block, hands it to emit, and starts a
// fresh one.
func (p *producer) cut() error {
	if len(p.block.Tokens) == 0 {
		return nil
	}
	p.seq++
	p.block.Seq = p.seq
	blk := p.block
	p.trace("cut: seq %v, %v tokens, %v bytes, crc %x", blk.Seq, len(blk.Tokens), blk.UncompressedSize, blk.CRC32)
	if err := p.emit(blk); err != nil {
		return err
	}
	p.block = &OutputBlock{}
	p.split.reset()
	return nil
}

func (p *producer) trace(format string, args ...interface{}) {
	if p.opts.verbose {
		vlog.VI(1).Infof(format, args...)
	}
}
