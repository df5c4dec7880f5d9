// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package rebgzf

import (
	"time"

	"github.com/halfdecomp/rebgzf/internal/bgzfio"
	"github.com/halfdecomp/rebgzf/internal/gzi"
)

// Format selects the splitter policy (spec.md §4.6).
type Format int

const (
	// FormatDefault uses the size-driven splitter for all levels.
	FormatDefault Format = iota
	// FormatFASTQ forces a record-aligned splitter and a minimum level
	// of 6, watching for four-newline record boundaries.
	FormatFASTQ
	// FormatAuto behaves like FormatDefault; content sniffing to decide
	// between the two is a CLI concern, not the core's.
	FormatAuto
)

type transcodeOpts struct {
	level        int
	blockSize    int
	format       Format
	concurrency  int
	verbose      bool
	verify       bool
	progressCh   chan<- Progress
	index        *gzi.Writer
}

// Option configures a call to Transcode.
type Option func(*transcodeOpts)

// Level selects the Huffman strategy (fixed for L<=3, dynamic for L>=4)
// and the default splitter aggressiveness (record-aligned for L>=7).
// Valid range is [1,9]; out-of-range values make Transcode return a
// ConfigError.
func Level(l int) Option {
	return func(o *transcodeOpts) { o.level = l }
}

// BlockSize overrides the default 65280-byte uncompressed-block
// ceiling; it must be strictly less than 65536.
func BlockSize(n int) Option {
	return func(o *transcodeOpts) { o.blockSize = n }
}

// WithFormat selects the splitter policy.
func WithFormat(f Format) Option {
	return func(o *transcodeOpts) { o.format = f }
}

// Concurrency sets the number of re-encoding worker goroutines. 1
// selects the single-threaded engine; 0 auto-detects via GOMAXPROCS;
// >1 selects the parallel engine with that many workers.
func Concurrency(n int) Option {
	return func(o *transcodeOpts) { o.concurrency = n }
}

// Verbose enables trace logging during transcoding.
func Verbose(v bool) Option {
	return func(o *transcodeOpts) { o.verbose = v }
}

// Verify enables accumulation and checking of each member's CRC32 and
// ISIZE against its trailer.
func Verify(v bool) Option {
	return func(o *transcodeOpts) { o.verify = v }
}

// SendProgress sets the channel Progress reports are sent on, one per
// finalized BGZF block in output order.
func SendProgress(ch chan<- Progress) Option {
	return func(o *transcodeOpts) { o.progressCh = ch }
}

// WithIndex attaches a GZI sidecar writer; one entry is recorded per
// emitted BGZF block after the first.
func WithIndex(w *gzi.Writer) Option {
	return func(o *transcodeOpts) { o.index = w }
}

func defaultOpts() transcodeOpts {
	return transcodeOpts{
		level:     6,
		blockSize: bgzfio.DefaultBlockCeiling,
		format:    FormatDefault,
	}
}

// Progress reports one completed, correctly-ordered BGZF block.
type Progress struct {
	Duration           time.Duration
	Block              uint64
	CRC32              uint32
	CompressedSize     int
	UncompressedSize   int
}
