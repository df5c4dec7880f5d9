// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package rebgzf

// splitter decides where to cut the token stream into OutputBlocks
// (spec.md §4.6): size-driven for levels <= 6, record-aligned (FASTQ
// newline cadence) for levels >= 7 or when the caller forces
// FormatFASTQ.
type splitter struct {
	ceiling       int
	recordAligned bool
	lowWater      int // 75% of ceiling: start watching for newlines
	highWater     int // 99% of ceiling: accept any newline
	lineCount     int // newlines seen since the current block started
}

func newSplitter(level int, format Format, ceiling int) *splitter {
	recordAligned := level >= 7 || format == FormatFASTQ
	return &splitter{
		ceiling:       ceiling,
		recordAligned: recordAligned,
		lowWater:      ceiling * 3 / 4,
		highWater:     ceiling * 99 / 100,
	}
}

// willFit reports whether appending a run of addedSize bytes to a block
// already holding currentSize bytes stays within the hard ceiling.
func (s *splitter) willFit(currentSize, addedSize int) bool {
	return currentSize+addedSize <= s.ceiling
}

// reset clears per-block state after a cut, for the next OutputBlock.
func (s *splitter) reset() {
	s.lineCount = 0
}

// shouldCutAfter is consulted once per decoded byte (the unit the
// record-aligned policy reasons about) after it has been appended to
// the current block. currentSize is the block's size including that
// byte.
func (s *splitter) shouldCutAfter(currentSize int, b byte, isNewline bool) bool {
	if !s.recordAligned {
		return false
	}
	if !isNewline {
		return false
	}
	s.lineCount++
	if currentSize < s.lowWater {
		return false
	}
	if currentSize >= s.highWater {
		return true
	}
	return s.lineCount%4 == 0
}
