// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package rebgzf

import "testing"

func TestSplitterSizeDrivenDoesNotWatchNewlines(t *testing.T) {
	s := newSplitter(6, FormatDefault, 1000)
	if s.recordAligned {
		t.Fatalf("level 6 default should be size-driven")
	}
	if s.shouldCutAfter(999, '\n', true) {
		t.Fatalf("size-driven splitter must never cut on newlines")
	}
}

func TestSplitterRecordAlignedWaitsForLowWater(t *testing.T) {
	s := newSplitter(9, FormatDefault, 1000)
	if !s.recordAligned {
		t.Fatalf("level 9 should be record-aligned")
	}
	if s.shouldCutAfter(100, '\n', true) {
		t.Fatalf("should not cut before the low-water mark (750)")
	}
}

func TestSplitterCutsOnFourthNewline(t *testing.T) {
	s := newSplitter(9, FormatDefault, 1000)
	size := s.lowWater
	for i := 0; i < 3; i++ {
		if s.shouldCutAfter(size, '\n', true) {
			t.Fatalf("should not cut before the 4th newline (got cut at %v)", i+1)
		}
	}
	if !s.shouldCutAfter(size, '\n', true) {
		t.Fatalf("should cut on the 4th newline")
	}
}

func TestSplitterFallsBackAboveHighWater(t *testing.T) {
	s := newSplitter(9, FormatDefault, 1000)
	if !s.shouldCutAfter(s.highWater, '\n', true) {
		t.Fatalf("should cut on any newline once past the high-water mark")
	}
}

func TestSplitterFormatFASTQForcesRecordAligned(t *testing.T) {
	s := newSplitter(1, FormatFASTQ, 1000)
	if !s.recordAligned {
		t.Fatalf("FormatFASTQ should force record-aligned splitting regardless of level")
	}
}

func TestSplitterWillFit(t *testing.T) {
	s := newSplitter(1, FormatDefault, 100)
	if !s.willFit(50, 50) {
		t.Fatalf("50+50 should fit in a 100-byte ceiling")
	}
	if s.willFit(50, 51) {
		t.Fatalf("50+51 should not fit in a 100-byte ceiling")
	}
}
