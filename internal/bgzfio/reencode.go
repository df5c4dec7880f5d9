package bgzfio

import (
	"github.com/halfdecomp/rebgzf/internal/bitio"
	"github.com/halfdecomp/rebgzf/internal/deflate"
)

// FixedTableMaxLevel is the highest level that still uses DEFLATE's
// fixed Huffman tables rather than building a dynamic table from the
// block's own symbol frequencies.
const FixedTableMaxLevel = 3

// EncodeBlock re-encodes tokens as a single self-terminated DEFLATE
// stream (BFINAL=1), choosing fixed vs dynamic Huffman tables by level
// per spec.md's L in [1,3] / L >= 4 split, and returns the resulting
// bytes ready to hand to WriteBlock.
func EncodeBlock(tokens []deflate.Token, level int) []byte {
	w := bitio.NewWriter(0)
	if level <= FixedTableMaxLevel {
		deflate.EncodeFixed(w, tokens, true)
	} else {
		deflate.EncodeDynamic(w, tokens, true)
	}
	w.FlushToByteBoundary()
	return w.Bytes()
}
