package deflate

import (
	"github.com/halfdecomp/rebgzf/internal/bitio"
	"github.com/halfdecomp/rebgzf/internal/huffman"
)

// EncodeStored writes tokens' equivalent bytes as a Stored block. Callers
// pass the raw bytes directly since a Stored block has no LZ77 structure.
func EncodeStored(w *bitio.Writer, data []byte, final bool) {
	w.WriteBits(b2u(final), 1)
	w.WriteBits(0, 2) // BTYPE = 00
	w.FlushToByteBoundary()
	length := len(data)
	w.WriteRawBytes([]byte{byte(length), byte(length >> 8)})
	nlen := ^length & 0xffff
	w.WriteRawBytes([]byte{byte(nlen), byte(nlen >> 8)})
	w.WriteRawBytes(data)
}

// EncodeFixed writes tokens as a single BTYPE=01 block using the fixed
// Huffman tables, the cheapest encoding to produce (no table to
// transmit) and what re-encoders reach for at low compression levels.
func EncodeFixed(w *bitio.Writer, tokens []Token, final bool) {
	w.WriteBits(b2u(final), 1)
	w.WriteBits(1, 2) // BTYPE = 01
	emitTokens(w, tokens, huffman.FixedLiteralCodes(), huffman.FixedLiteralLengths(),
		huffman.FixedDistanceCodes(), huffman.FixedDistanceLengths())
}

// EncodeDynamic writes tokens as a BTYPE=10 block with a Huffman table
// built from the tokens' own symbol frequencies, per spec.md's
// requirement that levels >= 4 build block-local dynamic tables.
func EncodeDynamic(w *bitio.Writer, tokens []Token, final bool) {
	litFreq := make([]int, 286)
	distFreq := make([]int, 30)
	litFreq[256] = 1 // end-of-block always present
	hasReference := false
	for _, t := range tokens {
		if t.Kind == Literal {
			litFreq[t.Literal]++
			continue
		}
		hasReference = true
		sym, _, _ := lengthSymbolFor(t.Length)
		litFreq[sym]++
		dsym, _, _ := distanceSymbolFor(t.Distance)
		distFreq[dsym]++
	}
	litLengths := huffman.BuildLengths(litFreq)
	distLengths := huffman.BuildLengths(distFreq)
	litLengths = trimTrailingZero(litLengths, 257)
	distLengths = trimTrailingZero(distLengths, 1)
	if !hasReference {
		// No references in this block: transmit a single dummy 1-bit
		// distance code, the same convention zlib uses and that
		// Parser.distanceDecoderFor accepts on the read side.
		distLengths = []uint8{1}
	}

	w.WriteBits(b2u(final), 1)
	w.WriteBits(2, 2) // BTYPE = 10
	writeDynamicHeader(w, litLengths, distLengths)

	litCodes := huffman.Codes(litLengths)
	distCodes := huffman.Codes(distLengths)
	emitTokens(w, tokens, litCodes, litLengths, distCodes, distLengths)
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// trimTrailingZero drops unused trailing symbols down to a floor of
// minLen entries, matching what real encoders transmit for HLIT/HDIST
// (no point declaring lengths for symbols nobody uses).
func trimTrailingZero(lengths []uint8, minLen int) []uint8 {
	n := len(lengths)
	for n > minLen && lengths[n-1] == 0 {
		n--
	}
	return lengths[:n]
}

func emitTokens(w *bitio.Writer, tokens []Token, litCodes []uint16, litLengths []uint8, distCodes []uint16, distLengths []uint8) {
	for _, t := range tokens {
		if t.Kind == Literal {
			huffman.Emit(w, litCodes, litLengths, int(t.Literal))
			continue
		}
		sym, extra, extraBits := lengthSymbolFor(t.Length)
		huffman.Emit(w, litCodes, litLengths, sym)
		if extraBits > 0 {
			w.WriteBits(uint32(extra), uint(extraBits))
		}
		dsym, dextra, dextraBits := distanceSymbolFor(t.Distance)
		huffman.Emit(w, distCodes, distLengths, dsym)
		if dextraBits > 0 {
			w.WriteBits(uint32(dextra), uint(dextraBits))
		}
	}
	huffman.Emit(w, litCodes, litLengths, 256) // end-of-block
}

// writeDynamicHeader transmits HLIT/HDIST/HCLEN and the RLE-encoded,
// Huffman-coded code-length alphabet per RFC 1951 section 3.2.7.
func writeDynamicHeader(w *bitio.Writer, litLengths, distLengths []uint8) {
	hlit := len(litLengths) - 257
	hdist := len(distLengths) - 1

	combined := make([]uint8, 0, len(litLengths)+len(distLengths))
	combined = append(combined, litLengths...)
	combined = append(combined, distLengths...)

	symbols, extras := rleEncode(combined)

	clFreq := make([]int, 19)
	for _, s := range symbols {
		clFreq[s]++
	}
	clLengths := huffman.BuildLengths(clFreq)
	for len(clLengths) < 19 {
		clLengths = append(clLengths, 0)
	}

	hclen := 19
	for hclen > 4 && clLengths[codeLengthOrder[hclen-1]] == 0 {
		hclen--
	}

	w.WriteBits(uint32(hlit), 5)
	w.WriteBits(uint32(hdist), 5)
	w.WriteBits(uint32(hclen-4), 4)
	for i := 0; i < hclen; i++ {
		w.WriteBits(uint32(clLengths[codeLengthOrder[i]]), 3)
	}

	clCodes := huffman.Codes(clLengths)
	for i, sym := range symbols {
		huffman.Emit(w, clCodes, clLengths, int(sym))
		switch sym {
		case 16:
			w.WriteBits(uint32(extras[i]), 2)
		case 17:
			w.WriteBits(uint32(extras[i]), 3)
		case 18:
			w.WriteBits(uint32(extras[i]), 7)
		}
	}
}

// rleEncode compresses a code-length vector into the 0-18 alphabet of
// RFC 1951 section 3.2.7: runs of a repeated nonzero length become
// symbol 16 (2 extra bits, a repeat of 3-6), runs of zero become 17
// (short run) or 18 (long run).
func rleEncode(lengths []uint8) (symbols []uint8, extras []int) {
	n := len(lengths)
	for i := 0; i < n; {
		l := lengths[i]
		total := 1
		for i+total < n && lengths[i+total] == l {
			total++
		}
		run := total
		if l == 0 {
			for run > 0 {
				switch {
				case run >= 11:
					take := run
					if take > 138 {
						take = 138
					}
					symbols = append(symbols, 18)
					extras = append(extras, take-11)
					run -= take
				case run >= 3:
					take := run
					if take > 10 {
						take = 10
					}
					symbols = append(symbols, 17)
					extras = append(extras, take-3)
					run -= take
				default:
					symbols = append(symbols, 0)
					extras = append(extras, 0)
					run--
				}
			}
		} else {
			symbols = append(symbols, l)
			extras = append(extras, 0)
			run--
			for run > 0 {
				switch {
				case run >= 3:
					take := run
					if take > 6 {
						take = 6
					}
					symbols = append(symbols, 16)
					extras = append(extras, take-3)
					run -= take
				default:
					symbols = append(symbols, l)
					extras = append(extras, 0)
					run--
				}
			}
		}
		i += total
	}
	return symbols, extras
}
