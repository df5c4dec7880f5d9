package deflate

// Length and distance base/extra-bits tables per RFC 1951 section 3.2.5,
// indexed by (symbol - 257) for lengths and by symbol for distances. The
// values themselves are ground truth from the pack's flatecut package
// (lBases/lExtras/dBases/dExtras), which cites the same RFC section.
var (
	lengthBase = [29]int{
		3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
		35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
	}
	lengthExtraBits = [29]uint{
		0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
	}
	distanceBase = [30]int{
		1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
		257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
	}
	distanceExtraBits = [30]uint{
		0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
		7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
	}
	// codeLengthOrder is the order in which code-length-code lengths are
	// transmitted in a dynamic Huffman header (RFC 1951 section 3.2.7).
	codeLengthOrder = [19]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}
)

// lengthSymbolFor returns the literal/length alphabet symbol (257..285)
// and extra-bit value needed to encode length (3..258).
func lengthSymbolFor(length int) (sym int, extra, extraBits int) {
	for i := len(lengthBase) - 1; i >= 0; i-- {
		if length >= lengthBase[i] {
			return 257 + i, length - lengthBase[i], int(lengthExtraBits[i])
		}
	}
	panic("deflate: length out of range")
}

// distanceSymbolFor returns the distance alphabet symbol (0..29) and
// extra-bit value needed to encode distance (1..32768).
func distanceSymbolFor(distance int) (sym int, extra, extraBits int) {
	for i := len(distanceBase) - 1; i >= 0; i-- {
		if distance >= distanceBase[i] {
			return i, distance - distanceBase[i], int(distanceExtraBits[i])
		}
	}
	panic("deflate: distance out of range")
}
