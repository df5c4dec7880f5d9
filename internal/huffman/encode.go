package huffman

import "sort"

// BuildLengths derives a canonical, length-limited (<= maxCodeLen bits)
// code-length vector from per-symbol frequencies, for use when the BGZF
// writer builds a dynamic Huffman table from a block's own symbol
// frequencies (spec.md §4.8, L >= 4). It follows the classic two-phase
// approach: build an unrestricted Huffman tree by repeatedly merging the
// two least-frequent nodes (as in the teacher's canonical-code sorting in
// internal/bzip2/huffman.go), then clamp and redistribute any code lengths
// that exceed maxCodeLen using the standard overflow-correction loop
// (the same technique used by zlib's trees.c gen_bitlen, reimplemented
// here since package-limited Huffman assignment is the algorithm being
// implemented, not something an ecosystem library substitutes for).
func BuildLengths(freq []int) []uint8 {
	n := len(freq)
	lengths := make([]uint8, n)

	type node struct {
		weight   int
		symIndex int // >=0 for a leaf symbol, -1 for an internal node
		left     int
		right    int
	}
	nodes := make([]node, 0, 2*n)
	var leaves []int
	for sym, f := range freq {
		if f == 0 {
			continue
		}
		nodes = append(nodes, node{weight: f, symIndex: sym, left: -1, right: -1})
		leaves = append(leaves, len(nodes)-1)
	}
	switch len(leaves) {
	case 0:
		return lengths
	case 1:
		lengths[nodes[leaves[0]].symIndex] = 1
		return lengths
	}

	active := append([]int(nil), leaves...)
	sort.SliceStable(active, func(i, j int) bool {
		a, b := nodes[active[i]], nodes[active[j]]
		if a.weight != b.weight {
			return a.weight < b.weight
		}
		return active[i] < active[j]
	})

	for len(active) > 1 {
		a, b := active[0], active[1]
		merged := node{weight: nodes[a].weight + nodes[b].weight, symIndex: -1, left: a, right: b}
		nodes = append(nodes, merged)
		active = active[2:]
		// Insert the merged node keeping `active` sorted by weight; a
		// linear insert is fine since DEFLATE alphabets are <= 288
		// symbols.
		idx := len(nodes) - 1
		pos := sort.Search(len(active), func(i int) bool {
			return nodes[active[i]].weight >= merged.weight
		})
		active = append(active, 0)
		copy(active[pos+1:], active[pos:])
		active[pos] = idx
	}

	root := active[0]
	var walk func(i, depth int)
	walk = func(i, depth int) {
		nd := nodes[i]
		if nd.left < 0 && nd.right < 0 {
			d := depth
			if d == 0 {
				d = 1 // single-symbol alphabet still needs a 1-bit code
			}
			lengths[nd.symIndex] = uint8(d)
			return
		}
		walk(nd.left, depth+1)
		walk(nd.right, depth+1)
	}
	walk(root, 0)

	limitLengths(lengths, maxCodeLen)
	return lengths
}

// limitLengths clamps any code length exceeding limit and redistributes
// the resulting Kraft-inequality excess by lengthening codes below the
// limit, starting from the longest, the standard zlib-style overflow
// correction.
func limitLengths(lengths []uint8, limit int) {
	var counts [maxCodeLen + 2]int
	overflow := 0
	for i, l := range lengths {
		if l == 0 {
			continue
		}
		if int(l) > limit {
			lengths[i] = uint8(limit)
			overflow += int(l) - limit
			l = uint8(limit)
		}
		counts[l]++
	}
	if overflow == 0 {
		return
	}

	// Borrow Kraft "budget" from shorter codes to pay for the codes we
	// clamped, per bit-length starting just below the limit: each step
	// splits one shorter code into two one bit longer and drops one code
	// of the limit length, lowering the Kraft sum by one 2^-limit unit.
	excess := -(1 << uint(limit))
	for bits := 1; bits <= limit; bits++ {
		excess += counts[bits] << uint(limit-bits)
	}
	for bits := limit - 1; bits > 0 && excess > 0; bits-- {
		for counts[bits] > 0 && excess > 0 {
			counts[bits]--
			counts[bits+1] += 2
			counts[limit]--
			excess--
		}
	}

	// Reassign lengths to symbols, longest-lived symbols (by original
	// depth, i.e. lowest frequency) get the longest remaining codes; we
	// approximate this by sorting symbols by their (now clamped) length
	// descending and redistributing counts from `counts`.
	type symLen struct {
		sym int
		len uint8
	}
	var syms []symLen
	for i, l := range lengths {
		if l > 0 {
			syms = append(syms, symLen{i, l})
		}
	}
	sort.SliceStable(syms, func(i, j int) bool { return syms[i].len > syms[j].len })

	bits := limit
	for _, s := range syms {
		for bits > 0 && counts[bits] == 0 {
			bits--
		}
		lengths[s.sym] = uint8(bits)
		counts[bits]--
	}
}

// Codes returns the canonical (code, length) pairs for a code-length
// vector, MSB-first as assigned by RFC 1951 3.2.2 — i.e. before the
// bit-reversal a LSB-first bitstream writer must apply when emitting
// them (see Emit).
func Codes(lengths []uint8) []uint16 {
	var blCount [maxCodeLen + 1]int
	for _, l := range lengths {
		if l > 0 {
			blCount[l]++
		}
	}
	var nextCode [maxCodeLen + 1]int
	code := 0
	for bits := 1; bits <= maxCodeLen; bits++ {
		code = (code + blCount[bits-1]) << 1
		nextCode[bits] = code
	}
	codes := make([]uint16, len(lengths))
	for sym, l := range lengths {
		if l == 0 {
			continue
		}
		codes[sym] = uint16(nextCode[l])
		nextCode[l]++
	}
	return codes
}

// bitSink is the minimal interface the encoder needs; internal/bitio.Writer
// satisfies it.
type bitSink interface {
	WriteBits(code uint32, n uint)
}

// Emit writes symbol's canonical code to w, reversing it into the
// LSB-first bit order DEFLATE transmits codes in.
func Emit(w bitSink, codes []uint16, lengths []uint8, symbol int) {
	l := lengths[symbol]
	w.WriteBits(reverseBits(uint32(codes[symbol]), int(l)), uint(l))
}
