package huffman

// Fixed Huffman tables per RFC 1951 section 3.2.6, built once as
// process-wide constants (spec.md's "Global state" note: these are
// read-only after construction).

var (
	FixedLiteralDecoder *Decoder
	FixedDistanceDecoder *Decoder

	fixedLiteralLengths  [288]uint8
	fixedDistanceLengths [32]uint8
	fixedLiteralCodes    []uint16
	fixedDistanceCodes   []uint16
)

func init() {
	for i := 0; i < 288; i++ {
		switch {
		case i < 144:
			fixedLiteralLengths[i] = 8
		case i < 256:
			fixedLiteralLengths[i] = 9
		case i < 280:
			fixedLiteralLengths[i] = 7
		default:
			fixedLiteralLengths[i] = 8
		}
	}
	for i := range fixedDistanceLengths {
		fixedDistanceLengths[i] = 5
	}

	var err error
	FixedLiteralDecoder, err = New(fixedLiteralLengths[:])
	if err != nil {
		panic("huffman: bad fixed literal table: " + err.Error())
	}
	FixedDistanceDecoder, err = New(fixedDistanceLengths[:])
	if err != nil {
		panic("huffman: bad fixed distance table: " + err.Error())
	}
	fixedLiteralCodes = Codes(fixedLiteralLengths[:])
	fixedDistanceCodes = Codes(fixedDistanceLengths[:])
}

// FixedLiteralLengths and FixedDistanceLengths expose the canonical
// length vectors so the encoder can emit fixed-table blocks.
func FixedLiteralLengths() []uint8  { return fixedLiteralLengths[:] }
func FixedDistanceLengths() []uint8 { return fixedDistanceLengths[:] }
func FixedLiteralCodes() []uint16   { return fixedLiteralCodes }
func FixedDistanceCodes() []uint16  { return fixedDistanceCodes }
