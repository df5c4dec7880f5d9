package deflate

import "errors"

// ErrMalformed covers all forms of structurally invalid DEFLATE input:
// a reserved BTYPE, a Stored block whose NLEN does not complement LEN,
// or a decoded literal/length or distance symbol outside its alphabet
// (286, 287, 30, 31).
var ErrMalformed = errors.New("deflate: malformed block")

// ErrTruncated is returned when the bitstream ends before a block's
// end-of-block symbol (or a Stored block's declared length) is reached.
var ErrTruncated = errors.New("deflate: truncated stream")
