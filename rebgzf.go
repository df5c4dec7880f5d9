// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package rebgzf implements half-decompression transcoding of a gzip
// byte stream into BGZF (Blocked GZip Format): the input's DEFLATE
// payload is parsed into its LZ77 token stream, never materialized as
// plaintext, and the tokens are re-emitted into fresh, size-bounded
// DEFLATE blocks wrapped as BGZF members.
package rebgzf

import (
	"context"
	"io"
)

// Transcode reads a gzip byte stream from r and writes the equivalent
// BGZF byte stream to w, per the options given. It chooses the
// single-threaded or parallel engine based on Concurrency.
func Transcode(ctx context.Context, r io.Reader, w io.Writer, opts ...Option) error {
	o := defaultOpts()
	for _, fn := range opts {
		fn(&o)
	}
	if err := validate(&o); err != nil {
		return err
	}
	if o.concurrency == 1 {
		return runSingleThreaded(r, w, &o)
	}
	return runParallel(ctx, r, w, &o)
}

func validate(o *transcodeOpts) error {
	if o.level < 1 || o.level > 9 {
		return newError(KindConfigError, errInvalidLevel)
	}
	if o.blockSize <= 0 || o.blockSize >= 65536 {
		return newError(KindConfigError, errInvalidBlockSize)
	}
	// spec.md §4.6/§6: --format fastq forces L>=6, not just record-aligned
	// splitting.
	if o.format == FormatFASTQ && o.level < 6 {
		o.level = 6
	}
	return nil
}
