// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v3"
	"github.com/grailbio/base/file"
)

// openFileOrURL resolves name to a reader. Local paths and s3:// paths go
// through grailbio's file package; http(s):// URLs are fetched directly.
// Remote opens (s3, http) are retried with backoff since they are the one
// place in the pipeline that talks to a flaky external service.
func openFileOrURL(ctx context.Context, name string) (io.Reader, int64, func(context.Context) error, error) {
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		var resp *http.Response
		op := func() error {
			r, err := http.Get(name)
			if err != nil {
				return err
			}
			resp = r
			return nil
		}
		if err := backoff.Retry(op, remoteBackoff()); err != nil {
			return nil, 0, nil, err
		}
		return resp.Body, resp.ContentLength,
			func(context.Context) error { return resp.Body.Close() }, nil
	}

	remote := strings.Contains(name, "://")

	var f file.File
	var info file.Info
	op := func() error {
		var err error
		if f, err = file.Open(ctx, name); err != nil {
			return err
		}
		info, err = file.Stat(ctx, name)
		return err
	}
	if remote {
		if err := backoff.Retry(op, remoteBackoff()); err != nil {
			return nil, 0, nil, err
		}
	} else if err := op(); err != nil {
		return nil, 0, nil, err
	}
	return f.Reader(ctx), info.Size(), f.Close, nil
}

func createFile(ctx context.Context, name string) (io.Writer, func(context.Context) error, error) {
	if len(name) == 0 {
		return os.Stdout, func(context.Context) error { return nil }, nil
	}
	f, err := file.Create(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	return f.Writer(ctx), f.Close, nil
}

func remoteBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second
	return b
}
