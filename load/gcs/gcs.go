// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gcs provides a load.Source backed by Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/bloomjoin/brjperf/joinfmt"
	"github.com/bloomjoin/brjperf/load"
)

// Source reads the records of a platform from the object
// <Prefix><platform>.csv, or <Prefix><platform>.csv.sz, in a bucket.
type Source struct {
	bucket string
	prefix string
	open   func(ctx context.Context, object string) (io.ReadCloser, error)
}

// New returns a Source reading objects from bucket through client.
func New(client *storage.Client, bucket, prefix string) *Source {
	h := client.Bucket(bucket)
	return &Source{
		bucket: bucket,
		prefix: prefix,
		open: func(ctx context.Context, object string) (io.ReadCloser, error) {
			r, err := h.Object(object).NewReader(ctx)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
	}
}

func (s *Source) String() string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, s.prefix)
}

func (s *Source) Records(ctx context.Context, platform string) ([]*joinfmt.Record, []error, error) {
	for _, name := range load.FileNames(platform) {
		object := s.prefix + name
		r, err := s.open(ctx, object)
		if errors.Is(err, storage.ErrObjectNotExist) {
			continue
		} else if err != nil {
			return nil, nil, fmt.Errorf("gs://%s/%s: %w", s.bucket, object, err)
		}
		defer r.Close()
		return load.ReadRecords(r, object, platform)
	}
	return nil, nil, &load.InputNotFoundError{Platform: platform, Source: s.String()}
}
