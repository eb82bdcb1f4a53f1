// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	_ "github.com/go-sql-driver/mysql"

	"github.com/bloomjoin/brjperf/config"
	"github.com/bloomjoin/brjperf/load"
	"github.com/bloomjoin/brjperf/load/gcs"
	"github.com/bloomjoin/brjperf/load/s3"
	"github.com/bloomjoin/brjperf/store"
	_ "github.com/bloomjoin/brjperf/store/sqlite3"
)

// openSource opens the record source selected by cfg. The returned
// function releases it.
func openSource(ctx context.Context, cfg config.Config) (load.Source, func(), error) {
	src := cfg.Source
	switch src.Kind {
	case config.KindDir:
		return load.Dir(src.Dir), func() {}, nil

	case config.KindSQL:
		db, err := store.OpenSQL(src.SQL.Driver, src.SQL.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("opening record store: %w", err)
		}
		return db, func() { db.Close() }, nil

	case config.KindGCS:
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("creating GCS client: %w", err)
		}
		return gcs.New(client, src.GCS.Bucket, src.GCS.Prefix), func() { client.Close() }, nil

	case config.KindS3:
		s, err := s3.New(ctx, src.S3.Bucket, src.S3.Prefix, s3.Options{
			Region:   src.S3.Region,
			Endpoint: src.S3.Endpoint,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown source kind %q", src.Kind)
}
