// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package load

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/bloomjoin/brjperf/joinfmt"
)

// Dir is a Source reading <dir>/<platform>.csv, or, if that does not
// exist, the snappy-compressed <dir>/<platform>.csv.sz.
type Dir string

func (d Dir) String() string {
	return "directory " + string(d)
}

func (d Dir) Records(ctx context.Context, platform string) ([]*joinfmt.Record, []error, error) {
	for _, name := range FileNames(platform) {
		path := filepath.Join(string(d), name)
		f, err := joinfmt.OpenRecords(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		return joinfmt.ReadAll(f, path, platform)
	}
	return nil, nil, &InputNotFoundError{Platform: platform, Source: d.String()}
}
