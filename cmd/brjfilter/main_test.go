// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bloomjoin/brjperf/derive"
	"github.com/bloomjoin/brjperf/joinfmt"
	"github.com/bloomjoin/brjperf/query"
)

const runs = `bloom-filter,r-size,s-size,cpu-mapping,nthreads,nsec-per-tuple
no,1000,8000,single,1,10
basic,1000,8000,single,1,8
no,1000,4000,numa,1,nope
no,1000,8000,single,2,4
`

func filterRuns(t *testing.T, q string, opts *derive.Options) (out []*joinfmt.Record, stderr string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.csv")
	if err := os.WriteFile(path, []byte(runs), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := query.NewFilter(q)
	if err != nil {
		t.Fatal(err)
	}
	var w, errw strings.Builder
	files := joinfmt.Files{Paths: []string{"gondor=" + path}, AllowLabels: true}
	if err := brjfilter(&w, &errw, &files, f, opts); err != nil {
		t.Fatal(err)
	}
	out, _, err = joinfmt.ReadAll(strings.NewReader(w.String()), "out", "")
	if err != nil {
		t.Fatal(err)
	}
	return out, errw.String()
}

func TestFilter(t *testing.T) {
	out, stderr := filterRuns(t, "bloom-filter:no", nil)
	if len(out) != 2 {
		t.Fatalf("got %d runs, want 2", len(out))
	}
	for _, r := range out {
		if r.Platform != "gondor" || r.Filter != joinfmt.NoFilter {
			t.Errorf("unexpected run %+v", r)
		}
		if r.Has(joinfmt.ColSpeedup) {
			t.Errorf("underived output has speedup")
		}
	}
	if !strings.Contains(stderr, "runs.csv:4:") {
		t.Errorf("missing syntax error in stderr %q", stderr)
	}
}

func TestFilterDerived(t *testing.T) {
	out, _ := filterRuns(t, "speedup:2.5", &derive.Options{})
	if len(out) != 1 || out[0].Threads != 2 || out[0].NsecPerTuple != 4 {
		t.Fatalf("unexpected runs %v", out)
	}
	if out[0].SRRatio != 8 {
		t.Errorf("s-r-ratio = %d, want 8", out[0].SRRatio)
	}
}
