// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package query

import (
	"math"
	"strings"
	"testing"

	"github.com/bloomjoin/brjperf/joinfmt"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const testRuns = `platform,bloom-filter,r-size,s-size,s-sel,cpu-mapping,nthreads,nsec-per-tuple
gondor,no,1000,8000,0.1,single,1,10
gondor,basic,1000,8000,0.1,single,1,8
gondor,no,1000,8000,0.1,numa,2,6
gondor,blocked,1000,8000,0.5,numa,2,5
gondor,basic,1000,8000,0.1,single,2,4
gondor,no,1000,8000,0.1,single,2,
`

func readRuns(t *testing.T) []*joinfmt.Record {
	t.Helper()
	recs, warnings, err := joinfmt.ReadAll(strings.NewReader(testRuns), "runs", "")
	if err != nil || len(warnings) != 0 {
		t.Fatalf("reading runs: %v %v", err, warnings)
	}
	return recs
}

func lines(recs []*joinfmt.Record) []int {
	var out []int
	for _, r := range recs {
		_, line := r.Pos()
		out = append(out, line)
	}
	return out
}

func TestWhereEquals(t *testing.T) {
	recs := readRuns(t)

	proto := joinfmt.NewRecord()
	proto.Set(joinfmt.ColMapping, "single")
	proto.Set(joinfmt.ColFilter, "basic")
	if diff := cmp.Diff([]int{3, 6}, lines(WhereEquals(recs, proto))); diff != "" {
		t.Errorf("implicit columns (-want +got):\n%s", diff)
	}

	// Only the named columns are compared.
	if diff := cmp.Diff([]int{2, 3, 6, 7}, lines(WhereEquals(recs, proto, joinfmt.ColMapping))); diff != "" {
		t.Errorf("explicit columns (-want +got):\n%s", diff)
	}

	// An absent prototype column matches absent values.
	proto = joinfmt.NewRecord()
	if diff := cmp.Diff([]int{7}, lines(WhereEquals(recs, proto, joinfmt.ColNsecPerTuple))); diff != "" {
		t.Errorf("absent column (-want +got):\n%s", diff)
	}

	// Selection does not modify its input.
	if len(recs) != 6 || recs[0].NsecPerTuple != 10 {
		t.Errorf("input modified")
	}
}

func TestWhere(t *testing.T) {
	recs := readRuns(t)
	got := Where(recs, func(r *joinfmt.Record) bool { return r.Threads == 2 })
	if diff := cmp.Diff([]int{4, 5, 6, 7}, lines(got)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestGroupBy(t *testing.T) {
	recs := readRuns(t)
	groups := GroupBy(recs, joinfmt.ColMapping, joinfmt.ColSSel)

	type group struct {
		Key   string
		Lines []int
	}
	var got []group
	for _, g := range groups {
		got = append(got, group{g.Key.String(), lines(g.Records)})
	}
	want := []group{
		{"cpu-mapping=single s-sel=0.1", []int{2, 3, 6, 7}},
		{"cpu-mapping=numa s-sel=0.1", []int{4}},
		{"cpu-mapping=numa s-sel=0.5", []int{5}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	k := groups[2].Key
	if k.Get(joinfmt.ColSSel) != "0.5" || k.Get(joinfmt.ColRSize) != "" {
		t.Errorf("unexpected key values in %s", k)
	}
	if diff := cmp.Diff([]joinfmt.Column{joinfmt.ColMapping, joinfmt.ColSSel}, k.Columns()); diff != "" {
		t.Errorf("key columns (-want +got):\n%s", diff)
	}

	if all := GroupBy(recs); len(all) != 1 || len(all[0].Records) != len(recs) {
		t.Errorf("GroupBy with no columns should produce one group")
	}
}

func TestProject(t *testing.T) {
	recs := readRuns(t)
	got := Project(recs[4:], joinfmt.ColFilter, joinfmt.ColThreads, joinfmt.ColNsecPerTuple)
	want := [][]string{{"basic", "2", "4"}, {"no", "2", ""}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestRollup(t *testing.T) {
	recs := readRuns(t)
	rows := Rollup(recs, joinfmt.ColNsecPerTuple, joinfmt.ColMapping)

	type row struct {
		Key                    string
		Count                  int
		Mean, Median, Min, Max float64
	}
	var got []row
	for _, r := range rows {
		got = append(got, row{r.Key.String(), r.Count, r.Mean, r.Median, r.Min, r.Max})
	}
	want := []row{
		{"cpu-mapping=single", 3, 22.0 / 3, 8, 4, 10},
		{"cpu-mapping=numa", 2, 5.5, 5.5, 5, 6},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	if rows := Rollup(recs, joinfmt.ColSpeedup, joinfmt.ColMapping); rows != nil {
		t.Errorf("rollup of absent metric = %v, want nil", rows)
	}
}

func TestTable(t *testing.T) {
	recs := readRuns(t)
	tab := Table(recs, joinfmt.ColFilter, joinfmt.ColNsecPerTuple)
	if tab.Len() != len(recs) {
		t.Fatalf("got %d rows, want %d", tab.Len(), len(recs))
	}
	if diff := cmp.Diff([]string{"bloom-filter", "nsec-per-tuple"}, tab.Columns()); diff != "" {
		t.Errorf("columns (-want +got):\n%s", diff)
	}
	ns := tab.MustColumn("nsec-per-tuple").([]float64)
	if ns[0] != 10 || !math.IsNaN(ns[5]) {
		t.Errorf("unexpected nsec-per-tuple column %v", ns)
	}
}
