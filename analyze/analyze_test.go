// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analyze

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/bloomjoin/brjperf/derive"
	"github.com/bloomjoin/brjperf/joinfmt"
	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// rec builds a record from column name/value pairs.
func rec(kvs ...any) *joinfmt.Record {
	r := joinfmt.NewRecord()
	for i := 0; i < len(kvs); i += 2 {
		c, ok := joinfmt.ParseColumn(kvs[i].(string))
		if !ok {
			panic("unknown column " + kvs[i].(string))
		}
		if err := r.Set(c, fmt.Sprint(kvs[i+1])); err != nil {
			panic(err)
		}
	}
	return r
}

// join returns a run of the join on a 250000 x 2000000 input.
func join(filter, mapping string, threads int, nsec float64, extra ...any) *joinfmt.Record {
	kvs := []any{
		"platform", "gondor", "bloom-filter", filter, "r-size", 250000, "s-size", 2000000,
		"s-sel", 0.1, "cpu-mapping", mapping, "nthreads", threads, "nsec-per-tuple", nsec,
	}
	if filter != "no" {
		kvs = append(kvs, "bloom-size", 1<<26, "bloom-hashes", 2, "filtered", 300000)
	}
	return rec(append(kvs, extra...)...)
}

func derived(recs ...*joinfmt.Record) []*joinfmt.Record {
	return derive.Derive(recs, derive.Options{}).Records
}

func TestSuperiorityScenario(t *testing.T) {
	recs := derived(
		join("no", "single", 4, 10),
		join("basic", "single", 4, 8),
		join("blocked", "single", 4, 9),
	)
	rep := Superiority(recs)
	if len(rep.Warnings) != 0 {
		t.Fatalf("unexpected warnings %v", rep.Warnings)
	}
	want := []RatioStat{{Ratio: 8, Superior: 1, Total: 1, Fraction: 1}}
	if diff := cmp.Diff(want, rep.Ratios); diff != "" {
		t.Errorf("ratios differ (-want +got):\n%s", diff)
	}
	if len(rep.Groups) != 1 || rep.Groups[0].Best != recs[1] || rep.Groups[0].Runs != 3 {
		t.Errorf("unexpected groups %+v", rep.Groups)
	}
	if st, ok := rep.Ratio(8); !ok || !cmp.Equal(st, want[0]) {
		t.Errorf("Ratio(8) = %+v, %v", st, ok)
	}
	if _, ok := rep.Ratio(4); ok {
		t.Errorf("Ratio(4) found a ratio that does not occur")
	}
}

func TestSuperiority(t *testing.T) {
	recs := derived(
		join("no", "single", 4, 10),
		join("basic", "single", 4, 8),
		join("no", "numa", 4, 5),
		join("basic", "numa", 4, 6),
		// A different ratio and selectivity.
		join("no", "numa", 4, 5, "s-size", 500000),
		join("blocked", "numa", 4, 5, "s-size", 500000),
		join("no", "numa", 4, 7, "s-sel", 0.5),
	)
	rep := Superiority(recs)
	want := []RatioStat{
		{Ratio: 2, Superior: 0, Total: 1, Fraction: 0},
		{Ratio: 8, Superior: 1, Total: 3, Fraction: 1.0 / 3},
	}
	if diff := cmp.Diff(want, rep.Ratios); diff != "" {
		t.Errorf("ratios differ (-want +got):\n%s", diff)
	}

	var keys []ComparisonKey
	for _, g := range rep.Groups {
		keys = append(keys, g.Key)
	}
	wantKeys := []ComparisonKey{
		{250000, 2000000, 0.1, "single"},
		{250000, 2000000, 0.1, "numa"},
		{250000, 500000, 0.1, "numa"},
		{250000, 2000000, 0.5, "numa"},
	}
	if diff := cmp.Diff(wantKeys, keys); diff != "" {
		t.Errorf("groups differ (-want +got):\n%s", diff)
	}
	// The tie in the third group goes to the unfiltered run, which
	// came first.
	if rep.Groups[2].Superior {
		t.Errorf("tie should go to the first run")
	}

	scen := rep.Scenarios()
	if len(scen) != 1 || scen[0] != recs[1] {
		t.Errorf("unexpected scenarios %v", scen)
	}
	if got := Scenarios(recs); len(got) != 1 || got[0] != recs[1] {
		t.Errorf("Scenarios(recs) = %v", got)
	}
}

func TestSuperiorityMalformed(t *testing.T) {
	noLatency := join("basic", "single", 4, 1)
	noLatency.SetAbsent(joinfmt.ColNsecPerTuple)
	noRatio := join("no", "numa", 4, 1)

	recs := derived(join("no", "single", 4, 10), noLatency, noRatio)
	recs[2].SetAbsent(joinfmt.ColSRRatio)

	rep := Superiority(recs)
	if len(rep.Warnings) != 2 {
		t.Fatalf("want 2 warnings, got %v", rep.Warnings)
	}
	var missingCols [][]joinfmt.Column
	for _, w := range rep.Warnings {
		var me *MalformedRecordError
		if !errors.As(w, &me) || !errors.Is(w, ErrMalformedRecord) {
			t.Fatalf("unexpected warning %v", w)
		}
		missingCols = append(missingCols, me.Missing)
	}
	want := [][]joinfmt.Column{{joinfmt.ColNsecPerTuple}, {joinfmt.ColSRRatio}}
	if diff := cmp.Diff(want, missingCols); diff != "" {
		t.Errorf("missing columns differ (-want +got):\n%s", diff)
	}
	if len(rep.Groups) != 2 {
		t.Errorf("want 2 groups, got %d", len(rep.Groups))
	}
	wantRatios := []RatioStat{{Ratio: 8, Superior: 0, Total: 1}}
	if diff := cmp.Diff(wantRatios, rep.Ratios); diff != "" {
		t.Errorf("ratios differ (-want +got):\n%s", diff)
	}
}

func TestSuperiorityEmpty(t *testing.T) {
	rep := Superiority(nil)
	if len(rep.Groups) != 0 || len(rep.Ratios) != 0 || len(rep.Warnings) != 0 {
		t.Errorf("unexpected report %+v", rep)
	}
}

func TestPropertySuperiorityFraction(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	filters := []string{"no", "basic", "blocked"}
	mappings := []string{"single", "numa", "all"}

	properties.Property("fractions lie in [0, 1] and count every group once", prop.ForAll(
		func(lat []float64, ratios []int) bool {
			var recs []*joinfmt.Record
			for i, l := range lat {
				s := 250000
				if i < len(ratios) {
					s *= ratios[i]
				}
				recs = append(recs, join(filters[i%3], mappings[(i/3)%3], 1, l, "s-size", s))
			}
			rep := Superiority(derived(recs...))
			total := 0
			for i, st := range rep.Ratios {
				if st.Fraction < 0 || st.Fraction > 1 || st.Superior > st.Total {
					return false
				}
				if i > 0 && rep.Ratios[i-1].Ratio >= st.Ratio {
					return false
				}
				total += st.Total
			}
			return total == len(rep.Groups) && len(rep.Warnings) == 0
		},
		gen.SliceOf(gen.Float64Range(0.1, 100)),
		gen.SliceOf(gen.IntRange(1, 16)),
	))

	properties.TestingRun(t)
}

func TestFPRDeviation(t *testing.T) {
	mk := func(filter string, k int, emp, theo float64, mapping string) *joinfmt.Record {
		return rec("bloom-filter", filter, "r-size", 100, "s-size", 1000, "s-sel", 0.1,
			"bloom-size", 4096, "bloom-hashes", k, "cpu-mapping", mapping,
			"fpr_emp", emp, "fpr_theo", theo)
	}
	recs := []*joinfmt.Record{
		mk("basic", 1, 11, 10, "single"),
		mk("basic", 1, 50, 10, "numa"), // duplicate configuration
		mk("basic", 2, 4, 5, "single"),
		mk("basic", 3, 3, 2, "single"),
		mk("blocked", 1, 10, 10, "single"),
		mk("no", 1, 0, 0, "single"),
		rec("bloom-filter", "blocked", "r-size", 1),
	}
	rep := FPRDeviation(recs)
	if len(rep.Warnings) != 1 {
		t.Errorf("want 1 warning, got %v", rep.Warnings)
	}
	if len(rep.Variants) != 2 {
		t.Fatalf("want 2 variants, got %+v", rep.Variants)
	}
	basic, blocked := rep.Variants[0], rep.Variants[1]
	// Deviations are 10%, 20%, 50%.
	near := func(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
	if basic.Filter != joinfmt.BasicFilter || basic.Configs != 3 {
		t.Errorf("unexpected basic stat %+v", basic)
	}
	if !near(basic.Median, 20) || !near(basic.Mean, 80.0/3) || !near(basic.MaxAbsDiff, 1) {
		t.Errorf("unexpected basic stat %+v", basic)
	}
	if want := math.Sqrt((math.Pow(10-80.0/3, 2) + math.Pow(20-80.0/3, 2) + math.Pow(50-80.0/3, 2)) / 2); !near(basic.StdDev, want) {
		t.Errorf("basic stddev = %v, want %v", basic.StdDev, want)
	}
	if blocked.Configs != 1 || blocked.Median != 0 || blocked.StdDev != 0 {
		t.Errorf("unexpected blocked stat %+v", blocked)
	}
	if !near(rep.MaxScaledDeviation, 100) {
		t.Errorf("max scaled deviation = %v, want 100", rep.MaxScaledDeviation)
	}
}

func TestThreadScaling(t *testing.T) {
	big := func(r *joinfmt.Record) *joinfmt.Record {
		r.Set(joinfmt.ColBloomSize, "8000000000")
		return r
	}
	recs := derived(
		join("no", "single", 1, 10),
		join("no", "single", 2, 6),
		join("basic", "single", 2, 4),
		join("basic", "single", 1, 7),
		join("basic", "single", 2, 5, "bloom-hashes", 3),
		big(join("blocked", "single", 2, 3)),
		big(join("blocked", "single", 1, 5)),
		join("no", "numa", 1, 9),
		join("blocked", "numa", 1, 8),
	)

	s := ThreadScaling(recs)
	if len(s.Warnings) != 0 {
		t.Fatalf("unexpected warnings %v", s.Warnings)
	}
	type panel struct {
		Mapping    joinfmt.CPUMapping
		CacheUsage joinfmt.CacheUsage
		Best       int
		Filtered   []int
		Unfiltered []int
	}
	idx := func(rs []*joinfmt.Record) []int {
		var out []int
		for _, r := range rs {
			for i, x := range recs {
				if r == x {
					out = append(out, i)
				}
			}
		}
		return out
	}
	var got []panel
	for _, p := range s.Panels {
		got = append(got, panel{p.Mapping, p.CacheUsage, idx([]*joinfmt.Record{p.Best})[0], idx(p.Filtered), idx(p.Unfiltered)})
	}
	want := []panel{
		{"single", joinfmt.CacheLarge, 5, []int{6, 5}, []int{0, 1}},
		{"single", joinfmt.CacheMedium, 2, []int{3, 2}, []int{0, 1}},
		{"numa", joinfmt.CacheMedium, 8, []int{8}, []int{7}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("panels differ (-want +got):\n%s", diff)
	}

	b := BestByMapping(recs)
	var best []int
	for _, p := range b.Panels {
		best = append(best, idx([]*joinfmt.Record{p.Best})[0])
		if p.Unfiltered != nil {
			t.Errorf("BestByMapping panel has unfiltered series")
		}
	}
	if diff := cmp.Diff([]int{5, 8}, best); diff != "" {
		t.Errorf("best runs differ (-want +got):\n%s", diff)
	}
}
