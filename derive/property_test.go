// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package derive

import (
	"testing"

	"github.com/bloomjoin/brjperf/joinfmt"
	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var usageOrder = map[joinfmt.CacheUsage]int{
	joinfmt.CacheSmall:  0,
	joinfmt.CacheMedium: 1,
	joinfmt.CacheLarge:  2,
}

func TestPropertyCacheUsageMonotone(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	class := func(filter joinfmt.FilterType, r, s, m int64) int {
		cu, err := CacheUsageOf(run(filter, r, s, 0.1, m, 2, "single", 1, 1), DefaultCacheBudgetBits)
		if err != nil {
			return -1
		}
		return usageOrder[cu]
	}

	properties.Property("growing inputs never shrinks the class of an unfiltered run", prop.ForAll(
		func(r, s, dr, ds int64) bool {
			return class(joinfmt.NoFilter, r, s, 0) <= class(joinfmt.NoFilter, r+dr, s+ds, 0)
		},
		gen.Int64Range(0, 1e7),
		gen.Int64Range(0, 1e7),
		gen.Int64Range(0, 1e7),
		gen.Int64Range(0, 1e7),
	))

	properties.Property("growing inputs or filter never shrinks the class of a filtered run", prop.ForAll(
		func(r, s, m, dr, ds, dm int64) bool {
			for _, f := range []joinfmt.FilterType{joinfmt.BasicFilter, joinfmt.BlockedFilter} {
				if class(f, r, s, m) > class(f, r+dr, s+ds, m+dm) {
					return false
				}
			}
			return true
		},
		gen.Int64Range(0, 1e7),
		gen.Int64Range(0, 1e7),
		gen.Int64Range(1, 1e10),
		gen.Int64Range(0, 1e7),
		gen.Int64Range(0, 1e7),
		gen.Int64Range(0, 1e10),
	))

	properties.TestingRun(t)
}

func TestPropertyFPRBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("theoretical FPR is a percentage", prop.ForAll(
		func(m, k, n int64) bool {
			fpr, err := TheoreticalFPR(m, k, n)
			return err == nil && fpr >= 0 && fpr <= 100
		},
		gen.Int64Range(1, 1e10),
		gen.Int64Range(1, 16),
		gen.Int64Range(0, 1e9),
	))

	properties.Property("empirical FPR is a percentage when sel·s <= filtered <= s", prop.ForAll(
		func(u int64, pct int, frac float64) bool {
			s := 100 * u
			sel := float64(pct) / 100
			matches := int64(pct) * u
			r := run(joinfmt.BlockedFilter, 1, s, sel, 1024, 2, "single", 1, 1)
			r.Filtered = matches + int64(frac*float64(s-matches))
			fpr, err := EmpiricalFPR(r)
			const eps = 1e-9
			return err == nil && fpr >= -eps && fpr <= 100+eps
		},
		gen.Int64Range(1, 1e7),
		gen.IntRange(0, 99),
		gen.Float64Range(0, 1),
	))

	properties.TestingRun(t)
}

func TestPropertySpeedupBaseline(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("the first minimum-thread run of a group has speedup 1", prop.ForAll(
		func(threads []int, nsec float64) bool {
			if len(threads) == 0 {
				return true
			}
			var recs []*joinfmt.Record
			base := 0
			for i, n := range threads {
				recs = append(recs, run(joinfmt.NoFilter, 10, 80, 0.1, 0, 0, "numa", n, nsec*float64(i+1)))
				if n < threads[base] {
					base = i
				}
			}
			tab := Derive(recs, Options{})
			if len(tab.Warnings) != 0 {
				return false
			}
			for i, r := range tab.Records {
				if !r.Has(joinfmt.ColSpeedup) {
					return false
				}
				if i == base && r.Speedup != 1 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(1, 64)),
		gen.Float64Range(0.1, 100),
	))

	properties.TestingRun(t)
}

func TestPropertyDeriveIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	filters := []joinfmt.FilterType{joinfmt.NoFilter, joinfmt.BasicFilter, joinfmt.BlockedFilter}
	mappings := []joinfmt.CPUMapping{joinfmt.MappingSingle, joinfmt.MappingNUMA}

	properties.Property("deriving a derived table changes nothing", prop.ForAll(
		func(sizes []int64, threads []int) bool {
			var recs []*joinfmt.Record
			for i, r := range sizes {
				n := 1
				if i < len(threads) {
					n = threads[i]
				}
				f := filters[i%len(filters)]
				rec := run(f, r, 8*r, 0.25, 1<<20, int64(1+i%4), mappings[i%len(mappings)], n, float64(1+i))
				if f.Filtered() {
					rec.Filtered = 2 * r
				}
				recs = append(recs, rec)
			}
			once := Derive(recs, Options{})
			twice := Derive(once.Records, Options{})
			return cmp.Equal(once.Records, twice.Records, recordOpts) &&
				len(once.Warnings) == len(twice.Warnings)
		},
		gen.SliceOf(gen.Int64Range(0, 1e6)),
		gen.SliceOf(gen.IntRange(1, 8)),
	))

	properties.TestingRun(t)
}
