// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analyze

import (
	"slices"

	"github.com/bloomjoin/brjperf/joinfmt"
	"github.com/samber/lo"
)

// A Panel holds the thread-scaling series of the best filter
// configuration in one slice of a table.
type Panel struct {
	Mapping joinfmt.CPUMapping
	// CacheUsage is the cache usage class of the panel, or "" for
	// panels that span all classes.
	CacheUsage joinfmt.CacheUsage

	// Best is the fastest filtered run in the panel.
	Best *joinfmt.Record

	// Filtered lists the runs sharing Best's configuration (filter
	// variant, bloom-size, bloom-hashes, r-size, s-size, s-sel) over
	// all thread counts, by ascending nthreads.
	Filtered []*joinfmt.Record

	// Unfiltered lists the unfiltered runs with Best's mapping and
	// input shape, by ascending nthreads. It is nil for
	// BestByMapping panels.
	Unfiltered []*joinfmt.Record
}

// A Scaling is the result of ThreadScaling or BestByMapping.
type Scaling struct {
	Panels []Panel
	// Warnings lists records excluded for lacking a column. Each is
	// a *MalformedRecordError.
	Warnings []error
}

var scalingColumns = []joinfmt.Column{
	joinfmt.ColFilter, joinfmt.ColMapping, joinfmt.ColThreads, joinfmt.ColNsecPerTuple,
	joinfmt.ColRSize, joinfmt.ColSSize, joinfmt.ColSSel,
}

// usable returns the records of recs that have every column of cols,
// and warnings for the rest.
func usable(recs []*joinfmt.Record, cols ...joinfmt.Column) (ok []*joinfmt.Record, warnings []error) {
	for _, r := range recs {
		if err := missing(r, cols...); err != nil {
			warnings = append(warnings, err)
			continue
		}
		ok = append(ok, r)
	}
	return ok, warnings
}

// mappingGroups partitions recs by CPU mapping in first-observation
// order.
func mappingGroups(recs []*joinfmt.Record) ([]joinfmt.CPUMapping, map[joinfmt.CPUMapping][]*joinfmt.Record) {
	order := lo.Uniq(lo.Map(recs, func(r *joinfmt.Record, _ int) joinfmt.CPUMapping { return r.Mapping }))
	return order, lo.GroupBy(recs, func(r *joinfmt.Record) joinfmt.CPUMapping { return r.Mapping })
}

// fastest returns the filtered record with minimum nsec-per-tuple,
// the first on ties, or nil if there is none.
func fastest(recs []*joinfmt.Record) *joinfmt.Record {
	var best *joinfmt.Record
	for _, r := range recs {
		if !r.Filter.Filtered() {
			continue
		}
		if best == nil || r.NsecPerTuple < best.NsecPerTuple {
			best = r
		}
	}
	return best
}

func byThreads(recs []*joinfmt.Record) []*joinfmt.Record {
	recs = slices.Clone(recs)
	slices.SortStableFunc(recs, func(a, b *joinfmt.Record) int { return a.Threads - b.Threads })
	return recs
}

func sameShape(a, b *joinfmt.Record) bool {
	return a.RSize == b.RSize && a.SSize == b.SSize && a.SSel == b.SSel
}

// sameFilterConfig reports whether a and b are filtered runs of the
// same configuration.
func sameFilterConfig(a, b *joinfmt.Record) bool {
	return a.Filter == b.Filter && sameShape(a, b) &&
		a.Has(joinfmt.ColBloomSize) == b.Has(joinfmt.ColBloomSize) && a.BloomSize == b.BloomSize &&
		a.Has(joinfmt.ColBloomHashes) == b.Has(joinfmt.ColBloomHashes) && a.BloomHashes == b.BloomHashes
}

func bestSeries(group []*joinfmt.Record, best *joinfmt.Record) []*joinfmt.Record {
	return byThreads(lo.Filter(group, func(r *joinfmt.Record, _ int) bool { return sameFilterConfig(r, best) }))
}

var usageRows = []joinfmt.CacheUsage{joinfmt.CacheLarge, joinfmt.CacheMedium, joinfmt.CacheSmall}

// ThreadScaling compares the best filter configuration against the
// unfiltered join as the thread count grows.
//
// It returns one panel per CPU mapping (in first-observation order)
// and cache usage class of the filtered runs (L, M, then S). Cache
// usage classifies the filtered runs only; the unfiltered series of a
// panel is every unfiltered run with the panel's mapping and the best
// run's input shape.
func ThreadScaling(recs []*joinfmt.Record) *Scaling {
	recs, warnings := usable(recs, scalingColumns...)
	s := &Scaling{Warnings: warnings}

	order, groups := mappingGroups(recs)
	for _, m := range order {
		group := groups[m]
		byUsage := lo.GroupBy(lo.Filter(group, func(r *joinfmt.Record, _ int) bool {
			return r.Filter.Filtered() && r.Has(joinfmt.ColCacheUsage)
		}), func(r *joinfmt.Record) joinfmt.CacheUsage { return r.CacheUsage })

		for _, cu := range usageRows {
			filtered, ok := byUsage[cu]
			if !ok {
				continue
			}
			best := fastest(filtered)
			s.Panels = append(s.Panels, Panel{
				Mapping:    m,
				CacheUsage: cu,
				Best:       best,
				Filtered:   bestSeries(filtered, best),
				Unfiltered: byThreads(lo.Filter(group, func(r *joinfmt.Record, _ int) bool {
					return !r.Filter.Filtered() && sameShape(r, best)
				})),
			})
		}
	}
	return s
}

// BestByMapping returns, for each CPU mapping in first-observation
// order, the thread-scaling series of the fastest filtered
// configuration. Mappings without filtered runs are omitted.
func BestByMapping(recs []*joinfmt.Record) *Scaling {
	recs, warnings := usable(recs, scalingColumns...)
	s := &Scaling{Warnings: warnings}

	order, groups := mappingGroups(recs)
	for _, m := range order {
		best := fastest(groups[m])
		if best == nil {
			continue
		}
		s.Panels = append(s.Panels, Panel{
			Mapping:  m,
			Best:     best,
			Filtered: bestSeries(groups[m], best),
		})
	}
	return s
}
