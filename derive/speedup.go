// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package derive

import (
	"fmt"

	"github.com/bloomjoin/brjperf/joinfmt"
)

// A ScalingKey identifies a thread-scaling group: runs with the same
// configuration except for the number of threads.
//
// Absent columns are represented by their zero value, so unfiltered
// runs (which have no filter sizing) group by sizes, selectivity and
// CPU mapping alone.
type ScalingKey struct {
	RSize, SSize int64
	SSel         float64
	BloomSize    int64
	Filter       joinfmt.FilterType
	BloomHashes  int64
	Mapping      joinfmt.CPUMapping
}

// ScalingKeyOf returns the thread-scaling group of r.
func ScalingKeyOf(r *joinfmt.Record) ScalingKey {
	var k ScalingKey
	if r.Has(joinfmt.ColRSize) {
		k.RSize = r.RSize
	}
	if r.Has(joinfmt.ColSSize) {
		k.SSize = r.SSize
	}
	if r.Has(joinfmt.ColSSel) {
		k.SSel = r.SSel
	}
	if r.Has(joinfmt.ColBloomSize) {
		k.BloomSize = r.BloomSize
	}
	if r.Has(joinfmt.ColFilter) {
		k.Filter = r.Filter
	}
	if r.Has(joinfmt.ColBloomHashes) {
		k.BloomHashes = r.BloomHashes
	}
	if r.Has(joinfmt.ColMapping) {
		k.Mapping = r.Mapping
	}
	return k
}

func (k ScalingKey) String() string {
	return fmt.Sprintf("r-size=%d s-size=%d s-sel=%g bloom-filter=%s bloom-size=%d bloom-hashes=%d cpu-mapping=%s",
		k.RSize, k.SSize, k.SSel, k.Filter, k.BloomSize, k.BloomHashes, k.Mapping)
}

// Speedup sets the speedup of every record in recs relative to the
// baseline of its thread-scaling group and returns any warnings.
//
// The baseline of a group is the member with the fewest threads; on a
// tie, the first such member in recs. Its speedup is 1. Every other
// member's speedup is the baseline's nsec-per-tuple divided by its
// own.
//
// If the baseline has no usable nsec-per-tuple, or no member has a
// thread count, the whole group's speedup is left absent and a
// *MissingBaselineError is reported. A member with zero or absent
// nsec-per-tuple gets no speedup and a *DivisionDegenerateError.
func Speedup(recs []*joinfmt.Record) (warnings []error) {
	// Group in first-observation order so warnings are deterministic.
	var keys []ScalingKey
	groups := make(map[ScalingKey][]*joinfmt.Record)
	for _, r := range recs {
		k := ScalingKeyOf(r)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], r)
	}

	for _, k := range keys {
		group := groups[k]
		for _, r := range group {
			r.SetAbsent(joinfmt.ColSpeedup)
		}

		var base *joinfmt.Record
		for _, r := range group {
			if !r.Has(joinfmt.ColThreads) {
				continue
			}
			if base == nil || r.Threads < base.Threads {
				base = r
			}
		}
		if base == nil || !base.Has(joinfmt.ColNsecPerTuple) || base.NsecPerTuple == 0 {
			warnings = append(warnings, &MissingBaselineError{k, base, len(group)})
			continue
		}

		for _, r := range group {
			switch {
			case r == base:
				r.Speedup = 1
			case !r.Has(joinfmt.ColNsecPerTuple) || r.NsecPerTuple == 0:
				warnings = append(warnings, &DivisionDegenerateError{r, joinfmt.ColSpeedup})
				continue
			default:
				r.Speedup = base.NsecPerTuple / r.NsecPerTuple
			}
			r.Absent = r.Absent.Without(joinfmt.ColSpeedup)
		}
	}
	return warnings
}
