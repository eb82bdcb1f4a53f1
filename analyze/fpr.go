// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analyze

import (
	"math"

	"github.com/aclements/go-moremath/stats"
	"github.com/bloomjoin/brjperf/joinfmt"
)

// An FPRStat summarizes how far the empirical false positive rate of
// one filter variant strays from the theoretical rate. Deviations are
// relative, |emp - theo| / theo, in percent.
type FPRStat struct {
	Filter joinfmt.FilterType
	// Configs is the number of distinct filter configurations
	// summarized.
	Configs int

	Median, Mean, StdDev float64

	// MaxAbsDiff is the largest |emp - theo| in percentage points.
	MaxAbsDiff float64
}

// An FPRReport is the result of FPRDeviation.
type FPRReport struct {
	// Variants has one entry per filter variant present, basic
	// before blocked.
	Variants []FPRStat

	// MaxScaledDeviation is the maximum over all configurations of
	// the relative deviation times the theoretical rate.
	MaxScaledDeviation float64

	// Warnings lists filtered records that lack a configuration
	// column. Each is a *MalformedRecordError.
	Warnings []error
}

type fprConfig struct {
	sel          float64
	rSize, sSize int64
	filter       joinfmt.FilterType
	m, k         int64
}

var fprColumns = []joinfmt.Column{
	joinfmt.ColSSel, joinfmt.ColRSize, joinfmt.ColSSize,
	joinfmt.ColBloomSize, joinfmt.ColBloomHashes,
}

// FPRDeviation compares empirical and theoretical false positive
// rates across the filtered records of recs.
//
// Runs that differ only in CPU mapping or thread count share a filter
// configuration, so only the first record of each configuration (s-sel,
// r-size, s-size, bloom-filter, bloom-size, bloom-hashes) is used.
// Configurations without both rates, or with a theoretical rate of 0,
// have no relative deviation and are skipped.
func FPRDeviation(recs []*joinfmt.Record) *FPRReport {
	rep := &FPRReport{MaxScaledDeviation: math.NaN()}

	seen := make(map[fprConfig]bool)
	dev := make(map[joinfmt.FilterType][]float64)
	absDiff := make(map[joinfmt.FilterType][]float64)
	for _, r := range recs {
		if !r.Has(joinfmt.ColFilter) || !r.Filter.Filtered() {
			continue
		}
		if err := missing(r, fprColumns...); err != nil {
			rep.Warnings = append(rep.Warnings, err)
			continue
		}
		cfg := fprConfig{r.SSel, r.RSize, r.SSize, r.Filter, r.BloomSize, r.BloomHashes}
		if seen[cfg] {
			continue
		}
		seen[cfg] = true

		if !r.Has(joinfmt.ColFPREmp) || !r.Has(joinfmt.ColFPRTheo) || r.FPRTheo == 0 {
			continue
		}
		diff := math.Abs(r.FPREmp - r.FPRTheo)
		d := diff / r.FPRTheo * 100
		dev[r.Filter] = append(dev[r.Filter], d)
		absDiff[r.Filter] = append(absDiff[r.Filter], diff)
		if scaled := d * r.FPRTheo; math.IsNaN(rep.MaxScaledDeviation) || scaled > rep.MaxScaledDeviation {
			rep.MaxScaledDeviation = scaled
		}
	}

	for _, f := range []joinfmt.FilterType{joinfmt.BasicFilter, joinfmt.BlockedFilter} {
		xs := dev[f]
		if len(xs) == 0 {
			continue
		}
		sample := stats.Sample{Xs: xs}
		_, maxAbs := stats.Bounds(absDiff[f])
		rep.Variants = append(rep.Variants, FPRStat{
			Filter:     f,
			Configs:    len(xs),
			Median:     sample.Quantile(0.5),
			Mean:       sample.Mean(),
			StdDev:     sample.StdDev(),
			MaxAbsDiff: maxAbs,
		})
	}
	return rep
}
