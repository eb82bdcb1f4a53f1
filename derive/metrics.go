// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package derive

import (
	"math"

	"github.com/bloomjoin/brjperf/joinfmt"
)

const (
	// TupleBits is the width of an input tuple: a 64-bit key and a
	// 64-bit payload.
	TupleBits = 128

	// DefaultCacheBudgetBits approximates a common last-level cache
	// size of 40 MiB.
	DefaultCacheBudgetBits = 40 * 8 * 1024 * 1024
)

// CacheUsageOf classifies r's working set against a cache of
// budgetBits bits, assuming TupleBits-wide tuples.
//
// An unfiltered run is L if both inputs together exceed the budget
// and S otherwise. A filtered run is L if the filter alone exceeds the
// budget, M if the filter plus both inputs do, and S otherwise.
//
// It returns ErrUndefined if a required column is absent.
func CacheUsageOf(r *joinfmt.Record, budgetBits int64) (joinfmt.CacheUsage, error) {
	return cacheUsage(r, budgetBits, TupleBits)
}

func cacheUsage(r *joinfmt.Record, budgetBits, tupleBits int64) (joinfmt.CacheUsage, error) {
	if !r.Has(joinfmt.ColFilter) || !r.Has(joinfmt.ColRSize) || !r.Has(joinfmt.ColSSize) {
		return "", ErrUndefined
	}
	inputs := (r.RSize + r.SSize) * tupleBits
	if !r.Filter.Filtered() {
		if inputs > budgetBits {
			return joinfmt.CacheLarge, nil
		}
		return joinfmt.CacheSmall, nil
	}
	if !r.Has(joinfmt.ColBloomSize) {
		return "", ErrUndefined
	}
	switch {
	case r.BloomSize > budgetBits:
		return joinfmt.CacheLarge, nil
	case r.BloomSize+inputs > budgetBits:
		return joinfmt.CacheMedium, nil
	}
	return joinfmt.CacheSmall, nil
}

// EmpiricalFPR returns the observed false positive rate of r's filter
// in percent: the share of non-matching probe tuples that passed the
// filter.
//
// It returns ErrUndefined for unfiltered runs and runs lacking the
// filtered count, s-size or s-sel. It returns a
// *DivisionDegenerateError if no probe tuple is non-matching, that is
// if s-sel is 1 or s-size is 0.
func EmpiricalFPR(r *joinfmt.Record) (float64, error) {
	if !r.Has(joinfmt.ColFilter) || !r.Filter.Filtered() {
		return math.NaN(), ErrUndefined
	}
	if !r.Has(joinfmt.ColFiltered) || !r.Has(joinfmt.ColSSize) || !r.Has(joinfmt.ColSSel) {
		return math.NaN(), ErrUndefined
	}
	s := float64(r.SSize)
	negatives := (1 - r.SSel) * s
	if negatives == 0 {
		return math.NaN(), &DivisionDegenerateError{r, joinfmt.ColFPREmp}
	}
	return (float64(r.Filtered) - r.SSel*s) / negatives * 100, nil
}

// TheoreticalFPR returns the expected false positive rate in percent
// of a bloom filter of m bits with k hash functions after inserting n
// keys: (1 - (1 - 1/m)^(k·n))^k · 100.
//
// It returns a *DivisionDegenerateError if m is not positive.
func TheoreticalFPR(m, k, n int64) (float64, error) {
	if m <= 0 {
		return math.NaN(), &DivisionDegenerateError{nil, joinfmt.ColFPRTheo}
	}
	// (1 - 1/m)^(k·n) computed in log space so that large filters
	// keep their precision.
	var set float64
	if kn := float64(k) * float64(n); kn != 0 {
		set = -math.Expm1(kn * math.Log1p(-1/float64(m)))
	}
	return math.Pow(set, float64(k)) * 100, nil
}

// recordTheoreticalFPR applies TheoreticalFPR to r's filter sizing,
// with n = r-size.
func recordTheoreticalFPR(r *joinfmt.Record) (float64, error) {
	if !r.Has(joinfmt.ColFilter) || !r.Filter.Filtered() {
		return math.NaN(), ErrUndefined
	}
	if !r.Has(joinfmt.ColBloomSize) || !r.Has(joinfmt.ColBloomHashes) || !r.Has(joinfmt.ColRSize) {
		return math.NaN(), ErrUndefined
	}
	v, err := TheoreticalFPR(r.BloomSize, r.BloomHashes, r.RSize)
	if de, ok := err.(*DivisionDegenerateError); ok {
		de.Record = r
	}
	return v, err
}

// SizeRatio returns the S:R ratio of r, s-size / r-size truncated
// toward zero.
//
// It returns ErrUndefined if either size is absent and a
// *DivisionDegenerateError if r-size is 0.
func SizeRatio(r *joinfmt.Record) (int64, error) {
	if !r.Has(joinfmt.ColRSize) || !r.Has(joinfmt.ColSSize) {
		return 0, ErrUndefined
	}
	if r.RSize == 0 {
		return 0, &DivisionDegenerateError{r, joinfmt.ColSRRatio}
	}
	return r.SSize / r.RSize, nil
}
