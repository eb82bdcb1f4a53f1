// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package derive computes the derived metrics of join records: cache
// usage class, empirical and theoretical false positive rate, S:R
// ratio, and thread-scaling speedup.
//
// The per-record metrics depend only on the record itself. Speedup
// depends on the other members of a record's thread-scaling group.
// None of the transforms fail: a metric that cannot be computed is
// left absent and, where that indicates a problem with the input,
// reported as a warning.
package derive

import (
	"errors"

	"github.com/bloomjoin/brjperf/joinfmt"
)

// Options controls derivation.
type Options struct {
	// CacheBudgetBits is the cache size used to classify cache
	// usage. If zero, DefaultCacheBudgetBits is used.
	CacheBudgetBits int64

	// TupleBits is the width of an input tuple. If zero, TupleBits
	// is used.
	TupleBits int64
}

func (o Options) budget() int64 {
	if o.CacheBudgetBits == 0 {
		return DefaultCacheBudgetBits
	}
	return o.CacheBudgetBits
}

func (o Options) tupleBits() int64 {
	if o.TupleBits == 0 {
		return TupleBits
	}
	return o.TupleBits
}

// A Table is a set of derived records.
type Table struct {
	// Records are clones of the input records with every derived
	// column computed or marked absent, in input order.
	Records []*joinfmt.Record

	// Warnings is a list of warnings about the derivation. Each is a
	// *DivisionDegenerateError or a *MissingBaselineError.
	Warnings []error
}

// Derive clones recs and computes every derived metric on the clones.
// The input records are not modified.
//
// Derive is idempotent: deriving the records of a Table again yields
// the same values.
func Derive(recs []*joinfmt.Record, opts Options) *Table {
	t := &Table{Records: make([]*joinfmt.Record, len(recs))}
	for i, r := range recs {
		r = r.Clone()
		t.Records[i] = r
		t.perRecord(r, opts)
	}
	t.Warnings = append(t.Warnings, Speedup(t.Records)...)
	return t
}

func (t *Table) perRecord(r *joinfmt.Record, opts Options) {
	if cu, err := cacheUsage(r, opts.budget(), opts.tupleBits()); err == nil {
		r.CacheUsage = cu
		r.Absent = r.Absent.Without(joinfmt.ColCacheUsage)
	} else {
		r.SetAbsent(joinfmt.ColCacheUsage)
	}

	emp, err := EmpiricalFPR(r)
	t.setFloat(r, joinfmt.ColFPREmp, &r.FPREmp, emp, err)
	theo, err := recordTheoreticalFPR(r)
	t.setFloat(r, joinfmt.ColFPRTheo, &r.FPRTheo, theo, err)

	if ratio, err := SizeRatio(r); err == nil {
		r.SRRatio = ratio
		r.Absent = r.Absent.Without(joinfmt.ColSRRatio)
	} else {
		r.SetAbsent(joinfmt.ColSRRatio)
		t.warn(err)
	}
}

func (t *Table) setFloat(r *joinfmt.Record, c joinfmt.Column, p *float64, v float64, err error) {
	if err != nil {
		r.SetAbsent(c)
		t.warn(err)
		return
	}
	*p = v
	r.Absent = r.Absent.Without(c)
}

func (t *Table) warn(err error) {
	if !errors.Is(err, ErrUndefined) {
		t.Warnings = append(t.Warnings, err)
	}
}
