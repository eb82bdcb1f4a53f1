// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package derive

import (
	"errors"
	"fmt"

	"github.com/bloomjoin/brjperf/joinfmt"
)

var (
	// ErrUndefined is returned by the per-record metric functions
	// when the metric has no value for a record, for example the FPR
	// of an unfiltered run or any metric whose inputs are absent.
	// Derive marks such metrics absent without a warning.
	ErrUndefined = errors.New("metric undefined")

	// ErrDivisionDegenerate matches every *DivisionDegenerateError.
	ErrDivisionDegenerate = errors.New("division degenerate")

	// ErrMissingBaseline matches every *MissingBaselineError.
	ErrMissingBaseline = errors.New("missing baseline")
)

// A DivisionDegenerateError reports that a derived metric has a zero
// denominator for a record. The metric is left absent.
type DivisionDegenerateError struct {
	// Record is the record whose metric could not be computed. It
	// is nil for errors returned by TheoreticalFPR.
	Record *joinfmt.Record
	Column joinfmt.Column
}

func (e *DivisionDegenerateError) Error() string {
	return posPrefix(e.Record) + fmt.Sprintf("%s: zero denominator", e.Column)
}

func (e *DivisionDegenerateError) Is(target error) bool {
	return target == ErrDivisionDegenerate
}

// A MissingBaselineError reports that the baseline of a thread-scaling
// group has no usable throughput or thread count. Speedup is left
// absent for every member of the group.
type MissingBaselineError struct {
	Key ScalingKey
	// Baseline is the record chosen as baseline, or nil if no
	// member of the group has a thread count.
	Baseline *joinfmt.Record
	// Members is the number of records in the group.
	Members int
}

func (e *MissingBaselineError) Error() string {
	what := "no member has nthreads"
	if b := e.Baseline; b != nil {
		what = "baseline has no nsec-per-tuple"
		if b.Has(joinfmt.ColNsecPerTuple) {
			what = "baseline nsec-per-tuple is zero"
		}
		what = posPrefix(b) + what
	}
	return fmt.Sprintf("speedup for %v (%d records): %s", e.Key, e.Members, what)
}

func (e *MissingBaselineError) Is(target error) bool {
	return target == ErrMissingBaseline
}

func posPrefix(r *joinfmt.Record) string {
	if r == nil {
		return ""
	}
	if fileName, line := r.Pos(); fileName != "" {
		return fmt.Sprintf("%s:%d: ", fileName, line)
	}
	return ""
}
