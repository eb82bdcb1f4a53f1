// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package analyze compares bloom-filtered join runs against their
// unfiltered baseline.
//
// The central question is superiority: for a given input shape and
// CPU mapping, is the fastest run a filtered one? Superiority answers
// it per comparison group and aggregates the verdicts by S:R ratio.
// FPRDeviation, ThreadScaling, and BestByMapping prepare further
// summaries of a derived table.
//
// All functions take records produced by package derive and never
// modify them.
package analyze

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bloomjoin/brjperf/joinfmt"
	"github.com/samber/lo"
)

// ErrMalformedRecord matches every *MalformedRecordError.
var ErrMalformedRecord = errors.New("malformed record")

// A MalformedRecordError reports a record that lacks a column needed
// to analyze it. The record is excluded from the analysis.
type MalformedRecordError struct {
	Record  *joinfmt.Record
	Missing []joinfmt.Column
}

func (e *MalformedRecordError) Error() string {
	var names []string
	for _, c := range e.Missing {
		names = append(names, c.String())
	}
	msg := "record missing " + strings.Join(names, ", ")
	if fileName, line := e.Record.Pos(); fileName != "" {
		msg = fmt.Sprintf("%s:%d: %s", fileName, line, msg)
	}
	return msg
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// missing returns a *MalformedRecordError if r lacks any of cols.
func missing(r *joinfmt.Record, cols ...joinfmt.Column) error {
	absent := lo.Filter(cols, func(c joinfmt.Column, _ int) bool { return !r.Has(c) })
	if len(absent) == 0 {
		return nil
	}
	return &MalformedRecordError{r, absent}
}

// A ComparisonKey identifies a comparison group: runs with the same
// input shape and CPU mapping, across all filter variants, filter
// sizings, and thread counts.
type ComparisonKey struct {
	RSize, SSize int64
	SSel         float64
	Mapping      joinfmt.CPUMapping
}

func (k ComparisonKey) String() string {
	return fmt.Sprintf("r-size=%d s-size=%d s-sel=%g cpu-mapping=%s", k.RSize, k.SSize, k.SSel, k.Mapping)
}

var comparisonColumns = []joinfmt.Column{
	joinfmt.ColRSize, joinfmt.ColSSize, joinfmt.ColSSel, joinfmt.ColMapping,
	joinfmt.ColFilter, joinfmt.ColNsecPerTuple,
}

// ComparisonKeyOf returns the comparison group of r. It returns a
// *MalformedRecordError if r lacks a column needed to compare it.
func ComparisonKeyOf(r *joinfmt.Record) (ComparisonKey, error) {
	if err := missing(r, comparisonColumns...); err != nil {
		return ComparisonKey{}, err
	}
	return ComparisonKey{r.RSize, r.SSize, r.SSel, r.Mapping}, nil
}

// A Group is the verdict for one comparison group.
type Group struct {
	Key ComparisonKey
	// Best is the fastest run in the group: the one with minimum
	// nsec-per-tuple, the first such run on ties.
	Best *joinfmt.Record
	// Runs is the number of runs in the group.
	Runs int
	// Superior reports whether Best uses a bloom filter.
	Superior bool
}

// A RatioStat aggregates the group verdicts for one S:R ratio.
type RatioStat struct {
	Ratio    int64
	Superior int
	Total    int
	// Fraction is Superior/Total, or 0 if Total is 0.
	Fraction float64
}

// A Report is the result of Superiority.
type Report struct {
	// Groups lists each comparison group in the order its first
	// run appears in the input.
	Groups []Group
	// Ratios lists the aggregate per S:R ratio, in ascending ratio
	// order.
	Ratios []RatioStat
	// Warnings lists records excluded from the analysis. Each is a
	// *MalformedRecordError.
	Warnings []error
}

// Superiority partitions recs into comparison groups, finds the
// fastest run of each group, and aggregates by the S:R ratio of that
// run how often it is a filtered run.
//
// A record lacking r-size, s-size, s-sel, cpu-mapping, bloom-filter, or
// nsec-per-tuple is excluded from grouping. A group whose fastest run
// lacks s-r-ratio is listed in Groups but excluded from Ratios. Both
// are reported in Warnings.
func Superiority(recs []*joinfmt.Record) *Report {
	rep := new(Report)

	var keys []ComparisonKey
	best := make(map[ComparisonKey]*Group)
	for _, r := range recs {
		k, err := ComparisonKeyOf(r)
		if err != nil {
			rep.Warnings = append(rep.Warnings, err)
			continue
		}
		g, ok := best[k]
		if !ok {
			keys = append(keys, k)
			best[k] = &Group{Key: k, Best: r, Runs: 1}
			continue
		}
		g.Runs++
		if r.NsecPerTuple < g.Best.NsecPerTuple {
			g.Best = r
		}
	}

	stats := make(map[int64]*RatioStat)
	for _, k := range keys {
		g := best[k]
		g.Superior = g.Best.Filter.Filtered()
		rep.Groups = append(rep.Groups, *g)

		if err := missing(g.Best, joinfmt.ColSRRatio); err != nil {
			rep.Warnings = append(rep.Warnings, err)
			continue
		}
		st, ok := stats[g.Best.SRRatio]
		if !ok {
			st = &RatioStat{Ratio: g.Best.SRRatio}
			stats[g.Best.SRRatio] = st
		}
		st.Total++
		if g.Superior {
			st.Superior++
		}
	}

	ratios := lo.Keys(stats)
	slices.Sort(ratios)
	for _, ratio := range ratios {
		st := stats[ratio]
		if st.Total > 0 {
			st.Fraction = float64(st.Superior) / float64(st.Total)
		}
		rep.Ratios = append(rep.Ratios, *st)
	}
	return rep
}

// Scenarios returns the fastest run of every comparison group in
// which that run is filtered, in group order.
func (rep *Report) Scenarios() []*joinfmt.Record {
	superior := lo.Filter(rep.Groups, func(g Group, _ int) bool { return g.Superior })
	return lo.Map(superior, func(g Group, _ int) *joinfmt.Record { return g.Best })
}

// Ratio returns the aggregate for the given S:R ratio, if any group
// has that ratio.
func (rep *Report) Ratio(ratio int64) (RatioStat, bool) {
	return lo.Find(rep.Ratios, func(st RatioStat) bool { return st.Ratio == ratio })
}

// Scenarios returns the fastest run of every comparison group of recs
// in which a filtered run beats the unfiltered baseline. It is
// shorthand for Superiority(recs).Scenarios().
func Scenarios(recs []*joinfmt.Record) []*joinfmt.Record {
	return Superiority(recs).Scenarios()
}
