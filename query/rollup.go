// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package query

import (
	"math"

	"github.com/aclements/go-gg/ggstat"
	"github.com/aclements/go-gg/table"
	"github.com/bloomjoin/brjperf/joinfmt"
)

// Table converts recs to a go-gg table with one column per column of
// cols, named as in CSV. Numeric columns are float64 columns with NaN
// for absent values. Other columns are string columns with "" for
// absent values.
func Table(recs []*joinfmt.Record, cols ...joinfmt.Column) *table.Table {
	var b table.Builder
	for _, c := range cols {
		if c.IsNumeric() {
			xs := make([]float64, len(recs))
			for i, r := range recs {
				v, ok := r.Float(c)
				if !ok {
					v = math.NaN()
				}
				xs[i] = v
			}
			b.Add(c.String(), xs)
			continue
		}
		b.Add(c.String(), column(recs, c))
	}
	return b.Done()
}

// A RollupRow summarizes one metric over a group of records.
type RollupRow struct {
	Key Key
	// Count is the number of records in the group with the metric
	// present.
	Count int

	Mean, Median, Min, Max float64
}

// Rollup groups recs by the values of by and summarizes metric over
// each group. Records lacking metric are ignored. Rows are in the
// order their group first appears in recs.
func Rollup(recs []*joinfmt.Record, metric joinfmt.Column, by ...joinfmt.Column) []RollupRow {
	recs = Where(recs, func(r *joinfmt.Record) bool { return r.Has(metric) })
	if len(recs) == 0 {
		return nil
	}

	// Group on string keys so that absent numeric columns group
	// together rather than as distinct NaNs.
	var b table.Builder
	names := make([]string, len(by))
	for i, c := range by {
		names[i] = c.String()
		b.Add(names[i], column(recs, c))
	}
	m := metric.String()
	b.Add(m, Table(recs, metric).MustColumn(m))

	agg := ggstat.Agg(names...)(
		ggstat.AggCount("count"),
		ggstat.AggMean(m),
		ggstat.AggQuantile("median", 0.5, m),
		ggstat.AggMin(m),
		ggstat.AggMax(m),
	).F(b.Done())
	out := table.Flatten(agg)

	count := out.MustColumn("count").([]int)
	mean := out.MustColumn("mean " + m).([]float64)
	median := out.MustColumn("median " + m).([]float64)
	mins := out.MustColumn("min " + m).([]float64)
	maxs := out.MustColumn("max " + m).([]float64)
	keys := make([][]string, len(names))
	for i, name := range names {
		keys[i] = out.MustColumn(name).([]string)
	}

	rows := make([]RollupRow, out.Len())
	for i := range rows {
		vals := make([]string, len(by))
		for j := range by {
			vals[j] = keys[j][i]
		}
		rows[i] = RollupRow{
			Key:    Key{by, vals},
			Count:  count[i],
			Mean:   mean[i],
			Median: median[i],
			Min:    mins[i],
			Max:    maxs[i],
		}
	}
	return rows
}
