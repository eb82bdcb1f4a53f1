// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/bloomjoin/brjperf/analyze"
	"github.com/bloomjoin/brjperf/joinfmt"
	"github.com/bloomjoin/brjperf/query"
	"github.com/samber/lo"
)

// formatFloat formats x with four significant digits. NaN is shown
// as "-".
func formatFloat(x float64) string {
	if math.IsNaN(x) {
		return "-"
	}
	return strconv.FormatFloat(x, 'g', 4, 64)
}

func formatFraction(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}

func title(platform, what string) string {
	if platform == "" {
		return what
	}
	return platform + ": " + what
}

// Records returns a table of cols of recs, one row per record. If
// cols is nil, every column is shown.
func Records(name string, recs []*joinfmt.Record, cols []joinfmt.Column) *Table {
	if cols == nil {
		cols = joinfmt.Columns
	}
	return &Table{
		Title:   name,
		Header:  lo.Map(cols, func(c joinfmt.Column, _ int) string { return c.String() }),
		Rows:    query.Project(recs, cols...),
		Numeric: lo.Map(cols, func(c joinfmt.Column, _ int) bool { return c.IsNumeric() }),
	}
}

// ScenarioColumns are the columns shown for winning scenarios.
var ScenarioColumns = []joinfmt.Column{
	joinfmt.ColRSize, joinfmt.ColSSize, joinfmt.ColSSel, joinfmt.ColMapping,
	joinfmt.ColFilter, joinfmt.ColBloomSize, joinfmt.ColBloomHashes,
	joinfmt.ColThreads, joinfmt.ColNsecPerTuple, joinfmt.ColCacheUsage,
	joinfmt.ColSRRatio,
}

// Superiority returns the per S:R ratio aggregate of rep.
func Superiority(platform string, rep *analyze.Report) *Table {
	t := &Table{
		Title:   title(platform, "bloom-filtered join superiority by S:R ratio"),
		Header:  []string{"s-r-ratio", "superior", "total", "fraction"},
		Numeric: []bool{true, true, true, true},
	}
	for _, st := range rep.Ratios {
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(st.Ratio, 10),
			strconv.Itoa(st.Superior),
			strconv.Itoa(st.Total),
			formatFraction(st.Fraction),
		})
	}
	superior := lo.CountBy(rep.Groups, func(g analyze.Group) bool { return g.Superior })
	t.Notes = append(t.Notes, fmt.Sprintf("%d of %d comparison groups won by a filtered join", superior, len(rep.Groups)))
	return t
}

// Groups returns the verdict of every comparison group of rep.
func Groups(platform string, rep *analyze.Report) *Table {
	t := &Table{
		Title:   title(platform, "comparison groups"),
		Header:  []string{"r-size", "s-size", "s-sel", "cpu-mapping", "runs", "best", "nsec-per-tuple", "superior"},
		Numeric: []bool{true, true, true, false, true, false, true, false},
	}
	for _, g := range rep.Groups {
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(g.Key.RSize, 10),
			strconv.FormatInt(g.Key.SSize, 10),
			strconv.FormatFloat(g.Key.SSel, 'g', -1, 64),
			g.Key.Mapping.Label(),
			strconv.Itoa(g.Runs),
			string(g.Best.Filter),
			formatFloat(g.Best.NsecPerTuple),
			strconv.FormatBool(g.Superior),
		})
	}
	return t
}

// Scenarios returns the winning runs of the groups of rep won by a
// filtered join.
func Scenarios(platform string, rep *analyze.Report) *Table {
	return Records(title(platform, "scenarios where a bloom filter wins"), rep.Scenarios(), ScenarioColumns)
}

// FPR returns the deviation of empirical from theoretical false
// positive rates per filter variant.
func FPR(platform string, rep *analyze.FPRReport) *Table {
	t := &Table{
		Title:   title(platform, "FPR deviation (|emp - theo| / theo, %)"),
		Header:  []string{"bloom-filter", "configs", "median", "mean", "stddev", "max |emp - theo|"},
		Numeric: []bool{false, true, true, true, true, true},
	}
	for _, v := range rep.Variants {
		t.Rows = append(t.Rows, []string{
			string(v.Filter),
			strconv.Itoa(v.Configs),
			formatFloat(v.Median),
			formatFloat(v.Mean),
			formatFloat(v.StdDev),
			formatFloat(v.MaxAbsDiff),
		})
	}
	t.Notes = append(t.Notes, "max deviation × theo: "+formatFloat(rep.MaxScaledDeviation))
	return t
}

// Scaling returns one table per panel of s, listing latency and
// speedup by thread count for the best filtered configuration and,
// if present, for the unfiltered join.
func Scaling(platform string, s *analyze.Scaling) []*Table {
	var tables []*Table
	for _, p := range s.Panels {
		what := p.Mapping.Label()
		if p.CacheUsage != "" {
			what += ", cache usage " + string(p.CacheUsage)
		}
		best := p.Best
		t := &Table{
			Title: title(platform, what),
			Notes: []string{fmt.Sprintf("best: bloom-filter=%s bloom-size=%s bloom-hashes=%s r-size=%d s-size=%d s-sel=%g",
				best.Filter, best.Get(joinfmt.ColBloomSize), best.Get(joinfmt.ColBloomHashes), best.RSize, best.SSize, best.SSel)},
		}
		t.Header = []string{"nthreads", "filtered nsec-per-tuple", "filtered speedup"}
		if p.Unfiltered != nil {
			t.Header = append(t.Header, "unfiltered nsec-per-tuple", "unfiltered speedup")
		}
		t.Numeric = lo.Map(t.Header, func(string, int) bool { return true })

		threads := lo.Uniq(append(
			lo.Map(p.Filtered, func(r *joinfmt.Record, _ int) int { return r.Threads }),
			lo.Map(p.Unfiltered, func(r *joinfmt.Record, _ int) int { return r.Threads })...))
		slices.Sort(threads)
		for _, n := range threads {
			row := []string{strconv.Itoa(n)}
			row = append(row, seriesCells(p.Filtered, n)...)
			if p.Unfiltered != nil {
				row = append(row, seriesCells(p.Unfiltered, n)...)
			}
			t.Rows = append(t.Rows, row)
		}
		tables = append(tables, t)
	}
	return tables
}

// seriesCells returns the latency and speedup of the first run of
// series with n threads.
func seriesCells(series []*joinfmt.Record, n int) []string {
	r, ok := lo.Find(series, func(r *joinfmt.Record) bool { return r.Threads == n })
	if !ok {
		return []string{"", ""}
	}
	speedup := "-"
	if r.Has(joinfmt.ColSpeedup) {
		speedup = formatFloat(r.Speedup)
	}
	return []string{formatFloat(r.NsecPerTuple), speedup}
}

// Rollup returns a table of rows, which summarize metric over groups
// keyed by the columns of by.
func Rollup(platform string, metric joinfmt.Column, by []joinfmt.Column, rows []query.RollupRow) *Table {
	t := &Table{Title: title(platform, metric.String()+" by "+fmt.Sprint(by))}
	for _, c := range by {
		t.Header = append(t.Header, c.String())
		t.Numeric = append(t.Numeric, c.IsNumeric())
	}
	t.Header = append(t.Header, "n", "mean", "median", "min", "max")
	t.Numeric = append(t.Numeric, true, true, true, true, true)
	for _, row := range rows {
		cells := lo.Map(by, func(c joinfmt.Column, _ int) string { return row.Key.Get(c) })
		cells = append(cells,
			strconv.Itoa(row.Count),
			formatFloat(row.Mean),
			formatFloat(row.Median),
			formatFloat(row.Min),
			formatFloat(row.Max))
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// A PlatformSuperiority is the superiority analysis of one platform.
type PlatformSuperiority struct {
	Platform string
	Report   *analyze.Report
}

// Summary returns the cross-platform superiority table: one row per
// platform and one column per S:R ratio, each cell the fraction of
// comparison groups won by a filtered join. Ratios a platform lacks
// are left empty.
func Summary(platforms []PlatformSuperiority) *Table {
	ratios := lo.Uniq(lo.FlatMap(platforms, func(p PlatformSuperiority, _ int) []int64 {
		return lo.Map(p.Report.Ratios, func(st analyze.RatioStat, _ int) int64 { return st.Ratio })
	}))
	slices.Sort(ratios)

	t := &Table{
		Title:   "fraction of scenarios won by a bloom filter, by S:R ratio",
		Header:  []string{"platform"},
		Numeric: []bool{false},
	}
	for _, ratio := range ratios {
		t.Header = append(t.Header, strconv.FormatInt(ratio, 10))
		t.Numeric = append(t.Numeric, true)
	}
	for _, p := range platforms {
		row := []string{p.Platform}
		for _, ratio := range ratios {
			cell := ""
			if st, ok := p.Report.Ratio(ratio); ok {
				cell = formatFraction(st.Fraction)
			}
			row = append(row, cell)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
